// Package controller orchestrates audit and remediation runs across the
// registered benchmark modules.
package controller

import (
	"time"

	"github.com/google/uuid"

	"github.com/ancients-collective/ciscan/internal/log"
	"github.com/ancients-collective/ciscan/internal/registry"
	"github.com/ancients-collective/ciscan/internal/sysinfo"
	"github.com/ancients-collective/ciscan/internal/types"
)

// Controller runs benchmark modules resolved through the registry.
type Controller struct {
	registry *registry.Registry

	// now and newRunID are injectable for deterministic tests.
	now      func() time.Time
	newRunID func() string
}

// New creates a controller over the given registry.
func New(r *registry.Registry) *Controller {
	return &Controller{
		registry: r,
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
}

// RunAudit executes the checks of the named module, or of every module
// when name is empty, and aggregates the results into a report. Audits
// never mutate system state.
func (c *Controller) RunAudit(name string) (*types.RunReport, error) {
	modules, err := c.registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	var results []types.CheckResult
	for _, m := range modules {
		log.Debugf("controller: auditing module %s", m.Name())
		results = append(results, m.RunChecks()...)
	}

	return types.NewRunReport(c.newRunID(), c.now(), sysinfo.Collect(), results), nil
}

// RunRemediation executes the remediations of the named module, or of
// every module when name is empty. Modules run sequentially; a failing
// module does not stop the rest. Returns true only when every module
// remediated successfully.
func (c *Controller) RunRemediation(name string) (bool, error) {
	modules, err := c.registry.Resolve(name)
	if err != nil {
		return false, err
	}

	ok := true
	for _, m := range modules {
		log.Debugf("controller: remediating module %s", m.Name())
		if !m.RunRemediations() {
			log.Warnf("controller: remediation incomplete for module %s", m.Name())
			ok = false
		}
	}
	return ok, nil
}
