// Package bench implements the CIS Ubuntu 22.04 LTS benchmark modules.
// Each module groups the checks and remediations for one benchmark
// section. Checks are read-only probes of current system state;
// remediations mutate configuration and require root.
package bench

import "github.com/ancients-collective/ciscan/internal/types"

// checkFn probes current system state for one benchmark item.
// Returns pass/fail, an explanatory message (with a remediation hint on
// failure), and an error when the probe itself could not run.
type checkFn func() (passed bool, msg string, err error)

// checkSpec pairs a benchmark item with its probe.
type checkSpec struct {
	id   string
	desc string
	run  checkFn
}

// runChecks executes specs in declared order. A probe error becomes a
// failed CheckResult describing the failure; it never aborts the run.
func runChecks(specs []checkSpec) []types.CheckResult {
	results := make([]types.CheckResult, 0, len(specs))
	for _, c := range specs {
		passed, msg, err := c.run()
		if err != nil {
			results = append(results, types.FailedResult(c.id, c.desc, err))
			continue
		}
		results = append(results, types.CheckResult{
			ID:          c.id,
			Description: c.desc,
			Passed:      passed,
			Message:     msg,
		})
	}
	return results
}
