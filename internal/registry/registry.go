// Package registry holds the static catalog of benchmark modules and the
// user-friendly explanations used by the explanatory report.
package registry

import (
	"fmt"
	"strings"

	"github.com/ancients-collective/ciscan/internal/bench"
	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// Module is one benchmark section: a named group of checks with a
// matching remediation routine.
type Module interface {
	Name() string
	Title() string
	Description() string
	RunChecks() []types.CheckResult
	RunRemediations() bool
}

// aliaser is implemented by modules that accept alternate names.
type aliaser interface {
	Aliases() []string
}

// UnknownModuleError reports a module name that is not registered.
type UnknownModuleError struct {
	Name  string
	Known []string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module %q (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Registry is the fixed, ordered catalog of benchmark modules.
type Registry struct {
	modules      []Module
	byName       map[string]Module
	explanations []Explanation
}

// New builds the registry with every benchmark module in section order.
func New(p *probe.Prober) (*Registry, error) {
	r := &Registry{byName: make(map[string]Module)}

	for _, m := range []Module{
		bench.NewKernelModules(p),
		bench.NewFilesystem(p),
		bench.NewPackageManagement(p),
		bench.NewAccessControl(p),
		bench.NewBootloader(p),
		bench.NewProcessHardening(p),
		bench.NewWarningBanners(),
		bench.NewServices(p),
	} {
		if err := r.register(m); err != nil {
			return nil, err
		}
	}

	explanations, err := loadExplanations()
	if err != nil {
		return nil, fmt.Errorf("loading explanations: %w", err)
	}
	r.explanations = explanations

	return r, nil
}

func (r *Registry) register(m Module) error {
	names := []string{m.Name()}
	if a, ok := m.(aliaser); ok {
		names = append(names, a.Aliases()...)
	}

	for _, name := range names {
		if _, exists := r.byName[name]; exists {
			return fmt.Errorf("duplicate module name %q", name)
		}
		r.byName[name] = m
	}
	r.modules = append(r.modules, m)
	return nil
}

// Modules returns every module in declaration order.
func (r *Registry) Modules() []Module {
	return r.modules
}

// Names returns the primary module names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name()
	}
	return names
}

// Resolve maps a module name to the modules to run. An empty name selects
// all modules; aliases resolve to their module. Unknown names return an
// *UnknownModuleError.
func (r *Registry) Resolve(name string) ([]Module, error) {
	if name == "" {
		return r.modules, nil
	}

	m, ok := r.byName[name]
	if !ok {
		return nil, &UnknownModuleError{Name: name, Known: r.Names()}
	}
	return []Module{m}, nil
}
