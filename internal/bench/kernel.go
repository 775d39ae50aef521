package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ancients-collective/ciscan/internal/log"
	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// fatModules are the modules making up FAT support; benchmark item
// 1.1.1.8 treats them as one composite check.
var fatModules = []string{"fat", "vfat", "msdos"}

// KernelModules audits benchmark section 1.1.1: unnecessary filesystem
// kernel modules must not be loadable.
type KernelModules struct {
	Probe *probe.Prober

	// ModprobeDir is where remediation writes disable files,
	// normally /etc/modprobe.d.
	ModprobeDir string
}

// NewKernelModules creates the section 1.1.1 module with default paths.
func NewKernelModules(p *probe.Prober) *KernelModules {
	return &KernelModules{Probe: p, ModprobeDir: "/etc/modprobe.d"}
}

func (m *KernelModules) Name() string  { return "kernel" }
func (m *KernelModules) Title() string { return "1.1.1 Filesystem Kernel Modules" }
func (m *KernelModules) Description() string {
	return "Ensure unnecessary filesystem kernel modules are disabled"
}

// Aliases returns alternate names accepted for this module.
func (m *KernelModules) Aliases() []string { return []string{"fs_kernel_modules"} }

// RunChecks audits items 1.1.1.1 through 1.1.1.8.
func (m *KernelModules) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.1.1.1", "Ensure cramfs kernel module is not available", m.moduleCheck("cramfs")},
		{"1.1.1.2", "Ensure freevxfs kernel module is not available", m.moduleCheck("freevxfs")},
		{"1.1.1.3", "Ensure jffs2 kernel module is not available", m.moduleCheck("jffs2")},
		{"1.1.1.4", "Ensure hfs kernel module is not available", m.moduleCheck("hfs")},
		{"1.1.1.5", "Ensure hfsplus kernel module is not available", m.moduleCheck("hfsplus")},
		{"1.1.1.6", "Ensure squashfs kernel module is not available", m.moduleCheck("squashfs")},
		{"1.1.1.7", "Ensure udf kernel module is not available", m.moduleCheck("udf")},
		{"1.1.1.8", "Ensure FAT kernel module is not available", m.fatCheck()},
	})
}

// moduleCheck verifies a single kernel module is neither loaded nor
// loadable.
func (m *KernelModules) moduleCheck(name string) checkFn {
	return func() (bool, string, error) {
		return m.auditModule(name)
	}
}

func (m *KernelModules) auditModule(name string) (bool, string, error) {
	loaded, err := m.Probe.KernelModuleLoaded(name)
	if err != nil {
		return false, "", err
	}
	if loaded {
		return false, fmt.Sprintf("%s kernel module is loaded. Remediation: run 'rmmod %s' and disable the module in %s",
			name, name, m.ModprobeDir), nil
	}

	disabled, err := m.Probe.KernelModuleDisabled(name)
	if err != nil {
		return false, "", err
	}
	available, err := m.Probe.KernelModuleAvailable(name)
	if err != nil {
		return false, "", err
	}

	if disabled || !available {
		return true, fmt.Sprintf("%s kernel module is not available or is disabled", name), nil
	}
	return false, fmt.Sprintf("%s kernel module can be loaded. Remediation: add 'install %s /bin/true' to %s/disable-%s.conf",
		name, name, m.ModprobeDir, name), nil
}

// fatCheck audits the FAT composite (fat, vfat, msdos) as one item.
func (m *KernelModules) fatCheck() checkFn {
	return func() (bool, string, error) {
		var failures []string
		for _, name := range fatModules {
			passed, msg, err := m.auditModule(name)
			if err != nil {
				return false, "", err
			}
			if !passed {
				failures = append(failures, msg)
			}
		}
		if len(failures) == 0 {
			return true, "FAT kernel modules (fat, vfat, msdos) are not available or are disabled", nil
		}
		return false, strings.Join(failures, "; "), nil
	}
}

// RunRemediations disables every audited module: unloads it when loaded
// and writes an install override into ModprobeDir. Failures are logged
// and reflected in the return value without halting remaining modules.
func (m *KernelModules) RunRemediations() bool {
	names := []string{"cramfs", "freevxfs", "jffs2", "hfs", "hfsplus", "squashfs", "udf"}
	names = append(names, fatModules...)

	ok := true
	for _, name := range names {
		if err := m.disableModule(name); err != nil {
			log.Errorf("kernel: failed to disable %s: %v", name, err)
			ok = false
		}
	}
	return ok
}

// disableModule unloads a kernel module if loaded and writes the modprobe
// install override that prevents future loading.
func (m *KernelModules) disableModule(name string) error {
	loaded, err := m.Probe.KernelModuleLoaded(name)
	if err != nil {
		return err
	}
	if loaded {
		if _, err := m.Probe.Exec().Execute("rmmod", []string{name}); err != nil {
			return fmt.Errorf("rmmod %s: %w", name, err)
		}
		log.Debugf("kernel: unloaded module %s", name)
	}

	conf := filepath.Join(m.ModprobeDir, "disable-"+name+".conf")
	content := fmt.Sprintf("# Disable %s module\ninstall %s /bin/true\n", name, name)
	if err := os.WriteFile(conf, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", conf, err)
	}
	log.Debugf("kernel: wrote %s", conf)
	return nil
}
