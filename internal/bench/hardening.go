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

// ProcessHardening audits benchmark section 1.5: ASLR, ptrace scope,
// core dump restrictions, prelink and automatic error reporting.
type ProcessHardening struct {
	Probe *probe.Prober

	// SysctlDir is where remediation writes persistent sysctl drop-ins,
	// normally /etc/sysctl.d.
	SysctlDir string

	// LimitsConf is the pam_limits configuration file, normally
	// /etc/security/limits.conf.
	LimitsConf string

	// LimitsDir holds additional limits drop-ins, normally
	// /etc/security/limits.d.
	LimitsDir string
}

// NewProcessHardening creates the section 1.5 module with default paths.
func NewProcessHardening(p *probe.Prober) *ProcessHardening {
	return &ProcessHardening{
		Probe:      p,
		SysctlDir:  "/etc/sysctl.d",
		LimitsConf: "/etc/security/limits.conf",
		LimitsDir:  "/etc/security/limits.d",
	}
}

func (m *ProcessHardening) Name() string  { return "process_hardening" }
func (m *ProcessHardening) Title() string { return "1.5 Additional Process Hardening" }
func (m *ProcessHardening) Description() string {
	return "Ensure process-level hardening: ASLR, ptrace scope, core dumps, prelink, error reporting"
}

// Aliases returns alternate names accepted for this module.
func (m *ProcessHardening) Aliases() []string { return []string{"process_restrictions"} }

// RunChecks audits items 1.5.1 through 1.5.5.
func (m *ProcessHardening) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.5.1", "Ensure address space layout randomization (ASLR) is enabled", m.aslrCheck},
		{"1.5.2", "Ensure ptrace scope is restricted", m.ptraceCheck},
		{"1.5.3", "Ensure core dumps are restricted", m.coreDumpCheck},
		{"1.5.4", "Ensure prelink is not installed", m.prelinkCheck},
		{"1.5.5", "Ensure Automatic Error Reporting is not enabled", m.apportCheck},
	})
}

// aslrCheck requires kernel.randomize_va_space to be 2 (full
// randomization).
func (m *ProcessHardening) aslrCheck() (bool, string, error) {
	v, err := m.Probe.SysctlInt("kernel.randomize_va_space")
	if err != nil {
		return false, "", err
	}
	if v == 2 {
		return true, "kernel.randomize_va_space is 2", nil
	}
	return false, fmt.Sprintf("kernel.randomize_va_space is %d. Remediation: set kernel.randomize_va_space to 2 via a drop-in in %s",
		v, m.SysctlDir), nil
}

// ptraceCheck requires kernel.yama.ptrace_scope between 1 and 3.
func (m *ProcessHardening) ptraceCheck() (bool, string, error) {
	v, err := m.Probe.SysctlInt("kernel.yama.ptrace_scope")
	if err != nil {
		return false, "", err
	}
	if v >= 1 && v <= 3 {
		return true, fmt.Sprintf("kernel.yama.ptrace_scope is %d", v), nil
	}
	return false, fmt.Sprintf("kernel.yama.ptrace_scope is %d. Remediation: set kernel.yama.ptrace_scope to at least 1 via a drop-in in %s",
		v, m.SysctlDir), nil
}

// coreDumpCheck requires fs.suid_dumpable to be 0 and a "hard core 0"
// limit in limits.conf or a limits.d drop-in.
func (m *ProcessHardening) coreDumpCheck() (bool, string, error) {
	v, err := m.Probe.SysctlInt("fs.suid_dumpable")
	if err != nil {
		return false, "", err
	}

	limited := m.hardCoreLimitSet()
	if v == 0 && limited {
		return true, "fs.suid_dumpable is 0 and a hard core limit is set", nil
	}

	var problems []string
	if v != 0 {
		problems = append(problems, fmt.Sprintf("fs.suid_dumpable is %d", v))
	}
	if !limited {
		problems = append(problems, "no 'hard core 0' limit configured")
	}
	return false, strings.Join(problems, "; ") +
		". Remediation: set fs.suid_dumpable to 0 and add '* hard core 0' to " + m.LimitsConf, nil
}

// hardCoreLimitSet scans limits.conf and limits.d drop-ins for a
// "hard core 0" entry.
func (m *ProcessHardening) hardCoreLimitSet() bool {
	files := []string{m.LimitsConf}
	extra, err := filepath.Glob(filepath.Join(m.LimitsDir, "*.conf"))
	if err == nil {
		files = append(files, extra...)
	}

	for _, f := range files {
		data, err := probe.ReadFileLimited(f)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 4 && !strings.HasPrefix(fields[0], "#") &&
				fields[1] == "hard" && fields[2] == "core" && fields[3] == "0" {
				return true
			}
		}
	}
	return false
}

// prelinkCheck requires the prelink package to be absent.
func (m *ProcessHardening) prelinkCheck() (bool, string, error) {
	installed, err := m.Probe.PackageInstalled("prelink")
	if err != nil {
		return false, "", err
	}
	if !installed {
		return true, "prelink is not installed", nil
	}
	return false, "prelink is installed. Remediation: run 'prelink -ua' then 'apt purge prelink'", nil
}

// apportCheck requires the apport service to be disabled or absent.
func (m *ProcessHardening) apportCheck() (bool, string, error) {
	state, err := m.Probe.ServiceEnabled("apport.service")
	if err != nil {
		return false, "", err
	}
	if state == "disabled" || state == "masked" || state == "not-found" {
		return true, "automatic error reporting is not enabled (apport: " + state + ")", nil
	}
	return false, "automatic error reporting is enabled (apport: " + state +
		"). Remediation: run 'systemctl disable apport.service'", nil
}

// RunRemediations writes persistent sysctl drop-ins for 1.5.1 through
// 1.5.3 and appends the hard core limit; prelink removal and apport
// disabling are left to the operator and printed as guidance.
func (m *ProcessHardening) RunRemediations() bool {
	ok := true

	dropins := []struct {
		file    string
		content string
	}{
		{"60-kernel-randomize_va_space.conf", "kernel.randomize_va_space = 2\n"},
		{"10-ptrace.conf", "kernel.yama.ptrace_scope = 1\n"},
		{"50-coredump.conf", "fs.suid_dumpable = 0\n"},
	}
	for _, d := range dropins {
		path := filepath.Join(m.SysctlDir, d.file)
		if err := os.WriteFile(path, []byte(d.content), 0o644); err != nil {
			log.Errorf("process_hardening: write %s: %v", path, err)
			ok = false
			continue
		}
		log.Debugf("process_hardening: wrote %s", path)
	}

	if err := m.appendHardCoreLimit(); err != nil {
		log.Errorf("process_hardening: %v", err)
		ok = false
	}

	fmt.Println("Applied persistent sysctl drop-ins; run 'sysctl --system' (or reboot) to load them.")
	fmt.Println("Remaining manual steps:")
	fmt.Println("  1. Remove prelink if installed: prelink -ua && apt purge prelink")
	fmt.Println("  2. Disable automatic error reporting: systemctl disable apport.service")
	return ok
}

// appendHardCoreLimit adds "* hard core 0" to limits.conf unless a hard
// core limit is already configured.
func (m *ProcessHardening) appendHardCoreLimit() error {
	if m.hardCoreLimitSet() {
		return nil
	}

	f, err := os.OpenFile(m.LimitsConf, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.LimitsConf, err)
	}
	defer f.Close()

	if _, err := f.WriteString("* hard core 0\n"); err != nil {
		return fmt.Errorf("append to %s: %w", m.LimitsConf, err)
	}
	log.Debugf("process_hardening: appended hard core limit to %s", m.LimitsConf)
	return nil
}
