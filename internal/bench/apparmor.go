package bench

import (
	"fmt"
	"strings"

	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// AccessControl audits benchmark section 1.3.1: AppArmor installation,
// bootloader activation and profile enforcement.
type AccessControl struct {
	Probe *probe.Prober

	// GrubDefault is the GRUB defaults file, normally /etc/default/grub.
	GrubDefault string
}

// NewAccessControl creates the section 1.3.1 module with default paths.
func NewAccessControl(p *probe.Prober) *AccessControl {
	return &AccessControl{Probe: p, GrubDefault: "/etc/default/grub"}
}

func (m *AccessControl) Name() string  { return "access_control" }
func (m *AccessControl) Title() string { return "1.3.1 Mandatory Access Control (AppArmor)" }
func (m *AccessControl) Description() string {
	return "Ensure AppArmor is installed, enabled at boot, and enforcing profiles"
}

// Aliases returns alternate names accepted for this module.
func (m *AccessControl) Aliases() []string { return []string{"apparmor"} }

// RunChecks audits items 1.3.1.1 through 1.3.1.3.
func (m *AccessControl) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.3.1.1", "Ensure AppArmor is installed", m.installedCheck},
		{"1.3.1.2", "Ensure AppArmor is enabled in the bootloader configuration", m.bootloaderCheck},
		{"1.3.1.3", "Ensure all AppArmor Profiles are in enforce or complain mode", m.profilesCheck},
	})
}

// installedCheck requires both apparmor and apparmor-utils packages.
func (m *AccessControl) installedCheck() (bool, string, error) {
	var missing []string
	for _, pkg := range []string{"apparmor", "apparmor-utils"} {
		installed, err := m.Probe.PackageInstalled(pkg)
		if err != nil {
			return false, "", err
		}
		if !installed {
			missing = append(missing, pkg)
		}
	}
	if len(missing) == 0 {
		return true, "AppArmor and AppArmor utilities are installed", nil
	}
	return false, fmt.Sprintf("missing packages: %s. Remediation: run 'apt install apparmor apparmor-utils'",
		strings.Join(missing, ", ")), nil
}

// bootloaderCheck looks for apparmor=1 and security=apparmor on the
// GRUB_CMDLINE_LINUX line of the GRUB defaults file.
func (m *AccessControl) bootloaderCheck() (bool, string, error) {
	data, err := probe.ReadFileLimited(m.GrubDefault)
	if err != nil {
		return false, "", fmt.Errorf("cannot read %s: %w", m.GrubDefault, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "GRUB_CMDLINE_LINUX=") {
			continue
		}
		if strings.Contains(line, "apparmor=1") && strings.Contains(line, "security=apparmor") {
			return true, "AppArmor is enabled in the bootloader configuration", nil
		}
	}
	return false, "AppArmor is not enabled in the bootloader configuration. Remediation: add 'apparmor=1 security=apparmor' to GRUB_CMDLINE_LINUX in " +
		m.GrubDefault + " and run 'update-grub'", nil
}

// profilesCheck passes when at least one profile is in enforce or
// complain mode.
func (m *AccessControl) profilesCheck() (bool, string, error) {
	profiles, err := m.Probe.AppArmorStatus()
	if err != nil {
		return false, "", err
	}
	if profiles.Enforce > 0 || profiles.Complain > 0 {
		return true, fmt.Sprintf("profiles in enforce mode: %d, complain mode: %d, unconfined processes: %d",
			profiles.Enforce, profiles.Complain, profiles.Unconfined), nil
	}
	return false, "no AppArmor profiles are in enforce or complain mode. Remediation: enable profiles with 'aa-enforce /etc/apparmor.d/*'", nil
}

// RunRemediations prints AppArmor setup guidance. Enabling AppArmor in
// the bootloader requires a reboot, so nothing is mutated.
func (m *AccessControl) RunRemediations() bool {
	fmt.Println("AppArmor remediation requires manual changes:")
	fmt.Println("  1. Install the packages: apt install apparmor apparmor-utils")
	fmt.Println("  2. Add 'apparmor=1 security=apparmor' to GRUB_CMDLINE_LINUX in /etc/default/grub,")
	fmt.Println("     then run 'update-grub' and reboot")
	fmt.Println("  3. Enforce the profiles: aa-enforce /etc/apparmor.d/*")
	fmt.Println("     (or aa-complain for testing), then restart apparmor")
	fmt.Println("Run the audit again after applying the changes.")
	return true
}
