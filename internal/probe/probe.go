// Package probe contains the read-only system probing helpers the benchmark
// modules build their checks from, plus the allowlisted command executor
// used for privileged queries and remediation commands.
package probe

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// Runner executes allowlisted system commands. Satisfied by *Executor;
// tests substitute a fake.
type Runner interface {
	Execute(cmd string, args []string) ([]byte, error)
}

// Prober exposes the read-only OS state queries the benchmark checks need.
// The zero value is not usable; construct with New. Probe sources are
// injectable so tests can run against fixture files instead of a live
// Ubuntu system.
type Prober struct {
	exec Runner

	// ModulesPath is the loaded-modules list, normally /proc/modules.
	ModulesPath string

	// SysctlRoot is the sysctl tree root, normally /proc/sys.
	SysctlRoot string

	// ModprobeDirs are the directories scanned for module install
	// overrides, normally /etc/modprobe.d and /lib/modprobe.d.
	ModprobeDirs []string

	// Partitions returns the current mount table. Defaults to gopsutil's
	// disk.Partitions over /proc/mounts.
	Partitions func() ([]disk.PartitionStat, error)
}

// New creates a Prober reading live system state through the given runner.
func New(exec Runner) *Prober {
	return &Prober{
		exec:         exec,
		ModulesPath:  "/proc/modules",
		SysctlRoot:   "/proc/sys",
		ModprobeDirs: []string{"/etc/modprobe.d", "/lib/modprobe.d"},
		Partitions: func() ([]disk.PartitionStat, error) {
			return disk.Partitions(true)
		},
	}
}

// Exec returns the underlying runner, for remediations that need to run
// commands (rmmod).
func (p *Prober) Exec() Runner {
	return p.exec
}

// ─── Kernel modules ──────────────────────────────────────────────────

// KernelModuleLoaded reports whether a kernel module is currently loaded.
func (p *Prober) KernelModuleLoaded(name string) (bool, error) {
	if err := validateModuleName(name); err != nil {
		return false, err
	}

	data, err := ReadFileLimited(p.ModulesPath)
	if err != nil {
		return false, fmt.Errorf("cannot read %s: %w", p.ModulesPath, err)
	}

	// Loaded modules use underscores even when the canonical name has a
	// hyphen (usb-storage appears as usb_storage).
	normalized := strings.ReplaceAll(name, "-", "_")
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == normalized {
			return true, nil
		}
	}
	return false, nil
}

// KernelModuleAvailable reports whether a kernel module can be loaded,
// using a modprobe dry run.
func (p *Prober) KernelModuleAvailable(name string) (bool, error) {
	if err := validateModuleName(name); err != nil {
		return false, err
	}

	out, err := p.exec.Execute("modprobe", []string{"-n", "-v", name})
	if err != nil && !isExitError(err) {
		return false, fmt.Errorf("modprobe dry run failed: %w", err)
	}

	s := string(out)
	if strings.Contains(s, "not found") || err != nil {
		return false, nil
	}
	return true, nil
}

// KernelModuleDisabled reports whether a kernel module is disabled via
// modprobe configuration: an install override to /bin/true or /bin/false
// in any .conf file under ModprobeDirs.
func (p *Prober) KernelModuleDisabled(name string) (bool, error) {
	if err := validateModuleName(name); err != nil {
		return false, err
	}

	for _, dir := range p.ModprobeDirs {
		confs, err := filepath.Glob(filepath.Join(dir, "*.conf"))
		if err != nil {
			continue
		}
		for _, conf := range confs {
			data, err := ReadFileLimited(conf)
			if err != nil {
				continue
			}
			if moduleInstallOverridden(string(data), name) {
				return true, nil
			}
		}
	}
	return false, nil
}

// moduleInstallOverridden scans modprobe config content for a line of the
// form "install <name> /bin/true" (or /bin/false).
func moduleInstallOverridden(content, name string) bool {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "install" && fields[1] == name {
			if fields[2] == "/bin/true" || fields[2] == "/bin/false" {
				return true
			}
		}
	}
	return false
}

func validateModuleName(name string) error {
	if name == "" || len(name) > maxNameLength || !namePattern.MatchString(name) {
		return fmt.Errorf("invalid kernel module name %q", name)
	}
	return nil
}

// ─── Mounts and partitions ───────────────────────────────────────────

// Mount describes a single mounted filesystem.
type Mount struct {
	Device     string
	Mountpoint string
	Options    []string
}

// FindMount returns the mount entry for a mount point, if present.
func (p *Prober) FindMount(mountPoint string) (Mount, bool, error) {
	parts, err := p.Partitions()
	if err != nil {
		return Mount{}, false, fmt.Errorf("cannot read mount table: %w", err)
	}

	for _, part := range parts {
		if part.Mountpoint == mountPoint {
			return Mount{
				Device:     part.Device,
				Mountpoint: part.Mountpoint,
				Options:    part.Opts,
			}, true, nil
		}
	}
	return Mount{}, false, nil
}

// SeparatePartition reports whether a mount point is backed by its own
// filesystem rather than living on the root filesystem.
func (p *Prober) SeparatePartition(mountPoint string) (bool, error) {
	m, ok, err := p.FindMount(mountPoint)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	root, rootOK, err := p.FindMount("/")
	if err != nil {
		return false, err
	}
	if rootOK && m.Device == root.Device {
		return false, nil
	}
	return true, nil
}

// MountHasOption reports whether a mount point is mounted with the given
// option. The second return value is false when the mount point does not
// exist in the mount table at all.
func (p *Prober) MountHasOption(mountPoint, option string) (hasOption, mounted bool, err error) {
	m, ok, err := p.FindMount(mountPoint)
	if err != nil || !ok {
		return false, ok, err
	}

	for _, opt := range m.Options {
		if opt == option {
			return true, true, nil
		}
	}
	return false, true, nil
}

// ─── Sysctl ──────────────────────────────────────────────────────────

// SysctlValue reads a kernel parameter from the sysctl tree.
func (p *Prober) SysctlValue(key string) (string, error) {
	if !sysctlKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid sysctl key %q", key)
	}

	path := p.SysctlRoot + "/" + strings.ReplaceAll(key, ".", "/")
	data, err := ReadFileLimited(path)
	if err != nil {
		return "", fmt.Errorf("cannot read sysctl %q: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SysctlInt reads a kernel parameter and parses it as an integer.
func (p *Prober) SysctlInt(key string) (int, error) {
	s, err := p.SysctlValue(key)
	if err != nil {
		return 0, err
	}
	// Multi-column values (e.g. kernel.printk) are not expected for the
	// parameters the benchmark audits.
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("sysctl %q has non-numeric value %q", key, s)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("sysctl %q has non-numeric value %q", key, s)
	}
	return n, nil
}

// ─── Packages and services ───────────────────────────────────────────

// PackageInstalled reports whether a dpkg package is in "install ok
// installed" state.
func (p *Prober) PackageInstalled(name string) (bool, error) {
	if name == "" || !namePattern.MatchString(name) {
		return false, fmt.Errorf("invalid package name %q", name)
	}

	out, err := p.exec.Execute("dpkg", []string{"-s", name})
	if err != nil {
		if isExitError(err) {
			// dpkg -s exits non-zero for unknown packages.
			return false, nil
		}
		return false, fmt.Errorf("dpkg query failed: %w", err)
	}
	return strings.Contains(string(out), "Status: install ok installed"), nil
}

// ServiceEnabled reports the `systemctl is-enabled` state of a unit.
// Returns the raw state string ("enabled", "disabled", "masked", or
// "not-found" when the unit does not exist).
func (p *Prober) ServiceEnabled(name string) (string, error) {
	if name == "" || !namePattern.MatchString(name) {
		return "", fmt.Errorf("invalid service name %q", name)
	}

	out, err := p.exec.Execute("systemctl", []string{"is-enabled", name})
	if err != nil && !isExitError(err) {
		return "", fmt.Errorf("systemctl query failed: %w", err)
	}

	state := strings.TrimSpace(string(out))
	if state == "" {
		state = "not-found"
	}
	return state, nil
}

// ServiceActive reports the `systemctl is-active` state of a unit
// ("active", "inactive", or "failed"). Units that do not exist report
// "inactive".
func (p *Prober) ServiceActive(name string) (string, error) {
	if name == "" || !namePattern.MatchString(name) {
		return "", fmt.Errorf("invalid service name %q", name)
	}

	out, err := p.exec.Execute("systemctl", []string{"is-active", name})
	if err != nil && !isExitError(err) {
		return "", fmt.Errorf("systemctl query failed: %w", err)
	}

	state := strings.TrimSpace(string(out))
	if state == "" {
		state = "inactive"
	}
	return state, nil
}

// ─── AppArmor ────────────────────────────────────────────────────────

// AppArmorProfiles summarizes apparmor_status output.
type AppArmorProfiles struct {
	Enforce    int
	Complain   int
	Unconfined int
}

// AppArmorStatus runs apparmor_status and extracts profile counts.
// Requires root for complete output; without it the command fails and the
// caller reports the check as indeterminate (failed with explanation).
func (p *Prober) AppArmorStatus() (AppArmorProfiles, error) {
	out, err := p.exec.Execute("apparmor_status", nil)
	if err != nil && !isExitError(err) {
		return AppArmorProfiles{}, fmt.Errorf("apparmor_status failed: %w", err)
	}
	if len(out) == 0 && err != nil {
		return AppArmorProfiles{}, fmt.Errorf("apparmor_status produced no output: %w", err)
	}
	return parseAppArmorStatus(string(out)), nil
}

// parseAppArmorStatus extracts the profile/process counts from
// apparmor_status output lines like "31 profiles are in enforce mode.".
func parseAppArmorStatus(out string) AppArmorProfiles {
	var profiles AppArmorProfiles
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "profiles are in enforce mode"):
			profiles.Enforce = n
		case strings.Contains(line, "profiles are in complain mode"):
			profiles.Complain = n
		case strings.Contains(line, "processes are unconfined"):
			profiles.Unconfined = n
		}
	}
	return profiles
}

// ─── Package updates ─────────────────────────────────────────────────

// UpgradablePackages returns the number of packages with pending updates,
// per `apt list --upgradable`.
func (p *Prober) UpgradablePackages() (int, error) {
	out, err := p.exec.Execute("apt", []string{"list", "--upgradable"})
	if err != nil && !isExitError(err) {
		return 0, fmt.Errorf("apt query failed: %w", err)
	}

	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Listing") {
			continue
		}
		count++
	}
	return count, nil
}
