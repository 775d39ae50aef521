package bench

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// PackageManagement audits benchmark section 1.2: repository signing,
// configured package sources and pending updates.
type PackageManagement struct {
	Probe *probe.Prober

	// AptDir is the apt configuration root, normally /etc/apt.
	AptDir string
}

// NewPackageManagement creates the section 1.2 module with default paths.
func NewPackageManagement(p *probe.Prober) *PackageManagement {
	return &PackageManagement{Probe: p, AptDir: "/etc/apt"}
}

func (m *PackageManagement) Name() string  { return "package_management" }
func (m *PackageManagement) Title() string { return "1.2 Package Management" }
func (m *PackageManagement) Description() string {
	return "Ensure package repositories are signed, configured, and up to date"
}

// Aliases returns alternate names accepted for this module.
func (m *PackageManagement) Aliases() []string { return []string{"repositories", "updates"} }

// RunChecks audits items 1.2.1.1, 1.2.1.2 and 1.2.2.1.
func (m *PackageManagement) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.2.1.1", "Ensure GPG keys are configured", m.gpgKeysCheck},
		{"1.2.1.2", "Ensure package manager repositories are configured", m.repositoriesCheck},
		{"1.2.2.1", "Ensure updates, patches, and additional security software are installed", m.updatesCheck},
	})
}

// gpgKeysCheck passes when trusted keyring files exist under
// trusted.gpg.d or any source entry carries a signed-by directive.
func (m *PackageManagement) gpgKeysCheck() (bool, string, error) {
	keyrings, err := filepath.Glob(filepath.Join(m.AptDir, "trusted.gpg.d", "*"))
	if err != nil {
		return false, "", fmt.Errorf("cannot scan trusted.gpg.d: %w", err)
	}
	for _, f := range keyrings {
		if strings.HasSuffix(f, ".gpg") || strings.HasSuffix(f, ".asc") {
			return true, "GPG keys are configured in trusted.gpg.d", nil
		}
	}

	for _, src := range m.sourceFiles() {
		data, err := probe.ReadFileLimited(src)
		if err != nil {
			continue
		}
		if strings.Contains(string(data), "signed-by=") {
			return true, "repository sources use signed-by directives", nil
		}
	}

	return false, "no GPG keys found. Remediation: add keyring files to " + m.AptDir +
		"/trusted.gpg.d or use signed-by directives in source entries", nil
}

// repositoriesCheck passes when at least one active deb line is
// configured in sources.list or sources.list.d.
func (m *PackageManagement) repositoriesCheck() (bool, string, error) {
	for _, src := range m.sourceFiles() {
		data, err := probe.ReadFileLimited(src)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "deb ") || strings.HasPrefix(line, "deb-src ") {
				return true, "package manager repositories are configured", nil
			}
		}
	}
	return false, "no active repository entries found. Remediation: configure repositories in " +
		m.AptDir + "/sources.list or " + m.AptDir + "/sources.list.d", nil
}

// sourceFiles lists the apt source files to scan: sources.list plus every
// .list file under sources.list.d.
func (m *PackageManagement) sourceFiles() []string {
	files := []string{filepath.Join(m.AptDir, "sources.list")}
	extra, err := filepath.Glob(filepath.Join(m.AptDir, "sources.list.d", "*.list"))
	if err == nil {
		files = append(files, extra...)
	}
	return files
}

// updatesCheck passes when no packages have pending upgrades.
func (m *PackageManagement) updatesCheck() (bool, string, error) {
	pending, err := m.Probe.UpgradablePackages()
	if err != nil {
		return false, "", err
	}
	if pending == 0 {
		return true, "all available updates are installed", nil
	}
	return false, fmt.Sprintf("%d packages have pending updates. Remediation: run 'apt update && apt upgrade'", pending), nil
}

// RunRemediations prints repository and update guidance. Choosing
// repositories and applying upgrades are operator decisions, so nothing
// is mutated.
func (m *PackageManagement) RunRemediations() bool {
	fmt.Println("Package management remediation requires manual changes:")
	fmt.Println("  1. Configure GPG keys: place keyring files in /etc/apt/trusted.gpg.d")
	fmt.Println("     or use signed-by directives in source entries")
	fmt.Println("  2. Configure repositories in /etc/apt/sources.list, for example:")
	fmt.Println("       deb [signed-by=/usr/share/keyrings/ubuntu-archive-keyring.gpg] http://archive.ubuntu.com/ubuntu/ jammy main")
	fmt.Println("  3. Apply pending updates: apt update && apt upgrade")
	fmt.Println("  4. Consider unattended-upgrades for automatic security updates")
	fmt.Println("Run the audit again after applying the changes.")
	return true
}
