package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ancients-collective/ciscan/internal/log"
	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// restrictedBannerWords are terms a login banner must not reveal, matched
// case-insensitively as whole words.
var restrictedBannerWords = regexp.MustCompile(`(?i)\b(OS|version|release|Ubuntu|Debian|Linux|kernel|welcome)\b`)

// minBannerLength is the minimum banner content length for it to count as
// an actual warning.
const minBannerLength = 20

// legalBanner is the compliant warning text remediation installs. It
// deliberately names no OS, version or kernel details.
const legalBanner = "Authorized users only. All activity on this system may be monitored and recorded. Unauthorized access is prohibited and may be subject to criminal and civil penalties.\n"

// WarningBanners audits benchmark section 1.6: login warning banners
// must exist, be root-owned with mode 644, and reveal no system details.
type WarningBanners struct {
	// Motd, Issue and IssueNet are the banner file paths, normally
	// /etc/motd, /etc/issue and /etc/issue.net.
	Motd     string
	Issue    string
	IssueNet string

	// UpdateMotdDir is the dynamic motd script directory, normally
	// /etc/update-motd.d. A missing /etc/motd passes when this
	// directory has scripts.
	UpdateMotdDir string
}

// NewWarningBanners creates the section 1.6 module with default paths.
func NewWarningBanners() *WarningBanners {
	return &WarningBanners{
		Motd:          "/etc/motd",
		Issue:         "/etc/issue",
		IssueNet:      "/etc/issue.net",
		UpdateMotdDir: "/etc/update-motd.d",
	}
}

func (m *WarningBanners) Name() string  { return "command_line_warning" }
func (m *WarningBanners) Title() string { return "1.6 Command Line Warning Banners" }
func (m *WarningBanners) Description() string {
	return "Ensure login warning banners are configured and reveal no system details"
}

// Aliases returns alternate names accepted for this module.
func (m *WarningBanners) Aliases() []string { return []string{"warning_banners"} }

// RunChecks audits items 1.6.1 through 1.6.3.
func (m *WarningBanners) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.6.1", "Ensure message of the day is configured properly", m.motdCheck},
		{"1.6.2", "Ensure local login warning banner is configured properly", m.bannerCheck(m.Issue)},
		{"1.6.3", "Ensure remote login warning banner is configured properly", m.bannerCheck(m.IssueNet)},
	})
}

// motdCheck verifies /etc/motd like the other banners, except a missing
// file passes when dynamic motd scripts are configured instead.
func (m *WarningBanners) motdCheck() (bool, string, error) {
	if !probe.FileExists(m.Motd) {
		entries, err := os.ReadDir(m.UpdateMotdDir)
		if err == nil && len(entries) > 0 {
			return true, "dynamic message of the day is configured in " + m.UpdateMotdDir, nil
		}
		return false, m.Motd + " does not exist and no dynamic motd is configured. Remediation: create " +
			m.Motd + " with a legal warning banner, mode 644, owner root:root", nil
	}
	return m.auditBanner(m.Motd)
}

// bannerCheck verifies a banner file exists and passes the permission and
// content rules.
func (m *WarningBanners) bannerCheck(path string) checkFn {
	return func() (bool, string, error) {
		if !probe.FileExists(path) {
			return false, path + " does not exist. Remediation: create " + path +
				" with a legal warning banner, mode 644, owner root:root", nil
		}
		return m.auditBanner(path)
	}
}

// auditBanner applies the permission and content rules to an existing
// banner file.
func (m *WarningBanners) auditBanner(path string) (bool, string, error) {
	st, err := probe.StatFile(path)
	if err != nil {
		return false, "", fmt.Errorf("cannot stat %s: %w", path, err)
	}

	var problems []string
	if st.Mode != 0o644 {
		problems = append(problems, fmt.Sprintf("mode is %04o, expected 0644", st.Mode))
	}
	if st.UID != 0 || st.GID != 0 {
		problems = append(problems, fmt.Sprintf("owner is %d:%d, expected root:root", st.UID, st.GID))
	}

	data, err := probe.ReadFileLimited(path)
	if err != nil {
		return false, "", fmt.Errorf("cannot read %s: %w", path, err)
	}
	content := string(data)

	if match := restrictedBannerWords.FindString(content); match != "" {
		problems = append(problems, fmt.Sprintf("banner reveals restricted information (%q)", match))
	}
	if len(strings.TrimSpace(content)) < minBannerLength {
		problems = append(problems, "banner content is too short or empty")
	}

	if len(problems) == 0 {
		return true, path + " is configured properly", nil
	}
	return false, path + ": " + strings.Join(problems, "; ") +
		". Remediation: install a legal warning banner with mode 644, owner root:root", nil
}

// RunRemediations installs the compliant legal banner into each banner
// file with mode 644. Ownership follows the invoking user, which is root
// when remediation runs through the privilege gate.
func (m *WarningBanners) RunRemediations() bool {
	ok := true
	for _, path := range []string{m.Motd, m.Issue, m.IssueNet} {
		if err := m.writeBanner(path); err != nil {
			log.Errorf("command_line_warning: %v", err)
			ok = false
		}
	}
	return ok
}

// writeBanner replaces a banner file with the compliant legal banner.
func (m *WarningBanners) writeBanner(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(legalBanner), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	log.Debugf("command_line_warning: wrote %s", path)
	return nil
}
