package bench

import (
	"fmt"
	"strings"

	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// unwantedServicePackages lists the server packages section 2.1 requires
// to be absent, in benchmark item order.
var unwantedServicePackages = []struct {
	id  string
	pkg string
}{
	{"2.1.1", "xinetd"},
	{"2.1.2", "openbsd-inetd"},
	{"2.1.3", "avahi-daemon"},
	{"2.1.4", "cups"},
	{"2.1.5", "isc-dhcp-server"},
	{"2.1.6", "slapd"},
	{"2.1.7", "nfs-kernel-server"},
	{"2.1.8", "bind9"},
	{"2.1.9", "vsftpd"},
	{"2.1.10", "apache2"},
	{"2.1.11", "dovecot"},
	{"2.1.12", "samba"},
	{"2.1.13", "squid"},
	{"2.1.14", "snmpd"},
	{"2.1.15", "rsync"},
	{"2.1.16", "nis"},
}

// Services audits benchmark section 2: unnecessary network services are
// not installed and time synchronization is configured.
type Services struct {
	Probe *probe.Prober

	// ChronyConf is the chrony configuration file, normally
	// /etc/chrony/chrony.conf.
	ChronyConf string
}

// NewServices creates the section 2 module with default paths.
func NewServices(p *probe.Prober) *Services {
	return &Services{Probe: p, ChronyConf: "/etc/chrony/chrony.conf"}
}

func (m *Services) Name() string  { return "services" }
func (m *Services) Title() string { return "2 Services" }
func (m *Services) Description() string {
	return "Ensure unnecessary services are not installed and time synchronization is configured"
}

// Aliases returns alternate names accepted for this module.
func (m *Services) Aliases() []string { return []string{"services_audit"} }

// RunChecks audits items 2.1.1 through 2.1.16 and 2.2.
func (m *Services) RunChecks() []types.CheckResult {
	specs := make([]checkSpec, 0, len(unwantedServicePackages)+1)
	for _, svc := range unwantedServicePackages {
		pkg := svc.pkg
		specs = append(specs, checkSpec{
			id:   svc.id,
			desc: fmt.Sprintf("Ensure %s is not installed", pkg),
			run:  func() (bool, string, error) { return m.packageAbsentCheck(pkg) },
		})
	}
	specs = append(specs, checkSpec{
		id:   "2.2",
		desc: "Ensure time synchronization is configured",
		run:  m.timeSyncCheck,
	})
	return runChecks(specs)
}

// packageAbsentCheck passes when the package is not installed.
func (m *Services) packageAbsentCheck(pkg string) (bool, string, error) {
	installed, err := m.Probe.PackageInstalled(pkg)
	if err != nil {
		return false, "", err
	}
	if !installed {
		return true, pkg + " is not installed", nil
	}
	return false, pkg + " is installed. Remediation: run 'apt purge " + pkg + "'", nil
}

// timeSyncCheck passes when either chronyd (active, enabled, configured)
// or systemd-timesyncd (active, enabled) keeps the clock synchronized.
func (m *Services) timeSyncCheck() (bool, string, error) {
	ok, detail, err := m.chronydConfigured()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "time synchronization via chronyd: " + detail, nil
	}

	tsOK, tsDetail, err := m.timesyncdConfigured()
	if err != nil {
		return false, "", err
	}
	if tsOK {
		return true, "time synchronization via systemd-timesyncd: " + tsDetail, nil
	}

	return false, fmt.Sprintf("neither chronyd (%s) nor systemd-timesyncd (%s) is properly configured. "+
		"Remediation: run 'systemctl enable --now systemd-timesyncd'", detail, tsDetail), nil
}

// chronydConfigured reports whether chronyd is active, enabled and has a
// configuration file.
func (m *Services) chronydConfigured() (bool, string, error) {
	active, err := m.Probe.ServiceActive("chronyd")
	if err != nil {
		return false, "", err
	}
	enabled, err := m.Probe.ServiceEnabled("chronyd")
	if err != nil {
		return false, "", err
	}
	configured := probe.FileExists(m.ChronyConf)

	if active == "active" && enabled == "enabled" && configured {
		return true, "active, enabled, and configured", nil
	}

	var problems []string
	if active != "active" {
		problems = append(problems, "not active")
	}
	if enabled != "enabled" {
		problems = append(problems, "not enabled")
	}
	if !configured {
		problems = append(problems, "config file missing")
	}
	return false, strings.Join(problems, ", "), nil
}

// timesyncdConfigured reports whether systemd-timesyncd is active and
// enabled.
func (m *Services) timesyncdConfigured() (bool, string, error) {
	active, err := m.Probe.ServiceActive("systemd-timesyncd")
	if err != nil {
		return false, "", err
	}
	enabled, err := m.Probe.ServiceEnabled("systemd-timesyncd")
	if err != nil {
		return false, "", err
	}

	if active == "active" && enabled == "enabled" {
		return true, "active and enabled", nil
	}

	var problems []string
	if active != "active" {
		problems = append(problems, "not active")
	}
	if enabled != "enabled" {
		problems = append(problems, "not enabled")
	}
	return false, strings.Join(problems, ", "), nil
}

// RunRemediations prints service removal and time synchronization
// guidance. Removing server packages is an operator decision, so nothing
// is mutated.
func (m *Services) RunRemediations() bool {
	fmt.Println("Services remediation requires manual changes:")
	fmt.Println("  1. Remove unneeded server packages, for example: apt purge xinetd avahi-daemon cups")
	fmt.Println("     Review each package before removal; some may be required at your site.")
	fmt.Println("  2. Enable time synchronization: systemctl enable --now systemd-timesyncd")
	fmt.Println("     or install and configure chrony: apt install chrony")
	fmt.Println("Run the audit again after applying the changes.")
	return true
}
