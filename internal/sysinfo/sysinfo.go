// Package sysinfo detects host identity and the privileges the process
// runs with.
package sysinfo

import (
	"os"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/ancients-collective/ciscan/internal/log"
	"github.com/ancients-collective/ciscan/internal/types"
)

// IsRoot reports whether the process runs with root privileges.
// Remediation is gated on this; audits run fine without it, though some
// probes (apparmor_status, grub.cfg) give partial results.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// Collect gathers host identity for report headers. Detection failures
// leave fields empty rather than failing the run.
func Collect() types.Host {
	h := types.Host{IsRoot: IsRoot()}

	if name, err := os.Hostname(); err == nil {
		h.Hostname = name
	}

	info, err := host.Info()
	if err != nil {
		log.Debugf("sysinfo: host detection failed: %v", err)
		return h
	}
	h.DistroID = info.Platform
	h.DistroVersion = info.PlatformVersion
	h.Kernel = info.KernelVersion
	if h.Hostname == "" {
		h.Hostname = info.Hostname
	}
	return h
}
