package report

import (
	"time"

	"github.com/fatih/color"

	"github.com/ancients-collective/ciscan/internal/types"
)

func init() {
	// Disable color for deterministic test output.
	color.NoColor = true
}

func newTestReport() *types.RunReport {
	results := []types.CheckResult{
		{
			ID:          "1.1.1.1",
			Description: "Ensure cramfs kernel module is not available",
			Passed:      true,
			Message:     "cramfs kernel module is not available or is disabled",
		},
		{
			ID:          "1.1.2.1",
			Description: "Ensure /tmp is a separate partition",
			Passed:      false,
			Message:     "/tmp is not mounted on a separate partition. Remediation: create a separate partition for /tmp and update /etc/fstab",
		},
		{
			ID:          "1.4.1",
			Description: "Ensure bootloader password is set",
			Passed:      false,
			Message:     "bootloader password is not set",
		},
	}

	host := types.Host{
		Hostname:      "testhost",
		DistroID:      "ubuntu",
		DistroVersion: "22.04",
		Kernel:        "5.15.0-101-generic",
		IsRoot:        true,
	}

	return types.NewRunReport("run-abc", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), host, results)
}

func newCleanReport() *types.RunReport {
	results := []types.CheckResult{
		{ID: "1.5.1", Description: "Ensure address space layout randomization (ASLR) is enabled", Passed: true, Message: "kernel.randomize_va_space is 2"},
		{ID: "1.5.4", Description: "Ensure prelink is not installed", Passed: true, Message: "prelink is not installed"},
	}
	return types.NewRunReport("run-clean", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), types.Host{Hostname: "testhost"}, results)
}
