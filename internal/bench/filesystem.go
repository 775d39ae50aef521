package bench

import (
	"fmt"

	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// Filesystem audits benchmark section 1.1.2: separate partitions and
// restrictive mount options for world-writable and log filesystems.
type Filesystem struct {
	Probe *probe.Prober
}

// NewFilesystem creates the section 1.1.2 module.
func NewFilesystem(p *probe.Prober) *Filesystem {
	return &Filesystem{Probe: p}
}

func (m *Filesystem) Name() string  { return "filesystem" }
func (m *Filesystem) Title() string { return "1.1.2 Filesystem Partitions" }
func (m *Filesystem) Description() string {
	return "Ensure security-relevant mount points are separate partitions with restrictive options"
}

// Aliases returns alternate names accepted for this module.
func (m *Filesystem) Aliases() []string { return []string{"partitions"} }

// RunChecks audits the 1.1.2 items in benchmark order.
func (m *Filesystem) RunChecks() []types.CheckResult {
	return runChecks([]checkSpec{
		{"1.1.2.1", "Ensure /tmp is a separate partition", m.partitionCheck("/tmp")},
		{"1.1.2.2", "Ensure nodev option set on /tmp partition", m.optionCheck("/tmp", "nodev")},
		{"1.1.2.3", "Ensure noexec option set on /tmp partition", m.optionCheck("/tmp", "noexec")},
		{"1.1.2.4", "Ensure nosuid option set on /tmp partition", m.optionCheck("/tmp", "nosuid")},

		{"1.1.2.2.1", "Ensure /dev/shm is a separate partition", m.partitionCheck("/dev/shm")},
		{"1.1.2.2.2", "Ensure nodev option set on /dev/shm partition", m.optionCheck("/dev/shm", "nodev")},
		{"1.1.2.2.3", "Ensure noexec option set on /dev/shm partition", m.optionCheck("/dev/shm", "noexec")},
		{"1.1.2.2.4", "Ensure nosuid option set on /dev/shm partition", m.optionCheck("/dev/shm", "nosuid")},

		{"1.1.2.3.1", "Ensure separate partition exists for /home", m.partitionCheck("/home")},
		{"1.1.2.3.2", "Ensure nodev option set on /home partition", m.optionCheck("/home", "nodev")},
		{"1.1.2.3.3", "Ensure nosuid option set on /home partition", m.optionCheck("/home", "nosuid")},

		{"1.1.2.4.1", "Ensure separate partition exists for /var", m.partitionCheck("/var")},
		{"1.1.2.4.2", "Ensure nodev option set on /var partition", m.optionCheck("/var", "nodev")},
		{"1.1.2.4.3", "Ensure nosuid option set on /var partition", m.optionCheck("/var", "nosuid")},

		{"1.1.2.5.1", "Ensure separate partition exists for /var/tmp", m.partitionCheck("/var/tmp")},
		{"1.1.2.5.2", "Ensure nodev option set on /var/tmp partition", m.optionCheck("/var/tmp", "nodev")},
		{"1.1.2.5.3", "Ensure nosuid option set on /var/tmp partition", m.optionCheck("/var/tmp", "nosuid")},
		{"1.1.2.5.4", "Ensure noexec option set on /var/tmp partition", m.optionCheck("/var/tmp", "noexec")},

		{"1.1.2.6.1", "Ensure separate partition exists for /var/log", m.partitionCheck("/var/log")},
		{"1.1.2.6.2", "Ensure nodev option set on /var/log partition", m.optionCheck("/var/log", "nodev")},
		{"1.1.2.6.3", "Ensure nosuid option set on /var/log partition", m.optionCheck("/var/log", "nosuid")},
		{"1.1.2.6.4", "Ensure noexec option set on /var/log partition", m.optionCheck("/var/log", "noexec")},

		{"1.1.2.7.1", "Ensure separate partition exists for /var/log/audit", m.partitionCheck("/var/log/audit")},
		{"1.1.2.7.2", "Ensure nodev option set on /var/log/audit partition", m.optionCheck("/var/log/audit", "nodev")},
		{"1.1.2.7.3", "Ensure nosuid option set on /var/log/audit partition", m.optionCheck("/var/log/audit", "nosuid")},
		{"1.1.2.7.4", "Ensure noexec option set on /var/log/audit partition", m.optionCheck("/var/log/audit", "noexec")},
	})
}

// partitionCheck verifies a mount point is backed by its own filesystem.
func (m *Filesystem) partitionCheck(mountPoint string) checkFn {
	return func() (bool, string, error) {
		separate, err := m.Probe.SeparatePartition(mountPoint)
		if err != nil {
			return false, "", err
		}
		if separate {
			return true, fmt.Sprintf("%s is mounted on a separate partition", mountPoint), nil
		}
		return false, fmt.Sprintf("%s is not mounted on a separate partition. Remediation: create a separate partition for %s and update /etc/fstab",
			mountPoint, mountPoint), nil
	}
}

// optionCheck verifies a mount point carries the given mount option.
// An unmounted mount point fails the check, matching the partition check
// it depends on.
func (m *Filesystem) optionCheck(mountPoint, option string) checkFn {
	return func() (bool, string, error) {
		hasOption, mounted, err := m.Probe.MountHasOption(mountPoint, option)
		if err != nil {
			return false, "", err
		}
		if !mounted {
			return false, fmt.Sprintf("%s is not mounted, cannot verify the %s option. Remediation: mount %s with the %s option set in /etc/fstab",
				mountPoint, option, mountPoint, option), nil
		}
		if hasOption {
			return true, fmt.Sprintf("%s option is set on %s", option, mountPoint), nil
		}
		return false, fmt.Sprintf("%s option is not set on %s. Remediation: add %s to the %s entry in /etc/fstab and remount",
			option, mountPoint, option, mountPoint), nil
	}
}

// RunRemediations prints fstab guidance. Repartitioning and remount
// option changes are inherently manual, so this never mutates state and
// always reports success once the guidance is emitted.
func (m *Filesystem) RunRemediations() bool {
	fmt.Println("Filesystem partition remediation requires manual changes:")
	fmt.Println("  1. Create separate partitions (or logical volumes) for /tmp, /dev/shm,")
	fmt.Println("     /home, /var, /var/tmp, /var/log and /var/log/audit")
	fmt.Println("  2. Add fstab entries with the nodev, nosuid and noexec options, e.g.")
	fmt.Println("       UUID=<UUID> /tmp ext4 defaults,nodev,nosuid,noexec 0 2")
	fmt.Println("  3. Remount each filesystem: mount -o remount <mountpoint>")
	fmt.Println("Run the audit again after applying the changes.")
	return true
}
