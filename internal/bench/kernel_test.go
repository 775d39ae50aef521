package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKernelFixture(t *testing.T, runner *fakeRunner) *KernelModules {
	t.Helper()
	p, _ := newFixtureProber(t, runner)
	return &KernelModules{Probe: p, ModprobeDir: p.ModprobeDirs[0]}
}

func TestKernelModules_LoadedModuleFails(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})
	writeFixture(t, m.Probe.ModulesPath, "squashfs 49152 1 - Live 0x0\n")

	r := findResult(t, m.RunChecks(), "1.1.1.6")

	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "loaded")
	assert.Contains(t, r.Message, "rmmod")
}

func TestKernelModules_AvailableModuleFailsWithHint(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})

	// Unknown modprobe keys default to loadable, nothing disabled.
	r := findResult(t, m.RunChecks(), "1.1.1.1")

	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "install cramfs /bin/true")
}

func TestKernelModules_NotAvailablePasses(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{
		out: map[string]string{
			"modprobe -n -v freevxfs": "modprobe: FATAL: Module freevxfs not found in directory\n",
		},
	})

	r := findResult(t, m.RunChecks(), "1.1.1.2")

	assert.True(t, r.Passed)
	assert.Contains(t, r.Message, "not available")
}

func TestKernelModules_DisabledPasses(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})
	writeFixture(t, filepath.Join(m.ModprobeDir, "disable-udf.conf"), "install udf /bin/true\n")

	r := findResult(t, m.RunChecks(), "1.1.1.7")

	assert.True(t, r.Passed)
}

func TestKernelModules_FATCompositeRequiresAllThree(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})
	writeFixture(t, filepath.Join(m.ModprobeDir, "disable-fat.conf"),
		"install fat /bin/true\ninstall vfat /bin/true\n")

	// msdos is still loadable, so the composite fails.
	r := findResult(t, m.RunChecks(), "1.1.1.8")

	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "msdos")
}

func TestKernelModules_RemediateThenAuditPasses(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})

	for _, r := range m.RunChecks() {
		assert.False(t, r.Passed, "check %s should fail before remediation", r.ID)
	}

	require.True(t, m.RunRemediations())

	for _, r := range m.RunChecks() {
		assert.True(t, r.Passed, "check %s should pass after remediation", r.ID)
	}
}

func TestKernelModules_RemediationWritesDisableFiles(t *testing.T) {
	m := newKernelFixture(t, &fakeRunner{})

	require.True(t, m.RunRemediations())

	data, err := os.ReadFile(filepath.Join(m.ModprobeDir, "disable-cramfs.conf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "install cramfs /bin/true")

	for _, name := range []string{"vfat", "msdos", "udf", "hfsplus"} {
		assert.FileExists(t, filepath.Join(m.ModprobeDir, "disable-"+name+".conf"))
	}
}

func TestKernelModules_Metadata(t *testing.T) {
	m := NewKernelModules(nil)

	assert.Equal(t, "kernel", m.Name())
	assert.Contains(t, m.Aliases(), "fs_kernel_modules")
	assert.Equal(t, "/etc/modprobe.d", m.ModprobeDir)
}
