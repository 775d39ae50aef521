package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/ciscan/internal/probe"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(probe.New(probe.NewExecutor()))
	require.NoError(t, err)
	return r
}

func TestRegistry_ModulesInBenchmarkOrder(t *testing.T) {
	r := newTestRegistry(t)

	assert.Equal(t, []string{
		"kernel",
		"filesystem",
		"package_management",
		"access_control",
		"bootloader",
		"process_hardening",
		"command_line_warning",
		"services",
	}, r.Names())
}

func TestRegistry_ResolveByName(t *testing.T) {
	r := newTestRegistry(t)

	modules, err := r.Resolve("bootloader")
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "bootloader", modules[0].Name())
}

func TestRegistry_ResolveByAlias(t *testing.T) {
	r := newTestRegistry(t)

	modules, err := r.Resolve("fs_kernel_modules")
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, "kernel", modules[0].Name())

	modules, err = r.Resolve("warning_banners")
	require.NoError(t, err)
	assert.Equal(t, "command_line_warning", modules[0].Name())

	modules, err = r.Resolve("services_audit")
	require.NoError(t, err)
	assert.Equal(t, "services", modules[0].Name())
}

func TestRegistry_ResolveEmptySelectsAll(t *testing.T) {
	r := newTestRegistry(t)

	modules, err := r.Resolve("")
	require.NoError(t, err)
	assert.Len(t, modules, 8)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve("networking")
	require.Error(t, err)

	var unknownErr *UnknownModuleError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "networking", unknownErr.Name)
	assert.Contains(t, err.Error(), "kernel")
	assert.Contains(t, err.Error(), "available")
}

func TestLoadExplanations(t *testing.T) {
	explanations, err := loadExplanations()
	require.NoError(t, err)
	assert.NotEmpty(t, explanations)

	for _, e := range explanations {
		assert.NotEmpty(t, e.SectionID)
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Overview)
	}
}

func TestExplanationFor_LongestPrefixWins(t *testing.T) {
	r := newTestRegistry(t)

	e, ok := r.ExplanationFor("1.1.1.3")
	require.True(t, ok)
	assert.Equal(t, "1.1.1", e.SectionID)

	// 1.1.2.2.1 belongs to the partitions section, not kernel modules.
	e, ok = r.ExplanationFor("1.1.2.2.1")
	require.True(t, ok)
	assert.Equal(t, "1.1.2", e.SectionID)

	e, ok = r.ExplanationFor("1.3.1.2")
	require.True(t, ok)
	assert.Equal(t, "1.3.1", e.SectionID)
}

func TestExplanationFor_Unknown(t *testing.T) {
	r := newTestRegistry(t)

	_, ok := r.ExplanationFor("9.9.9")
	assert.False(t, ok)
}

func TestExplanationFor_ItemNotes(t *testing.T) {
	r := newTestRegistry(t)

	e, ok := r.ExplanationFor("1.1.1.1")
	require.True(t, ok)
	assert.Contains(t, e.Items["1.1.1.1"], "cramfs")
}
