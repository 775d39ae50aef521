package probe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute path", "/etc/motd", false},
		{"cleans redundant separators", "/etc//motd", false},
		{"empty", "", true},
		{"relative", "etc/motd", true},
		{"traversal", "/etc/../../../root/.ssh", true},
		{"single parent segment", "/etc/apt/../shadow", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReadFileLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner")
	require.NoError(t, os.WriteFile(path, []byte("Authorized users only.\n"), 0o644))

	data, err := ReadFileLimited(path)
	require.NoError(t, err)
	assert.Equal(t, "Authorized users only.\n", string(data))
}

func TestReadFileLimited_Missing(t *testing.T) {
	_, err := ReadFileLimited(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadFileLimited_NonRegular(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFileLimited(dir)
	assert.Error(t, err)
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grub.cfg")
	require.NoError(t, os.WriteFile(path, []byte("set timeout=5\n"), 0o644))
	require.NoError(t, os.Chmod(path, 0o400))

	st, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o400), st.Mode)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "issue")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
	assert.False(t, FileExists(dir))
	assert.False(t, FileExists("relative/path"))
}
