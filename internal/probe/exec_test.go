package probe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecutor_IsAllowed(t *testing.T) {
	e := NewExecutor()

	assert.True(t, e.IsAllowed("dpkg"))
	assert.True(t, e.IsAllowed("modprobe"))
	assert.True(t, e.IsAllowed("rmmod"))
	assert.False(t, e.IsAllowed("bash"))
	assert.False(t, e.IsAllowed("rm"))
}

func TestExecutor_Execute_RejectsUnlisted(t *testing.T) {
	e := NewExecutor()

	_, err := e.Execute("bash", []string{"-c", "true"})
	assert.ErrorContains(t, err, "not in allowlist")
}

func TestValidateArgs(t *testing.T) {
	spec := CommandSpec{
		AllowedFlags: []string{"-s", "is-enabled"},
		MaxArgs:      1,
		Timeout:      time.Second,
	}

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"allowed flag with name", []string{"-s", "apparmor"}, false},
		{"subcommand with name", []string{"is-enabled", "apport.service"}, false},
		{"disallowed flag", []string{"--force", "x"}, true},
		{"too many positionals", []string{"a", "b"}, true},
		{"shell metacharacters", []string{"pkg;rm -rf /"}, true},
		{"path separator", []string{"../../etc/passwd"}, true},
		{"empty argument", []string{""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArgs(spec, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePositionalArg_Length(t *testing.T) {
	long := make([]byte, maxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, validatePositionalArg(string(long)))
	assert.NoError(t, validatePositionalArg("usb-storage"))
	assert.NoError(t, validatePositionalArg("apport.service"))
}
