package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_CommandAndModule(t *testing.T) {
	cfg, err := parseFlags([]string{"audit", "kernel"})
	require.NoError(t, err)

	assert.Equal(t, "audit", cfg.Command)
	assert.Equal(t, "kernel", cfg.Module)
	assert.Equal(t, "text", cfg.Format)
}

func TestParseFlags_CommandOnly(t *testing.T) {
	cfg, err := parseFlags([]string{"remediate"})
	require.NoError(t, err)

	assert.Equal(t, "remediate", cfg.Command)
	assert.Empty(t, cfg.Module)
}

func TestParseFlags_FlagsBeforeCommand(t *testing.T) {
	cfg, err := parseFlags([]string{"--friendly", "--no-color", "audit", "filesystem"})
	require.NoError(t, err)

	assert.True(t, cfg.Friendly)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "audit", cfg.Command)
	assert.Equal(t, "filesystem", cfg.Module)
}

func TestParseFlags_Shorthands(t *testing.T) {
	cfg, err := parseFlags([]string{"-f", "json", "-o", "out.json", "-q", "audit"})
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "out.json", cfg.OutputFile)
	assert.True(t, cfg.Quiet)
}

func TestParseFlags_TechnicalFlag(t *testing.T) {
	cfg, err := parseFlags([]string{"--technical", "audit"})
	require.NoError(t, err)

	assert.True(t, cfg.Technical)
	assert.False(t, cfg.Friendly)
}

func TestParseFlags_TooManyArgs(t *testing.T) {
	_, err := parseFlags([]string{"audit", "kernel", "extra"})
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", Config{Format: "text"}, true},
		{"json", Config{Format: "json"}, true},
		{"friendly text", Config{Format: "text", Friendly: true}, true},
		{"invalid format", Config{Format: "xml"}, false},
		{"friendly json conflict", Config{Format: "json", Friendly: true}, false},
		{"technical", Config{Format: "text", Technical: true}, true},
		{"friendly technical conflict", Config{Format: "text", Friendly: true, Technical: true}, false},
		{"batch output conflict", Config{Format: "text", Batch: true, OutputFile: "x"}, false},
		{"batch alone", Config{Format: "text", Batch: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := validateFlags(&tt.cfg)
			if tt.ok {
				assert.Equal(t, -1, code)
			} else {
				assert.Equal(t, 1, code)
			}
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	assert.Equal(t, 1, run(&Config{Format: "text", Command: "scan"}))
}

func TestRun_MissingCommand(t *testing.T) {
	assert.Equal(t, 1, run(&Config{Format: "text"}))
}

func TestRun_ListModules(t *testing.T) {
	assert.Equal(t, 0, run(&Config{Format: "text", ListModules: true}))
}
