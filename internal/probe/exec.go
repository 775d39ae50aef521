package probe

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandSpec defines the constraints for an allowlisted command.
type CommandSpec struct {
	// Path is the resolved absolute path to the command binary.
	// Resolved at construction time via exec.LookPath, with a hardcoded fallback.
	Path string

	// AllowedFlags are the flags/subcommands that can be passed.
	AllowedFlags []string

	// MaxArgs is the maximum number of positional (non-flag) arguments allowed.
	MaxArgs int

	// Timeout is the maximum execution time for this command.
	Timeout time.Duration
}

// Executor runs only pre-approved system commands with validated arguments.
// This is the boundary that keeps benchmark probing from turning into
// arbitrary command execution.
type Executor struct {
	allowlist map[string]CommandSpec
}

// resolveCommandPath attempts to find the command using exec.LookPath.
// Falls back to the provided default path if LookPath fails.
func resolveCommandPath(name, fallbackPath string) string {
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return fallbackPath
}

// NewExecutor creates an executor with the commands the benchmark probes
// and remediations need. Paths are resolved via exec.LookPath at
// construction time, with hardcoded fallbacks for systems where the
// binary isn't in PATH.
func NewExecutor() *Executor {
	type entry struct {
		name         string
		fallbackPath string
		allowedFlags []string
		maxArgs      int
		timeout      time.Duration
	}

	entries := []entry{
		{"dpkg", "/usr/bin/dpkg", []string{"-s", "--status"}, 2, 5 * time.Second},
		{"systemctl", "/usr/bin/systemctl", []string{"is-active", "is-enabled"}, 1, 5 * time.Second},
		{"apparmor_status", "/usr/sbin/apparmor_status", nil, 0, 5 * time.Second},
		{"modprobe", "/usr/sbin/modprobe", []string{"-n", "-v", "-r"}, 1, 5 * time.Second},
		{"rmmod", "/usr/sbin/rmmod", nil, 1, 5 * time.Second},
		{"apt", "/usr/bin/apt", []string{"list", "--upgradable"}, 0, 30 * time.Second},
	}

	allowlist := make(map[string]CommandSpec, len(entries))
	for _, e := range entries {
		allowlist[e.name] = CommandSpec{
			Path:         resolveCommandPath(e.name, e.fallbackPath),
			AllowedFlags: e.allowedFlags,
			MaxArgs:      e.maxArgs,
			Timeout:      e.timeout,
		}
	}

	return &Executor{allowlist: allowlist}
}

// IsAllowed checks whether a command is in the allowlist.
func (e *Executor) IsAllowed(cmd string) bool {
	_, ok := e.allowlist[cmd]
	return ok
}

// Execute runs an allowlisted command with validated arguments.
// Returns stdout output or an error. Never uses shell invocation.
// A non-zero exit status is returned as an *exec.ExitError; callers that
// probe status commands (dpkg -s, systemctl is-enabled) tolerate it and
// inspect the captured output.
func (e *Executor) Execute(cmd string, args []string) ([]byte, error) {
	spec, ok := e.allowlist[cmd]
	if !ok {
		return nil, fmt.Errorf("command %q not in allowlist", cmd)
	}

	if err := validateArgs(spec, args); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), spec.Timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, spec.Path, args...)
	output, err := execCmd.Output()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command %q timed out after %v", cmd, spec.Timeout)
	}

	return output, err
}

// validateArgs checks that all arguments comply with the CommandSpec constraints.
func validateArgs(spec CommandSpec, args []string) error {
	positionalCount := 0

	for _, arg := range args {
		if strings.HasPrefix(arg, "-") {
			if !isAllowedFlag(spec.AllowedFlags, arg) {
				return fmt.Errorf("flag %q not allowed for this command (allowed: %s)",
					arg, strings.Join(spec.AllowedFlags, ", "))
			}
			continue
		}
		if isAllowedFlag(spec.AllowedFlags, arg) {
			// Subcommands like "is-active" or "list" are listed as allowed flags.
			continue
		}
		positionalCount++
		if positionalCount > spec.MaxArgs {
			return fmt.Errorf("too many positional arguments: max %d", spec.MaxArgs)
		}
		if err := validatePositionalArg(arg); err != nil {
			return err
		}
	}

	return nil
}

// isAllowedFlag checks whether an argument is in the allowed set.
func isAllowedFlag(allowed []string, arg string) bool {
	for _, a := range allowed {
		if a == arg {
			return true
		}
	}
	return false
}

// validatePositionalArg rejects arguments with shell metacharacters or
// path separators. Positional arguments are package, service, and kernel
// module names, never paths.
func validatePositionalArg(arg string) error {
	if arg == "" {
		return fmt.Errorf("empty argument not allowed")
	}
	if len(arg) > maxNameLength {
		return fmt.Errorf("argument too long: %d characters (max %d)", len(arg), maxNameLength)
	}
	if !namePattern.MatchString(arg) {
		return fmt.Errorf("argument %q contains disallowed characters", arg)
	}
	return nil
}

// isExitError reports whether err wraps an *exec.ExitError, meaning the
// command ran but exited non-zero. Other errors (binary missing, timeout)
// are real probe failures.
func isExitError(err error) bool {
	_, ok := err.(*exec.ExitError)
	return ok
}
