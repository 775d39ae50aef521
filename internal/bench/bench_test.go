package bench

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/ciscan/internal/probe"
	"github.com/ancients-collective/ciscan/internal/types"
)

// fakeRunner returns canned output keyed by "cmd arg1 arg2...". Unknown
// keys return empty output and no error.
type fakeRunner struct {
	out map[string]string
	err map[string]error
}

func (f *fakeRunner) Execute(cmd string, args []string) ([]byte, error) {
	key := strings.TrimSpace(cmd + " " + strings.Join(args, " "))
	return []byte(f.out[key]), f.err[key]
}

// newFixtureProber builds a prober over a temp directory tree with an
// empty loaded-modules list.
func newFixtureProber(t *testing.T, runner probe.Runner) (*probe.Prober, string) {
	t.Helper()
	dir := t.TempDir()
	p := probe.New(runner)
	p.ModulesPath = filepath.Join(dir, "modules")
	p.SysctlRoot = filepath.Join(dir, "sys")
	p.ModprobeDirs = []string{filepath.Join(dir, "modprobe.d")}
	writeFixture(t, p.ModulesPath, "")
	require.NoError(t, os.MkdirAll(p.ModprobeDirs[0], 0o755))
	return p, dir
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// findResult returns the result with the given check ID, failing the test
// when absent.
func findResult(t *testing.T, results []types.CheckResult, id string) types.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no result with ID %s", id)
	return types.CheckResult{}
}
