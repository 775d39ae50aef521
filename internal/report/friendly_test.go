package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ancients-collective/ciscan/internal/registry"
)

// stubExplainer serves a fixed explanation catalog keyed by section prefix.
type stubExplainer struct {
	sections []registry.Explanation
}

func (s *stubExplainer) ExplanationFor(checkID string) (registry.Explanation, bool) {
	for _, e := range s.sections {
		if strings.HasPrefix(checkID, e.SectionID+".") {
			return e, true
		}
	}
	return registry.Explanation{}, false
}

func newStubExplainer() *stubExplainer {
	return &stubExplainer{sections: []registry.Explanation{
		{
			SectionID:   "1.1.1",
			Title:       "Filesystem Kernel Modules",
			Overview:    "These checks ensure unnecessary filesystem modules are disabled.",
			Importance:  "Fewer modules means a smaller attack surface.",
			PassMeaning: "The module is disabled.",
			FailMeaning: "The module can be loaded.",
			Items: map[string]string{
				"1.1.1.1": "cramfs is an old read-only filesystem.",
			},
		},
		{
			SectionID:   "1.1.2",
			Title:       "Filesystem Partitions",
			Overview:    "These checks verify partition isolation.",
			Importance:  "Separate partitions limit damage.",
			PassMeaning: "The directory is isolated.",
			FailMeaning: "The directory shares the root filesystem.",
		},
	}}
}

func renderFriendly(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	f := &FriendlyFormatter{Explain: newStubExplainer()}
	require.NoError(t, f.Write(&buf, newTestReport()))
	return buf.String()
}

func TestFriendlyFormatter_SectionHeaders(t *testing.T) {
	out := renderFriendly(t)

	assert.Contains(t, out, "Security Check: Filesystem Kernel Modules")
	assert.Contains(t, out, "What this means: These checks ensure unnecessary filesystem modules are disabled.")
	assert.Contains(t, out, "Why it's important: Fewer modules means a smaller attack surface.")
	assert.Contains(t, out, "PASS: The module is disabled.")
	assert.Contains(t, out, "FAIL: The module can be loaded.")
}

func TestFriendlyFormatter_ItemNotes(t *testing.T) {
	out := renderFriendly(t)

	assert.Contains(t, out, "SECURE: Ensure cramfs kernel module is not available")
	assert.Contains(t, out, "What is it: cramfs is an old read-only filesystem.")
}

func TestFriendlyFormatter_FailedItemShowsDetails(t *testing.T) {
	out := renderFriendly(t)

	assert.Contains(t, out, "VULNERABLE: Ensure /tmp is a separate partition")
	assert.Contains(t, out, "Details: /tmp is not mounted on a separate partition")
}

func TestFriendlyFormatter_UnknownSectionFallsBackToTechnical(t *testing.T) {
	out := renderFriendly(t)

	// 1.4.1 has no explanation in the stub, so it renders as a plain
	// technical line.
	assert.Contains(t, out, "[FAIL] 1.4.1 Ensure bootloader password is set: bootloader password is not set")
}

func TestFriendlyFormatter_Verdict(t *testing.T) {
	out := renderFriendly(t)

	assert.Contains(t, out, "Overall Result: VULNERABLE")
	assert.Contains(t, out, "2 of 3 audited items")
}

func TestFriendlyFormatter_AllPassedVerdict(t *testing.T) {
	var buf bytes.Buffer
	f := &FriendlyFormatter{Explain: newStubExplainer()}
	require.NoError(t, f.Write(&buf, newCleanReport()))

	assert.Contains(t, buf.String(), "Overall Result: SECURE")
}
