package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ancients-collective/ciscan/internal/registry"
	"github.com/ancients-collective/ciscan/internal/types"
)

// Explainer resolves a check ID to the plain-language explanation of its
// benchmark section. Satisfied by *registry.Registry.
type Explainer interface {
	ExplanationFor(checkID string) (registry.Explanation, bool)
}

// FriendlyFormatter writes an explanatory report for non-technical
// readers: results grouped by benchmark section, with each section's
// purpose spelled out. Checks whose section has no explanation fall back
// to the technical line format.
type FriendlyFormatter struct {
	Explain Explainer
}

// Write renders the full user-friendly report.
func (f *FriendlyFormatter) Write(w io.Writer, report *types.RunReport) error {
	currentSection := ""
	for _, r := range report.Results {
		e, ok := f.Explain.ExplanationFor(r.ID)
		if !ok {
			(&TextFormatter{Quiet: true}).writeResultLine(w, r)
			continue
		}

		if e.SectionID != currentSection {
			currentSection = e.SectionID
			f.writeSectionHeader(w, e)
		}
		f.writeResult(w, r, e)
	}

	f.writeVerdict(w, report)
	return nil
}

func (f *FriendlyFormatter) writeSectionHeader(w io.Writer, e registry.Explanation) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "%s\n", cBold("Security Check: "+e.Title))
	fmt.Fprintf(w, "%s\n", rule)
	fmt.Fprintf(w, "\nWhat this means: %s\n", e.Overview)
	fmt.Fprintf(w, "\nWhy it's important: %s\n", e.Importance)
	fmt.Fprintln(w, "\nWhat the results mean:")
	fmt.Fprintf(w, "  %s %s\n", cGreen("PASS:"), e.PassMeaning)
	fmt.Fprintf(w, "  %s %s\n", cRed("FAIL:"), e.FailMeaning)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", cDim(strings.Repeat("-", ruleWidth)))
}

func (f *FriendlyFormatter) writeResult(w io.Writer, r types.CheckResult, e registry.Explanation) {
	status := cRedBold("VULNERABLE")
	if r.Passed {
		status = cGreenBold("SECURE")
	}

	fmt.Fprintf(w, "\n%s: %s\n", status, r.Description)
	if note, ok := e.Items[r.ID]; ok {
		fmt.Fprintf(w, "What is it: %s\n", note)
	}
	if r.Passed {
		fmt.Fprintf(w, "%s\n", cGreen("Status: this item is properly secured on your system."))
	} else {
		fmt.Fprintf(w, "%s\n", cRed("Status: this item is not properly secured and poses a potential risk."))
		fmt.Fprintf(w, "Details: %s\n", r.Message)
	}
}

func (f *FriendlyFormatter) writeVerdict(w io.Writer, report *types.RunReport) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", cDim(strings.Repeat("-", ruleWidth)))
	if report.AllPassed() {
		fmt.Fprintf(w, "%s\n", cGreenBold("Overall Result: SECURE"))
		fmt.Fprintln(w, "All audited items are properly secured.")
		return
	}
	fmt.Fprintf(w, "%s\n", cRedBold("Overall Result: VULNERABLE"))
	fmt.Fprintf(w, "%d of %d audited items are not properly secured and pose potential risks.\n",
		report.Summary.Failed, report.Summary.Total)
	fmt.Fprintln(w, "Recommendation: run the remediation to secure these items.")
}
