package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ancients-collective/ciscan/internal/types"
)

// ruleWidth is the width of horizontal divider rules.
const ruleWidth = 64

// Color helpers, each returns a sprint function.
var (
	cBold      = color.New(color.Bold).SprintFunc()
	cGreen     = color.New(color.FgGreen).SprintFunc()
	cRed       = color.New(color.FgRed).SprintFunc()
	cDim       = color.New(color.Faint).SprintFunc()
	cGreenBold = color.New(color.FgGreen, color.Bold).SprintFunc()
	cRedBold   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// TextFormatter writes a colored, technical line-per-check report.
type TextFormatter struct {
	// Quiet suppresses the header and host block.
	Quiet bool
}

// Write renders the full text report.
func (f *TextFormatter) Write(w io.Writer, report *types.RunReport) error {
	if !f.Quiet {
		f.writeHeader(w, report)
	}

	for _, r := range report.Results {
		f.writeResultLine(w, r)
	}

	f.writeSummary(w, report)
	return nil
}

func (f *TextFormatter) writeHeader(w io.Writer, r *types.RunReport) {
	fmt.Fprintf(w, "%s\n", cBold("CIS Ubuntu 22.04 LTS Benchmark Audit"))
	fmt.Fprintf(w, "%s %s\n", cDim("Run:"), r.RunID)
	fmt.Fprintf(w, "%s %s\n", cDim("Started:"), r.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	if r.Host.Hostname != "" {
		fmt.Fprintf(w, "%s %s (%s %s, kernel %s)\n", cDim("Host:"),
			r.Host.Hostname, r.Host.DistroID, r.Host.DistroVersion, r.Host.Kernel)
	}
	if !r.Host.IsRoot {
		fmt.Fprintf(w, "%s\n", cDim("Running as non-root: some checks may produce incomplete results"))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) writeResultLine(w io.Writer, r types.CheckResult) {
	status := cRed("[FAIL]")
	if r.Passed {
		status = cGreen("[PASS]")
	}
	fmt.Fprintf(w, "%s %s %s: %s\n", status, r.ID, r.Description, r.Message)
}

func (f *TextFormatter) writeSummary(w io.Writer, r *types.RunReport) {
	rule := cDim(strings.Repeat("-", ruleWidth))
	fmt.Fprintf(w, "%s\n", rule)

	s := r.Summary
	fmt.Fprintf(w, "%s %s, %s, %d total\n",
		cBold("Summary:"),
		cGreenBold(fmt.Sprintf("%d passed", s.Passed)),
		cRedBold(fmt.Sprintf("%d failed", s.Failed)),
		s.Total)
	fmt.Fprintf(w, "%s\n", rule)
}
