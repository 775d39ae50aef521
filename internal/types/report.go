package types

import "time"

// Host describes the audited system, shown in report headers.
type Host struct {
	// Hostname is the system hostname.
	Hostname string

	// DistroID is the Linux distribution ID, e.g. "ubuntu".
	DistroID string

	// DistroVersion is the distribution release, e.g. "22.04".
	DistroVersion string

	// Kernel is the running kernel version.
	Kernel string

	// IsRoot indicates whether the run had root privileges.
	IsRoot bool
}

// Summary provides aggregate pass/fail counts for a run.
// Invariant: Passed + Failed == Total == number of results.
type Summary struct {
	Passed int
	Failed int
	Total  int
}

// RunReport is the collected outcome of a single audit invocation.
// It is a derived value, recomputed per run, never persisted.
type RunReport struct {
	// RunID uniquely identifies this invocation.
	RunID string

	// Timestamp is when the audit started.
	Timestamp time.Time

	// Host describes the audited system.
	Host Host

	// Results is the ordered list of check outcomes, preserving module
	// declaration order and within-module check order.
	Results []CheckResult

	// Summary holds the aggregate counts over Results.
	Summary Summary
}

// NewRunReport assembles a report from an ordered result list, computing
// the summary counts.
func NewRunReport(runID string, ts time.Time, host Host, results []CheckResult) *RunReport {
	var passed, failed int
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return &RunReport{
		RunID:     runID,
		Timestamp: ts,
		Host:      host,
		Results:   results,
		Summary: Summary{
			Passed: passed,
			Failed: failed,
			Total:  len(results),
		},
	}
}

// AllPassed reports whether every check in the run passed.
func (r *RunReport) AllPassed() bool {
	return r.Summary.Failed == 0
}
