// Package types defines shared type definitions used across all ciscan packages.
package types

// Status is the reported outcome of a benchmark check.
type Status string

const (
	// StatusPass means the system satisfies the benchmark item.
	StatusPass Status = "PASS"
	// StatusFail means the system does not satisfy the benchmark item,
	// or the probe could not determine the system state.
	StatusFail Status = "FAIL"
)

// CheckResult holds the outcome of auditing a single benchmark item.
// It is immutable once produced: created by a check, consumed by reporters.
type CheckResult struct {
	// ID is the benchmark item identifier, e.g. "1.1.1.1".
	ID string

	// Description is the benchmark item title, e.g.
	// "Ensure cramfs kernel module is not available".
	Description string

	// Passed reports whether the check succeeded.
	Passed bool

	// Message explains the observed state and, on failure, carries a
	// remediation hint.
	Message string
}

// Status returns the PASS/FAIL status derived from Passed.
func (r CheckResult) Status() Status {
	if r.Passed {
		return StatusPass
	}
	return StatusFail
}

// FailedResult builds a failing CheckResult for a probe that could not
// determine system state. The message describes the probe failure so a
// broken check never silently disappears from the report.
func FailedResult(id, description string, err error) CheckResult {
	return CheckResult{
		ID:          id,
		Description: description,
		Passed:      false,
		Message:     "probe failed: " + err.Error(),
	}
}
