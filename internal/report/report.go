// Package report provides formatters that render audit reports in
// different formats.
package report

import (
	"io"

	"github.com/ancients-collective/ciscan/internal/types"
)

// Formatter writes an audit report to the given writer.
type Formatter interface {
	Write(w io.Writer, report *types.RunReport) error
}
