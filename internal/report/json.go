package report

import (
	"encoding/json"
	"io"

	"github.com/ancients-collective/ciscan/internal/types"
)

// jsonResult is the wire form of one check result. Field names and the
// "<id> <description>" check format are a stable contract for downstream
// consumers; do not rename.
type jsonResult struct {
	Check   string `json:"check"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Passed  bool   `json:"passed"`
}

type jsonReport struct {
	Results []jsonResult `json:"results"`
}

// JSONFormatter writes an audit report as a single JSON object.
type JSONFormatter struct{}

// Write renders the report as pretty-printed JSON.
func (f *JSONFormatter) Write(w io.Writer, report *types.RunReport) error {
	out := jsonReport{Results: make([]jsonResult, 0, len(report.Results))}
	for _, r := range report.Results {
		out.Results = append(out.Results, jsonResult{
			Check:   r.ID + " " + r.Description,
			Status:  string(r.Status()),
			Message: r.Message,
			Passed:  r.Passed,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
