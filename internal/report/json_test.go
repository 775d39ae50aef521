package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Schema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newTestReport()))

	var decoded struct {
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 3)

	first := decoded.Results[0]
	assert.Equal(t, "1.1.1.1 Ensure cramfs kernel module is not available", first["check"])
	assert.Equal(t, "PASS", first["status"])
	assert.Equal(t, true, first["passed"])
	assert.NotEmpty(t, first["message"])

	failed := decoded.Results[1]
	assert.Equal(t, "1.1.2.1 Ensure /tmp is a separate partition", failed["check"])
	assert.Equal(t, "FAIL", failed["status"])
	assert.Equal(t, false, failed["passed"])
	assert.Contains(t, failed["message"], "Remediation")
}

func TestJSONFormatter_ExactFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, newCleanReport()))

	out := buf.String()
	assert.Contains(t, out, `"results"`)
	assert.Contains(t, out, `"check"`)
	assert.Contains(t, out, `"status"`)
	assert.Contains(t, out, `"message"`)
	assert.Contains(t, out, `"passed"`)
}

func TestJSONFormatter_EmptyReport(t *testing.T) {
	rep := newCleanReport()
	rep.Results = nil

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Write(&buf, rep))

	var decoded struct {
		Results []interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.NotNil(t, decoded.Results)
	assert.Empty(t, decoded.Results)
}
