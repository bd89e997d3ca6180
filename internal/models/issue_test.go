package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "NITPICK", SeverityNitpick.String())
	assert.Equal(t, "CRITICAL", SeverityCritical.String())
	assert.Equal(t, "UNKNOWN", Severity(42).String())
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, SeverityCritical > SeverityHigh)
	assert.True(t, SeverityHigh > SeverityMedium)
	assert.True(t, SeverityMedium > SeverityLow)
	assert.True(t, SeverityLow > SeverityNitpick)
}

func TestIssueFingerprint(t *testing.T) {
	a := Issue{FilePath: "api.py", LineStart: 3, LineEnd: 4, Category: CategorySecurity, Title: "Possible secret: AWS_Access_Key"}
	b := a
	b.ID = "c_other"
	b.Severity = SeverityLow // severity is not part of identity
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := a
	c.LineEnd = 5
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestIssueJSONShape(t *testing.T) {
	issue := Issue{
		ID:        "c_12345678",
		FilePath:  "api.py",
		LineStart: 1,
		LineEnd:   2,
		Category:  CategorySecurity,
		Severity:  SeverityHigh,
		Title:     "t",
		Body:      "b",
		Rationale: "r",
	}
	data, err := json.Marshal(issue)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "HIGH", decoded["severity"])
	assert.Equal(t, "api.py", decoded["file_path"])
	assert.Equal(t, float64(1), decoded["line_start"])
	_, hasSuggestion := decoded["suggestion"]
	assert.False(t, hasSuggestion, "empty suggestion should be omitted")
}

func TestAggregateReportJSONKeys(t *testing.T) {
	rep := AggregateReport{
		ReviewID:     "rev",
		Verdict:      VerdictApprove,
		QualityScore: 100,
		Issues:       []Issue{},
	}
	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"final_verdict":"APPROVE"`)
	assert.Contains(t, string(data), `"total_vulnerabilities":0`)
	assert.Contains(t, string(data), `"comments":[]`)
}
