package controller

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/analyzer"
	"codecritic/internal/config"
	"codecritic/internal/judge"
	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// End-to-end pass over the hazard fixture: bundle, judge, and controller
// wired together the way the CLI wires them.
func TestPipelineOverSampleFixture(t *testing.T) {
	path := filepath.Join("..", "..", "testdata", "sample.py")
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	bundle := analyzer.NewBundle(cfg, nil)
	j := judge.New(cfg.Scoring, nil)
	ctrl := New(j, nil, bundle)

	rep := ctrl.RunFullScan(context.Background(),
		[]models.SourceUnit{syntax.NewSourceUnit("sample.py", string(content))}, "fixture-run")

	assert.Equal(t, "fixture-run", rep.ReviewID)
	assert.Equal(t, models.VerdictRequestChanges, rep.Verdict)
	assert.Equal(t, "HIGH", rep.RiskLevel)
	assert.GreaterOrEqual(t, rep.TotalUniqueIssues, 6)

	titles := map[string]bool{}
	categories := map[models.Category]bool{}
	for _, issue := range rep.Issues {
		titles[issue.Title] = true
		categories[issue.Category] = true
	}
	assert.Contains(t, titles, "Possible secret: Generic_API_Key")
	assert.Contains(t, titles, "Route 'admin_panel' has no auth decorator")
	assert.Contains(t, titles, "Potential IO inside loop")
	assert.Contains(t, titles, "Blocking call 'time.sleep' in async function")
	assert.Contains(t, titles, "Command_Injection via os.system")
	assert.Contains(t, titles, "Infinite Loop Risk: while true")
	assert.True(t, categories[models.CategorySecurity])
	assert.True(t, categories[models.CategoryPerformance])
}
