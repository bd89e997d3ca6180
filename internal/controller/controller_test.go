package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codecritic/internal/config"
	"codecritic/internal/judge"
	"codecritic/internal/models"
)

func fixedProducer(name string, issues ...models.Issue) Producer {
	return IssueFunc{
		ProducerName: name,
		Fn: func(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
			return issues, nil
		},
	}
}

func testIssue(file string, line int, sev models.Severity, title string) models.Issue {
	return models.Issue{
		ID:        "c_test",
		FilePath:  file,
		LineStart: line,
		LineEnd:   line,
		Category:  models.CategoryPerformance,
		Severity:  sev,
		Title:     title,
	}
}

func newController(producers ...Producer) *Controller {
	j := judge.New(config.DefaultConfig().Scoring, nil)
	return New(j, nil, producers...)
}

func TestRunFullScanUnionsProducers(t *testing.T) {
	c := newController(
		fixedProducer("a", testIssue("x.py", 1, models.SeverityMedium, "first")),
		fixedProducer("b", testIssue("x.py", 2, models.SeverityLow, "second")),
	)
	rep := c.RunFullScan(context.Background(), nil, "rev-1")
	assert.Equal(t, "rev-1", rep.ReviewID)
	assert.Equal(t, 2, rep.TotalUniqueIssues)
	assert.Equal(t, 100-5-1, rep.QualityScore)
}

func TestRunFullScanIsolatesFailures(t *testing.T) {
	t.Run("erroring producer contributes nothing", func(t *testing.T) {
		failing := IssueFunc{
			ProducerName: "flaky",
			Fn: func(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
				return nil, errors.New("upstream timeout")
			},
		}
		c := newController(
			failing,
			fixedProducer("steady", testIssue("x.py", 3, models.SeverityHigh, "kept")),
		)
		rep := c.RunFullScan(context.Background(), nil, "")
		require.Len(t, rep.Issues, 1)
		assert.Equal(t, "kept", rep.Issues[0].Title)
	})

	t.Run("panicking producer contributes nothing", func(t *testing.T) {
		panicking := IssueFunc{
			ProducerName: "crashy",
			Fn: func(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
				panic("index out of range")
			},
		}
		c := newController(
			panicking,
			fixedProducer("steady", testIssue("x.py", 4, models.SeverityLow, "kept")),
		)
		rep := c.RunFullScan(context.Background(), nil, "")
		require.Len(t, rep.Issues, 1)
		assert.Equal(t, "kept", rep.Issues[0].Title)
	})

	t.Run("all producers failing still yields a report", func(t *testing.T) {
		failing := IssueFunc{
			ProducerName: "flaky",
			Fn: func(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
				return nil, errors.New("down")
			},
		}
		rep := newController(failing).RunFullScan(context.Background(), nil, "")
		assert.Equal(t, 0, rep.TotalUniqueIssues)
		assert.Equal(t, models.VerdictApprove, rep.Verdict)
	})
}

func TestRunFullScanNoProducers(t *testing.T) {
	rep := newController().RunFullScan(context.Background(), nil, "")
	assert.NotEmpty(t, rep.ReviewID)
	assert.Equal(t, models.VerdictCommentOnly, rep.Verdict)
	assert.Equal(t, 0, rep.QualityScore)
	assert.Equal(t, "Unknown", rep.RiskLevel)
	assert.Equal(t, "No producers were active.", rep.Summary)
	assert.Empty(t, rep.Issues)
}

func TestRunFullScanGeneratesReviewID(t *testing.T) {
	c := newController(fixedProducer("a"))
	first := c.RunFullScan(context.Background(), nil, "")
	second := c.RunFullScan(context.Background(), nil, "")
	assert.NotEmpty(t, first.ReviewID)
	assert.NotEqual(t, first.ReviewID, second.ReviewID)
}

func TestRunFullScanDeduplicatesAcrossProducers(t *testing.T) {
	dup := testIssue("x.py", 7, models.SeverityHigh, "shared finding")
	c := newController(fixedProducer("a", dup), fixedProducer("b", dup))
	rep := c.RunFullScan(context.Background(), nil, "")
	assert.Equal(t, 1, rep.TotalUniqueIssues)
	assert.Equal(t, 100-15, rep.QualityScore)
}

func TestIssueFuncDefaults(t *testing.T) {
	var anon IssueFunc
	assert.Equal(t, "anonymous-producer", anon.Name())
	_, err := anon.Run(context.Background(), models.Payload{})
	assert.Error(t, err)
}
