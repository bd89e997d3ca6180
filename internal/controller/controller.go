// Package controller orchestrates one full scan: it fans the file set out
// to every registered producer in parallel, isolates per-producer
// failure, and hands the unioned issues to the judge.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codecritic/internal/judge"
	"codecritic/internal/models"
)

// Producer is anything that yields issues for a file set: the bundled
// deterministic analyzers, or an external reasoning collaborator. Run
// must be pure with respect to the payload and tolerate an empty file
// list.
type Producer interface {
	Name() string
	Run(ctx context.Context, payload models.Payload) ([]models.Issue, error)
}

// Controller executes the review process. Producers are injected at
// construction so tests control exactly which ones run.
type Controller struct {
	producers []Producer
	judge     *judge.Judge
	logger    *zap.Logger
}

func New(j *judge.Judge, logger *zap.Logger, producers ...Producer) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{producers: producers, judge: j, logger: logger}
}

// RunFullScan dispatches one shared payload to all producers, waits for
// all of them, and aggregates. One producer's failure never aborts the
// others or the overall scan.
func (c *Controller) RunFullScan(ctx context.Context, files []models.SourceUnit, reviewID string) models.AggregateReport {
	start := time.Now()
	if reviewID == "" {
		reviewID = uuid.NewString()
	}
	if len(c.producers) == 0 {
		return c.emptyReport(reviewID, time.Since(start))
	}

	payload := models.Payload{Files: files, Context: models.ReviewContext{}}
	c.logger.Info("dispatching scan",
		zap.String("review_id", reviewID),
		zap.Int("producers", len(c.producers)),
		zap.Int("files", len(files)))

	results := make([][]models.Issue, len(c.producers))
	g, gctx := errgroup.WithContext(ctx)
	for i, producer := range c.producers {
		i, producer := i, producer
		g.Go(func() error {
			results[i] = c.safeRun(gctx, producer, payload)
			return nil
		})
	}
	// Producers never surface errors through the group; failures were
	// already logged and replaced with empty slices.
	_ = g.Wait()

	var allIssues []models.Issue
	for _, issues := range results {
		allIssues = append(allIssues, issues...)
	}

	evaluation := c.judge.Evaluate(allIssues, files)
	return models.AggregateReport{
		ReviewID:          reviewID,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Verdict:           evaluation.Verdict,
		QualityScore:      evaluation.QualityScore,
		RiskLevel:         evaluation.RiskLevel,
		TotalUniqueIssues: evaluation.TotalUnique,
		ScanDurationMS:    float64(time.Since(start).Microseconds()) / 1000.0,
		Summary:           evaluation.Summary,
		Praise:            []string{"System operational."},
		Issues:            evaluation.Issues,
	}
}

// safeRun executes a single producer, catching panics and errors so a
// broken producer contributes an empty issue list instead of killing the
// scan.
func (c *Controller) safeRun(ctx context.Context, producer Producer, payload models.Payload) (issues []models.Issue) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("producer panicked",
				zap.String("producer", producer.Name()),
				zap.Any("panic", r))
			issues = nil
		}
	}()
	issues, err := producer.Run(ctx, payload)
	if err != nil {
		c.logger.Error("producer failed",
			zap.String("producer", producer.Name()),
			zap.Error(err))
		return nil
	}
	return issues
}

func (c *Controller) emptyReport(reviewID string, elapsed time.Duration) models.AggregateReport {
	c.logger.Warn("no producers registered", zap.String("review_id", reviewID))
	return models.AggregateReport{
		ReviewID:          reviewID,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Verdict:           models.VerdictCommentOnly,
		QualityScore:      0,
		RiskLevel:         "Unknown",
		TotalUniqueIssues: 0,
		ScanDurationMS:    float64(elapsed.Microseconds()) / 1000.0,
		Summary:           "No producers were active.",
		Praise:            []string{},
		Issues:            []models.Issue{},
	}
}

// IssueFunc adapts a plain function into a Producer, which keeps external
// collaborators and test doubles one line long.
type IssueFunc struct {
	ProducerName string
	Fn           func(ctx context.Context, payload models.Payload) ([]models.Issue, error)
}

func (f IssueFunc) Name() string {
	if f.ProducerName == "" {
		return "anonymous-producer"
	}
	return f.ProducerName
}

func (f IssueFunc) Run(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
	if f.Fn == nil {
		return nil, fmt.Errorf("producer %s has no run function", f.Name())
	}
	return f.Fn(ctx, payload)
}
