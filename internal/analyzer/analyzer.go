// Package analyzer bundles the deterministic detectors into one producer.
// Each file is parsed once; every detector walks the same tree.
package analyzer

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codecritic/internal/analyzer/detectors"
	"codecritic/internal/config"
	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// Detector is one deterministic analyzer. A nil tree means the file could
// not be parsed; detectors that need a tree return zero findings for it.
type Detector interface {
	Name() string
	Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding
}

// Bundle runs all enabled detectors over a payload and normalizes their
// findings into canonical issues. It satisfies the controller's Producer
// contract.
type Bundle struct {
	engine    *syntax.Engine
	detectors []Detector
	workers   int
	logger    *zap.Logger
}

func NewBundle(cfg *config.Config, logger *zap.Logger) *Bundle {
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Analysis.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	b := &Bundle{
		engine:  syntax.NewEngine(logger),
		workers: workers,
		logger:  logger,
	}
	if cfg.Rules.Structure.Enabled {
		b.detectors = append(b.detectors, detectors.NewStructureDetector(cfg.StructureThresholds()))
	}
	if cfg.Rules.Loops.Enabled {
		b.detectors = append(b.detectors, detectors.NewLoopDetector())
	}
	if cfg.Rules.Async.Enabled {
		b.detectors = append(b.detectors, detectors.NewAsyncMapDetector())
	}
	if cfg.Rules.Naming.Enabled {
		b.detectors = append(b.detectors, detectors.NewNamingDetector())
	}
	if cfg.Rules.Secrets.Enabled {
		b.detectors = append(b.detectors, detectors.NewSecretDetector(cfg.Rules.Secrets.EntropyThreshold))
	}
	if cfg.Rules.Sinks.Enabled {
		b.detectors = append(b.detectors, detectors.NewSinkDetector())
	}
	return b
}

func (b *Bundle) Name() string { return "static-analyzers" }

// DetectorCount returns the number of active detectors.
func (b *Bundle) DetectorCount() int { return len(b.detectors) }

// DetectorNames returns the names of all active detectors.
func (b *Bundle) DetectorNames() []string {
	names := make([]string, len(b.detectors))
	for i, d := range b.detectors {
		names[i] = d.Name()
	}
	return names
}

// Run analyzes every file in the payload, up to max_workers files at a
// time, and returns normalized issues in file order. Parse failures
// degrade to zero findings for that file, never to an error.
func (b *Bundle) Run(ctx context.Context, payload models.Payload) ([]models.Issue, error) {
	results := make([][]models.Issue, len(payload.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, unit := range payload.Files {
		i, unit := i, unit
		g.Go(func() error {
			results[i] = b.scanFile(gctx, unit)
			return nil
		})
	}
	_ = g.Wait()

	var issues []models.Issue
	for _, fileIssues := range results {
		issues = append(issues, fileIssues...)
	}
	return issues, nil
}

func (b *Bundle) scanFile(ctx context.Context, unit models.SourceUnit) []models.Issue {
	tree, err := b.engine.Parse(ctx, unit)
	if err != nil {
		b.logger.Debug("no syntax tree for file, line-based detectors only",
			zap.String("file", unit.Path), zap.Error(err))
		tree = nil
	}
	var issues []models.Issue
	for _, det := range b.detectors {
		for _, finding := range det.Detect(unit, tree) {
			issues = append(issues, finding.Normalize(unit.Path))
		}
	}
	return issues
}
