// Package judge evaluates the unioned findings of all producers: it
// deduplicates, scores, and issues the final verdict.
package judge

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"codecritic/internal/config"
	"codecritic/internal/models"
)

// Evaluation is the judge's result, folded into the aggregate report by
// the controller.
type Evaluation struct {
	Verdict      models.Verdict
	QualityScore int
	RiskLevel    string
	TotalUnique  int
	Summary      string
	Issues       []models.Issue
}

// Judge aggregates issues from multiple producers, deduplicates findings
// by their identity tuple, and produces a quality score and verdict.
type Judge struct {
	policy config.ScoringConfig
	logger *zap.Logger
}

func New(policy config.ScoringConfig, logger *zap.Logger) *Judge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Judge{policy: policy, logger: logger}
}

// Evaluate snaps, sorts, deduplicates, and scores the raw issue list.
// Sources provide line content for snapping; unknown files are left
// unsnapped.
func (j *Judge) Evaluate(issues []models.Issue, sources []models.SourceUnit) Evaluation {
	snapped := snapLines(issues, sources)
	clean := deduplicate(snapped)
	j.logger.Info("judge processed issues",
		zap.Int("raw", len(issues)), zap.Int("unique", len(clean)))

	score := 100
	criticalCount := 0
	highCount := 0
	categoryCounts := map[models.Category]int{}

	for _, issue := range clean {
		score -= j.deduction(issue.Severity)
		switch issue.Severity {
		case models.SeverityCritical:
			criticalCount++
		case models.SeverityHigh:
			highCount++
		}
		categoryCounts[issue.Category]++
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	riskLevel := "SAFE"
	switch {
	case criticalCount > 0:
		riskLevel = "CRITICAL"
	case highCount > 0:
		riskLevel = "HIGH"
	}

	verdict := j.verdict(score, criticalCount)
	summary := buildSummary(clean, categoryCounts, riskLevel)

	j.logger.Info("verdict issued",
		zap.String("verdict", string(verdict)),
		zap.Int("score", score),
		zap.String("risk", riskLevel))

	return Evaluation{
		Verdict:      verdict,
		QualityScore: score,
		RiskLevel:    riskLevel,
		TotalUnique:  len(clean),
		Summary:      summary,
		Issues:       clean,
	}
}

// snapLines walks blank start lines upward to the nearest non-blank line
// and floors the end line at the snapped start. Runs before identity
// comparison so snapping feeds deduplication.
func snapLines(issues []models.Issue, sources []models.SourceUnit) []models.Issue {
	lineIndex := make(map[string][]string, len(sources))
	for _, s := range sources {
		lineIndex[s.Path] = strings.Split(s.Content, "\n")
	}
	out := make([]models.Issue, len(issues))
	for i, issue := range issues {
		lines, ok := lineIndex[issue.FilePath]
		if ok {
			issue.LineStart = clamp(issue.LineStart, 1, len(lines))
			issue.LineEnd = clamp(issue.LineEnd, 1, len(lines))
			for issue.LineStart > 1 && strings.TrimSpace(lines[issue.LineStart-1]) == "" {
				issue.LineStart--
			}
		} else if issue.LineStart < 1 {
			issue.LineStart = 1
		}
		if issue.LineEnd < issue.LineStart {
			issue.LineEnd = issue.LineStart
		}
		out[i] = issue
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// deduplicate removes exact duplicates by fingerprint, keeping the first
// occurrence in (filePath, lineStart) order. Category and title stay in
// the fingerprint so distinct issues can stack on the same line.
func deduplicate(issues []models.Issue) []models.Issue {
	sorted := make([]models.Issue, len(issues))
	copy(sorted, issues)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FilePath != sorted[j].FilePath {
			return sorted[i].FilePath < sorted[j].FilePath
		}
		return sorted[i].LineStart < sorted[j].LineStart
	})

	seen := make(map[string]bool, len(sorted))
	unique := make([]models.Issue, 0, len(sorted))
	for _, issue := range sorted {
		fp := issue.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		unique = append(unique, issue)
	}
	return unique
}

func (j *Judge) deduction(severity models.Severity) int {
	switch severity {
	case models.SeverityCritical:
		return j.policy.Penalties.Critical
	case models.SeverityHigh:
		return j.policy.Penalties.High
	case models.SeverityMedium:
		return j.policy.Penalties.Medium
	case models.SeverityLow:
		return j.policy.Penalties.Low
	default:
		return j.policy.Penalties.Nitpick
	}
}

// verdict enforces a zero-tolerance policy: any critical issue forces
// REQUEST_CHANGES regardless of the numeric score.
func (j *Judge) verdict(score, criticalCount int) models.Verdict {
	if criticalCount > 0 {
		return models.VerdictRequestChanges
	}
	switch {
	case score >= j.policy.Verdicts.Approve:
		return models.VerdictApprove
	case score >= j.policy.Verdicts.CommentOnly:
		return models.VerdictCommentOnly
	default:
		return models.VerdictRequestChanges
	}
}

func buildSummary(clean []models.Issue, counts map[models.Category]int, risk string) string {
	if len(clean) == 0 {
		return fmt.Sprintf("Found 0 unique issues (0 issues). Risk: %s.", risk)
	}
	cats := make([]string, 0, len(counts))
	for cat := range counts {
		cats = append(cats, string(cat))
	}
	sort.Strings(cats)
	parts := make([]string, 0, len(cats))
	for _, cat := range cats {
		parts = append(parts, fmt.Sprintf("%d %s", counts[models.Category(cat)], cat))
	}
	return fmt.Sprintf("Found %d unique issues (%s). Risk: %s.",
		len(clean), strings.Join(parts, ", "), risk)
}
