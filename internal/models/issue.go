package models

import "fmt"

// Severity defines the criticality of a finding. Values are ordered by
// penalty weight so severities compare directly.
type Severity int

const (
	SeverityNitpick Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityNitpick:
		return "NITPICK"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Category classifies the type of issue found.
type Category string

const (
	CategorySecurity        Category = "SECURITY"
	CategoryPerformance     Category = "PERFORMANCE"
	CategoryMaintainability Category = "MAINTAINABILITY"
	CategoryArchitecture    Category = "ARCHITECTURE"
	CategoryBestPractice    Category = "BEST_PRACTICE"
)

// Verdict is the high-level decision on the reviewed change set.
type Verdict string

const (
	VerdictApprove        Verdict = "APPROVE"
	VerdictRequestChanges Verdict = "REQUEST_CHANGES"
	VerdictCommentOnly    Verdict = "COMMENT_ONLY"
)

// Language identifies the detected source language of a unit.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
	LangUnknown    Language = "unknown"
)

// SourceUnit is a single file submitted for review. Immutable once built.
type SourceUnit struct {
	Path     string   `json:"file_path"`
	Content  string   `json:"content"`
	Language Language `json:"language"`
}

// ReviewContext carries shared metadata for one review request.
type ReviewContext struct {
	ProjectName string            `json:"project_name,omitempty"`
	Config      map[string]string `json:"config,omitempty"`
}

// Payload is the read-only input package handed to every producer.
type Payload struct {
	Files   []SourceUnit  `json:"target_files"`
	Context ReviewContext `json:"context"`
}

// Issue is the canonical, cross-analyzer finding used for aggregation.
// Identity for deduplication is (FilePath, LineStart, LineEnd, Category,
// Title); two issues with the same tuple are the same issue regardless of
// which producer emitted them.
type Issue struct {
	ID         string   `json:"id"`
	FilePath   string   `json:"file_path"`
	LineStart  int      `json:"line_start"`
	LineEnd    int      `json:"line_end"`
	Category   Category `json:"category"`
	Severity   Severity `json:"severity"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Suggestion string   `json:"suggestion,omitempty"`
	Rationale  string   `json:"rationale"`
	References []string `json:"references,omitempty"`
	PolicyTag  string   `json:"policy_violated,omitempty"`
}

// Fingerprint returns the deduplication key for this issue.
func (i Issue) Fingerprint() string {
	return fmt.Sprintf("%s|%d|%d|%s|%s", i.FilePath, i.LineStart, i.LineEnd, i.Category, i.Title)
}

// AggregateReport is the terminal artifact of one full scan.
type AggregateReport struct {
	ReviewID          string   `json:"review_id"`
	Timestamp         string   `json:"timestamp"`
	Verdict           Verdict  `json:"final_verdict"`
	QualityScore      int      `json:"quality_score"`
	RiskLevel         string   `json:"risk_level"`
	TotalUniqueIssues int      `json:"total_vulnerabilities"`
	ScanDurationMS    float64  `json:"scan_duration_ms"`
	Summary           string   `json:"summary"`
	Praise            []string `json:"praise"`
	Issues            []Issue  `json:"comments"`
}
