package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Finding is a raw, analyzer-specific detection before normalization.
// The set of variants is closed: every analyzer emits one of the structs
// below, and each variant knows how to normalize itself into the canonical
// Issue shape.
type Finding interface {
	Normalize(filePath string) Issue
}

func newIssueID() string {
	return "c_" + uuid.NewString()[:8]
}

// --- Structural analysis records (data, not findings) ---

// FunctionRecord captures per-function structural metrics.
type FunctionRecord struct {
	Name            string   `json:"name"`
	StartLine       int      `json:"start_line"`
	EndLine         int      `json:"end_line"`
	LOC             int      `json:"loc"`
	ArgCount        int      `json:"arg_count"`
	Complexity      int      `json:"complexity"`
	NestingDepth    int      `json:"nesting_depth"`
	DependencyNames []string `json:"dependency_names"`
	IsAsync         bool     `json:"is_async"`
	HasDocstring    bool     `json:"has_docstring"`
}

// ClassRecord captures per-class structural metrics. AttributeCount counts
// distinct self/this attribute assignment targets as a proxy for state
// surface.
type ClassRecord struct {
	Name           string `json:"name"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	MethodCount    int    `json:"method_count"`
	AttributeCount int    `json:"attribute_count"`
	HasDocstring   bool   `json:"has_docstring"`
}

// OpCategory classifies a call found inside a loop body.
type OpCategory string

const (
	OpGeneric     OpCategory = "Generic"
	OpPotentialIO OpCategory = "PotentialIO"
)

// LoopOperation is one call observed inside a loop body.
type LoopOperation struct {
	Call     string     `json:"call"`
	Category OpCategory `json:"category"`
	Line     int        `json:"line"`
}

// LoopRecord describes one loop and the interesting operations inside it.
type LoopRecord struct {
	StartLine    int             `json:"line_start"`
	EndLine      int             `json:"line_end"`
	LoopVariable string          `json:"loop_variable"`
	Operations   []LoopOperation `json:"operations_inside"`
}

// --- Finding variants ---

// StructuralFlag reports a structural metric over policy threshold.
type StructuralFlag struct {
	Line        int
	EndLine     int
	Subject     string
	Metric      string
	Severity    Severity
	Description string
	Suggestion  string
}

func (f StructuralFlag) Normalize(filePath string) Issue {
	return Issue{
		ID:         newIssueID(),
		FilePath:   filePath,
		LineStart:  f.Line,
		LineEnd:    f.EndLine,
		Category:   CategoryMaintainability,
		Severity:   f.Severity,
		Title:      fmt.Sprintf("%s: %s", f.Metric, f.Subject),
		Body:       f.Description,
		Suggestion: f.Suggestion,
		Rationale:  "Oversized or deeply branched units are harder to test and review, and concentrate defect risk.",
	}
}

// LoopRisk reports a loop containing at least one potential IO operation.
type LoopRisk struct {
	Loop LoopRecord
}

func (f LoopRisk) Normalize(filePath string) Issue {
	var calls []string
	for _, op := range f.Loop.Operations {
		if op.Category == OpPotentialIO {
			calls = append(calls, op.Call)
		}
	}
	return Issue{
		ID:        newIssueID(),
		FilePath:  filePath,
		LineStart: f.Loop.StartLine,
		LineEnd:   f.Loop.EndLine,
		Category:  CategoryPerformance,
		Severity:  SeverityMedium,
		Title:     "Potential IO inside loop",
		Body: fmt.Sprintf("Loop over '%s' performs IO-like calls on every iteration: %s.",
			f.Loop.LoopVariable, strings.Join(calls, ", ")),
		Suggestion: "Batch the operation outside the loop or use a bulk API.",
		Rationale:  "Per-iteration IO multiplies latency with collection size (the classic N+1 pattern).",
	}
}

// ResourceHotspot reports an unbounded read or an infinite-loop risk.
type ResourceHotspot struct {
	Line        int
	Kind        string // "Unbounded Read" or "Infinite Loop Risk"
	Pattern     string
	Description string
}

func (f ResourceHotspot) Normalize(filePath string) Issue {
	sev := SeverityMedium
	if f.Kind == "Infinite Loop Risk" {
		sev = SeverityHigh
	}
	return Issue{
		ID:        newIssueID(),
		FilePath:  filePath,
		LineStart: f.Line,
		LineEnd:   f.Line,
		Category:  CategoryPerformance,
		Severity:  sev,
		Title:     fmt.Sprintf("%s: %s", f.Kind, f.Pattern),
		Body:      f.Description,
		Rationale: "Unbounded resource consumption degrades the whole process, not just the offending call site.",
	}
}

// ConcurrencyViolation reports a blocking call inside an async scope.
type ConcurrencyViolation struct {
	Line         int
	Function     string
	BlockingCall string
	Suggestion   string
}

func (f ConcurrencyViolation) Normalize(filePath string) Issue {
	return Issue{
		ID:        newIssueID(),
		FilePath:  filePath,
		LineStart: f.Line,
		LineEnd:   f.Line,
		Category:  CategoryPerformance,
		Severity:  SeverityHigh,
		Title:     fmt.Sprintf("Blocking call '%s' in async function", f.BlockingCall),
		Body: fmt.Sprintf("Async function '%s' calls '%s', which blocks the event loop.",
			f.Function, f.BlockingCall),
		Suggestion: f.Suggestion,
		Rationale:  "A single blocking call inside an async scope stalls every coroutine scheduled on the same loop.",
	}
}

// NamingViolation reports an identifier breaking the language style table.
type NamingViolation struct {
	Line           int
	Name           string
	Construct      string
	Expected       string
	NonDescriptive bool
	Suggestion     string
}

func (f NamingViolation) Normalize(filePath string) Issue {
	sev := SeverityNitpick
	title := fmt.Sprintf("%s '%s' should be %s", f.Construct, f.Name, f.Expected)
	body := fmt.Sprintf("Identifier '%s' does not match the expected %s convention for %ss.",
		f.Name, f.Expected, strings.ToLower(f.Construct))
	if f.NonDescriptive {
		sev = SeverityLow
		title = fmt.Sprintf("Non-descriptive name '%s'", f.Name)
		body = fmt.Sprintf("Single-letter identifier '%s' outside conventional loop/exception names.", f.Name)
	}
	return Issue{
		ID:         newIssueID(),
		FilePath:   filePath,
		LineStart:  f.Line,
		LineEnd:    f.Line,
		Category:   CategoryBestPractice,
		Severity:   sev,
		Title:      title,
		Body:       body,
		Suggestion: f.Suggestion,
		Rationale:  "Consistent, descriptive naming keeps a polyglot codebase navigable.",
	}
}

// SecretMatch reports a suspected credential in source.
type SecretMatch struct {
	Line       int
	Type       string // e.g. "AWS_Access_Key", "High_Entropy_String"
	Method     string // "REGEX_MATCH" or "HIGH_ENTROPY"
	Snippet    string
	Confidence string
}

func (f SecretMatch) Normalize(filePath string) Issue {
	sev := SeverityHigh
	switch {
	case f.Type == "Private_Key":
		sev = SeverityCritical
	case f.Method == "HIGH_ENTROPY":
		sev = SeverityMedium
	}
	return Issue{
		ID:        newIssueID(),
		FilePath:  filePath,
		LineStart: f.Line,
		LineEnd:   f.Line,
		Category:  CategorySecurity,
		Severity:  sev,
		Title:     fmt.Sprintf("Possible secret: %s", f.Type),
		Body: fmt.Sprintf("Detected via %s (confidence %s): %s",
			f.Method, f.Confidence, f.Snippet),
		Suggestion: "Move the value to a secret manager or environment variable and rotate it.",
		Rationale:  "Credentials committed to source outlive the commit: forks, caches, and CI logs all retain them.",
	}
}

// DangerousSink reports an unsafe dynamic-execution or deserialization call.
type DangerousSink struct {
	Line     int
	Call     string
	Risk     string // e.g. "Code_Injection"
	Critical bool
	ArgVar   string
	Details  string
}

func (f DangerousSink) Normalize(filePath string) Issue {
	sev := SeverityHigh
	if f.Critical {
		sev = SeverityCritical
	}
	return Issue{
		ID:         newIssueID(),
		FilePath:   filePath,
		LineStart:  f.Line,
		LineEnd:    f.Line,
		Category:   CategorySecurity,
		Severity:   sev,
		Title:      fmt.Sprintf("%s via %s", f.Risk, f.Call),
		Body:       f.Details,
		Suggestion: "Replace the dynamic sink with a constrained API, or validate and allow-list the input.",
		Rationale:  "Dynamic execution and unsafe deserialization turn any attacker-influenced value into code.",
	}
}

// RouteAuditEntry reports an HTTP endpoint with no auth decoration.
type RouteAuditEntry struct {
	Line       int
	Function   string
	Decorators []string
	HasAuth    bool
}

func (f RouteAuditEntry) Normalize(filePath string) Issue {
	return Issue{
		ID:        newIssueID(),
		FilePath:  filePath,
		LineStart: f.Line,
		LineEnd:   f.Line,
		Category:  CategorySecurity,
		Severity:  SeverityHigh,
		Title:     fmt.Sprintf("Route '%s' has no auth decorator", f.Function),
		Body: fmt.Sprintf("Endpoint decorated with %s carries no login/auth/jwt/permission/role decoration.",
			strings.Join(f.Decorators, ", ")),
		Suggestion: "Add the project's authentication decorator, or mark the route explicitly public.",
		Rationale:  "Endpoints default-open until proven otherwise; missing auth decoration is the most common exposure.",
	}
}
