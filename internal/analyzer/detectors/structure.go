package detectors

import (
	"fmt"
	"sort"

	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

const dependencyNameCap = 15

// StructureThresholds are the policy limits that turn structural metrics
// into findings.
type StructureThresholds struct {
	ComplexityMedium   int
	ComplexityHigh     int
	ComplexityCritical int
	LOCMedium          int
	LOCHigh            int
	LOCCritical        int
	GodObjectMethods   int
	MaxNestingDepth    int
}

func DefaultStructureThresholds() StructureThresholds {
	return StructureThresholds{
		ComplexityMedium:   10,
		ComplexityHigh:     15,
		ComplexityCritical: 25,
		LOCMedium:          50,
		LOCHigh:            100,
		LOCCritical:        200,
		GodObjectMethods:   10,
		MaxNestingDepth:    4,
	}
}

// StructureDetector extracts per-function and per-class metrics and flags
// the ones over policy thresholds.
type StructureDetector struct {
	Thresholds StructureThresholds
}

func NewStructureDetector(t StructureThresholds) *StructureDetector {
	return &StructureDetector{Thresholds: t}
}

func (d *StructureDetector) Name() string { return "Structure & Complexity Analyzer" }

// AnalyzeStructure extracts class and function records from source text.
func AnalyzeStructure(src string, lang models.Language) ([]models.ClassRecord, []models.FunctionRecord) {
	return structureRecords(parseFor(src, lang))
}

func structureRecords(tree *syntax.Tree) ([]models.ClassRecord, []models.FunctionRecord) {
	if tree == nil {
		return nil, nil
	}
	var classes []models.ClassRecord
	var functions []models.FunctionRecord
	tree.Root.Walk(func(n *syntax.Node) bool {
		switch {
		case classKinds[n.Kind]:
			classes = append(classes, classRecord(n, tree.Source))
		case functionKinds[n.Kind]:
			functions = append(functions, functionRecord(n, tree.Source))
		}
		return true
	})
	return classes, functions
}

func (d *StructureDetector) Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding {
	classes, functions := structureRecords(tree)
	var findings []models.Finding
	for _, fn := range functions {
		if sev, ok := grade(fn.Complexity, d.Thresholds.ComplexityMedium, d.Thresholds.ComplexityHigh, d.Thresholds.ComplexityCritical); ok {
			findings = append(findings, models.StructuralFlag{
				Line: fn.StartLine, EndLine: fn.EndLine,
				Subject:  fn.Name,
				Metric:   "High complexity",
				Severity: sev,
				Description: fmt.Sprintf("Function '%s' has %d branching/looping constructs.",
					fn.Name, fn.Complexity),
				Suggestion: "Split the function into smaller, single-purpose pieces and use early returns.",
			})
		}
		if sev, ok := grade(fn.LOC, d.Thresholds.LOCMedium, d.Thresholds.LOCHigh, d.Thresholds.LOCCritical); ok {
			findings = append(findings, models.StructuralFlag{
				Line: fn.StartLine, EndLine: fn.EndLine,
				Subject:     fn.Name,
				Metric:      "Long function",
				Severity:    sev,
				Description: fmt.Sprintf("Function '%s' spans %d lines.", fn.Name, fn.LOC),
				Suggestion:  "Extract cohesive blocks into helpers.",
			})
		}
		if fn.NestingDepth > d.Thresholds.MaxNestingDepth {
			findings = append(findings, models.StructuralFlag{
				Line: fn.StartLine, EndLine: fn.EndLine,
				Subject:     fn.Name,
				Metric:      "Deep nesting",
				Severity:    models.SeverityMedium,
				Description: fmt.Sprintf("Function '%s' nests branching constructs %d deep.", fn.Name, fn.NestingDepth),
				Suggestion:  "Invert conditions and return early to flatten the control flow.",
			})
		}
	}
	for _, cls := range classes {
		if cls.MethodCount > d.Thresholds.GodObjectMethods {
			findings = append(findings, models.StructuralFlag{
				Line: cls.StartLine, EndLine: cls.EndLine,
				Subject:  cls.Name,
				Metric:   "God object",
				Severity: models.SeverityMedium,
				Description: fmt.Sprintf("Class '%s' has %d methods and %d attributes.",
					cls.Name, cls.MethodCount, cls.AttributeCount),
				Suggestion: "Split responsibilities into collaborating types.",
			})
		}
	}
	return findings
}

func grade(value, medium, high, critical int) (models.Severity, bool) {
	switch {
	case value > critical:
		return models.SeverityCritical, true
	case value > high:
		return models.SeverityHigh, true
	case value > medium:
		return models.SeverityMedium, true
	}
	return 0, false
}

func classRecord(n *syntax.Node, src []byte) models.ClassRecord {
	rec := models.ClassRecord{
		Name:      nodeName(n, src),
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
	}
	body := n.ChildByField("body")
	if body != nil {
		for _, child := range body.Children {
			if functionKinds[child.Kind] {
				rec.MethodCount++
			}
			// Decorated methods wrap the definition one level down.
			if child.Kind == "decorated_definition" {
				for _, inner := range child.Children {
					if functionKinds[inner.Kind] {
						rec.MethodCount++
					}
				}
			}
		}
		rec.HasDocstring = hasDocstring(body)
	}
	attrs := map[string]bool{}
	n.Walk(func(sub *syntax.Node) bool {
		if sub.Kind != "assignment" && sub.Kind != "augmented_assignment" && sub.Kind != "assignment_expression" {
			return true
		}
		left := sub.ChildByField("left")
		if left == nil {
			return true
		}
		if left.Kind == "attribute" || left.Kind == "member_expression" {
			obj := left.ChildByField("object")
			attr := left.ChildByField("attribute")
			if attr == nil {
				attr = left.ChildByField("property")
			}
			if obj != nil && attr != nil {
				switch obj.Text(src) {
				case "self", "this":
					attrs[attr.Text(src)] = true
				}
			}
		}
		return true
	})
	rec.AttributeCount = len(attrs)
	return rec
}

func functionRecord(n *syntax.Node, src []byte) models.FunctionRecord {
	rec := models.FunctionRecord{
		Name:      nodeName(n, src),
		StartLine: n.StartLine,
		EndLine:   n.EndLine,
		LOC:       n.EndLine - n.StartLine,
		IsAsync:   syntax.IsAsync(n, src),
	}
	if params := n.ChildByField("parameters"); params != nil {
		rec.ArgCount = len(params.Children)
	}
	deps := map[string]bool{}
	n.Walk(func(sub *syntax.Node) bool {
		if branchKinds[sub.Kind] {
			rec.Complexity++
		}
		if callKinds[sub.Kind] {
			if name := syntax.ResolveCallName(callTarget(sub), src); name != "" {
				deps[name] = true
			}
		}
		return true
	})
	rec.NestingDepth = nestingDepth(n)
	rec.DependencyNames = capSorted(deps, dependencyNameCap)
	if body := n.ChildByField("body"); body != nil {
		rec.HasDocstring = hasDocstring(body)
	}
	return rec
}

func nodeName(n *syntax.Node, src []byte) string {
	if name := n.ChildByField("name"); name != nil {
		return name.Text(src)
	}
	return "anonymous"
}

func hasDocstring(body *syntax.Node) bool {
	if len(body.Children) == 0 {
		return false
	}
	first := body.Children[0]
	if first.Kind != "expression_statement" || len(first.Children) == 0 {
		return false
	}
	return stringKinds[first.Children[0].Kind]
}

func nestingDepth(n *syntax.Node) int {
	max := 0
	for _, c := range n.Children {
		d := nestingDepth(c)
		if branchKinds[c.Kind] {
			d++
		}
		if d > max {
			max = d
		}
	}
	return max
}

func capSorted(names map[string]bool, limit int) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
