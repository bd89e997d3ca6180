package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// CaseStyle names an identifier casing convention.
type CaseStyle string

const (
	SnakeCase  CaseStyle = "snake_case"
	CamelCase  CaseStyle = "camelCase"
	PascalCase CaseStyle = "PascalCase"
	UpperCase  CaseStyle = "UPPER_CASE"
)

var namingPatterns = map[CaseStyle]*regexp.Regexp{
	SnakeCase:  regexp.MustCompile(`^[a-z0-9_]+$`),
	CamelCase:  regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`),
	PascalCase: regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`),
	UpperCase:  regexp.MustCompile(`^[A-Z0-9_]+$`),
}

// styleGuides is the org-policy default per language. Constant style is
// listed for completeness; constants are not captured separately from
// variables by the capture tables below.
var styleGuides = map[models.Language]map[string]CaseStyle{
	models.LangPython: {
		"function": SnakeCase, "variable": SnakeCase, "class": PascalCase, "constant": UpperCase,
	},
	models.LangJavaScript: {
		"function": CamelCase, "variable": CamelCase, "class": PascalCase, "constant": UpperCase,
	},
	models.LangTypeScript: {
		"function": CamelCase, "variable": CamelCase, "class": PascalCase, "constant": UpperCase,
	},
	models.LangGo: {
		// Exported=Pascal, unexported=camel; the asymmetric underscore
		// rule below is what actually fires for Go.
		"function": CamelCase, "variable": CamelCase, "class": PascalCase,
	},
	models.LangRust: {
		"function": SnakeCase, "variable": SnakeCase, "class": PascalCase, "constant": UpperCase,
	},
}

type capture struct {
	kind      string // node kind to match
	field     string // field holding the identifier
	construct string // style-guide key
}

var captureTables = map[models.Language][]capture{
	models.LangPython: {
		{"function_definition", "name", "function"},
		{"class_definition", "name", "class"},
		{"assignment", "left", "variable"},
	},
	models.LangJavaScript: {
		{"function_declaration", "name", "function"},
		{"method_definition", "name", "function"},
		{"class_declaration", "name", "class"},
		{"variable_declarator", "name", "variable"},
	},
	models.LangTypeScript: {
		{"function_declaration", "name", "function"},
		{"method_definition", "name", "function"},
		{"class_declaration", "name", "class"},
		{"variable_declarator", "name", "variable"},
	},
	models.LangGo: {
		{"function_declaration", "name", "function"},
		{"method_declaration", "name", "function"},
		{"type_spec", "name", "class"},
		{"short_var_declaration", "left", "variable"},
	},
	models.LangRust: {
		{"function_item", "name", "function"},
		{"struct_item", "name", "class"},
		{"let_declaration", "pattern", "variable"},
	},
}

var descriptiveAllowList = map[string]bool{
	"i": true, "j": true, "k": true, "x": true, "y": true, "z": true, "e": true, "_": true,
}

// NamingDetector validates identifier casing against the per-language
// style table.
type NamingDetector struct{}

func NewNamingDetector() *NamingDetector { return &NamingDetector{} }

func (d *NamingDetector) Name() string { return "Naming Convention Auditor" }

// AuditNaming returns naming violations for source text. Unsupported
// languages return no violations rather than erroring.
func AuditNaming(src string, lang models.Language) []models.NamingViolation {
	return namingViolations(parseFor(src, lang))
}

func (d *NamingDetector) Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding {
	var findings []models.Finding
	for _, v := range namingViolations(tree) {
		findings = append(findings, v)
	}
	return findings
}

func namingViolations(tree *syntax.Tree) []models.NamingViolation {
	if tree == nil {
		return nil
	}
	captures, ok := captureTables[tree.Language]
	if !ok {
		return nil
	}
	guide := styleGuides[tree.Language]
	var violations []models.NamingViolation
	tree.Root.Walk(func(n *syntax.Node) bool {
		for _, c := range captures {
			if n.Kind != c.kind {
				continue
			}
			target := n.ChildByField(c.field)
			if target == nil {
				continue
			}
			for _, id := range identifiersIn(target) {
				violations = append(violations, checkName(id, c.construct, guide, tree.Source)...)
			}
		}
		return true
	})
	return violations
}

// identifiersIn unwraps expression lists and tuple targets down to plain
// identifier nodes; anything else (subscripts, attributes) is skipped.
func identifiersIn(n *syntax.Node) []*syntax.Node {
	switch n.Kind {
	case "identifier", "type_identifier", "property_identifier":
		return []*syntax.Node{n}
	case "expression_list", "pattern_list", "tuple_pattern":
		var out []*syntax.Node
		for _, c := range n.Children {
			out = append(out, identifiersIn(c)...)
		}
		return out
	}
	return nil
}

func checkName(id *syntax.Node, construct string, guide map[string]CaseStyle, src []byte) []models.NamingViolation {
	name := id.Text(src)
	var violations []models.NamingViolation

	expected, hasStyle := guide[construct]
	if hasStyle {
		regex := namingPatterns[expected]
		// Asymmetric by design: only snake-in-camel/Pascal contexts are
		// flagged, never the reverse.
		if regex != nil && !regex.MatchString(name) &&
			strings.Contains(name, "_") && expected != SnakeCase {
			violations = append(violations, models.NamingViolation{
				Line:       id.StartLine,
				Name:       name,
				Construct:  title(construct),
				Expected:   string(expected),
				Suggestion: fmt.Sprintf("Rename to match the %s convention.", expected),
			})
		}
	}

	if len(name) == 1 && !descriptiveAllowList[name] {
		violations = append(violations, models.NamingViolation{
			Line:           id.StartLine,
			Name:           name,
			Construct:      title(construct),
			NonDescriptive: true,
			Suggestion:     "Rename to a descriptive noun (e.g. 'index', 'item', 'result').",
		})
	}
	return violations
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
