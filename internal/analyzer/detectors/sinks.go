package detectors

import (
	"fmt"
	"strings"

	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

type sinkRule struct {
	risk          string
	critical      bool
	unconditional bool // report even when the first argument is a literal
}

// dangerousSinks maps resolved call names to their risk class. Dynamic
// code execution is unconditional; the rest only fire when the first
// argument is a variable reference (a minimal taint heuristic).
var dangerousSinks = map[string]sinkRule{
	"eval":            {risk: "Code_Injection", critical: true, unconditional: true},
	"exec":            {risk: "Code_Injection", critical: true, unconditional: true},
	"subprocess.call": {risk: "Command_Injection"},
	"os.system":       {risk: "Command_Injection"},
	"pickle.load":     {risk: "Insecure_Deserialization"},
}

var routeKeywords = []string{"route", "get", "post", "put", "delete", "patch"}
var authKeywords = []string{"login", "auth", "jwt", "permission", "role"}

// SinkDetector flags dangerous dynamic-execution/deserialization sinks
// and routed endpoints with no auth decoration.
type SinkDetector struct{}

func NewSinkDetector() *SinkDetector { return &SinkDetector{} }

func (d *SinkDetector) Name() string { return "Dangerous-Sink / Route-Auth Matcher" }

// MatchSinks returns the sink and route-audit findings for source text.
func MatchSinks(src string, lang models.Language) ([]models.DangerousSink, []models.RouteAuditEntry) {
	tree := parseFor(src, lang)
	return sinkFindings(tree), routeFindings(tree)
}

func (d *SinkDetector) Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding {
	var findings []models.Finding
	for _, s := range sinkFindings(tree) {
		findings = append(findings, s)
	}
	for _, r := range routeFindings(tree) {
		findings = append(findings, r)
	}
	return findings
}

func sinkFindings(tree *syntax.Tree) []models.DangerousSink {
	if tree == nil {
		return nil
	}
	var sinks []models.DangerousSink
	tree.Root.Walk(func(n *syntax.Node) bool {
		if !callKinds[n.Kind] {
			return true
		}
		name := syntax.ResolveCallName(callTarget(n), tree.Source)
		rule, ok := dangerousSinks[name]
		if !ok {
			return true
		}
		argKind, argVar := firstArgument(n, tree.Source)
		if !rule.unconditional && argKind != "Variable" {
			return true
		}
		sinks = append(sinks, models.DangerousSink{
			Line:     n.StartLine,
			Call:     name,
			Risk:     rule.risk,
			Critical: rule.critical,
			ArgVar:   argVar,
			Details:  fmt.Sprintf("Usage of %s with %s argument.", name, argKind),
		})
		return true
	})
	return sinks
}

// firstArgument classifies a call's first argument as a bare variable
// reference or anything else.
func firstArgument(call *syntax.Node, src []byte) (kind, name string) {
	args := callArguments(call)
	if len(args) == 0 {
		return "Literal", ""
	}
	if args[0].Kind == "identifier" {
		return "Variable", args[0].Text(src)
	}
	return "Literal", ""
}

func routeFindings(tree *syntax.Tree) []models.RouteAuditEntry {
	if tree == nil {
		return nil
	}
	var entries []models.RouteAuditEntry
	tree.Root.Walk(func(n *syntax.Node) bool {
		if n.Kind != "decorated_definition" {
			return true
		}
		var decorators []string
		var fn *syntax.Node
		for _, c := range n.Children {
			switch {
			case c.Kind == "decorator":
				decorators = append(decorators, "@"+decoratorName(c, tree.Source))
			case functionKinds[c.Kind]:
				fn = c
			}
		}
		if fn == nil || !isRouted(decorators) {
			return true
		}
		entry := models.RouteAuditEntry{
			Line:       fn.StartLine,
			Function:   nodeName(fn, tree.Source),
			Decorators: decorators,
			HasAuth:    hasAuthKeyword(decorators),
		}
		if !entry.HasAuth {
			entries = append(entries, entry)
		}
		return true
	})
	return entries
}

// decoratorName strips call arguments so "@app.route('/x')" resolves to
// "app.route".
func decoratorName(dec *syntax.Node, src []byte) string {
	for _, c := range dec.Children {
		if callKinds[c.Kind] {
			return syntax.ResolveCallName(callTarget(c), src)
		}
		if name := syntax.ResolveCallName(c, src); name != "" {
			return name
		}
	}
	return strings.TrimPrefix(strings.TrimSpace(dec.Text(src)), "@")
}

func isRouted(decorators []string) bool {
	for _, d := range decorators {
		lower := strings.ToLower(d)
		for _, kw := range routeKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func hasAuthKeyword(decorators []string) bool {
	for _, d := range decorators {
		lower := strings.ToLower(d)
		for _, kw := range authKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
