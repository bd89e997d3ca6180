package detectors

import (
	"fmt"
	"strings"

	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// ioIndicators classifies calls that usually imply database or network
// round-trips. Matched case-insensitively as substrings of the resolved
// call name.
var ioIndicators = []string{
	"get", "post", "put", "delete", "query", "fetch", "execute",
	"commit", "read", "write", "connect", "send", "socket", "open",
}

var mitigationCallKeywords = []string{"sleep", "wait", "yield"}

// LoopDetector x-rays iteration blocks for expensive operations and
// unbounded-resource patterns.
type LoopDetector struct{}

func NewLoopDetector() *LoopDetector { return &LoopDetector{} }

func (d *LoopDetector) Name() string { return "Loop & Resource Hazard Inspector" }

// InspectLoops returns one record per loop containing at least one
// potential-IO call. Operations inside nested loops are counted again for
// each enclosing loop, since both loops contain them.
func InspectLoops(src string, lang models.Language) []models.LoopRecord {
	return loopRecords(parseFor(src, lang))
}

// TraceResources reports unbounded reads and infinite-loop risks.
func TraceResources(src string, lang models.Language) []models.ResourceHotspot {
	return resourceHotspots(parseFor(src, lang))
}

func (d *LoopDetector) Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding {
	var findings []models.Finding
	for _, loop := range loopRecords(tree) {
		findings = append(findings, models.LoopRisk{Loop: loop})
	}
	for _, hotspot := range resourceHotspots(tree) {
		findings = append(findings, hotspot)
	}
	return findings
}

func loopRecords(tree *syntax.Tree) []models.LoopRecord {
	if tree == nil {
		return nil
	}
	var records []models.LoopRecord
	tree.Root.Walk(func(n *syntax.Node) bool {
		if !loopKinds[n.Kind] {
			return true
		}
		record := models.LoopRecord{
			StartLine:    n.StartLine,
			EndLine:      n.EndLine,
			LoopVariable: loopVariable(n, tree.Source),
		}
		body := n.ChildByField("body")
		if body == nil {
			return true
		}
		body.Walk(func(sub *syntax.Node) bool {
			if !callKinds[sub.Kind] {
				return true
			}
			name := syntax.ResolveCallName(callTarget(sub), tree.Source)
			if name == "" {
				return true
			}
			if isIOIndicator(name) {
				record.Operations = append(record.Operations, models.LoopOperation{
					Call:     name,
					Category: models.OpPotentialIO,
					Line:     sub.StartLine,
				})
			}
			return true
		})
		if len(record.Operations) > 0 {
			records = append(records, record)
		}
		return true // nested loops are visited again on their own node
	})
	return records
}

func isIOIndicator(callName string) bool {
	lower := strings.ToLower(callName)
	for _, ind := range ioIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func loopVariable(loop *syntax.Node, src []byte) string {
	left := loop.ChildByField("left")
	if left == nil {
		return "unknown"
	}
	if left.Kind == "identifier" {
		return left.Text(src)
	}
	for _, c := range left.Children {
		if c.Kind == "identifier" {
			return c.Text(src)
		}
	}
	return "unknown"
}

func resourceHotspots(tree *syntax.Tree) []models.ResourceHotspot {
	if tree == nil {
		return nil
	}
	var hotspots []models.ResourceHotspot
	tree.Root.Walk(func(n *syntax.Node) bool {
		switch {
		case callKinds[n.Kind]:
			name := syntax.ResolveCallName(callTarget(n), tree.Source)
			last := name
			if i := strings.LastIndex(name, "."); i >= 0 {
				last = name[i+1:]
			}
			// Method reads only: a bare read() is usually a local helper.
			if (last == "read" || last == "readlines") && strings.Contains(name, ".") &&
				len(callArguments(n)) == 0 {
				hotspots = append(hotspots, models.ResourceHotspot{
					Line:        n.StartLine,
					Kind:        "Unbounded Read",
					Pattern:     fmt.Sprintf(".%s()", last),
					Description: "Reading a stream without a size limit can exhaust memory.",
				})
			}
		case n.Kind == "while_statement" || n.Kind == "while_expression":
			if isAlwaysTrue(n, tree.Source) && !hasMitigation(n, tree.Source) {
				hotspots = append(hotspots, models.ResourceHotspot{
					Line:        n.StartLine,
					Kind:        "Infinite Loop Risk",
					Pattern:     "while true",
					Description: "Loop over an always-true literal with no break, return, yield, await, or sleep inside.",
				})
			}
		}
		return true
	})
	return hotspots
}

func isAlwaysTrue(loop *syntax.Node, src []byte) bool {
	cond := loop.ChildByField("condition")
	if cond == nil {
		return false
	}
	text := strings.TrimSpace(cond.Text(src))
	text = strings.Trim(text, "()")
	return text == "True" || text == "true"
}

// hasMitigation scans the whole loop subtree; a break anywhere, even in
// an inner conditional, clears the flag.
func hasMitigation(loop *syntax.Node, src []byte) bool {
	found := false
	loop.Walk(func(n *syntax.Node) bool {
		switch n.Kind {
		case "break_statement", "return_statement", "yield", "await", "await_expression":
			found = true
			return false
		}
		if callKinds[n.Kind] {
			name := strings.ToLower(syntax.ResolveCallName(callTarget(n), src))
			for _, kw := range mitigationCallKeywords {
				if strings.Contains(name, kw) {
					found = true
					return false
				}
			}
		}
		return !found
	})
	return found
}
