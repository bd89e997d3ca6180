package detectors

import (
	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// blockingCalls maps exact resolved call names to a canned remediation.
var blockingCalls = map[string]string{
	"time.sleep":             "Use 'await asyncio.sleep()' to yield control.",
	"requests.get":           "Use 'httpx' or 'aiohttp' for non-blocking HTTP.",
	"requests.post":          "Use 'httpx' or 'aiohttp'.",
	"urllib.request.urlopen": "Use async network libraries.",
	"open":                   "Use 'aiofiles' or run in a thread executor.",
}

// AsyncMapDetector finds synchronous blocking calls made directly inside
// async function bodies.
type AsyncMapDetector struct{}

func NewAsyncMapDetector() *AsyncMapDetector { return &AsyncMapDetector{} }

func (d *AsyncMapDetector) Name() string { return "Concurrency Blocking-Call Mapper" }

// MapAsyncExecution reports blocking calls inside async scopes in the
// given source text.
func MapAsyncExecution(src string, lang models.Language) []models.ConcurrencyViolation {
	return asyncViolations(parseFor(src, lang))
}

func (d *AsyncMapDetector) Detect(unit models.SourceUnit, tree *syntax.Tree) []models.Finding {
	var findings []models.Finding
	for _, v := range asyncViolations(tree) {
		findings = append(findings, v)
	}
	return findings
}

func asyncViolations(tree *syntax.Tree) []models.ConcurrencyViolation {
	if tree == nil {
		return nil
	}
	var violations []models.ConcurrencyViolation
	walkAsyncScope(tree.Root, tree.Source, false, "", &violations)
	return violations
}

// walkAsyncScope carries the "inside an async scope" flag. Entering an
// ordinary function clears it for that subtree; the flag is restored on
// exit by the recursion itself.
func walkAsyncScope(n *syntax.Node, src []byte, inAsync bool, currentFunc string, out *[]models.ConcurrencyViolation) {
	if functionKinds[n.Kind] {
		if syntax.IsAsync(n, src) {
			inAsync = true
			if name := n.ChildByField("name"); name != nil {
				currentFunc = name.Text(src)
			}
		} else {
			inAsync = false
		}
	}
	if inAsync && callKinds[n.Kind] {
		name := syntax.ResolveCallName(callTarget(n), src)
		if suggestion, ok := blockingCalls[name]; ok {
			*out = append(*out, models.ConcurrencyViolation{
				Line:         n.StartLine,
				Function:     currentFunc,
				BlockingCall: name,
				Suggestion:   suggestion,
			})
		}
	}
	for _, c := range n.Children {
		walkAsyncScope(c, src, inAsync, currentFunc, out)
	}
}
