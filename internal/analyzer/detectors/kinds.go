// Package detectors holds the deterministic analyzers. Each detector
// walks the uniform syntax.Node view (or raw lines) for one source unit
// and emits typed findings; each is also callable directly over source
// text for tool-level use without the controller.
package detectors

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"codecritic/internal/models"
	"codecritic/internal/syntax"
)

// Kind sets spanning the supported grammars. The Go fallback emits the
// same kind names as the tree-sitter Go grammar, so membership tests hold
// regardless of which engine parsed the file.
var (
	functionKinds = set(
		"function_definition",  // python
		"function_declaration", // go, javascript, typescript
		"method_declaration",   // go
		"method_definition",    // javascript, typescript
		"function_item",        // rust
	)
	classKinds = set(
		"class_definition",  // python
		"class_declaration", // javascript, typescript
	)
	loopKinds = set(
		"for_statement",
		"while_statement",
		"for_in_statement",
		"for_expression",
		"while_expression",
		"loop_expression",
	)
	branchKinds = set(
		"if_statement",
		"for_statement",
		"while_statement",
		"try_statement",
		"for_in_statement",
		"if_expression",
		"for_expression",
		"while_expression",
	)
	callKinds = set(
		"call",            // python
		"call_expression", // go, javascript, typescript, rust
	)
	stringKinds = set(
		"string",
		"string_literal",
		"interpreted_string_literal",
		"raw_string_literal",
		"template_string",
	)
)

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// callTarget returns the node a call dispatches on, across grammars.
func callTarget(call *syntax.Node) *syntax.Node {
	if fn := call.ChildByField("function"); fn != nil {
		return fn
	}
	return nil
}

// callArguments returns the named argument nodes of a call.
func callArguments(call *syntax.Node) []*syntax.Node {
	args := call.ChildByField("arguments")
	if args == nil {
		return nil
	}
	return args.Children
}

// defaultEngine backs the package-level convenience functions; the bundle
// injects its own engine so grammar caches are shared per scan.
var (
	engineOnce   sync.Once
	sharedEngine *syntax.Engine
)

func defaultEngine() *syntax.Engine {
	engineOnce.Do(func() {
		sharedEngine = syntax.NewEngine(zap.NewNop())
	})
	return sharedEngine
}

// parseFor parses source text for the direct-call entry points. A nil
// tree means zero findings, mirroring the engine contract.
func parseFor(src string, lang models.Language) *syntax.Tree {
	unit := models.SourceUnit{Path: "", Content: src, Language: lang}
	tree, err := defaultEngine().Parse(context.Background(), unit)
	if err != nil {
		return nil
	}
	return tree
}
