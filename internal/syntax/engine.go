package syntax

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.uber.org/zap"

	"codecritic/internal/models"
)

// ErrNoGrammar marks a language with no usable parse strategy. Callers
// treat it as "zero findings", never as a fatal error.
var ErrNoGrammar = errors.New("syntax: no grammar available")

// parseStrategy is one ordered attempt at producing a tree. Strategies
// return a typed failure instead of panicking on malformed input.
type parseStrategy func(ctx context.Context, unit models.SourceUnit) (*Tree, error)

// Engine is the syntax access layer. The grammar cache is lazily populated
// on first use and safe under concurrent first-access; a language whose
// grammar fails to load is cached as permanently unavailable.
type Engine struct {
	mu       sync.Mutex
	grammars map[models.Language]*sitter.Language
	broken   map[models.Language]bool
	logger   *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		grammars: make(map[models.Language]*sitter.Language),
		broken:   make(map[models.Language]bool),
		logger:   logger,
	}
}

// Parse runs the ordered strategy list for the unit's language: the
// tree-sitter grammar first, then the native Go parser when the unit is
// written in the one language the host toolchain parses itself. A nil
// tree with an error means "no findings for this file".
func (e *Engine) Parse(ctx context.Context, unit models.SourceUnit) (*Tree, error) {
	if unit.Content == "" || unit.Language == models.LangUnknown {
		return nil, ErrNoGrammar
	}
	var lastErr error
	for _, strategy := range e.strategies(unit.Language) {
		tree, err := strategy(ctx, unit)
		if err == nil && tree != nil {
			return tree, nil
		}
		lastErr = err
		e.logger.Debug("parse strategy failed",
			zap.String("file", unit.Path),
			zap.String("language", string(unit.Language)),
			zap.Error(err))
	}
	if lastErr == nil {
		lastErr = ErrNoGrammar
	}
	return nil, lastErr
}

func (e *Engine) strategies(lang models.Language) []parseStrategy {
	strategies := []parseStrategy{e.parseTreeSitter}
	if lang == models.LangGo {
		strategies = append(strategies, parseGoNative)
	}
	return strategies
}

func (e *Engine) parseTreeSitter(ctx context.Context, unit models.SourceUnit) (*Tree, error) {
	grammar, err := e.grammar(unit.Language)
	if err != nil {
		return nil, err
	}
	// Parsers hold mutable state, so each parse gets a fresh one; only the
	// grammar objects are shared.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	src := []byte(unit.Content)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse of %s: %w", unit.Path, err)
	}
	defer tree.Close()

	root := materialize(tree.RootNode(), nil, "")
	return &Tree{Root: root, Source: src, Language: unit.Language}, nil
}

func (e *Engine) grammar(lang models.Language) (*sitter.Language, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.broken[lang] {
		return nil, ErrNoGrammar
	}
	if g, ok := e.grammars[lang]; ok {
		return g, nil
	}
	g := loadGrammar(lang)
	if g == nil {
		e.broken[lang] = true
		e.logger.Warn("grammar unavailable, caching as broken", zap.String("language", string(lang)))
		return nil, ErrNoGrammar
	}
	e.grammars[lang] = g
	return g, nil
}

func loadGrammar(lang models.Language) *sitter.Language {
	switch lang {
	case models.LangPython:
		return python.GetLanguage()
	case models.LangGo:
		return golang.GetLanguage()
	case models.LangJavaScript:
		return javascript.GetLanguage()
	case models.LangTypeScript:
		return typescript.GetLanguage()
	case models.LangRust:
		return rust.GetLanguage()
	}
	return nil
}

// materialize copies the named portion of a tree-sitter tree into the
// engine-agnostic Node shape, keeping parent links and parent-side field
// names. The sitter tree can then be released.
func materialize(n *sitter.Node, parent *Node, field string) *Node {
	node := &Node{
		Kind:      n.Type(),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
		parent:    parent,
		field:     field,
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		node.Children = append(node.Children, materialize(child, node, n.FieldNameForChild(i)))
	}
	return node
}
