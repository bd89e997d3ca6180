package syntax

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"codecritic/internal/models"
)

// parseGoNative is the trusted fallback for the reference language: it
// maps the standard library's AST onto the same node shape the
// tree-sitter Go grammar produces, so downstream analyzers cannot tell
// which engine parsed the file.
func parseGoNative(_ context.Context, unit models.SourceUnit) (*Tree, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, unit.Path, unit.Content, 0)
	if err != nil {
		return nil, fmt.Errorf("go native parse of %s: %w", unit.Path, err)
	}
	conv := &goConverter{fset: fset}
	root := &Node{Kind: "source_file", StartLine: 1, EndLine: fset.Position(file.End()).Line,
		StartByte: 0, EndByte: len(unit.Content)}
	for _, decl := range file.Decls {
		conv.append(root, decl, "")
	}
	return &Tree{Root: root, Source: []byte(unit.Content), Language: models.LangGo}, nil
}

type goConverter struct {
	fset *token.FileSet
}

func (c *goConverter) node(kind string, parent *Node, field string, n ast.Node) *Node {
	start := c.fset.Position(n.Pos())
	end := c.fset.Position(n.End())
	out := &Node{
		Kind:      kind,
		StartLine: start.Line,
		EndLine:   end.Line,
		StartByte: start.Offset,
		EndByte:   end.Offset,
		parent:    parent,
		field:     field,
	}
	if parent != nil {
		parent.Children = append(parent.Children, out)
	}
	return out
}

// append converts one ast node (and its relevant children) under parent.
func (c *goConverter) append(parent *Node, n ast.Node, field string) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ast.FuncDecl:
		kind := "function_declaration"
		if v.Recv != nil {
			kind = "method_declaration"
		}
		fn := c.node(kind, parent, field, v)
		c.append(fn, v.Name, "name")
		if v.Type.Params != nil {
			params := c.node("parameter_list", fn, "parameters", v.Type.Params)
			for _, p := range v.Type.Params.List {
				for _, name := range p.Names {
					c.append(params, name, "")
				}
			}
		}
		if v.Body != nil {
			body := c.node("block", fn, "body", v.Body)
			for _, stmt := range v.Body.List {
				c.append(body, stmt, "")
			}
		}
	case *ast.FuncLit:
		fn := c.node("func_literal", parent, field, v)
		if v.Body != nil {
			body := c.node("block", fn, "body", v.Body)
			for _, stmt := range v.Body.List {
				c.append(body, stmt, "")
			}
		}
	case *ast.BlockStmt:
		block := c.node("block", parent, field, v)
		for _, stmt := range v.List {
			c.append(block, stmt, "")
		}
	case *ast.ExprStmt:
		c.append(parent, v.X, field)
	case *ast.CallExpr:
		call := c.node("call_expression", parent, field, v)
		c.append(call, v.Fun, "function")
		args := c.node("argument_list", call, "arguments", v)
		for _, a := range v.Args {
			c.append(args, a, "")
		}
	case *ast.SelectorExpr:
		sel := c.node("selector_expression", parent, field, v)
		c.append(sel, v.X, "operand")
		c.ident(sel, v.Sel, "field", "field_identifier")
	case *ast.Ident:
		c.ident(parent, v, field, "identifier")
	case *ast.BasicLit:
		kind := "literal"
		switch v.Kind {
		case token.STRING:
			kind = "interpreted_string_literal"
		case token.INT:
			kind = "int_literal"
		case token.FLOAT:
			kind = "float_literal"
		}
		c.node(kind, parent, field, v)
	case *ast.ForStmt:
		loop := c.node("for_statement", parent, field, v)
		c.append(loop, v.Init, "")
		c.append(loop, v.Cond, "condition")
		c.append(loop, v.Post, "")
		if v.Body != nil {
			body := c.node("block", loop, "body", v.Body)
			for _, stmt := range v.Body.List {
				c.append(body, stmt, "")
			}
		}
	case *ast.RangeStmt:
		loop := c.node("for_statement", parent, field, v)
		c.append(loop, v.Key, "left")
		c.append(loop, v.Value, "left")
		c.append(loop, v.X, "right")
		if v.Body != nil {
			body := c.node("block", loop, "body", v.Body)
			for _, stmt := range v.Body.List {
				c.append(body, stmt, "")
			}
		}
	case *ast.IfStmt:
		stmt := c.node("if_statement", parent, field, v)
		c.append(stmt, v.Cond, "condition")
		c.append(stmt, v.Body, "consequence")
		c.append(stmt, v.Else, "alternative")
	case *ast.SwitchStmt:
		stmt := c.node("expression_switch_statement", parent, field, v)
		c.append(stmt, v.Tag, "")
		c.append(stmt, v.Body, "")
	case *ast.TypeSwitchStmt:
		stmt := c.node("type_switch_statement", parent, field, v)
		c.append(stmt, v.Body, "")
	case *ast.CaseClause:
		clause := c.node("expression_case", parent, field, v)
		for _, e := range v.List {
			c.append(clause, e, "")
		}
		for _, s := range v.Body {
			c.append(clause, s, "")
		}
	case *ast.SelectStmt:
		stmt := c.node("select_statement", parent, field, v)
		c.append(stmt, v.Body, "")
	case *ast.CommClause:
		clause := c.node("communication_case", parent, field, v)
		c.append(clause, v.Comm, "")
		for _, s := range v.Body {
			c.append(clause, s, "")
		}
	case *ast.AssignStmt:
		kind := "assignment_statement"
		if v.Tok == token.DEFINE {
			kind = "short_var_declaration"
		}
		stmt := c.node(kind, parent, field, v)
		left := c.node("expression_list", stmt, "left", v)
		for _, l := range v.Lhs {
			c.append(left, l, "")
		}
		right := c.node("expression_list", stmt, "right", v)
		for _, r := range v.Rhs {
			c.append(right, r, "")
		}
	case *ast.DeclStmt:
		c.append(parent, v.Decl, field)
	case *ast.GenDecl:
		kind := "var_declaration"
		switch v.Tok {
		case token.CONST:
			kind = "const_declaration"
		case token.TYPE:
			kind = "type_declaration"
		case token.IMPORT:
			kind = "import_declaration"
		}
		decl := c.node(kind, parent, field, v)
		for _, spec := range v.Specs {
			c.append(decl, spec, "")
		}
	case *ast.TypeSpec:
		spec := c.node("type_spec", parent, field, v)
		c.ident(spec, v.Name, "name", "type_identifier")
		c.append(spec, v.Type, "type")
	case *ast.ValueSpec:
		for _, name := range v.Names {
			c.append(parent, name, "")
		}
		for _, val := range v.Values {
			c.append(parent, val, "")
		}
	case *ast.ImportSpec:
		spec := c.node("import_spec", parent, field, v)
		c.append(spec, v.Path, "path")
	case *ast.StructType:
		c.node("struct_type", parent, field, v)
	case *ast.InterfaceType:
		c.node("interface_type", parent, field, v)
	case *ast.ReturnStmt:
		stmt := c.node("return_statement", parent, field, v)
		for _, r := range v.Results {
			c.append(stmt, r, "")
		}
	case *ast.BranchStmt:
		kind := "goto_statement"
		switch v.Tok {
		case token.BREAK:
			kind = "break_statement"
		case token.CONTINUE:
			kind = "continue_statement"
		}
		c.node(kind, parent, field, v)
	case *ast.GoStmt:
		stmt := c.node("go_statement", parent, field, v)
		c.append(stmt, v.Call, "")
	case *ast.DeferStmt:
		stmt := c.node("defer_statement", parent, field, v)
		c.append(stmt, v.Call, "")
	case *ast.BinaryExpr:
		expr := c.node("binary_expression", parent, field, v)
		c.append(expr, v.X, "left")
		c.append(expr, v.Y, "right")
	case *ast.UnaryExpr:
		expr := c.node("unary_expression", parent, field, v)
		c.append(expr, v.X, "operand")
	case *ast.ParenExpr:
		expr := c.node("parenthesized_expression", parent, field, v)
		c.append(expr, v.X, "")
	case *ast.IndexExpr:
		expr := c.node("index_expression", parent, field, v)
		c.append(expr, v.X, "operand")
		c.append(expr, v.Index, "index")
	case *ast.StarExpr:
		c.append(parent, v.X, field)
	case *ast.CompositeLit:
		lit := c.node("composite_literal", parent, field, v)
		for _, e := range v.Elts {
			c.append(lit, e, "")
		}
	case *ast.KeyValueExpr:
		kv := c.node("keyed_element", parent, field, v)
		c.append(kv, v.Key, "")
		c.append(kv, v.Value, "")
	case ast.Node:
		// Constructs with no analyzer-relevant shape are dropped rather
		// than invented.
	}
}

func (c *goConverter) ident(parent *Node, id *ast.Ident, field, kind string) {
	if id == nil {
		return
	}
	c.node(kind, parent, field, id)
}
