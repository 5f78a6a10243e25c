package parse

import (
	"context"
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/dusk-indust/cppuml/internal/graph"
)

// TreeSitterExtractor extracts class entities from a tree-sitter C++ syntax
// tree. A new parser is created per Extract call, so one extractor may be
// shared by concurrent workers.
type TreeSitterExtractor struct {
	lang *tree_sitter.Language
}

var _ Extractor = (*TreeSitterExtractor)(nil)

// NewTreeSitter returns an extractor backed by the tree-sitter C++ grammar.
func NewTreeSitter() *TreeSitterExtractor {
	return &TreeSitterExtractor{lang: tree_sitter.NewLanguage(tree_sitter_cpp.Language())}
}

// Name returns BackendTreeSitter.
func (*TreeSitterExtractor) Name() string { return BackendTreeSitter }

// Extract parses u and collects every class and struct definition. Syntax
// errors are reported as diagnostics; the rest of the tree is still used.
func (p *TreeSitterExtractor) Extract(ctx context.Context, u Unit) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.lang); err != nil {
		return nil, fmt.Errorf("set language cpp: %w", err)
	}

	tree := parser.Parse(u.Source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", u.Path)
	}
	defer tree.Close()

	w := &tsWalker{path: u.Path, src: u.Source}
	w.walk(tree.RootNode())
	return &Result{Entities: w.entities, Diagnostics: w.diags}, nil
}

type tsWalker struct {
	path     string
	src      []byte
	entities []graph.ClassEntity
	diags    []Diagnostic
}

func lineOf(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

func (w *tsWalker) diag(n *tree_sitter.Node, format string, args ...any) {
	w.diags = append(w.diags, Diagnostic{Path: w.path, Line: lineOf(n), Message: fmt.Sprintf(format, args...)})
}

func (w *tsWalker) text(n *tree_sitter.Node) string {
	return n.Utf8Text(w.src)
}

// span returns the source between two byte offsets.
func (w *tsWalker) span(from, to uint) string {
	if to < from {
		return ""
	}
	return string(w.src[from:to])
}

func (w *tsWalker) walk(n *tree_sitter.Node) {
	switch {
	case n.IsError():
		w.diag(n, "syntax error near %q", abbreviate(strings.Join(strings.Fields(w.text(n)), " ")))
	case n.IsMissing():
		w.diag(n, "missing %s", n.Kind())
	}

	switch n.Kind() {
	case "class_specifier", "struct_specifier":
		if n.ChildByFieldName("body") != nil && n.ChildByFieldName("name") != nil {
			w.class(n)
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			w.walk(child)
		}
	}
}

func (w *tsWalker) class(n *tree_sitter.Node) {
	e := graph.ClassEntity{
		Name: graph.BaseClassName(w.text(n.ChildByFieldName("name"))),
		Kind: graph.EntityKindClass,
		File: w.path,
		Line: lineOf(n),
	}
	if n.Kind() == "struct_specifier" {
		e.Kind = graph.EntityKindStruct
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		clause := n.NamedChild(i)
		if clause == nil || clause.Kind() != "base_class_clause" {
			continue
		}
		for j := uint(0); j < clause.NamedChildCount(); j++ {
			base := clause.NamedChild(j)
			switch base.Kind() {
			case "type_identifier", "qualified_identifier", "template_type":
				e.Bases = append(e.Bases, normalizeType(w.text(base)))
			}
		}
	}

	vis := e.Kind.DefaultVisibility()
	body := n.ChildByFieldName("body")
	for i := uint(0); i < body.NamedChildCount(); i++ {
		item := body.NamedChild(i)
		switch item.Kind() {
		case "access_specifier":
			vis = graph.Visibility(strings.TrimSpace(w.text(item)))
		case "field_declaration", "declaration", "function_definition":
			w.declaration(item, vis, &e)
		case "template_declaration":
			w.diag(item, "skipped member template in %s", e.Name)
		}
	}
	w.entities = append(w.entities, e)
}

// declaration handles one member declaration, inline method definition or
// constructor declaration.
func (w *tsWalker) declaration(n *tree_sitter.Node, vis graph.Visibility, e *graph.ClassEntity) {
	cursor := n.Walk()
	defer cursor.Close()
	decls := n.ChildrenByFieldName("declarator", cursor)
	if len(decls) == 0 {
		return
	}

	if fn, marks := functionDeclarator(&decls[0]); fn != nil {
		w.method(n, &decls[0], fn, marks, vis, e)
		return
	}
	if n.Kind() == "function_definition" {
		return
	}

	typeText := w.span(n.StartByte(), decls[0].StartByte())
	if t := n.ChildByFieldName("type"); t != nil {
		switch t.Kind() {
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			name := t.ChildByFieldName("name")
			if name == nil {
				return
			}
			typeText = w.text(name)
		}
	}
	var words []string
	for _, word := range strings.Fields(typeText) {
		if !memberSpecifiers[word] {
			words = append(words, word)
		}
	}
	typeText = strings.Join(words, " ")

	for i := range decls {
		d := splitDeclarator(typeText + " " + w.text(&decls[i]))
		if d.Name == "" {
			w.diag(n, "skipped unrecognized declarator in %s: %s", e.Name, abbreviate(w.text(&decls[i])))
			continue
		}
		e.Fields = append(e.Fields, graph.Member{Name: d.Name, Type: d.Type, Visibility: vis})
	}
}

// functionDeclarator unwraps pointer and reference declarators around a
// function declarator, returning it and the markers found on the way.
func functionDeclarator(n *tree_sitter.Node) (*tree_sitter.Node, string) {
	marks := ""
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			return n, marks
		case "pointer_declarator":
			marks += "*"
		case "reference_declarator":
			marks += "&"
		default:
			return nil, ""
		}
		if inner := n.ChildByFieldName("declarator"); inner != nil {
			n = inner
		} else {
			n = n.NamedChild(n.NamedChildCount() - 1)
		}
	}
	return nil, ""
}

func (w *tsWalker) method(n, decl, fn *tree_sitter.Node, marks string, vis graph.Visibility, e *graph.ClassEntity) {
	nameNode := fn.ChildByFieldName("declarator")
	if nameNode == nil {
		return
	}
	m := graph.Method{Name: strings.Join(strings.Fields(w.text(nameNode)), ""), Visibility: vis}
	if rest, ok := strings.CutPrefix(m.Name, "operator"); ok && rest != "" && isIdent(rest[0]) {
		m.Name = "operator " + rest
	}

	var ret []string
	for _, word := range strings.Fields(w.span(n.StartByte(), decl.StartByte())) {
		switch word {
		case "virtual":
			m.IsVirtual = true
		case "static":
			m.IsStatic = true
		case "inline", "explicit", "constexpr", "consteval":
		default:
			if !qtMethodMacros[word] {
				ret = append(ret, word)
			}
		}
	}
	m.ReturnType = normalizeType(strings.Join(ret, " ") + marks)

	for i := uint(0); i < fn.NamedChildCount(); i++ {
		child := fn.NamedChild(i)
		switch child.Kind() {
		case "type_qualifier":
			if w.text(child) == "const" {
				m.IsConst = true
			}
		case "trailing_return_type":
			if m.ReturnType == "auto" {
				m.ReturnType = normalizeType(strings.TrimPrefix(strings.TrimSpace(w.text(child)), "->"))
			}
		}
	}
	if n.Kind() != "function_definition" {
		tail := strings.TrimSuffix(strings.TrimSpace(w.span(decl.EndByte(), n.EndByte())), ";")
		m.IsPureVirtual = pureSuffix.MatchString(tail)
	}

	switch {
	case m.ReturnType == "" && m.Name == e.Name:
		m.IsConstructor = true
	case m.Name == "~"+e.Name:
		m.IsDestructor = true
		m.ReturnType = ""
	case strings.HasPrefix(m.Name, "operator"):
	case m.ReturnType == "":
		w.diag(n, "skipped unrecognized declaration in %s: %s", e.Name, abbreviate(w.text(n)))
		return
	}

	if params := fn.ChildByFieldName("parameters"); params != nil {
		for i := uint(0); i < params.NamedChildCount(); i++ {
			p := params.NamedChild(i)
			switch p.Kind() {
			case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
				m.Params = append(m.Params, splitDeclarator(cutInitializer(w.text(p))))
			}
		}
	}
	e.Methods = append(e.Methods, m)
}
