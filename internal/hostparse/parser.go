// Package hostparse adapts the external tree-sitter parser into the one
// collaborator the rest of the compiler needs: it hands back a parse tree
// and byte-range token addresses for the host language. kernelforge's host
// language is a Java-like OO language, so the concrete grammar used here
// is tree-sitter's Java binding, pulled in the same way a Go-targeting
// tool would pull in the sibling go-tree-sitter/golang grammar package.
package hostparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/oxhq/kernelforge/internal/ir"
)

// Tree wraps a parsed file: its tree-sitter syntax tree and the original
// source bytes, which double as the token stream addressed by
// ir.TokenAddress.
type Tree struct {
	Source []byte
	root   *sitter.Node
	tree   *sitter.Tree
}

// Parse parses one host-source file into a Tree.
func Parse(ctx context.Context, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())

	t, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("hostparse: parse failed: %w", err)
	}
	return &Tree{Source: source, root: t.RootNode(), tree: t}, nil
}

// Root returns the translation-unit node.
func (t *Tree) Root() *sitter.Node { return t.root }

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
	}
}

// Text returns the verbatim source text spanned by node.
func (t *Tree) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return node.Content(t.Source)
}

// Address converts a tree-sitter node's span into a TokenAddress.
func Address(node *sitter.Node) ir.TokenAddress {
	if node == nil {
		return ir.TokenAddress{}
	}
	start := node.StartPoint()
	return ir.TokenAddress{
		Start: int(node.StartByte()),
		Stop:  int(node.EndByte()),
		Line:  int(start.Row) + 1,
		Col:   int(start.Column) + 1,
	}
}

// SpanTo returns the range from the start of from up to (exclusive) toByte,
// for prefixes that aren't a single tree-sitter node in their own right —
// e.g. "BitmapImage img = " ahead of the creation expression it declares.
func SpanTo(from *sitter.Node, toByte uint32) ir.TokenAddress {
	if from == nil {
		return ir.TokenAddress{}
	}
	start := from.StartPoint()
	return ir.TokenAddress{
		Start: int(from.StartByte()),
		Stop:  int(toByte),
		Line:  int(start.Row) + 1,
		Col:   int(start.Column) + 1,
	}
}

// Span builds a TokenAddress covering [from, to] inclusive, both endpoints
// given as nodes; used when a single construct (e.g. a declaration plus its
// trailing semicolon) spans more than one tree-sitter node.
func Span(from, to *sitter.Node) ir.TokenAddress {
	a, b := Address(from), Address(to)
	return ir.TokenAddress{Start: a.Start, Stop: b.Stop, Line: a.Line, Col: a.Col}
}

// Walk invokes visit for node and every descendant, pre-order.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		Walk(node.NamedChild(i), visit)
	}
}

// EnclosingOfType walks up from node looking for the nearest ancestor whose
// Type() is one of types.
func EnclosingOfType(node *sitter.Node, types ...string) *sitter.Node {
	for n := node; n != nil; n = n.Parent() {
		for _, want := range types {
			if n.Type() == want {
				return n
			}
		}
	}
	return nil
}
