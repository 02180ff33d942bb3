package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
)

// captureFreeVariables walks a user function's body and returns the
// enclosing-scope Variables it references, in the order each is first
// seen. paramName is the function's own per-element parameter and is
// never itself a capture. Identifiers that name something other than a
// variable reference — a declaration site, a field-access member name, a
// method name — are skipped rather than resolved.
func captureFreeVariables(tree *hostparse.Tree, enclosing *ir.Scope, body *sitter.Node, paramName string) []*ir.Variable {
	local := map[string]bool{paramName: true}
	seen := map[string]bool{}
	var order []*ir.Variable

	hostparse.Walk(body, func(n *sitter.Node) bool {
		switch n.Type() {
		case "local_variable_declaration":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				d := n.NamedChild(i)
				if d.Type() != "variable_declarator" {
					continue
				}
				if nameNode := d.ChildByFieldName("name"); nameNode != nil {
					local[tree.Text(nameNode)] = true
				}
			}
			return true
		case "identifier":
			if isBindingOrMemberPosition(n) {
				return true
			}
			name := tree.Text(n)
			if local[name] || seen[name] {
				return true
			}
			sym := enclosing.LookupUpward(name, ir.KindVariable)
			if sym == nil {
				sym = enclosing.LookupUpward(name, ir.KindUserLibraryVariable)
			}
			if sym == nil {
				return true
			}
			seen[name] = true
			order = append(order, sym.(*ir.Variable))
			return true
		}
		return true
	})
	return order
}

// isBindingOrMemberPosition reports whether n's position in its parent
// makes it a declaration or a field/method name rather than a value
// reference: `int x` declares x, `p.rgba` never references a variable
// named rgba, and `pixel.foreach(...)` never references one named foreach.
func isBindingOrMemberPosition(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case "variable_declarator":
		return p.ChildByFieldName("name") == n
	case "field_access":
		return p.ChildByFieldName("field") == n
	case "method_invocation":
		return p.ChildByFieldName("name") == n
	case "formal_parameter":
		return p.ChildByFieldName("name") == n
	}
	return false
}
