// Package collector implements the first pass of the compiler: a purely
// syntactic walk of the parse tree that populates a scoped symbol table.
// No DSL semantics are interpreted here — that is the second pass's job
// (internal/extractor).
package collector

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
)

// Collector walks one file's parse tree into a Root symbol. It is not
// safe for concurrent use; create one per file.
type Collector struct {
	nextID int
}

// New returns a fresh Collector.
func New() *Collector { return &Collector{} }

func (c *Collector) id() int {
	c.nextID++
	return c.nextID
}

// ClassUnit pairs a collected Class scope with the tree-sitter node it was
// built from, so later passes can re-walk the class body without
// re-locating it by name.
type ClassUnit struct {
	Scope *ir.Scope
	Node  *sitter.Node
}

// Collect walks tree and returns the Root scope containing one Class
// symbol per top-level class declaration, each with nested Method,
// Variable, and Creator symbols, plus the ordered list of class units in
// input order.
func (c *Collector) Collect(tree *hostparse.Tree) (*ir.Scope, []ClassUnit, error) {
	root := ir.NewRoot()
	program := tree.Root()
	var units []ClassUnit
	for i := 0; i < int(program.NamedChildCount()); i++ {
		child := program.NamedChild(i)
		if child.Type() != "class_declaration" {
			continue
		}
		class, err := c.collectClass(tree, root, child)
		if err != nil {
			return nil, nil, err
		}
		if err := root.Declare(class); err != nil {
			return nil, nil, err
		}
		units = append(units, ClassUnit{Scope: class, Node: child})
	}
	return root, units, nil
}

func (c *Collector) collectClass(tree *hostparse.Tree, root *ir.Scope, node *sitter.Node) (*ir.Scope, error) {
	nameNode := node.ChildByFieldName("name")
	bodyNode := node.ChildByFieldName("body")
	class := ir.NewClass(root, tree.Text(nameNode), c.id(), hostparse.Address(bodyNode))

	if bodyNode == nil {
		return class, nil
	}
	for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
		member := bodyNode.NamedChild(i)
		switch member.Type() {
		case "field_declaration":
			if err := c.collectFieldDeclaration(tree, class, member); err != nil {
				return nil, err
			}
		case "method_declaration", "constructor_declaration":
			method, err := c.collectMethod(tree, class, member)
			if err != nil {
				return nil, err
			}
			if err := class.Declare(method); err != nil {
				return nil, err
			}
		}
	}
	return class, nil
}

func (c *Collector) collectFieldDeclaration(tree *hostparse.Tree, scope *ir.Scope, node *sitter.Node) error {
	mod := modifierOf(node)
	typeNode := node.ChildByFieldName("type")
	typeName, typeParams := typeNameAndParams(tree, typeNode)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		v := ir.NewVariable(scope, c.id(), tree.Text(nameNode), typeName, typeParams, mod, hostparse.Address(node))
		if err := scope.Declare(v); err != nil {
			return err
		}
		if err := c.collectCreatorsIn(tree, scope, decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectMethod(tree *hostparse.Tree, class *ir.Scope, node *sitter.Node) (*ir.Scope, error) {
	nameNode := node.ChildByFieldName("name")
	bodyNode := node.ChildByFieldName("body")
	sigEnd := bodyNode
	if sigEnd == nil {
		sigEnd = node
	}
	signature := tree.Source[node.StartByte():sigEnd.StartByte()]

	methodName := ""
	if nameNode != nil {
		methodName = tree.Text(nameNode)
	} else {
		methodName = "<init>"
	}
	method := ir.NewMethod(class, methodName, c.id(), string(signature))

	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			p := params.NamedChild(i)
			if p.Type() != "formal_parameter" {
				continue
			}
			pType := p.ChildByFieldName("type")
			pName := p.ChildByFieldName("name")
			typeName, typeParams := typeNameAndParams(tree, pType)
			mod := modifierOf(p)
			v := ir.NewVariable(method, c.id(), tree.Text(pName), typeName, typeParams, mod, hostparse.Address(p))
			if err := method.Declare(v); err != nil {
				return nil, err
			}
		}
	}

	if bodyNode != nil {
		if err := c.collectBody(tree, method, bodyNode); err != nil {
			return nil, err
		}
	}
	return method, nil
}

// collectBody recursively walks a method body for local variable
// declarations and object creations, declaring them against the owning
// method scope (the data model has no separate block-scope variant: every
// local lives in its enclosing Method, however deeply nested the block).
func (c *Collector) collectBody(tree *hostparse.Tree, method *ir.Scope, node *sitter.Node) error {
	var walkErr error
	hostparse.Walk(node, func(n *sitter.Node) bool {
		if walkErr != nil {
			return false
		}
		switch n.Type() {
		case "local_variable_declaration":
			if err := c.collectLocalVarDecl(tree, method, n); err != nil {
				walkErr = err
				return false
			}
			return false // declarators handled; don't descend into their initializers twice
		case "object_creation_expression":
			if err := c.collectCreator(tree, method, n); err != nil {
				walkErr = err
				return false
			}
			return true
		}
		return true
	})
	return walkErr
}

func (c *Collector) collectLocalVarDecl(tree *hostparse.Tree, scope *ir.Scope, node *sitter.Node) error {
	mod := modifierOf(node)
	typeNode := node.ChildByFieldName("type")
	typeName, typeParams := typeNameAndParams(tree, typeNode)

	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		v := ir.NewVariable(scope, c.id(), tree.Text(nameNode), typeName, typeParams, mod, hostparse.Address(node))
		if err := scope.Declare(v); err != nil {
			return err
		}
		if err := c.collectCreatorsIn(tree, scope, decl); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) collectCreatorsIn(tree *hostparse.Tree, scope *ir.Scope, node *sitter.Node) error {
	var walkErr error
	hostparse.Walk(node, func(n *sitter.Node) bool {
		if walkErr != nil {
			return false
		}
		if n.Type() == "object_creation_expression" {
			if err := c.collectCreator(tree, scope, n); err != nil {
				walkErr = err
				return false
			}
		}
		return true
	})
	return walkErr
}

func (c *Collector) collectCreator(tree *hostparse.Tree, scope *ir.Scope, node *sitter.Node) error {
	typeNode := node.ChildByFieldName("type")
	objName, _ := typeNameAndParams(tree, typeNode)

	var args []ir.Symbol
	if argList := node.ChildByFieldName("arguments"); argList != nil {
		for i := 0; i < int(argList.NamedChildCount()); i++ {
			args = append(args, c.argumentSymbol(tree, scope, argList.NamedChild(i)))
		}
	}
	creator := ir.NewCreator(scope, c.id(), objName, args, hostparse.Address(node))
	return scope.Declare(creator)
}

// argumentSymbol classifies one constructor argument as a Literal,
// Variable reference, or opaque Expression.
func (c *Collector) argumentSymbol(tree *hostparse.Tree, scope *ir.Scope, node *sitter.Node) ir.Symbol {
	text := tree.Text(node)
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal":
		return ir.NewLiteral(scope, c.id(), ir.LiteralInt, text, "int")
	case "decimal_floating_point_literal":
		return ir.NewLiteral(scope, c.id(), ir.LiteralFloat, text, "float")
	case "true", "false":
		return ir.NewLiteral(scope, c.id(), ir.LiteralBool, text, "boolean")
	case "character_literal":
		return ir.NewLiteral(scope, c.id(), ir.LiteralChar, text, "char")
	case "string_literal":
		return ir.NewLiteral(scope, c.id(), ir.LiteralString, text, "String")
	case "identifier":
		if found := scope.LookupUpward(text, ir.KindVariable); found != nil {
			return found
		}
		if found := scope.LookupUpward(text, ir.KindUserLibraryVariable); found != nil {
			return found
		}
		return ir.NewExpression(scope, c.id(), text)
	default:
		return ir.NewExpression(scope, c.id(), text)
	}
}

func modifierOf(node *sitter.Node) ir.Modifier {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if child.NamedChild(j).Type() == "final" {
				return ir.ModifierFinal
			}
		}
	}
	return ir.ModifierNone
}

// typeNameAndParams splits a type node like `Array<Int32>` into its base
// name and ordered type parameters.
func typeNameAndParams(tree *hostparse.Tree, typeNode *sitter.Node) (string, []string) {
	if typeNode == nil {
		return "", nil
	}
	if typeNode.Type() != "generic_type" {
		return tree.Text(typeNode), nil
	}
	base := typeNode.NamedChild(0)
	name := tree.Text(base)
	var params []string
	if args := typeNode.ChildByFieldName("type_arguments"); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			params = append(params, tree.Text(args.NamedChild(i)))
		}
	} else if typeNode.NamedChildCount() > 1 {
		for i := 1; i < int(typeNode.NamedChildCount()); i++ {
			params = append(params, tree.Text(typeNode.NamedChild(i)))
		}
	}
	return name, params
}
