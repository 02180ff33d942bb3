// Package extractor implements the second pass of the compiler: given the
// scoped symbol table the first pass (internal/collector) already built, it
// walks each class's method bodies looking for DSL-recognized method calls
// and turns them into the back-end-neutral IR (internal/ir.OperationsAndBinds
// and residual ir.MethodCall values).
//
// Unlike the collector, this pass is catalog-aware: every decision about
// whether a call is an input bind, an operation, an output bind, or just a
// plain recognized call is made by consulting the internal/catalog.Catalog
// threaded in from the caller.
package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/oxhq/kernelforge/internal/catalog"
	"github.com/oxhq/kernelforge/internal/collector"
	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
	"github.com/oxhq/kernelforge/internal/kerrors"
)

// Extractor walks one class at a time. It is not safe for concurrent use;
// create one per file, same as collector.Collector.
type Extractor struct {
	nextID int
}

// New returns a fresh Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) id() int {
	e.nextID++
	return e.nextID
}

// ExtractClass walks one ClassUnit's method bodies and returns the class's
// input/output binds, operations, and residual recognized method calls.
// The supplied catalog decides which types and methods are DSL-recognized;
// variables the extractor determines are actually DSL collections are
// reclassified in place to ir.KindUserLibraryVariable (they were declared
// as plain ir.KindVariable by the purely-syntactic first pass, which has no
// catalog to consult).
func (e *Extractor) ExtractClass(tree *hostparse.Tree, unit collector.ClassUnit, cat *catalog.Catalog) (*ir.OperationsAndBinds, []ir.MethodCall, error) {
	out := &ir.OperationsAndBinds{}
	var calls []ir.MethodCall
	seq := 0

	bodyNode := unit.Node.ChildByFieldName("body")
	if bodyNode == nil {
		return out, calls, nil
	}

	methods := unit.Scope.Collect(ir.KindMethod, false)
	mi := 0
	for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
		member := bodyNode.NamedChild(i)
		if member.Type() != "method_declaration" && member.Type() != "constructor_declaration" {
			continue
		}
		if mi >= len(methods) {
			break
		}
		method := methods[mi].(*ir.Scope)
		mi++

		methodBody := member.ChildByFieldName("body")
		if methodBody == nil {
			continue
		}
		if err := e.walkMethodBody(tree, method, methodBody, cat, out, &calls, &seq); err != nil {
			return nil, nil, err
		}
	}
	return out, calls, nil
}

func (e *Extractor) walkMethodBody(tree *hostparse.Tree, method *ir.Scope, body *sitter.Node, cat *catalog.Catalog, out *ir.OperationsAndBinds, calls *[]ir.MethodCall, seq *int) error {
	var walkErr error
	hostparse.Walk(body, func(n *sitter.Node) bool {
		if walkErr != nil {
			return false
		}
		switch n.Type() {
		case "local_variable_declaration":
			if err := e.handleLocalVarDecl(tree, method, n, cat, out, calls, seq); err != nil {
				walkErr = err
				return false
			}
			return false
		case "expression_statement":
			if err := e.handleExpressionStatement(tree, method, n, cat, out, calls); err != nil {
				walkErr = err
				return false
			}
			return false
		}
		return true
	})
	return walkErr
}

func (e *Extractor) handleLocalVarDecl(tree *hostparse.Tree, method *ir.Scope, node *sitter.Node, cat *catalog.Catalog, out *ir.OperationsAndBinds, calls *[]ir.MethodCall, seq *int) error {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		varName := tree.Text(nameNode)

		switch valueNode.Type() {
		case "object_creation_expression":
			if err := e.handleCreator(tree, method, node, decl, valueNode, varName, cat, out, seq); err != nil {
				return err
			}
		case "method_invocation":
			if err := e.classifyInvocation(tree, method, valueNode, cat, out, calls, varName, ir.DeclarativeAssignment); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Extractor) handleCreator(tree *hostparse.Tree, method *ir.Scope, declStmt, decl, creationNode *sitter.Node, varName string, cat *catalog.Catalog, out *ir.OperationsAndBinds, seq *int) error {
	typeNode := creationNode.ChildByFieldName("type")
	typeName := tree.Text(typeNode)
	if typeNode != nil && typeNode.Type() == "generic_type" {
		typeName = tree.Text(typeNode.NamedChild(0))
	}
	if !cat.IsCollection(typeName) {
		return nil
	}
	sym := method.LookupUpward(varName, ir.KindVariable)
	if sym == nil {
		return kerrors.AtLine(kerrors.ErrUnresolvedVariable, hostparse.Address(decl).Line)
	}
	variable := sym.(*ir.Variable)
	variable.IsUserLibrary = true

	addr := hostparse.Address(creationNode)
	creator := findCreator(method, typeName, addr)
	var args []ir.Argument
	if creator != nil {
		args = creator.Arguments
	}

	*seq++
	out.InputBinds = append(out.InputBinds, ir.InputBind{
		Variable:      variable,
		SequenceIndex: *seq,
		Arguments:     args,
		// DeclRange covers only the "TypeName name = " prefix, stopping
		// exactly where CreationRange begins, so the two ranges are
		// adjacent rather than nested: deleting DeclRange and replacing
		// CreationRange with a delegation call leaves that call as the
		// one surviving expression on the line. Declarations that pack
		// more than one declarator onto a single statement aren't a
		// shape the bind DSL produces, so this prefix is computed from
		// the enclosing declaration's start without accounting for
		// siblings before decl.
		DeclRange:     hostparse.SpanTo(declStmt, creationNode.StartByte()),
		CreationRange: addr,
	})
	return nil
}

func (e *Extractor) handleExpressionStatement(tree *hostparse.Tree, method *ir.Scope, node *sitter.Node, cat *catalog.Catalog, out *ir.OperationsAndBinds, calls *[]ir.MethodCall) error {
	if node.NamedChildCount() == 0 {
		return nil
	}
	expr := node.NamedChild(0)
	switch expr.Type() {
	case "assignment_expression":
		left := expr.ChildByFieldName("left")
		right := expr.ChildByFieldName("right")
		if left == nil || right == nil || right.Type() != "method_invocation" {
			return nil
		}
		return e.classifyInvocation(tree, method, right, cat, out, calls, tree.Text(left), ir.Assignment)
	case "method_invocation":
		return e.classifyInvocation(tree, method, expr, cat, out, calls, "", ir.Assignment)
	}
	return nil
}

// classifyInvocation resolves invNode's receiver against the catalog and
// appends the right IR value to out or calls. destName and destKind are
// only meaningful when invNode turns out to be an output bind; destName
// empty means the call is a bare statement with no destination.
func (e *Extractor) classifyInvocation(tree *hostparse.Tree, method *ir.Scope, invNode *sitter.Node, cat *catalog.Catalog, out *ir.OperationsAndBinds, calls *[]ir.MethodCall, destName string, destKind ir.OutputBindKind) error {
	objNode := invNode.ChildByFieldName("object")
	nameNode := invNode.ChildByFieldName("name")
	if objNode == nil || nameNode == nil || objNode.Type() != "identifier" {
		return nil
	}
	varName := tree.Text(objNode)
	methodName := tree.Text(nameNode)

	sym := method.LookupUpward(varName, ir.KindUserLibraryVariable)
	if sym == nil {
		sym = method.LookupUpward(varName, ir.KindVariable)
	}
	if sym == nil {
		return nil
	}
	variable := sym.(*ir.Variable)

	info, ok := cat.ValidMethod(variable.TypeName, methodName)
	if !ok {
		return nil
	}

	statement := hostparse.EnclosingOfType(invNode, "local_variable_declaration", "expression_statement")
	if statement == nil {
		statement = invNode
	}

	switch {
	case info.Operation:
		variable.IsUserLibrary = true
		userFunc, externals, err := e.extractUserFunction(tree, method, invNode)
		if err != nil {
			return err
		}
		out.Operations = append(out.Operations, ir.Operation{
			Variable:          variable,
			OpKind:            info.OpKind,
			UserFunc:          userFunc,
			ExternalVariables: externals,
			StatementRange:    hostparse.Address(statement),
			Execution:         ir.Unclassified,
		})
	case info.OutputBind:
		variable.IsUserLibrary = true
		var dest *ir.Variable
		if destName != "" {
			if d := method.LookupUpward(destName, ir.KindVariable); d != nil {
				dest = d.(*ir.Variable)
			}
		}
		out.OutputBinds = append(out.OutputBinds, ir.OutputBind{
			Variable:       variable,
			Destination:    dest,
			StatementRange: hostparse.Address(statement),
			Kind:           destKind,
		})
	default:
		*calls = append(*calls, ir.MethodCall{
			Variable:        variable,
			MethodName:      methodName,
			ExpressionRange: hostparse.Address(invNode),
		})
	}
	return nil
}

// extractUserFunction lifts an operation call's sole lambda or anonymous
// functional-interface argument into a UserFunction, and collects the
// non-parameter variables its body references in the order first seen.
// Capture analysis is deliberately a standalone lexical walk rather than
// reusing the scope-resolution machinery, since it only needs identifier
// occurrences, not full symbol binding.
func (e *Extractor) extractUserFunction(tree *hostparse.Tree, method *ir.Scope, invNode *sitter.Node) (ir.UserFunction, []*ir.Variable, error) {
	argList := invNode.ChildByFieldName("arguments")
	if argList == nil || argList.NamedChildCount() != 1 {
		return ir.UserFunction{}, nil, kerrors.AtLine(kerrors.ErrUnsupportedArgumentShape, hostparse.Address(invNode).Line)
	}
	argNode := argList.NamedChild(0)

	var paramName, paramType string
	var bodyNode *sitter.Node
	var paramNode *sitter.Node

	switch argNode.Type() {
	case "lambda_expression":
		params := argNode.ChildByFieldName("parameters")
		paramName, paramType, paramNode = lambdaParameter(tree, params)
		bodyNode = argNode.ChildByFieldName("body")
	case "object_creation_expression":
		classBody := argNode.ChildByFieldName("body")
		for i := 0; classBody == nil && i < int(argNode.NamedChildCount()); i++ {
			if c := argNode.NamedChild(i); c.Type() == "class_body" {
				classBody = c
			}
		}
		if classBody == nil {
			return ir.UserFunction{}, nil, kerrors.AtLine(kerrors.ErrUnsupportedArgumentShape, hostparse.Address(argNode).Line)
		}
		for i := 0; i < int(classBody.NamedChildCount()); i++ {
			member := classBody.NamedChild(i)
			if member.Type() != "method_declaration" {
				continue
			}
			params := member.ChildByFieldName("parameters")
			for j := 0; j < int(params.NamedChildCount()); j++ {
				p := params.NamedChild(j)
				if p.Type() == "formal_parameter" {
					paramNode = p
					paramName = tree.Text(p.ChildByFieldName("name"))
					if t := p.ChildByFieldName("type"); t != nil {
						paramType = tree.Text(t)
					}
					break
				}
			}
			bodyNode = member.ChildByFieldName("body")
			break
		}
	default:
		return ir.UserFunction{}, nil, kerrors.AtLine(kerrors.ErrUnsupportedArgumentShape, hostparse.Address(argNode).Line)
	}

	if bodyNode == nil || paramName == "" {
		return ir.UserFunction{}, nil, kerrors.AtLine(kerrors.ErrUnsupportedArgumentShape, hostparse.Address(argNode).Line)
	}

	rng := hostparse.Address(argNode)
	if paramNode != nil {
		rng = hostparse.Address(paramNode)
	}
	varArg := ir.NewVariable(method, e.id(), paramName, paramType, nil, ir.ModifierNone, rng)

	userFunc := ir.UserFunction{
		Code:             extractCode(tree, bodyNode),
		VariableArgument: varArg,
	}
	externals := captureFreeVariables(tree, method, bodyNode, paramName)
	return userFunc, externals, nil
}

// lambdaParameter handles both `x -> ...` (bare identifier) and
// `(Type x) -> ...` (parenthesized formal_parameter) lambda spellings.
func lambdaParameter(tree *hostparse.Tree, node *sitter.Node) (name, typeName string, paramNode *sitter.Node) {
	if node == nil {
		return "", "", nil
	}
	if node.Type() == "identifier" {
		return tree.Text(node), "", node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p := node.NamedChild(i)
		if p.Type() != "formal_parameter" {
			continue
		}
		nameNode := p.ChildByFieldName("name")
		tn := ""
		if t := p.ChildByFieldName("type"); t != nil {
			tn = tree.Text(t)
		}
		return tree.Text(nameNode), tn, p
	}
	return "", "", nil
}

// extractCode returns the user function's body as the raw statement text
// handed to the host-to-C expression translator: a block's statements
// joined verbatim, or the bare expression text for an expression-bodied
// lambda.
func extractCode(tree *hostparse.Tree, body *sitter.Node) string {
	if body.Type() != "block" {
		return tree.Text(body)
	}
	var parts []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		parts = append(parts, tree.Text(body.NamedChild(i)))
	}
	return strings.Join(parts, "\n")
}

// findCreator locates the Creator symbol the first pass declared for the
// object_creation_expression at addr, so InputBind construction reuses its
// already-classified Arguments instead of re-walking argument syntax.
func findCreator(method *ir.Scope, typeName string, addr ir.TokenAddress) *ir.Creator {
	for _, sym := range method.LookupInScope(typeName, ir.KindCreator) {
		creator := sym.(*ir.Creator)
		if creator.StatementRange == addr {
			return creator
		}
	}
	return nil
}
