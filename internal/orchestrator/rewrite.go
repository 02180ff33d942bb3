package orchestrator

import (
	"fmt"
	"strings"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/collector"
	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
	"github.com/oxhq/kernelforge/internal/rewriter"
)

// point turns a single byte offset into the zero-width ir.TokenAddress the
// rewriter's InsertBefore/InsertAfter expect.
func point(offset int) ir.TokenAddress { return ir.TokenAddress{Start: offset, Stop: offset} }

// classImports renders the import lines the rewritten host class needs to
// see both generated wrapper implementations.
func classImports(className string) string {
	return fmt.Sprintf("import %s;\nimport %s;\n",
		backend.WrapperImplName(className, backend.RenderScript),
		backend.WrapperImplName(className, backend.CPPRuntime))
}

// argText renders one InputBind constructor argument as host source text.
// Variable/Literal/Expression symbols all carry their original spelling
// verbatim (collector.argumentSymbol reads Literal.Value and
// Expression.Text straight off the parse tree), so reproducing them here
// reproduces the exact original tokens rather than an approximation.
func argText(arg ir.Argument) string {
	switch a := arg.(type) {
	case *ir.Variable:
		return a.Name
	case *ir.Literal:
		return a.Value
	case *ir.Expression:
		return a.Text
	default:
		return ""
	}
}

func joinArgTexts(args []ir.Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = argText(a)
	}
	return strings.Join(parts, ", ")
}

// externalCaptureTempName names the single-element array temp a
// non-final external capture is boxed into ahead of an operation's call,
// scoped to the operation's own wrapper method name so two operations
// capturing the same variable never collide.
func externalCaptureTempName(methodName, varName string) string {
	return methodName + "Box" + titleCase(varName)
}

// externalArgText mirrors externalParam's write-back-by-array convention
// at the call site: a Sequential operation's non-final capture is passed
// as the named single-element array temp boxCall already declared for it,
// so the wrapper method's array-typed parameter has something to write
// the updated value back into.
func externalArgText(v *ir.Variable, exec ir.ExecutionMode, tempNames map[string]string) string {
	if exec == ir.Sequential && v.Modifier != ir.ModifierFinal {
		return tempNames[v.Name]
	}
	return v.Name
}

func joinExternalArgTexts(vars []*ir.Variable, exec ir.ExecutionMode, tempNames map[string]string) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = externalArgText(v, exec, tempNames)
	}
	return strings.Join(parts, ", ")
}

// boxCall renders the full multi-statement call text for one operation:
// a boxing declaration ahead of the call for every non-final external
// capture, the call itself, then a write-back statement per boxed
// capture that reads the (possibly mutated) value back out of its
// single-element array. Final captures and Parallel operations need
// neither half and pass straight through.
func boxCall(fieldName, methodName string, op *ir.Operation) string {
	tempNames := make(map[string]string, len(op.ExternalVariables))
	var stmts []string

	for _, v := range op.ExternalVariables {
		if op.Execution != ir.Sequential || v.Modifier == ir.ModifierFinal {
			continue
		}
		tmp := externalCaptureTempName(methodName, v.Name)
		tempNames[v.Name] = tmp
		stmts = append(stmts, fmt.Sprintf("%s[] %s = new %s[]{%s};", v.TypeName, tmp, v.TypeName, v.Name))
	}

	args := joinExternalArgTexts(op.ExternalVariables, op.Execution, tempNames)
	stmts = append(stmts, fmt.Sprintf("%s.%s(%s);", fieldName, methodName, args))

	for _, v := range op.ExternalVariables {
		tmp, boxed := tempNames[v.Name]
		if !boxed {
			continue
		}
		stmts = append(stmts, fmt.Sprintf("%s = %s[0];", v.Name, tmp))
	}

	return strings.Join(stmts, "\n")
}

// outputBindCallText renders the statement an OutputBind's StatementRange
// is replaced by. A bare statement call (no destination resolved) just
// forwards to the wrapper method and discards its result; a declarative or
// plain assignment reconstructs the same left-hand side against the
// wrapper call.
func outputBindCallText(fieldName string, b *ir.OutputBind) string {
	call := fmt.Sprintf("%s.%s()", fieldName, outputBindMethodName(b.Variable.Name))
	if b.Destination == nil {
		return call + ";"
	}
	if b.Kind == ir.DeclarativeAssignment {
		return fmt.Sprintf("%s %s = %s;", outputBindReturnType(b.Variable), b.Destination.Name, call)
	}
	return fmt.Sprintf("%s = %s;", b.Destination.Name, call)
}

// appendClassEdits records every host-source rewrite edit for one class
// against rw: the back-end imports immediately ahead of the class
// declaration, the selector field immediately inside its body, and one
// replacement per recognized input bind, operation, output bind, and
// residual method call. InputBind is the only one of the four that also
// deletes: its DeclRange and CreationRange are adjacent by construction
// (internal/ir.InputBind), so deleting the declaration prefix and
// replacing the creation expression with the delegation call never has
// one edit swallow the other.
func appendClassEdits(rw *rewriter.Rewriter, unit collector.ClassUnit, art *classArtifacts, binds *ir.OperationsAndBinds, calls []ir.MethodCall) {
	classAddr := hostparse.Address(unit.Node)
	rw.InsertBefore(point(classAddr.Start), classImports(unit.Scope.Name))

	body := unit.Scope.BodyRange
	rw.InsertAfter(point(body.Start+1), "\n    "+art.SelectorSource)

	for i := range binds.InputBinds {
		b := &binds.InputBinds[i]
		rw.Delete(b.DeclRange)
		call := fmt.Sprintf("%s.%s(%s)", art.FieldName, inputBindMethodName(b.Variable.Name), joinArgTexts(b.Arguments))
		rw.Replace(b.CreationRange, call)
	}

	opIndex := map[string]int{}
	for i := range binds.Operations {
		op := &binds.Operations[i]
		opIndex[op.Variable.Name]++
		name := operationMethodName(op.Variable.Name, op.OpKind, opIndex[op.Variable.Name])
		rw.Replace(op.StatementRange, boxCall(art.FieldName, name, op))
	}

	for i := range binds.OutputBinds {
		b := &binds.OutputBinds[i]
		rw.Replace(b.StatementRange, outputBindCallText(art.FieldName, b))
	}

	for i := range calls {
		c := &calls[i]
		call := fmt.Sprintf("%s.%s()", art.FieldName, methodCallMethodName(c.Variable.Name, c.MethodName))
		rw.Replace(c.ExpressionRange, call)
	}
}
