package orchestrator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/catalog"
	"github.com/oxhq/kernelforge/internal/ir"
)

// titleCase upper-cases the first rune of s, leaving the rest untouched;
// used to build collision-free wrapper method names out of a variable
// name plus an operation/method suffix. The wrapper method signatures
// are dictated by the DSL source; their exact spelling is not, so this
// package owns the naming scheme.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// inputBindMethodName is also the back-end helper name the generated
// runtime calls delegate to, so both layers agree on one spelling.
func inputBindMethodName(bindName string) string { return backend.HelperName(bindName, backend.In) }
func outputBindMethodName(bindName string) string { return backend.HelperName(bindName, backend.Out) }

// operationMethodName disambiguates same-kind operations on the same
// variable with a per-variable sequential suffix (e.g. "imgForeach1",
// "imgForeach2"), since a class may call .foreach on one collection more
// than once.
func operationMethodName(bindName string, kind ir.OperationKind, indexWithinVariable int) string {
	return fmt.Sprintf("%s%s%d", bindName, titleCase(kind.String()), indexWithinVariable)
}

// methodCallMethodName disambiguates an accessor call (e.g. `.width()`)
// per variable so two collections calling the same accessor don't collide
// in the flat wrapper interface namespace.
func methodCallMethodName(bindName, dslMethodName string) string {
	return bindName + titleCase(dslMethodName)
}

// elementCType resolves the kernel C dialect type an operation's element
// storage holds: BitmapImage/HDRImage resolve through the catalog
// directly, Array<T> resolves through its sole type parameter.
func elementCType(cat *catalog.Catalog, v *ir.Variable) string {
	if v.TypeName == "Array" && len(v.TypeParameters) == 1 {
		return backend.CType(v.TypeParameters[0])
	}
	return cat.CType(v.TypeName)
}

func isBitmap(v *ir.Variable) bool { return v.TypeName == "BitmapImage" }

// accessorReturnType gives the host-visible return type of a recognized
// non-bind, non-operation DSL method call. The catalog tracks which names
// are valid accessors per class but not their host type, since every
// back-end and every collection class in the built-in set agrees on
// these three; a catalog override that added a differently-typed
// accessor would need a matching entry here.
func accessorReturnType(methodName string) string {
	switch methodName {
	case "width", "height", "length":
		return "int"
	default:
		return "Object"
	}
}

// argParam derives a wrapper-method parameter from one InputBind/Creator
// constructor argument. Variables keep their declared host type; literals
// and opaque expressions can't be typed any more precisely than their
// literal kind or Object without re-deriving a host type system, so they
// fall back to that.
func argParam(arg ir.Argument, index int) backend.Param {
	switch a := arg.(type) {
	case *ir.Variable:
		return backend.Param{Name: a.Name, Type: a.TypeName}
	case *ir.Literal:
		return backend.Param{Name: fmt.Sprintf("arg%d", index), Type: a.TypeName}
	default:
		return backend.Param{Name: fmt.Sprintf("arg%d", index), Type: "Object"}
	}
}

// externalParam derives one operation method's parameter for a captured
// external variable, applying the write-back-by-array convention required
// for non-final captures once the classifier has downgraded the operation
// to Sequential.
func externalParam(v *ir.Variable, exec ir.ExecutionMode) backend.Param {
	if exec == ir.Sequential && v.Modifier != ir.ModifierFinal {
		return backend.Param{Name: v.Name, Type: v.TypeName + "[]"}
	}
	return backend.Param{Name: v.Name, Type: v.TypeName}
}

// reduceReturnType gives the host type a Reduce operation's accumulator
// surfaces as, derived the same way its kernel element type is.
func reduceReturnType(cat *catalog.Catalog, v *ir.Variable) string {
	if v.TypeName == "Array" && len(v.TypeParameters) == 1 {
		return v.TypeParameters[0]
	}
	if isBitmap(v) || v.TypeName == "HDRImage" {
		return "Pixel"
	}
	return "Object"
}

// outputBindReturnType gives the host type an OutputBind materializes to:
// image collections hand back the same `Bitmap` type they were
// constructed from, an Array<T> hands back a plain T[].
func outputBindReturnType(v *ir.Variable) string {
	if isBitmap(v) || v.TypeName == "HDRImage" {
		return "Bitmap"
	}
	if v.TypeName == "Array" && len(v.TypeParameters) == 1 {
		return v.TypeParameters[0] + "[]"
	}
	return "Object"
}

// boundMethod is one entry of the neutral-wrapper method list for a class,
// plus enough bookkeeping to build both the rewrite edits and the
// per-back-end method bodies.
type boundMethod struct {
	backend.Method
	inputBind  *ir.InputBind
	operation  *ir.Operation
	outputBind *ir.OutputBind
	methodCall *ir.MethodCall
}

// buildMethods derives the complete ordered wrapper method list for one
// class's OperationsAndBinds plus its residual method calls (one method per
// input bind, operation, output bind, and method call), grouped in that
// order of kinds, each group in source order.
func buildMethods(cat *catalog.Catalog, binds *ir.OperationsAndBinds, calls []ir.MethodCall) []boundMethod {
	var out []boundMethod

	for i := range binds.InputBinds {
		b := &binds.InputBinds[i]
		params := make([]backend.Param, len(b.Arguments))
		for j, arg := range b.Arguments {
			params[j] = argParam(arg, j)
		}
		out = append(out, boundMethod{
			Method: backend.Method{
				Name:       inputBindMethodName(b.Variable.Name),
				Params:     params,
				ReturnType: "void",
			},
			inputBind: b,
		})
	}

	opIndex := map[string]int{}
	for i := range binds.Operations {
		op := &binds.Operations[i]
		opIndex[op.Variable.Name]++
		params := make([]backend.Param, len(op.ExternalVariables))
		for j, v := range op.ExternalVariables {
			params[j] = externalParam(v, op.Execution)
		}
		returnType := "void"
		if op.OpKind == ir.Reduce {
			returnType = reduceReturnType(cat, op.Variable)
		}
		out = append(out, boundMethod{
			Method: backend.Method{
				Name:       operationMethodName(op.Variable.Name, op.OpKind, opIndex[op.Variable.Name]),
				Params:     params,
				ReturnType: returnType,
			},
			operation: op,
		})
	}

	for i := range binds.OutputBinds {
		b := &binds.OutputBinds[i]
		out = append(out, boundMethod{
			Method: backend.Method{
				Name:       outputBindMethodName(b.Variable.Name),
				Params:     nil,
				ReturnType: outputBindReturnType(b.Variable),
			},
			outputBind: b,
		})
	}

	for i := range calls {
		c := &calls[i]
		out = append(out, boundMethod{
			Method: backend.Method{
				Name:       methodCallMethodName(c.Variable.Name, c.MethodName),
				Params:     nil,
				ReturnType: accessorReturnType(c.MethodName),
			},
			methodCall: c,
		})
	}

	return out
}

// joinArgNames renders a parameter list as a plain comma-separated
// argument-name list, for delegation-call bodies that simply forward
// their own parameters through to a native entry point.
func joinArgNames(params []backend.Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
