// Package renderscript implements one of the two back-end translators:
// the RenderScript-dialect GPU kernel emitter. Kernel source is plain
// `.rs`-style text; this package has no direct precedent to lean on for
// kernel emission, so the shape here is built from scratch, grounded on
// the shared naming/substitution helpers in internal/backend.
package renderscript

import (
	"fmt"
	"strings"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/ir"
)

// Dispatch is the RenderScript back-end's emitter table, keyed by
// operation kind (see backend.OperationKey's doc comment for why the
// dsl_type axis is folded into backend.EmitRequest.ElementCType instead).
var Dispatch = buildDispatch()

func buildDispatch() *backend.Dispatch {
	d := backend.NewDispatch()
	d.Register(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Foreach}, emitForeach)
	d.Register(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Map}, emitMap)
	d.Register(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Reduce}, emitReduce)
	d.Register(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Filter}, emitFilter)
	return d
}

func userFunctionBody(req backend.EmitRequest) string {
	return backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, backend.KernelInParam)
}

// emitForeach produces an in-place per-element kernel attributed with the
// RenderScript kernel marker, mutating and returning the element.
func emitForeach(req backend.EmitRequest) (string, error) {
	body := userFunctionBody(req)
	var b strings.Builder
	fmt.Fprintf(&b, "__attribute__((kernel))\n")
	fmt.Fprintf(&b, "%s %s(%s %s) {\n", req.ElementCType, req.FuncName, req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "  %s\n", body)
	fmt.Fprintf(&b, "  return %s;\n", backend.KernelInParam)
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitMap produces a per-element transform writing its result to a new
// allocation rather than mutating the input in place.
func emitMap(req backend.EmitRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "__attribute__((kernel))\n")
	fmt.Fprintf(&b, "%s %s(%s %s) {\n", req.ElementCType, req.FuncName, req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "  %s %s = %s;\n", req.ElementCType, backend.KernelOutParam, backend.KernelInParam)
	body := backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, backend.KernelOutParam)
	fmt.Fprintf(&b, "  %s\n", body)
	fmt.Fprintf(&b, "  return %s;\n", backend.KernelOutParam)
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitReduce produces the two-stage tile/final kernel pair when the
// classifier marked the operation Parallel, or a single sequential loop
// otherwise. Reduce ordering is `acc = user_fn(acc, next)`: the first
// argument is always the running accumulator.
func emitReduce(req backend.EmitRequest) (string, error) {
	var b strings.Builder
	combine := backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, "acc")

	if req.Op.Execution != ir.Parallel {
		fmt.Fprintf(&b, "%s %s(const %s *elems, int count) {\n", req.ElementCType, req.FuncName, req.ElementCType)
		fmt.Fprintf(&b, "  %s acc = elems[0];\n", req.ElementCType)
		fmt.Fprintf(&b, "  for (int i = 1; i < count; i++) {\n")
		fmt.Fprintf(&b, "    %s next = elems[i];\n", req.ElementCType)
		fmt.Fprintf(&b, "    %s\n", combine)
		fmt.Fprintf(&b, "  }\n")
		fmt.Fprintf(&b, "  return acc;\n")
		fmt.Fprintf(&b, "}\n")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "__attribute__((kernel))\n")
	fmt.Fprintf(&b, "%s %s_tile(rs_allocation in, uint32_t x) {\n", req.ElementCType, req.FuncName)
	fmt.Fprintf(&b, "  return rsGetElementAt_%s(in, x);\n", req.ElementCType)
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "%s %s_final(const %s *tiles, int count) {\n", req.ElementCType, req.FuncName, req.ElementCType)
	fmt.Fprintf(&b, "  %s acc = tiles[0];\n", req.ElementCType)
	fmt.Fprintf(&b, "  for (int i = 1; i < count; i++) {\n")
	fmt.Fprintf(&b, "    %s next = tiles[i];\n", req.ElementCType)
	fmt.Fprintf(&b, "    %s\n", combine)
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "  return acc;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitFilter produces the two-pass tile-predicate/prefix-then-compaction
// kernel pair. Output order is preserved; output length equals the count
// of truthy predicate evaluations.
func emitFilter(req backend.EmitRequest) (string, error) {
	predicate := userFunctionBody(req)
	var b strings.Builder
	fmt.Fprintf(&b, "__attribute__((kernel))\n")
	fmt.Fprintf(&b, "bool %s_predicate(%s %s) {\n", req.FuncName, req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "  %s\n", predicate)
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "int %s_compact(const %s *in, const bool *keep, int count, %s *out) {\n", req.FuncName, req.ElementCType, req.ElementCType)
	fmt.Fprintf(&b, "  int w = 0;\n")
	fmt.Fprintf(&b, "  for (int i = 0; i < count; i++) {\n")
	fmt.Fprintf(&b, "    if (keep[i]) { out[w] = in[i]; w++; }\n")
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "  return w;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}
