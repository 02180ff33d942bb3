// Package cppruntime implements the second back-end translator: the
// custom C++ runtime, reached via FFI from the rewritten host source
// when the RenderScript back-end reports itself unavailable at load time.
// It mirrors internal/backend/renderscript's emission shapes (same naming,
// same accessor substitution) but targets plain sequential/threaded C++
// instead of a GPU kernel dialect.
package cppruntime

import (
	"fmt"
	"strings"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/ir"
)

// Dispatch is the C++ runtime back-end's emitter table.
var Dispatch = buildDispatch()

func buildDispatch() *backend.Dispatch {
	d := backend.NewDispatch()
	d.Register(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Foreach}, emitForeach)
	d.Register(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Map}, emitMap)
	d.Register(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Reduce}, emitReduce)
	d.Register(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Filter}, emitFilter)
	return d
}

func userFunctionBody(req backend.EmitRequest) string {
	return backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, backend.KernelInParam)
}

// emitForeach produces an in-place per-element loop kernel when Sequential,
// or a parallel-for over the element range when Parallel; both mutate the
// element storage directly.
func emitForeach(req backend.EmitRequest) (string, error) {
	body := userFunctionBody(req)
	var b strings.Builder
	fmt.Fprintf(&b, "void %s(%s *elems, int count) {\n", req.FuncName, req.ElementCType)
	loopOpen := "for (int i = 0; i < count; i++) {"
	if req.Op.Execution == ir.Parallel {
		loopOpen = "parallel_for(0, count, [&](int i) {"
	}
	fmt.Fprintf(&b, "  %s\n", loopOpen)
	fmt.Fprintf(&b, "    %s &%s = elems[i];\n", req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "    %s\n", body)
	if req.Op.Execution == ir.Parallel {
		fmt.Fprintf(&b, "  });\n")
	} else {
		fmt.Fprintf(&b, "  }\n")
	}
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitMap produces a per-element transform writing into a freshly
// allocated output buffer, leaving the input untouched.
func emitMap(req backend.EmitRequest) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "void %s(const %s *in, %s *out, int count) {\n", req.FuncName, req.ElementCType, req.ElementCType)
	loopOpen := "for (int i = 0; i < count; i++) {"
	if req.Op.Execution == ir.Parallel {
		loopOpen = "parallel_for(0, count, [&](int i) {"
	}
	fmt.Fprintf(&b, "  %s\n", loopOpen)
	fmt.Fprintf(&b, "    %s %s = in[i];\n", req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "    %s %s = %s;\n", req.ElementCType, backend.KernelOutParam, backend.KernelInParam)
	body := backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, backend.KernelOutParam)
	fmt.Fprintf(&b, "    %s\n", body)
	fmt.Fprintf(&b, "    out[i] = %s;\n", backend.KernelOutParam)
	if req.Op.Execution == ir.Parallel {
		fmt.Fprintf(&b, "  });\n")
	} else {
		fmt.Fprintf(&b, "  }\n")
	}
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitReduce produces the two-stage tile/final reduction when Parallel, or
// a single sequential fold otherwise, combining with
// `acc = user_fn(acc, next)` left-to-right.
func emitReduce(req backend.EmitRequest) (string, error) {
	combine := backend.RenameReceiver(req.TranslatedFn, req.Op.UserFunc.VariableArgument.Name, "acc")
	var b strings.Builder

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

	fmt.Fprintf(&b, "%s %s_tile(const %s *elems, int start, int end) {\n", req.ElementCType, req.FuncName, req.ElementCType)
	fmt.Fprintf(&b, "  %s acc = elems[start];\n", req.ElementCType)
	fmt.Fprintf(&b, "  for (int i = start + 1; i < end; i++) {\n")
	fmt.Fprintf(&b, "    %s next = elems[i];\n", req.ElementCType)
	fmt.Fprintf(&b, "    %s\n", combine)
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "  return acc;\n")
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "%s %s_final(const %s *tileResults, int tileCount) {\n", req.ElementCType, req.FuncName, req.ElementCType)
	fmt.Fprintf(&b, "  %s acc = tileResults[0];\n", req.ElementCType)
	fmt.Fprintf(&b, "  for (int i = 1; i < tileCount; i++) {\n")
	fmt.Fprintf(&b, "    %s next = tileResults[i];\n", req.ElementCType)
	fmt.Fprintf(&b, "    %s\n", combine)
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "  return acc;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}

// emitFilter produces the tile-predicate/prefix kernel and the compaction
// pass, preserving input order; output length equals the count of truthy
// predicate evaluations.
func emitFilter(req backend.EmitRequest) (string, error) {
	predicate := userFunctionBody(req)
	var b strings.Builder
	fmt.Fprintf(&b, "bool %s_predicate(%s %s) {\n", req.FuncName, req.ElementCType, backend.KernelInParam)
	fmt.Fprintf(&b, "  %s\n", predicate)
	fmt.Fprintf(&b, "}\n\n")
	fmt.Fprintf(&b, "int %s_compact(const %s *in, int count, %s *out) {\n", req.FuncName, req.ElementCType, req.ElementCType)
	fmt.Fprintf(&b, "  int w = 0;\n")
	fmt.Fprintf(&b, "  for (int i = 0; i < count; i++) {\n")
	fmt.Fprintf(&b, "    if (%s_predicate(in[i])) { out[w] = in[i]; w++; }\n", req.FuncName)
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "  return w;\n")
	fmt.Fprintf(&b, "}\n")
	return b.String(), nil
}
