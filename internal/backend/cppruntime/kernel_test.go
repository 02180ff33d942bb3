package cppruntime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/ir"
)

func TestForeachSequentialLoweringPassesNonFinalByReference(t *testing.T) {
	// S2: same as S1 but k is non-final -> Sequential.
	op := &ir.Operation{
		OpKind:    ir.Foreach,
		Execution: ir.Sequential,
		UserFunc: ir.UserFunction{
			Code:             "pixel.s0 = pixel.s0 * k[0];",
			VariableArgument: ir.NewVariable(nil, 1, "pixel", "Pixel", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Foreach})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{Op: op, FuncName: backend.KernelFuncName(1), ElementCType: "float4", TranslatedFn: op.UserFunc.Code})
	require.NoError(t, err)
	assert.Contains(t, src, "for (int i = 0; i < count; i++)")
	assert.NotContains(t, src, "parallel_for")
	assert.Contains(t, src, "PM_in.s0 = PM_in.s0 * k[0];")
}

func TestForeachParallelUsesParallelFor(t *testing.T) {
	op := &ir.Operation{
		OpKind:    ir.Foreach,
		Execution: ir.Parallel,
		UserFunc: ir.UserFunction{
			Code:             "pixel.s0 = pixel.s0 * k;",
			VariableArgument: ir.NewVariable(nil, 1, "pixel", "Pixel", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Foreach})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{Op: op, FuncName: backend.KernelFuncName(1), ElementCType: "float4", TranslatedFn: op.UserFunc.Code})
	require.NoError(t, err)
	assert.Contains(t, src, "parallel_for(0, count")
}

func TestMapWritesToSeparateAllocation(t *testing.T) {
	op := &ir.Operation{
		OpKind:    ir.Map,
		Execution: ir.Parallel,
		UserFunc: ir.UserFunction{
			Code:             "return pixel;",
			VariableArgument: ir.NewVariable(nil, 1, "pixel", "Pixel", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.CPPRuntime, Kind: ir.Map})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{Op: op, FuncName: backend.KernelFuncName(4), ElementCType: "float4", TranslatedFn: op.UserFunc.Code})
	require.NoError(t, err)
	assert.Contains(t, src, "const float4 *in, float4 *out")
	assert.Contains(t, src, "out[i] = PM_out;")
}

func TestTranslateMethodCallUnsupported(t *testing.T) {
	// S6
	_, err := TranslateMethodCall("crop")
	assert.Error(t, err)
}

func TestInputBindConstructionConvertsBitmapColor(t *testing.T) {
	src := InputBindConstruction("$imgIn", "float4", true)
	assert.Contains(t, src, "/ 255.0f")
}

func TestOutputBindCopyOutFixesAlpha(t *testing.T) {
	src := OutputBindCopyOut("$imgOut", "float4", true)
	assert.Contains(t, src, "dst[i*4+3] = 255;")
}
