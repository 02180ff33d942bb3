package renderscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/backend"
	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
)

func TestForeachOnPixelAllFinalCaptures(t *testing.T) {
	// S1: foreach body `{ pixel.rgba.red = pixel.rgba.red * k; }`, k final.
	op := &ir.Operation{
		OpKind:    ir.Foreach,
		Execution: ir.Parallel,
		UserFunc: ir.UserFunction{
			Code:             "pixel.rgba.red = pixel.rgba.red * k;",
			VariableArgument: ir.NewVariable(nil, 1, "pixel", "Pixel", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	translated := backend.SubstituteAccessors(op.UserFunc.Code, "pixel")
	translated, err := hostparse.DefaultExprTranslator(translated)
	require.NoError(t, err)

	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Foreach})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{
		Op:           op,
		FuncName:     backend.KernelFuncName(1),
		ElementCType: "float4",
		TranslatedFn: translated,
	})
	require.NoError(t, err)
	assert.Contains(t, src, "PM_in.s0 = PM_in.s0 * k;")
	assert.Contains(t, src, "return PM_in;")
	assert.NotContains(t, src, ".rgba.")
}

func TestReduceOnArrayInt32(t *testing.T) {
	// S3: reduce body `return acc + next;`, Parallel.
	op := &ir.Operation{
		OpKind:    ir.Reduce,
		Execution: ir.Parallel,
		UserFunc: ir.UserFunction{
			Code:             "return acc + next;",
			VariableArgument: ir.NewVariable(nil, 1, "acc", "Int32", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Reduce})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{Op: op, FuncName: backend.KernelFuncName(2), ElementCType: "int", TranslatedFn: op.UserFunc.Code})
	require.NoError(t, err)
	assert.Contains(t, src, "function2_tile")
	assert.Contains(t, src, "function2_final")
	assert.Contains(t, src, "return acc + next;")
}

func TestFilterOnArrayFloat32(t *testing.T) {
	// S4: predicate `return x > 0.5f;`.
	op := &ir.Operation{
		OpKind:    ir.Filter,
		Execution: ir.Parallel,
		UserFunc: ir.UserFunction{
			Code:             "return x > 0.5f;",
			VariableArgument: ir.NewVariable(nil, 1, "x", "Float32", nil, ir.ModifierNone, ir.TokenAddress{}),
		},
	}
	translated := backend.RenameReceiver(op.UserFunc.Code, "x", backend.KernelInParam)
	emit, ok := Dispatch.Lookup(backend.OperationKey{Target: backend.RenderScript, Kind: ir.Filter})
	require.True(t, ok)

	src, err := emit(backend.EmitRequest{Op: op, FuncName: backend.KernelFuncName(3), ElementCType: "float", TranslatedFn: op.UserFunc.Code})
	require.NoError(t, err)
	assert.Contains(t, src, "function3_predicate")
	assert.Contains(t, src, "function3_compact")
	_ = translated
}

func TestTranslateMethodCallWidthHeight(t *testing.T) {
	// S5
	expr, err := TranslateMethodCall("width")
	require.NoError(t, err)
	assert.Equal(t, "rsAllocationGetDimX(alloc)", expr)

	expr, err = TranslateMethodCall("height")
	require.NoError(t, err)
	assert.Equal(t, "rsAllocationGetDimY(alloc)", expr)
}

func TestTranslateMethodCallUnsupported(t *testing.T) {
	// S6
	_, err := TranslateMethodCall("rotate")
	assert.Error(t, err)
}
