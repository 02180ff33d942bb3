package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/ir"
)

func variable(name string, mod ir.Modifier) *ir.Variable {
	return ir.NewVariable(nil, 1, name, "Float32", nil, mod, ir.TokenAddress{})
}

func TestClassifyAllFinalIsParallel(t *testing.T) {
	binds := &ir.OperationsAndBinds{
		Operations: []ir.Operation{
			{ExternalVariables: []*ir.Variable{variable("k", ir.ModifierFinal), variable("bias", ir.ModifierFinal)}},
		},
	}
	diagnostics := Classify("blur.kf", binds)
	assert.Empty(t, diagnostics)
	assert.Equal(t, ir.Parallel, binds.Operations[0].Execution)
}

func TestClassifySingleNonFinalForcesSequential(t *testing.T) {
	binds := &ir.OperationsAndBinds{
		Operations: []ir.Operation{
			{
				StatementRange:    ir.TokenAddress{Line: 12},
				ExternalVariables: []*ir.Variable{variable("k", ir.ModifierFinal), variable("counter", ir.ModifierNone)},
			},
		},
	}
	diagnostics := Classify("blur.kf", binds)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "blur.kf", diagnostics[0].File)
	assert.Equal(t, 12, diagnostics[0].Line)
	assert.Contains(t, diagnostics[0].Message, "counter")
	assert.Equal(t, ir.Sequential, binds.Operations[0].Execution)
}

func TestClassifyNoExternalVariablesIsParallel(t *testing.T) {
	binds := &ir.OperationsAndBinds{Operations: []ir.Operation{{}}}
	diagnostics := Classify("blur.kf", binds)
	assert.Empty(t, diagnostics)
	assert.Equal(t, ir.Parallel, binds.Operations[0].Execution)
}
