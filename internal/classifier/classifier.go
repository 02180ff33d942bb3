// Package classifier implements the irrevocable decision of whether an
// Operation runs in parallel or falls back to a sequential
// lowering, made purely from the modifiers of the variables its user
// function captures.
package classifier

import (
	"github.com/oxhq/kernelforge/internal/ir"
	"github.com/oxhq/kernelforge/internal/kerrors"
)

// Classify sets Execution on every operation in binds and returns one
// NonFinalCapture diagnostic per non-final captured variable found. The
// decision rule is absolute: an operation is Parallel only when every
// variable its user function captures is declared final; a single non-final
// capture downgrades it to Sequential, and nothing later reconsiders that
// choice.
func Classify(file string, binds *ir.OperationsAndBinds) []kerrors.Diagnostic {
	var diagnostics []kerrors.Diagnostic
	for i := range binds.Operations {
		op := &binds.Operations[i]
		op.Execution = ir.Parallel
		for _, v := range op.ExternalVariables {
			if v.Modifier != ir.ModifierFinal {
				op.Execution = ir.Sequential
				diagnostics = append(diagnostics, kerrors.NonFinalCapture(file, op.StatementRange.Line, v.Name))
			}
		}
	}
	return diagnostics
}
