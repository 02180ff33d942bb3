// Package kerrors defines the sentinel error taxonomy shared by every
// compilation phase, from the first pass through artifact emission.
package kerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking with errors.Is.
var (
	// ErrUnsupportedMethod: a recognized DSL method has no translator for
	// the selected back-end.
	ErrUnsupportedMethod = errors.New("unsupported method for back-end")
	// ErrUnsupportedArgumentShape: a bind argument is neither literal,
	// variable, nor opaque expression.
	ErrUnsupportedArgumentShape = errors.New("unsupported bind argument shape")
	// ErrInvalidOperation: an operation kind outside the four known kinds
	// reached a translator. Indicates an internal invariant break.
	ErrInvalidOperation = errors.New("invalid operation kind")
	// ErrDuplicateInScope: the symbol-table invariant was violated during
	// the first pass.
	ErrDuplicateInScope = errors.New("duplicate symbol in scope")
	// ErrGenerationIO: a file-system error occurred while emitting
	// generated artifacts.
	ErrGenerationIO = errors.New("generated-artifact I/O failure")
	// ErrUnresolvedVariable: the second pass found a DSL construction
	// against a name the first pass never declared as a Variable.
	ErrUnresolvedVariable = errors.New("unresolved variable")
)

// AtLine annotates err with a 1-based source line, for phases that know the
// offending line but not yet the file (the orchestrator adds File when it
// wraps the result in a CompilationError).
func AtLine(err error, line int) error {
	return fmt.Errorf("line %d: %w", line, err)
}

// Kind names one taxonomy entry for structured diagnostics.
type Kind string

const (
	KindUnsupportedMethod       Kind = "UnsupportedMethod"
	KindUnsupportedArgShape     Kind = "UnsupportedArgumentShape"
	KindInvalidOperation        Kind = "InvalidOperation"
	KindDuplicateInScope        Kind = "DuplicateInScope"
	KindGenerationIO            Kind = "GenerationIO"
	KindNonFinalCapture         Kind = "NonFinalCapture" // warning, not fatal
)

// CompilationError is the structured, user-visible error surfaced by the
// orchestrator: it names the offending file, line, and taxonomy kind, and
// wraps the underlying sentinel so callers can still use errors.Is/As.
type CompilationError struct {
	File string
	Line int
	Kind Kind
	Err  error
}

func (e *CompilationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Kind, e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// New builds a CompilationError against a sentinel, naming the file/line
// where the fault was observed.
func New(kind Kind, file string, line int, sentinel error, detail string) *CompilationError {
	err := sentinel
	if detail != "" {
		err = fmt.Errorf("%w: %s", sentinel, detail)
	}
	return &CompilationError{File: file, Line: line, Kind: kind, Err: err}
}

// Diagnostic is a non-fatal warning, currently only emitted by the
// classifier when an external variable forces sequential execution.
type Diagnostic struct {
	File    string
	Line    int
	Kind    Kind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: warning: %s", d.File, d.Line, d.Message)
}

// NonFinalCapture builds the standard diagnostic for a non-final external
// variable that downgrades an operation to sequential execution.
func NonFinalCapture(file string, line int, varName string) Diagnostic {
	return Diagnostic{
		File: file,
		Line: line,
		Kind: KindNonFinalCapture,
		Message: fmt.Sprintf(
			"capture of non-final variable %q will be translated to a sequential operation",
			varName,
		),
	}
}
