package backend

import "github.com/oxhq/kernelforge/internal/ir"

// OperationKey indexes the emitter dispatch table by back-end target and
// operation kind, in place of a translator class hierarchy. A third axis
// for DSL element type was considered and folded into ElementCType on
// EmitRequest instead of the key itself,
// because the four operation kinds' kernel shapes (Foreach in-place,
// Map to-new-allocation, Reduce tile+final, Filter tile+compaction) do not
// otherwise vary across BitmapImage/HDRImage/Array — only the element type
// and, for bitmaps, the uchar4<->float3 conversion do, and those are data,
// not control flow.
type OperationKey struct {
	Target Target
	Kind   ir.OperationKind
}

// EmitRequest carries everything an Emitter needs to produce one
// operation's kernel source, already reduced to back-end-neutral pieces by
// the caller (internal/backend/renderscript, internal/backend/cppruntime):
// the operation's IR, its deterministic kernel function name, and the
// element C type the collection holds.
type EmitRequest struct {
	Op            *ir.Operation
	FuncName      string
	ElementCType  string
	TranslatedFn  string // the user function body, already run through translate_c and SubstituteAccessors
}

// Emitter produces one operation's complete kernel source (driver kernel
// plus the standalone user-function body).
type Emitter func(req EmitRequest) (string, error)

// Dispatch is the immutable emitter table built once per back-end package
// at init time via Register, then consulted read-only by the orchestrator.
type Dispatch struct {
	table map[OperationKey]Emitter
}

// NewDispatch returns an empty table ready for Register calls.
func NewDispatch() *Dispatch {
	return &Dispatch{table: make(map[OperationKey]Emitter)}
}

// Register adds or replaces the emitter for key.
func (d *Dispatch) Register(key OperationKey, fn Emitter) {
	d.table[key] = fn
}

// Lookup returns the emitter for key, or false if no back-end translator
// handles that operation kind (the caller surfaces kerrors.ErrUnsupportedMethod).
func (d *Dispatch) Lookup(key OperationKey) (Emitter, bool) {
	fn, ok := d.table[key]
	return fn, ok
}
