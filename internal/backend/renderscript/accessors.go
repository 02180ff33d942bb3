package renderscript

import "github.com/oxhq/kernelforge/internal/kerrors"

// renderscriptAccessors maps the DSL's host-callable size accessors to the
// RenderScript allocation API: no kernel is emitted for these, the wrapper
// implementation returns the value directly.
var renderscriptAccessors = map[string]string{
	"width":  "rsAllocationGetDimX(alloc)",
	"height": "rsAllocationGetDimY(alloc)",
	"length": "rsAllocationGetDimX(alloc)",
}

// TranslateMethodCall maps a recognized DSL accessor method name to the
// RenderScript-specific expression that computes it. It returns
// kerrors.ErrUnsupportedMethod for any method this back-end has no
// accessor for.
func TranslateMethodCall(methodName string) (string, error) {
	expr, ok := renderscriptAccessors[methodName]
	if !ok {
		return "", kerrors.ErrUnsupportedMethod
	}
	return expr, nil
}
