package cppruntime

import "github.com/oxhq/kernelforge/internal/kerrors"

// cppruntimeAccessors maps the DSL's host-callable size accessors to the
// C++ runtime's plain struct fields: no kernel is emitted for these, the
// wrapper implementation returns the value directly.
var cppruntimeAccessors = map[string]string{
	"width":  "width_",
	"height": "height_",
	"length": "count_",
}

// TranslateMethodCall maps a recognized DSL accessor method name to the
// C++ runtime's expression that computes it, or reports
// kerrors.ErrUnsupportedMethod when this back-end has no accessor for it.
func TranslateMethodCall(methodName string) (string, error) {
	expr, ok := cppruntimeAccessors[methodName]
	if !ok {
		return "", kerrors.ErrUnsupportedMethod
	}
	return expr, nil
}
