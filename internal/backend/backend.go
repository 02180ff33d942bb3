// Package backend holds the back-end-neutral definitions shared by every
// back-end translator: deterministic naming, the kernel-C type table,
// user-function accessor substitution, and the wrapper-source templates.
// Deliberately structured around a dispatch-table key instead of a
// per-back-end/per-type class tree (internal/backend/dispatch.go); the
// internal/backend/renderscript and internal/backend/cppruntime packages
// supply the emission functions the table points at.
package backend

import (
	"fmt"
	"regexp"
)

// Target names one of the two supported back-ends.
type Target int

const (
	RenderScript Target = iota
	CPPRuntime
)

// Suffix returns the wrapper-implementation class-name suffix for t
// (`<Class>WrapperRS`, `<Class>WrapperPM`).
func (t Target) Suffix() string {
	switch t {
	case RenderScript:
		return "RS"
	case CPPRuntime:
		return "PM"
	default:
		return "?"
	}
}

func (t Target) String() string {
	switch t {
	case RenderScript:
		return "renderscript"
	case CPPRuntime:
		return "cppruntime"
	default:
		return "unknown"
	}
}

// KernelFuncName returns the deterministic name of the n-th generated
// kernel function, 1-based.
func KernelFuncName(n int) string { return fmt.Sprintf("function%d", n) }

// WrapperInterfaceName returns the neutral wrapper interface name for a
// DSL-using class.
func WrapperInterfaceName(class string) string { return class + "Wrapper" }

// WrapperImplName returns the per-back-end wrapper implementation class
// name.
func WrapperImplName(class string, t Target) string { return class + "Wrapper" + t.Suffix() }

// Direction distinguishes an input helper from an output helper.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) suffix() string {
	if d == In {
		return "In"
	}
	return "Out"
}

// HelperName returns the deterministic `$`-prefixed input/output helper
// name for bindName.
func HelperName(bindName string, d Direction) string {
	return "$" + bindName + d.suffix()
}

// primitiveCTypes maps the host language's primitive and boxed-primitive
// spellings to the kernel C dialect's type names. Collection class names
// (BitmapImage, HDRImage, Array<T>) are mapped separately by
// internal/catalog.Catalog.CType, which covers the element/box types this
// table doesn't (Pixel is a struct-like float4, not a scalar).
var primitiveCTypes = map[string]string{
	"float":   "float",
	"int":     "int",
	"short":   "short",
	"boolean": "bool",
	"char":    "char",
	"Float32": "float",
	"Int32":   "int",
	"Int16":   "short",
}

// CType returns the kernel C dialect spelling of a host primitive type
// name, or javaType unchanged if it isn't in the table.
func CType(javaType string) string {
	if t, ok := primitiveCTypes[javaType]; ok {
		return t
	}
	return javaType
}

var rgbaComponents = []struct {
	name string
	lane string
}{
	{"red", "s0"},
	{"green", "s1"},
	{"blue", "s2"},
	{"alpha", "s3"},
}

// SubstituteAccessors rewrites a user function's body text to replace the
// user-library accessor syntax with its kernel-C
// equivalent, still addressed off the original per-element parameter name
// (back-end translators separately rename that identifier to their
// kernel-local in/out placeholder — see renderscript/cppruntime). It must
// leave no `.rgba.` substring behind.
func SubstituteAccessors(code, paramName string) string {
	out := code
	for _, c := range rgbaComponents {
		pattern := regexp.MustCompile(regexp.QuoteMeta(paramName) + `\.rgba\.` + c.name + `\b`)
		out = pattern.ReplaceAllString(out, paramName+"."+c.lane)
	}
	out = regexp.MustCompile(regexp.QuoteMeta(paramName) + `\.x\b`).ReplaceAllString(out, "x")
	out = regexp.MustCompile(regexp.QuoteMeta(paramName) + `\.y\b`).ReplaceAllString(out, "y")
	out = regexp.MustCompile(regexp.QuoteMeta(paramName) + `\.value\b`).ReplaceAllString(out, paramName)
	return out
}

// Kernel-local parameter names both back-ends use for the sole element a
// Foreach/Map/Filter kernel receives and (for Map) produces, shared rather
// than invented per back-end.
const (
	KernelInParam  = "PM_in"
	KernelOutParam = "PM_out"
)

// RenameReceiver swaps every standalone occurrence of from for to in code;
// used by back-end translators to replace the user function's declared
// parameter name with the kernel's in/out placeholder once accessor
// substitution has already run.
func RenameReceiver(code, from, to string) string {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(from) + `\b`).ReplaceAllString(code, to)
}
