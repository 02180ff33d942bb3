// Package catalog implements the user-library catalog: the
// process-wide mapping from DSL class name to its method signatures, type
// traits, and back-end accessors.
//
// Deliberately designed away from a mutually-mutable global singleton:
// here it is built once by Default() and threaded explicitly through the
// pipeline (collector, extractor, backend) as an immutable value, never
// mutated after construction.
package catalog

import "github.com/oxhq/kernelforge/internal/ir"

// MethodInfo describes one recognized method on a DSL class.
type MethodInfo struct {
	// OpKind is set when the method is a parallelizable higher-order
	// operation (foreach/map/reduce/filter); Operation is false otherwise.
	OpKind    ir.OperationKind
	Operation bool
	// OutputBind marks the "to-host" materialization method. Input binds
	// have no entry here: they come from `new <Collection>(...)` creations,
	// not from method calls.
	OutputBind bool
}

// ClassInfo describes one recognized DSL class.
type ClassInfo struct {
	Name      string
	Typed     bool // set on the collection classes (BitmapImage, HDRImage, Array); IsCollection reads it
	CType     string
	Methods   map[string]MethodInfo
	Accessors []string // back-end-callable accessors: width, height, value, ...
}

// Catalog is the immutable, process-wide registry of recognized DSL
// classes. The zero value is empty; use Default() for the built-in set.
type Catalog struct {
	classes map[string]ClassInfo
}

// New builds a Catalog from an explicit class list, for tests or for a
// future --catalog override file.
func New(classes []ClassInfo) *Catalog {
	c := &Catalog{classes: make(map[string]ClassInfo, len(classes))}
	for _, cls := range classes {
		c.classes[cls.Name] = cls
	}
	return c
}

// Recognizes reports whether typeName names a DSL class.
func (c *Catalog) Recognizes(typeName string) bool {
	_, ok := c.classes[typeName]
	return ok
}

// IsCollection reports whether typeName is a DSL collection class (as
// opposed to an element type like Pixel or a numeric box).
func (c *Catalog) IsCollection(typeName string) bool {
	info, ok := c.classes[typeName]
	return ok && info.Typed
}

// ValidMethod reports whether methodName is a recognized method of
// typeName, and if so, which operation kind it represents (if any).
func (c *Catalog) ValidMethod(typeName, methodName string) (MethodInfo, bool) {
	info, ok := c.classes[typeName]
	if !ok {
		return MethodInfo{}, false
	}
	m, ok := info.Methods[methodName]
	return m, ok
}

// CType returns the kernel-C-dialect type name substituted for typeName,
// or typeName unchanged when it is not in the catalog (unknown type names
// pass through untouched).
func (c *Catalog) CType(typeName string) string {
	if info, ok := c.classes[typeName]; ok && info.CType != "" {
		return info.CType
	}
	return typeName
}

// Class returns the full ClassInfo for typeName.
func (c *Catalog) Class(typeName string) (ClassInfo, bool) {
	info, ok := c.classes[typeName]
	return info, ok
}

// Accessors returns the back-end-callable accessors for typeName.
func (c *Catalog) Accessors(typeName string) []string {
	return c.classes[typeName].Accessors
}

// WithExtraAccessors returns a new Catalog equal to c but with extra
// appended to className's recognized accessor list, for the --catalog
// environment-file override a deployment uses to recognize an extra
// getter method on one of the built-in collection classes without
// rebuilding kernelforge. className must already be recognized; an
// unrecognized className or an empty extra list leaves c unchanged.
func (c *Catalog) WithExtraAccessors(className string, extra []string) *Catalog {
	info, ok := c.classes[className]
	if !ok || len(extra) == 0 {
		return c
	}
	info.Accessors = append(append([]string{}, info.Accessors...), extra...)

	next := &Catalog{classes: make(map[string]ClassInfo, len(c.classes))}
	for k, v := range c.classes {
		next.classes[k] = v
	}
	next.classes[className] = info
	return next
}
