package catalog

import "github.com/oxhq/kernelforge/internal/ir"

// Default returns the built-in catalog of recognized DSL collection
// classes: the two image collection types, the generic array, and the
// element/box types they operate over.
func Default() *Catalog {
	op := func(kind ir.OperationKind) MethodInfo { return MethodInfo{OpKind: kind, Operation: true} }

	collectionMethods := func() map[string]MethodInfo {
		return map[string]MethodInfo{
			"foreach": op(ir.Foreach),
			"map":     op(ir.Map),
			"reduce":  op(ir.Reduce),
			"filter":  op(ir.Filter),
			"width":   {},
			"height":  {},
			"toHost":  {OutputBind: true},
			"toArray": {OutputBind: true},
		}
	}

	return New([]ClassInfo{
		{
			Name:      "BitmapImage",
			Typed:     true,
			CType:     "float3",
			Methods:   collectionMethods(),
			Accessors: []string{"width", "height"},
		},
		{
			Name:      "HDRImage",
			Typed:     true,
			CType:     "float4",
			Methods:   collectionMethods(),
			Accessors: []string{"width", "height"},
		},
		{
			Name:      "Array",
			Typed:     true,
			CType:     "", // element type is supplied by the type parameter
			Methods:   collectionMethods(),
			Accessors: []string{"length"},
		},
		{
			Name:      "Pixel",
			Typed:     false,
			CType:     "float4",
			Methods:   map[string]MethodInfo{},
			Accessors: []string{"x", "y", "rgba"},
		},
		{Name: "Int16", Typed: false, CType: "short", Methods: map[string]MethodInfo{}, Accessors: []string{"value"}},
		{Name: "Int32", Typed: false, CType: "int", Methods: map[string]MethodInfo{}, Accessors: []string{"value"}},
		{Name: "Float32", Typed: false, CType: "float", Methods: map[string]MethodInfo{}, Accessors: []string{"value"}},
		{Name: "RGB", Typed: false, CType: "float3", Methods: map[string]MethodInfo{}, Accessors: []string{"red", "green", "blue"}},
	})
}
