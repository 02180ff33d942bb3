package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/kerrors"
)

func TestScopeDeclareAndLookup(t *testing.T) {
	root := NewRoot()
	class := NewClass(root, "Blur", 1, TokenAddress{Start: 0, Stop: 100, Line: 1, Col: 1})
	require.NoError(t, root.Declare(class))

	v1 := NewVariable(class, 1, "k", "float", nil, ModifierFinal, TokenAddress{Start: 10, Stop: 20})
	require.NoError(t, class.Declare(v1))

	found := class.LookupInScope("k", KindVariable)
	require.Len(t, found, 1)
	assert.Same(t, v1, found[0])

	// A second declaration of the same name but different identifier
	// coexists (e.g. shadowing in a nested block would use a different id).
	v2 := NewVariable(class, 2, "k", "int", nil, ModifierNone, TokenAddress{})
	require.NoError(t, class.Declare(v2))
	assert.Len(t, class.LookupInScope("k", KindVariable), 2)

	// Declaring the same kind+identifier twice is a DuplicateInScope fault.
	dup := NewVariable(class, 1, "k", "float", nil, ModifierFinal, TokenAddress{})
	err := class.Declare(dup)
	assert.ErrorIs(t, err, kerrors.ErrDuplicateInScope)
}

func TestLookupUpwardFindsNearestBinding(t *testing.T) {
	root := NewRoot()
	class := NewClass(root, "Blur", 1, TokenAddress{})
	require.NoError(t, root.Declare(class))
	method := NewMethod(class, "apply", 1, "void apply()")
	require.NoError(t, class.Declare(method))

	outer := NewVariable(class, 1, "radius", "int", nil, ModifierFinal, TokenAddress{})
	require.NoError(t, class.Declare(outer))

	inner := NewVariable(method, 1, "radius", "int", nil, ModifierNone, TokenAddress{})
	require.NoError(t, method.Declare(inner))

	assert.Same(t, inner, method.LookupUpward("radius", KindVariable))

	other := NewVariable(method, 2, "scale", "float", nil, ModifierFinal, TokenAddress{})
	require.NoError(t, method.Declare(other))
	assert.Same(t, other, method.LookupUpward("scale", KindVariable))
	assert.Same(t, outer, class.LookupUpward("radius", KindVariable))
}

func TestCollectRecursivePreOrder(t *testing.T) {
	root := NewRoot()
	a := NewClass(root, "A", 1, TokenAddress{})
	b := NewClass(root, "B", 2, TokenAddress{})
	require.NoError(t, root.Declare(a))
	require.NoError(t, root.Declare(b))

	ma := NewMethod(a, "m", 1, "")
	require.NoError(t, a.Declare(ma))
	va := NewVariable(ma, 1, "x", "int", nil, ModifierNone, TokenAddress{})
	require.NoError(t, ma.Declare(va))
	vb := NewVariable(b, 1, "y", "int", nil, ModifierNone, TokenAddress{})
	require.NoError(t, b.Declare(vb))

	vars := root.Collect(KindVariable, true)
	require.Len(t, vars, 2)
	assert.Same(t, va, vars[0])
	assert.Same(t, vb, vars[1])
}

func TestTokenAddressContainsAndOverlaps(t *testing.T) {
	outer := TokenAddress{Start: 0, Stop: 100}
	inner := TokenAddress{Start: 10, Stop: 20}
	assert.True(t, outer.Contains(inner))
	assert.False(t, outer.Overlaps(inner))

	partial := TokenAddress{Start: 90, Stop: 110}
	assert.False(t, outer.Contains(partial))
	assert.True(t, outer.Overlaps(partial))
}
