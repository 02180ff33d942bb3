package rewriter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/ir"
)

func addr(start, stop int) ir.TokenAddress { return ir.TokenAddress{Start: start, Stop: stop} }

func TestApplyReplaceAndDelete(t *testing.T) {
	src := []byte("BitmapImage img = new BitmapImage(bitmap); img.foreach(x);")
	r := New()
	r.Delete(addr(0, len("BitmapImage img = new BitmapImage(bitmap); ")))
	r.Replace(addr(len("BitmapImage img = new BitmapImage(bitmap); "), len(src)), "wrapper.op(x);")

	out, err := r.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, "wrapper.op(x);", string(out))
}

func TestApplyInsertBeforeAndAfterPreserveUntouchedBytes(t *testing.T) {
	src := []byte("class C {}")
	r := New()
	r.InsertBefore(addr(0, 0), "import x;\n")
	r.InsertAfter(addr(len(src), len(src)), "\n// trailer")

	out, err := r.Apply(src)
	require.NoError(t, err)
	assert.Equal(t, "import x;\nclass C {}\n// trailer", string(out))
}

func TestApplyNoEditsLeavesSourceByteIdentical(t *testing.T) {
	src := []byte("class Plain { int x; }")
	out, err := New().Apply(src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestOverlapsRejectsPartialIntersection(t *testing.T) {
	r := New()
	r.Replace(addr(0, 10), "a")
	r.Replace(addr(5, 15), "b")
	_, err := r.Apply([]byte("0123456789abcdef"))
	assert.Error(t, err)
}

func TestOverlapsAllowsStrictContainment(t *testing.T) {
	// A containing Delete subsumes an edit recorded at a point strictly
	// inside it: both are accepted, and the contained edit's text never
	// makes it into the output since the deletion wins.
	r := New()
	r.Delete(addr(0, 20))
	r.InsertBefore(addr(5, 5), "x")
	out, err := r.Apply([]byte("01234567890123456789"))
	require.NoError(t, err)
	assert.Equal(t, "", string(out))
}

func TestSameOffsetInsertsApplyInRecordedOrder(t *testing.T) {
	r := New()
	r.InsertBefore(addr(0, 0), "A")
	r.InsertBefore(addr(0, 0), "B")

	out, err := r.Apply([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "ABx", string(out))
}
