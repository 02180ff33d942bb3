package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/kernelforge/internal/hostparse"
	"github.com/oxhq/kernelforge/internal/ir"
)

const blurSource = `
class Blur {
  void apply(final float k) {
    BitmapImage img = new BitmapImage(bitmap);
    img.foreach(new Function() {
      void call(Pixel pixel) {
        pixel.rgba.red = pixel.rgba.red * k;
      }
    });
  }
}
`

func mustCollect(t *testing.T, src string) *ir.Scope {
	t.Helper()
	tree, err := hostparse.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	root, _, err := New().Collect(tree)
	require.NoError(t, err)
	return root
}

func TestCollectClassAndMethod(t *testing.T) {
	root := mustCollect(t, blurSource)

	classes := root.Collect(ir.KindClass, false)
	require.Len(t, classes, 1)
	class := classes[0].(*ir.Scope)
	assert.Equal(t, "Blur", class.Name)

	methods := class.Collect(ir.KindMethod, false)
	require.Len(t, methods, 1)
	method := methods[0].(*ir.Scope)
	assert.Equal(t, "apply", method.Name)
}

func TestCollectVariablesAndCreators(t *testing.T) {
	root := mustCollect(t, blurSource)
	vars := root.Collect(ir.KindVariable, true)

	var names []string
	for _, v := range vars {
		names = append(names, v.(*ir.Variable).Name)
	}
	assert.Contains(t, names, "k")
	assert.Contains(t, names, "img")

	creators := root.Collect(ir.KindCreator, true)
	require.GreaterOrEqual(t, len(creators), 1)
	assert.Equal(t, "BitmapImage", creators[0].(*ir.Creator).AttributedObjectName)
}
