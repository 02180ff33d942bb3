package hostparse

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleClass = `
class Blur {
  void apply() {
    BitmapImage img = new BitmapImage(bitmap);
  }
}
`

func findFirst(node *sitter.Node, typ string) *sitter.Node {
	var found *sitter.Node
	Walk(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Type() == typ {
			found = n
			return false
		}
		return true
	})
	return found
}

func TestParseProducesClassDeclaration(t *testing.T) {
	tree, err := Parse(context.Background(), []byte(sampleClass))
	require.NoError(t, err)
	defer tree.Close()

	classNode := findFirst(tree.Root(), "class_declaration")
	require.NotNil(t, classNode)

	addr := Address(classNode)
	assert.GreaterOrEqual(t, addr.Start, 0)
	assert.Equal(t, sampleClass[addr.Start:addr.Stop], tree.Text(classNode))

	creatorNode := findFirst(tree.Root(), "object_creation_expression")
	require.NotNil(t, creatorNode)
	enclosingMethod := EnclosingOfType(creatorNode, "method_declaration")
	require.NotNil(t, enclosingMethod)
}

func TestDefaultExprTranslatorPassesThroughArithmetic(t *testing.T) {
	out, err := DefaultExprTranslator("pixel.rgba.red = pixel.rgba.red * k;")
	require.NoError(t, err)
	assert.Equal(t, "pixel.rgba.red = pixel.rgba.red * k;", out)
}
