package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseClass(t *testing.T) {
	t.Parallel()

	p := NewParser()
	file, err := p.ParseSource("/project/src/a.ts", "// leading comment\nexport class A {\n  x: number = 1;\n}\n")
	require.NoError(t, err)
	require.NotNil(t, file.Root)

	assert.Equal(t, "program", file.Root.Kind)
	assert.False(t, file.TSX)

	var class *Node
	Walk(file.Root, func(n *Node) bool {
		if n.Kind == "class_declaration" {
			class = n
			return false
		}
		return true
	})
	require.NotNil(t, class, "class_declaration not found")
	assert.Equal(t, "A", class.ChildByField("name").Text())
	assert.Equal(t, 1, class.Start.Line)
	assert.Equal(t, "export_statement", class.Parent.Kind)

	for _, c := range file.Root.Children {
		assert.NotEqual(t, "comment", c.Kind)
	}
}

func TestParser_TSXGrammar(t *testing.T) {
	t.Parallel()

	p := NewParser()
	file, err := p.ParseSource("/project/src/view.tsx", "const v = <div>hi</div>;\n")
	require.NoError(t, err)
	assert.True(t, file.TSX)

	found := false
	Walk(file.Root, func(n *Node) bool {
		if n.Kind == "jsx_element" {
			found = true
		}
		return !found
	})
	assert.True(t, found, "jsx_element not parsed with tsx grammar")
}

func TestStringValue(t *testing.T) {
	t.Parallel()

	p := NewParser()
	file, err := p.ParseSource("/project/a.ts", "import x from './dep';\n")
	require.NoError(t, err)

	var src *Node
	Walk(file.Root, func(n *Node) bool {
		if n.Kind == "import_statement" {
			src = n.ChildByField("source")
			return false
		}
		return true
	})
	require.NotNil(t, src)
	assert.Equal(t, "./dep", StringValue(src))
}
