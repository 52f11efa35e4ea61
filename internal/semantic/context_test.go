package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/types"
)

func TestContext(t *testing.T) {
	t.Parallel()

	outer, inner := &ast.IdDecl{Name: "x"}, &ast.IdDecl{Name: "x"}

	root := NewContext()
	require.Nil(t, root.Parent())
	require.False(t, root.InLoop())
	require.Nil(t, root.ReturnType())
	require.True(t, root.Declare("x", outer))
	require.False(t, root.Declare("x", inner))

	block := root.Child()
	require.Same(t, root, block.Parent())
	_, ok := block.LookupLocal("x")
	require.False(t, ok)
	require.True(t, block.Declare("x", inner))
	found, ok := block.Lookup("x")
	require.True(t, ok)
	require.Same(t, inner, found)
	found, ok = root.Lookup("x")
	require.True(t, ok)
	require.Same(t, outer, found)

	_, ok = block.Lookup("missing")
	require.False(t, ok)
}

func TestContextFlags(t *testing.T) {
	t.Parallel()

	loop := NewContext().Loop()
	require.True(t, loop.InLoop())
	require.True(t, loop.Child().InLoop())

	fn := loop.Function(types.Num)
	require.False(t, fn.InLoop())
	require.Equal(t, types.Num, fn.ReturnType())

	nested := fn.Child().Loop()
	require.True(t, nested.InLoop())
	require.Equal(t, types.Num, nested.ReturnType())
	require.Equal(t, types.Void, nested.Function(types.Void).ReturnType())
}
