package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopFactory(decl Declared) (Marker[int, int], error) {
	return MarkerOf[int, int](0), nil
}

func TestRegistry_Define(t *testing.T) {
	r := NewRegistry[int, int]()

	require.NoError(t, r.Define("acme.Base", RootType))
	require.NoError(t, r.Define("acme.Base", RootType), "same base is a no-op")
	assert.Error(t, r.Define("acme.Base", "other.Type"))
	assert.Error(t, r.Define("", RootType))
	assert.Error(t, r.Define(RootType, "x"))
	assert.Error(t, r.Define("acme.Orphan", ""))

	base, ok := r.Base("acme.Base")
	assert.True(t, ok)
	assert.Equal(t, RootType, base)
}

func TestRegistry_IsMarker(t *testing.T) {
	r := NewRegistry[int, int]()
	require.NoError(t, r.Define("a", RootType))
	require.NoError(t, r.Define("b", "a"))
	require.NoError(t, r.Define("c", "b"))
	require.NoError(t, r.Define("lookalike", "other.Editor"))
	require.NoError(t, r.Define("other.Editor", "other.Root"))
	require.NoError(t, r.Define("loop1", "loop2"))
	require.NoError(t, r.Define("loop2", "loop1"))

	assert.True(t, r.IsMarker("a"))
	assert.True(t, r.IsMarker("c"))
	assert.False(t, r.IsMarker("lookalike"))
	assert.False(t, r.IsMarker("loop1"))
	assert.False(t, r.IsMarker("unknown"))
	assert.False(t, r.IsMarker(RootType), "the root itself is abstract")

	assert.Equal(t, []string{"a", "b", "c"}, r.Types())
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry[int, int]()
	require.NoError(t, r.Register("a", RootType, noopFactory))
	assert.Error(t, r.Register("a", RootType, noopFactory), "duplicate factory")
	assert.Error(t, r.Register("b", RootType, nil))
}

func TestRegistry_FactoryInheritedFromAncestor(t *testing.T) {
	r := NewRegistry[int, int]()
	called := ""
	require.NoError(t, r.Register("base", RootType, func(decl Declared) (Marker[int, int], error) {
		called = decl.Type
		return MarkerOf[int, int](0), nil
	}))
	require.NoError(t, r.Define("derived", "base"))
	require.NoError(t, r.Define("abstract", RootType))

	f, ok := r.FactoryFor("derived")
	require.True(t, ok)
	_, err := f(Declared{Type: "derived"})
	require.NoError(t, err)
	assert.Equal(t, "derived", called)

	_, ok = r.FactoryFor("abstract")
	assert.False(t, ok, "marker type without any factory")

	_, ok = r.FactoryFor("unknown")
	assert.False(t, ok)
}

func TestDeclared_Order(t *testing.T) {
	n, err := Declared{}.Order()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = Declared{Args: map[string]string{OrderArg: "-3"}}.Order()
	require.NoError(t, err)
	assert.Equal(t, -3, n)

	_, err = Declared{Args: map[string]string{OrderArg: "first"}}.Order()
	assert.Error(t, err)

	d := Declared{Args: map[string]string{"k": "v"}}
	assert.Equal(t, "v", d.Arg("k"))
	assert.Equal(t, "def", d.ArgOr("missing", "def"))
}
