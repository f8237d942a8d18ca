package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerManagerAddGetRemove(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)

	p := m.Add("default")
	require.Equal(t, 1, m.Count())
	n, err := p.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = p.Append(Binding{Behavior: "&kp", Params: []Param{{Value: "Q"}}})
	require.NoError(t, err)
	n, err = p.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m.Remove("default")
	assert.False(t, m.Has("default"))

	_, err = p.Size()
	assert.Error(t, err)
	var notFound *LayerNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLayerManagerAddDuplicatePanics(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	m.Add("default")
	assert.Panics(t, func() { m.Add("default") })
}

func TestLayerManagerMoveRenameCopy(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	m.Add("a")
	m.Add("b")
	m.Add("c")

	m.Move("c", 0)
	assert.Equal(t, []string{"c", "a", "b"}, m.Names())

	m.Rename("c", "z")
	assert.Equal(t, []string{"z", "a", "b"}, m.Names())

	cp := m.Copy("a", "a2")
	assert.True(t, m.Has("a2"))
	size, err := cp.Size()
	require.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestLayerManagerReorder(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	m.Add("a")
	m.Add("b")
	m.Add("c")

	m.Reorder([]string{"c", "b", "a"})
	assert.Equal(t, []string{"c", "b", "a"}, m.Names())

	assert.Panics(t, func() { m.Reorder([]string{"c", "b"}) })
	assert.Panics(t, func() { m.Reorder([]string{"c", "b", "b"}) })
}

func TestLayerManagerAddMultipleAllOrNothing(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	m.Add("default")

	assert.Panics(t, func() { m.AddMultiple([]string{"x", "default"}) })
	assert.Equal(t, 1, m.Count())

	m.AddMultiple([]string{"x", "y"})
	assert.Equal(t, 3, m.Count())
}

func TestLayerProxySetAutoExtends(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	p := m.Add("default")

	_, err := p.Set(2, Binding{Behavior: "&kp", Params: []Param{{Value: "E"}}})
	require.NoError(t, err)
	size, err := p.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)

	b0, err := p.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "&none", b0.Behavior)
}

func TestLayerProxyCopyFrom(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	src := m.Add("default")
	_, _ = src.Append(Binding{Behavior: "&kp", Params: []Param{{Value: "Q"}}})
	dst := m.Add("other")

	_, err := dst.CopyFrom("default")
	require.NoError(t, err)
	size, err := dst.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)
}

func TestLayerManagerFind(t *testing.T) {
	d := New("glove80", "test")
	m := NewLayerManager(d)
	m.Add("default")
	m.Add("fn")

	found := m.Find(func(name string, layer Layer) bool { return name == "fn" })
	assert.Equal(t, []string{"fn"}, found)
}
