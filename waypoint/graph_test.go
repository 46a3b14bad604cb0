package waypoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphConnect(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Point{0, 0})
	b := g.AddNode(Point{3, 4})
	c := g.AddNode(Point{10, 0})

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 2, c)

	g.Connect(a, b, 5)

	assert.True(t, g.Connected(a, b))
	assert.True(t, g.Connected(b, a))
	assert.False(t, g.Connected(a, c))

	cost, ok := g.Cost(b, a)
	assert.True(t, ok)
	assert.Equal(t, 5.0, cost)

	_, ok = g.Cost(a, c)
	assert.False(t, ok)
}

func TestGraphDisconnect(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Point{0, 0})
	b := g.AddNode(Point{1, 1})
	g.Connect(a, b, 1)

	assert.True(t, g.Disconnect(a, b))
	assert.False(t, g.Connected(a, b))
	assert.False(t, g.Connected(b, a))

	// A second disconnect finds nothing to remove.
	assert.False(t, g.Disconnect(a, b))
}

func TestGraphDuplicateCoordinates(t *testing.T) {
	// Identity is the node index, not the coordinates, so equal points
	// stay distinct nodes.
	g := NewGraph()
	a := g.AddNode(Point{2, 2})
	b := g.AddNode(Point{2, 2})

	assert.NotEqual(t, a, b)

	g.Connect(a, b, 0)
	assert.True(t, g.Connected(a, b))
}
