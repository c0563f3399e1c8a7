package svg

import (
	"github.com/roach88/revelation/internal/event"
	"github.com/roach88/revelation/internal/ordered"
)

// Point is one recorded node position.
type Point struct {
	X float64
	Y float64
}

// Node is the folded state of one node.
//
// SelectedAt is the fold index of the latest node.select and is only
// meaningful when Selected is true.
type Node struct {
	ID         string
	X          float64
	Y          float64
	Selected   bool
	SelectedAt int
	History    []Point
}

// Edge is the folded state of one edge. The literal coordinates are used
// for any endpoint that does not resolve to a node at render time.
//
// RemovedAt is the fold index of the latest edge.remove and is only
// meaningful when Removed is true.
type Edge struct {
	ID        string
	From      string
	To        string
	X1        float64
	Y1        float64
	X2        float64
	Y2        float64
	Removed   bool
	RemovedAt int
}

// Scene is the cumulative node and edge state of a log.
type Scene struct {
	nodes ordered.Map[string, *Node]
	edges ordered.Map[string, *Edge]
}

// BuildScene folds events into a Scene.
func BuildScene(events []event.Event) *Scene {
	sc := &Scene{}
	for i, evt := range events {
		sc.Apply(evt, i)
	}
	return sc
}

// Apply folds one event at fold index.
//
// node.move and node.select on an unknown id create the node at the
// origin with empty history. Cursor events leave the scene untouched.
func (sc *Scene) Apply(evt event.Event, index int) {
	switch p := evt.Decode().(type) {
	case event.NodeAdd:
		if sc.nodes.Has(p.ID) {
			return
		}
		x, y := p.X.Or(0), p.Y.Or(0)
		sc.nodes.Set(p.ID, &Node{ID: p.ID, X: x, Y: y, History: []Point{{X: x, Y: y}}})

	case event.NodeMove:
		if p.ID == "" {
			return
		}
		n := sc.node(p.ID)
		n.X = p.X.Or(n.X)
		n.Y = p.Y.Or(n.Y)
		n.History = append(n.History, Point{X: n.X, Y: n.Y})

	case event.NodeSelect:
		if p.ID == "" {
			return
		}
		n := sc.node(p.ID)
		n.Selected = true
		n.SelectedAt = index

	case event.EdgeAdd:
		sc.edges.Set(p.ID, &Edge{
			ID:   p.ID,
			From: p.From,
			To:   p.To,
			X1:   p.X1.Or(0),
			Y1:   p.Y1.Or(0),
			X2:   p.X2.Or(0),
			Y2:   p.Y2.Or(0),
		})

	case event.EdgeRemove:
		if p.ID == "" {
			return
		}
		if e, ok := sc.edges.Get(p.ID); ok {
			e.Removed = true
			e.RemovedAt = index
		}
	}
}

// node returns the node for id, creating it at the origin if missing.
func (sc *Scene) node(id string) *Node {
	if n, ok := sc.nodes.Get(id); ok {
		return n
	}
	n := &Node{ID: id}
	sc.nodes.Set(id, n)
	return n
}

// Nodes returns the nodes in creation order.
func (sc *Scene) Nodes() []*Node {
	return sc.nodes.Values()
}

// Edges returns the edges in creation order.
func (sc *Scene) Edges() []*Edge {
	return sc.edges.Values()
}

// Endpoints resolves an edge against the current node positions.
// Each endpoint that names an existing node takes that node's position;
// otherwise the literal payload coordinate is kept.
func (sc *Scene) Endpoints(e *Edge) (x1, y1, x2, y2 float64) {
	x1, y1, x2, y2 = e.X1, e.Y1, e.X2, e.Y2
	if e.From != "" {
		if n, ok := sc.nodes.Get(e.From); ok {
			x1, y1 = n.X, n.Y
		}
	}
	if e.To != "" {
		if n, ok := sc.nodes.Get(e.To); ok {
			x2, y2 = n.X, n.Y
		}
	}
	return x1, y1, x2, y2
}
