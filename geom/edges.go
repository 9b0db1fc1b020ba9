package geom

import "strings"

// Edges is a set of rectangle edges. The values match the ones used by
// wlroots and the layer-shell protocol's anchor bitmask.
type Edges uint32

const (
	EdgeNone Edges = 0
	EdgeTop  Edges = 1 << (iota - 1)
	EdgeBottom
	EdgeLeft
	EdgeRight

	EdgesAll = EdgeTop | EdgeBottom | EdgeLeft | EdgeRight
)

// Has reports whether every edge in e2 is also in e.
func (e Edges) Has(e2 Edges) bool {
	return e&e2 == e2
}

// Horizontal returns the left and right edges of e.
func (e Edges) Horizontal() Edges {
	return e & (EdgeLeft | EdgeRight)
}

// Vertical returns the top and bottom edges of e.
func (e Edges) Vertical() Edges {
	return e & (EdgeTop | EdgeBottom)
}

// Opposite returns the edges opposite to those in e.
func (e Edges) Opposite() (o Edges) {
	if e&EdgeTop != 0 {
		o |= EdgeBottom
	}
	if e&EdgeBottom != 0 {
		o |= EdgeTop
	}
	if e&EdgeLeft != 0 {
		o |= EdgeRight
	}
	if e&EdgeRight != 0 {
		o |= EdgeLeft
	}
	return o
}

func (e Edges) String() string {
	if e == EdgeNone {
		return "none"
	}

	var names []string
	for _, n := range edgeNames {
		if e&n.edge != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

var edgeNames = []struct {
	edge Edges
	name string
}{
	{EdgeTop, "top"},
	{EdgeBottom, "bottom"},
	{EdgeLeft, "left"},
	{EdgeRight, "right"},
}

// ParseEdge returns the edge named by s.
func ParseEdge(s string) (Edges, bool) {
	for _, n := range edgeNames {
		if n.name == s {
			return n.edge, true
		}
	}
	return EdgeNone, false
}
