package layer

import "golang.org/x/exp/slices"

// Position is where a surface is stacked relative to its target.
type Position int

const (
	Above Position = iota
	Below
)

func (p Position) String() string {
	if p == Below {
		return "below"
	}
	return "above"
}

// Binding asks for Surface to be stacked directly above or below
// Target.
type Binding[T comparable] struct {
	Surface  T
	Target   T
	Position Position
}

// Order returns the surfaces of a layer from back to front. attached
// holds the surfaces in the order they were attached to the output.
// Exclusive surfaces come first, most recently attached at the back,
// followed by the rest in attach order. Bindings are then applied in
// order, each moving its surface next to its target. Bindings whose
// surface or target is not in attached are ignored.
func Order[T comparable](attached []T, exclusive func(T) bool, bindings []Binding[T]) []T {
	order := make([]T, 0, len(attached))
	for i := len(attached) - 1; i >= 0; i-- {
		if exclusive(attached[i]) {
			order = append(order, attached[i])
		}
	}
	for _, s := range attached {
		if !exclusive(s) {
			order = append(order, s)
		}
	}

	for _, b := range bindings {
		if b.Surface == b.Target {
			continue
		}
		i := slices.Index(order, b.Surface)
		if (i < 0) || !slices.Contains(order, b.Target) {
			continue
		}

		order = slices.Delete(order, i, i+1)
		j := slices.Index(order, b.Target)
		if b.Position == Above {
			j++
		}
		order = slices.Insert(order, j, b.Surface)
	}

	return order
}
