package gesture

import "golang.org/x/exp/slices"

type group struct {
	members []*Base
}

// Group places g in the same group as other. Sequence state changes
// in any member of a group are applied to every other member. If g was
// already in a group, it leaves it first.
func (g *Base) Group(other Gesture) {
	o := other.base()
	if o == g {
		return
	}
	if (g.group != nil) && (g.group == o.group) {
		return
	}

	g.Ungroup()
	if o.group == nil {
		o.group = &group{members: []*Base{o}}
	}
	o.group.members = append(o.group.members, g)
	g.group = o.group
}

// Ungroup removes g from its group.
func (g *Base) Ungroup() {
	if g.group == nil {
		return
	}

	g.group.members = slices.DeleteFunc(g.group.members, func(m *Base) bool { return m == g })
	if len(g.group.members) == 1 {
		g.group.members[0].group = nil
	}
	g.group = nil
}

// IsGroupedWith reports whether g and other are in the same group.
func (g *Base) IsGroupedWith(other Gesture) bool {
	o := other.base()
	return (o == g) || ((g.group != nil) && (g.group == o.group))
}

// Set is a collection of gestures that compete for the same input.
// When a gesture in the set claims a sequence, every gesture of the set
// outside of the claimant's group has the sequence denied.
type Set struct {
	gestures []Gesture
}

func (s *Set) Add(g Gesture) {
	if slices.Contains(s.gestures, g) {
		return
	}
	g.base().set = s
	s.gestures = append(s.gestures, g)
}

func (s *Set) Remove(g Gesture) {
	i := slices.Index(s.gestures, g)
	if i < 0 {
		return
	}
	g.Reset()
	g.base().set = nil
	s.gestures = slices.Delete(s.gestures, i, i+1)
}

func (s *Set) Len() int {
	return len(s.gestures)
}

// HandleEvent feeds ev to every gesture in the set. It reports
// whether any of them consumed it.
func (s *Set) HandleEvent(ev Event, lx, ly float64) (handled bool) {
	for _, g := range slices.Clone(s.gestures) {
		if g.HandleEvent(ev, lx, ly) {
			handled = true
		}
	}
	return handled
}

// Reset resets every gesture in the set.
func (s *Set) Reset() {
	for _, g := range s.gestures {
		g.Reset()
	}
}

func (s *Set) claimed(claimant *Base, seq Sequence) {
	for _, g := range s.gestures {
		b := g.base()
		if (b == claimant) || claimant.IsGroupedWith(g) {
			continue
		}
		b.setState(seq, SequenceDenied)
	}
}
