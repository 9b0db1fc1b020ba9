package phoc

import (
	"math"

	"deedles.dev/phoc/geom"
)

type ConstraintType int

const (
	// ConstraintLock keeps the cursor where it is.
	ConstraintLock ConstraintType = iota

	// ConstraintConfine keeps the cursor inside a region of the
	// surface.
	ConstraintConfine
)

// PointerConstraint restricts cursor movement while its surface has
// pointer focus.
type PointerConstraint struct {
	Type    ConstraintType
	Surface ClientSurface

	// Region is the surface-local area the constraint applies to. If it
	// is empty, the whole surface is used.
	Region geom.Region

	// Hint is where, in surface-local coordinates, a lock would like
	// the cursor to end up when it is released.
	Hint    geom.Point[float64]
	HasHint bool

	active bool
}

// Active reports whether the constraint currently restricts the
// cursor.
func (pc *PointerConstraint) Active() bool {
	return pc.active
}

// contains reports whether the surface-local point is inside the
// constraint's region.
func (pc *PointerConstraint) contains(p geom.Point[float64]) bool {
	ip := geom.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y)))
	if pc.Region.Empty() {
		return ip.In(geom.Rect[int]{Max: pc.Surface.Size()})
	}
	return pc.Region.Contains(ip)
}

// SetConstraint installs pc as the cursor's constraint, replacing any
// previous one. It only becomes active while pc's surface is under the
// cursor.
func (c *Cursor) SetConstraint(pc *PointerConstraint) {
	if c.constraint != nil {
		c.ClearConstraint()
	}
	c.constraint = pc
	c.updateConstraint()
}

// ClearConstraint removes the cursor's constraint. A lock with a
// cursor hint moves the cursor to the hint.
func (c *Cursor) ClearConstraint() {
	pc := c.constraint
	if pc == nil {
		return
	}
	c.constraint = nil

	if pc.active && (pc.Type == ConstraintLock) && pc.HasHint {
		p := c.focusOrigin.Add(pc.Hint)
		c.log.WithField("hint", p).Debugln("Warping cursor to lock hint")
		c.pos = p
		c.seat.WarpCursor(p.X, p.Y)
	}
	pc.active = false
	c.refocus()
}

// updateConstraint activates the constraint if its surface has pointer
// focus and deactivates it otherwise.
func (c *Cursor) updateConstraint() {
	pc := c.constraint
	if pc == nil {
		return
	}

	active := (c.pointerFocus != nil) && (c.pointerFocus == pc.Surface)
	if active == pc.active {
		return
	}
	pc.active = active
	c.log.WithField("active", active).Debugln("Pointer constraint changed")
}

// constrain returns where the cursor may go when asked to move to p.
func (c *Cursor) constrain(p geom.Point[float64]) geom.Point[float64] {
	pc := c.constraint
	if (pc == nil) || !pc.active {
		return p
	}

	switch pc.Type {
	case ConstraintLock:
		return c.pos

	case ConstraintConfine:
		// Slide along the region's border if the full move would leave
		// it.
		for _, try := range []geom.Point[float64]{p, geom.Pt(p.X, c.pos.Y), geom.Pt(c.pos.X, p.Y)} {
			if pc.contains(try.Sub(c.focusOrigin)) {
				return try
			}
		}
		return c.pos

	default:
		panic("If you see this, there's a bug.")
	}
}
