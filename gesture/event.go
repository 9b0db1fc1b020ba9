// Package gesture turns streams of pointer, touch and touchpad events
// into drags, swipes and pinches.
//
// Every recognizer tracks a set of points, one per sequence. A
// sequence is a touch ID, the pointer or the touchpad. Recognizers
// that compete for the same sequences are arbitrated through sequence
// states: claiming a sequence in one recognizer denies it to every
// recognizer of the same Set that is not in the claimant's group.
package gesture

import "fmt"

type EventType int

const (
	EventButtonPress EventType = iota
	EventButtonRelease
	EventMotion
	EventTouchDown
	EventTouchMotion
	EventTouchUp
	EventTouchCancel
	EventSwipeBegin
	EventSwipeUpdate
	EventSwipeEnd
	EventPinchBegin
	EventPinchUpdate
	EventPinchEnd
)

func (t EventType) begins() bool {
	switch t {
	case EventButtonPress, EventTouchDown, EventSwipeBegin, EventPinchBegin:
		return true
	default:
		return false
	}
}

func (t EventType) ends() bool {
	switch t {
	case EventButtonRelease, EventTouchUp, EventTouchCancel, EventSwipeEnd, EventPinchEnd:
		return true
	default:
		return false
	}
}

func (t EventType) touchpad() bool {
	switch t {
	case EventSwipeBegin, EventSwipeUpdate, EventSwipeEnd,
		EventPinchBegin, EventPinchUpdate, EventPinchEnd:
		return true
	default:
		return false
	}
}

func (t EventType) pinch() bool {
	return (t == EventPinchBegin) || (t == EventPinchUpdate) || (t == EventPinchEnd)
}

func (t EventType) String() string {
	switch t {
	case EventButtonPress:
		return "button-press"
	case EventButtonRelease:
		return "button-release"
	case EventMotion:
		return "motion"
	case EventTouchDown:
		return "touch-down"
	case EventTouchMotion:
		return "touch-motion"
	case EventTouchUp:
		return "touch-up"
	case EventTouchCancel:
		return "touch-cancel"
	case EventSwipeBegin:
		return "swipe-begin"
	case EventSwipeUpdate:
		return "swipe-update"
	case EventSwipeEnd:
		return "swipe-end"
	case EventPinchBegin:
		return "pinch-begin"
	case EventPinchUpdate:
		return "pinch-update"
	case EventPinchEnd:
		return "pinch-end"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Sequence identifies the contact an event belongs to. Touch events
// use their touch ID. Pointer and touchpad events each have a single
// synthetic sequence.
type Sequence int64

const (
	PointerSequence  Sequence = -1
	TouchpadSequence Sequence = -2
)

// Event is a low-level input event.
type Event struct {
	Type EventType

	// Time is the event timestamp in milliseconds.
	Time uint32

	// Device names the device that produced the event. Events without
	// a device are ignored.
	Device string

	// Touch is the touch ID of touch events.
	Touch int32

	Button uint32

	// Fingers is the finger count of touchpad begin and update events.
	Fingers int

	// DX and DY are the unaccelerated deltas of touchpad updates.
	DX, DY float64

	// Scale is the pinch scale relative to the start of the pinch.
	Scale float64

	// Cancelled marks touchpad end events that were cancelled.
	Cancelled bool
}

// Sequence returns the sequence that ev belongs to.
func (ev Event) Sequence() Sequence {
	switch {
	case ev.Type.touchpad():
		return TouchpadSequence
	case (ev.Type >= EventTouchDown) && (ev.Type <= EventTouchCancel):
		return Sequence(ev.Touch)
	default:
		return PointerSequence
	}
}

func (ev Event) cancels() bool {
	return (ev.Type == EventTouchCancel) || (ev.Type.touchpad() && ev.Cancelled)
}

// SequenceState is the arbitration state of a sequence. It only ever
// moves forwards: from none to claimed or denied, and from claimed to
// denied.
type SequenceState int

const (
	SequenceNone SequenceState = iota
	SequenceClaimed
	SequenceDenied
)

func (s SequenceState) String() string {
	switch s {
	case SequenceNone:
		return "none"
	case SequenceClaimed:
		return "claimed"
	case SequenceDenied:
		return "denied"
	default:
		return fmt.Sprintf("SequenceState(%d)", int(s))
	}
}

func (s SequenceState) canBecome(next SequenceState) bool {
	switch s {
	case SequenceNone:
		return next != SequenceNone
	case SequenceClaimed:
		return next == SequenceDenied
	default:
		return false
	}
}
