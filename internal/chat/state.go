// Package chat owns the chat panel's open/close lifecycle: a four-state
// animation machine, the overlay that tracks it, and the body scroll lock it
// applies while the panel is on screen. It has no rendering dependency; the
// TUI and the websocket handler both drive the same Controller.
package chat

import "fmt"

// State is the panel's animation state.
type State int

const (
	StateIdle State = iota
	StateOpening
	StateOpen
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// next returns the only state reachable from s.
func (s State) next() State {
	switch s {
	case StateIdle:
		return StateOpening
	case StateOpening:
		return StateOpen
	case StateOpen:
		return StateClosing
	case StateClosing:
		return StateIdle
	}
	return s
}

// onScreen reports whether the panel occupies the screen in this state, which
// is what the body scroll lock follows.
func (s State) onScreen() bool {
	return s == StateOpening || s == StateOpen
}

// OverlayClass is the backdrop's transition class.
type OverlayClass string

const (
	OverlayNone     OverlayClass = ""
	OverlayEntering OverlayClass = "is-entering"
	OverlayExiting  OverlayClass = "is-exiting"
)

// Panel class names appended to the container's base classes.
const (
	ClassOpening = "is-opening"
	ClassOpen    = "is-open"
	ClassClosing = "is-closing"
)

// BodyOpenClass marks the document body while the panel is opening or open.
const BodyOpenClass = "is-chat-open"

// DefaultPanelBase is the container's base class list.
const DefaultPanelBase = "chat-panel-container"

// PanelClass computes the container class for s. rendered is false for idle:
// an idle panel has no presence at all.
func PanelClass(s State, base string) (class string, rendered bool) {
	var modifier string
	switch s {
	case StateIdle:
		return "", false
	case StateOpening:
		modifier = ClassOpening
	case StateOpen:
		modifier = ClassOpen
	case StateClosing:
		modifier = ClassClosing
	default:
		return "", false
	}
	if base == "" {
		return modifier, true
	}
	return base + " " + modifier, true
}
