package chat

import "strings"

// ClassList is an ordered set of class names, the stand-in for an element's
// classList. The zero value is empty and ready to use.
type ClassList struct {
	names []string
}

// Contains reports whether name is present.
func (c *ClassList) Contains(name string) bool {
	for _, n := range c.names {
		if n == name {
			return true
		}
	}
	return false
}

// Toggle adds name when on is true and removes it otherwise. Repeating the
// same call is a no-op.
func (c *ClassList) Toggle(name string, on bool) {
	if name == "" {
		return
	}
	if on {
		if !c.Contains(name) {
			c.names = append(c.names, name)
		}
		return
	}
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			return
		}
	}
}

// Names returns a copy of the classes in insertion order.
func (c *ClassList) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *ClassList) String() string {
	return strings.Join(c.names, " ")
}

// Effect is a reversible side effect owned by the controller. Apply and
// Revert must both be idempotent.
type Effect interface {
	Apply()
	Revert()
}

// BodyClassEffect toggles one class on a body ClassList.
type BodyClassEffect struct {
	Body  *ClassList
	Class string
}

// NewBodyLock returns the scroll-lock effect for body.
func NewBodyLock(body *ClassList) *BodyClassEffect {
	return &BodyClassEffect{Body: body, Class: BodyOpenClass}
}

func (e *BodyClassEffect) Apply() {
	if e.Body != nil {
		e.Body.Toggle(e.Class, true)
	}
}

func (e *BodyClassEffect) Revert() {
	if e.Body != nil {
		e.Body.Toggle(e.Class, false)
	}
}

type noopEffect struct{}

func (noopEffect) Apply()  {}
func (noopEffect) Revert() {}
