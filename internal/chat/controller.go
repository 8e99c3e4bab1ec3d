package chat

import (
	"log/slog"

	"github.com/asheshgoplani/folio/internal/logging"
)

var chatLog = logging.ForComponent(logging.CompChat)

// Opener is the one capability handed to anything that wants to open the
// chat panel. Callers never see the state machine behind it.
type Opener interface {
	OpenChat()
}

// Snapshot is a value copy of the controller's observable state.
type Snapshot struct {
	State          State
	PanelClass     string
	PanelRendered  bool
	OverlayVisible bool
	OverlayClass   OverlayClass
	FocusPending   bool
}

// Options configures a Controller. Zero values are usable.
type Options struct {
	// Lock is applied while the panel is opening or open.
	Lock Effect
	// Matcher classifies animation-end names. Defaults to PrefixMatcher.
	Matcher Matcher
	// PanelBase is the container's base class list.
	PanelBase string
	// Logger overrides the chat component logger.
	Logger *slog.Logger
}

// Controller owns the panel animation state and everything derived from it.
// It is driven from a single event loop and is not safe for concurrent use.
type Controller struct {
	state          State
	overlayVisible bool
	overlayClass   OverlayClass
	focusPending   bool

	lock      Effect
	matcher   Matcher
	panelBase string
	log       *slog.Logger

	observers []func(Snapshot)
}

// NewController returns a controller in StateIdle with its effects synced.
func NewController(opts Options) *Controller {
	c := &Controller{
		lock:      opts.Lock,
		matcher:   opts.Matcher,
		panelBase: opts.PanelBase,
		log:       opts.Logger,
	}
	if c.lock == nil {
		c.lock = noopEffect{}
	}
	if c.matcher == nil {
		c.matcher = PrefixMatcher{}
	}
	if c.panelBase == "" {
		c.panelBase = DefaultPanelBase
	}
	if c.log == nil {
		c.log = chatLog
	}
	c.syncEffects()
	return c
}

// OnChange registers fn to be called after every state or overlay change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

// OpenChat starts opening the panel. It does nothing unless the panel is idle,
// so repeated triggers mid-animation are absorbed here.
func (c *Controller) OpenChat() {
	c.TryOpen()
}

// TryOpen is OpenChat reporting whether a transition happened.
func (c *Controller) TryOpen() bool {
	if c.state != StateIdle {
		c.log.Debug("open_ignored", slog.String("state", c.state.String()))
		return false
	}
	c.advance("open_requested")
	return true
}

// RequestClose starts closing the panel. It does nothing unless the panel is
// fully open; an opening panel cannot be aborted.
func (c *Controller) RequestClose() bool {
	if c.state != StateOpen {
		c.log.Debug("close_ignored", slog.String("state", c.state.String()))
		return false
	}
	c.advance("close_requested")
	return true
}

// AnimationEnd reports that the panel finished an animation called name.
// Names the matcher does not recognize, and completions that do not belong
// to the current state, leave the state unchanged.
func (c *Controller) AnimationEnd(name string) bool {
	switch c.matcher.Classify(name) {
	case CompletionOpened:
		if c.state == StateOpening {
			c.advance("animation_end:" + name)
			return true
		}
	case CompletionClosed:
		if c.state == StateClosing {
			c.advance("animation_end:" + name)
			return true
		}
	}
	c.log.Debug("animation_end_ignored",
		slog.String("name", name),
		slog.String("state", c.state.String()))
	return false
}

// OverlayAnimationEnd reports that the backdrop finished its own transition.
// Only the exit transition matters: it unmounts the overlay.
func (c *Controller) OverlayAnimationEnd() bool {
	if c.overlayClass != OverlayExiting {
		return false
	}
	c.overlayVisible = false
	c.overlayClass = OverlayNone
	c.notify()
	return true
}

// ConsumeFocus returns true exactly once after each entry into StateOpen.
func (c *Controller) ConsumeFocus() bool {
	if !c.focusPending {
		return false
	}
	c.focusPending = false
	return true
}

// State returns the current animation state.
func (c *Controller) State() State { return c.state }

// OverlayVisible reports whether the backdrop is mounted.
func (c *Controller) OverlayVisible() bool { return c.overlayVisible }

// OverlayClass returns the backdrop's transition class.
func (c *Controller) OverlayClass() OverlayClass { return c.overlayClass }

// PanelClass returns the container class and whether anything is rendered.
func (c *Controller) PanelClass() (string, bool) {
	return PanelClass(c.state, c.panelBase)
}

// Snapshot copies the observable state.
func (c *Controller) Snapshot() Snapshot {
	class, rendered := c.PanelClass()
	return Snapshot{
		State:          c.state,
		PanelClass:     class,
		PanelRendered:  rendered,
		OverlayVisible: c.overlayVisible,
		OverlayClass:   c.overlayClass,
		FocusPending:   c.focusPending,
	}
}

// Close reverts the body lock. Call it when the owner goes away.
func (c *Controller) Close() {
	c.lock.Revert()
}

func (c *Controller) advance(reason string) {
	from := c.state
	c.state = from.next()
	if c.state == StateOpen {
		c.focusPending = true
	}
	c.log.Debug("transition",
		slog.String("from", from.String()),
		slog.String("to", c.state.String()),
		slog.String("reason", reason))
	c.syncEffects()
	c.notify()
}

// syncEffects derives the body lock and overlay from the current state.
func (c *Controller) syncEffects() {
	if c.state.onScreen() {
		c.lock.Apply()
		c.overlayVisible = true
		c.overlayClass = OverlayEntering
		return
	}
	c.lock.Revert()
	if c.state == StateClosing {
		c.overlayClass = OverlayExiting
	}
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.observers {
		fn(snap)
	}
}
