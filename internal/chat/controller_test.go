package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *ClassList) {
	t.Helper()
	body := &ClassList{}
	return NewController(Options{Lock: NewBodyLock(body)}), body
}

// driveTo walks a fresh controller to target along the only legal path.
func driveTo(t *testing.T, c *Controller, target State) {
	t.Helper()
	steps := []func() bool{
		c.TryOpen,
		func() bool { return c.AnimationEnd(AnimOpenDesktop) },
		c.RequestClose,
		func() bool { return c.AnimationEnd(AnimCloseDesktop) },
	}
	for i := 0; c.State() != target; i++ {
		require.Less(t, i, len(steps), "could not reach %s", target)
		require.True(t, steps[i]())
	}
}

func TestOpenIgnoredUnlessIdle(t *testing.T) {
	for _, st := range []State{StateOpening, StateOpen, StateClosing} {
		t.Run(st.String(), func(t *testing.T) {
			c, _ := newTestController(t)
			driveTo(t, c, st)
			before := c.Snapshot()

			for i := 0; i < 3; i++ {
				c.OpenChat()
				assert.False(t, c.TryOpen())
			}
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestCloseIgnoredUnlessOpen(t *testing.T) {
	for _, st := range []State{StateIdle, StateOpening, StateClosing} {
		t.Run(st.String(), func(t *testing.T) {
			c, _ := newTestController(t)
			driveTo(t, c, st)
			before := c.Snapshot()

			for i := 0; i < 3; i++ {
				assert.False(t, c.RequestClose())
			}
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestFullCycle(t *testing.T) {
	c, body := newTestController(t)
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, body.Contains(BodyOpenClass))

	require.True(t, c.TryOpen())
	assert.Equal(t, StateOpening, c.State())
	assert.True(t, body.Contains(BodyOpenClass))

	require.True(t, c.AnimationEnd("open-pill-desktop"))
	assert.Equal(t, StateOpen, c.State())
	assert.True(t, body.Contains(BodyOpenClass))

	require.True(t, c.RequestClose())
	assert.Equal(t, StateClosing, c.State())
	assert.False(t, body.Contains(BodyOpenClass))

	require.True(t, c.AnimationEnd("close-pill-mobile"))
	assert.Equal(t, StateIdle, c.State())
	assert.False(t, body.Contains(BodyOpenClass))
}

func TestUnrelatedAnimationIgnored(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenChat()

	assert.False(t, c.AnimationEnd("fade-in"))
	assert.False(t, c.AnimationEnd(""))
	assert.Equal(t, StateOpening, c.State())
}

func TestCompletionForWrongStateIgnored(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenChat()
	assert.False(t, c.AnimationEnd(AnimCloseDesktop), "close completion while opening")
	assert.Equal(t, StateOpening, c.State())

	require.True(t, c.AnimationEnd(AnimOpenMobile))
	assert.False(t, c.AnimationEnd(AnimOpenMobile), "duplicate open completion")
	assert.Equal(t, StateOpen, c.State())

	c, _ = newTestController(t)
	assert.False(t, c.AnimationEnd(AnimOpenDesktop), "open completion while idle")
	assert.Equal(t, StateIdle, c.State())
}

func TestBodyClassTracksState(t *testing.T) {
	c, body := newTestController(t)
	check := func() {
		t.Helper()
		want := c.State() == StateOpening || c.State() == StateOpen
		assert.Equal(t, want, body.Contains(BodyOpenClass), "state %s", c.State())
	}

	check()
	c.OpenChat()
	check()
	c.AnimationEnd("open-pill-desktop")
	check()
	c.RequestClose()
	check()
	c.AnimationEnd("close-pill-mobile")
	check()
}

func TestBodyClassLeavesOtherClassesAlone(t *testing.T) {
	body := &ClassList{}
	body.Toggle("theme-dark", true)
	c := NewController(Options{Lock: NewBodyLock(body)})

	c.OpenChat()
	assert.Equal(t, []string{"theme-dark", BodyOpenClass}, body.Names())
	c.AnimationEnd(AnimOpenDesktop)
	c.RequestClose()
	assert.Equal(t, []string{"theme-dark"}, body.Names())
}

func TestFocusOncePerOpen(t *testing.T) {
	c, _ := newTestController(t)
	assert.False(t, c.ConsumeFocus())

	c.OpenChat()
	assert.False(t, c.ConsumeFocus(), "no focus while opening")

	c.AnimationEnd(AnimOpenDesktop)
	assert.True(t, c.ConsumeFocus())
	for i := 0; i < 5; i++ {
		assert.False(t, c.ConsumeFocus(), "re-render while open must not refocus")
	}

	c.RequestClose()
	c.AnimationEnd(AnimCloseDesktop)
	c.OpenChat()
	c.AnimationEnd(AnimOpenMobile)
	assert.True(t, c.ConsumeFocus(), "second open focuses again")
	assert.False(t, c.ConsumeFocus())
}

func TestOverlayLifecycle(t *testing.T) {
	c, _ := newTestController(t)
	assert.False(t, c.OverlayVisible())
	assert.Equal(t, OverlayNone, c.OverlayClass())

	c.OpenChat()
	assert.True(t, c.OverlayVisible())
	assert.Equal(t, OverlayEntering, c.OverlayClass())

	assert.False(t, c.OverlayAnimationEnd(), "entering end keeps overlay")
	assert.True(t, c.OverlayVisible())

	c.AnimationEnd(AnimOpenDesktop)
	assert.Equal(t, OverlayEntering, c.OverlayClass())

	c.RequestClose()
	assert.True(t, c.OverlayVisible())
	assert.Equal(t, OverlayExiting, c.OverlayClass())

	require.True(t, c.OverlayAnimationEnd())
	assert.False(t, c.OverlayVisible())
	assert.Equal(t, StateClosing, c.State(), "overlay and panel complete independently")
}

func TestRoundTripRestoresDerivedFlags(t *testing.T) {
	c, body := newTestController(t)
	before := c.Snapshot()
	bodyBefore := body.Names()

	c.OpenChat()
	c.AnimationEnd(AnimOpenDesktop)
	require.True(t, c.ConsumeFocus())
	c.RequestClose()
	c.AnimationEnd(AnimCloseMobile)
	c.OverlayAnimationEnd()

	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, bodyBefore, body.Names())
}

func TestOverlayEndBeforePanelEnd(t *testing.T) {
	c, _ := newTestController(t)
	c.OpenChat()
	c.AnimationEnd(AnimOpenDesktop)
	c.RequestClose()

	c.OverlayAnimationEnd()
	c.AnimationEnd(AnimCloseDesktop)

	snap := c.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, snap.OverlayVisible)
	assert.Equal(t, OverlayNone, snap.OverlayClass)
}

func TestReopenBeforeOverlayExitFinishes(t *testing.T) {
	c, _ := newTestController(t)
	driveTo(t, c, StateIdle)
	c.OpenChat()
	c.AnimationEnd(AnimOpenDesktop)
	c.RequestClose()
	c.AnimationEnd(AnimCloseDesktop)
	require.Equal(t, OverlayExiting, c.OverlayClass())

	c.OpenChat()
	assert.True(t, c.OverlayVisible())
	assert.Equal(t, OverlayEntering, c.OverlayClass())
	assert.False(t, c.OverlayAnimationEnd(), "stale exit end after reopen is ignored")
	assert.True(t, c.OverlayVisible())
}

func TestPanelClass(t *testing.T) {
	c, _ := newTestController(t)
	_, rendered := c.PanelClass()
	assert.False(t, rendered)

	c.OpenChat()
	class, rendered := c.PanelClass()
	assert.True(t, rendered)
	assert.Equal(t, DefaultPanelBase+" is-opening", class)

	c.AnimationEnd(AnimOpenDesktop)
	class, _ = c.PanelClass()
	assert.Equal(t, DefaultPanelBase+" is-open", class)

	c.RequestClose()
	class, _ = c.PanelClass()
	assert.Equal(t, DefaultPanelBase+" is-closing", class)

	class, rendered = PanelClass(StateOpen, "")
	assert.True(t, rendered)
	assert.Equal(t, "is-open", class)
	_, rendered = PanelClass(State(42), "x")
	assert.False(t, rendered)
}

func TestObserversSeeEveryChange(t *testing.T) {
	c, _ := newTestController(t)
	var seen []State
	c.OnChange(func(s Snapshot) { seen = append(seen, s.State) })

	c.OpenChat()
	c.OpenChat()
	c.AnimationEnd("fade-in")
	c.AnimationEnd(AnimOpenDesktop)
	c.RequestClose()
	c.OverlayAnimationEnd()
	c.AnimationEnd(AnimCloseDesktop)

	assert.Equal(t, []State{StateOpening, StateOpen, StateClosing, StateClosing, StateIdle}, seen)
}

func TestCloseRevertsLock(t *testing.T) {
	c, body := newTestController(t)
	c.OpenChat()
	require.True(t, body.Contains(BodyOpenClass))
	c.Close()
	assert.False(t, body.Contains(BodyOpenClass))
	c.Close()
	assert.False(t, body.Contains(BodyOpenClass))
}

func TestExactMatcherRejectsVariants(t *testing.T) {
	c := NewController(Options{Matcher: ExactMatcher{}})
	c.OpenChat()
	assert.False(t, c.AnimationEnd("open-pill-tablet"))
	assert.Equal(t, StateOpening, c.State())
	assert.True(t, c.AnimationEnd(AnimOpenMobile))
}

func TestOpenerCapability(t *testing.T) {
	c, _ := newTestController(t)
	var opener Opener = c
	opener.OpenChat()
	assert.Equal(t, StateOpening, c.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "opening", StateOpening.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closing", StateClosing.String())
	assert.Equal(t, "State(9)", State(9).String())
}
