package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/asheshgoplani/folio/internal/chat"
)

const (
	overlayIn  = "overlay-in"
	overlayOut = "overlay-out"
)

// Overlay dims the page behind the chat panel. It fades on its own clock and
// reports completion separately from the panel.
type Overlay struct {
	ctrl       *chat.Controller
	durationMS int
	fps        int
	anim       animation
	class      chat.OverlayClass
}

// NewOverlay returns an overlay reading its visibility from ctrl.
func NewOverlay(ctrl *chat.Controller, durationMS, fps int) *Overlay {
	return &Overlay{
		ctrl:       ctrl,
		durationMS: durationMS,
		fps:        fps,
		anim:       newAnimation(targetOverlay),
	}
}

// Sync starts a fade when the controller's overlay class changes.
func (o *Overlay) Sync() tea.Cmd {
	class := o.ctrl.OverlayClass()
	if class == o.class {
		return nil
	}
	o.class = class
	switch class {
	case chat.OverlayEntering:
		return o.anim.start(overlayIn, msDuration(o.durationMS), o.fps)
	case chat.OverlayExiting:
		return o.anim.start(overlayOut, msDuration(o.durationMS), o.fps)
	}
	o.anim.running = false
	return nil
}

// Frame advances the fade; the last frame yields OverlayAnimationEndMsg.
func (o *Overlay) Frame(msg frameMsg) tea.Cmd {
	next, done := o.anim.step(msg)
	if done {
		return emit(OverlayAnimationEndMsg{})
	}
	return next
}

// dimmed reports whether the backdrop is currently dark enough to mute text.
// The entering fade mutes from its midpoint on; the exiting fade stops
// muting at its midpoint.
func (o *Overlay) dimmed() bool {
	if !o.ctrl.OverlayVisible() {
		return false
	}
	switch o.ctrl.OverlayClass() {
	case chat.OverlayEntering:
		return o.anim.progress() >= 0.5
	case chat.OverlayExiting:
		return o.anim.progress() < 0.5
	}
	return false
}

// Apply renders body behind the backdrop.
func (o *Overlay) Apply(body string) string {
	if !o.dimmed() {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = OverlayStyle.Render(ansi.Strip(l))
	}
	return strings.Join(lines, "\n")
}
