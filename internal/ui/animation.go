package ui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asheshgoplani/folio/internal/logging"
)

// AnimationEndMsg reports that a named animation on the page finished. The
// chat panel and the hero both emit it; the chat controller decides which
// names matter.
type AnimationEndMsg struct {
	Name string
}

// OverlayAnimationEndMsg reports that the backdrop finished its fade.
type OverlayAnimationEndMsg struct{}

type animTarget int

const (
	targetPanel animTarget = iota
	targetOverlay
	targetHero
)

func (t animTarget) String() string {
	switch t {
	case targetPanel:
		return "panel"
	case targetOverlay:
		return "overlay"
	case targetHero:
		return "hero"
	}
	return "unknown"
}

// frameMsg advances one animation by a frame. seq ties the frame to the run
// that scheduled it so frames from a superseded run are dropped.
type frameMsg struct {
	target animTarget
	seq    int
}

// animation is a fixed number of frames played at a fixed rate.
type animation struct {
	target   animTarget
	name     string
	frames   int
	frame    int
	seq      int
	interval time.Duration
	running  bool
}

func newAnimation(target animTarget) animation {
	return animation{target: target}
}

// start begins a run called name lasting roughly d and returns the first tick.
func (a *animation) start(name string, d time.Duration, fps int) tea.Cmd {
	if fps <= 0 {
		fps = 30
	}
	a.seq++
	a.name = name
	a.frame = 0
	a.interval = time.Second / time.Duration(fps)
	a.frames = int(d / a.interval)
	if a.frames < 1 {
		a.frames = 1
	}
	a.running = true
	return a.tick()
}

func (a *animation) tick() tea.Cmd {
	target, seq := a.target, a.seq
	return tea.Tick(a.interval, func(time.Time) tea.Msg {
		return frameMsg{target: target, seq: seq}
	})
}

// step consumes one frame. It returns the next tick while running, and
// done=true exactly once when the last frame is consumed.
func (a *animation) step(msg frameMsg) (next tea.Cmd, done bool) {
	if !a.running || msg.target != a.target || msg.seq != a.seq {
		return nil, false
	}
	a.frame++
	logging.Aggregate(logging.CompUI, "animation_frame",
		slog.String("target", a.target.String()),
		slog.String("name", a.name))
	if a.frame >= a.frames {
		a.running = false
		return nil, true
	}
	return a.tick(), false
}

// progress is the completed fraction of the current run, 1 when idle.
func (a *animation) progress() float64 {
	if !a.running || a.frames == 0 {
		return 1
	}
	return float64(a.frame) / float64(a.frames)
}

// easeOut decelerates toward the end of a run.
func easeOut(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// emit wraps msg as a command so completions re-enter Update like any event.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
