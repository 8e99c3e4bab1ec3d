package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimationRunsFixedFrames(t *testing.T) {
	a := newAnimation(targetPanel)
	require.NotNil(t, a.start("open-pill-desktop", 100*time.Millisecond, 30))
	assert.Equal(t, 3, a.frames)
	assert.Equal(t, 0.0, a.progress())

	msg := frameMsg{target: targetPanel, seq: a.seq}
	next, done := a.step(msg)
	assert.NotNil(t, next)
	assert.False(t, done)
	next, done = a.step(msg)
	assert.False(t, done)
	assert.NotNil(t, next)
	next, done = a.step(msg)
	assert.True(t, done)
	assert.Nil(t, next)
	assert.Equal(t, 1.0, a.progress())

	_, done = a.step(msg)
	assert.False(t, done, "completion is reported once")
}

func TestAnimationRestartDropsOldFrames(t *testing.T) {
	a := newAnimation(targetOverlay)
	a.start(overlayOut, 100*time.Millisecond, 30)
	old := frameMsg{target: targetOverlay, seq: a.seq}
	a.start(overlayIn, 100*time.Millisecond, 30)

	_, done := a.step(old)
	assert.False(t, done)
	assert.Equal(t, 0, a.frame)

	_, done = a.step(frameMsg{target: targetPanel, seq: a.seq})
	assert.False(t, done, "frames for another target are ignored")
}

func TestAnimationShortDurationStillOneFrame(t *testing.T) {
	a := newAnimation(targetHero)
	a.start(heroReveal, time.Millisecond, 0)
	assert.Equal(t, 1, a.frames)
	_, done := a.step(frameMsg{target: targetHero, seq: a.seq})
	assert.True(t, done)
}

func TestEaseOut(t *testing.T) {
	assert.Equal(t, 0.0, easeOut(-1))
	assert.Equal(t, 1.0, easeOut(2))
	assert.InDelta(t, 0.875, easeOut(0.5), 1e-9)
}
