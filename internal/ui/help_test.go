package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestHelpOverlayListsBindings(t *testing.T) {
	h := NewHelpOverlay()
	h.SetSize(120, 60)
	h.Show()

	view := ansi.Strip(h.View())
	assert.Contains(t, view, "KEYBOARD SHORTCUTS")
	assert.Contains(t, view, "copy contact")
	assert.Contains(t, view, "close chat")
	assert.Contains(t, view, "folio v"+Version)
	assert.Contains(t, view, "Press any key to close")
	assert.False(t, h.scrollable())
}

func TestHelpOverlayScrollsOnSmallScreens(t *testing.T) {
	h := NewHelpOverlay()
	h.SetSize(60, 18)
	h.Show()
	assert.True(t, h.scrollable())
	assert.Contains(t, ansi.Strip(h.View()), "more below")

	h.Update(keyRune('G'))
	assert.True(t, h.view.AtBottom())
	assert.Contains(t, ansi.Strip(h.View()), "more above")

	h.Update(keyRune('g'))
	assert.True(t, h.view.AtTop())
	assert.True(t, h.IsVisible(), "scroll keys keep the overlay open")
}

func TestHelpOverlayClosesOnOtherKeys(t *testing.T) {
	h := NewHelpOverlay()
	h.SetSize(120, 60)
	h.Show()
	h.Update(keyType(tea.KeyEsc))
	assert.False(t, h.IsVisible())
	assert.Empty(t, h.View())
}
