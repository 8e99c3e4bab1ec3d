package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/content"
)

// testChatSettings keeps every animation to a handful of frames.
var testChatSettings = config.ChatSettings{
	OpenMS:          100,
	CloseMS:         100,
	OverlayMS:       100,
	FPS:             30,
	DesktopMinWidth: 100,
}

func newTestHome(t *testing.T, width, height int, site *content.Site) *Home {
	t.Helper()
	opts := HomeOptions{Chat: testChatSettings}
	if site != nil {
		opts.Content = content.NewStaticStore(site)
	}
	h := NewHome(opts)
	t.Cleanup(h.Close)
	if width > 0 {
		h.Update(tea.WindowSizeMsg{Width: width, Height: height})
	}
	return h
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func keyType(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func typeText(h *Home, s string) {
	for _, r := range s {
		h.Update(keyRune(r))
	}
}

// finish plays the animation to its last frame and returns the completion
// message it emits.
func finish(t *testing.T, h *Home, a *animation) tea.Msg {
	t.Helper()
	for i := 0; i < 1000; i++ {
		require.True(t, a.running, "animation %q is not running", a.name)
		_, cmd := h.Update(frameMsg{target: a.target, seq: a.seq})
		if !a.running {
			require.NotNil(t, cmd)
			return cmd()
		}
	}
	t.Fatalf("animation %q never finished", a.name)
	return nil
}
