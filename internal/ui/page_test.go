package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/content"
)

func TestLayoutPageSectionOrder(t *testing.T) {
	layout := layoutPage(content.Default(), 100, false)
	require.Len(t, layout.sections, len(content.Sections()))
	for i, s := range layout.sections {
		assert.Equal(t, content.Sections()[i], s.ID)
		if i > 0 {
			assert.Greater(t, s.Offset, layout.sections[i-1].Offset)
		}
	}
	assert.True(t, layout.timeline.valid())
	assert.Greater(t, layout.timeline.start, layout.sections[2].Offset)
	assert.Less(t, layout.timeline.end, layout.sections[3].Offset+1)
}

func TestLayoutPageTimelineNewestFirst(t *testing.T) {
	site := content.Default()
	layout := layoutPage(site, 100, false)
	text := ansi.Strip(layout.content())
	newest := strings.Index(text, site.Experience[0].Company)
	oldest := strings.Index(text, site.Experience[len(site.Experience)-1].Company)
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, oldest)
	assert.Less(t, newest, oldest)
}

func TestLayoutPageEmptySections(t *testing.T) {
	site := &content.Site{Profile: content.Profile{Name: "Solo"}}
	layout := layoutPage(site, 80, true)
	assert.False(t, layout.timeline.valid())
	text := ansi.Strip(layout.content())
	assert.Contains(t, text, "Solo")
	assert.Contains(t, text, "No posts yet.")
	assert.Contains(t, text, "Chat with me")
}

func TestLayoutPageNarrowWidth(t *testing.T) {
	layout := layoutPage(content.Default(), 10, false)
	assert.NotEmpty(t, layout.lines)
}

func TestOverlayDimsWhileVisible(t *testing.T) {
	ctrl := chat.NewController(chat.Options{})
	o := NewOverlay(ctrl, 100, 30)
	body := TitleStyle.Render("hello")
	assert.Equal(t, body, o.Apply(body))

	ctrl.OpenChat()
	require.NotNil(t, o.Sync())
	assert.Equal(t, body, o.Apply(body), "not dimmed at the start of the fade")

	for o.anim.running {
		o.Frame(frameMsg{target: targetOverlay, seq: o.anim.seq})
	}
	assert.True(t, o.dimmed())
	assert.Equal(t, "hello", ansi.Strip(o.Apply(body)))
}

func TestOverlayEmitsEndOnce(t *testing.T) {
	ctrl := chat.NewController(chat.Options{})
	o := NewOverlay(ctrl, 100, 30)
	ctrl.OpenChat()
	o.Sync()
	assert.Nil(t, o.Sync(), "same class does not restart")

	var ends int
	for o.anim.running {
		if cmd := o.Frame(frameMsg{target: targetOverlay, seq: o.anim.seq}); cmd != nil && !o.anim.running {
			_, ok := cmd().(OverlayAnimationEndMsg)
			if ok {
				ends++
			}
		}
	}
	assert.Equal(t, 1, ends)
}
