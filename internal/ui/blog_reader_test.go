package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/folio/internal/content"
)

func newTestReader(t *testing.T) *BlogReader {
	t.Helper()
	site := content.Default()
	site.Posts = []content.Post{
		{Slug: "newer", Title: "Newer Post", Date: "2024-06-01", Summary: "Fresh.", Content: "Some **bold** words."},
		{Slug: "older", Title: "Older Post", Date: "2023-01-01", Content: "## Heading\n\nText."},
	}
	r := NewBlogReader()
	r.SetSite(site)
	r.SetSize(80, 24)
	return r
}

func TestBlogReaderListAndOpen(t *testing.T) {
	r := newTestReader(t)
	r.Show()
	view := ansi.Strip(r.View())
	assert.Contains(t, view, "Newer Post")
	assert.Contains(t, view, "Older Post")

	r.Update(keyRune('j'))
	r.Update(keyType(tea.KeyEnter))
	assert.Equal(t, "older", r.Reading())
	assert.Contains(t, ansi.Strip(r.View()), "Heading")

	r.Update(keyType(tea.KeyEsc))
	assert.Equal(t, "", r.Reading())
	assert.True(t, r.IsVisible())

	r.Update(keyType(tea.KeyEsc))
	assert.False(t, r.IsVisible())
}

func TestBlogReaderRendersMarkdown(t *testing.T) {
	r := newTestReader(t)
	require.True(t, r.ShowPost("newer"))
	view := ansi.Strip(r.View())
	assert.Contains(t, view, "Newer Post")
	assert.Contains(t, view, "bold")
	assert.NotContains(t, view, "**bold**")
}

func TestBlogReaderUnknownPost(t *testing.T) {
	r := newTestReader(t)
	assert.False(t, r.ShowPost("missing"))
	assert.Equal(t, "", r.Reading())
}

func TestBlogReaderClosesRemovedPost(t *testing.T) {
	r := newTestReader(t)
	require.True(t, r.ShowPost("older"))

	site := content.Default()
	site.Posts = []content.Post{{Slug: "newer", Title: "Newer Post"}}
	r.SetSite(site)
	assert.Equal(t, "", r.Reading())
	assert.Equal(t, 0, r.cursor)
}

func TestBlogReaderCachesRender(t *testing.T) {
	r := newTestReader(t)
	require.True(t, r.ShowPost("newer"))
	require.Contains(t, r.rendered, "newer")

	r.rendered["newer"] = "cached"
	r.ShowPost("newer")
	assert.Contains(t, r.View(), "cached")

	r.SetSize(100, 24)
	assert.NotContains(t, r.View(), "cached", "width change re-renders")
}
