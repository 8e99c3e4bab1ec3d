package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asheshgoplani/folio/internal/content"
)

func samplePosts() []content.Post {
	return []content.Post{
		{Slug: "bubbletea-notes", Title: "Notes on Bubble Tea", Date: "2024-05-01", Tags: []string{"Go", "tui"}},
		{Slug: "sqlite-wal", Title: "SQLite WAL in practice", Date: "2024-02-11", Tags: []string{"sqlite"}},
		{Slug: "untagged", Title: "Untagged", Date: "2023-12-24"},
	}
}

func TestFilterPostsByTag(t *testing.T) {
	posts := samplePosts()

	assert.Len(t, filterPostsByTag(posts, ""), 3)

	got := filterPostsByTag(posts, " go ")
	assert.Len(t, got, 1)
	assert.Equal(t, "bubbletea-notes", got[0].Slug)

	assert.Empty(t, filterPostsByTag(posts, "rust"))
	assert.NotNil(t, filterPostsByTag(posts, "rust"), "JSON output is [] rather than null")
}

func TestFormatPostTable(t *testing.T) {
	out := formatPostTable(samplePosts())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.True(t, strings.HasPrefix(lines[0], "DATE"))
	assert.Contains(t, lines[1], "bubbletea-notes")
	assert.Contains(t, lines[1], "Notes on Bubble Tea")
	assert.Contains(t, out, "3 post(s)")

	assert.Equal(t, "No posts yet.\n", formatPostTable(nil))
}

func TestRenderPostRaw(t *testing.T) {
	post := content.Post{Slug: "p", Title: "Hello", Date: "2024-01-01", Content: "Body **text**"}
	out := renderPost(post, true)
	assert.True(t, strings.HasPrefix(out, "# Hello\n"))
	assert.Contains(t, out, "*2024-01-01*")
	assert.Contains(t, out, "Body **text**")
}
