package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterYAML(t *testing.T) {
	raw := "---\ntitle: Hello World\ndate: 2024-05-01\ntags: [go, tui]\n---\n\n# Body\n"
	meta, body := ParseFrontmatter(raw)

	assert.Equal(t, "Hello World", metaString(meta, "title"))
	assert.Equal(t, "2024-05-01", metaString(meta, "date"))
	assert.Equal(t, []string{"go", "tui"}, metaList(meta, "tags"))
	assert.Equal(t, "# Body\n", body)
}

func TestParseFrontmatterFallsBackOnInvalidYAML(t *testing.T) {
	// Unquoted colon in the value is not valid YAML.
	raw := "---\ntitle: Go: a retrospective\ntags: [one, 'two']\n---\nbody"
	meta, body := ParseFrontmatter(raw)

	assert.Equal(t, "Go: a retrospective", metaString(meta, "title"))
	assert.Equal(t, []string{"one", "two"}, metaList(meta, "tags"))
	assert.Equal(t, "body", body)
}

func TestParseFrontmatterMissing(t *testing.T) {
	raw := "# Just markdown\n\nno fence here\n"
	meta, body := ParseFrontmatter(raw)
	assert.Empty(t, meta)
	assert.Equal(t, raw, body)
}

func TestParseFrontmatterStripsBOM(t *testing.T) {
	meta, body := ParseFrontmatter("\uFEFF---\ntitle: Saved on Windows\n---\nbody")
	assert.Equal(t, "Saved on Windows", metaString(meta, "title"))
	assert.Equal(t, "body", body)
}

func TestParseFrontmatterFenceMustOpenInput(t *testing.T) {
	for _, raw := range []string{"\n---\ntitle: x\n---\nbody", "  ---\ntitle: x\n---\nbody"} {
		meta, body := ParseFrontmatter(raw)
		assert.Empty(t, meta, "%q", raw)
		assert.Equal(t, raw, body)
	}
}

func TestParseFrontmatterEmptyBlock(t *testing.T) {
	meta, body := ParseFrontmatter("---\n---\ntext")
	assert.Empty(t, meta)
	assert.Equal(t, "text", body)
}

func TestMetaListForms(t *testing.T) {
	meta := map[string]any{
		"seq":    []any{"a", 2},
		"csv":    "x, y ,",
		"braced": "[p, q]",
	}
	assert.Equal(t, []string{"a", "2"}, metaList(meta, "seq"))
	assert.Equal(t, []string{"x", "y"}, metaList(meta, "csv"))
	assert.Equal(t, []string{"p", "q"}, metaList(meta, "braced"))
	assert.Equal(t, []string{}, metaList(meta, "missing"))
}

func TestParsePostDefaults(t *testing.T) {
	p := ParsePost("first-post", "---\nexcerpt: short\nimagePlaceholder: /img.png\n---\nhi")
	require.Equal(t, "first-post", p.Slug)
	assert.Equal(t, "first-post", p.Title, "title falls back to slug")
	assert.Equal(t, "short", p.Summary)
	assert.Equal(t, "/img.png", p.Image)
	assert.Equal(t, []string{}, p.Tags)
	assert.Equal(t, "hi", p.Content)
}
