package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	site, err := Load("")
	require.NoError(t, err)

	def := Default()
	require.Len(t, site.Experience, len(def.Experience))
	assert.Equal(t, def.Experience, site.Experience)
	assert.Equal(t, "engineer", site.Experience[0].ID, "most recent first")
	assert.NotNil(t, site.Posts)
	assert.NotEmpty(t, site.Profile.CTA)
}

func TestLoadSiteOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SiteFileName), `
[profile]
name = "Sam Lee"
title = "Engineer"

[[experience]]
id = "a"
title = "First"

[[experience]]
id = "b"
title = "Second"
`)
	site, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "Sam Lee", site.Profile.Name)
	assert.Equal(t, Default().Profile.CTA, site.Profile.CTA, "cta keeps default")
	require.Len(t, site.Experience, 2)
	assert.Equal(t, "b", site.Experience[0].ID)
	assert.Equal(t, Default().Projects, site.Projects, "absent tables keep defaults")
}

func TestLoadSiteInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, SiteFileName), "[profile\nname=")
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadPostsSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	posts := filepath.Join(dir, PostsDirName)
	writeFile(t, filepath.Join(posts, "old.md"), "---\ntitle: Old\ndate: 2023-01-10\n---\nold")
	writeFile(t, filepath.Join(posts, "new.md"), "---\ntitle: New\ndate: 2024-06-02\n---\nnew")
	writeFile(t, filepath.Join(posts, "undated.md"), "no frontmatter")
	writeFile(t, filepath.Join(posts, "notes.txt"), "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(posts, "drafts.md"), 0o755))

	site, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, site.Posts, 3)
	assert.Equal(t, []string{"new", "old", "undated"},
		[]string{site.Posts[0].Slug, site.Posts[1].Slug, site.Posts[2].Slug})

	p, err := site.Post("old")
	require.NoError(t, err)
	assert.Equal(t, "old", p.Content)

	_, err = site.Post("nope")
	assert.ErrorIs(t, err, ErrPostNotFound)

	for _, s := range site.PostSummaries() {
		assert.Empty(t, s.Content)
	}
	assert.NotEmpty(t, site.Posts[0].Content, "summaries do not mutate the site")
}

func TestSectionsAndTitles(t *testing.T) {
	ids := Sections()
	assert.Equal(t, SectionHero, ids[0])
	assert.Equal(t, SectionBlog, ids[len(ids)-1])
	assert.Equal(t, "Tech Stack", SectionTitle(SectionStack))
	assert.Equal(t, "Projects", SectionTitle(SectionProjects))
}
