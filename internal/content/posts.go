package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/asheshgoplani/folio/internal/logging"
)

var contentLog = logging.ForComponent(logging.CompContent)

// ParsePost builds a post from a markdown file's contents.
func ParsePost(slug, raw string) Post {
	meta, body := ParseFrontmatter(raw)
	p := Post{
		Slug:    slug,
		Title:   metaString(meta, "title"),
		Date:    metaString(meta, "date"),
		Summary: firstNonEmpty(metaString(meta, "summary"), metaString(meta, "excerpt")),
		Image:   firstNonEmpty(metaString(meta, "image"), metaString(meta, "imagePlaceholder")),
		Tags:    metaList(meta, "tags"),
		Content: body,
		Meta:    meta,
	}
	if p.Title == "" {
		p.Title = slug
	}
	return p
}

// LoadPosts reads every *.md file in dir. Files that cannot be read are
// logged and skipped. A missing directory yields no posts.
func LoadPosts(dir string) ([]Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Post{}, nil
		}
		return nil, fmt.Errorf("content: read posts dir: %w", err)
	}

	posts := make([]Post, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			contentLog.Warn("post_load_failed",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, ParsePost(strings.TrimSuffix(e.Name(), ".md"), string(data)))
	}
	SortPosts(posts)
	return posts, nil
}

// SortPosts orders posts newest first. Dates that do not parse sort after
// dated posts; ties fall back to slug.
func SortPosts(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		ti, okI := parsePostDate(posts[i].Date)
		tj, okJ := parsePostDate(posts[j].Date)
		switch {
		case okI && okJ && !ti.Equal(tj):
			return ti.After(tj)
		case okI != okJ:
			return okI
		case !okI && posts[i].Date != posts[j].Date:
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
}

var postDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

func parsePostDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range postDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
