package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

const (
	SiteFileName = "site.toml"
	PostsDirName = "posts"
)

// siteFile is the on-disk shape of site.toml. Any table that is present
// replaces the built-in one wholesale.
type siteFile struct {
	Profile      *Profile      `toml:"profile"`
	Experience   []Experience  `toml:"experience"`
	Projects     []Project     `toml:"projects"`
	Testimonials []Testimonial `toml:"testimonials"`
	Stack        []Tech        `toml:"stack"`
}

// Load builds the site from dir: defaults, overridden by dir/site.toml, plus
// the posts in dir/posts. An empty dir yields the defaults with no posts.
// Experience in the result is most recent first.
func Load(dir string) (*Site, error) {
	site := Default()
	if dir != "" {
		if err := applySiteFile(site, filepath.Join(dir, SiteFileName)); err != nil {
			return nil, err
		}
		posts, err := LoadPosts(filepath.Join(dir, PostsDirName))
		if err != nil {
			return nil, err
		}
		site.Posts = posts
	}
	if site.Posts == nil {
		site.Posts = []Post{}
	}
	return site, nil
}

func applySiteFile(site *Site, path string) error {
	var f siteFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("content: parse %s: %w", filepath.Base(path), err)
	}
	if f.Profile != nil {
		p := *f.Profile
		if p.CTA == "" {
			p.CTA = site.Profile.CTA
		}
		site.Profile = p
	}
	if f.Experience != nil {
		// site.toml lists roles chronologically.
		site.Experience = slices.Clone(f.Experience)
		slices.Reverse(site.Experience)
	}
	if f.Projects != nil {
		site.Projects = f.Projects
	}
	if f.Testimonials != nil {
		site.Testimonials = f.Testimonials
	}
	if f.Stack != nil {
		site.Stack = f.Stack
	}
	return nil
}
