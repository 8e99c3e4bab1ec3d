// Package content holds the portfolio's data tables and blog posts and loads
// overrides for them from a content directory.
package content

import (
	"errors"
	"strings"
)

// Section ids, in page order.
const (
	SectionHero         = "hero"
	SectionAbout        = "about"
	SectionExperience   = "experience"
	SectionProjects     = "projects"
	SectionTestimonials = "testimonials"
	SectionStack        = "stack"
	SectionBlog         = "blog"
)

// Sections returns the section ids in page order.
func Sections() []string {
	return []string{
		SectionHero,
		SectionAbout,
		SectionExperience,
		SectionProjects,
		SectionTestimonials,
		SectionStack,
		SectionBlog,
	}
}

// SectionTitle is the heading shown for a section id.
func SectionTitle(id string) string {
	switch id {
	case SectionHero:
		return "Home"
	case SectionStack:
		return "Tech Stack"
	}
	if id == "" {
		return ""
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// ErrPostNotFound is returned when no post has the requested slug.
var ErrPostNotFound = errors.New("content: post not found")

type Profile struct {
	Name     string `toml:"name" json:"name"`
	Title    string `toml:"title" json:"title"`
	Tagline  string `toml:"tagline" json:"tagline"`
	About    string `toml:"about" json:"about"`
	Location string `toml:"location" json:"location,omitempty"`
	Email    string `toml:"email" json:"email,omitempty"`
	GitHub   string `toml:"github" json:"github,omitempty"`
	LinkedIn string `toml:"linkedin" json:"linkedin,omitempty"`
	// CTA is the hero call-to-action label; it opens the chat panel.
	CTA string `toml:"cta" json:"cta"`
}

type Experience struct {
	ID          string `toml:"id" json:"id"`
	Date        string `toml:"date" json:"date"`
	Title       string `toml:"title" json:"title"`
	Company     string `toml:"company" json:"company"`
	Description string `toml:"description" json:"description"`
	Icon        string `toml:"icon" json:"icon,omitempty"`
}

type Project struct {
	Title       string   `toml:"title" json:"title"`
	Description string   `toml:"description" json:"description"`
	Tech        []string `toml:"tech" json:"tech"`
	GitHubURL   string   `toml:"github_url" json:"githubUrl,omitempty"`
	DemoURL     string   `toml:"demo_url" json:"demoUrl,omitempty"`
	Image       string   `toml:"image" json:"image,omitempty"`
}

type Author struct {
	Name  string `toml:"name" json:"name"`
	Title string `toml:"title" json:"title"`
	Image string `toml:"image" json:"image,omitempty"`
}

type Testimonial struct {
	Quote  string `toml:"quote" json:"quote"`
	Author Author `toml:"author" json:"author"`
}

type Tech struct {
	Name   string `toml:"name" json:"name"`
	Icon   string `toml:"icon" json:"icon,omitempty"`
	Invert bool   `toml:"invert" json:"invert,omitempty"`
}

// Post is a blog post parsed from a markdown file.
type Post struct {
	Slug    string         `json:"slug"`
	Title   string         `json:"title"`
	Date    string         `json:"date"`
	Summary string         `json:"summary,omitempty"`
	Image   string         `json:"image,omitempty"`
	Tags    []string       `json:"tags"`
	Content string         `json:"content,omitempty"`
	Meta    map[string]any `json:"-"`
}

// Site is everything the page renders.
type Site struct {
	Profile      Profile       `json:"profile"`
	Experience   []Experience  `json:"experience"`
	Projects     []Project     `json:"projects"`
	Testimonials []Testimonial `json:"testimonials"`
	Stack        []Tech        `json:"stack"`
	Posts        []Post        `json:"posts"`
}

// Post returns the post with slug.
func (s *Site) Post(slug string) (Post, error) {
	for _, p := range s.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrPostNotFound
}

// PostSummaries returns the posts without their bodies.
func (s *Site) PostSummaries() []Post {
	out := make([]Post, len(s.Posts))
	for i, p := range s.Posts {
		p.Content = ""
		out[i] = p
	}
	return out
}
