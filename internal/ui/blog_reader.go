package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"

	"github.com/asheshgoplani/folio/internal/content"
)

// BlogReader is the full-screen post list and post view.
type BlogReader struct {
	site    *content.Site
	visible bool
	cursor  int

	reading bool
	slug    string
	view    viewport.Model

	// rendered caches glamour output per slug at renderWidth.
	rendered    map[string]string
	renderWidth int
	renderStyle string

	width  int
	height int
}

// NewBlogReader creates a hidden reader.
func NewBlogReader() *BlogReader {
	return &BlogReader{
		view:     viewport.New(0, 0),
		rendered: make(map[string]string),
	}
}

// SetSite swaps the post source. An open post that no longer exists closes.
func (r *BlogReader) SetSite(site *content.Site) {
	r.site = site
	r.rendered = make(map[string]string)
	if r.cursor >= len(r.posts()) {
		r.cursor = max(0, len(r.posts())-1)
	}
	if r.reading {
		if !r.openPost(r.slug) {
			r.reading = false
		}
	}
}

// SetSize sets the reader dimensions.
func (r *BlogReader) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.view.Width = width
	r.view.Height = max(1, height-2)
	if r.reading {
		r.openPost(r.slug)
	}
}

// Show opens the post list.
func (r *BlogReader) Show() {
	r.visible = true
	r.reading = false
}

// ShowPost opens straight into the post with slug.
func (r *BlogReader) ShowPost(slug string) bool {
	r.visible = true
	return r.openPost(slug)
}

// Hide closes the reader.
func (r *BlogReader) Hide() {
	r.visible = false
	r.reading = false
}

// IsVisible reports whether the reader is open.
func (r *BlogReader) IsVisible() bool {
	return r.visible
}

// Reading returns the slug of the open post, or "".
func (r *BlogReader) Reading() string {
	if !r.reading {
		return ""
	}
	return r.slug
}

func (r *BlogReader) posts() []content.Post {
	if r.site == nil {
		return nil
	}
	return r.site.Posts
}

func (r *BlogReader) openPost(slug string) bool {
	if r.site == nil {
		return false
	}
	post, err := r.site.Post(slug)
	if err != nil {
		return false
	}
	r.slug = slug
	r.reading = true
	r.view.SetContent(r.render(post))
	r.view.GotoTop()
	return true
}

// render returns the post body as styled terminal text. Rendering failures
// fall back to the raw markdown.
func (r *BlogReader) render(post content.Post) string {
	style := GlamourStyle()
	if r.renderWidth != r.width || r.renderStyle != style {
		r.rendered = make(map[string]string)
		r.renderWidth = r.width
		r.renderStyle = style
	}
	if out, ok := r.rendered[post.Slug]; ok {
		return out
	}
	md := fmt.Sprintf("# %s\n\n*%s*\n\n%s", post.Title, post.Date, post.Content)
	wrap := min(max(20, r.width-4), maxPageWidth)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	out := md
	if err == nil {
		out, err = renderer.Render(md)
	}
	if err != nil {
		uiLog.Warn("post_render_failed", slog.String("slug", post.Slug), slog.String("error", err.Error()))
		out = md
	}
	r.rendered[post.Slug] = out
	return out
}

// Update handles keys while visible.
func (r *BlogReader) Update(msg tea.Msg) (*BlogReader, tea.Cmd) {
	if !r.visible {
		return r, nil
	}
	if r.reading {
		if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "esc" || k.String() == "backspace" || k.String() == "h") {
			r.reading = false
			return r, nil
		}
		var cmd tea.Cmd
		r.view, cmd = r.view.Update(msg)
		return r, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	posts := r.posts()
	switch k.String() {
	case "esc", "q", "b":
		r.Hide()
	case "up", "k":
		if r.cursor > 0 {
			r.cursor--
		}
	case "down", "j":
		if r.cursor < len(posts)-1 {
			r.cursor++
		}
	case "enter", "l":
		if r.cursor < len(posts) {
			r.openPost(posts[r.cursor].Slug)
		}
	}
	return r, nil
}

// View renders the list or the open post.
func (r *BlogReader) View() string {
	if !r.visible {
		return ""
	}
	if r.reading {
		footer := DimStyle.Render(fmt.Sprintf("%3.f%%  esc back", r.view.ScrollPercent()*100))
		return r.view.View() + "\n" + footer
	}

	var b strings.Builder
	b.WriteString(SectionTitleStyle.Render("Blog"))
	b.WriteString("\n")
	posts := r.posts()
	if len(posts) == 0 {
		b.WriteString(DimStyle.Render("No posts yet."))
	}
	for i, p := range posts {
		line := fmt.Sprintf("%s  %s", p.Date, p.Title)
		if len(p.Tags) > 0 {
			line += "  #" + strings.Join(p.Tags, " #")
		}
		line = ansi.Truncate(line, max(10, r.width-4), "…")
		if i == r.cursor {
			b.WriteString(SelectedRowStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
		if p.Summary != "" {
			b.WriteString(DimStyle.Render("    " + ansi.Truncate(p.Summary, max(10, r.width-6), "…")))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("[Enter] Read  [↑↓] Navigate  [Esc] Back"))
	return b.String()
}
