package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/scrollspy"
)

const maxPageWidth = 96

// lineSpan is a half-open range of page lines.
type lineSpan struct {
	start int
	end   int
}

func (s lineSpan) valid() bool { return s.end > s.start }

// pageLayout is the rendered page plus where each section landed.
type pageLayout struct {
	width    int
	lines    []string
	sections []scrollspy.Section
	timeline lineSpan
}

func (l pageLayout) content() string {
	return strings.Join(l.lines, "\n")
}

type pageBuilder struct {
	width int
	lines []string
}

func (b *pageBuilder) add(block string) {
	b.lines = append(b.lines, strings.Split(block, "\n")...)
}

func (b *pageBuilder) blank() {
	b.lines = append(b.lines, "")
}

func (b *pageBuilder) wrap(text string, style lipgloss.Style) {
	for _, l := range strings.Split(wordwrap.String(text, b.width), "\n") {
		b.lines = append(b.lines, style.Render(l))
	}
}

// layoutPage renders every section for a terminal of width columns.
// heroDim renders the hero muted while its reveal is still running.
func layoutPage(site *content.Site, width int, heroDim bool) pageLayout {
	w := min(width, maxPageWidth) - 2
	if w < 20 {
		w = 20
	}
	b := &pageBuilder{width: w}
	layout := pageLayout{width: width}

	for _, id := range content.Sections() {
		layout.sections = append(layout.sections, scrollspy.Section{ID: id, Offset: len(b.lines)})
		switch id {
		case content.SectionHero:
			renderHero(b, site, heroDim)
		case content.SectionAbout:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			b.wrap(site.Profile.About, lipgloss.NewStyle().Foreground(ColorText))
		case content.SectionExperience:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			start := len(b.lines)
			renderTimeline(b, site.Experience)
			if len(site.Experience) > 0 {
				layout.timeline = lineSpan{start: start, end: len(b.lines)}
			}
		case content.SectionProjects:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			renderProjects(b, site.Projects)
		case content.SectionTestimonials:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			renderTestimonials(b, site.Testimonials)
		case content.SectionStack:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			renderStack(b, site.Stack)
		case content.SectionBlog:
			b.add(SectionTitleStyle.Render(content.SectionTitle(id)))
			renderBlogList(b, site.Posts)
		}
		b.blank()
	}
	layout.lines = b.lines
	return layout
}

func renderHero(b *pageBuilder, site *content.Site, dim bool) {
	p := site.Profile
	name, title, tagline := HeroNameStyle, HeroTitleStyle, DimStyle
	if dim {
		name, title = DimStyle, DimStyle
	}
	b.blank()
	b.add(name.Render(p.Name))
	if p.Title != "" {
		b.add(title.Render(p.Title))
	}
	if p.Tagline != "" {
		b.blank()
		b.wrap(p.Tagline, tagline)
	}
	b.blank()
	cta := p.CTA
	if cta == "" {
		cta = "Chat with me"
	}
	b.add(HeroCTAStyle.Render(cta) + DimStyle.Render("  press c"))
}

func renderTimeline(b *pageBuilder, entries []content.Experience) {
	if len(entries) == 0 {
		b.add(DimStyle.Render("Nothing here yet."))
		return
	}
	track := TimelineTrackStyle.Render("│ ")
	for i, e := range entries {
		head := TimelineDotStyle.Render("● ") + TimelineDateStyle.Render(e.Date) + "  " + CardTitleStyle.Render(e.Title)
		if e.Company != "" {
			head += DimStyle.Render(" · " + e.Company)
		}
		b.add(head)
		for _, l := range strings.Split(wordwrap.String(e.Description, b.width-2), "\n") {
			b.add(track + l)
		}
		if i < len(entries)-1 {
			b.add(track)
		}
	}
}

func renderProjects(b *pageBuilder, projects []content.Project) {
	if len(projects) == 0 {
		b.add(DimStyle.Render("Nothing here yet."))
		return
	}
	inner := b.width - 4
	for _, pr := range projects {
		var rows []string
		rows = append(rows, CardTitleStyle.Render(pr.Title))
		rows = append(rows, wordwrap.String(pr.Description, inner))
		if len(pr.Tech) > 0 {
			tags := make([]string, 0, len(pr.Tech))
			for _, t := range pr.Tech {
				tags = append(tags, TagStyle.Render(t))
			}
			rows = append(rows, strings.Join(tags, " "))
		}
		var links []string
		if pr.GitHubURL != "" {
			links = append(links, "code: "+pr.GitHubURL)
		}
		if pr.DemoURL != "" {
			links = append(links, "demo: "+pr.DemoURL)
		}
		if len(links) > 0 {
			rows = append(rows, DimStyle.Render(strings.Join(links, "  ")))
		}
		b.add(CardStyle.Width(b.width - 2).Render(strings.Join(rows, "\n")))
	}
}

func renderTestimonials(b *pageBuilder, items []content.Testimonial) {
	if len(items) == 0 {
		b.add(DimStyle.Render("Nothing here yet."))
		return
	}
	for i, t := range items {
		b.wrap("“"+t.Quote+"”", QuoteStyle)
		attribution := "— " + t.Author.Name
		if t.Author.Title != "" {
			attribution += ", " + t.Author.Title
		}
		b.add(DimStyle.Render(attribution))
		if i < len(items)-1 {
			b.blank()
		}
	}
}

func renderStack(b *pageBuilder, stack []content.Tech) {
	if len(stack) == 0 {
		b.add(DimStyle.Render("Nothing here yet."))
		return
	}
	var row []string
	rowWidth := 0
	for _, t := range stack {
		tag := TagStyle.Render(t.Name)
		tw := lipgloss.Width(tag) + 1
		if rowWidth+tw > b.width && len(row) > 0 {
			b.add(strings.Join(row, " "))
			row, rowWidth = nil, 0
		}
		row = append(row, tag)
		rowWidth += tw
	}
	if len(row) > 0 {
		b.add(strings.Join(row, " "))
	}
}

func renderBlogList(b *pageBuilder, posts []content.Post) {
	if len(posts) == 0 {
		b.add(DimStyle.Render("No posts yet."))
		return
	}
	for _, p := range posts {
		b.add(TimelineDateStyle.Render(p.Date) + "  " + CardTitleStyle.Render(p.Title))
		if p.Summary != "" {
			b.wrap(p.Summary, DimStyle)
		}
	}
	b.blank()
	b.add(DimStyle.Render(fmt.Sprintf("%d post(s). Press b to read.", len(posts))))
}
