package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/ui"
)

// Table column widths for posts output
const (
	tableColDate  = 12
	tableColSlug  = 24
	tableColTitle = 40
)

// handlePosts lists posts, or prints one when a slug is given.
func handlePosts(args []string) {
	fs := flag.NewFlagSet("posts", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	tag := fs.String("tag", "", "Only list posts with this tag")
	raw := fs.Bool("raw", false, "Print markdown without rendering")

	fs.Usage = func() {
		fmt.Println("Usage: folio posts [slug] [options]")
		fmt.Println()
		fmt.Println("List blog posts, newest first, or print the post with the given slug.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
	out := newCLIOutput(*jsonOutput)

	cfg, _ := config.Load()
	ui.InitTheme(cfg.ResolveTheme())
	store, err := content.NewStore(cfg.ContentDir())
	if err != nil {
		out.Fail(ErrCodeContentFailed, err.Error())
		os.Exit(1)
	}
	site := store.Site()

	if fs.NArg() > 0 {
		post, err := site.Post(fs.Arg(0))
		if err != nil {
			out.Fail(ErrCodeNotFound, fmt.Sprintf("no post with slug %q", fs.Arg(0)))
			os.Exit(1)
		}
		out.Emit(renderPost(post, *raw), post)
		return
	}

	posts := filterPostsByTag(site.PostSummaries(), *tag)
	out.Emit(formatPostTable(posts), posts)
}

// filterPostsByTag keeps posts carrying tag, compared case-insensitively.
// An empty tag keeps everything.
func filterPostsByTag(posts []content.Post, tag string) []content.Post {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return posts
	}
	out := []content.Post{}
	for _, p := range posts {
		if slices.ContainsFunc(p.Tags, func(t string) bool { return strings.ToLower(t) == tag }) {
			out = append(out, p)
		}
	}
	return out
}

func formatPostTable(posts []content.Post) string {
	if len(posts) == 0 {
		return "No posts yet.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s %-*s %s\n", tableColDate, "DATE", tableColSlug, "SLUG", "TITLE")
	for _, p := range posts {
		fmt.Fprintf(&b, "%-*s %-*s %s\n",
			tableColDate, truncateCell(p.Date, tableColDate),
			tableColSlug, truncateCell(p.Slug, tableColSlug),
			truncateCell(p.Title, tableColTitle))
	}
	fmt.Fprintf(&b, "\n%d post(s)\n", len(posts))
	return b.String()
}

// renderPost returns the post as markdown, rendered for the terminal when
// stdout is one.
func renderPost(post content.Post, raw bool) string {
	md := fmt.Sprintf("# %s\n\n*%s*\n\n%s\n", post.Title, post.Date, post.Content)
	if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
		return md
	}
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = min(w, 100)
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(ui.GlamourStyle()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
