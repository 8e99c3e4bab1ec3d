package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/asheshgoplani/folio/internal/content"
)

const maxJumpResults = 10

// JumpKind tells sections from posts in the jump list.
type JumpKind int

const (
	JumpSection JumpKind = iota
	JumpPost
)

// JumpTarget is one destination offered by the jump dialog.
type JumpTarget struct {
	Kind  JumpKind
	ID    string // section id or post slug
	Label string
}

// jumpSelectedMsg is emitted when the user picks a target.
type jumpSelectedMsg struct {
	target JumpTarget
}

type jumpSource []JumpTarget

func (s jumpSource) String(i int) string { return s[i].Label }
func (s jumpSource) Len() int            { return len(s) }

// JumpDialog fuzzy-searches sections and posts.
type JumpDialog struct {
	input   textinput.Model
	targets []JumpTarget
	results []JumpTarget
	matched [][]int
	cursor  int
	width   int
	height  int
	visible bool
}

// NewJumpDialog creates a hidden jump dialog.
func NewJumpDialog() *JumpDialog {
	ti := textinput.New()
	ti.Placeholder = "Jump to section or post..."
	ti.CharLimit = 100
	ti.Width = 40
	return &JumpDialog{input: ti}
}

// SetSite rebuilds the target list from site.
func (d *JumpDialog) SetSite(site *content.Site) {
	d.targets = d.targets[:0]
	for _, id := range content.Sections() {
		d.targets = append(d.targets, JumpTarget{Kind: JumpSection, ID: id, Label: content.SectionTitle(id)})
	}
	if site != nil {
		for _, p := range site.Posts {
			d.targets = append(d.targets, JumpTarget{Kind: JumpPost, ID: p.Slug, Label: p.Title})
		}
	}
	d.updateResults()
}

// SetSize sets the dimensions used for centering.
func (d *JumpDialog) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Show opens the dialog with an empty query.
func (d *JumpDialog) Show() tea.Cmd {
	d.visible = true
	d.input.Reset()
	d.updateResults()
	return d.input.Focus()
}

// Hide closes the dialog.
func (d *JumpDialog) Hide() {
	d.visible = false
	d.input.Blur()
}

// IsVisible returns whether the dialog is open.
func (d *JumpDialog) IsVisible() bool {
	return d.visible
}

// Selected returns the highlighted target.
func (d *JumpDialog) Selected() (JumpTarget, bool) {
	if len(d.results) == 0 {
		return JumpTarget{}, false
	}
	if d.cursor >= len(d.results) {
		d.cursor = len(d.results) - 1
	}
	return d.results[d.cursor], true
}

// Update handles keys while visible.
func (d *JumpDialog) Update(msg tea.Msg) (*JumpDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	switch keyMsg.String() {
	case "esc":
		d.Hide()
		return d, nil
	case "enter":
		target, ok := d.Selected()
		d.Hide()
		if !ok {
			return d, nil
		}
		return d, emit(jumpSelectedMsg{target: target})
	case "up", "ctrl+k":
		if d.cursor > 0 {
			d.cursor--
		}
		return d, nil
	case "down", "ctrl+j":
		if d.cursor < len(d.results)-1 {
			d.cursor++
		}
		return d, nil
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	d.updateResults()
	return d, cmd
}

// updateResults filters targets by the query. An empty query lists all.
func (d *JumpDialog) updateResults() {
	d.cursor = 0
	query := strings.TrimSpace(d.input.Value())
	if query == "" {
		d.results = append(d.results[:0], d.targets...)
		d.matched = nil
		return
	}
	matches := fuzzy.FindFrom(query, jumpSource(d.targets))
	d.results = d.results[:0]
	d.matched = d.matched[:0]
	for _, m := range matches {
		d.results = append(d.results, d.targets[m.Index])
		d.matched = append(d.matched, m.MatchedIndexes)
	}
}

// View renders the dialog centered on screen.
func (d *JumpDialog) View() string {
	if !d.visible {
		return ""
	}
	var b strings.Builder
	b.WriteString(DialogTitleStyle.Render("Jump to"))
	b.WriteString("\n")
	b.WriteString(d.input.View())
	b.WriteString("\n\n")

	shown := d.results
	if len(shown) > maxJumpResults {
		shown = shown[:maxJumpResults]
	}
	if len(shown) == 0 {
		b.WriteString(DimStyle.Render("  No matches"))
	}
	for i, t := range shown {
		kind := "§"
		if t.Kind == JumpPost {
			kind = "✎"
		}
		label := t.Label
		if d.matched != nil && i < len(d.matched) {
			label = highlightMatches(label, d.matched[i])
		}
		line := fmt.Sprintf(" %s %s", kind, label)
		if i == d.cursor {
			line = SelectedRowStyle.Render("›" + line)
		} else {
			line = " " + line
		}
		b.WriteString(line)
		if i < len(shown)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(DimStyle.Render("[Enter] Go  [↑↓] Navigate  [Esc] Cancel"))

	width := 50
	if d.width > 0 && d.width < width+10 {
		width = max(30, d.width-10)
	}
	return centerInScreen(DialogBoxStyle.Width(width).Render(b.String()), d.width, d.height)
}

// highlightMatches styles the runes at the given byte offsets.
func highlightMatches(s string, idx []int) string {
	if len(idx) == 0 {
		return s
	}
	hit := make(map[int]bool, len(idx))
	for _, i := range idx {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(SearchMatchStyle.Render(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// centerInScreen centers content in the terminal
func centerInScreen(content string, screenWidth, screenHeight int) string {
	lines := strings.Split(content, "\n")
	contentWidth := 0
	for _, line := range lines {
		contentWidth = max(contentWidth, lipgloss.Width(line))
	}
	verticalPad := max(0, (screenHeight-len(lines))/2)
	horizontalPad := max(0, (screenWidth-contentWidth)/2)

	var result strings.Builder
	for i := 0; i < verticalPad; i++ {
		result.WriteString("\n")
	}
	padding := strings.Repeat(" ", horizontalPad)
	for i, line := range lines {
		result.WriteString(padding + line)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
