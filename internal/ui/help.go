package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	helpDialogWidth = 48
	helpKeyWidth    = 14
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

// helpEntry documents a key handled outside the key maps (viewport
// scrolling, digits, reader navigation).
func helpEntry(keys, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys), key.WithHelp(keys, desc))
}

func helpSections() []helpSection {
	return []helpSection{
		{"PAGE", []key.Binding{
			helpEntry("j/k", "scroll"),
			helpEntry("PgDn/PgUp", "page down/up"),
			homeKeys.Top,
			homeKeys.Bottom,
			homeKeys.NextSection,
			homeKeys.PrevSection,
			helpEntry("1-7", "go to section"),
			homeKeys.Jump,
		}},
		{"CHAT", []key.Binding{
			homeKeys.Chat,
			chatKeys.Send,
			chatKeys.Close,
		}},
		{"BLOG", []key.Binding{
			homeKeys.Blog,
			helpEntry("enter", "open post"),
			helpEntry("esc", "back"),
		}},
		{"OTHER", []key.Binding{
			homeKeys.Reload,
			homeKeys.Copy,
			homeKeys.Help,
			homeKeys.Quit,
		}},
	}
}

// HelpOverlay lists the page and chat keys in a modal. Long lists scroll on
// small terminals.
type HelpOverlay struct {
	visible bool
	width   int
	height  int
	view    viewport.Model
}

// NewHelpOverlay creates a hidden help overlay
func NewHelpOverlay() *HelpOverlay {
	return &HelpOverlay{view: viewport.New(0, 0)}
}

// Show makes the help overlay visible
func (h *HelpOverlay) Show() {
	h.visible = true
	h.layout()
	h.view.GotoTop()
}

// Hide hides the help overlay
func (h *HelpOverlay) Hide() {
	h.visible = false
}

// IsVisible returns whether the help overlay is visible
func (h *HelpOverlay) IsVisible() bool {
	return h.visible
}

// SetSize sets the dimensions for centering
func (h *HelpOverlay) SetSize(width, height int) {
	h.width = width
	h.height = height
	h.layout()
}

func (h *HelpOverlay) dialogWidth() int {
	w := helpDialogWidth
	if h.width > 0 && h.width < w+10 {
		w = max(35, h.width-10)
	}
	return w
}

func (h *HelpOverlay) layout() {
	lines := h.lines()
	h.view.Width = h.dialogWidth() - 4
	// Border, padding and the footer take eight rows.
	h.view.Height = min(len(lines), max(10, h.height-8))
	h.view.SetContent(strings.Join(lines, "\n"))
}

func (h *HelpOverlay) scrollable() bool {
	return h.view.TotalLineCount() > h.view.Height
}

// Update scrolls with j/k and the page keys; any other key closes.
func (h *HelpOverlay) Update(msg tea.Msg) (*HelpOverlay, tea.Cmd) {
	if !h.visible {
		return h, nil
	}
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return h, nil
	}
	switch k.String() {
	case "j", "down", "k", "up", "ctrl+d", "pgdown", "ctrl+u", "pgup":
		var cmd tea.Cmd
		h.view, cmd = h.view.Update(msg)
		return h, cmd
	case "g":
		h.view.GotoTop()
	case "G":
		h.view.GotoBottom()
	default:
		h.Hide()
	}
	return h, nil
}

func (h *HelpOverlay) lines() []string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
	keyWidth := helpKeyWidth
	if h.dialogWidth() < 45 {
		keyWidth = 10
	}
	keyStyle := lipgloss.NewStyle().Foreground(ColorPurple).Width(keyWidth)
	descStyle := lipgloss.NewStyle().Foreground(ColorText)

	lines := []string{titleStyle.Render("KEYBOARD SHORTCUTS"), ""}
	for i, section := range helpSections() {
		lines = append(lines, sectionStyle.Render(section.title))
		for _, b := range section.bindings {
			help := b.Help()
			lines = append(lines, "  "+keyStyle.Render(help.Key)+descStyle.Render(help.Desc))
		}
		if i < len(helpSections())-1 {
			lines = append(lines, "")
		}
	}
	lines = append(lines,
		"",
		lipgloss.NewStyle().Foreground(ColorBorder).Render(strings.Repeat("─", max(20, h.dialogWidth()-8))),
		DimStyle.Italic(true).Render("folio v"+Version))
	return lines
}

// View renders the help overlay
func (h *HelpOverlay) View() string {
	if !h.visible {
		return ""
	}
	hint := "Press any key to close"
	if h.scrollable() {
		pos := "▼ more below"
		if h.view.AtBottom() {
			pos = "▲ more above"
		}
		hint = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true).Render(pos) +
			"  " + DimStyle.Italic(true).Render("j/k scroll • any other key to close")
	} else {
		hint = DimStyle.Italic(true).Render(hint)
	}

	box := DialogBoxStyle.
		Width(h.dialogWidth()).
		Render(h.view.View() + "\n\n" + hint)
	return centerInScreen(box, h.width, h.height)
}
