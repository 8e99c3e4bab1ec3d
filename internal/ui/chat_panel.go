package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/content"
)

const (
	pillLabel       = "💬 Ask me anything"
	pillHeight      = 3
	maxChatHistory  = 50
	maxQuestionLen  = 500
	desktopPanelMax = 56
)

type chatKeyMap struct {
	Close key.Binding
	Send  key.Binding
}

var chatKeys = chatKeyMap{
	Close: key.NewBinding(key.WithKeys("esc", "ctrl+w"), key.WithHelp("esc", "close chat")),
	Send:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "ask")),
}

type chatExchange struct {
	question string
	answer   string
}

// ChatPanel renders the chat container. Nothing is drawn while idle; while
// opening or closing a pill grows into (or shrinks from) the full panel.
type ChatPanel struct {
	ctrl     *chat.Controller
	settings config.ChatSettings
	site     func() *content.Site

	anim    animation
	input   textinput.Model
	history []chatExchange

	width  int
	height int
}

// NewChatPanel returns a panel driven by ctrl. site supplies the content
// answers are drawn from.
func NewChatPanel(ctrl *chat.Controller, settings config.ChatSettings, site func() *content.Site) *ChatPanel {
	ti := textinput.New()
	ti.Placeholder = "Ask about experience, projects, stack..."
	ti.CharLimit = maxQuestionLen
	ti.Prompt = "› "
	return &ChatPanel{
		ctrl:     ctrl,
		settings: settings,
		site:     site,
		anim:     newAnimation(targetPanel),
		input:    ti,
	}
}

// SetSize sets the area the panel may occupy.
func (p *ChatPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.input.Width = max(10, p.panelWidth()-8)
}

// Desktop reports whether the desktop keyframes apply at the current width.
func (p *ChatPanel) Desktop() bool {
	return p.width >= p.settings.DesktopMinWidth
}

// Focused reports whether the question input has focus.
func (p *ChatPanel) Focused() bool {
	return p.input.Focused()
}

// Enter reacts to the controller entering state: it starts the matching
// keyframes, or takes focus once the panel is open.
func (p *ChatPanel) Enter(state chat.State) tea.Cmd {
	switch state {
	case chat.StateOpening:
		return p.anim.start(chat.OpenAnimation(p.Desktop()), msDuration(p.settings.OpenMS), p.settings.FPS)
	case chat.StateOpen:
		if p.ctrl.ConsumeFocus() {
			return p.input.Focus()
		}
	case chat.StateClosing:
		p.input.Blur()
		return p.anim.start(chat.CloseAnimation(p.Desktop()), msDuration(p.settings.CloseMS), p.settings.FPS)
	case chat.StateIdle:
		p.input.Blur()
		p.input.Reset()
	}
	return nil
}

// Frame advances the panel animation. The final frame yields AnimationEndMsg
// carrying the keyframe name.
func (p *ChatPanel) Frame(msg frameMsg) tea.Cmd {
	next, done := p.anim.step(msg)
	if done {
		return emit(AnimationEndMsg{Name: p.anim.name})
	}
	return next
}

// HandleKey processes a key while the panel is on screen. Input is accepted
// only when fully open.
func (p *ChatPanel) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if p.ctrl.State() != chat.StateOpen {
		return nil
	}
	switch {
	case key.Matches(msg, chatKeys.Close):
		p.ctrl.RequestClose()
		return nil
	case key.Matches(msg, chatKeys.Send):
		p.ask(p.input.Value())
		p.input.Reset()
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// UpdateInput forwards non-key messages (cursor blink) to the input.
func (p *ChatPanel) UpdateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *ChatPanel) ask(question string) {
	question = strings.TrimSpace(question)
	if question == "" {
		return
	}
	answer := "I don't have anything loaded to answer with yet."
	if site := p.currentSite(); site != nil {
		answer = site.Answer(question)
	}
	p.history = append(p.history, chatExchange{question: question, answer: answer})
	if len(p.history) > maxChatHistory {
		p.history = p.history[len(p.history)-maxChatHistory:]
	}
	uiLog.Debug("chat_question", slog.Int("length", len(question)))
}

func (p *ChatPanel) currentSite() *content.Site {
	if p.site == nil {
		return nil
	}
	return p.site()
}

func (p *ChatPanel) panelWidth() int {
	if p.Desktop() {
		return min(desktopPanelMax, p.width)
	}
	return p.width
}

func (p *ChatPanel) panelHeight() int {
	if p.Desktop() {
		return max(pillHeight+5, min(p.height, p.height*2/3+2))
	}
	return p.height
}

// frameSize interpolates between the pill and the full panel.
func (p *ChatPanel) frameSize() (int, int) {
	pillW := lipgloss.Width(pillLabel) + 4
	fullW, fullH := p.panelWidth(), p.panelHeight()
	var t float64
	switch p.ctrl.State() {
	case chat.StateOpening:
		t = easeOut(p.anim.progress())
	case chat.StateOpen:
		t = 1
	case chat.StateClosing:
		t = 1 - easeOut(p.anim.progress())
	}
	w := pillW + int(float64(fullW-pillW)*t)
	h := pillHeight + int(float64(fullH-pillHeight)*t)
	return min(w, max(fullW, pillW)), min(h, max(fullH, pillHeight))
}

// View renders the panel, or "" when the controller says nothing is mounted.
func (p *ChatPanel) View() string {
	if _, rendered := p.ctrl.PanelClass(); !rendered {
		return ""
	}
	w, h := p.frameSize()
	if h <= pillHeight {
		return PillStyle.Render(pillLabel)
	}
	innerW := max(1, w-4)
	innerH := max(1, h-2)

	lines := []string{ChatTitleStyle.Render(p.title()), ""}
	body := p.transcript(innerW)
	inputLine := ""
	if p.ctrl.State() == chat.StateOpen {
		inputLine = p.input.View()
	}
	room := innerH - len(lines) - 1
	if room > 0 && len(body) > room {
		body = body[len(body)-room:]
	}
	if room > 0 {
		lines = append(lines, body...)
	}
	for len(lines) < innerH-1 {
		lines = append(lines, "")
	}
	lines = append(lines, inputLine)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, innerW, "…")
	}
	return ChatPanelStyle.Width(w - 2).Height(innerH).Render(strings.Join(lines, "\n"))
}

func (p *ChatPanel) title() string {
	name := "me"
	if site := p.currentSite(); site != nil {
		if f := strings.Fields(site.Profile.Name); len(f) > 0 {
			name = f[0]
		}
	}
	return "Ask about " + name
}

func (p *ChatPanel) transcript(width int) []string {
	if len(p.history) == 0 {
		hint := wordwrap.String("Try \"what have you built?\" or \"how can I reach you?\"", width)
		var out []string
		for _, l := range strings.Split(hint, "\n") {
			out = append(out, DimStyle.Render(l))
		}
		return out
	}
	var out []string
	for _, ex := range p.history {
		out = append(out, ChatQuestionStyle.Render(ansi.Truncate("› "+ex.question, width, "…")))
		for _, l := range strings.Split(wordwrap.String(ex.answer, width), "\n") {
			out = append(out, ChatAnswerStyle.Render(l))
		}
		out = append(out, "")
	}
	return out
}
