package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/clipboard"
	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/logging"
	"github.com/asheshgoplani/folio/internal/scrollspy"
)

// Version is set by main.go
var Version = "0.0.0"

// SetVersion sets the version shown in the help overlay
func SetVersion(v string) {
	Version = v
}

var uiLog = logging.ForComponent(logging.CompUI)

const (
	// timelineRetryDelay is how long a failed timeline measurement waits
	// before its single retry.
	timelineRetryDelay = 250 * time.Millisecond

	heroReveal   = "fade-in"
	heroRevealMS = 600

	navHeight  = 1
	menuHeight = 1

	timelineBarWidth = 10
)

// ContentSource is the live content a Home renders.
type ContentSource interface {
	Site() *content.Site
	Version() uint64
	Reload() error
}

// HomeOptions configures NewHome. Zero values are usable.
type HomeOptions struct {
	Content ContentSource
	// Reloads signals that Content was reloaded from disk.
	Reloads <-chan struct{}
	Chat    config.ChatSettings
	Matcher chat.Matcher
	// FollowSystemTheme re-themes when the OS appearance changes.
	FollowSystemTheme bool
}

type homeKeyMap struct {
	Quit        key.Binding
	Chat        key.Binding
	Jump        key.Binding
	Blog        key.Binding
	Help        key.Binding
	Reload      key.Binding
	Copy        key.Binding
	NextSection key.Binding
	PrevSection key.Binding
	Top         key.Binding
	Bottom      key.Binding
}

var homeKeys = homeKeyMap{
	Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Chat:        key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c", "chat")),
	Jump:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "jump")),
	Blog:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "blog")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy contact")),
	NextSection: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
	PrevSection: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev")),
	Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
}

// contentReloadedMsg signals that the content source has a new site
type contentReloadedMsg struct{}

// reloadResultMsg is the outcome of a manual reload
type reloadResultMsg struct {
	err error
}

// copyResultMsg is the outcome of copying contact details
type copyResultMsg struct {
	label  string
	result *clipboard.CopyResult
	err    error
}

// copyToClipboard is swapped in tests.
var copyToClipboard = clipboard.Copy

// timelineMeasureMsg asks Home to locate the experience timeline
type timelineMeasureMsg struct {
	attempt int
}

// Home is the portfolio page: a scrolling body of sections, a nav bar with
// the active section, and the chat panel floating over it.
type Home struct {
	ctx    context.Context
	cancel context.CancelFunc

	source   ContentSource
	reloads  <-chan struct{}
	site     *content.Site
	version  uint64
	settings config.ChatSettings

	body          *chat.ClassList
	ctrl          *chat.Controller
	opener        chat.Opener
	panel         *ChatPanel
	overlay       *Overlay
	chatChanges   []chat.State
	lastChatState chat.State

	hero      animation
	heroShown bool

	viewport         viewport.Model
	layout           pageLayout
	spy              *scrollspy.Tracker
	active           string
	timelineMeasured bool

	jump         *JumpDialog
	reader       *BlogReader
	help         *HelpOverlay
	themeChanges <-chan bool

	width  int
	height int
	status string
	err    error
}

// NewHome builds the page model.
func NewHome(opts HomeOptions) *Home {
	ctx, cancel := context.WithCancel(context.Background())
	source := opts.Content
	if source == nil {
		source = content.NewStaticStore(content.Default())
	}
	settings := (&config.Config{Chat: opts.Chat}).ChatSettings()

	body := &chat.ClassList{}
	ctrl := chat.NewController(chat.Options{
		Lock:    chat.NewBodyLock(body),
		Matcher: opts.Matcher,
	})

	h := &Home{
		ctx:      ctx,
		cancel:   cancel,
		source:   source,
		reloads:  opts.Reloads,
		settings: settings,
		body:     body,
		ctrl:     ctrl,
		opener:   ctrl,
		overlay:  NewOverlay(ctrl, settings.OverlayMS, settings.FPS),
		hero:     newAnimation(targetHero),
		viewport: viewport.New(0, 0),
		spy:      scrollspy.New(nil),
		active:   content.SectionHero,
		jump:     NewJumpDialog(),
		reader:   NewBlogReader(),
		help:     NewHelpOverlay(),
	}
	h.panel = NewChatPanel(ctrl, settings, func() *content.Site { return h.site })
	ctrl.OnChange(func(s chat.Snapshot) {
		h.chatChanges = append(h.chatChanges, s.State)
	})
	if opts.FollowSystemTheme {
		if changes, err := systemThemeChanges(ctx); err != nil {
			uiLog.Warn("theme_watcher_init_failed", slog.String("error", err.Error()))
		} else {
			h.themeChanges = changes
		}
	}
	h.loadSite()
	return h
}

// Close releases the body lock and stops the theme watcher.
func (h *Home) Close() {
	h.ctrl.Close()
	h.cancel()
}

// Init starts the hero reveal, the timeline measurement, and the watchers.
func (h *Home) Init() tea.Cmd {
	cmds := []tea.Cmd{
		h.hero.start(heroReveal, msDuration(heroRevealMS), h.settings.FPS),
		emit(timelineMeasureMsg{attempt: 0}),
	}
	if h.reloads != nil {
		cmds = append(cmds, listenForReloads(h.reloads))
	}
	if h.themeChanges != nil {
		cmds = append(cmds, nextThemeChange(h.themeChanges))
	}
	return tea.Batch(cmds...)
}

// listenForReloads waits for the next content reload notification
func listenForReloads(reloads <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-reloads; !ok {
			return nil
		}
		return contentReloadedMsg{}
	}
}

// Update handles messages
func (h *Home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.height = msg.Height
		h.updateSizes()
		return h, nil

	case frameMsg:
		switch msg.target {
		case targetPanel:
			return h, h.panel.Frame(msg)
		case targetOverlay:
			return h, h.overlay.Frame(msg)
		case targetHero:
			next, done := h.hero.step(msg)
			if !done {
				return h, next
			}
			h.heroShown = true
			h.relayout()
			return h, emit(AnimationEndMsg{Name: heroReveal})
		}
		return h, nil

	case AnimationEndMsg:
		h.ctrl.AnimationEnd(msg.Name)
		return h, h.syncChat()

	case OverlayAnimationEndMsg:
		h.ctrl.OverlayAnimationEnd()
		return h, h.syncChat()

	case contentReloadedMsg:
		h.refreshContent()
		return h, listenForReloads(h.reloads)

	case reloadResultMsg:
		if msg.err != nil {
			h.err = msg.err
			h.status = ""
			return h, nil
		}
		h.err = nil
		h.refreshContent()
		return h, nil

	case copyResultMsg:
		if msg.err != nil {
			uiLog.Warn("copy_failed", slog.String("error", msg.err.Error()))
			h.err = fmt.Errorf("copy %s: %w", msg.label, msg.err)
			return h, nil
		}
		h.err = nil
		h.status = fmt.Sprintf("copied %s (%s)", msg.label, msg.result.Method)
		return h, nil

	case themeChangedMsg:
		theme := "light"
		if msg.dark {
			theme = "dark"
		}
		InitTheme(theme)
		uiLog.Info("theme_changed", slog.String("theme", theme))
		h.relayout()
		if h.reader.Reading() != "" {
			h.reader.ShowPost(h.reader.Reading())
		}
		if h.themeChanges == nil {
			return h, nil
		}
		return h, nextThemeChange(h.themeChanges)

	case timelineMeasureMsg:
		return h, h.measureTimeline(msg.attempt)

	case jumpSelectedMsg:
		h.jumpTo(msg.target)
		return h, nil

	case tea.MouseMsg:
		if h.scrollLocked() || h.modalVisible() {
			return h, nil
		}
		var cmd tea.Cmd
		h.viewport, cmd = h.viewport.Update(msg)
		h.updateActive()
		return h, cmd

	case tea.KeyMsg:
		return h, h.handleKey(msg)
	}

	// Cursor blink and other widget-internal messages
	var cmds []tea.Cmd
	if h.panel.Focused() {
		cmds = append(cmds, h.panel.UpdateInput(msg))
	}
	if h.jump.IsVisible() {
		var cmd tea.Cmd
		h.jump, cmd = h.jump.Update(msg)
		cmds = append(cmds, cmd)
	}
	return h, tea.Batch(cmds...)
}

func (h *Home) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if h.help.IsVisible() {
		h.help, _ = h.help.Update(msg)
		return nil
	}
	if h.jump.IsVisible() {
		var cmd tea.Cmd
		h.jump, cmd = h.jump.Update(msg)
		return cmd
	}
	if h.reader.IsVisible() {
		var cmd tea.Cmd
		h.reader, cmd = h.reader.Update(msg)
		return cmd
	}

	switch h.ctrl.State() {
	case chat.StateOpen:
		return tea.Batch(h.panel.HandleKey(msg), h.syncChat())
	case chat.StateOpening:
		return nil
	}

	switch {
	case key.Matches(msg, homeKeys.Quit):
		return tea.Quit
	case key.Matches(msg, homeKeys.Chat):
		h.opener.OpenChat()
		return h.syncChat()
	case key.Matches(msg, homeKeys.Jump):
		return h.jump.Show()
	case key.Matches(msg, homeKeys.Blog):
		h.reader.Show()
		return nil
	case key.Matches(msg, homeKeys.Help):
		h.help.Show()
		return nil
	case key.Matches(msg, homeKeys.Reload):
		h.status = "reloading…"
		source := h.source
		return func() tea.Msg { return reloadResultMsg{err: source.Reload()} }
	case key.Matches(msg, homeKeys.Copy):
		return h.copyContact()
	case key.Matches(msg, homeKeys.NextSection):
		h.stepSection(1)
	case key.Matches(msg, homeKeys.PrevSection):
		h.stepSection(-1)
	case key.Matches(msg, homeKeys.Top):
		h.viewport.GotoTop()
	case key.Matches(msg, homeKeys.Bottom):
		h.viewport.GotoBottom()
	default:
		if id, ok := sectionForDigit(msg.String()); ok {
			h.scrollToSection(id)
			break
		}
		if h.scrollLocked() {
			return nil
		}
		var cmd tea.Cmd
		h.viewport, cmd = h.viewport.Update(msg)
		h.updateActive()
		return cmd
	}
	h.updateActive()
	return nil
}

// syncChat turns controller transitions recorded by OnChange into panel and
// overlay animations.
func (h *Home) syncChat() tea.Cmd {
	var cmds []tea.Cmd
	for _, st := range h.chatChanges {
		if st == h.lastChatState {
			continue
		}
		h.lastChatState = st
		cmds = append(cmds, h.panel.Enter(st))
	}
	h.chatChanges = h.chatChanges[:0]
	cmds = append(cmds, h.overlay.Sync())
	return tea.Batch(cmds...)
}

// scrollLocked reports whether the body class list carries the chat lock.
func (h *Home) scrollLocked() bool {
	return h.body.Contains(chat.BodyOpenClass)
}

func (h *Home) modalVisible() bool {
	return h.help.IsVisible() || h.jump.IsVisible() || h.reader.IsVisible()
}

func (h *Home) bodyHeight() int {
	return max(1, h.height-navHeight-menuHeight)
}

func (h *Home) updateSizes() {
	h.viewport.Width = h.width
	h.viewport.Height = h.bodyHeight()
	h.panel.SetSize(h.width, h.bodyHeight())
	h.jump.SetSize(h.width, h.height)
	h.reader.SetSize(h.width, h.height-navHeight)
	h.help.SetSize(h.width, h.height)
	h.relayout()
}

func (h *Home) loadSite() {
	h.site = h.source.Site()
	if h.site == nil {
		h.site = content.Default()
	}
	h.version = h.source.Version()
	h.jump.SetSite(h.site)
	h.reader.SetSite(h.site)
}

// refreshContent picks up a newer site from the source.
func (h *Home) refreshContent() {
	if h.source.Version() == h.version && h.source.Site() == h.site {
		h.status = ""
		return
	}
	h.loadSite()
	h.relayout()
	h.status = "content updated"
	uiLog.Info("content_refreshed", slog.Uint64("version", h.version))
}

// relayout renders the page for the current width, keeping the scroll
// position.
func (h *Home) relayout() {
	if h.width == 0 {
		return
	}
	y := h.viewport.YOffset
	h.layout = layoutPage(h.site, h.width, !h.heroShown)
	h.viewport.SetContent(h.layout.content())
	h.viewport.SetYOffset(y)
	h.spy.Sections = h.layout.sections
	h.updateActive()
}

func (h *Home) updateActive() {
	active := h.spy.Active(h.viewport.YOffset, h.viewport.Height)
	if active == "" {
		active = content.SectionHero
	}
	if active != h.active {
		logging.Aggregate(logging.CompUI, "active_section", slog.String("section", active))
	}
	h.active = active
}

// measureTimeline locates the experience timeline on the laid-out page. The
// page may not be laid out yet on the first attempt, so a failure is retried
// once after timelineRetryDelay; a second failure only logs.
func (h *Home) measureTimeline(attempt int) tea.Cmd {
	if h.layout.timeline.valid() {
		h.timelineMeasured = true
		uiLog.Debug("timeline_measured",
			slog.Int("start", h.layout.timeline.start),
			slog.Int("end", h.layout.timeline.end),
			slog.Int("attempt", attempt))
		return nil
	}
	if attempt == 0 {
		return tea.Tick(timelineRetryDelay, func(time.Time) tea.Msg {
			return timelineMeasureMsg{attempt: 1}
		})
	}
	uiLog.Warn("timeline_measure_failed",
		slog.Int("width", h.width),
		slog.Int("entries", len(h.site.Experience)))
	return nil
}

// timelineProgress is how far the activation line has moved through the
// timeline, in [0,1].
func (h *Home) timelineProgress() (float64, bool) {
	span := h.layout.timeline
	if !h.timelineMeasured || !span.valid() {
		return 0, false
	}
	line := h.viewport.YOffset + int(float64(h.viewport.Height)*scrollspy.DefaultOffsetRatio)
	p := float64(line-span.start) / float64(span.end-span.start)
	return min(1, max(0, p)), true
}

func (h *Home) scrollToSection(id string) {
	if h.scrollLocked() {
		return
	}
	offset, ok := h.spy.Offset(id)
	if !ok {
		return
	}
	h.viewport.SetYOffset(offset)
	h.updateActive()
}

func (h *Home) stepSection(delta int) {
	sections := content.Sections()
	i := h.spy.Index(h.active) + delta
	if i < 0 || i >= len(sections) {
		return
	}
	h.scrollToSection(sections[i])
}

func (h *Home) jumpTo(t JumpTarget) {
	switch t.Kind {
	case JumpSection:
		h.scrollToSection(t.ID)
	case JumpPost:
		if !h.reader.ShowPost(t.ID) {
			h.status = fmt.Sprintf("post %q not found", t.ID)
		}
	}
}

func sectionForDigit(s string) (string, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return "", false
	}
	sections := content.Sections()
	i := int(s[0] - '1')
	if i >= len(sections) {
		return "", false
	}
	return sections[i], true
}

// View renders the page
func (h *Home) View() string {
	if h.width == 0 {
		return "Loading..."
	}
	if h.help.IsVisible() {
		return h.help.View()
	}
	if h.jump.IsVisible() {
		return h.jump.View()
	}
	if h.reader.IsVisible() {
		return h.navView() + "\n" + h.reader.View()
	}

	body := h.overlay.Apply(h.viewport.View())
	if panel := h.panel.View(); panel != "" {
		body = placeBottomRight(body, panel, h.width, h.bodyHeight())
	}
	return h.navView() + "\n" + body + "\n" + h.menuView()
}

// navView renders the brand and section links, dropping links from the
// right when the terminal is too narrow.
func (h *Home) navView() string {
	brand := h.site.Profile.Name
	if brand == "" {
		brand = "folio"
	}
	avail := h.width - 2
	brand = runewidth.Truncate(brand, max(4, avail/3), "…")
	used := runewidth.StringWidth(brand) + 2

	parts := []string{NavBrandStyle.Render(brand)}
	if progress, ok := h.timelineProgress(); ok && h.active == content.SectionExperience {
		bar := timelineBar(progress)
		if used+runewidth.StringWidth(bar)+1 <= avail {
			parts = append(parts, bar)
			used += runewidth.StringWidth(bar) + 1
		}
	}
	ids := content.Sections()
	total := 0
	for _, id := range ids {
		total += runewidth.StringWidth(content.SectionTitle(id)) + 2
	}
	if used+total > avail {
		ids = []string{h.active}
	}
	for _, id := range ids {
		title := content.SectionTitle(id)
		if id == h.active {
			parts = append(parts, NavActiveStyle.Render(title))
		} else {
			parts = append(parts, NavItemStyle.Render(title))
		}
	}
	return NavBarStyle.Width(h.width).Render(strings.Join(parts, NavItemStyle.Render("  ")))
}

func timelineBar(progress float64) string {
	filled := int(progress*timelineBarWidth + 0.5)
	return TimelineFillStyle.Render(strings.Repeat("▰", filled)) +
		TimelineTrackStyle.Render(strings.Repeat("▱", timelineBarWidth-filled))
}

func (h *Home) menuView() string {
	items := [][2]string{
		{"c", "chat"}, {"/", "jump"}, {"b", "blog"}, {"?", "help"}, {"q", "quit"},
	}
	if h.ctrl.State() == chat.StateOpen {
		items = [][2]string{{"enter", "ask"}, {"esc", "close"}}
	}
	var parts []string
	for _, it := range items {
		parts = append(parts, MenuKeyStyle.Render(it[0])+MenuDescStyle.Render(" "+it[1]))
	}
	line := strings.Join(parts, MenuDescStyle.Render("  "))
	switch {
	case h.err != nil:
		line += MenuDescStyle.Render("  ") + ErrorStyle.Render(h.err.Error())
	case h.status != "":
		line += MenuDescStyle.Render("  ") + SuccessStyle.Render(h.status)
	}
	return MenuBarStyle.Width(h.width).Render(ansi.Truncate(line, max(1, h.width-2), "…"))
}

// placeBottomRight draws top over the bottom-right corner of base.
func placeBottomRight(base, top string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	baseLines = baseLines[:height]
	topLines := strings.Split(top, "\n")
	if len(topLines) > height {
		topLines = topLines[len(topLines)-height:]
	}
	topWidth := 0
	for _, l := range topLines {
		topWidth = max(topWidth, ansi.StringWidth(l))
	}
	col := max(0, width-topWidth)
	row := height - len(topLines)
	for i, tl := range topLines {
		left := ansi.Truncate(baseLines[row+i], col, "")
		if pad := col - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		baseLines[row+i] = left + tl
	}
	return strings.Join(baseLines, "\n")
}

// contactDetail picks what "copy contact" copies: the email address, or the
// first profile link when there is none.
func contactDetail(p content.Profile) (label, text string) {
	switch {
	case p.Email != "":
		return "email", p.Email
	case p.GitHub != "":
		return "GitHub link", p.GitHub
	case p.LinkedIn != "":
		return "LinkedIn link", p.LinkedIn
	}
	return "", ""
}

func (h *Home) copyContact() tea.Cmd {
	label, text := contactDetail(h.site.Profile)
	if text == "" {
		h.status = "no contact details to copy"
		return nil
	}
	return func() tea.Msg {
		res, err := copyToClipboard(text)
		return copyResultMsg{label: label, result: res, err: err}
	}
}
