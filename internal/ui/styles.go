package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// currentTheme holds the active theme (set at init)
var currentTheme Theme = ThemeDark

type palette struct {
	Bg, Surface, Border, Text, TextDim lipgloss.Color
	Accent, Purple, Cyan, Green        lipgloss.Color
	Yellow, Red                        lipgloss.Color
}

// Dark Theme - Tokyo Night
var darkColors = palette{
	Bg:      lipgloss.Color("#1a1b26"),
	Surface: lipgloss.Color("#24283b"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Purple:  lipgloss.Color("#bb9af7"),
	Cyan:    lipgloss.Color("#7dcfff"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = palette{
	Bg:      lipgloss.Color("#d5d6db"),
	Surface: lipgloss.Color("#e9e9ec"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Purple:  lipgloss.Color("#7847bd"),
	Cyan:    lipgloss.Color("#166775"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorSurface lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorPurple  lipgloss.Color
	ColorCyan    lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
)

// themeMu protects global color/style variables during live theme switches.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	p := darkColors
	currentTheme = ThemeDark
	if theme == "light" {
		p = lightColors
		currentTheme = ThemeLight
	}
	ColorBg = p.Bg
	ColorSurface = p.Surface
	ColorBorder = p.Border
	ColorText = p.Text
	ColorTextDim = p.TextDim
	ColorAccent = p.Accent
	ColorPurple = p.Purple
	ColorCyan = p.Cyan
	ColorGreen = p.Green
	ColorYellow = p.Yellow
	ColorRed = p.Red
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

func init() {
	InitTheme("dark")
}

// Base Styles
var (
	TitleStyle   lipgloss.Style
	DimStyle     lipgloss.Style
	ErrorStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
)

// Nav bar
var (
	NavBarStyle    lipgloss.Style
	NavItemStyle   lipgloss.Style
	NavActiveStyle lipgloss.Style
	NavBrandStyle  lipgloss.Style
)

// Page sections
var (
	HeroNameStyle      lipgloss.Style
	HeroTitleStyle     lipgloss.Style
	HeroCTAStyle       lipgloss.Style
	SectionTitleStyle  lipgloss.Style
	CardStyle          lipgloss.Style
	CardTitleStyle     lipgloss.Style
	TagStyle           lipgloss.Style
	TimelineDateStyle  lipgloss.Style
	TimelineDotStyle   lipgloss.Style
	TimelineFillStyle  lipgloss.Style
	TimelineTrackStyle lipgloss.Style
	QuoteStyle         lipgloss.Style
)

// Chat panel
var (
	PillStyle         lipgloss.Style
	ChatPanelStyle    lipgloss.Style
	ChatTitleStyle    lipgloss.Style
	ChatQuestionStyle lipgloss.Style
	ChatAnswerStyle   lipgloss.Style
	OverlayStyle      lipgloss.Style
)

// Menu Bar Styles
var (
	MenuBarStyle  lipgloss.Style
	MenuKeyStyle  lipgloss.Style
	MenuDescStyle lipgloss.Style
)

// Dialog Styles
var (
	DialogBoxStyle   lipgloss.Style
	DialogTitleStyle lipgloss.Style
	SearchMatchStyle lipgloss.Style
	SelectedRowStyle lipgloss.Style
)

func initStyles() {
	TitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	DimStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)

	NavBarStyle = lipgloss.NewStyle().
		Background(ColorSurface).
		Padding(0, 1)
	NavItemStyle = lipgloss.NewStyle().Foreground(ColorTextDim).Background(ColorSurface)
	NavActiveStyle = lipgloss.NewStyle().Foreground(ColorAccent).Background(ColorSurface).Bold(true).Underline(true)
	NavBrandStyle = lipgloss.NewStyle().Foreground(ColorPurple).Background(ColorSurface).Bold(true)

	HeroNameStyle = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	HeroTitleStyle = lipgloss.NewStyle().Foreground(ColorCyan)
	HeroCTAStyle = lipgloss.NewStyle().
		Foreground(ColorBg).
		Background(ColorAccent).
		Bold(true).
		Padding(0, 2)
	SectionTitleStyle = lipgloss.NewStyle().
		Foreground(ColorPurple).
		Bold(true).
		MarginTop(1).
		MarginBottom(1)
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)
	CardTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	TagStyle = lipgloss.NewStyle().Foreground(ColorCyan).Background(ColorSurface).Padding(0, 1)
	TimelineDateStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	TimelineDotStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	TimelineFillStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	TimelineTrackStyle = lipgloss.NewStyle().Foreground(ColorBorder)
	QuoteStyle = lipgloss.NewStyle().Foreground(ColorText).Italic(true)

	PillStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Foreground(ColorAccent).
		Bold(true).
		Padding(0, 1)
	ChatPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Background(ColorBg).
		Padding(0, 1)
	ChatTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	ChatQuestionStyle = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	ChatAnswerStyle = lipgloss.NewStyle().Foreground(ColorText)
	OverlayStyle = lipgloss.NewStyle().Foreground(ColorBorder).Faint(true)

	MenuBarStyle = lipgloss.NewStyle().Background(ColorSurface).Padding(0, 1)
	MenuKeyStyle = lipgloss.NewStyle().Foreground(ColorAccent).Background(ColorSurface).Bold(true)
	MenuDescStyle = lipgloss.NewStyle().Foreground(ColorTextDim).Background(ColorSurface)

	DialogBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(1, 2)
	DialogTitleStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).MarginBottom(1)
	SearchMatchStyle = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	SelectedRowStyle = lipgloss.NewStyle().Foreground(ColorBg).Background(ColorAccent)
}

// GlamourStyle returns the glamour standard style matching the active theme.
func GlamourStyle() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if currentTheme == ThemeLight {
		return "light"
	}
	return "dark"
}
