package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/ui"
)

const Version = "0.4.0"

// init sets up color profile for consistent terminal colors across environments
func init() {
	initColorProfile()
}

// initColorProfile configures lipgloss color profile based on terminal capabilities.
// Prefers TrueColor for best visuals, falls back to ANSI256 for compatibility.
func initColorProfile() {
	// FOLIO_COLOR: truecolor, 256, 16, none
	if colorEnv := os.Getenv("FOLIO_COLOR"); colorEnv != "" {
		switch strings.ToLower(colorEnv) {
		case "truecolor", "true", "24bit":
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		case "256", "ansi256":
			lipgloss.SetColorProfile(termenv.ANSI256)
			return
		case "16", "ansi", "basic":
			lipgloss.SetColorProfile(termenv.ANSI)
			return
		case "none", "off", "ascii":
			lipgloss.SetColorProfile(termenv.Ascii)
			return
		}
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	term := os.Getenv("TERM")
	trueColorTerms := []string{
		"xterm-256color",
		"screen-256color",
		"tmux-256color",
		"xterm-direct",
		"alacritty",
		"kitty",
		"wezterm",
	}
	for _, t := range trueColorTerms {
		if strings.Contains(term, t) {
			lipgloss.SetColorProfile(termenv.TrueColor)
			return
		}
	}

	if os.Getenv("WT_SESSION") != "" || // Windows Terminal
		os.Getenv("ITERM_SESSION_ID") != "" || // iTerm2
		os.Getenv("TERMINAL_EMULATOR") != "" || // JetBrains terminals
		os.Getenv("KONSOLE_VERSION") != "" { // Konsole
		lipgloss.SetColorProfile(termenv.TrueColor)
		return
	}

	// Works in SSH, basic terminals, and older emulators
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		switch args[0] {
		case "version", "--version", "-v":
			fmt.Printf("folio v%s\n", Version)
			return
		case "help", "--help", "-h":
			printHelp()
			return
		case "serve":
			handleServe(args[1:])
			return
		case "web":
			runTUI(args[1:], true)
			return
		case "posts":
			handlePosts(args[1:])
			return
		case "inbox":
			handleInbox(args[1:])
			return
		default:
			fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
			printHelp()
			os.Exit(1)
		}
	}

	runTUI(nil, false)
}

// runTUI starts the terminal page. withWeb also serves the site, sharing one
// content store and watcher with the TUI.
func runTUI(args []string, withWeb bool) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: folio needs an interactive terminal.")
		fmt.Fprintln(os.Stderr, "Use 'folio serve' to run the web site without the TUI.")
		os.Exit(1)
	}

	a, err := newApp(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	chatSettings := a.cfg.ChatSettings()
	matcher, err := chat.MatcherFor(chatSettings.AnimationMatch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ui.SetVersion(Version)
	ui.InitTheme(a.cfg.ResolveTheme())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if withWeb {
		opts, err := parseWebFlags("web", args, a.webDefaults())
		if err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		server, cleanup, err := a.buildWebServer(opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		g.Go(func() error {
			return a.runServer(gctx, server)
		})
	} else {
		g.Go(func() error {
			return a.watchContent(gctx)
		})
	}

	home := ui.NewHome(ui.HomeOptions{
		Content:           a.store,
		Reloads:           a.reloadChan(),
		Chat:              chatSettings,
		Matcher:           matcher,
		FollowSystemTheme: a.cfg.ThemeName() == "system",
	})
	defer home.Close()

	p := tea.NewProgram(
		home,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// A server failure ends the TUI so the error is not hidden behind it.
	go func() {
		<-gctx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil {
		cliLog.Error("background_failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf("folio v%s\n", Version)
	fmt.Println("Portfolio, blog and contact form for the terminal and the browser")
	fmt.Println()
	fmt.Println("Usage: folio [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)           Open the portfolio in the terminal")
	fmt.Println("  web              Open the TUI and serve the site alongside")
	fmt.Println("  serve            Serve the site without the TUI")
	fmt.Println("  posts [slug]     List blog posts, or print one")
	fmt.Println("  inbox            List stored contact messages")
	fmt.Println("  version          Show version")
	fmt.Println("  help             Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  FOLIO_HOME             Data and config directory (default: ~/.folio)")
	fmt.Println("  FOLIO_DEBUG            Write debug logs to $FOLIO_HOME/folio.log")
	fmt.Println("  FOLIO_COLOR            Color profile: truecolor, 256, 16, none")
	fmt.Println("  FOLIO_MAIL_PROVIDER    Contact mail provider: resend, smtp, log")
	fmt.Println("  FOLIO_OTEL_ENDPOINT    OTLP/HTTP endpoint for traces")
	fmt.Println()
	fmt.Println("Keys (TUI):")
	fmt.Println("  c / Enter   Open chat         Esc   Close chat")
	fmt.Println("  /           Jump to section   b     Blog")
	fmt.Println("  ?           Help              q     Quit")
}
