package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/mail"
	"github.com/asheshgoplani/folio/internal/statedb"
	"github.com/asheshgoplani/folio/internal/web"
)

const shutdownTimeout = 5 * time.Second

// webOptions are the flags shared by "web" and "serve".
type webOptions struct {
	listen      string
	token       string
	push        bool
	pushSubject string
	envFiles    []string
	noStore     bool
}

// parseWebFlags parses web-specific flags on top of the config defaults.
// It returns flag.ErrHelp when usage was printed.
func parseWebFlags(name string, args []string, defaults webOptions) (webOptions, error) {
	opts := defaults
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.listen, "listen", defaults.listen, "Listen address for the web server")
	fs.StringVar(&opts.token, "token", defaults.token, "Owner token for admin and push endpoints")
	fs.BoolVar(&opts.push, "push", defaults.push, "Enable web push notifications for new contact messages")
	fs.StringVar(&opts.pushSubject, "push-subject", defaults.pushSubject, "VAPID subject used for web push notifications")
	envFile := fs.String("env-file", "", "Comma-separated env files with mail settings (default: ./.env)")
	fs.BoolVar(&opts.noStore, "no-store", false, "Do not persist contact messages or visitors")

	fs.Usage = func() {
		fmt.Printf("Usage: folio %s [options]\n", name)
		fmt.Println()
		if name == "serve" {
			fmt.Println("Serve the portfolio site without the terminal UI.")
		} else {
			fmt.Println("Start the TUI with the web site served alongside.")
		}
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Printf("  folio %s\n", name)
		fmt.Printf("  folio %s --listen 0.0.0.0:8080\n", name)
		fmt.Printf("  folio %s --push --push-subject mailto:me@example.com\n", name)
	}

	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if strings.TrimSpace(opts.listen) == "" {
		return opts, errors.New("--listen must not be empty")
	}
	if opts.push && strings.TrimSpace(opts.pushSubject) == "" {
		return opts, errors.New("--push requires --push-subject")
	}
	if *envFile != "" {
		for _, f := range strings.Split(*envFile, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.envFiles = append(opts.envFiles, f)
			}
		}
	}
	return opts, nil
}

// webDefaults are the flag defaults taken from config.toml.
func (a *app) webDefaults() webOptions {
	ws := a.cfg.WebSettings()
	return webOptions{
		listen:      ws.Listen,
		token:       ws.Token,
		push:        ws.Push,
		pushSubject: firstNonEmpty(ws.PushSubject, "mailto:folio@localhost"),
	}
}

// buildWebServer wires config, mail, storage and push keys into a server.
// The returned cleanup closes the database.
func (a *app) buildWebServer(opts webOptions) (*web.Server, func(), error) {
	ws := a.cfg.WebSettings()
	chatSettings := a.cfg.ChatSettings()
	matcher, err := chat.MatcherFor(chatSettings.AnimationMatch)
	if err != nil {
		return nil, nil, err
	}

	mailCfg, err := mail.LoadConfig(opts.envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("mail config: %w", err)
	}
	if err := mailCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: contact form disabled: %v\n", err)
	}

	cleanup := func() {}
	var db *statedb.StateDB
	if !opts.noStore {
		db, err = openStateDB(a.baseDir)
		if err != nil {
			// The site still serves; messages just are not kept.
			cliLog.Warn("statedb_unavailable", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Warning: %v (messages will not be stored)\n", err)
		} else {
			cleanup = func() { _ = db.Close() }
		}
	}

	var pushKeys web.VAPIDKeys
	if opts.push {
		var generated bool
		pushKeys, generated, err = web.EnsurePushVAPIDKeys(a.baseDir, opts.pushSubject)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to prepare web push keys: %w", err)
		}
		if generated {
			fmt.Println("Push keys: generated new VAPID keypair")
		} else {
			fmt.Println("Push keys: using existing VAPID keypair")
		}
	}

	server := web.NewServer(web.Config{
		ListenAddr:          opts.listen,
		Token:               opts.token,
		Content:             a.store,
		Mailer:              mail.New(mailCfg),
		Store:               db,
		ChatMatcher:         matcher,
		ContactPerMinute:    ws.ContactPerMinute,
		TrackVisitors:       ws.TrackVisitors != nil && *ws.TrackVisitors,
		TrustProxy:          ws.TrustProxy,
		AllowedOrigins:      ws.AllowedOrigins,
		PushVAPIDPublicKey:  pushKeys.PublicKey,
		PushVAPIDPrivateKey: pushKeys.PrivateKey,
		PushVAPIDSubject:    pushKeys.Subject,
		MailTimeout:         mailCfg.Timeout,
	})
	a.onContentReload(server.NotifyContentChanged)
	return server, cleanup, nil
}

// openStateDB opens and migrates the database in baseDir.
func openStateDB(baseDir string) (*statedb.StateDB, error) {
	db, err := statedb.Open(filepath.Join(baseDir, statedb.FileName))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// runServer starts server and the content watcher, and stops both when ctx
// ends.
func (a *app) runServer(ctx context.Context, server *web.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.watchContent(gctx)
	})
	g.Go(func() error {
		if err := server.Start(); err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleServe runs the site without the TUI until SIGINT or SIGTERM.
func handleServe(args []string) {
	a, err := newApp(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	opts, err := parseWebFlags("serve", args, a.webDefaults())
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %s on http://%s\n", homeRelative(firstNonEmpty(a.store.Dir(), "built-in content")), opts.listen)
	if err := a.runServer(ctx, server); err != nil {
		cliLog.Error("serve_failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
