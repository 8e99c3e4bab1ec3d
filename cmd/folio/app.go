package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/logging"
	"github.com/asheshgoplani/folio/internal/telemetry"
)

var cliLog = logging.ForComponent(logging.CompUI)

// app is the state shared by every command that serves the site: config,
// logging, tracing and the content store.
type app struct {
	cfg     *config.Config
	baseDir string
	store   *content.Store

	subsMu sync.Mutex
	subs   []func()

	shutdownTelemetry func(context.Context) error
	stopSignals       func()
}

// newApp loads config and content and starts logging. headless forces
// file logging so a server run always leaves a trail.
func newApp(headless bool) (*app, error) {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", cfgErr)
	}
	if err := config.CreateExample(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not write example config: %v\n", err)
	}
	baseDir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging()
	if headless && logCfg.LogDir == "" {
		logCfg.LogDir = baseDir
	}
	logging.Init(logCfg)

	a := &app{cfg: cfg, baseDir: baseDir}
	a.stopSignals = a.handleDumpSignal()

	shutdown, err := telemetry.Setup(context.Background(), "folio", Version)
	if err != nil {
		cliLog.Warn("telemetry_disabled", slog.String("error", err.Error()))
	}
	a.shutdownTelemetry = shutdown

	a.store = loadStore(cfg.ContentDir())
	return a, nil
}

// loadStore reads dir, falling back to the built-in site when it cannot be
// parsed so the page still renders.
func loadStore(dir string) *content.Store {
	store, err := content.NewStore(dir)
	if err != nil {
		cliLog.Warn("content_load_failed",
			slog.String("dir", dir),
			slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Warning: %v (showing built-in content)\n", err)
		return content.NewStaticStore(content.Default())
	}
	return store
}

// handleDumpSignal writes the log ring buffer to baseDir on SIGUSR1.
func (a *app) handleDumpSignal() func() {
	usr1Chan := make(chan os.Signal, 1)
	signal.Notify(usr1Chan, syscall.SIGUSR1)
	go func() {
		for range usr1Chan {
			dumpPath := filepath.Join(a.baseDir, fmt.Sprintf("crash-dump-%d.jsonl", time.Now().Unix()))
			if err := logging.DumpRingBuffer(dumpPath); err != nil {
				cliLog.Error("crash_dump_failed", slog.String("error", err.Error()))
			} else {
				cliLog.Info("crash_dump_written", slog.String("path", dumpPath))
			}
		}
	}()
	return func() {
		signal.Stop(usr1Chan)
		close(usr1Chan)
	}
}

// onContentReload registers fn to run after every successful reload.
func (a *app) onContentReload(fn func()) {
	a.subsMu.Lock()
	a.subs = append(a.subs, fn)
	a.subsMu.Unlock()
}

func (a *app) notifyReload() {
	a.subsMu.Lock()
	subs := append([]func(){}, a.subs...)
	a.subsMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// watchContent reloads the store on file changes until ctx is done. It is a
// no-op when watching is disabled or the store has no directory.
func (a *app) watchContent(ctx context.Context) error {
	if !a.cfg.WatchContent() || a.store.Dir() == "" {
		return nil
	}
	w, err := content.NewWatcher(a.store.Dir())
	if err != nil {
		cliLog.Warn("content_watch_disabled", slog.String("error", err.Error()))
		return nil
	}
	go w.Start()
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Reloads():
			if !ok {
				return nil
			}
			if err := a.store.Reload(); err != nil {
				continue
			}
			a.notifyReload()
		}
	}
}

// reloadChan returns a channel fed by content reloads. Sends never block;
// a pending signal already covers a newer reload.
func (a *app) reloadChan() <-chan struct{} {
	ch := make(chan struct{}, 1)
	a.onContentReload(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch
}

// Close flushes tracing and logging.
func (a *app) Close() {
	if a.shutdownTelemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTelemetry(ctx); err != nil {
			cliLog.Warn("telemetry_shutdown_failed", slog.String("error", err.Error()))
		}
		cancel()
	}
	if a.stopSignals != nil {
		a.stopSignals()
	}
	logging.Shutdown()
}
