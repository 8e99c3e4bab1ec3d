package ui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	dark "github.com/thiagokokada/dark-mode-go"
)

// themeChangedMsg carries the OS appearance after a change.
type themeChangedMsg struct {
	dark bool
}

var watchDarkMode = func(ctx context.Context) (<-chan bool, <-chan error, error) {
	return dark.WatchDarkMode(ctx)
}

// systemThemeChanges follows the OS dark mode setting for the "system"
// theme. The channel holds only the latest appearance and closes when ctx
// ends or the OS watcher stops.
func systemThemeChanges(ctx context.Context) (<-chan bool, error) {
	events, errs, err := watchDarkMode(ctx)
	if err != nil {
		return nil, err
	}
	latest := make(chan bool, 1)
	go func() {
		defer close(latest)
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				uiLog.Warn("theme_watcher_error", slog.String("error", err.Error()))
			case isDark, ok := <-events:
				if !ok {
					return
				}
				// Sole sender: after the drain there is room.
				select {
				case <-latest:
				default:
				}
				latest <- isDark
			}
		}
	}()
	return latest, nil
}

// nextThemeChange waits for the next appearance change.
func nextThemeChange(changes <-chan bool) tea.Cmd {
	return func() tea.Msg {
		isDark, ok := <-changes
		if !ok {
			return nil
		}
		return themeChangedMsg{dark: isDark}
	}
}
