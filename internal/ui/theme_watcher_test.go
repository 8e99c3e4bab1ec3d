package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubDarkMode(t *testing.T) (chan bool, chan error) {
	t.Helper()
	events := make(chan bool)
	errs := make(chan error)
	orig := watchDarkMode
	watchDarkMode = func(context.Context) (<-chan bool, <-chan error, error) {
		return events, errs, nil
	}
	t.Cleanup(func() { watchDarkMode = orig })
	return events, errs
}

func TestSystemThemeChangesKeepsLatest(t *testing.T) {
	events, errs := stubDarkMode(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := systemThemeChanges(ctx)
	require.NoError(t, err)

	events <- true
	events <- false
	// The loop takes this only after it has finished with false.
	errs <- errors.New("dbus hiccup")

	require.Len(t, changes, 1)
	msg := nextThemeChange(changes)()
	assert.Equal(t, themeChangedMsg{dark: false}, msg)

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-changes
		return !open
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, nextThemeChange(changes)())
}

func TestSystemThemeChangesInitError(t *testing.T) {
	orig := watchDarkMode
	watchDarkMode = func(context.Context) (<-chan bool, <-chan error, error) {
		return nil, nil, errors.New("unsupported")
	}
	defer func() { watchDarkMode = orig }()

	_, err := systemThemeChanges(context.Background())
	assert.Error(t, err)
}
