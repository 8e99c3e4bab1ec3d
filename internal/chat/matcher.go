package chat

import (
	"fmt"
	"strings"
)

// Completion is what a finished animation means to the controller.
type Completion int

const (
	CompletionNone Completion = iota
	CompletionOpened
	CompletionClosed
)

// Animation ids emitted by the panel. The desktop/mobile split follows the
// width breakpoint the panel picks its keyframes from.
const (
	AnimOpenDesktop  = "open-pill-desktop"
	AnimOpenMobile   = "open-pill-mobile"
	AnimCloseDesktop = "close-pill-desktop"
	AnimCloseMobile  = "close-pill-mobile"

	openPrefix  = "open-pill"
	closePrefix = "close-pill"
)

// Matcher classifies animation-end names.
type Matcher interface {
	Classify(name string) Completion
}

// PrefixMatcher treats any name starting with open-pill or close-pill as a
// completion, so differently parameterized keyframes share one logical name.
type PrefixMatcher struct{}

func (PrefixMatcher) Classify(name string) Completion {
	switch {
	case strings.HasPrefix(name, openPrefix):
		return CompletionOpened
	case strings.HasPrefix(name, closePrefix):
		return CompletionClosed
	}
	return CompletionNone
}

// ExactMatcher only accepts the enumerated animation ids.
type ExactMatcher struct{}

func (ExactMatcher) Classify(name string) Completion {
	switch name {
	case AnimOpenDesktop, AnimOpenMobile:
		return CompletionOpened
	case AnimCloseDesktop, AnimCloseMobile:
		return CompletionClosed
	}
	return CompletionNone
}

// Match modes accepted by MatcherFor.
const (
	MatchPrefix = "prefix"
	MatchExact  = "exact"
)

// MatcherFor resolves a configured match mode. Empty means prefix.
func MatcherFor(mode string) (Matcher, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", MatchPrefix:
		return PrefixMatcher{}, nil
	case MatchExact:
		return ExactMatcher{}, nil
	}
	return nil, fmt.Errorf("chat: unknown animation match mode %q", mode)
}

// OpenAnimation returns the open keyframe id for a layout.
func OpenAnimation(desktop bool) string {
	if desktop {
		return AnimOpenDesktop
	}
	return AnimOpenMobile
}

// CloseAnimation returns the close keyframe id for a layout.
func CloseAnimation(desktop bool) string {
	if desktop {
		return AnimCloseDesktop
	}
	return AnimCloseMobile
}
