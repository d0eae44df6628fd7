package scraper

import "errors"

var (
	// ErrSessionStart means the browser driver or binary could not be
	// launched. Fatal, never retried.
	ErrSessionStart = errors.New("browser session could not be started")

	// ErrNavigationTimeout means a page did not reach a recognized state
	// within the deadline. Retried a bounded number of times.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrChallengePresented means an anti-automation interstitial replaced
	// the requested content and was not resolved. Never silently retried.
	ErrChallengePresented = errors.New("challenge presented")

	// ErrUnresolvableChallenge means a challenge appeared in a headless
	// session, where manual resolution is impossible.
	ErrUnresolvableChallenge = errors.New("challenge presented in headless session")
)

// PageState classifies the outcome of a navigation.
type PageState int

const (
	StateReady PageState = iota
	StateChallenge
	StateTimeout
)

func (s PageState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateChallenge:
		return "challenge"
	case StateTimeout:
		return "timeout"
	}
	return "unknown"
}
