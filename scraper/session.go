package scraper

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is the browser surface the workflows run against. The production
// implementation is BrowserSession; tests substitute fixture-backed fakes.
// A Session is exclusively owned by one workflow invocation and is never
// shared.
type Session interface {
	Navigate(ctx context.Context, url string) (PageState, error)
	Snapshot() (string, error)
	ScrollAndCollect(ctx context.Context, stop StopCondition) ([]Snapshot, error)
	AwaitManualResolution(ctx context.Context, pollInterval, timeout time.Duration) error
	Headless() bool
	Close()
}

// scrollContainerJS locates the listings pane (Zillow renders results in a
// dedicated scrollable DIV, not the document body) and scrolls it by the
// given step, reporting whether the container is exhausted.
const scrollContainerJS = `(step) => {
	const el = document.getElementById('search-page-list-container')
		|| document.querySelector('div.search-page-list-container')
		|| document.querySelector("[class*='search-page-list-container']")
		|| document.scrollingElement;
	el.scrollBy(0, step);
	return el.scrollTop + el.clientHeight >= el.scrollHeight - 100;
}`

// BrowserSession owns one live Chromium instance driven through Playwright.
type BrowserSession struct {
	pw       *playwright.Playwright
	browser  playwright.BrowserContext
	page     playwright.Page
	opts     Options
	detector ChallengeDetector

	closeOnce sync.Once
}

// OpenSession launches a persistent browser context configured to minimize
// automation fingerprints. Launch failures wrap ErrSessionStart and are not
// retried.
func OpenSession(ctx context.Context, opts Options) (Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: start driver: %v", ErrSessionStart, err)
	}

	browser, err := pw.Chromium.LaunchPersistentContext(opts.UserDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(opts.Headless),
			Args: []string{
				"--disable-blink-features=AutomationControlled",
				"--disable-dev-shm-usage",
				"--no-sandbox",
			},
		})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: launch browser: %v", ErrSessionStart, err)
	}

	// Drop the webdriver flag before any page script runs.
	if err := browser.AddInitScript(playwright.Script{
		Content: playwright.String(`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`),
	}); err != nil {
		log.Printf("session: init script failed: %v", err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("%w: open page: %v", ErrSessionStart, err)
	}

	s := &BrowserSession{
		pw:       pw,
		browser:  browser,
		page:     page,
		opts:     opts,
		detector: DetectChallenge,
	}
	if ctx.Err() != nil {
		s.Close()
		return nil, ctx.Err()
	}
	return s, nil
}

func (s *BrowserSession) Headless() bool {
	return s.opts.Headless
}

// Navigate loads a URL and waits, cooperatively and bounded by NavTimeout,
// until the page shows either real content or a challenge interstitial.
func (s *BrowserSession) Navigate(ctx context.Context, url string) (PageState, error) {
	log.Printf("session: navigating to %s", url)

	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(s.opts.NavTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return StateTimeout, fmt.Errorf("%w: %v", ErrNavigationTimeout, err)
	}

	s.simulateHumanBehavior()

	deadline := time.Now().Add(s.opts.NavTimeout)
	for time.Now().Before(deadline) {
		html, err := s.page.Content()
		if err == nil {
			if s.detector(html) {
				log.Printf("session: challenge detected on %s", url)
				return StateChallenge, nil
			}
			if hasContent(html) {
				return StateReady, nil
			}
		}
		if err := sleepCtx(ctx, 500*time.Millisecond); err != nil {
			return StateTimeout, err
		}
	}

	log.Printf("session: no recognized state on %s within %s", url, s.opts.NavTimeout)
	return StateTimeout, nil
}

// Snapshot returns the current full page markup.
func (s *BrowserSession) Snapshot() (string, error) {
	return s.page.Content()
}

// ScrollAndCollect drives the lazy-load heuristic: bounded randomized
// scroll steps against the listings container, a settle wait after each,
// then a snapshot and an item-count observation fed to the stop condition.
// A challenge appearing mid-scroll ends the pass with ErrChallengePresented
// and the snapshots collected so far.
func (s *BrowserSession) ScrollAndCollect(ctx context.Context, stop StopCondition) ([]Snapshot, error) {
	var snaps []Snapshot

	for {
		if err := ctx.Err(); err != nil {
			return snaps, err
		}

		step := s.opts.ScrollStepMin + rand.Intn(s.opts.ScrollStepMax-s.opts.ScrollStepMin+1)
		atBottom, err := s.page.Evaluate(scrollContainerJS, step)
		if err != nil {
			log.Printf("session: scroll evaluate failed: %v", err)
		}

		settle := s.opts.ScrollSettle
		if b, ok := atBottom.(bool); ok && b {
			// Bottom of rendered content: give the lazy loader room.
			settle += s.opts.ScrollSettle
		}
		if err := sleepCtx(ctx, settle); err != nil {
			return snaps, err
		}

		html, err := s.page.Content()
		if err != nil {
			return snaps, fmt.Errorf("snapshot: %w", err)
		}
		if s.detector(html) {
			return snaps, ErrChallengePresented
		}

		count := countCards(html)
		snaps = append(snaps, Snapshot{HTML: html, CardCount: count, TakenAt: time.Now()})
		log.Printf("session: scroll iteration %d, %d cards visible", len(snaps), count)

		if stop.Done(count) {
			return snaps, nil
		}
	}
}

// AwaitManualResolution suspends automatic progress while a human clears
// the challenge in the visible browser window, polling until the challenge
// marker disappears. Headless sessions fail fast: there is no window for a
// human to act in.
func (s *BrowserSession) AwaitManualResolution(ctx context.Context, pollInterval, timeout time.Duration) error {
	if s.opts.Headless {
		return ErrUnresolvableChallenge
	}

	log.Printf("session: challenge requires manual resolution, waiting up to %s", timeout)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return err
		}
		html, err := s.page.Content()
		if err != nil {
			continue
		}
		if !s.detector(html) {
			log.Println("session: challenge cleared")
			return nil
		}
	}
	return fmt.Errorf("%w: not resolved within %s", ErrChallengePresented, timeout)
}

// Close releases the page, context and driver. Safe to call more than once
// and from deferred paths.
func (s *BrowserSession) Close() {
	s.closeOnce.Do(func() {
		if s.page != nil {
			s.page.Close()
		}
		if s.browser != nil {
			s.browser.Close()
		}
		if s.pw != nil {
			s.pw.Stop()
		}
		log.Println("session: closed")
	})
}

func (s *BrowserSession) simulateHumanBehavior() {
	s.page.Mouse().Move(float64(300+rand.Intn(400)), float64(200+rand.Intn(300)))
	s.page.WaitForTimeout(float64(200 + rand.Intn(300)))
	s.page.Mouse().Move(float64(400+rand.Intn(300)), float64(300+rand.Intn(200)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
