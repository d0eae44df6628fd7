// Package scraper owns the browser session and the two retrieval
// workflows: bulk listing search and single-property detail lookup. One
// invocation owns one session for its whole lifetime; callers wanting
// parallelism run independent invocations.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"zillow-scraper/identity"
	"zillow-scraper/models"
	"zillow-scraper/parser"
)

const searchBaseURL = "https://www.zillow.com/homes/"

// Options tune one workflow invocation. Zero values fall back to defaults,
// so callers set only what they care about.
type Options struct {
	Headless bool

	// Scroll heuristics.
	MaxScrollIterations int
	StableIterations    int
	ScrollSettle        time.Duration
	ScrollStepMin       int
	ScrollStepMax       int

	// Waits and retries.
	NavTimeout            time.Duration
	ChallengeWaitTimeout  time.Duration
	ChallengePollInterval time.Duration
	MaxRetries            int
	RetryBaseDelay        time.Duration

	// Address resolution for detail lookups.
	MatchThreshold float64

	UserDataDir string
}

func (o Options) withDefaults() Options {
	if o.MaxScrollIterations == 0 {
		o.MaxScrollIterations = 40
	}
	if o.StableIterations == 0 {
		o.StableIterations = 3
	}
	if o.ScrollSettle == 0 {
		o.ScrollSettle = 1500 * time.Millisecond
	}
	if o.ScrollStepMin == 0 {
		o.ScrollStepMin = 100
	}
	if o.ScrollStepMax <= o.ScrollStepMin {
		o.ScrollStepMax = o.ScrollStepMin + 200
	}
	if o.NavTimeout == 0 {
		o.NavTimeout = 60 * time.Second
	}
	if o.ChallengeWaitTimeout == 0 {
		o.ChallengeWaitTimeout = 2 * time.Minute
	}
	if o.ChallengePollInterval == 0 {
		o.ChallengePollInterval = 2 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.RetryBaseDelay == 0 {
		o.RetryBaseDelay = 2 * time.Second
	}
	if o.MatchThreshold == 0 {
		o.MatchThreshold = 0.6
	}
	if o.UserDataDir == "" {
		o.UserDataDir = "browser_data"
	}
	return o
}

// RunJournal records workflow executions. Implemented by the SQLite store;
// optional.
type RunJournal interface {
	StartRun(run *models.ScrapeRun) (int64, error)
	FinishRun(run *models.ScrapeRun) error
	Log(runID *int64, level models.LogLevel, message string) error
}

// ListingSink receives deduplicated summaries after a successful listing
// search. Implemented by the Postgres store; optional.
type ListingSink interface {
	WriteListings(ctx context.Context, listings []models.ListingSummary) error
}

// Orchestrator sequences session and parser calls per retrieval mode.
type Orchestrator struct {
	opts       Options
	parser     *parser.Parser
	retry      retrier
	newSession func(ctx context.Context, opts Options) (Session, error)

	journal RunJournal
	sink    ListingSink
}

func NewOrchestrator(opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		opts:       opts,
		parser:     parser.New(),
		retry:      retrier{maxAttempts: opts.MaxRetries, baseDelay: opts.RetryBaseDelay},
		newSession: OpenSession,
	}
}

// SetParser swaps in a parser with overridden selectors.
func (o *Orchestrator) SetParser(p *parser.Parser) { o.parser = p }

func (o *Orchestrator) SetJournal(j RunJournal) { o.journal = j }

func (o *Orchestrator) SetSink(s ListingSink) { o.sink = s }

// FetchListings runs the listing-search workflow against a search URL and
// returns deduplicated summaries. An empty slice with a nil error means the
// search genuinely matched nothing; failures always carry an error.
func (o *Orchestrator) FetchListings(ctx context.Context, searchURL string) ([]models.ListingSummary, error) {
	run := o.startRun("listings", searchURL)

	summaries, snapCount, err := o.collectListings(ctx, searchURL)
	run.Snapshots = snapCount
	run.ListingsFound = len(summaries)
	o.finishRun(run, err)
	if err != nil {
		return nil, err
	}

	if o.sink != nil && len(summaries) > 0 {
		if serr := o.sink.WriteListings(ctx, summaries); serr != nil {
			log.Printf("orchestrator: listing sink failed: %v", serr)
		}
	}
	return summaries, nil
}

func (o *Orchestrator) collectListings(ctx context.Context, searchURL string) ([]models.ListingSummary, int, error) {
	sess, err := o.newSession(ctx, o.opts)
	if err != nil {
		return nil, 0, err
	}
	defer sess.Close()

	if err := o.navigateReady(ctx, sess, searchURL); err != nil {
		return nil, 0, err
	}

	snaps, err := o.scrollWithResolution(ctx, sess)
	if err != nil {
		return nil, len(snaps), err
	}

	var all []models.ListingSummary
	for _, snap := range snaps {
		all = append(all, o.parser.ParseListingSummaries(snap.HTML)...)
	}
	deduped := models.DedupeSummaries(all)
	log.Printf("orchestrator: %d snapshots, %d raw records, %d unique", len(snaps), len(all), len(deduped))
	return deduped, len(snaps), nil
}

// FetchPropertyByAddress runs the detail-lookup workflow. The target is
// either a detail-page URL or a free-text address; addresses resolve
// through a search-and-select step first. A nil detail with a nil error
// means not found.
func (o *Orchestrator) FetchPropertyByAddress(ctx context.Context, target string) (*models.PropertyDetail, error) {
	run := o.startRun("detail", target)

	detail, err := o.lookupDetail(ctx, target)
	if detail != nil {
		run.ListingsFound = 1
	}
	o.finishRun(run, err)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (o *Orchestrator) lookupDetail(ctx context.Context, target string) (*models.PropertyDetail, error) {
	sess, err := o.newSession(ctx, o.opts)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	detailURL := target
	if !isDetailURL(target) {
		detailURL, err = o.resolveAddress(ctx, sess, target)
		if err != nil {
			return nil, err
		}
		if detailURL == "" {
			log.Printf("orchestrator: no listing matched %q", target)
			return nil, nil
		}
	}

	if err := o.navigateReady(ctx, sess, detailURL); err != nil {
		return nil, err
	}

	html, err := sess.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("detail snapshot: %w", err)
	}
	detail := o.parser.ParsePropertyDetail(html)
	if detail == nil {
		return nil, nil
	}
	if detail.URL == "" {
		detail.URL = detailURL
	}
	return detail, nil
}

// resolveAddress turns a free-text address into a canonical detail URL by
// searching for it and picking the best-matching summary. Exact normalized
// equality wins; otherwise the closest candidate at or above the configured
// threshold. Empty return means nothing matched.
func (o *Orchestrator) resolveAddress(ctx context.Context, sess Session, address string) (string, error) {
	searchURL := searchBaseURL + url.PathEscape(strings.ReplaceAll(strings.TrimSpace(address), " ", "-")) + "_rb/"

	if err := o.navigateReady(ctx, sess, searchURL); err != nil {
		return "", err
	}

	snaps, err := o.scrollWithResolution(ctx, sess)
	if err != nil {
		return "", err
	}

	var candidates []models.ListingSummary
	for _, snap := range snaps {
		candidates = append(candidates, o.parser.ParseListingSummaries(snap.HTML)...)
	}
	candidates = models.DedupeSummaries(candidates)

	match := identity.BestMatch(address, candidates, o.opts.MatchThreshold)
	if match == nil {
		return "", nil
	}
	log.Printf("orchestrator: resolved %q to %s", address, match.URL)
	return match.URL, nil
}

// navigateReady drives navigation to StateReady, retrying timeouts with
// backoff and routing challenges through manual resolution. Challenges are
// never blind-retried.
func (o *Orchestrator) navigateReady(ctx context.Context, sess Session, pageURL string) error {
	var state PageState
	err := o.retry.do(ctx, "navigate "+pageURL, func() error {
		var nErr error
		state, nErr = sess.Navigate(ctx, pageURL)
		if nErr != nil {
			return nErr
		}
		if state == StateTimeout {
			return ErrNavigationTimeout
		}
		return nil
	})
	if err != nil {
		return err
	}
	if state == StateChallenge {
		if sess.Headless() {
			return ErrUnresolvableChallenge
		}
		if err := sess.AwaitManualResolution(ctx, o.opts.ChallengePollInterval, o.opts.ChallengeWaitTimeout); err != nil {
			return err
		}
	}
	return nil
}

// scrollWithResolution runs one scroll pass and, when a challenge appears
// mid-scroll in a visible session, waits for a human once and resumes. A
// second challenge aborts.
func (o *Orchestrator) scrollWithResolution(ctx context.Context, sess Session) ([]Snapshot, error) {
	stop := CountUnchanged(o.opts.StableIterations, o.opts.MaxScrollIterations)
	snaps, err := sess.ScrollAndCollect(ctx, stop)
	if !errors.Is(err, ErrChallengePresented) {
		return snaps, err
	}

	if sess.Headless() {
		return snaps, ErrUnresolvableChallenge
	}
	if rErr := sess.AwaitManualResolution(ctx, o.opts.ChallengePollInterval, o.opts.ChallengeWaitTimeout); rErr != nil {
		return snaps, rErr
	}
	more, err := sess.ScrollAndCollect(ctx, CountUnchanged(o.opts.StableIterations, o.opts.MaxScrollIterations))
	return append(snaps, more...), err
}

func (o *Orchestrator) startRun(mode, target string) *models.ScrapeRun {
	run := &models.ScrapeRun{
		Mode:      mode,
		Target:    target,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if o.journal != nil {
		if id, err := o.journal.StartRun(run); err == nil {
			run.ID = id
		} else {
			log.Printf("orchestrator: run journal unavailable: %v", err)
		}
	}
	return run
}

func (o *Orchestrator) finishRun(run *models.ScrapeRun, err error) {
	now := time.Now()
	run.FinishedAt = &now
	switch {
	case err == nil:
		run.Status = models.RunStatusCompleted
	case errors.Is(err, ErrChallengePresented) || errors.Is(err, ErrUnresolvableChallenge):
		run.Status = models.RunStatusAborted
		run.ErrorsCount++
		run.ErrorMessage = err.Error()
	default:
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		run.ErrorMessage = err.Error()
	}
	if o.journal != nil {
		if jerr := o.journal.FinishRun(run); jerr != nil {
			log.Printf("orchestrator: run journal update failed: %v", jerr)
		}
		level := models.LogLevelInfo
		msg := fmt.Sprintf("%s run finished: %s, %d listings", run.Mode, run.Status, run.ListingsFound)
		if err != nil {
			level = models.LogLevelError
			msg = fmt.Sprintf("%s run %s: %v", run.Mode, run.Status, err)
		}
		o.journal.Log(&run.ID, level, msg)
	}
}

func isDetailURL(target string) bool {
	return strings.HasPrefix(target, "http") && strings.Contains(target, "/homedetails/")
}

// FetchListings is the package-level convenience wrapper around a
// one-shot orchestrator.
func FetchListings(ctx context.Context, searchURL string, headless bool, opts *Options) ([]models.ListingSummary, error) {
	o := orchestratorFor(headless, opts)
	return o.FetchListings(ctx, searchURL)
}

// FetchPropertyByAddress is the package-level convenience wrapper for
// detail lookups.
func FetchPropertyByAddress(ctx context.Context, addressOrURL string, headless bool, opts *Options) (*models.PropertyDetail, error) {
	o := orchestratorFor(headless, opts)
	return o.FetchPropertyByAddress(ctx, addressOrURL)
}

func orchestratorFor(headless bool, opts *Options) *Orchestrator {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.Headless = headless
	return NewOrchestrator(o)
}
