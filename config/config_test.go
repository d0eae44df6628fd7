package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"OUTPUT_DIR", "DB_PATH", "POSTGRES_URL", "WATCH_CRON",
		"MAX_SCROLL_ITERATIONS", "SCROLL_SETTLE_MS", "CHALLENGE_WAIT_TIMEOUT_S",
		"MAX_RETRIES", "USER_DATA_DIR", "MATCH_THRESHOLD", "SCRAPER_CONFIG",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OutputDir != "./output" {
		t.Fatalf("unexpected output dir %q", cfg.OutputDir)
	}
	if cfg.DBPath != "scraper.db" {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Selectors != nil {
		t.Fatalf("expected no selector overrides by default")
	}
}

func TestLoadYAMLFillsUnsetEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scraper.yaml")
	yamlBody := []byte(`
scraper:
  max_scroll_iterations: 10
  max_retries: 5
  user_data_dir: from_yaml
selectors:
  listing_card: 'article.custom-card'
`)
	if err := os.WriteFile(path, yamlBody, 0644); err != nil {
		t.Fatalf("writing yaml: %v", err)
	}

	t.Setenv("SCRAPER_CONFIG", path)
	t.Setenv("MAX_SCROLL_ITERATIONS", "25")
	t.Setenv("MAX_RETRIES", "")
	t.Setenv("USER_DATA_DIR", "")
	t.Setenv("SCROLL_SETTLE_MS", "")
	t.Setenv("CHALLENGE_WAIT_TIMEOUT_S", "")
	t.Setenv("MATCH_THRESHOLD", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Scraper.MaxScrollIterations != 25 {
		t.Fatalf("expected env to win, got %d", cfg.Scraper.MaxScrollIterations)
	}
	if cfg.Scraper.MaxRetries != 5 {
		t.Fatalf("expected yaml to fill unset retries, got %d", cfg.Scraper.MaxRetries)
	}
	if cfg.Scraper.UserDataDir != "from_yaml" {
		t.Fatalf("expected yaml user data dir, got %q", cfg.Scraper.UserDataDir)
	}
	if cfg.Selectors == nil || cfg.Selectors.ListingCard != "article.custom-card" {
		t.Fatalf("expected selector override, got %+v", cfg.Selectors)
	}
}

func TestScraperConfigOptions(t *testing.T) {
	sc := ScraperConfig{
		Headless:       true,
		ScrollSettleMS: 250,
		NavTimeoutS:    30,
		MatchThreshold: 0.8,
	}
	opts := sc.Options()
	if !opts.Headless {
		t.Fatalf("expected headless carried over")
	}
	if opts.ScrollSettle != 250*time.Millisecond {
		t.Fatalf("unexpected settle %v", opts.ScrollSettle)
	}
	if opts.NavTimeout != 30*time.Second {
		t.Fatalf("unexpected nav timeout %v", opts.NavTimeout)
	}
	if opts.MatchThreshold != 0.8 {
		t.Fatalf("unexpected threshold %v", opts.MatchThreshold)
	}
}
