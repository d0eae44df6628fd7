package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"zillow-scraper/parser"
	"zillow-scraper/scraper"
)

// Config is the explicit configuration object handed to the CLI and the
// orchestrator at construction. Nothing in here is process-global; each
// invocation gets its own copy.
type Config struct {
	OutputDir   string
	DBPath      string
	PostgresURL string
	WatchCron   string
	Scraper     ScraperConfig
	Selectors   *parser.SelectorSet
}

// ScraperConfig mirrors scraper.Options in flat, env-friendly units.
type ScraperConfig struct {
	Headless            bool    `yaml:"headless"`
	MaxScrollIterations int     `yaml:"max_scroll_iterations"`
	StableIterations    int     `yaml:"stable_iterations"`
	ScrollSettleMS      int     `yaml:"scroll_settle_ms"`
	ScrollStepMin       int     `yaml:"scroll_step_min"`
	ScrollStepMax       int     `yaml:"scroll_step_max"`
	NavTimeoutS         int     `yaml:"nav_timeout_s"`
	ChallengeWaitS      int     `yaml:"challenge_wait_timeout_s"`
	ChallengePollMS     int     `yaml:"challenge_poll_ms"`
	MaxRetries          int     `yaml:"max_retries"`
	RetryBaseDelayMS    int     `yaml:"retry_base_delay_ms"`
	MatchThreshold      float64 `yaml:"match_threshold"`
	UserDataDir         string  `yaml:"user_data_dir"`
}

// Options converts the flat config into orchestrator options. Unset values
// stay zero and pick up the orchestrator defaults.
func (c ScraperConfig) Options() scraper.Options {
	return scraper.Options{
		Headless:              c.Headless,
		MaxScrollIterations:   c.MaxScrollIterations,
		StableIterations:      c.StableIterations,
		ScrollSettle:          time.Duration(c.ScrollSettleMS) * time.Millisecond,
		ScrollStepMin:         c.ScrollStepMin,
		ScrollStepMax:         c.ScrollStepMax,
		NavTimeout:            time.Duration(c.NavTimeoutS) * time.Second,
		ChallengeWaitTimeout:  time.Duration(c.ChallengeWaitS) * time.Second,
		ChallengePollInterval: time.Duration(c.ChallengePollMS) * time.Millisecond,
		MaxRetries:            c.MaxRetries,
		RetryBaseDelay:        time.Duration(c.RetryBaseDelayMS) * time.Millisecond,
		MatchThreshold:        c.MatchThreshold,
		UserDataDir:           c.UserDataDir,
	}
}

type fileConfig struct {
	Scraper   ScraperConfig       `yaml:"scraper"`
	Selectors *parser.SelectorSet `yaml:"selectors"`
}

// Load builds the configuration from the environment (a .env file is read
// when present) plus an optional YAML file named by SCRAPER_CONFIG. The
// YAML layer exists mainly for selector overrides when Zillow's markup
// drifts ahead of a release.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		OutputDir:   getEnv("OUTPUT_DIR", "./output"),
		DBPath:      getEnv("DB_PATH", "scraper.db"),
		PostgresURL: os.Getenv("POSTGRES_URL"),
		WatchCron:   os.Getenv("WATCH_CRON"),
		Scraper: ScraperConfig{
			MaxScrollIterations: getEnvInt("MAX_SCROLL_ITERATIONS", 0),
			ScrollSettleMS:      getEnvInt("SCROLL_SETTLE_MS", 0),
			ChallengeWaitS:      getEnvInt("CHALLENGE_WAIT_TIMEOUT_S", 0),
			MaxRetries:          getEnvInt("MAX_RETRIES", 0),
			UserDataDir:         os.Getenv("USER_DATA_DIR"),
		},
	}
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scraper.MatchThreshold = f
		}
	}

	path := os.Getenv("SCRAPER_CONFIG")
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	mergeScraper(&cfg.Scraper, fc.Scraper)
	cfg.Selectors = fc.Selectors
	return cfg, nil
}

// mergeScraper lets the YAML file fill in anything the environment left
// unset; env vars win on conflict.
func mergeScraper(dst *ScraperConfig, src ScraperConfig) {
	if dst.MaxScrollIterations == 0 {
		dst.MaxScrollIterations = src.MaxScrollIterations
	}
	if dst.StableIterations == 0 {
		dst.StableIterations = src.StableIterations
	}
	if dst.ScrollSettleMS == 0 {
		dst.ScrollSettleMS = src.ScrollSettleMS
	}
	if dst.ScrollStepMin == 0 {
		dst.ScrollStepMin = src.ScrollStepMin
	}
	if dst.ScrollStepMax == 0 {
		dst.ScrollStepMax = src.ScrollStepMax
	}
	if dst.NavTimeoutS == 0 {
		dst.NavTimeoutS = src.NavTimeoutS
	}
	if dst.ChallengeWaitS == 0 {
		dst.ChallengeWaitS = src.ChallengeWaitS
	}
	if dst.ChallengePollMS == 0 {
		dst.ChallengePollMS = src.ChallengePollMS
	}
	if dst.MaxRetries == 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if dst.RetryBaseDelayMS == 0 {
		dst.RetryBaseDelayMS = src.RetryBaseDelayMS
	}
	if dst.MatchThreshold == 0 {
		dst.MatchThreshold = src.MatchThreshold
	}
	if dst.UserDataDir == "" {
		dst.UserDataDir = src.UserDataDir
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
