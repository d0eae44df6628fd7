package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"zillow-scraper/config"
	"zillow-scraper/export"
	"zillow-scraper/logging"
	"zillow-scraper/models"
	"zillow-scraper/parser"
	"zillow-scraper/scheduler"
	"zillow-scraper/scraper"
	"zillow-scraper/storage"
)

var (
	headless = flag.Bool("headless", false, "run without a visible browser window")
	csvOut   = flag.String("csv", "", "output CSV file for listing searches (default: auto-named under the output dir)")
	jsonOut  = flag.String("json", "", "output JSON file for property details (default: print to console)")
	outDir   = flag.String("out", "", "output root directory (default: ./output or OUTPUT_DIR)")
	watch    = flag.Bool("watch", false, "keep running and re-scrape on the WATCH_CRON schedule")
	timeout  = flag.Duration("timeout", 0, "overall deadline for one run, e.g. 10m (default: none)")
	runs     = flag.Int("runs", 0, "print the N most recent runs from the journal and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags)

	if *runs > 0 {
		if err := showRecentRuns(*runs); err != nil {
			log.Fatalf("Failed to read run journal: %v", err)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: zillow-scraper [flags] <search URL | detail URL | address>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	target := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	stamp := time.Now().Format("20060102_150405")
	logFile, err := logging.Setup(filepath.Join(cfg.OutputDir, "logs", stamp+".log"))
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	opts := cfg.Scraper.Options()
	opts.Headless = *headless

	orch := scraper.NewOrchestrator(opts)
	if cfg.Selectors != nil {
		orch.SetParser(parser.NewWithSelectors(*cfg.Selectors))
	}

	journal, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Printf("Warning: run journal unavailable: %v", err)
	} else {
		defer journal.Close()
		orch.SetJournal(journal)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var pg *storage.PostgresStore
	if cfg.PostgresURL != "" {
		pg, err = storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pg.Close()
		orch.SetSink(pg)
		log.Println("Postgres sink connected")
	}

	runOnce := func(ctx context.Context) {
		if *timeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, *timeout)
			defer tcancel()
		}
		if err := run(ctx, orch, cfg, target, stamp); err != nil {
			log.Printf("Run failed: %v", err)
			if !*watch {
				os.Exit(1)
			}
			return
		}
		if pg != nil {
			if n, cerr := pg.CountListings(ctx); cerr == nil {
				log.Printf("Postgres sink holds %d distinct properties", n)
			}
		}
	}

	if *watch {
		if cfg.WatchCron == "" {
			log.Fatal("watch mode requires WATCH_CRON")
		}
		sched := scheduler.New(cfg.WatchCron, runOnce)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		runOnce(ctx)
		<-ctx.Done()
		sched.Stop()
		return
	}

	runOnce(ctx)
}

func run(ctx context.Context, orch *scraper.Orchestrator, cfg *config.Config, target, stamp string) error {
	if isListingSearchTarget(target) {
		log.Printf("Detected listing search URL: %s", target)
		listings, err := orch.FetchListings(ctx, target)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s\n", strings.Repeat("=", 60))
		fmt.Printf("SCRAPE COMPLETE: Found %d Listings\n", len(listings))
		fmt.Printf("%s\n\n", strings.Repeat("=", 60))
		for _, l := range listings {
			fmt.Println(l.FormatLine())
		}

		if len(listings) == 0 {
			log.Println("No listings found.")
			return nil
		}
		path := *csvOut
		if path == "" {
			path = filepath.Join(cfg.OutputDir, "results_"+stamp+".csv")
		} else if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.OutputDir, path)
		}
		if err := export.SaveCSV(path, listings); err != nil {
			return err
		}
		log.Printf("Data saved to %s", path)
		return nil
	}

	log.Printf("Detected property target: %s", target)
	detail, err := orch.FetchPropertyByAddress(ctx, target)
	if err != nil {
		return err
	}
	if detail == nil {
		fmt.Println("No property found.")
		return nil
	}
	return emitDetail(cfg, detail)
}

func emitDetail(cfg *config.Config, detail *models.PropertyDetail) error {
	if *jsonOut == "" {
		return export.WriteJSON(os.Stdout, detail)
	}
	path := *jsonOut
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.OutputDir, path)
	}
	if err := export.SaveJSON(path, detail); err != nil {
		return err
	}
	log.Printf("Property details saved to %s", path)
	return nil
}

// showRecentRuns prints the journal's latest runs, with their recorded log
// lines for anything that did not complete.
func showRecentRuns(limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	journal, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	recent, err := journal.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	for _, r := range recent {
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("#%-4d %-9s %-8s started=%s finished=%s listings=%d snapshots=%d %s\n",
			r.ID, r.Status, r.Mode, r.StartedAt.Format("2006-01-02 15:04:05"),
			finished, r.ListingsFound, r.Snapshots, r.Target)
		if r.Status == models.RunStatusCompleted {
			continue
		}
		entries, err := journal.RunLogs(r.ID, 5)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			fmt.Printf("      [%s] %s\n", entry.Level, entry.Message)
		}
	}
	return nil
}

// isListingSearchTarget reports whether the target is a search results URL
// rather than a detail URL or address string.
func isListingSearchTarget(target string) bool {
	if !strings.HasPrefix(target, "http") {
		return false
	}
	if strings.Contains(target, "/homedetails/") {
		return false
	}
	return strings.Contains(target, "/homes") ||
		(strings.Contains(target, "zillow.com") && strings.Contains(target, "-"))
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()
	return ctx, cancel
}
