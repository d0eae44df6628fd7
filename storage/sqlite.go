package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"zillow-scraper/models"
)

// SQLiteStore is the operational run journal: one row per workflow
// execution plus its log lines. Extracted records never land here; they
// flow through the export layer and the optional Postgres sink.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		run_uid TEXT NOT NULL,
		mode TEXT,
		target TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER DEFAULT 0,
		snapshots INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		error_message TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		FOREIGN KEY (run_id) REFERENCES scrape_runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_scrape_logs_run ON scrape_logs(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StartRun inserts a running record and returns its row ID.
func (s *SQLiteStore) StartRun(run *models.ScrapeRun) (int64, error) {
	if run.RunUID == "" {
		run.RunUID = uuid.NewString()
	}
	res, err := s.db.Exec(`
		INSERT INTO scrape_runs (run_uid, mode, target, started_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunUID, run.Mode, run.Target, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun records the terminal state and counters of a run.
func (s *SQLiteStore) FinishRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs
		SET finished_at = ?, status = ?, listings_found = ?, snapshots = ?,
		    errors_count = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.Snapshots,
		run.ErrorsCount, run.ErrorMessage, run.ID)
	return err
}

// Log appends one journal line, optionally tied to a run.
func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		runID, time.Now(), level, message)
	return err
}

// RunLogs lists the latest log lines recorded for a run, newest first.
func (s *SQLiteStore) RunLogs(runID int64, limit int) ([]models.ScrapeLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message
		FROM scrape_logs WHERE run_id = ? ORDER BY id DESC LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var entry models.ScrapeLog
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Timestamp,
			&entry.Level, &entry.Message); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// RecentRuns lists the latest runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.Query(`
		SELECT id, run_uid, mode, target, started_at, finished_at, status,
		       listings_found, snapshots, errors_count, error_message
		FROM scrape_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var r models.ScrapeRun
		if err := rows.Scan(&r.ID, &r.RunUID, &r.Mode, &r.Target, &r.StartedAt,
			&r.FinishedAt, &r.Status, &r.ListingsFound, &r.Snapshots,
			&r.ErrorsCount, &r.ErrorMessage); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
