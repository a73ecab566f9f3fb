package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/reachflow/funnel/pkg/domain"
	_ "modernc.org/sqlite"
)

// Journal implements ports.Journal using SQLite.
type Journal struct {
	db *sql.DB
}

// Open creates (or reuses) the journal database at dbPath.
// The special path ":memory:" keeps everything in memory.
func Open(dbPath string) (*Journal, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL lets readers proceed while a submission is being recorded.
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a distinct database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		funnel_id TEXT NOT NULL DEFAULT '',
		lead_json TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 0,
		weak INTEGER NOT NULL DEFAULT 0,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_recorded ON submissions(recorded_at);
	`
	if _, err := j.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record inserts one entry.
func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	lead, err := json.Marshal(entry.Lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}

	query := `
		INSERT INTO submissions (id, funnel_id, lead_json, outcome, reason, status_code, weak, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = j.db.ExecContext(ctx, query,
		entry.ID, entry.FunnelID, string(lead),
		string(entry.Result.Outcome), entry.Result.Reason, entry.Result.StatusCode, boolToInt(entry.Result.Weak),
		entry.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT id, funnel_id, lead_json, outcome, reason, status_code, weak, recorded_at
		FROM submissions ORDER BY recorded_at DESC, rowid DESC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry      domain.JournalEntry
			leadJSON   string
			outcome    string
			weak       int
			recordedAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.FunnelID, &leadJSON, &outcome, &entry.Result.Reason,
			&entry.Result.StatusCode, &weak, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(leadJSON), &entry.Lead); err != nil {
			return nil, fmt.Errorf("unmarshal lead of %s: %w", entry.ID, err)
		}
		entry.Result.Outcome = domain.Outcome(outcome)
		entry.Result.Weak = weak != 0
		entry.RecordedAt = time.Unix(0, recordedAt).UTC()
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
