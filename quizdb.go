package partyhistory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Journal is the SQLite log of question-set acquisitions. It holds no quiz
// session state.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenJournal opens (or creates) the journal database at dbPath and ensures
// its schema. ":memory:" is accepted for throwaway journals.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS acquisitions (
			id TEXT PRIMARY KEY,
			generation INTEGER NOT NULL,
			provider TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			outcome TEXT NOT NULL,
			reason TEXT,
			question_count INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_acquisitions_started_at ON acquisitions(started_at)`,
	}

	for _, query := range queries {
		if _, err := j.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordAcquisition stores one acquisition row.
func (j *Journal) RecordAcquisition(ctx context.Context, a Acquisition) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO acquisitions (id, generation, provider, started_at, finished_at, outcome, reason, question_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		a.ID, int64(a.Generation), a.Provider, a.StartedAt.UTC(), a.FinishedAt.UTC(), string(a.Outcome), a.Reason, a.QuestionCount,
	)
	if err != nil {
		return fmt.Errorf("failed to record acquisition: %w", err)
	}
	return nil
}

// Recent returns up to limit acquisitions, newest first. limit <= 0 returns all.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Acquisition, error) {
	query := "SELECT id, generation, provider, started_at, finished_at, outcome, reason, question_count FROM acquisitions ORDER BY started_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := j.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get acquisitions: %w", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		var (
			a          Acquisition
			generation int64
			outcome    string
			reason     sql.NullString
		)
		if err := rows.Scan(&a.ID, &generation, &a.Provider, &a.StartedAt, &a.FinishedAt, &outcome, &reason, &a.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan acquisition: %w", err)
		}
		a.Generation = uint64(generation)
		a.Outcome = AcquisitionOutcome(outcome)
		a.Reason = reason.String
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acquisitions: %w", err)
	}
	return out, nil
}

// CountByOutcome returns how many acquisitions ended with each outcome.
func (j *Journal) CountByOutcome(ctx context.Context) (map[AcquisitionOutcome]int, error) {
	rows, err := j.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM acquisitions GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to count acquisitions: %w", err)
	}
	defer rows.Close()

	counts := make(map[AcquisitionOutcome]int)
	for rows.Next() {
		var (
			outcome string
			n       int
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[AcquisitionOutcome(outcome)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcome counts: %w", err)
	}
	return counts, nil
}
