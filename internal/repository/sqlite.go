package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/fee-reminder/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteRunStateStore keeps the run state in a local SQLite file, for deployments
// where the account store is not a database the service may write to.
type SQLiteRunStateStore struct {
	db *sql.DB
}

// NewSQLiteRunStateStore opens the file and creates the table if needed
func NewSQLiteRunStateStore(dataSourceName string) (*SQLiteRunStateStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteRunStateStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// Dates are stored as TEXT in fixed layouts so they sort and compare as written.
func (s *SQLiteRunStateStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS run_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_run_date TEXT NOT NULL,
		last_run_count INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetRunState returns the last recorded audit run, or nil if there is none
func (s *SQLiteRunStateStore) GetRunState(ctx context.Context) (*models.RunState, error) {
	var lastRunDate, updatedAt string
	state := &models.RunState{}
	err := s.db.QueryRowContext(ctx,
		`SELECT last_run_date, last_run_count, updated_at FROM run_state WHERE id = 1`).
		Scan(&lastRunDate, &state.LastRunCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run state: %w", err)
	}

	if state.LastRunDate, err = time.Parse("2006-01-02", lastRunDate); err != nil {
		return nil, fmt.Errorf("failed to parse last run date %q: %w", lastRunDate, err)
	}
	if state.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at %q: %w", updatedAt, err)
	}
	return state, nil
}

// PutRunState overwrites the run state row
func (s *SQLiteRunStateStore) PutRunState(ctx context.Context, state *models.RunState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_state (id, last_run_date, last_run_count, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_run_date = excluded.last_run_date,
			last_run_count = excluded.last_run_count,
			updated_at = excluded.updated_at`,
		state.LastRunDate.Format("2006-01-02"),
		state.LastRunCount,
		state.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to put run state: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteRunStateStore) Close() error {
	return s.db.Close()
}
