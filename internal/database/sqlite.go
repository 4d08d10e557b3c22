package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"netbackup/internal/database/migrations"
	"netbackup/internal/nb"
)

// DatabaseFile is the run history file name inside the data directory.
const DatabaseFile = "netbackup.db"

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sqlx.DB
	path string
}

// NewSQLiteDatabase opens (creating if needed) the database at path and
// applies pending migrations. path can be ":memory:".
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewMemoryDatabase returns a migrated in-memory database.
func NewMemoryDatabase() (*SQLiteDatabase, error) {
	return NewSQLiteDatabase(":memory:")
}

// OpenConnection opens and configures a SQLite connection.
func OpenConnection(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// SQLite ships with foreign keys disabled.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// CreateRun inserts a new run record.
// Times are stored in UTC so started_at sorts lexically.
func (s *SQLiteDatabase) CreateRun(run *nb.RunRecord) error {
	rec := *run
	rec.StartedAt = rec.StartedAt.UTC()
	_, err := s.db.NamedExecContext(context.Background(), `
		INSERT INTO runs (id, timestamp, selector, status, message, started_at, finished_at)
		VALUES (:id, :timestamp, :selector, :status, :message, :started_at, :finished_at)`, &rec)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// AddRunSubscription records one uploaded subscription of a run.
func (s *SQLiteDatabase) AddRunSubscription(runID string, sub nb.SubscriptionResult) error {
	_, err := s.db.ExecContext(context.Background(), `
		INSERT INTO run_subscriptions (run_id, subscription_id, display_name, backup_blob, resource_count)
		VALUES (?, ?, ?, ?, ?)`,
		runID, sub.SubscriptionID, sub.DisplayName, sub.BackupBlob, sub.ResourceCount)
	if err != nil {
		return fmt.Errorf("inserting subscription %s for run %s: %w", sub.SubscriptionID, runID, err)
	}
	return nil
}

// FinishRun stores the final status of a run.
func (s *SQLiteDatabase) FinishRun(runID string, status nb.Status, message string, finishedAt time.Time) error {
	res, err := s.db.ExecContext(context.Background(),
		`UPDATE runs SET status = ?, message = ?, finished_at = ? WHERE id = ?`,
		status, message, finishedAt.UTC(), runID)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n == 0 {
		return fmt.Errorf("finishing run %s: no such run", runID)
	}
	return nil
}

type runSubscriptionRow struct {
	RunID string `db:"run_id"`
	nb.SubscriptionResult
}

// ListRuns returns up to limit runs, newest first.
func (s *SQLiteDatabase) ListRuns(limit int) ([]*nb.RunRecord, error) {
	ctx := context.Background()
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	var runs []*nb.RunRecord
	err := s.db.SelectContext(ctx, &runs, `
		SELECT id, timestamp, selector, status, message, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		return runs, nil
	}

	ids := make([]string, len(runs))
	byID := make(map[string]*nb.RunRecord, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
		byID[r.ID] = r
		r.Subscriptions = []nb.SubscriptionResult{}
	}

	query, args, err := sqlx.In(`
		SELECT run_id, subscription_id, display_name, backup_blob, resource_count
		FROM run_subscriptions
		WHERE run_id IN (?)
		ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("building subscription query: %w", err)
	}

	var rows []runSubscriptionRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing run subscriptions: %w", err)
	}
	for _, row := range rows {
		if r, ok := byID[row.RunID]; ok {
			r.Subscriptions = append(r.Subscriptions, row.SubscriptionResult)
		}
	}

	return runs, nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	return s.db.Close()
}

// Compile-time check that SQLiteDatabase implements nb.Database interface
var _ nb.Database = (*SQLiteDatabase)(nil)
