package nb

import (
	"database/sql"
	"time"
)

// Database records the history of backup runs.
type Database interface {
	// CreateRun inserts a new run record in the started state.
	CreateRun(run *RunRecord) error

	// AddRunSubscription records one successfully uploaded subscription.
	AddRunSubscription(runID string, sub SubscriptionResult) error

	// FinishRun stores the final status and message of a run.
	FinishRun(runID string, status Status, message string, finishedAt time.Time) error

	// ListRuns returns the most recent runs, newest first, with their
	// subscription outcomes populated.
	ListRuns(limit int) ([]*RunRecord, error)

	// Close closes the database connection.
	Close() error
}

// RunRecord is the persisted form of a backup run.
type RunRecord struct {
	ID            string               `db:"id"`
	Timestamp     string               `db:"timestamp"`
	Selector      string               `db:"selector"`
	Status        Status               `db:"status"`
	Message       string               `db:"message"`
	StartedAt     time.Time            `db:"started_at"`
	FinishedAt    sql.NullTime         `db:"finished_at"`
	Subscriptions []SubscriptionResult `db:"-"`
}
