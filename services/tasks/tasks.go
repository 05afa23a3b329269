package tasks

import (
	"context"
	"database/sql"
	"time"
)

// Task lifecycle states. A task starts pending, moves to running when
// the worker picks it up, and ends completed or failed.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Task is one extraction request and its outcome.
type Task struct {
	ID           int64          `db:"id"`
	URL          string         `db:"url"`
	ProductName  sql.NullString `db:"product_name"`
	Status       string         `db:"status"`
	CreatedAt    time.Time      `db:"created_at"`
	CompletedAt  sql.NullTime   `db:"completed_at"`
	ResultsJSON  sql.NullString `db:"results_json"`
	ErrorMessage sql.NullString `db:"error_message"`
	ConfigJSON   sql.NullString `db:"config_json"`
}

// Store records extraction tasks and their lifecycle.
type Store interface {
	// Create inserts a pending task for url. configJSON may be empty.
	Create(ctx context.Context, url, configJSON string) (int64, error)

	// MarkRunning moves a task to the running state.
	MarkRunning(ctx context.Context, id int64) error

	// Complete finishes a task with its product name and results payload.
	Complete(ctx context.Context, id int64, productName, resultsJSON string) error

	// Fail finishes a task with an error message.
	Fail(ctx context.Context, id int64, message string) error

	// GetByID returns one task.
	GetByID(ctx context.Context, id int64) (*Task, error)

	// Recent returns the newest tasks, most recent first.
	Recent(ctx context.Context, limit int) ([]*Task, error)

	// CleanupOlderThan deletes tasks created more than days ago and
	// returns how many were removed.
	CleanupOlderThan(ctx context.Context, days int) (int64, error)
}
