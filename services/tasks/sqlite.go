package tasks

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"sjsage522/aplusworker/logger"
	"sjsage522/aplusworker/pkg/errors"
)

// SQLStore implements Store on SQLite.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a task store backed by db.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Init creates the tasks table when it does not exist yet.
func (s *SQLStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL,
			product_name TEXT,
			status TEXT DEFAULT 'pending',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			results_json TEXT,
			error_message TEXT,
			config_json TEXT
		)
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.NewTask("failed to initialize task store", err)
	}

	logger.ForTasks().Info().Msg("task store initialized")
	return nil
}

func (s *SQLStore) Create(ctx context.Context, url, configJSON string) (int64, error) {
	query := `
		INSERT INTO tasks (url, status, config_json)
		VALUES (?, 'pending', ?)
	`

	result, err := s.db.ExecContext(ctx, query, url, nullIfEmpty(configJSON))
	if err != nil {
		return 0, errors.NewTask("failed to create task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.NewTask("failed to read task id", err)
	}

	logger.ForTasks().Debug().Int64("task_id", id).Str("url", url).Msg("task created")
	return id, nil
}

func (s *SQLStore) MarkRunning(ctx context.Context, id int64) error {
	query := `UPDATE tasks SET status = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, StatusRunning, id)
	if err != nil {
		return errors.NewTask("failed to mark task running", err)
	}

	return s.requireRow(result, id)
}

func (s *SQLStore) Complete(ctx context.Context, id int64, productName, resultsJSON string) error {
	query := `
		UPDATE tasks
		SET status = 'completed', completed_at = ?, product_name = ?, results_json = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, time.Now(), nullIfEmpty(productName), nullIfEmpty(resultsJSON), id)
	if err != nil {
		return errors.NewTask("failed to complete task", err)
	}

	return s.requireRow(result, id)
}

func (s *SQLStore) Fail(ctx context.Context, id int64, message string) error {
	query := `UPDATE tasks SET status = 'failed', error_message = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, message, id)
	if err != nil {
		return errors.NewTask("failed to mark task failed", err)
	}

	return s.requireRow(result, id)
}

func (s *SQLStore) GetByID(ctx context.Context, id int64) (*Task, error) {
	var task Task
	query := `
		SELECT id, url, product_name, status,
		       created_at, completed_at,
		       results_json, error_message, config_json
		FROM tasks
		WHERE id = ?
	`

	err := s.db.GetContext(ctx, &task, query, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewTask(fmt.Sprintf("task %d not found", id), nil)
		}
		return nil, errors.NewTask("failed to get task", err)
	}

	return &task, nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]*Task, error) {
	var list []*Task
	query := `
		SELECT id, url, product_name, status,
		       created_at, completed_at,
		       results_json, error_message, config_json
		FROM tasks
		ORDER BY created_at DESC
		LIMIT ?
	`

	err := s.db.SelectContext(ctx, &list, query, limit)
	if err != nil {
		return nil, errors.NewTask("failed to list tasks", err)
	}

	if list == nil {
		list = []*Task{}
	}

	return list, nil
}

func (s *SQLStore) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	query := `DELETE FROM tasks WHERE created_at < datetime('now', ?)`

	result, err := s.db.ExecContext(ctx, query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, errors.NewTask("failed to clean up tasks", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewTask("failed to read cleanup count", err)
	}

	if count > 0 {
		logger.ForTasks().Info().Int64("count", count).Msg("cleaned up old tasks")
	}
	return count, nil
}

func (s *SQLStore) requireRow(result sql.Result, id int64) error {
	count, err := result.RowsAffected()
	if err != nil {
		return errors.NewTask("failed to read rows affected", err)
	}
	if count == 0 {
		return errors.NewTask(fmt.Sprintf("task %d not found", id), nil)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
