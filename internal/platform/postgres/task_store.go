package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/store"
)

// defaultTaskListLimit caps list queries when the caller passes no limit.
const defaultTaskListLimit = 10

// TaskStore implements the store.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the TaskStore
// interface. If logger is nil, the default logger is used.
func NewTaskStore(db store.DBTX, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	inputURLs, err := json.Marshal(task.InputImageURLs)
	if err != nil {
		return fmt.Errorf("encode input image urls: %w", err)
	}

	query := `
		INSERT INTO tasks (id, owner_id, account_id, remote_id, prompt, input_image_urls, status, result_url, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.OwnerID,
		task.AccountID,
		task.RemoteID,
		task.Prompt,
		inputURLs,
		task.Status,
		task.ResultURL,
		task.ErrorMessage,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create task",
			"task_id", task.ID,
			"remote_id", task.RemoteID,
			"error", err)
		if IsUniqueViolation(err) {
			return store.ErrRemoteIDExists
		}
		return MapError(err)
	}

	return nil
}

// GetByRemoteID implements store.TaskStore.GetByRemoteID
func (s *TaskStore) GetByRemoteID(ctx context.Context, remoteID string) (*domain.Task, error) {
	query := `
		SELECT id, owner_id, account_id, remote_id, prompt, input_image_urls, status, result_url, error_message, created_at, updated_at
		FROM tasks
		WHERE remote_id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, remoteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// UpdateStatus implements store.TaskStore.UpdateStatus
func (s *TaskStore) UpdateStatus(ctx context.Context, remoteID string, status domain.TaskStatus, resultURL, errorMessage string) error {
	query := `
		UPDATE tasks
		SET status = $1, result_url = $2, error_message = $3, updated_at = $4
		WHERE remote_id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		resultURL,
		errorMessage,
		time.Now().UTC(),
		remoteID,
	)
	if err != nil {
		s.logger.Error("failed to update task status",
			"remote_id", remoteID,
			"status", status,
			"error", err)
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// ListByOwner implements store.TaskStore.ListByOwner
func (s *TaskStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Task, error) {
	if limit <= 0 {
		limit = defaultTaskListLimit
	}

	query := `
		SELECT id, owner_id, account_id, remote_id, prompt, input_image_urls, status, result_url, error_message, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// WithTx implements store.TaskStore.WithTx
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task         domain.Task
		inputURLs    []byte
		resultURL    sql.NullString
		errorMessage sql.NullString
	)

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.AccountID,
		&task.RemoteID,
		&task.Prompt,
		&inputURLs,
		&task.Status,
		&resultURL,
		&errorMessage,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(inputURLs) > 0 {
		if err := json.Unmarshal(inputURLs, &task.InputImageURLs); err != nil {
			return nil, fmt.Errorf("decode input image urls: %w", err)
		}
	}
	task.ResultURL = resultURL.String
	task.ErrorMessage = errorMessage.String

	return &task, nil
}
