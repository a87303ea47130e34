package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
)

// TaskStore defines the interface for generation task persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrRemoteIDExists if a task with the same remote ID already
	// exists, and validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByRemoteID retrieves a task by the provider-side identifier.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByRemoteID(ctx context.Context, remoteID string) (*domain.Task, error)

	// UpdateStatus writes the reconciled status fields back to the task
	// identified by remoteID. Re-writing the same terminal status is a
	// no-op in effect.
	// Returns ErrTaskNotFound if the task does not exist.
	UpdateStatus(ctx context.Context, remoteID string, status domain.TaskStatus, resultURL, errorMessage string) error

	// ListByOwner retrieves the owner's tasks, newest first, up to limit.
	// A non-positive limit applies the store's default.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
