package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
)

// ArtifactStore defines the interface for saved artifact persistence.
// Artifacts are immutable once created, so there are no update operations.
type ArtifactStore interface {
	// Create saves a new artifact to the store.
	Create(ctx context.Context, artifact *domain.Artifact) error

	// ListByOwner retrieves the owner's artifacts, newest first, up to limit.
	// A non-positive limit applies the store's default.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Artifact, error)

	// WithTx returns a new ArtifactStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ArtifactStore
}

// UploadStore defines the interface for uploaded input image persistence.
type UploadStore interface {
	// Create saves a new upload record to the store.
	Create(ctx context.Context, upload *domain.Upload) error

	// GetByID retrieves an upload by its unique ID.
	// Returns ErrUploadNotFound if the upload does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error)

	// ListByOwner retrieves the owner's uploads, newest first, up to limit.
	// A non-positive limit applies the store's default.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error)

	// Delete removes an upload record by its ID.
	// Returns ErrUploadNotFound if the upload does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
