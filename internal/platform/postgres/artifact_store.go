package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/store"
)

// defaultArtifactListLimit caps list queries when the caller passes no limit.
const defaultArtifactListLimit = 20

// ArtifactStore implements the store.ArtifactStore interface using a
// PostgreSQL database as the storage backend.
type ArtifactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewArtifactStore creates a new PostgreSQL implementation of the
// ArtifactStore interface. If logger is nil, the default logger is used.
func NewArtifactStore(db store.DBTX, logger *slog.Logger) *ArtifactStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactStore{
		db:     db,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

// Ensure ArtifactStore implements store.ArtifactStore interface
var _ store.ArtifactStore = (*ArtifactStore)(nil)

// Create implements store.ArtifactStore.Create
func (s *ArtifactStore) Create(ctx context.Context, artifact *domain.Artifact) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO artifacts (id, owner_id, task_id, prompt, source_url, blob_key, blob_url, is_edited, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		artifact.ID,
		artifact.OwnerID,
		artifact.TaskID,
		artifact.Prompt,
		artifact.SourceURL,
		artifact.BlobKey,
		artifact.BlobURL,
		artifact.IsEdited,
		artifact.CreatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create artifact",
			"artifact_id", artifact.ID,
			"task_id", artifact.TaskID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// ListByOwner implements store.ArtifactStore.ListByOwner
func (s *ArtifactStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Artifact, error) {
	if limit <= 0 {
		limit = defaultArtifactListLimit
	}

	query := `
		SELECT id, owner_id, task_id, prompt, source_url, blob_key, blob_url, is_edited, created_at
		FROM artifacts
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var artifacts []*domain.Artifact
	for rows.Next() {
		var artifact domain.Artifact
		err := rows.Scan(
			&artifact.ID,
			&artifact.OwnerID,
			&artifact.TaskID,
			&artifact.Prompt,
			&artifact.SourceURL,
			&artifact.BlobKey,
			&artifact.BlobURL,
			&artifact.IsEdited,
			&artifact.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		artifacts = append(artifacts, &artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return artifacts, nil
}

// WithTx implements store.ArtifactStore.WithTx
func (s *ArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return &ArtifactStore{db: tx, logger: s.logger}
}
