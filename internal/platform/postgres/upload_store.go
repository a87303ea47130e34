package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/store"
)

// defaultUploadListLimit caps list queries when the caller passes no limit.
const defaultUploadListLimit = 10

// UploadStore implements the store.UploadStore interface using a PostgreSQL
// database as the storage backend.
type UploadStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUploadStore creates a new PostgreSQL implementation of the UploadStore
// interface. If logger is nil, the default logger is used.
func NewUploadStore(db store.DBTX, logger *slog.Logger) *UploadStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadStore{
		db:     db,
		logger: logger.With(slog.String("component", "upload_store")),
	}
}

// Ensure UploadStore implements store.UploadStore interface
var _ store.UploadStore = (*UploadStore)(nil)

// Create implements store.UploadStore.Create
func (s *UploadStore) Create(ctx context.Context, upload *domain.Upload) error {
	if err := upload.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO uploads (id, owner_id, blob_key, blob_url, mime_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		upload.ID,
		upload.OwnerID,
		upload.BlobKey,
		upload.BlobURL,
		upload.MimeType,
		upload.CreatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create upload",
			"upload_id", upload.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UploadStore.GetByID
func (s *UploadStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	query := `
		SELECT id, owner_id, blob_key, blob_url, mime_type, created_at
		FROM uploads
		WHERE id = $1
	`

	var upload domain.Upload
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&upload.ID,
		&upload.OwnerID,
		&upload.BlobKey,
		&upload.BlobURL,
		&upload.MimeType,
		&upload.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUploadNotFound
		}
		return nil, MapError(err)
	}

	return &upload, nil
}

// ListByOwner implements store.UploadStore.ListByOwner
func (s *UploadStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error) {
	if limit <= 0 {
		limit = defaultUploadListLimit
	}

	query := `
		SELECT id, owner_id, blob_key, blob_url, mime_type, created_at
		FROM uploads
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var uploads []*domain.Upload
	for rows.Next() {
		var upload domain.Upload
		err := rows.Scan(
			&upload.ID,
			&upload.OwnerID,
			&upload.BlobKey,
			&upload.BlobURL,
			&upload.MimeType,
			&upload.CreatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		uploads = append(uploads, &upload)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return uploads, nil
}

// Delete implements store.UploadStore.Delete
func (s *UploadStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rowsAffected == 0 {
		return store.ErrUploadNotFound
	}

	return nil
}
