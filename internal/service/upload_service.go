package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/blob"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/store"
)

// extensionForMime maps the accepted upload MIME types to a file extension.
var extensionForMime = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// UploadService stores user-provided input images for later edit jobs.
type UploadService interface {
	// SaveUpload writes the image bytes to the blob store and records the
	// upload for the owner. Unrecognized MIME types are rejected.
	SaveUpload(ctx context.Context, ownerID uuid.UUID, mimeType string, data []byte) (*domain.Upload, error)

	// ListUploads retrieves the owner's uploads, newest first, up to limit.
	ListUploads(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error)

	// DeleteUpload removes an upload record, verifying ownership.
	// Returns ErrNotOwned if the upload belongs to another user.
	DeleteUpload(ctx context.Context, ownerID, uploadID uuid.UUID) error
}

// UploadServiceImpl implements the UploadService interface
type UploadServiceImpl struct {
	uploads store.UploadStore
	blobs   blob.Store
	logger  *slog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(uploads store.UploadStore, blobs blob.Store, logger *slog.Logger) UploadService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadServiceImpl{
		uploads: uploads,
		blobs:   blobs,
		logger:  logger.With(slog.String("component", "upload_service")),
	}
}

// SaveUpload writes the image bytes to the blob store and records the upload.
func (s *UploadServiceImpl) SaveUpload(ctx context.Context, ownerID uuid.UUID, mimeType string, data []byte) (*domain.Upload, error) {
	ext, ok := extensionForMime[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedUpload, mimeType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnsupportedUpload)
	}

	blobKey := fmt.Sprintf("uploads/%s%s", uuid.New(), ext)
	blobURL, err := s.blobs.Put(ctx, blobKey, data, mimeType)
	if err != nil {
		s.logger.Error("failed to store upload blob",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	upload, err := domain.NewUpload(ownerID, blobKey, blobURL, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}

	if err := s.uploads.Create(ctx, upload); err != nil {
		s.logger.Error("failed to save upload record",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	s.logger.Info("saved upload",
		"upload_id", upload.ID,
		"owner_id", ownerID,
		"mime_type", mimeType,
		"size_bytes", len(data))

	return upload, nil
}

// ListUploads retrieves the owner's uploads, newest first.
func (s *UploadServiceImpl) ListUploads(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error) {
	uploads, err := s.uploads.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error("failed to list uploads",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return uploads, nil
}

// DeleteUpload removes an upload record after verifying ownership. The
// stored blob is left in place; blob retention is a separate concern.
func (s *UploadServiceImpl) DeleteUpload(ctx context.Context, ownerID, uploadID uuid.UUID) error {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("failed to retrieve upload: %w", err)
	}

	if upload.OwnerID != ownerID {
		s.logger.Warn("upload access denied",
			"upload_id", uploadID,
			"owner_id", ownerID)
		return ErrNotOwned
	}

	if err := s.uploads.Delete(ctx, uploadID); err != nil {
		return fmt.Errorf("failed to delete upload: %w", err)
	}

	s.logger.Info("deleted upload",
		"upload_id", uploadID,
		"owner_id", ownerID)

	return nil
}
