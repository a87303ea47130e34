package service_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/service"
	"github.com/mgnegypt/nano-image/internal/store"
)

func TestSaveUpload(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	uploads := newFakeUploadStore()
	blobs := newFakeBlobStore()
	svc := service.NewUploadService(uploads, blobs, slog.Default())

	upload, err := svc.SaveUpload(context.Background(), ownerID, "image/png", []byte("input-bytes"))
	require.NoError(t, err)

	assert.Equal(t, ownerID, upload.OwnerID)
	assert.Equal(t, "image/png", upload.MimeType)
	assert.Contains(t, upload.BlobKey, "uploads/")
	assert.Contains(t, upload.BlobKey, ".png")

	data, err := blobs.Get(context.Background(), upload.BlobKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("input-bytes"), data)
}

func TestSaveUploadRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	svc := service.NewUploadService(newFakeUploadStore(), newFakeBlobStore(), slog.Default())

	_, err := svc.SaveUpload(context.Background(), uuid.New(), "application/pdf", []byte("x"))
	assert.ErrorIs(t, err, service.ErrUnsupportedUpload)
}

func TestSaveUploadRejectsEmpty(t *testing.T) {
	t.Parallel()

	svc := service.NewUploadService(newFakeUploadStore(), newFakeBlobStore(), slog.Default())

	_, err := svc.SaveUpload(context.Background(), uuid.New(), "image/png", nil)
	assert.ErrorIs(t, err, service.ErrUnsupportedUpload)
}

func TestDeleteUpload(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	uploads := newFakeUploadStore()
	svc := service.NewUploadService(uploads, newFakeBlobStore(), slog.Default())

	upload, err := domain.NewUpload(ownerID, "uploads/x.png", "u", "image/png")
	require.NoError(t, err)
	require.NoError(t, uploads.Create(context.Background(), upload))

	t.Run("other owner denied", func(t *testing.T) {
		err := svc.DeleteUpload(context.Background(), uuid.New(), upload.ID)
		assert.ErrorIs(t, err, service.ErrNotOwned)
	})

	t.Run("owner deletes", func(t *testing.T) {
		require.NoError(t, svc.DeleteUpload(context.Background(), ownerID, upload.ID))

		_, err := uploads.GetByID(context.Background(), upload.ID)
		assert.ErrorIs(t, err, store.ErrUploadNotFound)
	})

	t.Run("missing upload", func(t *testing.T) {
		err := svc.DeleteUpload(context.Background(), ownerID, uuid.New())
		assert.ErrorIs(t, err, store.ErrUploadNotFound)
	})
}
