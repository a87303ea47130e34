package domain

import (
	"time"

	"github.com/google/uuid"
)

// Upload is the record of a user-provided input image stored in the blob
// store, referenced later by edit jobs.
type Upload struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	BlobKey   string    `json:"blob_key"`
	BlobURL   string    `json:"blob_url"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUpload creates a new Upload record for an image written to the blob store.
func NewUpload(ownerID uuid.UUID, blobKey, blobURL, mimeType string) (*Upload, error) {
	upload := &Upload{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		BlobKey:   blobKey,
		BlobURL:   blobURL,
		MimeType:  mimeType,
		CreatedAt: time.Now().UTC(),
	}

	if err := upload.Validate(); err != nil {
		return nil, err
	}

	return upload, nil
}

// Validate checks if the Upload has valid data.
func (u *Upload) Validate() error {
	if u.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if u.BlobKey == "" {
		return ErrEmptyBlobKey
	}

	return nil
}
