package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Artifact validation errors
var (
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
	ErrEmptyBlobKey = errors.New("blob key cannot be empty")
)

// Artifact is the durable record of a generated image the owner chose to
// keep. It is created only after a task has reached the completed status and
// the image bytes were written to the blob store; it is immutable thereafter.
type Artifact struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	TaskID    uuid.UUID `json:"task_id"`
	Prompt    string    `json:"prompt"`
	SourceURL string    `json:"source_url"`
	BlobKey   string    `json:"blob_key"`
	BlobURL   string    `json:"blob_url"`
	IsEdited  bool      `json:"is_edited"`
	CreatedAt time.Time `json:"created_at"`
}

// NewArtifact creates a new Artifact for a saved generation result.
func NewArtifact(ownerID, taskID uuid.UUID, prompt, sourceURL, blobKey, blobURL string, isEdited bool) (*Artifact, error) {
	artifact := &Artifact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		TaskID:    taskID,
		Prompt:    prompt,
		SourceURL: sourceURL,
		BlobKey:   blobKey,
		BlobURL:   blobURL,
		IsEdited:  isEdited,
		CreatedAt: time.Now().UTC(),
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	return artifact, nil
}

// Validate checks if the Artifact has valid data.
func (a *Artifact) Validate() error {
	if a.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if a.TaskID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if a.BlobKey == "" {
		return ErrEmptyBlobKey
	}

	return nil
}
