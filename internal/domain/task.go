package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a generation task as reported
// by the external provider.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IsValid reports whether the status is one of the known variants.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// rank orders statuses so that transitions can be checked for forward
// movement. Terminal states share the highest rank.
func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusProcessing:
		return 1
	case TaskStatusCompleted, TaskStatusFailed:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving from s to next is permitted.
// A task only ever advances forward; re-writing the same terminal status is
// allowed so that reconciliation stays idempotent.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	if s.IsTerminal() {
		return s == next
	}
	return next.rank() >= s.rank()
}

// Task is the server-authoritative record of a generation or edit job
// submitted to the external provider. It is correlated with the provider by
// RemoteID, which is unique across all tasks.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"owner_id"`
	AccountID      uuid.UUID  `json:"account_id"`
	RemoteID       string     `json:"remote_id"`
	Prompt         string     `json:"prompt"`
	InputImageURLs []string   `json:"input_image_urls,omitempty"`
	Status         TaskStatus `json:"status"`
	ResultURL      string     `json:"result_url,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTask creates a new pending Task for the given owner and account, keyed
// by the identifier returned from the provider's creation endpoint.
// inputImageURLs is nil for generate jobs and non-empty for edit jobs.
func NewTask(ownerID, accountID uuid.UUID, remoteID, prompt string, inputImageURLs []string) (*Task, error) {
	task := &Task{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		AccountID:      accountID,
		RemoteID:       remoteID,
		Prompt:         prompt,
		InputImageURLs: inputImageURLs,
		Status:         TaskStatusPending,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if t.RemoteID == "" {
		return ErrEmptyRemoteID
	}

	if t.Prompt == "" {
		return ErrEmptyPrompt
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	return nil
}

// IsEdit reports whether the task was submitted with input images.
func (t *Task) IsEdit() bool {
	return len(t.InputImageURLs) > 0
}

// ApplyStatus merges a reconciled provider status into the task.
// Re-applying the same terminal status is a no-op in effect; moving a task
// backwards or out of a terminal state returns ErrInvalidTransition.
func (t *Task) ApplyStatus(status TaskStatus, resultURL, errorMessage string) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	if !t.Status.CanTransitionTo(status) {
		return ErrInvalidTransition
	}

	t.Status = status
	t.ResultURL = resultURL
	t.ErrorMessage = errorMessage
	t.UpdatedAt = time.Now().UTC()
	return nil
}
