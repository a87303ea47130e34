package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/blob"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/platform/nanabanana"
	"github.com/mgnegypt/nano-image/internal/store"
)

// GenerationClient is the generation provider surface the image service
// needs. All calls except Download run under an established account session.
type GenerationClient interface {
	Upload(ctx context.Context, sess *nanabanana.Session, filename string, data []byte) (string, error)
	CreateTask(ctx context.Context, sess *nanabanana.Session, prompt string, imageURLs []string) (string, error)
	TaskStatus(ctx context.Context, sess *nanabanana.Session, taskID string) (nanabanana.TaskState, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// ImageService submits generation and edit jobs to the external provider,
// reconciles their status on demand and saves completed results as durable
// artifacts.
type ImageService interface {
	// Generate submits a text-to-image job under the given account.
	// Returns ErrNotOwned if the account belongs to another user and
	// ErrQuotaExceeded if the account is exhausted.
	Generate(ctx context.Context, ownerID, accountID uuid.UUID, prompt string) (*domain.Task, error)

	// Edit submits an image edit job using a previously stored upload as
	// input. The upload bytes are pushed to the provider first so the job
	// can fetch them. Returns ErrUploadNotFound from the store when the
	// upload does not exist.
	Edit(ctx context.Context, ownerID, accountID, uploadID uuid.UUID, prompt string) (*domain.Task, error)

	// CheckStatus reconciles the task identified by its provider-side ID.
	// Tasks already in a terminal state are returned without a provider
	// call. A provider-reported job failure lands as status=failed on the
	// task, never as an error.
	CheckStatus(ctx context.Context, ownerID uuid.UUID, remoteID string) (*domain.Task, error)

	// SaveResult downloads a completed task's result image, stores it in
	// the blob store and records the artifact. The artifact insert and the
	// account use-count increment commit atomically.
	// Returns ErrTaskNotCompleted if the task has no result yet.
	SaveResult(ctx context.Context, ownerID uuid.UUID, remoteID string) (*domain.Artifact, error)

	// ListTasks retrieves the owner's tasks, newest first, up to limit.
	ListTasks(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Task, error)

	// ListArtifacts retrieves the owner's saved artifacts, newest first,
	// up to limit.
	ListArtifacts(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Artifact, error)
}

// ImageServiceImpl implements the ImageService interface
type ImageServiceImpl struct {
	runTx     TxRunner
	accounts  store.AccountStore
	tasks     store.TaskStore
	artifacts store.ArtifactStore
	uploads   store.UploadStore
	quota     *QuotaLedger
	provider  GenerationClient
	blobs     blob.Store
	logger    *slog.Logger
}

// NewImageService creates a new ImageService.
func NewImageService(
	runTx TxRunner,
	accounts store.AccountStore,
	tasks store.TaskStore,
	artifacts store.ArtifactStore,
	uploads store.UploadStore,
	quota *QuotaLedger,
	provider GenerationClient,
	blobs blob.Store,
	logger *slog.Logger,
) ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageServiceImpl{
		runTx:     runTx,
		accounts:  accounts,
		tasks:     tasks,
		artifacts: artifacts,
		uploads:   uploads,
		quota:     quota,
		provider:  provider,
		blobs:     blobs,
		logger:    logger.With(slog.String("component", "image_service")),
	}
}

// Generate submits a text-to-image job under the given account.
func (s *ImageServiceImpl) Generate(ctx context.Context, ownerID, accountID uuid.UUID, prompt string) (*domain.Task, error) {
	return s.submit(ctx, ownerID, accountID, prompt, nil)
}

// Edit submits an image edit job using a stored upload as input.
func (s *ImageServiceImpl) Edit(ctx context.Context, ownerID, accountID, uploadID uuid.UUID, prompt string) (*domain.Task, error) {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve upload: %w", err)
	}
	if upload.OwnerID != ownerID {
		s.logger.Warn("upload access denied",
			"upload_id", uploadID,
			"owner_id", ownerID)
		return nil, ErrNotOwned
	}

	data, err := s.blobs.Get(ctx, upload.BlobKey)
	if err != nil {
		s.logger.Error("failed to read upload blob",
			"error", err,
			"upload_id", uploadID,
			"blob_key", upload.BlobKey)
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	account, err := s.authorizeSubmission(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}

	// The provider only accepts input images by URL, so the stored bytes
	// are pushed to its upload endpoint under the account session first.
	sess := nanabanana.SessionFromToken(account.SessionToken)
	remoteURL, err := s.provider.Upload(ctx, sess, path.Base(upload.BlobKey), data)
	if err != nil {
		s.logger.Error("failed to push input image to provider",
			"error", err,
			"upload_id", uploadID,
			"account_id", accountID)
		return nil, fmt.Errorf("failed to upload input image: %w", err)
	}

	return s.createTask(ctx, account, prompt, []string{remoteURL})
}

// submit runs the common generate path: ownership, quota, provider create,
// task persist.
func (s *ImageServiceImpl) submit(ctx context.Context, ownerID, accountID uuid.UUID, prompt string, imageURLs []string) (*domain.Task, error) {
	account, err := s.authorizeSubmission(ctx, ownerID, accountID)
	if err != nil {
		return nil, err
	}
	return s.createTask(ctx, account, prompt, imageURLs)
}

// authorizeSubmission loads the account and applies the ownership and quota
// preconditions shared by all job submissions.
func (s *ImageServiceImpl) authorizeSubmission(ctx context.Context, ownerID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("failed to retrieve account for submission",
				"error", err,
				"account_id", accountID)
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}

	if account.OwnerID != ownerID {
		s.logger.Warn("account access denied",
			"account_id", accountID,
			"owner_id", ownerID)
		return nil, ErrNotOwned
	}

	if err := s.quota.CanSubmit(account); err != nil {
		return nil, err
	}

	return account, nil
}

// createTask calls the provider's creation endpoint and persists the pending
// task keyed by the returned remote ID.
func (s *ImageServiceImpl) createTask(ctx context.Context, account *domain.Account, prompt string, imageURLs []string) (*domain.Task, error) {
	sess := nanabanana.SessionFromToken(account.SessionToken)
	remoteID, err := s.provider.CreateTask(ctx, sess, prompt, imageURLs)
	if err != nil {
		s.logger.Error("provider task creation failed",
			"error", err,
			"account_id", account.ID)
		return nil, fmt.Errorf("failed to create provider task: %w", err)
	}

	task, err := domain.NewTask(account.OwnerID, account.ID, remoteID, prompt, imageURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("failed to save task",
			"error", err,
			"remote_id", remoteID,
			"account_id", account.ID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.logger.Info("submitted task",
		"task_id", task.ID,
		"remote_id", remoteID,
		"account_id", account.ID,
		"edit", task.IsEdit())

	return task, nil
}

// CheckStatus reconciles the task identified by its provider-side ID.
func (s *ImageServiceImpl) CheckStatus(ctx context.Context, ownerID uuid.UUID, remoteID string) (*domain.Task, error) {
	task, err := s.loadOwnedTask(ctx, ownerID, remoteID)
	if err != nil {
		return nil, err
	}

	// Terminal tasks never change again; skip the provider round trip.
	if task.Status.IsTerminal() {
		return task, nil
	}

	account, err := s.accounts.GetByID(ctx, task.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve account for status check: %w", err)
	}

	sess := nanabanana.SessionFromToken(account.SessionToken)
	state, err := s.provider.TaskStatus(ctx, sess, remoteID)
	if err != nil {
		s.logger.Error("provider status check failed",
			"error", err,
			"remote_id", remoteID)
		return nil, fmt.Errorf("failed to check provider status: %w", err)
	}

	if err := task.ApplyStatus(statusFromProvider(state.Status), state.ResultURL, state.ErrorMessage); err != nil {
		return nil, fmt.Errorf("failed to apply provider status: %w", err)
	}

	if err := s.tasks.UpdateStatus(ctx, remoteID, task.Status, task.ResultURL, task.ErrorMessage); err != nil {
		s.logger.Error("failed to persist reconciled status",
			"error", err,
			"remote_id", remoteID)
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Debug("reconciled task status",
		"remote_id", remoteID,
		"status", task.Status)

	return task, nil
}

// SaveResult downloads a completed task's result image and records the
// artifact together with the confirmed account use.
func (s *ImageServiceImpl) SaveResult(ctx context.Context, ownerID uuid.UUID, remoteID string) (*domain.Artifact, error) {
	task, err := s.loadOwnedTask(ctx, ownerID, remoteID)
	if err != nil {
		return nil, err
	}

	if task.Status != domain.TaskStatusCompleted || task.ResultURL == "" {
		return nil, ErrTaskNotCompleted
	}

	data, err := s.provider.Download(ctx, task.ResultURL)
	if err != nil {
		s.logger.Error("failed to download result image",
			"error", err,
			"remote_id", remoteID)
		return nil, fmt.Errorf("failed to download result: %w", err)
	}

	blobKey := fmt.Sprintf("artifacts/%s.png", task.ID)
	blobURL, err := s.blobs.Put(ctx, blobKey, data, "image/png")
	if err != nil {
		s.logger.Error("failed to store result image",
			"error", err,
			"remote_id", remoteID)
		return nil, fmt.Errorf("failed to store result: %w", err)
	}

	artifact, err := domain.NewArtifact(ownerID, task.ID, task.Prompt, task.ResultURL, blobKey, blobURL, task.IsEdit())
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.artifacts.WithTx(tx).Create(ctx, artifact); err != nil {
			return fmt.Errorf("failed to save artifact: %w", err)
		}
		return s.quota.ConfirmUse(ctx, tx, task.AccountID)
	})
	if err != nil {
		s.logger.Error("failed to commit artifact save",
			"error", err,
			"remote_id", remoteID)
		return nil, err
	}

	s.logger.Info("saved artifact",
		"artifact_id", artifact.ID,
		"task_id", task.ID,
		"account_id", task.AccountID)

	return artifact, nil
}

// ListTasks retrieves the owner's tasks, newest first.
func (s *ImageServiceImpl) ListTasks(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// ListArtifacts retrieves the owner's saved artifacts, newest first.
func (s *ImageServiceImpl) ListArtifacts(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Artifact, error) {
	artifacts, err := s.artifacts.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error("failed to list artifacts",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return artifacts, nil
}

// loadOwnedTask fetches a task by remote ID and verifies ownership.
func (s *ImageServiceImpl) loadOwnedTask(ctx context.Context, ownerID uuid.UUID, remoteID string) (*domain.Task, error) {
	task, err := s.tasks.GetByRemoteID(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if task.OwnerID != ownerID {
		s.logger.Warn("task access denied",
			"remote_id", remoteID,
			"owner_id", ownerID)
		return nil, ErrNotOwned
	}

	return task, nil
}

// statusFromProvider maps a provider status onto the task status domain.
// The two sets are aligned one to one.
func statusFromProvider(status nanabanana.Status) domain.TaskStatus {
	switch status {
	case nanabanana.StatusPending:
		return domain.TaskStatusPending
	case nanabanana.StatusProcessing:
		return domain.TaskStatusProcessing
	case nanabanana.StatusCompleted:
		return domain.TaskStatusCompleted
	case nanabanana.StatusFailed:
		return domain.TaskStatusFailed
	}
	return domain.TaskStatus(status)
}
