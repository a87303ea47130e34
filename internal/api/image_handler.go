package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/service"
)

// GenerateRequest represents the request body for submitting a generation job
type GenerateRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	Prompt    string `json:"prompt"     validate:"required,min=1,max=2000"`
}

// EditRequest represents the request body for submitting an edit job
type EditRequest struct {
	AccountID string `json:"account_id" validate:"required,uuid"`
	UploadID  string `json:"upload_id"  validate:"required,uuid"`
	Prompt    string `json:"prompt"     validate:"required,min=1,max=2000"`
}

// SaveRequest represents the request body for saving a completed result
type SaveRequest struct {
	RemoteID string `json:"remote_id" validate:"required"`
}

// TaskResponse represents the response data for a generation task
type TaskResponse struct {
	ID             string    `json:"id"`
	RemoteID       string    `json:"remote_id"`
	Prompt         string    `json:"prompt"`
	InputImageURLs []string  `json:"input_image_urls,omitempty"`
	Status         string    `json:"status"`
	ResultURL      string    `json:"result_url,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ArtifactResponse represents the response data for a saved artifact
type ArtifactResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Prompt    string    `json:"prompt"`
	SourceURL string    `json:"source_url"`
	BlobURL   string    `json:"blob_url"`
	IsEdited  bool      `json:"is_edited"`
	CreatedAt time.Time `json:"created_at"`
}

// ImageHandler handles image generation HTTP requests
type ImageHandler struct {
	imageService service.ImageService
	validator    *validator.Validate
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(imageService service.ImageService) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		validator:    validator.New(),
	}
}

// Generate handles POST /api/images/generate requests
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)
	task, err := h.imageService.Generate(r.Context(), ownerID, accountID, req.Prompt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// 202: the job runs asynchronously at the provider
	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// Edit handles POST /api/images/edit requests
func (h *ImageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req EditRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	accountID, _ := uuid.Parse(req.AccountID)
	uploadID, _ := uuid.Parse(req.UploadID)
	task, err := h.imageService.Edit(r.Context(), ownerID, accountID, uploadID, req.Prompt)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, taskToResponse(task))
}

// CheckStatus handles GET /api/images/tasks/{remoteID} requests. Each call
// performs one status fetch against the provider unless the task already
// reached a terminal state.
func (h *ImageHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	remoteID := chi.URLParam(r, "remoteID")
	if remoteID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "remoteID is required")
		return
	}

	task, err := h.imageService.CheckStatus(r.Context(), ownerID, remoteID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /api/images/tasks requests
func (h *ImageHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	tasks, err := h.imageService.ListTasks(r.Context(), ownerID, parseLimit(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, taskToResponse(task))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Save handles POST /api/images/save requests
func (h *ImageHandler) Save(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	var req SaveRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	artifact, err := h.imageService.SaveResult(r.Context(), ownerID, req.RemoteID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, artifactToResponse(artifact))
}

// ListArtifacts handles GET /api/images requests
func (h *ImageHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	artifacts, err := h.imageService.ListArtifacts(r.Context(), ownerID, parseLimit(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]ArtifactResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		responses = append(responses, artifactToResponse(artifact))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             task.ID.String(),
		RemoteID:       task.RemoteID,
		Prompt:         task.Prompt,
		InputImageURLs: task.InputImageURLs,
		Status:         string(task.Status),
		ResultURL:      task.ResultURL,
		ErrorMessage:   task.ErrorMessage,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// artifactToResponse converts a domain.Artifact to an ArtifactResponse
func artifactToResponse(artifact *domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:        artifact.ID.String(),
		TaskID:    artifact.TaskID.String(),
		Prompt:    artifact.Prompt,
		SourceURL: artifact.SourceURL,
		BlobURL:   artifact.BlobURL,
		IsEdited:  artifact.IsEdited,
		CreatedAt: artifact.CreatedAt,
	}
}
