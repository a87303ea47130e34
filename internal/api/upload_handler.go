package api

import (
	"io"
	"net/http"
	"time"

	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/service"
)

// maxUploadBytes caps the accepted input image size.
const maxUploadBytes = 32 << 20

// UploadResponse represents the response data for a stored upload
type UploadResponse struct {
	ID        string    `json:"id"`
	BlobURL   string    `json:"blob_url"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// UploadHandler handles input image upload HTTP requests
type UploadHandler struct {
	uploadService service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// CreateUpload handles POST /api/uploads requests with a multipart "file"
// field.
func (h *UploadHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to read upload", err)
		return
	}

	upload, err := h.uploadService.SaveUpload(r.Context(), ownerID, header.Header.Get("Content-Type"), data)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to store upload")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, uploadToResponse(upload))
}

// ListUploads handles GET /api/uploads requests
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	uploads, err := h.uploadService.ListUploads(r.Context(), ownerID, parseLimit(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]UploadResponse, 0, len(uploads))
	for _, upload := range uploads {
		responses = append(responses, uploadToResponse(upload))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// DeleteUpload handles DELETE /api/uploads/{id} requests
func (h *UploadHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}

	uploadID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.uploadService.DeleteUpload(r.Context(), ownerID, uploadID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadToResponse converts a domain.Upload to an UploadResponse
func uploadToResponse(upload *domain.Upload) UploadResponse {
	return UploadResponse{
		ID:        upload.ID.String(),
		BlobURL:   upload.BlobURL,
		MimeType:  upload.MimeType,
		CreatedAt: upload.CreatedAt,
	}
}
