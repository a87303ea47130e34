package api_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/api"
	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/service"
)

type fakeUploadService struct {
	upload  *domain.Upload
	uploads []*domain.Upload
	err     error

	lastMime string
	lastData []byte
	deleted  []uuid.UUID
}

func (s *fakeUploadService) SaveUpload(ctx context.Context, ownerID uuid.UUID, mimeType string, data []byte) (*domain.Upload, error) {
	s.lastMime = mimeType
	s.lastData = data
	if s.err != nil {
		return nil, s.err
	}
	return s.upload, nil
}

func (s *fakeUploadService) ListUploads(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Upload, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.uploads, nil
}

func (s *fakeUploadService) DeleteUpload(ctx context.Context, ownerID, uploadID uuid.UUID) error {
	s.deleted = append(s.deleted, uploadID)
	return s.err
}

func registerUploadRoutes(h *api.UploadHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/api/uploads", h.CreateUpload)
		r.Get("/api/uploads", h.ListUploads)
		r.Delete("/api/uploads/{id}", h.DeleteUpload)
	}
}

// multipartUpload builds a request carrying the given bytes as the "file"
// part with an explicit Content-Type.
func multipartUpload(t *testing.T, ownerID uuid.UUID, fieldName, mimeType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="input.png"`)
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	ctx := context.WithValue(req.Context(), shared.OwnerIDContextKey, ownerID)
	return req.WithContext(ctx)
}

func mustUpload(t *testing.T, ownerID uuid.UUID) *domain.Upload {
	t.Helper()
	upload, err := domain.NewUpload(ownerID, "uploads/x.png", "http://blobs.test/uploads/x.png", "image/png")
	require.NoError(t, err)
	return upload
}

func TestCreateUploadHandler(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	svc := &fakeUploadService{upload: mustUpload(t, ownerID)}
	h := api.NewUploadHandler(svc)

	req := multipartUpload(t, ownerID, "file", "image/png", []byte("png-bytes"))
	rec := serve(t, registerUploadRoutes(h), req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.UploadResponse
	decodeInto(t, rec, &resp)
	assert.Equal(t, "http://blobs.test/uploads/x.png", resp.BlobURL)
	assert.Equal(t, "image/png", resp.MimeType)
	assert.Equal(t, "image/png", svc.lastMime)
	assert.Equal(t, []byte("png-bytes"), svc.lastData)
}

func TestCreateUploadHandlerMissingFileField(t *testing.T) {
	t.Parallel()

	h := api.NewUploadHandler(&fakeUploadService{})

	req := multipartUpload(t, uuid.New(), "attachment", "image/png", []byte("png-bytes"))
	rec := serve(t, registerUploadRoutes(h), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUploadHandlerNotMultipart(t *testing.T) {
	t.Parallel()

	h := api.NewUploadHandler(&fakeUploadService{})

	req := authedRequest(t, http.MethodPost, "/api/uploads", uuid.New(), map[string]string{"file": "x"})
	rec := serve(t, registerUploadRoutes(h), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUploadHandlerUnsupportedType(t *testing.T) {
	t.Parallel()

	h := api.NewUploadHandler(&fakeUploadService{err: service.ErrUnsupportedUpload})

	req := multipartUpload(t, uuid.New(), "file", "text/plain", []byte("not an image"))
	rec := serve(t, registerUploadRoutes(h), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUploadsHandler(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	svc := &fakeUploadService{uploads: []*domain.Upload{mustUpload(t, ownerID)}}
	h := api.NewUploadHandler(svc)

	req := authedRequest(t, http.MethodGet, "/api/uploads", ownerID, nil)
	rec := serve(t, registerUploadRoutes(h), req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []api.UploadResponse
	decodeInto(t, rec, &resp)
	require.Len(t, resp, 1)
}

func TestDeleteUploadHandler(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	uploadID := uuid.New()
	svc := &fakeUploadService{}
	h := api.NewUploadHandler(svc)

	req := authedRequest(t, http.MethodDelete, "/api/uploads/"+uploadID.String(), ownerID, nil)
	rec := serve(t, registerUploadRoutes(h), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.deleted, 1)
	assert.Equal(t, uploadID, svc.deleted[0])
}

func TestDeleteUploadHandlerNotOwned(t *testing.T) {
	t.Parallel()

	h := api.NewUploadHandler(&fakeUploadService{err: service.ErrNotOwned})

	req := authedRequest(t, http.MethodDelete, "/api/uploads/"+uuid.NewString(), uuid.New(), nil)
	rec := serve(t, registerUploadRoutes(h), req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
