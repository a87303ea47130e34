package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/api/shared"
	"github.com/mgnegypt/nano-image/internal/domain"
)

// authedRequest builds a request whose context already carries the owner ID,
// standing in for the auth middleware.
func authedRequest(t *testing.T, method, target string, ownerID uuid.UUID, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.OwnerIDContextKey, ownerID)
	return req.WithContext(ctx)
}

// serve routes the request through a chi router so URL params resolve.
func serve(t *testing.T, register func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func mustAccount(t *testing.T, ownerID uuid.UUID) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount(ownerID, "a@b.test", "p", "tok", 5)
	require.NoError(t, err)
	return account
}

func mustTask(t *testing.T, ownerID, accountID uuid.UUID, remoteID string) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(ownerID, accountID, remoteID, "a red fox", nil)
	require.NoError(t, err)
	return task
}
