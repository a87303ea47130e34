package nanabanana_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/platform/nanabanana"
)

func TestNewSessionExtractsCSRF(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/csrf", r.URL.Path)
		http.SetCookie(w, &http.Cookie{Name: "__Host-authjs.csrf-token", Value: "csrf-cookie-value"})
		_ = json.NewEncoder(w).Encode(map[string]string{"csrfToken": "csrf-token-value"})
	}))
	defer srv.Close()

	client := nanabanana.NewClient(srv.URL, srv.Client())
	sess, err := client.NewSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "csrf-token-value", sess.CSRFToken)
	assert.Equal(t, "csrf-cookie-value", sess.CSRFCookie)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	t.Run("extracts session cookie", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/auth/callback/email-verification", r.URL.Path)

			cookie, err := r.Cookie("__Host-authjs.csrf-token")
			require.NoError(t, err)
			assert.Equal(t, "csrf-cookie-value", cookie.Value)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user@tempmail.example", body["email"])
			assert.Equal(t, "482913", body["code"])
			assert.Equal(t, "csrf-token-value", body["csrfToken"])

			http.SetCookie(w, &http.Cookie{Name: "__Secure-authjs.session-token", Value: "session-value"})
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := nanabanana.NewClient(srv.URL, srv.Client())
		sess := &nanabanana.Session{CSRFToken: "csrf-token-value", CSRFCookie: "csrf-cookie-value"}

		err := client.VerifyEmail(context.Background(), sess, "user@tempmail.example", "482913")
		require.NoError(t, err)
		assert.Equal(t, "session-value", sess.SessionToken)
	})

	t.Run("missing session cookie", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := nanabanana.NewClient(srv.URL, srv.Client())
		sess := &nanabanana.Session{CSRFToken: "t", CSRFCookie: "c"}

		err := client.VerifyEmail(context.Background(), sess, "user@tempmail.example", "482913")
		assert.ErrorIs(t, err, nanabanana.ErrNoSessionCookie)
	})
}

func TestCreateTaskSendsFixedParameters(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/image-generation-nano-banana/create", r.URL.Path)

		cookie, err := r.Cookie("__Secure-authjs.session-token")
		require.NoError(t, err)
		assert.Equal(t, "session-value", cookie.Value)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a cat in space", body["prompt"])
		assert.Equal(t, "png", body["output_format"])
		assert.Equal(t, float64(1024), body["width"])
		assert.Equal(t, float64(20), body["steps"])
		assert.Equal(t, 7.5, body["guidance_scale"])
		assert.Equal(t, false, body["is_public"])
		_, hasImages := body["image_urls"]
		assert.False(t, hasImages)

		_ = json.NewEncoder(w).Encode(map[string]string{"task_id": "remote-task-1"})
	}))
	defer srv.Close()

	client := nanabanana.NewClient(srv.URL, srv.Client())
	sess := nanabanana.SessionFromToken("session-value")

	taskID, err := client.CreateTask(context.Background(), sess, "a cat in space", nil)
	require.NoError(t, err)
	assert.Equal(t, "remote-task-1", taskID)
}

func TestCreateTaskEditCarriesImageURLs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"https://img.example/in.jpg"}, body["image_urls"])
		_ = json.NewEncoder(w).Encode(map[string]string{"task_id": "remote-task-2"})
	}))
	defer srv.Close()

	client := nanabanana.NewClient(srv.URL, srv.Client())
	sess := nanabanana.SessionFromToken("session-value")

	taskID, err := client.CreateTask(context.Background(), sess, "make it blue", []string{"https://img.example/in.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "remote-task-2", taskID)
}

func TestTaskStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]string
		want    nanabanana.TaskState
		wantErr bool
	}{
		{
			name:    "completed with result",
			payload: map[string]string{"status": "completed", "result_url": "https://x/y.png"},
			want: nanabanana.TaskState{
				Status:    nanabanana.StatusCompleted,
				ResultURL: "https://x/y.png",
			},
		},
		{
			name:    "failed carries message, not error",
			payload: map[string]string{"status": "failed", "error_message": "nsfw content"},
			want: nanabanana.TaskState{
				Status:       nanabanana.StatusFailed,
				ErrorMessage: "nsfw content",
			},
		},
		{
			name:    "processing",
			payload: map[string]string{"status": "processing"},
			want:    nanabanana.TaskState{Status: nanabanana.StatusProcessing},
		},
		{
			name:    "unknown status is a protocol error",
			payload: map[string]string{"status": "queued"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/image-generation-nano-banana/remote-task-1", r.URL.Path)
				_ = json.NewEncoder(w).Encode(tt.payload)
			}))
			defer srv.Close()

			client := nanabanana.NewClient(srv.URL, srv.Client())
			state, err := client.TaskStatus(context.Background(), nanabanana.SessionFromToken("s"), "remote-task-1")

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, state)
		})
	}
}

func TestUpload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "image.jpg", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://img.example/uploaded.jpg"})
	}))
	defer srv.Close()

	client := nanabanana.NewClient(srv.URL, srv.Client())
	sess := nanabanana.SessionFromToken("session-value")

	url, err := client.Upload(context.Background(), sess, "image.jpg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/uploaded.jpg", url)
}
