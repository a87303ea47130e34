package mailtm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgnegypt/nano-image/internal/platform/mailtm"
)

func TestDomains(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/domains", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hydra:member": []map[string]string{
				{"id": "d1", "domain": "tempmail.example"},
				{"id": "d2", "domain": "other.example"},
			},
		})
	}))
	defer srv.Close()

	client := mailtm.NewClient(srv.URL, srv.Client())
	domains, err := client.Domains(context.Background())
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "tempmail.example", domains[0].Domain)
}

func TestCreateAccountAndToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc123@tempmail.example", body["address"])
		assert.Equal(t, "Pass1234!", body["password"])

		switch r.URL.Path {
		case "/accounts":
			w.WriteHeader(http.StatusCreated)
		case "/token":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "mailbox-token"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := mailtm.NewClient(srv.URL, srv.Client())
	ctx := context.Background()

	require.NoError(t, client.CreateAccount(ctx, "abc123@tempmail.example", "Pass1234!"))

	token, err := client.Token(ctx, "abc123@tempmail.example", "Pass1234!")
	require.NoError(t, err)
	assert.Equal(t, "mailbox-token", token)
}

func TestMessages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer mailbox-token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/messages":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"hydra:member": []map[string]any{
					{"id": "m1", "from": map[string]string{"address": "noreply@nanabanana.ai"}},
				},
			})
		case "/messages/m1":
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":   "m1",
				"text": "Your verification code is 482913.",
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := mailtm.NewClient(srv.URL, srv.Client())
	ctx := context.Background()

	messages, err := client.Messages(ctx, "mailbox-token")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "noreply@nanabanana.ai", messages[0].From.Address)

	detail, err := client.Message(ctx, "mailbox-token", "m1")
	require.NoError(t, err)
	assert.Contains(t, detail.Text, "482913")
}

func TestErrorStatusSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := mailtm.NewClient(srv.URL, srv.Client())
	_, err := client.Domains(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
