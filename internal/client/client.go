// Package client implements a small HTTP client for the nano-image server
// API, used by the command line companion to submit jobs and keep its local
// task ledger in sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mgnegypt/nano-image/internal/domain"
	"github.com/mgnegypt/nano-image/internal/ledger"
)

// maxResponseBytes bounds server response bodies.
const maxResponseBytes = 1 << 20

// Client talks to the server's authenticated JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an API client for the given base URL and bearer token.
// If httpClient is nil a client with a 30 second timeout is used.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
	}
}

// Task mirrors the server's task representation.
type Task struct {
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

// Generate submits a text-to-image job against the given account.
func (c *Client) Generate(ctx context.Context, accountID, prompt string) (*Task, error) {
	body := map[string]string{"account_id": accountID, "prompt": prompt}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/api/images/generate", body, &task); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &task, nil
}

// Edit submits an edit job using a previously stored upload as input.
func (c *Client) Edit(ctx context.Context, accountID, uploadID, prompt string) (*Task, error) {
	body := map[string]string{"account_id": accountID, "upload_id": uploadID, "prompt": prompt}
	var task Task
	if err := c.do(ctx, http.MethodPost, "/api/images/edit", body, &task); err != nil {
		return nil, fmt.Errorf("edit: %w", err)
	}
	return &task, nil
}

// TaskStatus fetches the current state of a task by its remote ID. The
// server refreshes non-terminal tasks against the provider on each call.
func (c *Client) TaskStatus(ctx context.Context, remoteID string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/api/images/tasks/"+remoteID, nil, &task); err != nil {
		return nil, fmt.Errorf("task status: %w", err)
	}
	return &task, nil
}

// Reconcile implements ledger.Reconciler on top of TaskStatus.
func (c *Client) Reconcile(ctx context.Context, remoteID string) (ledger.State, error) {
	task, err := c.TaskStatus(ctx, remoteID)
	if err != nil {
		return ledger.State{}, err
	}

	status := domain.TaskStatus(task.Status)
	if !status.IsValid() {
		return ledger.State{}, fmt.Errorf("task status: unknown status %q", task.Status)
	}
	return ledger.State{
		Status:       status,
		ResultURL:    task.ResultURL,
		ErrorMessage: task.ErrorMessage,
	}, nil
}

// do issues one JSON request against the server and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d from %s %s", resp.StatusCode, method, path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
