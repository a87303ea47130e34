// Package nanabanana implements the HTTP client for the external image
// generation provider: the email verification handshake used during account
// provisioning, image uploads, and the creation and status endpoints for
// generation tasks.
package nanabanana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Mobile Safari/537.36"

	// maxResponseBytes bounds provider response bodies.
	maxResponseBytes = 1 << 20

	// maxImageBytes bounds downloaded result images.
	maxImageBytes = 32 << 20
)

// ErrNoSessionCookie is returned when the verification callback response
// does not carry a session cookie.
var ErrNoSessionCookie = errors.New("no session cookie in verification response")

// Client talks to the generation provider's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a provider client for the given base URL.
// If httpClient is nil a client with a 60 second timeout is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  defaultUserAgent,
	}
}

// NewSession fetches a CSRF token and CSRF cookie from the provider,
// starting a new unauthenticated session for the verification handshake.
func (c *Client) NewSession(ctx context.Context) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/auth/csrf", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}

	var body struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := decodeBody(resp, &body); err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}

	return &Session{
		CSRFToken:  body.CSRFToken,
		CSRFCookie: cookieValue(resp, csrfCookieName),
	}, nil
}

// RequestVerification asks the provider to mail a verification code to the
// given address. The session must carry the CSRF cookie.
func (c *Client) RequestVerification(ctx context.Context, sess *Session, email string) error {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return fmt.Errorf("encode verification request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/email-verification", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	sess.attachCSRF(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request verification email: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("request verification email: %w", err)
	}
	return nil
}

// VerifyEmail submits the mailed code together with the CSRF token to the
// provider's verification callback and stores the extracted session cookie
// on the session. Returns ErrNoSessionCookie when the response sets none.
func (c *Client) VerifyEmail(ctx context.Context, sess *Session, email, code string) error {
	payload, err := json.Marshal(map[string]string{
		"email":       email,
		"code":        code,
		"redirect":    "false",
		"csrfToken":   sess.CSRFToken,
		"callbackUrl": c.baseURL,
	})
	if err != nil {
		return fmt.Errorf("encode verification callback: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/callback/email-verification", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("X-Auth-Return-Redirect", "1")
	sess.attachCSRF(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verification callback: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("verification callback: %w", err)
	}

	token := cookieValue(resp, sessionCookieName)
	if token == "" {
		return ErrNoSessionCookie
	}

	sess.SessionToken = token
	return nil
}

// Upload sends image bytes to the provider and returns the hosted URL the
// provider assigns, for use as an edit input.
func (c *Client) Upload(ctx context.Context, sess *Session, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", c.baseURL)
	sess.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := decodeBody(resp, &body); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("upload image: empty url in response")
	}
	return body.URL, nil
}

// CreateTask submits a generation job under the session's account and
// returns the provider's task identifier. imageURLs is nil for generate
// jobs; for edit jobs it references previously uploaded images. All other
// generation parameters are fixed.
func (c *Client) CreateTask(ctx context.Context, sess *Session, prompt string, imageURLs []string) (string, error) {
	payload, err := json.Marshal(newGenerationRequest(prompt, imageURLs))
	if err != nil {
		return "", fmt.Errorf("encode creation request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/image-generation-nano-banana/create", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", c.baseURL)
	sess.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	var body struct {
		TaskID string `json:"task_id"`
	}
	if err := decodeBody(resp, &body); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	if body.TaskID == "" {
		return "", fmt.Errorf("create task: empty task_id in response")
	}
	return body.TaskID, nil
}

// TaskStatus issues one status GET for the given remote task and maps the
// response. A failed job is reported through TaskState, not an error.
func (c *Client) TaskStatus(ctx context.Context, sess *Session, taskID string) (TaskState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/image-generation-nano-banana/"+taskID, nil)
	if err != nil {
		return TaskState{}, err
	}
	sess.attachSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskState{}, fmt.Errorf("task status: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return TaskState{}, fmt.Errorf("task status: %w", err)
	}

	var body struct {
		Status       string `json:"status"`
		ResultURL    string `json:"result_url"`
		ErrorMessage string `json:"error_message"`
	}
	if err := decodeBody(resp, &body); err != nil {
		return TaskState{}, fmt.Errorf("task status: %w", err)
	}

	status, err := ParseStatus(body.Status)
	if err != nil {
		return TaskState{}, err
	}

	return TaskState{
		Status:       status,
		ResultURL:    body.ResultURL,
		ErrorMessage: body.ErrorMessage,
	}, nil
}

// Download fetches result image bytes from the given URL.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func decodeBody(resp *http.Response, out any) error {
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
