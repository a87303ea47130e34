// Package mailtm implements a client for a mail.tm-style disposable mailbox
// provider: listing domains, registering mailboxes, and reading messages
// with a bearer token scoped to one mailbox.
package mailtm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// maxResponseBytes bounds provider response bodies.
	maxResponseBytes = 1 << 20
)

// Client talks to the mailbox provider's HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a mailbox provider client for the given base URL.
// If httpClient is nil a client with a 30 second timeout is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  defaultUserAgent,
	}
}

// Domain is an available mail domain offered by the provider.
type Domain struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
}

// Sender identifies the origin address of a message.
type Sender struct {
	Address string `json:"address"`
}

// Message is a mailbox message summary as returned by the list endpoint.
type Message struct {
	ID      string `json:"id"`
	From    Sender `json:"from"`
	Subject string `json:"subject"`
}

// MessageDetail is a full mailbox message including its text body.
type MessageDetail struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// hydraList is the provider's collection envelope.
type hydraList[T any] struct {
	Members []T `json:"hydra:member"`
}

// Domains lists the mail domains currently available for registration.
func (c *Client) Domains(ctx context.Context) ([]Domain, error) {
	var list hydraList[Domain]
	if err := c.do(ctx, http.MethodGet, "/domains", "", nil, &list); err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return list.Members, nil
}

// CreateAccount registers a new mailbox with the given address and password.
func (c *Client) CreateAccount(ctx context.Context, address, password string) error {
	body := map[string]string{"address": address, "password": password}
	if err := c.do(ctx, http.MethodPost, "/accounts", "", body, nil); err != nil {
		return fmt.Errorf("create mailbox: %w", err)
	}
	return nil
}

// Token obtains an access token scoped to the given mailbox.
func (c *Client) Token(ctx context.Context, address, password string) (string, error) {
	body := map[string]string{"address": address, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/token", "", body, &resp); err != nil {
		return "", fmt.Errorf("mailbox token: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("mailbox token: empty token in response")
	}
	return resp.Token, nil
}

// Messages lists the mailbox's messages, newest first.
func (c *Client) Messages(ctx context.Context, token string) ([]Message, error) {
	var list hydraList[Message]
	if err := c.do(ctx, http.MethodGet, "/messages", token, nil, &list); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return list.Members, nil
}

// Message fetches one message with its full text body.
func (c *Client) Message(ctx context.Context, token, id string) (*MessageDetail, error) {
	var detail MessageDetail
	if err := c.do(ctx, http.MethodGet, "/messages/"+id, token, nil, &detail); err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &detail, nil
}

// do issues one JSON request against the provider and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
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
	req.Header.Set("User-Agent", c.userAgent)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

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
