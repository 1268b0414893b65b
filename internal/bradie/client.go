// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bradie provides the client for the remote agent backend.
//
// Bradie exposes a session-scoped request/response API: messages are sent
// to a named session and the reply arrives as one completed string once
// the remote agent finishes, rather than as a token stream.
package bradie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jeranaias/agentdeck/internal/model"
)

// Configuration constants for the Bradie API.
const (
	// DefaultTimeout is the default timeout for API requests. Agent replies
	// can take a while; sends get a longer deadline from the caller.
	DefaultTimeout = 60 * time.Second
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared HTTP client with connection pooling for all Bradie requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	// No client timeout: per-request deadlines come from the context.
}

// Error variables for common Bradie errors.
var (
	// ErrNotConfigured indicates the endpoint URL is not set.
	ErrNotConfigured = errors.New("bradie endpoint not configured")

	// ErrUnreachable indicates the backend could not be reached.
	ErrUnreachable = errors.New("bradie backend unreachable")

	// ErrSessionNotFound indicates the referenced session does not exist
	// on the backend.
	ErrSessionNotFound = errors.New("session not found")
)

// APIError represents an error response from the Bradie API.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bradie error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("bradie error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Bradie remote agent backend.
// Thread-safe for concurrent use.
type Client struct {
	baseURL string
	domain  string
	http    *http.Client
}

// NewClient creates a client for the given base URL. The optional domain
// is forwarded on session creation so the backend can scope the working
// context.
func NewClient(baseURL, domain string) *Client {
	return &Client{
		baseURL: baseURL,
		domain:  domain,
		http:    sharedHTTPClient,
	}
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// HEALTH
// =============================================================================

// CheckHealth verifies the backend is reachable and healthy.
// Used as the liveness call by the connection probe.
func (c *Client) CheckHealth(ctx context.Context) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: "health check failed"}
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// createSessionRequest is the body for POST /sessions.
type createSessionRequest struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Domain string `json:"domain,omitempty"`
}

// sessionResponse is the backend's session representation.
type sessionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession creates a named working context on the backend and returns
// it with the backend-assigned ID.
func (c *Client) CreateSession(ctx context.Context, name, path string) (model.Session, error) {
	if c.baseURL == "" {
		return model.Session{}, ErrNotConfigured
	}

	body, err := json.Marshal(createSessionRequest{Name: name, Path: path, Domain: c.domain})
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Session{}, ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Session{}, c.decodeAPIError(resp)
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}

	return model.Session{
		ID:        sr.ID,
		Name:      sr.Name,
		Path:      sr.Path,
		CreatedAt: sr.CreatedAt,
	}, nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// sendMessageRequest is the body for POST /sessions/{id}/messages.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// sendMessageResponse carries the agent's completed reply.
type sendMessageResponse struct {
	Response string `json:"response"`
}

// SendMessageAndWait sends text to a session and blocks until the agent's
// completed reply arrives. There is no streaming: the whole response comes
// back as one string.
func (c *Client) SendMessageAndWait(ctx context.Context, sessionID, text string) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/sessions/" + sessionID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.decodeAPIError(resp)
	}

	var sr sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return sr.Response, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeAPIError extracts the backend's error message if the body carries
// one, otherwise reports the bare status.
func (c *Client) decodeAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	return &APIError{Status: resp.StatusCode}
}
