// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeServer
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout    = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// Is allows errors.Is comparisons against the sentinel values by Type.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s).
	// Generation requests are not bounded by this; they run until the
	// stream completes or the context is cancelled.
	Timeout time.Duration

	// ProbeTimeout bounds the availability check (default: 2s)
	ProbeTimeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://localhost:11434",
		Timeout:      30 * time.Second,
		ProbeTimeout: 2 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
// It provides methods for availability checks, model listing, and
// completion generation.
//
// The Client is thread-safe for concurrent use. The base URL is fixed at
// construction; reconfiguring the endpoint means constructing a new Client.
//
// Example:
//
//	client := ollama.NewClient(nil)
//	if !client.CheckAvailable(ctx) {
//	    log.Warn("Ollama not reachable")
//	}
//	text, err := client.Generate(ctx, req, sink)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	// streamClient carries no overall timeout; generation length is
	// unbounded and governed by context cancellation instead.
	streamClient *http.Client
}

// NewClient creates a new Ollama client. A nil config uses defaults;
// zero-valued fields are filled in.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = 2 * time.Second
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the base URL this client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// AVAILABILITY CHECK
// =============================================================================

// CheckAvailable reports whether the Ollama server is reachable. It probes
// the version endpoint and treats any 2xx response as available. It never
// returns an error: unreachable, slow, or misbehaving servers all read as
// unavailable.
func (c *Client) CheckAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/version", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// =============================================================================
// MODEL LISTING
// =============================================================================

// ListModels returns the names of models installed on the server, in the
// order the server reports them. On any failure it returns an empty slice
// and the error; it never returns a partial list.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	var list ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to parse model list", Cause: err}
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// =============================================================================
// GENERATION
// =============================================================================

// Sink receives incremental response text during streaming generation.
// It is invoked synchronously from the request goroutine, once per
// non-empty delta, in arrival order.
type Sink func(delta string)

// Generate sends a completion request and returns the full response text.
//
// When req.Stream is true the response arrives as newline-delimited JSON
// fragments; each fragment's text is passed to sink (if non-nil) and the
// concatenation is returned. When req.Stream is false the server's single
// response object is returned and sink is never called.
//
// The accumulated prefix is lost on mid-stream failure; callers that want
// partial text must capture it through the sink.
func (c *Client) Generate(ctx context.Context, req GenerateRequest, sink Sink) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpClient := c.httpClient
	if req.Stream {
		httpClient = c.streamClient
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.errorFromResponse(resp)
	}

	if !req.Stream {
		var gen GenerateResponse
		if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
			return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to parse response", Cause: err}
		}
		return gen.Response, nil
	}

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, sink); err != nil {
		return "", err
	}
	return reader.Accumulated(), nil
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// classifyTransportError maps transport-level failures onto the error
// taxonomy.
func classifyTransportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "cannot connect to Ollama", Cause: err}
}

// errorFromResponse builds a ClientError from a non-200 response, pulling
// the server's error message out of the body when it parses.
func (c *Client) errorFromResponse(resp *http.Response) *ClientError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var apiErr APIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		return &ClientError{Type: ErrTypeServer, Message: apiErr.Error}
	}
	return &ClientError{Type: ErrTypeServer, Message: "server returned " + resp.Status}
}
