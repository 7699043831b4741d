// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the controller binding the session store to the
// Ollama client.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/ollamadesk/internal/ollama"
	"github.com/jeranaias/ollamadesk/internal/session"
	"github.com/jeranaias/ollamadesk/internal/tasks"
)

// =============================================================================
// ERRORS
// =============================================================================

// ControllerError represents a controller-level error.
// It implements the error interface and can be compared using errors.Is.
type ControllerError struct {
	Message string
}

// Error implements the error interface.
func (e *ControllerError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing controller errors.
func (e *ControllerError) Is(target error) bool {
	t, ok := target.(*ControllerError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrGenerationInFlight is returned by Send while another send runs.
	ErrGenerationInFlight = &ControllerError{Message: "a generation is already in flight"}

	// ErrSessionReplaced is returned when the session was cleared or
	// replaced mid-generation; the exchange was dropped.
	ErrSessionReplaced = &ControllerError{Message: "session was replaced during generation"}
)

// narrationPrefix prefixes the assistant-side text recorded for a failed
// generation. The wording is part of the saved-chat format.
const narrationPrefix = "Error communicating with Ollama: "

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives generation against the session store. Thread-safe.
type Controller struct {
	store  *session.Store
	runner *tasks.Runner
	logger *slog.Logger

	mu         sync.Mutex
	client     *ollama.Client
	generating bool

	// probeLimiter throttles availability probes; between allowances the
	// cached result is served.
	probeLimiter  *rate.Limiter
	lastAvailable bool

	models []string
}

// NewController creates a controller over the store.
func NewController(store *session.Store, runner *tasks.Runner, logger *slog.Logger) *Controller {
	return &Controller{
		store:        store,
		runner:       runner,
		logger:       logger,
		probeLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// clientFor returns a client for the given base URL, rebuilding it when
// the endpoint has changed since the last call.
func (c *Controller) clientFor(baseURL string) *ollama.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil || c.client.BaseURL() != baseURL {
		c.client = ollama.NewClient(&ollama.ClientConfig{BaseURL: baseURL})
	}
	return c.client
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

// Send generates a reply to prompt and appends exactly one exchange to the
// conversation. Streaming deltas go to sink as they arrive. On a client
// failure the narration string takes the assistant side, so the failed
// attempt is still recorded; the narration is also the returned text.
//
// At most one send runs at a time: a second call while one is in flight
// fails fast with ErrGenerationInFlight and appends nothing. A send that
// straddles a Clear or Load appends nothing and returns ErrSessionReplaced.
func (c *Controller) Send(ctx context.Context, prompt string, sink ollama.Sink) (string, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return "", ErrGenerationInFlight
	}
	c.generating = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generating = false
		c.mu.Unlock()
	}()

	snap := c.store.Snapshot()
	client := c.clientFor(snap.BaseURL)

	req := ollama.GenerateRequest{
		Model:   snap.Model,
		Prompt:  prompt,
		Stream:  sink != nil,
		System:  snap.SystemPrompt,
		Options: snap.Parameters,
	}

	start := time.Now()
	text, err := client.Generate(ctx, req, sink)
	if err != nil {
		// The failure is narrated into the conversation instead of
		// aborting the exchange; the structured error stays in the log.
		c.logger.Error("generation failed", "model", snap.Model, "error", err)
		text = narrationPrefix + err.Error()
	} else {
		c.logger.Info("generation complete", "model", snap.Model,
			"chars", len(text), "duration", time.Since(start))
	}

	if !c.store.AppendExchangeAt(snap.Epoch, prompt, text) {
		return text, ErrSessionReplaced
	}
	return text, nil
}

// Generating reports whether a send is currently in flight.
func (c *Controller) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// =============================================================================
// AVAILABILITY
// =============================================================================

// CheckAvailable probes the server, throttled: between allowances the
// cached result is returned so callers may poll freely.
func (c *Controller) CheckAvailable(ctx context.Context) bool {
	if !c.probeLimiter.Allow() {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.lastAvailable
	}

	snap := c.store.Snapshot()
	available := c.clientFor(snap.BaseURL).CheckAvailable(ctx)

	c.mu.Lock()
	c.lastAvailable = available
	c.mu.Unlock()
	return available
}

// =============================================================================
// MODEL LISTING
// =============================================================================

// ListModels fetches the installed models from the server and caches them.
// On failure the empty slice comes back with the error; the cache keeps
// its previous contents.
func (c *Controller) ListModels(ctx context.Context) ([]string, error) {
	snap := c.store.Snapshot()

	models, err := c.clientFor(snap.BaseURL).ListModels(ctx)
	if err != nil {
		c.logger.Warn("model listing failed", "base_url", snap.BaseURL, "error", err)
		return []string{}, err
	}

	c.mu.Lock()
	c.models = models
	c.mu.Unlock()
	return models, nil
}

// RefreshModelsAsync refreshes the model cache as a background task.
func (c *Controller) RefreshModelsAsync() (*tasks.Task, error) {
	return c.runner.Run("refresh model list", func(ctx context.Context) error {
		_, err := c.ListModels(ctx)
		return err
	})
}

// Models returns the cached model names.
func (c *Controller) Models() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.models))
	copy(out, c.models)
	return out
}
