// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the controller binding the session store to the
// Ollama client.
//
// The controller owns the send pipeline: it serializes generation (at most
// one in flight), couples every send to exactly one appended exchange, and
// substitutes an error narration for the assistant text when the server
// cannot be reached. Availability probes are throttled, and model listing
// runs as a background task.
//
// # Key Types
//
//   - Controller: the send pipeline and connection state
//
// # Usage
//
//	ctrl := app.NewController(store, runner, logger)
//	reply, err := ctrl.Send(ctx, "hello", func(delta string) {
//	    fmt.Print(delta)
//	})
package app
