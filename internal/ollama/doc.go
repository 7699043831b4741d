// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// This package implements a client for a locally-running Ollama server,
// supporting both streaming and non-streaming completions against the
// generate endpoint, model listing, and a lightweight availability probe.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - GenerateRequest: request structure for /api/generate
//   - StreamReader: line-oriented reader for streamed responses
//   - ClientError: typed error with a failure taxonomy
//
// # Usage
//
// Create a client and generate a completion:
//
//	client := ollama.NewClient(nil)
//	text, err := client.Generate(ctx, ollama.GenerateRequest{
//	    Model:  "llama3.2",
//	    Prompt: "Hello",
//	}, nil)
//
// For streaming, pass a sink; it is invoked synchronously, in arrival
// order, once per non-empty delta:
//
//	text, err := client.Generate(ctx, req, func(delta string) {
//	    fmt.Print(delta)
//	})
package ollama
