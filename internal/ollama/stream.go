// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line JSON parsing of streaming responses.
// Lines that are not valid JSON are skipped without aborting the stream;
// the server occasionally emits keep-alive noise.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	chunkCount  int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream until the done fragment or EOF, invoking sink
// for each non-empty delta in arrival order. Blocks until the stream is
// complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, sink Sink) error {
	for {
		select {
		case <-ctx.Done():
			return classifyTransportError(ctx.Err())
		default:
			delta, done, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return &ClientError{Type: ErrTypeConnection, Message: "stream interrupted", Cause: err}
			}

			if delta != "" && sink != nil {
				sink(delta)
			}
			if done {
				return nil
			}
		}
	}
}

// readChunk reads and parses a single line from the stream. Malformed
// lines yield an empty delta and no error.
func (s *StreamReader) readChunk() (delta string, done bool, err error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return "", false, io.EOF
		}
		// Process the last line even without a trailing newline
		if len(line) == 0 {
			return "", false, err
		}
	}

	var fragment GenerateResponse
	if json.Unmarshal(line, &fragment) != nil {
		return "", false, nil
	}

	if fragment.Response != "" {
		s.accumulator.WriteString(fragment.Response)
		s.chunkCount++
	}
	return fragment.Response, fragment.Done, nil
}

// Accumulated returns the concatenation of all deltas seen so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// ChunkCount returns the number of non-empty deltas received.
func (s *StreamReader) ChunkCount() int {
	return s.chunkCount
}
