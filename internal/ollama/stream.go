// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// =============================================================================
// GENERATE STREAM READER
// =============================================================================

// StreamReader parses the newline-delimited JSON stream produced by the
// /api/generate endpoint.
type StreamReader struct {
	reader *bufio.Reader
	model  string
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls onChunk for each non-empty piece of
// response text, in arrival order. Blocks until the stream ends, fails,
// or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, onChunk func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			if err == io.EOF {
				return nil
			}
			return &ClientError{Type: ErrTypeConnection, Message: "stream read failed", Cause: err}
		}
		if len(line) == 0 {
			continue
		}

		var chunk struct {
			Model    string `json:"model"`
			Response string `json:"response"`
			Done     bool   `json:"done"`
			Err      string `json:"error,omitempty"`
		}
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Skip malformed lines rather than aborting the stream.
			continue
		}

		if chunk.Err != "" {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: chunk.Err}
		}
		if chunk.Model != "" {
			s.model = chunk.Model
		}
		if chunk.Response != "" && onChunk != nil {
			onChunk(chunk.Response)
		}
		if chunk.Done {
			return nil
		}
	}
}

// Model returns the model name reported by the stream, if any.
func (s *StreamReader) Model() string {
	return s.model
}

// =============================================================================
// PULL STREAM READER
// =============================================================================

// PullReader parses the newline-delimited JSON progress stream produced by
// the /api/pull endpoint.
type PullReader struct {
	reader *bufio.Reader
}

// NewPullReader creates a pull progress reader from an io.Reader.
func NewPullReader(r io.Reader) *PullReader {
	return &PullReader{reader: bufio.NewReader(r)}
}

// Next returns the next progress line, or (nil, nil) at end of stream.
// Malformed lines are skipped.
func (p *PullReader) Next() (*PullProgress, error) {
	for {
		line, err := p.reader.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			if err == io.EOF {
				return nil, nil
			}
			return nil, &ClientError{Type: ErrTypeConnection, Message: "pull stream read failed", Cause: err}
		}
		if len(line) == 0 {
			continue
		}

		var progress PullProgress
		if err := json.Unmarshal(line, &progress); err != nil {
			continue
		}
		return &progress, nil
	}
}
