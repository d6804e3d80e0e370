// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
)

// =============================================================================
// LOG STREAM READER
// =============================================================================

// LogStreamCallback is called for each event received on a job log stream.
type LogStreamCallback func(event LogEvent)

// LogStreamReader handles line-by-line JSON parsing of a job's push log
// stream. Events arrive in emission order; malformed lines are skipped.
type LogStreamReader struct {
	reader *bufio.Reader
}

// NewLogStreamReader creates a stream reader from an io.Reader.
func NewLogStreamReader(r io.Reader) *LogStreamReader {
	return &LogStreamReader{reader: bufio.NewReader(r)}
}

// Process reads the stream and calls the callback for each event, in
// order. Returns nil when the stream ends (EOF or a Done event) and the
// context error when cancelled.
func (s *LogStreamReader) Process(ctx context.Context, callback LogStreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			event, err := s.readEvent()
			if event != nil {
				callback(*event)
				if event.Done {
					return nil
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
		}
	}
}

// readEvent reads and parses a single line. A nil event with nil error
// means the line was empty or malformed and should be skipped.
func (s *LogStreamReader) readEvent() (*LogEvent, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			return nil, err
		}
		// Process the final unterminated line before reporting EOF.
	}

	if len(line) == 0 {
		return nil, nil
	}

	var event LogEvent
	if jsonErr := json.Unmarshal(line, &event); jsonErr != nil {
		return nil, nil
	}
	return &event, err
}

// =============================================================================
// CLIENT STREAM OPERATIONS
// =============================================================================

// StreamJobLogs opens the push log stream for a job and invokes the
// callback for each event until the stream closes, the job finishes, or
// the context is cancelled. The stream may fail or close early; callers
// treat that as "stop consuming, rely on polling".
func (c *Client) StreamJobLogs(ctx context.Context, jobID string, callback LogStreamCallback) error {
	// No client timeout on the streaming connection; lifetime is bound
	// to the context.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/jobs/"+url.PathEscape(jobID)+"/logs/stream", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp, "log stream request failed")
	}

	reader := NewLogStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}
