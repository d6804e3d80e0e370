// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/skills"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the manager client.
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
	ErrTypeJobNotFound
	ErrTypeNotInstalled
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning   = &ClientError{Type: ErrTypeNotRunning, Message: "manager daemon is not running"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrJobNotFound  = &ClientError{Type: ErrTypeJobNotFound, Message: "job not found"}
	ErrNotInstalled = &ClientError{Type: ErrTypeNotInstalled, Message: "tool is not installed"}
)

// IsJobNotFound checks if an error is a stale-job-id error.
func IsJobNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeJobNotFound
	}
	return errors.Is(err, ErrJobNotFound)
}

// IsNotInstalled checks if an error is the not-installed pre-check failure.
func IsNotInstalled(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotInstalled
	}
	return errors.Is(err, ErrNotInstalled)
}

// IsTransport checks if an error is a network or server failure, as
// opposed to a domain condition like not-found or not-installed.
func IsTransport(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrTypeNotRunning, ErrTypeTimeout, ErrTypeConnection, ErrTypeInvalidResponse:
			return true
		}
		return false
	}
	return err != nil
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the manager client.
type ClientConfig struct {
	// BaseURL is the manager daemon base URL (default: http://127.0.0.1:8790)
	// Uses an explicit IPv4 address instead of localhost to avoid IPv6
	// resolution issues on Windows.
	BaseURL string

	// Timeout for non-streaming requests (default: 15s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8790",
		Timeout: 15 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the manager daemon API. It is safe
// for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a manager client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a manager client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:8790"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the configured daemon base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the manager daemon is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from manager: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// TOOL OPERATIONS
// =============================================================================

// GetToolStatus queries the installation status of one tool backend.
func (c *Client) GetToolStatus(ctx context.Context, tool string) (*ToolStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tools/"+url.PathEscape(tool)+"/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "failed to get tool status")
	}

	var status ToolStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode tool status", Cause: err}
	}
	return &status, nil
}

// StartInstall asks the daemon to install a tool. Either a job with an
// id is returned or an error; there is no partial success.
func (c *Client) StartInstall(ctx context.Context, tool string) (*jobs.Job, error) {
	return c.startJob(ctx, "/api/tools/"+url.PathEscape(tool)+"/install")
}

// StartScan asks the daemon to scan for projects using the given tool.
func (c *Client) StartScan(ctx context.Context, tool string) (*jobs.Job, error) {
	return c.startJob(ctx, "/api/tools/"+url.PathEscape(tool)+"/scan")
}

// startJob posts a start-operation call. The daemon answers 409 when the
// operation needs a tool that is not installed.
func (c *Client) startJob(ctx context.Context, path string) (*jobs.Job, error) {
	resp, err := c.do(ctx, http.MethodPost, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return nil, ErrNotInstalled
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, c.statusError(resp, "failed to start job")
	}

	var job jobs.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode job", Cause: err}
	}
	if job.ID == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "server returned a job without an id"}
	}
	return &job, nil
}

// ListProjects fetches project metadata discovered for a tool.
func (c *Client) ListProjects(ctx context.Context, tool string) ([]Project, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tools/"+url.PathEscape(tool)+"/projects")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "failed to list projects")
	}

	var result projectsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode projects", Cause: err}
	}
	return result.Projects, nil
}

// ListSkills fetches the skill catalog.
func (c *Client) ListSkills(ctx context.Context) ([]skills.Skill, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/skills")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "failed to list skills")
	}

	var result skillsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode skills", Cause: err}
	}
	return result.Skills, nil
}

// =============================================================================
// JOB OPERATIONS
// =============================================================================

// GetJob re-fetches a job snapshot by id. A stale or unknown id yields
// ErrJobNotFound.
func (c *Client) GetJob(ctx context.Context, id string) (*jobs.Job, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, "failed to get job")
	}

	var job jobs.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode job", Cause: err}
	}
	return &job, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "request cancelled", Cause: err}
		}
		return nil, ErrNotRunning
	}
	return resp, nil
}

// statusError maps a non-OK response to a ClientError, preferring the
// server's own error message when the body carries one.
func (c *Client) statusError(resp *http.Response, fallback string) error {
	var srvErr serverError
	if err := json.NewDecoder(resp.Body).Decode(&srvErr); err == nil && srvErr.Error != "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: srvErr.Error}
	}
	return &ClientError{Type: ErrTypeInvalidResponse, Message: fallback + ": " + resp.Status}
}
