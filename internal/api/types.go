// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for communicating with the local
// skilldeck manager daemon.
package api

import (
	"time"

	"github.com/jeranaias/skilldeck/internal/skills"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ToolStatus is an immutable snapshot of one tool backend's installation
// state. It is replaced wholesale on each refresh, never patched.
type ToolStatus struct {
	// Tool is the backend name this status describes (e.g. "claude")
	Tool string `json:"tool"`

	// Installed reports whether the tool executable is present
	Installed bool `json:"installed"`

	// Version is the installed version, empty when not installed
	Version string `json:"version,omitempty"`

	// ExecutablePath is where the tool binary lives, empty when not installed
	ExecutablePath string `json:"executable_path,omitempty"`

	// ConfigPath is where the tool expects its configuration file
	ConfigPath string `json:"config_path"`

	// ConfigExists reports whether a file exists at ConfigPath
	ConfigExists bool `json:"config_exists"`
}

// Project is metadata for one discovered project. Metadata only; heavy
// fields stay on the daemon.
type Project struct {
	// Path is the project root on disk, unique per tool
	Path string `json:"path"`

	// Name is the display name (usually the directory base name)
	Name string `json:"name"`

	// Tool is the backend that discovered this project
	Tool string `json:"tool"`

	// Pinned projects sort before unpinned ones
	Pinned bool `json:"pinned"`

	// LastUpdated is the most recent activity timestamp
	LastUpdated time.Time `json:"last_updated"`

	// SkillCount is how many skills the project references
	SkillCount int `json:"skill_count"`
}

// LogEvent is one event from a job's push log stream.
type LogEvent struct {
	// Line is the emitted log line
	Line string `json:"line"`

	// Done marks the final event; the server closes the stream after it
	Done bool `json:"done"`
}

// Wire envelopes.
type projectsResponse struct {
	Projects []Project `json:"projects"`
}

type skillsResponse struct {
	Skills []skills.Skill `json:"skills"`
}

type serverError struct {
	Error string `json:"error"`
}
