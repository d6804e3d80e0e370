// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dashboard provides the main skilldeck view: tool status,
// skill browsing, and project management over the manager daemon.
//
// This file defines all Bubble Tea message types used by the dashboard.
// Async results carry the generation they were issued under; results
// from a previous generation are discarded on arrival.
package dashboard

import (
	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/skills"
)

// =============================================================================
// FETCH RESULT MESSAGES
// =============================================================================

// ToolStatusMsg delivers the installation status of a tool backend.
type ToolStatusMsg struct {
	Gen    int
	Tool   string
	Status *api.ToolStatus
	Err    error
}

// ProjectsMsg delivers the project list for the current tool. FromScan
// marks lists produced by the post-scan refresh, the only lists
// authoritative enough to prune stale pins against.
type ProjectsMsg struct {
	Gen      int
	Projects []api.Project
	FromScan bool
	Err      error
}

// SkillsMsg delivers the skill catalog.
type SkillsMsg struct {
	Gen    int
	Skills []skills.Skill
	Err    error
}

// =============================================================================
// JOB MESSAGES
// =============================================================================

// JobStartedMsg reports the outcome of an install or scan start issued
// off the update loop. Started is false when the trigger was a no-op
// (an automatic scan that found the list non-empty or already attempted).
type JobStartedMsg struct {
	Gen     int
	Kind    string
	Started bool
	Err     error
}

// JobUpdateMsg reports progress on the active install or scan job.
type JobUpdateMsg struct {
	Gen int
	Job *jobs.Job
}

// JobCompleteMsg reports that the active job reached a terminal status.
type JobCompleteMsg struct {
	Gen int
	Job *jobs.Job
}

// JobErrMsg reports a job start or poll failure.
type JobErrMsg struct {
	Gen int
	Err error
}

// LogLineMsg delivers one appended log line from the active job.
type LogLineMsg struct {
	Gen  int
	Line string
}

// =============================================================================
// PIN MESSAGES
// =============================================================================

// PinToggledMsg reports the outcome of a pin toggle.
type PinToggledMsg struct {
	Gen    int
	Path   string
	Pinned bool
	Err    error
}

// PinsMsg delivers the persisted pin set.
type PinsMsg struct {
	Gen    int
	Pinned map[string]bool
	Err    error
}

// =============================================================================
// ENVIRONMENT MESSAGES
// =============================================================================

// ConfigChangedMsg reports that a tool's configuration file changed on
// disk, so its installation status may be stale.
type ConfigChangedMsg struct {
	Tool string
}

// DetailRenderedMsg delivers the rendered markdown for a skill detail
// overlay.
type DetailRenderedMsg struct {
	Gen      int
	Skill    string
	Rendered string
	Err      error
}
