// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

// =============================================================================
// JOB STATUS
// =============================================================================

// Status represents the current state of a server-side job.
type Status string

const (
	// StatusPending indicates the job has been accepted but not started
	StatusPending Status = "Pending"

	// StatusRunning indicates the job is currently executing
	StatusRunning Status = "Running"

	// StatusSucceeded indicates the job finished successfully
	StatusSucceeded Status = "Succeeded"

	// StatusFailed indicates the job encountered an error
	StatusFailed Status = "Failed"
)

// String returns the string representation of the job status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status is final. A job in a terminal
// status never transitions again.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ValidTransition reports whether a job may move from one status to
// another. Statuses are monotonic: Pending -> Running -> Succeeded/Failed,
// and nothing leaves a terminal status.
func ValidTransition(from, to Status) bool {
	// Re-reading the same status from the server is not a transition.
	if from == to {
		return true
	}

	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusSucceeded || to == StatusFailed
	case StatusRunning:
		return to == StatusSucceeded || to == StatusFailed
	case StatusSucceeded, StatusFailed:
		return false
	default:
		return false
	}
}

// =============================================================================
// JOB RECORD
// =============================================================================

// Job is a snapshot of a server-tracked asynchronous job. The server owns
// the record; the client replaces its copy wholesale on each fetch. Logs
// are append-only: a later snapshot never has fewer lines than an earlier
// one for the same id.
type Job struct {
	// ID is the server-assigned opaque identifier
	ID string `json:"id"`

	// Kind is the operation this job performs (e.g. "install", "scan")
	Kind string `json:"kind"`

	// Status is the job state at snapshot time
	Status Status `json:"status"`

	// Logs is the ordered, line-delimited output accumulated so far
	Logs []string `json:"logs"`
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	return j.Status.IsTerminal()
}

// Clone returns an independent copy of the job snapshot.
func (j *Job) Clone() *Job {
	c := *j
	c.Logs = append([]string(nil), j.Logs...)
	return &c
}
