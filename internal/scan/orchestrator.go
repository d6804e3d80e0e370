// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scan orchestrates project-discovery jobs: one-shot automatic
// triggering, the not-installed pre-check, live log-stream consumption,
// and the post-scan project refresh.
package scan

import (
	"context"
	"sync"
	"time"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/jobs"
)

// refreshTimeout bounds the project re-fetch that follows a finished scan.
const refreshTimeout = 15 * time.Second

// =============================================================================
// COLLABORATORS
// =============================================================================

// ManagerClient is the slice of the daemon API the orchestrator needs.
type ManagerClient interface {
	GetToolStatus(ctx context.Context, tool string) (*api.ToolStatus, error)
	StartScan(ctx context.Context, tool string) (*jobs.Job, error)
	GetJob(ctx context.Context, id string) (*jobs.Job, error)
	ListProjects(ctx context.Context, tool string) ([]api.Project, error)
	StreamJobLogs(ctx context.Context, jobID string, callback api.LogStreamCallback) error
}

// Callbacks deliver orchestrator events. All callbacks are optional and
// are invoked from background goroutines; they must not block.
type Callbacks struct {
	// OnJobUpdate fires for each applied scan job snapshot.
	OnJobUpdate func(*jobs.Job)

	// OnLog fires for each line that arrives on the push stream.
	OnLog func(line string)

	// OnProjects delivers the freshly merged and sorted project list
	// after a scan reaches a terminal status.
	OnProjects func([]api.Project)

	// OnError surfaces transport errors from polling or the refresh.
	OnError func(error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator wraps a job monitor for the scan job kind. One instance
// belongs to one view lifetime: its attempted flag guarantees at most one
// automatic scan regardless of how often the empty project list renders,
// and it is discarded with the view.
type Orchestrator struct {
	mu           sync.Mutex
	client       ManagerClient
	tool         string
	monitor      *jobs.Monitor
	cb           Callbacks
	attempted    bool
	streamCancel context.CancelFunc
}

// New creates an orchestrator for one tool backend. interval is the poll
// interval; zero selects the default.
func New(client ManagerClient, tool string, interval time.Duration, cb Callbacks) *Orchestrator {
	o := &Orchestrator{
		client: client,
		tool:   tool,
		cb:     cb,
	}
	o.monitor = jobs.NewMonitor(jobs.MonitorConfig{
		Interval:   interval,
		Fetch:      client.GetJob,
		OnUpdate:   cb.OnJobUpdate,
		OnComplete: o.handleComplete,
		OnError:    cb.OnError,
	})
	return o
}

// AutoScan triggers an automatic scan when the freshly loaded project
// list is empty and no automatic scan was attempted yet this lifetime.
// The attempted flag is set before the scan resolves, so a failed
// automatic scan is never retried automatically; manual scans remain
// available. Returns whether a scan was triggered.
func (o *Orchestrator) AutoScan(ctx context.Context, projects []api.Project) (bool, error) {
	o.mu.Lock()
	if o.attempted || len(projects) > 0 {
		o.mu.Unlock()
		return false, nil
	}
	o.attempted = true
	o.mu.Unlock()

	return true, o.Start(ctx)
}

// Start begins a scan job. It is the manual-trigger entry point as well:
// always allowed, regardless of the attempted flag, and it does not
// reset the flag. The tool must be installed; otherwise this fails fast
// with api.ErrNotInstalled before any job is created.
func (o *Orchestrator) Start(ctx context.Context) error {
	status, err := o.client.GetToolStatus(ctx, o.tool)
	if err != nil {
		return err
	}
	if !status.Installed {
		return api.ErrNotInstalled
	}

	_, err = o.monitor.Start(ctx, func(ctx context.Context) (*jobs.Job, error) {
		return o.client.StartScan(ctx, o.tool)
	})
	if err != nil {
		return err
	}

	job := o.monitor.Job()
	if job != nil && !job.Terminal() {
		o.openStream(ctx, job.ID)
	}
	return nil
}

// Attempted reports whether an automatic scan has been triggered during
// this orchestrator's lifetime.
func (o *Orchestrator) Attempted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempted
}

// Monitor exposes the underlying job monitor for status and log reads.
func (o *Orchestrator) Monitor() *jobs.Monitor {
	return o.monitor
}

// Teardown cancels polling and closes the push stream. In-flight
// requests resolving afterwards are discarded by the monitor's lineage
// check.
func (o *Orchestrator) Teardown() {
	o.closeStream()
	o.monitor.Cancel()
}

// =============================================================================
// PUSH LOG STREAM
// =============================================================================

// openStream starts consuming the job's push log channel. While the
// stream is healthy it is the only log-line source; poll snapshots stop
// contributing lines so nothing is double-appended.
func (o *Orchestrator) openStream(ctx context.Context, jobID string) {
	o.closeStream()

	streamCtx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.streamCancel = cancel
	o.mu.Unlock()

	o.monitor.SetSnapshotLogs(false)

	go func() {
		sink := o.monitor.Sink()
		_ = o.client.StreamJobLogs(streamCtx, jobID, func(event api.LogEvent) {
			if event.Line == "" {
				return
			}
			sink.Append(event.Line)
			if o.cb.OnLog != nil {
				o.cb.OnLog(event.Line)
			}
		})
		// Stream closed or failed early: polling covers the rest.
		o.monitor.SetSnapshotLogs(true)
	}()
}

func (o *Orchestrator) closeStream() {
	o.mu.Lock()
	cancel := o.streamCancel
	o.streamCancel = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// COMPLETION
// =============================================================================

// handleComplete runs once per scan when it reaches a terminal status:
// close the push channel, then re-fetch the project list so the merged
// view is recomputed over fresh data.
func (o *Orchestrator) handleComplete(job *jobs.Job) {
	o.closeStream()

	if o.cb.OnProjects == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	projects, err := o.client.ListProjects(ctx, o.tool)
	if err != nil {
		if o.cb.OnError != nil {
			o.cb.OnError(err)
		}
		return
	}
	o.cb.OnProjects(MergeProjects(projects))
}
