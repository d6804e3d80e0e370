// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPollInterval is how often a non-terminal job is re-fetched.
const DefaultPollInterval = 1200 * time.Millisecond

// =============================================================================
// MONITOR CONFIGURATION
// =============================================================================

// StartFunc invokes the external call that creates a job on the server.
type StartFunc func(ctx context.Context) (*Job, error)

// FetchFunc re-fetches the current snapshot of a job by id.
type FetchFunc func(ctx context.Context, id string) (*Job, error)

// MonitorConfig holds the collaborators and callbacks for a Monitor.
// Callbacks are invoked from the poll goroutine and must not block.
type MonitorConfig struct {
	// Interval between poll fetches (default: DefaultPollInterval)
	Interval time.Duration

	// Fetch re-fetches a job snapshot by id. Required.
	Fetch FetchFunc

	// OnUpdate is called after each applied snapshot, including the
	// initial one returned by the start call.
	OnUpdate func(*Job)

	// OnComplete is called exactly once when the job reaches a terminal
	// status. Used to refresh dependent state (e.g. re-query tool status).
	OnComplete func(*Job)

	// OnError is called for transport errors during polling. Errors do
	// not stop the poll loop.
	OnError func(error)
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor tracks one job lineage at a time: it starts a job, polls until
// the job is terminal, and collects its logs in an append-only sink.
//
// Starting a new job supersedes the previous one: the old poll loop is
// cancelled synchronously and any of its in-flight fetches that resolve
// afterwards are discarded without mutating state. At most one poll loop
// is alive per monitor.
type Monitor struct {
	mu       sync.Mutex
	cfg      MonitorConfig
	job      *Job
	sink     *LogSink
	absorbed int  // log lines of the current job already in the sink
	skipLogs bool // true while a push stream is the line source
	lineage  string
	cancel   context.CancelFunc
}

// Handle cancels the poll loop of the specific job lineage it was
// returned for. Cancelling a superseded handle is a no-op.
type Handle struct {
	m       *Monitor
	lineage string
}

// Cancel stops polling for this handle's lineage, if still current.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.m.cancelLineage(h.lineage)
}

// NewMonitor creates a monitor with the given configuration.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	return &Monitor{
		cfg:  cfg,
		sink: NewLogSink(),
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start cancels any active lineage, invokes the external start call, and
// on success begins polling the returned job. On failure no job is active
// and the caller may retry. The returned handle cancels exactly this
// lineage.
func (m *Monitor) Start(ctx context.Context, start StartFunc) (*Handle, error) {
	m.Cancel()

	job, err := start(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	lineage := uuid.NewString()
	m.lineage = lineage
	m.job = job.Clone()
	m.sink.Reset()
	m.absorbed = 0
	if len(job.Logs) > 0 {
		m.sink.Append(job.Logs...)
		m.absorbed = len(job.Logs)
	}
	pollCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	terminal := m.job.Terminal()
	if terminal {
		// Nothing to poll; end the lineage before callbacks fire.
		m.lineage = ""
		m.cancel = nil
		cancel()
	}
	onUpdate := m.cfg.OnUpdate
	onComplete := m.cfg.OnComplete
	snapshot := m.job.Clone()
	m.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	if terminal {
		if onComplete != nil {
			onComplete(snapshot)
		}
		return &Handle{m: m, lineage: lineage}, nil
	}

	go m.pollLoop(pollCtx, lineage, job.ID)

	return &Handle{m: m, lineage: lineage}, nil
}

// Cancel stops the active poll loop, whatever lineage it belongs to.
// Safe to call when nothing is active.
func (m *Monitor) Cancel() {
	m.mu.Lock()
	cancel := m.cancel
	m.lineage = ""
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (m *Monitor) cancelLineage(lineage string) {
	m.mu.Lock()
	if lineage == "" || m.lineage != lineage {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.lineage = ""
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// =============================================================================
// POLL LOOP
// =============================================================================

func (m *Monitor) pollLoop(ctx context.Context, lineage, id string) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := m.cfg.Fetch(ctx, id)
			if ctx.Err() != nil {
				// Resolved after cancellation: discard.
				return
			}
			if err != nil {
				m.reportError(lineage, err)
				continue
			}
			if m.apply(lineage, snapshot) {
				return
			}
		}
	}
}

// apply merges a fetched snapshot into the monitor. Returns true when the
// poll loop should stop (terminal status reached or lineage superseded).
func (m *Monitor) apply(lineage string, snapshot *Job) bool {
	m.mu.Lock()
	if m.lineage != lineage {
		m.mu.Unlock()
		return true
	}
	if snapshot == nil || m.job == nil || snapshot.ID != m.job.ID {
		m.mu.Unlock()
		return false
	}

	next := snapshot.Clone()
	if !ValidTransition(m.job.Status, next.Status) {
		// A regressed status snapshot is stale; keep what we have but
		// still absorb any new log lines.
		next.Status = m.job.Status
	}
	terminal := next.Terminal()
	if m.skipLogs {
		// The push stream owns line delivery. On the terminal snapshot
		// the stream is about to be cancelled, so append whatever it
		// never delivered; the sink length is the count of this job's
		// lines already preserved.
		if terminal {
			if n := m.sink.Len(); len(next.Logs) > n {
				m.sink.Append(next.Logs[n:]...)
			}
			m.absorbed = len(next.Logs)
		}
	} else if len(next.Logs) > m.absorbed {
		m.sink.Append(next.Logs[m.absorbed:]...)
		m.absorbed = len(next.Logs)
	}
	m.job = next

	var cancel context.CancelFunc
	if terminal {
		cancel = m.cancel
		m.lineage = ""
		m.cancel = nil
	}
	onUpdate := m.cfg.OnUpdate
	onComplete := m.cfg.OnComplete
	out := next.Clone()
	m.mu.Unlock()

	if onUpdate != nil {
		onUpdate(out)
	}
	if terminal {
		if cancel != nil {
			cancel()
		}
		if onComplete != nil {
			onComplete(out)
		}
	}
	return terminal
}

func (m *Monitor) reportError(lineage string, err error) {
	m.mu.Lock()
	current := m.lineage == lineage
	onError := m.cfg.OnError
	m.mu.Unlock()

	if current && onError != nil {
		onError(err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Job returns a copy of the most recent job snapshot, or nil when no job
// has been started.
func (m *Monitor) Job() *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.job == nil {
		return nil
	}
	return m.job.Clone()
}

// Active reports whether a poll loop is currently alive.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lineage != ""
}

// SetSnapshotLogs controls whether poll snapshots contribute log lines.
// While a push stream is delivering the same lines live, snapshot deltas
// are skipped to avoid double entries; when the stream closes early the
// caller re-enables snapshot absorption and polling covers the rest.
// Re-enabling realigns the absorbed count with the sink, so the next
// snapshot delta starts past what the stream already delivered.
func (m *Monitor) SetSnapshotLogs(enabled bool) {
	m.mu.Lock()
	m.skipLogs = !enabled
	if enabled {
		m.absorbed = m.sink.Len()
	}
	m.mu.Unlock()
}

// Sink returns the append-only log sink. The push-stream producer writes
// into the same sink so poll and push lines interleave by arrival order.
func (m *Monitor) Sink() *LogSink {
	return m.sink
}

// Logs returns all collected log lines in arrival order.
func (m *Monitor) Logs() []string {
	return m.sink.Lines()
}
