// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeJobServer serves scripted snapshots for one job id.
type fakeJobServer struct {
	mu        sync.Mutex
	snapshots []*Job
	calls     int
	errEvery  int // return an error on every Nth call (0 = never)
}

func (f *fakeJobServer) fetch(ctx context.Context, id string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.errEvery > 0 && f.calls%f.errEvery == 0 {
		return nil, errors.New("connection refused")
	}

	i := f.calls - 1
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	return f.snapshots[i].Clone(), nil
}

func (f *fakeJobServer) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func startReturning(j *Job) StartFunc {
	return func(ctx context.Context) (*Job, error) {
		return j.Clone(), nil
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before timeout")
}

func TestMonitorPollsUntilTerminal(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "install", Status: StatusPending},
		{ID: "j1", Kind: "install", Status: StatusRunning, Logs: []string{"fetching"}},
		{ID: "j1", Kind: "install", Status: StatusSucceeded, Logs: []string{"fetching", "done"}},
	}}

	var completions atomic.Int32
	var final atomic.Value

	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		Fetch:    srv.fetch,
		OnComplete: func(j *Job) {
			completions.Add(1)
			final.Store(j)
		},
	})

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "install", Status: StatusPending}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return completions.Load() == 1 })

	// Polling must stop exactly at the terminal read.
	got := srv.fetchCount()
	time.Sleep(60 * time.Millisecond)
	if srv.fetchCount() != got {
		t.Error("polling should stop once the job is terminal")
	}
	if completions.Load() != 1 {
		t.Errorf("completion callback should fire exactly once, fired %d times", completions.Load())
	}
	if m.Active() {
		t.Error("monitor should be inactive after terminal status")
	}

	j := final.Load().(*Job)
	if j.Status != StatusSucceeded {
		t.Errorf("expected Succeeded, got %s", j.Status)
	}
	logs := m.Logs()
	if len(logs) != 2 || logs[0] != "fetching" || logs[1] != "done" {
		t.Errorf("unexpected logs: %v", logs)
	}
}

func TestMonitorStartFailureLeavesNoJob(t *testing.T) {
	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		Fetch: func(ctx context.Context, id string) (*Job, error) {
			t.Error("fetch should not be called when start fails")
			return nil, nil
		},
	})

	_, err := m.Start(context.Background(), func(ctx context.Context) (*Job, error) {
		return nil, errors.New("server unavailable")
	})
	if err == nil {
		t.Fatal("expected start error")
	}
	if m.Job() != nil {
		t.Error("failed start should leave no job held")
	}
	if m.Active() {
		t.Error("failed start should leave no poll loop")
	}
}

func TestMonitorPollErrorsDoNotStopPolling(t *testing.T) {
	srv := &fakeJobServer{
		errEvery: 2,
		snapshots: []*Job{
			{ID: "j1", Kind: "scan", Status: StatusRunning},
			{ID: "j1", Kind: "scan", Status: StatusRunning},
			{ID: "j1", Kind: "scan", Status: StatusRunning},
			{ID: "j1", Kind: "scan", Status: StatusRunning},
			{ID: "j1", Kind: "scan", Status: StatusSucceeded},
		},
	}

	var pollErrs atomic.Int32
	var completions atomic.Int32

	m := NewMonitor(MonitorConfig{
		Interval:   10 * time.Millisecond,
		Fetch:      srv.fetch,
		OnError:    func(error) { pollErrs.Add(1) },
		OnComplete: func(*Job) { completions.Add(1) },
	})

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return completions.Load() == 1 })

	if pollErrs.Load() == 0 {
		t.Error("transport errors during polling should be surfaced")
	}
}

func TestMonitorCancelStopsMutations(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "scan", Status: StatusRunning},
	}}

	var updates atomic.Int32

	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		Fetch:    srv.fetch,
		OnUpdate: func(*Job) { updates.Add(1) },
	})

	handle, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return updates.Load() >= 2 })

	handle.Cancel()
	if m.Active() {
		t.Error("monitor should be inactive after Cancel")
	}

	// The spy must see no further updates after teardown.
	after := updates.Load()
	time.Sleep(80 * time.Millisecond)
	if updates.Load() != after {
		t.Error("no state mutations may occur after cancellation")
	}
}

func TestMonitorSupersession(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "install", Status: StatusRunning},
	}}

	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		Fetch:    srv.fetch,
	})

	first, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "install", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	// Starting a new job supersedes the old lineage. Point fetch at the
	// second server job by swapping snapshots under the same fake.
	srv.mu.Lock()
	srv.snapshots = []*Job{{ID: "j2", Kind: "install", Status: StatusRunning}}
	srv.mu.Unlock()

	_, err = m.Start(context.Background(), startReturning(&Job{ID: "j2", Kind: "install", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("second Start failed: %v", err)
	}

	if j := m.Job(); j == nil || j.ID != "j2" {
		t.Fatalf("expected held job j2, got %+v", j)
	}

	// Cancelling the superseded handle must not touch the new lineage.
	first.Cancel()
	if !m.Active() {
		t.Error("cancelling a superseded handle should not stop the active loop")
	}

	m.Cancel()
}

func TestMonitorTerminalAtStart(t *testing.T) {
	var completions atomic.Int32

	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		Fetch: func(ctx context.Context, id string) (*Job, error) {
			t.Error("a job that starts terminal should never be polled")
			return nil, nil
		},
		OnComplete: func(*Job) { completions.Add(1) },
	})

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusFailed, Logs: []string{"boom"}}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if completions.Load() != 1 {
		t.Errorf("completion should fire exactly once, fired %d times", completions.Load())
	}
}

func TestMonitorSnapshotLogToggle(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "scan", Status: StatusRunning, Logs: []string{"a", "b"}},
		{ID: "j1", Kind: "scan", Status: StatusSucceeded, Logs: []string{"a", "b", "c"}},
	}}

	var completions atomic.Int32
	m := NewMonitor(MonitorConfig{
		Interval:   10 * time.Millisecond,
		Fetch:      srv.fetch,
		OnComplete: func(*Job) { completions.Add(1) },
	})
	m.SetSnapshotLogs(false)

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Push-stream producer delivers the first two lines; the final
	// snapshot carries a third the stream never saw.
	m.Sink().Append("a", "b")

	waitFor(t, 2*time.Second, func() bool { return completions.Load() == 1 })

	logs := m.Logs()
	if len(logs) != 3 {
		t.Fatalf("stream lines plus the terminal backfill should survive, got %v", logs)
	}
	if logs[0] != "a" || logs[1] != "b" || logs[2] != "c" {
		t.Errorf("logs = %v, want [a b c]", logs)
	}
}

func TestMonitorTerminalSnapshotBackfillsStreamGap(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "scan", Status: StatusSucceeded, Logs: []string{"line-1", "line-2", "line-3"}},
	}}

	var completions atomic.Int32
	m := NewMonitor(MonitorConfig{
		Interval:   10 * time.Millisecond,
		Fetch:      srv.fetch,
		OnComplete: func(*Job) { completions.Add(1) },
	})
	m.SetSnapshotLogs(false)

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The stream delivered only the first line before the job finished.
	m.Sink().Append("line-1")

	waitFor(t, 2*time.Second, func() bool { return completions.Load() == 1 })

	logs := m.Logs()
	want := []string{"line-1", "line-2", "line-3"}
	if len(logs) != len(want) {
		t.Fatalf("logs = %v, want %v", logs, want)
	}
	for i := range want {
		if logs[i] != want[i] {
			t.Fatalf("logs = %v, want %v", logs, want)
		}
	}
}

func TestMonitorSnapshotLogsReenableSkipsStreamedLines(t *testing.T) {
	srv := &fakeJobServer{snapshots: []*Job{
		{ID: "j1", Kind: "scan", Status: StatusRunning, Logs: []string{"a", "b", "c"}},
		{ID: "j1", Kind: "scan", Status: StatusSucceeded, Logs: []string{"a", "b", "c", "d"}},
	}}

	var completions atomic.Int32
	m := NewMonitor(MonitorConfig{
		Interval:   50 * time.Millisecond,
		Fetch:      srv.fetch,
		OnComplete: func(*Job) { completions.Add(1) },
	})
	m.SetSnapshotLogs(false)

	_, err := m.Start(context.Background(), startReturning(&Job{ID: "j1", Kind: "scan", Status: StatusRunning}))
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The stream delivers two lines and then dies; polling takes over.
	m.Sink().Append("a", "b")
	m.SetSnapshotLogs(true)

	waitFor(t, 2*time.Second, func() bool { return completions.Load() == 1 })

	logs := m.Logs()
	want := []string{"a", "b", "c", "d"}
	if len(logs) != len(want) {
		t.Fatalf("re-enabled snapshots must not duplicate streamed lines: %v", logs)
	}
	for i := range want {
		if logs[i] != want[i] {
			t.Fatalf("logs = %v, want %v", logs, want)
		}
	}
}
