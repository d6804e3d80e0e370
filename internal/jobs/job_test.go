// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import "testing"

func TestStatusTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusRunning.IsTerminal() {
		t.Error("Pending/Running should not be terminal")
	}
	if !StatusSucceeded.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("Succeeded/Failed should be terminal")
	}
}

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusRunning, true},
		{StatusPending, StatusSucceeded, true},
		{StatusPending, StatusFailed, true},
		{StatusRunning, StatusSucceeded, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusPending, false},
		{StatusSucceeded, StatusRunning, false},
		{StatusSucceeded, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusRunning, StatusRunning, true},
	}

	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestJobClone(t *testing.T) {
	j := &Job{ID: "j1", Kind: "scan", Status: StatusRunning, Logs: []string{"a", "b"}}

	c := j.Clone()
	c.Logs[0] = "mutated"
	c.Status = StatusFailed

	if j.Logs[0] != "a" {
		t.Error("Clone should not share the log slice")
	}
	if j.Status != StatusRunning {
		t.Error("Clone should not share status")
	}
}

func TestLogSinkAppendOrder(t *testing.T) {
	sink := NewLogSink()

	// Two producers interleave; arrival order must be preserved and
	// identical lines kept.
	sink.Append("poll: step 1")
	sink.Append("push: step 1")
	sink.Append("push: step 1")
	sink.Append("poll: step 2", "poll: step 3")

	lines := sink.Lines()
	want := []string{"poll: step 1", "push: step 1", "push: step 1", "poll: step 2", "poll: step 3"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}

	entries := sink.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].Seq <= entries[i-1].Seq {
			t.Error("sequence numbers should be strictly increasing")
		}
	}
}

func TestLogSinkResetKeepsSequence(t *testing.T) {
	sink := NewLogSink()
	last := sink.Append("one", "two")

	sink.Reset()
	if sink.Len() != 0 {
		t.Error("Reset should discard entries")
	}

	next := sink.Append("three")
	if next <= last {
		t.Error("sequence numbers should keep increasing across Reset")
	}
}
