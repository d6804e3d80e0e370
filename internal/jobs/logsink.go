// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package jobs

import "sync"

// =============================================================================
// LOG SINK
// =============================================================================

// LogEntry is one appended log line with its insertion sequence number.
type LogEntry struct {
	Seq  uint64
	Line string
}

// LogSink is an append-only, ordered collection of log lines with two
// producers: the poll loop (absorbing server snapshots) and the push
// stream (live lines). Every append is assigned a monotonically
// increasing sequence number, so entries are ordered by arrival and
// never reordered or overwritten. Identical lines are legitimate and
// are not deduplicated.
type LogSink struct {
	mu      sync.Mutex
	entries []LogEntry
	nextSeq uint64
}

// NewLogSink creates an empty log sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Append adds lines in order and returns the sequence number of the last
// entry appended (zero if no lines were given).
func (s *LogSink) Append(lines ...string) uint64 {
	if len(lines) == 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var last uint64
	for _, line := range lines {
		s.nextSeq++
		last = s.nextSeq
		s.entries = append(s.entries, LogEntry{Seq: last, Line: line})
	}
	return last
}

// Lines returns a copy of all appended lines in arrival order.
func (s *LogSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]string, len(s.entries))
	for i, e := range s.entries {
		lines[i] = e.Line
	}
	return lines
}

// Entries returns a copy of all entries in arrival order.
func (s *LogSink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.entries...)
}

// Len returns the number of appended lines.
func (s *LogSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Reset discards all entries. Sequence numbers keep increasing across
// resets so a consumer holding an old sequence number cannot confuse
// entries from different jobs.
func (s *LogSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
