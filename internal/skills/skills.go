// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package skills defines the skill catalog entries served by the manager
// daemon and the search filter applied over them.
package skills

import "strings"

// Skill is one entry of the skill catalog. Entries are static data as
// far as this client is concerned; the daemon owns the catalog.
type Skill struct {
	Name        string   `json:"name"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Filter returns the subsequence of items whose name, summary,
// description, or any tag contains the query, case-insensitively. The
// query is trimmed first; a whitespace-only query returns items
// unchanged (the same slice, not a copy). Relative order is preserved
// and the filter is pure and idempotent.
func Filter(items []Skill, query string) []Skill {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]Skill, 0, len(items))
	for _, s := range items {
		if s.matches(q) {
			out = append(out, s)
		}
	}
	return out
}

// matches reports whether the already-normalized query appears in any
// searchable field.
func (s Skill) matches(q string) bool {
	if strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Summary), q) ||
		strings.Contains(strings.ToLower(s.Description), q) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
