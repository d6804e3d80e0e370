// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package skills

import (
	"reflect"
	"testing"
)

var catalog = []Skill{
	{Name: "Plan", Summary: "Break work into steps", Description: "Planning helper", Tags: []string{"workflow"}},
	{Name: "Code Generator", Summary: "Generate boilerplate", Description: "Emits scaffolding", Tags: []string{"codegen", "scaffold"}},
	{Name: "Test Runner", Summary: "Run project tests", Description: "Wraps the test toolchain", Tags: []string{"testing", "ci"}},
}

func TestFilterTrimsAndLowercases(t *testing.T) {
	got := Filter(catalog, "  plan  ")
	if len(got) != 1 || got[0].Name != "Plan" {
		t.Errorf("expected only Plan, got %v", got)
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		got := Filter(catalog, q)
		if len(got) != len(catalog) {
			t.Fatalf("query %q: expected identity, got %d items", q, len(got))
		}
		// Same slice, not merely equal values.
		if &got[0] != &catalog[0] {
			t.Errorf("query %q: expected the same underlying slice", q)
		}
	}
}

func TestFilterSearchesAllFields(t *testing.T) {
	tests := []struct {
		query string
		names []string
	}{
		{"generate", []string{"Code Generator"}},          // summary
		{"toolchain", []string{"Test Runner"}},            // description
		{"ci", []string{"Test Runner"}},                   // tag
		{"SCAFFOLD", []string{"Code Generator"}},          // case-insensitive tag
		{"e", []string{"Plan", "Code Generator", "Test Runner"}}, // order preserved
		{"zzz", nil},
	}

	for _, tt := range tests {
		got := Filter(catalog, tt.query)
		var names []string
		for _, s := range got {
			names = append(names, s.Name)
		}
		if !reflect.DeepEqual(names, tt.names) {
			t.Errorf("Filter(%q) = %v, want %v", tt.query, names, tt.names)
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	queries := []string{"", "plan", "e", "zzz", "  Test  "}
	for _, q := range queries {
		once := Filter(catalog, q)
		twice := Filter(once, q)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Filter is not idempotent for %q", q)
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	before := make([]Skill, len(catalog))
	copy(before, catalog)

	Filter(catalog, "plan")

	if !reflect.DeepEqual(before, catalog) {
		t.Error("Filter must not mutate its input")
	}
}
