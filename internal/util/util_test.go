// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{"fits", "hello", 10, "hello"},
		{"exact fit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello w…"},
		{"zero width", "hello", 0, ""},
		{"negative width", "hello", -1, ""},
		{"width one", "hello", 1, "h"},
		{"empty string", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateWidth(tt.input, tt.maxWidth); got != tt.want {
				t.Errorf("TruncateWidth(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateWidthCJK(t *testing.T) {
	// Each CJK character is 2 columns wide
	got := TruncateWidth("日本語テスト", 6)
	if StringWidth(got) > 6 {
		t.Errorf("truncated result %q is wider than 6 columns", got)
	}
	if got == "日本語テスト" {
		t.Error("12-column string should have been truncated to 6 columns")
	}
}

func TestStringWidth(t *testing.T) {
	if w := StringWidth("abc"); w != 3 {
		t.Errorf("StringWidth(abc) = %d, want 3", w)
	}
	if w := StringWidth("日本"); w != 4 {
		t.Errorf("StringWidth(日本) = %d, want 4", w)
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("wide string should be unchanged, got %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := FirstLine("one\ntwo\nthree"); got != "one" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine("  spaced  "); got != "spaced" {
		t.Errorf("FirstLine = %q", got)
	}
	if got := FirstLine(""); got != "" {
		t.Errorf("FirstLine = %q", got)
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.toml")

	if err := AtomicWriteFile(path, []byte("first"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("content = %q", data)
	}

	// Overwrite
	if err := AtomicWriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("content after overwrite = %q", data)
	}

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}
