// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	th := NewTheme()
	if th == nil {
		t.Fatal("NewTheme returned nil")
	}

	// A few representative styles should render without panicking and
	// return the input text.
	out := th.TabActive.Render("Overview")
	if !strings.Contains(out, "Overview") {
		t.Errorf("TabActive lost its text: %q", out)
	}
	out = th.ListSelected.Render("my-project")
	if !strings.Contains(out, "my-project") {
		t.Errorf("ListSelected lost its text: %q", out)
	}
}

func TestSetSize(t *testing.T) {
	th := NewTheme()
	th.SetSize(120, 40)
	if th.Width != 120 || th.Height != 40 {
		t.Errorf("size = %dx%d, want 120x40", th.Width, th.Height)
	}
}

func TestRenderStatus(t *testing.T) {
	th := NewTheme()
	ok := th.RenderStatus(true, "installed")
	if !strings.Contains(ok, "✓") || !strings.Contains(ok, "installed") {
		t.Errorf("success badge = %q", ok)
	}
	bad := th.RenderStatus(false, "not installed")
	if !strings.Contains(bad, "✗") || !strings.Contains(bad, "not installed") {
		t.Errorf("failure badge = %q", bad)
	}
}
