// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		wantCmd Command
	}{
		{"no args defaults to TUI", nil, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"status", []string{"status"}, CmdStatus},
		{"status alias", []string{"s"}, CmdStatus},
		{"install", []string{"install"}, CmdInstall},
		{"scan", []string{"scan"}, CmdScan},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
		{"unknown falls back to help", []string{"frobnicate"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := parseArgs(tt.raw)
			if cmd != tt.wantCmd {
				t.Errorf("parseArgs(%v) = %v, want %v", tt.raw, cmd, tt.wantCmd)
			}
		})
	}
}

func TestParseToolFlag(t *testing.T) {
	_, args := parseArgs([]string{"--tool", "codex", "scan"})
	if args.Tool != "codex" {
		t.Errorf("Tool = %q, want codex", args.Tool)
	}

	_, args = parseArgs([]string{"scan", "--tool=claude"})
	if args.Tool != "claude" {
		t.Errorf("Tool = %q, want claude", args.Tool)
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := parseArgs([]string{"-q", "--verbose", "install"})
	if cmd != CmdInstall {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Quiet || !args.Verbose {
		t.Errorf("flags not parsed: quiet=%v verbose=%v", args.Quiet, args.Verbose)
	}
}

func TestParseFlagsAfterCommand(t *testing.T) {
	cmd, args := parseArgs([]string{"status", "--verbose"})
	if cmd != CmdStatus {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Verbose {
		t.Error("flags after the command should still apply")
	}
}
