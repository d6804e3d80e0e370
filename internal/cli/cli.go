// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for skilldeck.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdStatus
	CmdInstall
	CmdScan
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool

	// Tool selects the backend, empty means the configured default
	Tool string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `skilldeck - manage developer tool skills and projects

Skilldeck talks to the local manager daemon to inspect tool
installations, browse available skills, and scan for projects.

Usage:
  skilldeck                  Start TUI (default)
  skilldeck status           Show tool installation status
  skilldeck install          Install the selected tool
  skilldeck scan             Scan for projects
  skilldeck version          Show version information
  skilldeck help             Show this help

Flags:
  --tool NAME    Tool backend to operate on (default from config)
  --quiet, -q    Suppress progress output
  --verbose, -v  Show job log lines while waiting

Environment:
  SKILLDECK_MANAGER_URL      Manager daemon base URL
  SKILLDECK_DEFAULT_TOOL     Default tool backend
`

// Parse reads os.Args and resolves the command to run.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(raw []string) (Command, Args) {
	var args Args
	var remaining []string

	for i := 0; i < len(raw); i++ {
		switch arg := raw[i]; arg {
		case "--quiet", "-q":
			args.Quiet = true
		case "--verbose", "-v":
			args.Verbose = true
		case "--tool":
			if i+1 < len(raw) {
				i++
				args.Tool = raw[i]
			}
		case "--help", "-h":
			return CmdHelp, args
		case "--version":
			return CmdVersion, args
		default:
			if strings.HasPrefix(arg, "--tool=") {
				args.Tool = strings.TrimPrefix(arg, "--tool=")
				continue
			}
			remaining = append(remaining, arg)
		}
	}

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch cmd {
	case "tui":
		return CmdTUI, args
	case "status", "s":
		return CmdStatus, args
	case "install":
		return CmdInstall, args
	case "scan":
		return CmdScan, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		return CmdHelp, args
	}
}

// HandleHelp prints usage.
func HandleHelp(Args) error {
	fmt.Print(usageText)
	return nil
}

// HandleVersion prints build information.
func HandleVersion(Args) error {
	fmt.Printf("skilldeck %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	return nil
}
