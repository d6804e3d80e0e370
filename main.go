// skilldeck - a terminal control surface for developer tool skills.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/cli"
	"github.com/jeranaias/skilldeck/internal/config"
	"github.com/jeranaias/skilldeck/internal/store"
	"github.com/jeranaias/skilldeck/internal/ui/dashboard"
	"github.com/jeranaias/skilldeck/internal/ui/styles"
	"github.com/jeranaias/skilldeck/internal/watch"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async callbacks
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdInstall:
		err = cli.HandleInstall(args)
	case cli.CmdScan:
		err = cli.HandleScan(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	default:
		err = cli.HandleHelp(args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(args cli.Args) error {
	cfg := config.Global()
	if args.Tool != "" {
		if _, ok := cfg.Tool(args.Tool); !ok {
			return fmt.Errorf("unknown tool %q (configured: %v)", args.Tool, cfg.ToolNames())
		}
		cfg.DefaultTool = args.Tool
	}

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Manager.BaseURL,
		Timeout: cfg.Timeout(),
	})

	pins, err := store.Open(cfg.Store.PinsPath)
	if err != nil {
		return fmt.Errorf("failed to open pin store: %w", err)
	}
	defer pins.Close()

	theme := styles.NewTheme()
	m := dashboard.New(theme, cfg, client, pins)

	// Watch tool config files so install status stays fresh when a
	// tool is installed or removed outside skilldeck
	watcher, err := watch.New(watch.DefaultDebounce, func(tool string) {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(dashboard.ConfigChangedMsg{Tool: tool})
		}
	})
	if err == nil {
		for _, t := range cfg.Tools {
			if addErr := watcher.Add(t.Name, t.ConfigPath); addErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: cannot watch %s config: %v\n", t.Name, addErr)
			}
		}
		watcher.Start()
		defer watcher.Close()
	} else {
		fmt.Fprintf(os.Stderr, "Warning: config watching disabled: %v\n", err)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()
	m.SetDispatch(p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running skilldeck: %w", err)
	}
	return nil
}
