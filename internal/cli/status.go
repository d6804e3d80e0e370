// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/config"
)

// resolveTool returns the backend to operate on: the --tool flag when
// given, otherwise the configured default.
func resolveTool(args Args, cfg *config.Config) (string, error) {
	tool := args.Tool
	if tool == "" {
		tool = cfg.DefaultTool
	}
	if _, ok := cfg.Tool(tool); !ok {
		return "", fmt.Errorf("unknown tool %q (configured: %v)", tool, cfg.ToolNames())
	}
	return tool, nil
}

func newClient(cfg *config.Config) *api.Client {
	return api.NewClientWithConfig(&api.ClientConfig{
		BaseURL: cfg.Manager.BaseURL,
		Timeout: cfg.Timeout(),
	})
}

// HandleStatus prints the installation status of each configured tool,
// or just the selected one when --tool is given.
func HandleStatus(args Args) error {
	cfg := config.Global()
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.CheckRunning(ctx); err != nil {
		return fmt.Errorf("manager daemon unreachable at %s: %w", cfg.Manager.BaseURL, err)
	}

	tools := cfg.ToolNames()
	if args.Tool != "" {
		tool, err := resolveTool(args, cfg)
		if err != nil {
			return err
		}
		tools = []string{tool}
	}

	for _, tool := range tools {
		status, err := client.GetToolStatus(ctx, tool)
		if err != nil {
			fmt.Printf("%-10s error: %v\n", tool, err)
			continue
		}
		if status.Installed {
			line := fmt.Sprintf("%-10s installed", tool)
			if status.Version != "" {
				line += "  " + status.Version
			}
			if args.Verbose && status.ExecutablePath != "" {
				line += "  (" + status.ExecutablePath + ")"
			}
			fmt.Println(line)
		} else {
			fmt.Printf("%-10s not installed\n", tool)
		}
	}
	return nil
}
