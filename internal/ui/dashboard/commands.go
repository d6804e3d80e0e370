// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/skills"
)

// fetchTimeout bounds one-shot daemon requests issued from commands.
const fetchTimeout = 15 * time.Second

func (m *Model) fetchToolStatus() tea.Cmd {
	gen, tool, client := m.gen, m.tool, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		status, err := client.GetToolStatus(ctx, tool)
		return ToolStatusMsg{Gen: gen, Tool: tool, Status: status, Err: err}
	}
}

func (m *Model) fetchSkills() tea.Cmd {
	gen, client := m.gen, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		catalog, err := client.ListSkills(ctx)
		return SkillsMsg{Gen: gen, Skills: catalog, Err: err}
	}
}

func (m *Model) fetchProjects() tea.Cmd {
	gen, tool, client := m.gen, m.tool, m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		projects, err := client.ListProjects(ctx, tool)
		return ProjectsMsg{Gen: gen, Projects: projects, Err: err}
	}
}

func (m *Model) loadPins() tea.Cmd {
	gen, pins := m.gen, m.pins
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		pinned, err := pins.Pinned(ctx)
		return PinsMsg{Gen: gen, Pinned: pinned, Err: err}
	}
}

// startInstall issues the install job start off the update loop. The
// monitor serializes its own lineage, so the closure only needs the
// collaborators.
func (m *Model) startInstall() tea.Cmd {
	gen, install, client, tool := m.gen, m.install, m.client, m.tool
	return func() tea.Msg {
		_, err := install.Start(context.Background(), func(ctx context.Context) (*jobs.Job, error) {
			return client.StartInstall(ctx, tool)
		})
		return JobStartedMsg{Gen: gen, Kind: "install", Started: err == nil, Err: err}
	}
}

// startScan issues a manual scan start off the update loop.
func (m *Model) startScan() tea.Cmd {
	gen, scanner := m.gen, m.scanner
	return func() tea.Msg {
		err := scanner.Start(context.Background())
		return JobStartedMsg{Gen: gen, Kind: "scan", Started: err == nil, Err: err}
	}
}

// prunePins drops persisted pins whose projects no longer exist. Only
// post-scan lists are authoritative enough to prune against; failures
// are housekeeping noise and are not surfaced.
func (m *Model) prunePins() tea.Cmd {
	pins := m.pins
	live := make(map[string]bool, len(m.projects))
	for _, p := range m.projects {
		live[p.Path] = true
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		_, _ = pins.Prune(ctx, live)
		return nil
	}
}

func (m *Model) togglePin(path string) tea.Cmd {
	gen, pins := m.gen, m.pins
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		pinned, err := pins.Toggle(ctx, path)
		return PinToggledMsg{Gen: gen, Path: path, Pinned: pinned, Err: err}
	}
}

// renderDetail renders a skill's long description as terminal markdown.
func (m *Model) renderDetail(s skills.Skill) tea.Cmd {
	gen := m.gen
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	if width > 100 {
		width = 100
	}
	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return DetailRenderedMsg{Gen: gen, Skill: s.Name, Err: err}
		}
		body := s.Description
		if body == "" {
			body = s.Summary
		}
		out, err := r.Render("# " + s.Name + "\n\n" + body)
		return DetailRenderedMsg{Gen: gen, Skill: s.Name, Rendered: out, Err: err}
	}
}
