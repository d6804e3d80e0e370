// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/tabs"
)

// Update is the Bubble Tea update loop.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ToolStatusMsg:
		return m.handleToolStatus(msg)

	case SkillsMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		m.lastErr = nil
		m.catalog = msg.Skills
		m.applyFilter()
		return m, nil

	case ProjectsMsg:
		return m.handleProjects(msg)

	case PinsMsg:
		if m.stale(msg.Gen) || msg.Err != nil {
			return m, nil
		}
		m.pinned = msg.Pinned
		m.applyPins()
		return m, nil

	case PinToggledMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		m.pinned[msg.Path] = msg.Pinned
		if !msg.Pinned {
			delete(m.pinned, msg.Path)
		}
		m.applyPins()
		return m, nil

	case JobStartedMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		if msg.Err != nil {
			m.jobErr = msg.Err
			return m, nil
		}
		if msg.Started {
			m.jobKind = msg.Kind
			m.jobErr = nil
		}
		return m, nil

	case JobUpdateMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		m.job = msg.Job
		m.syncLogView()
		return m, nil

	case JobCompleteMsg:
		return m.handleJobComplete(msg)

	case JobErrMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		m.jobErr = msg.Err
		return m, nil

	case LogLineMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		m.syncLogView()
		return m, nil

	case ConfigChangedMsg:
		if msg.Tool != m.tool {
			return m, nil
		}
		return m, m.fetchToolStatus()

	case DetailRenderedMsg:
		if m.stale(msg.Gen) {
			return m, nil
		}
		if msg.Err != nil {
			m.lastErr = msg.Err
			return m, nil
		}
		m.detail = msg.Rendered
		m.detailName = msg.Skill
		return m, nil
	}

	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.search.Width = msg.Width - 8
	m.logView.Width = msg.Width - 4
	logHeight := msg.Height / 3
	if logHeight < 4 {
		logHeight = 4
	}
	m.logView.Height = logHeight
	return m, nil
}

func (m Model) handleToolStatus(msg ToolStatusMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) || msg.Tool != m.tool {
		return m, nil
	}
	m.status = msg.Status
	m.statusErr = msg.Err
	// Losing the install can make the projects tab disallowed; the
	// effective tab computation handles that on render. Gaining it
	// may make a pending projects request worth re-running.
	if m.installed() && m.projects == nil {
		return m, m.fetchProjects()
	}
	return m, nil
}

func (m Model) handleProjects(msg ProjectsMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	if msg.Err != nil {
		m.lastErr = msg.Err
		return m, nil
	}
	m.lastErr = nil
	m.projects = msg.Projects
	m.projectsLoaded = true
	m.applyPins()
	var cmds []tea.Cmd
	if msg.FromScan {
		cmds = append(cmds, m.prunePins())
	}
	if cmd := m.maybeAutoScan(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleJobComplete(msg JobCompleteMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.Gen) {
		return m, nil
	}
	m.job = msg.Job
	m.syncLogView()
	if m.jobKind == "install" && msg.Job.Status == jobs.StatusSucceeded {
		m.jobKind = ""
		// Freshly installed: status and catalog have changed
		return m, tea.Batch(m.fetchToolStatus(), m.fetchSkills())
	}
	m.jobKind = ""
	return m, nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Detail overlay swallows everything except dismissal
	if m.detail != "" {
		switch msg.String() {
		case "esc", "q", "enter":
			m.detail = ""
			m.detailName = ""
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		m.Teardown()
		return m, tea.Quit

	case "tab":
		return m.handleTabCycle()

	case "1":
		m.requestedTab = tabs.TabOverview
		return m, nil

	case "2":
		m.requestedTab = tabs.TabProjects
		return m, m.maybeAutoScan()

	case "t":
		if len(m.cfg.ToolNames()) > 1 {
			cmd := m.switchTool(m.nextTool())
			return m, cmd
		}
		return m, nil

	case "/":
		if m.effectiveTab() == tabs.TabOverview {
			m.searching = true
			m.search.Focus()
		}
		return m, nil

	case "r":
		if !m.refresh.Allow() {
			return m, nil
		}
		return m, tea.Batch(m.fetchToolStatus(), m.fetchSkills(), m.fetchProjects())

	case "i":
		return m.handleInstall()

	case "s":
		return m.handleManualScan()

	case "p":
		return m.handlePinToggle()

	case "x":
		if m.jobKind != "" {
			m.scanner.Teardown()
			m.install.Cancel()
			m.jobKind = ""
		}
		return m, nil

	case "up", "k":
		m.moveSelection(-1)
		return m, nil

	case "down", "j":
		m.moveSelection(1)
		return m, nil

	case "enter":
		if m.effectiveTab() == tabs.TabOverview && m.skillIdx < len(m.filtered) {
			return m, m.renderDetail(m.filtered[m.skillIdx])
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.applyFilter()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) handleTabCycle() (tea.Model, tea.Cmd) {
	allowed := tabs.Allowed(m.installed())
	current := m.effectiveTab()
	for i, tab := range allowed {
		if tab == current {
			m.requestedTab = allowed[(i+1)%len(allowed)]
			break
		}
	}
	if m.requestedTab == tabs.TabProjects {
		return m, m.maybeAutoScan()
	}
	return m, nil
}

func (m Model) handleInstall() (tea.Model, tea.Cmd) {
	if m.installed() || m.install.Active() {
		return m, nil
	}
	return m, m.startInstall()
}

func (m Model) handleManualScan() (tea.Model, tea.Cmd) {
	if m.effectiveTab() != tabs.TabProjects {
		return m, nil
	}
	return m, m.startScan()
}

func (m Model) handlePinToggle() (tea.Model, tea.Cmd) {
	if m.effectiveTab() != tabs.TabProjects || m.projectIdx >= len(m.projects) {
		return m, nil
	}
	return m, m.togglePin(m.projects[m.projectIdx].Path)
}

func (m *Model) moveSelection(delta int) {
	switch m.effectiveTab() {
	case tabs.TabOverview:
		m.skillIdx = clamp(m.skillIdx+delta, 0, len(m.filtered)-1)
	case tabs.TabProjects:
		m.projectIdx = clamp(m.projectIdx+delta, 0, len(m.projects)-1)
	}
}

// syncLogView pushes the active job's merged log lines into the
// viewport and follows the tail.
func (m *Model) syncLogView() {
	var lines []string
	if m.jobKind == "scan" || m.scanner.Monitor().Active() {
		lines = m.scanner.Monitor().Logs()
	}
	if len(lines) == 0 && (m.jobKind == "install" || m.install.Active()) {
		lines = m.install.Logs()
	}
	if len(lines) == 0 && m.job != nil {
		lines = m.job.Logs
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
