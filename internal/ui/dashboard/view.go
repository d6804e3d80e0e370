// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/skilldeck/internal/api"
	"github.com/jeranaias/skilldeck/internal/jobs"
	"github.com/jeranaias/skilldeck/internal/tabs"
	"github.com/jeranaias/skilldeck/internal/util"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.detail != "" {
		return m.theme.Overlay.Render(m.detail)
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n\n")

	switch m.effectiveTab() {
	case tabs.TabProjects:
		b.WriteString(m.renderProjects())
	default:
		b.WriteString(m.renderOverview())
	}

	if m.jobKind != "" || m.job != nil {
		b.WriteString("\n")
		b.WriteString(m.renderJobPane())
	}

	if m.lastErr != nil || m.jobErr != nil {
		b.WriteString("\n")
		b.WriteString(m.renderError())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return m.theme.Container.Render(b.String())
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("skilldeck")
	sub := m.theme.Subtitle.Render("tool: " + m.tool)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", sub)
}

func (m Model) renderTabBar() string {
	allowed := make(map[tabs.Tab]bool)
	for _, tab := range tabs.Allowed(m.installed()) {
		allowed[tab] = true
	}
	effective := m.effectiveTab()

	var cells []string
	for _, tab := range []tabs.Tab{tabs.TabOverview, tabs.TabProjects} {
		label := string(tab)
		switch {
		case tab == effective:
			cells = append(cells, m.theme.TabActive.Render(label))
		case allowed[tab]:
			cells = append(cells, m.theme.TabInactive.Render(label))
		default:
			cells = append(cells, m.theme.TabDisabled.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, cells...)
}

// =============================================================================
// OVERVIEW TAB
// =============================================================================

func (m Model) renderOverview() string {
	var b strings.Builder
	b.WriteString(m.renderStatusLine())
	b.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.theme.SearchBox.Render(m.search.View()))
		b.WriteString("\n")
	}

	b.WriteString(m.renderSkillList())
	return b.String()
}

func (m Model) renderStatusLine() string {
	if m.statusErr != nil {
		return m.theme.NotInstalled.Render("manager unreachable: " + m.statusErr.Error())
	}
	if m.status == nil {
		return m.spin.View() + " checking " + m.tool + "..."
	}
	if m.status.Installed {
		line := m.theme.RenderStatus(true, m.tool+" installed")
		if m.status.Version != "" {
			line += m.theme.ListSummary.Render("  " + m.status.Version)
		}
		return line
	}
	return m.theme.RenderStatus(false, m.tool+" not installed") +
		m.theme.Footer.Render("  press i to install")
}

func (m Model) renderSkillList() string {
	if len(m.catalog) == 0 {
		return m.theme.ListSummary.Render("no skills available")
	}

	var b strings.Builder
	count := fmt.Sprintf("%d/%d skills", len(m.filtered), len(m.catalog))
	b.WriteString(m.theme.MatchCount.Render(count))
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		b.WriteString(m.theme.ListSummary.Render("no matches"))
		return b.String()
	}

	width := m.width - 6
	if width < 20 {
		width = 60
	}
	for i, s := range m.filtered {
		line := s.Name
		if s.Summary != "" {
			line += "  " + s.Summary
		}
		line = util.TruncateWidth(line, width)
		if i == m.skillIdx {
			b.WriteString(m.theme.ListSelected.Render("> " + line))
		} else {
			b.WriteString(m.theme.ListItem.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// PROJECTS TAB
// =============================================================================

func (m Model) renderProjects() string {
	if len(m.projects) == 0 {
		if m.jobKind == "scan" {
			return m.spin.View() + " scanning for projects..."
		}
		return m.theme.ListSummary.Render("no projects found") +
			m.theme.Footer.Render("  press s to scan")
	}

	width := m.width - 6
	if width < 20 {
		width = 60
	}

	var b strings.Builder
	for i, p := range m.projects {
		marker := "  "
		if p.Pinned {
			marker = m.theme.PinMarker.Render("★ ")
		}
		line := p.Name
		if p.SkillCount > 0 {
			line += fmt.Sprintf("  %d skills", p.SkillCount)
		}
		if !p.LastUpdated.IsZero() {
			line += "  " + p.LastUpdated.Format("2006-01-02")
		}
		line = util.TruncateWidth(line, width)
		if i == m.projectIdx {
			b.WriteString(m.theme.ListSelected.Render("> " + marker + line))
		} else {
			b.WriteString(m.theme.ListItem.Render("  " + marker + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// JOB PANE, ERRORS, FOOTER
// =============================================================================

func (m Model) renderJobPane() string {
	var head string
	switch {
	case m.job == nil:
		head = m.spin.View() + " starting..."
	case m.job.Status == jobs.StatusSucceeded:
		head = m.theme.JobSucceeded.Render("✓ " + m.job.Kind + " complete")
	case m.job.Status == jobs.StatusFailed:
		head = m.theme.JobFailed.Render("✗ " + m.job.Kind + " failed")
	default:
		head = m.spin.View() + " " + m.theme.JobRunning.Render(m.job.Kind+" "+string(m.job.Status))
	}
	return head + "\n" + m.theme.LogPane.Render(m.logView.View())
}

func (m Model) renderError() string {
	err := m.lastErr
	if err == nil {
		err = m.jobErr
	}
	if err == nil {
		return ""
	}
	var msg string
	switch {
	case api.IsNotInstalled(err):
		msg = m.tool + " is not installed; press i to install"
	case api.IsJobNotFound(err):
		msg = "job no longer exists; press r to refresh"
	case api.IsTransport(err):
		msg = "manager daemon unreachable: " + err.Error()
	default:
		msg = err.Error()
	}
	return m.theme.ErrorBox.Render(m.theme.ErrorTitle.Render("error: ") + msg)
}

func (m Model) renderFooter() string {
	key := m.theme.ShortcutKey.Render
	desc := m.theme.ShortcutDesc.Render
	parts := []string{
		key("tab") + desc(" switch"),
		key("/") + desc(" search"),
		key("r") + desc(" refresh"),
		key("t") + desc(" tool"),
		key("q") + desc(" quit"),
	}
	if m.effectiveTab() == tabs.TabProjects {
		parts = append(parts,
			key("s")+desc(" scan"),
			key("p")+desc(" pin"))
	} else if !m.installed() {
		parts = append(parts, key("i")+desc(" install"))
	}
	return m.theme.Footer.Render(strings.Join(parts, "  "))
}
