// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// CONTAINER AND HEADER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style
	Header    lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabDisabled lipgloss.Style
	TabBar      lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	Installed    lipgloss.Style
	NotInstalled lipgloss.Style
	JobRunning   lipgloss.Style
	JobSucceeded lipgloss.Style
	JobFailed    lipgloss.Style
	Spinner      lipgloss.Style

	// ==========================================================================
	// LIST STYLES
	// ==========================================================================

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListSummary  lipgloss.Style
	PinMarker    lipgloss.Style
	MatchCount   lipgloss.Style

	// ==========================================================================
	// SEARCH AND LOG STYLES
	// ==========================================================================

	SearchPrompt lipgloss.Style
	SearchBox    lipgloss.Style
	LogPane      lipgloss.Style
	LogLine      lipgloss.Style

	// ==========================================================================
	// OVERLAY AND FOOTER STYLES
	// ==========================================================================

	Overlay      lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	Footer       lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Tab bar
	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Purple).
		Padding(0, 2)

	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.TabDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)

	t.TabBar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Border)

	// Status badges
	t.Installed = lipgloss.NewStyle().Bold(true).Foreground(Emerald)
	t.NotInstalled = lipgloss.NewStyle().Bold(true).Foreground(Rose)
	t.JobRunning = lipgloss.NewStyle().Foreground(Amber)
	t.JobSucceeded = lipgloss.NewStyle().Foreground(Emerald)
	t.JobFailed = lipgloss.NewStyle().Foreground(Rose)
	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	// Lists
	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.ListSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Background(SurfaceBright).
		Padding(0, 1)

	t.ListSummary = lipgloss.NewStyle().Foreground(TextSecondary)
	t.PinMarker = lipgloss.NewStyle().Foreground(Amber)
	t.MatchCount = lipgloss.NewStyle().Foreground(TextMuted)

	// Search and logs
	t.SearchPrompt = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.SearchBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	t.LogPane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Background(SurfaceDim).
		Padding(0, 1)

	t.LogLine = lipgloss.NewStyle().Foreground(TextSecondary)

	// Overlays
	t.Overlay = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.ErrorTitle = lipgloss.NewStyle().Bold(true).Foreground(Rose)

	// Footer
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextSecondary)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// RenderStatus renders a success or failure badge with the message.
func (t *Theme) RenderStatus(ok bool, message string) string {
	if ok {
		return t.Installed.Render("✓ " + message)
	}
	return t.NotInstalled.Render("✗ " + message)
}
