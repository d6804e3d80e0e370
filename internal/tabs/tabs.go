// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tabs derives which navigation tabs are visible from the tool's
// install status, and reconciles the active selection against that set.
// It is pure derivation: nothing here is stored, everything is recomputed
// whenever the status or the requested tab changes.
package tabs

// Tab identifies one navigable tab of the tool view.
type Tab string

const (
	// TabOverview shows install status and actions. Always available.
	TabOverview Tab = "overview"

	// TabProjects lists discovered projects. Only available while the
	// tool is installed.
	TabProjects Tab = "projects"
)

// String returns the tab key.
func (t Tab) String() string {
	return string(t)
}

// Allowed returns the navigable tab set for the given install status,
// in display order.
func Allowed(installed bool) []Tab {
	if installed {
		return []Tab{TabOverview, TabProjects}
	}
	return []Tab{TabOverview}
}

// Effective returns the tab to display: the requested tab when it is a
// member of the allowed set, otherwise the overview. A tool that becomes
// uninstalled while projects is selected reconciles back to overview on
// the next derivation.
func Effective(requested Tab, installed bool) Tab {
	for _, t := range Allowed(installed) {
		if t == requested {
			return requested
		}
	}
	return TabOverview
}
