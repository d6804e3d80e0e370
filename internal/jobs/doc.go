// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package jobs tracks server-side jobs (tool installs, project scans) from
// the client: status state machine, append-only log collection, and a
// polling monitor with explicit cancellation.
package jobs
