// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scan

import (
	"sort"

	"github.com/jeranaias/skilldeck/internal/api"
)

// MergeProjects concatenates project lists from multiple sources (one
// per tool backend) and sorts them: pinned projects first, then most
// recently updated first. The sort is stable, so ties preserve the
// source-concatenation order.
func MergeProjects(sources ...[]api.Project) []api.Project {
	var total int
	for _, src := range sources {
		total += len(src)
	}

	merged := make([]api.Project, 0, total)
	for _, src := range sources {
		merged = append(merged, src...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Pinned != merged[j].Pinned {
			return merged[i].Pinned
		}
		return merged[i].LastUpdated.After(merged[j].LastUpdated)
	})
	return merged
}
