// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dossier

// Granularity is the resolution mode implied by a selection path.
type Granularity string

const (
	GranularityDraft   Granularity = "draft"
	GranularityRun     Granularity = "run"
	GranularitySegment Granularity = "segment"
	GranularityDossier Granularity = "dossier"
)

// SelectionPath is a partial navigational tuple into the tree. Fields
// are filled from the root down; the most specific populated field
// determines the granularity.
type SelectionPath struct {
	DossierID string `json:"dossier_id"`
	SegmentID string `json:"segment_id,omitempty"`
	RunID     string `json:"run_id,omitempty"`
	DraftID   string `json:"draft_id,omitempty"`
}

// Granularity returns the resolution mode for the path, most specific
// first: an explicit draft id wins over a run id, and so on down to the
// whole dossier.
func (p SelectionPath) Granularity() Granularity {
	switch {
	case p.DraftID != "":
		return GranularityDraft
	case p.RunID != "":
		return GranularityRun
	case p.SegmentID != "":
		return GranularitySegment
	default:
		return GranularityDossier
	}
}
