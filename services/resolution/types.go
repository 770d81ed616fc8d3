// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolution

import "github.com/scriptoria/scriptorium/services/resolution/dossier"

// ResolveRequest selects a point in the dossier tree to resolve.
// DossierID is required; the deepest populated id decides granularity.
type ResolveRequest struct {
	// DossierID is the dossier to resolve within.
	DossierID string `json:"dossier_id" binding:"required"`

	// SegmentID narrows resolution to one segment.
	SegmentID string `json:"segment_id,omitempty"`

	// RunID narrows resolution to one run.
	RunID string `json:"run_id,omitempty"`

	// DraftID pins resolution to one exact draft version.
	DraftID string `json:"draft_id,omitempty"`
}

// InvalidateRequest feeds one cache invalidation event to the service.
type InvalidateRequest struct {
	// Event is one of: dossier-list-refreshed, dossier-refreshed,
	// draft-saved, draft-reverted.
	Event string `json:"event" binding:"required"`

	// DossierID scopes the invalidation. Empty drops every cached index.
	DossierID string `json:"dossier_id,omitempty"`
}

// InvalidateResponse acknowledges an accepted invalidation event.
type InvalidateResponse struct {
	// Accepted is true once the event has been applied to the cache.
	Accepted bool `json:"accepted"`

	// Event echoes the applied event name.
	Event string `json:"event"`

	// DossierID echoes the scope, empty for a global invalidation.
	DossierID string `json:"dossier_id,omitempty"`
}

// StitchedResponse is the full reading view of a dossier.
type StitchedResponse struct {
	// DossierID is the stitched dossier.
	DossierID string `json:"dossier_id"`

	// Text is the segment texts in position order, joined with blank
	// lines. Unresolvable segments contribute empty strings.
	Text string `json:"text"`

	// Segments is the number of segments stitched.
	Segments int `json:"segments"`
}

// FinalRequest records a reviewer-confirmed final selection for a segment.
type FinalRequest struct {
	// TranscriptionID is the run transcription id the draft belongs to.
	TranscriptionID string `json:"transcription_id" binding:"required"`

	// DraftID is the exact draft id to pin.
	DraftID string `json:"draft_id" binding:"required"`

	// SetBy optionally names who confirmed the selection.
	SetBy string `json:"set_by,omitempty"`
}

// FinalResponse returns a recorded final selection.
type FinalResponse struct {
	// DossierID and SegmentID locate the entry.
	DossierID string `json:"dossier_id"`
	SegmentID string `json:"segment_id"`

	// Entry is the recorded selection.
	Entry dossier.FinalEntry `json:"entry"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	// Status is "healthy" when the service is serving.
	Status string `json:"status"`

	// Version is the service version.
	Version string `json:"version"`

	// CachedIndexes is the number of dossier version indexes in cache.
	CachedIndexes int `json:"cached_indexes"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}
