// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dossier

import "context"

// TreeProvider returns full dossier aggregates by id. The CRUD side of
// the tree lives behind this interface; the engine only reads snapshots.
type TreeProvider interface {
	// GetDossier returns the dossier with nested segments, runs and
	// drafts. Implementations return an error wrapping a not-found
	// condition when the id is unknown.
	GetDossier(ctx context.Context, dossierID string) (*Dossier, error)
}

// TextFetcher retrieves artifact text from external storage.
//
// The id may be a canonical versioned id or an opaque literal; the
// fetcher must accept both and look the artifact up verbatim. Fetches
// may fail; how a failure is handled depends on the resolution
// granularity and is decided by the caller, never here.
type TextFetcher interface {
	GetText(ctx context.Context, transcriptionID, id, dossierID string) (string, error)
}

// FinalEntry is one reviewer-confirmed final selection at segment scope.
type FinalEntry struct {
	TranscriptionID string `json:"transcription_id"`
	DraftID         string `json:"draft_id"`
	SetAt           string `json:"set_at"`
	SetBy           string `json:"set_by,omitempty"`
}

// FinalRegistry stores reviewer-confirmed final selections.
//
// Lookups go to the registry on every resolution; results are never
// cached by the engine, since a stale entry could silently override a
// reviewer's confirmed choice.
type FinalRegistry interface {
	// GetSegmentFinal returns the final selection for a segment, or
	// (nil, nil) when none is recorded.
	GetSegmentFinal(ctx context.Context, dossierID, segmentID string) (*FinalEntry, error)

	// SetSegmentFinal records a final selection for a segment.
	SetSegmentFinal(ctx context.Context, dossierID, segmentID string, entry FinalEntry) error

	// ClearSegmentFinal removes a segment's final selection. Returns
	// true when an entry existed.
	ClearSegmentFinal(ctx context.Context, dossierID, segmentID string) (bool, error)
}
