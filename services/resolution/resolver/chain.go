// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolver

import (
	"context"
	"log/slog"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/precedence"
)

// Source names which candidate of the resolution produced the text.
type Source string

const (
	SourceFinal              Source = "final"
	SourceSegmentFinal       Source = "segment_final"
	SourceConsensusLLM       Source = "consensus_llm"
	SourceConsensusAlignment Source = "consensus_alignment"
	SourceBestDraft          Source = "best"
	SourceLargestDraft       Source = "largest"
	SourceFirstDraft         Source = "first"
	SourceIndex              Source = "index"
	SourceDirect             Source = "direct"
	SourceStitched           Source = "stitched"
	SourceNone               Source = "none"
)

// runChain applies the six-step fallback chain to one run and returns
// the first candidate that yields non-empty text.
//
// The run's final override is absolute: when set, no later candidate is
// tried, and a failed fetch of the final id ends the chain with empty
// text. The remaining candidates are a convenience default, not an
// authoritative answer, so their fetch failures mean "try the next one".
func (r *Resolver) runChain(ctx context.Context, dossierID string, seg *dossier.Segment, run *dossier.Run) (string, ResolvedArtifact) {
	at := ResolvedArtifact{
		DossierID:       dossierID,
		SegmentID:       seg.ID,
		RunID:           run.ID,
		TranscriptionID: run.TranscriptionID,
	}

	if id, ok := precedence.RunFinalID(run); ok {
		at.VersionedID = id
		at.Source = SourceFinal
		text, err := r.texts.GetText(ctx, run.TranscriptionID, id, dossierID)
		if err != nil {
			slog.Warn("final selection fetch failed, surfacing empty text",
				"dossier_id", dossierID, "run_id", run.ID, "versioned_id", id, "error", err)
			return "", at
		}
		return text, at
	}

	if id, ok := precedence.ConsensusStrictID(run, precedence.ConsensusLLM); ok {
		if text, err := r.texts.GetText(ctx, run.TranscriptionID, id, dossierID); err == nil && text != "" {
			at.VersionedID = id
			at.Source = SourceConsensusLLM
			return text, at
		}
	}
	if id, ok := precedence.ConsensusStrictID(run, precedence.ConsensusAlignment); ok {
		if text, err := r.texts.GetText(ctx, run.TranscriptionID, id, dossierID); err == nil && text != "" {
			at.VersionedID = id
			at.Source = SourceConsensusAlignment
			return text, at
		}
	}

	type draftCandidate struct {
		draft  *dossier.Draft
		source Source
	}
	candidates := []draftCandidate{
		{run.BestDraft(), SourceBestDraft},
		{run.LargestDraft(), SourceLargestDraft},
		{run.FirstDraft(), SourceFirstDraft},
	}
	for _, cand := range candidates {
		if cand.draft == nil {
			continue
		}
		id := precedence.StrictDraftID(run, cand.draft)
		if text, err := r.texts.GetText(ctx, run.TranscriptionID, id, dossierID); err == nil && text != "" {
			at.VersionedID = id
			at.DraftID = cand.draft.ID
			at.Source = cand.source
			return text, at
		}
	}

	at.Source = SourceNone
	return "", at
}
