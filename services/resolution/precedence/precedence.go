// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package precedence computes canonical versioned ids for drafts and
// consensus artifacts.
//
// The precedence order is fixed and not configurable: alignment output
// is strictly more authoritative than unaligned raw output whenever both
// exist, and a reviewer-set final selection suppresses everything else.
//
// Head fallback policy: when an artifact has both revisions and no
// recorded head, v2 is preferred. The original system applied this
// fallback at most call sites but not all; this implementation applies
// it uniformly.
package precedence

import (
	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/idcodec"
)

// ConsensusKind selects one of the two run-level consensus artifacts.
type ConsensusKind string

const (
	// ConsensusLLM is the model-reconciled consensus artifact.
	ConsensusLLM ConsensusKind = "llm"

	// ConsensusAlignment is the alignment-derived consensus artifact.
	ConsensusAlignment ConsensusKind = "alignment"
)

// StrictDraftID computes the single canonical versioned id for a draft.
//
// Order: alignment v2, then alignment v1, then the raw revision named by
// the draft's recorded raw head (defaulting to v2 when the draft has a
// v2 revision, else v1). The raw index is the draft's 1-based display
// position; the transcription id is the run's with any trailing revision
// suffix stripped.
func StrictDraftID(run *dossier.Run, draft *dossier.Draft) string {
	tid := idcodec.StripVersionSuffix(run.TranscriptionID)
	index := draft.Position + 1

	if draft.Versions.Alignment.V2 {
		return idcodec.Build(tid, idcodec.Key{Kind: idcodec.KindAlign, RawIndex: index, Head: idcodec.HeadV2})
	}
	if draft.Versions.Alignment.V1 {
		return idcodec.Build(tid, idcodec.Key{Kind: idcodec.KindAlign, RawIndex: index, Head: idcodec.HeadV1})
	}

	head := idcodec.Head(draft.Versions.Raw.Head)
	if head != idcodec.HeadV1 && head != idcodec.HeadV2 {
		if draft.Versions.Raw.V2 {
			head = idcodec.HeadV2
		} else {
			head = idcodec.HeadV1
		}
	}
	return idcodec.Build(tid, idcodec.Key{Kind: idcodec.KindRaw, RawIndex: index, Head: head})
}

// ConsensusStrictID computes the canonical id for a run's consensus
// artifact of the given kind.
//
// Returns ok=false when the run has no consensus draft of that kind.
// Head: the explicitly recorded head wins, else v2 if present, else v1
// if present, else the bare base id with no head ("no explicit head
// recorded yet").
func ConsensusStrictID(run *dossier.Run, kind ConsensusKind) (string, bool) {
	draft := findConsensusDraft(run, kind)
	if draft == nil {
		return "", false
	}

	var pair dossier.VersionPair
	var idKind idcodec.Kind
	switch kind {
	case ConsensusLLM:
		pair = draft.Versions.Consensus.LLM
		idKind = idcodec.KindConsensusLLM
	case ConsensusAlignment:
		pair = draft.Versions.Consensus.Alignment
		idKind = idcodec.KindConsensusAlignment
	default:
		return "", false
	}

	tid := idcodec.StripVersionSuffix(run.TranscriptionID)
	head := idcodec.Head(pair.Head)
	if head != idcodec.HeadV1 && head != idcodec.HeadV2 {
		switch {
		case pair.V2:
			head = idcodec.HeadV2
		case pair.V1:
			head = idcodec.HeadV1
		default:
			head = idcodec.HeadNone
		}
	}
	return idcodec.Build(tid, idcodec.Key{Kind: idKind, Head: head}), true
}

// RunFinalID returns the run's reviewer-set final selection.
//
// A final selection is authoritative and unconditional: when set, no
// other candidate may be tried, and a failed fetch of the final id must
// surface as empty text rather than any substitute. Showing the wrong
// revision of an official document is worse than showing nothing.
func RunFinalID(run *dossier.Run) (string, bool) {
	if run.FinalSelectedID == "" {
		return "", false
	}
	return run.FinalSelectedID, true
}

// findConsensusDraft locates the single draft of the given consensus
// kind within the run. Version metadata is checked first; a draft whose
// id itself parses to the kind also matches, covering trees recorded
// before version metadata existed.
func findConsensusDraft(run *dossier.Run, kind ConsensusKind) *dossier.Draft {
	var want idcodec.Kind
	switch kind {
	case ConsensusLLM:
		want = idcodec.KindConsensusLLM
	case ConsensusAlignment:
		want = idcodec.KindConsensusAlignment
	default:
		return nil
	}

	for i := range run.Drafts {
		d := &run.Drafts[i]
		switch kind {
		case ConsensusLLM:
			if d.Versions.Consensus.LLM.Any() {
				return d
			}
		case ConsensusAlignment:
			if d.Versions.Consensus.Alignment.Any() {
				return d
			}
		}
		if _, key, ok := idcodec.Parse(d.ID); ok && key.Kind == want {
			return d
		}
	}
	return nil
}
