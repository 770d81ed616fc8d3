// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package precedence

import (
	"testing"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

func TestStrictDraftID(t *testing.T) {
	tests := []struct {
		name  string
		tid   string
		draft dossier.Draft
		want  string
	}{
		{
			name: "alignment v1 beats raw even when only v1 of alignment exists",
			tid:  "tx42",
			draft: dossier.Draft{
				Position: 2,
				Versions: dossier.Versions{
					Alignment: dossier.VersionPair{V1: true},
					Raw:       dossier.VersionPair{V1: true, V2: true, Head: "v2"},
				},
			},
			want: "tx42_draft_3_v1",
		},
		{
			name: "alignment v2 wins over alignment v1",
			tid:  "tx42",
			draft: dossier.Draft{
				Position: 0,
				Versions: dossier.Versions{
					Alignment: dossier.VersionPair{V1: true, V2: true},
					Raw:       dossier.VersionPair{V1: true},
				},
			},
			want: "tx42_draft_1_v2",
		},
		{
			name: "raw recorded head wins",
			tid:  "tx42",
			draft: dossier.Draft{
				Position: 1,
				Versions: dossier.Versions{
					Raw: dossier.VersionPair{V1: true, V2: true, Head: "v1"},
				},
			},
			want: "tx42_v2_v1",
		},
		{
			name: "raw defaults to v2 when present",
			tid:  "tx42",
			draft: dossier.Draft{
				Position: 0,
				Versions: dossier.Versions{
					Raw: dossier.VersionPair{V1: true, V2: true},
				},
			},
			want: "tx42_v1_v2",
		},
		{
			name: "raw defaults to v1 otherwise",
			tid:  "tx42",
			draft: dossier.Draft{
				Position: 4,
				Versions: dossier.Versions{
					Raw: dossier.VersionPair{V1: true},
				},
			},
			want: "tx42_v5_v1",
		},
		{
			name: "trailing version suffix on run tid is stripped",
			tid:  "tx42_v2",
			draft: dossier.Draft{
				Position: 0,
				Versions: dossier.Versions{
					Raw: dossier.VersionPair{V1: true},
				},
			},
			want: "tx42_v1_v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &dossier.Run{TranscriptionID: tt.tid}
			got := StrictDraftID(run, &tt.draft)
			if got != tt.want {
				t.Errorf("StrictDraftID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsensusStrictID(t *testing.T) {
	t.Run("no consensus draft returns not found", func(t *testing.T) {
		run := &dossier.Run{
			TranscriptionID: "tx42",
			Drafts: []dossier.Draft{
				{ID: "d1", Versions: dossier.Versions{Raw: dossier.VersionPair{V1: true}}},
			},
		}
		if id, ok := ConsensusStrictID(run, ConsensusAlignment); ok {
			t.Errorf("ConsensusStrictID = %q, want not found", id)
		}
	})

	t.Run("explicit recorded head wins", func(t *testing.T) {
		run := &dossier.Run{
			TranscriptionID: "tx42",
			Drafts: []dossier.Draft{
				{
					ID: "tx42_consensus_llm",
					Versions: dossier.Versions{
						Consensus: dossier.ConsensusArtifacts{
							LLM: dossier.VersionPair{V1: true, V2: true, Head: "v1"},
						},
					},
				},
			},
		}
		id, ok := ConsensusStrictID(run, ConsensusLLM)
		if !ok || id != "tx42_consensus_llm_v1" {
			t.Errorf("ConsensusStrictID = %q, %v, want tx42_consensus_llm_v1", id, ok)
		}
	})

	t.Run("prefers v2 without a recorded head", func(t *testing.T) {
		run := &dossier.Run{
			TranscriptionID: "tx42",
			Drafts: []dossier.Draft{
				{
					ID: "tx42_consensus_alignment",
					Versions: dossier.Versions{
						Consensus: dossier.ConsensusArtifacts{
							Alignment: dossier.VersionPair{V1: true, V2: true},
						},
					},
				},
			},
		}
		id, ok := ConsensusStrictID(run, ConsensusAlignment)
		if !ok || id != "tx42_consensus_alignment_v2" {
			t.Errorf("ConsensusStrictID = %q, %v, want tx42_consensus_alignment_v2", id, ok)
		}
	})

	t.Run("bare base id when no revisions recorded", func(t *testing.T) {
		// The draft is identified by its id shape alone.
		run := &dossier.Run{
			TranscriptionID: "tx42_v1",
			Drafts: []dossier.Draft{
				{ID: "tx42_consensus_llm"},
			},
		}
		id, ok := ConsensusStrictID(run, ConsensusLLM)
		if !ok || id != "tx42_consensus_llm" {
			t.Errorf("ConsensusStrictID = %q, %v, want bare tx42_consensus_llm", id, ok)
		}
	})
}

func TestRunFinalID(t *testing.T) {
	run := &dossier.Run{FinalSelectedID: "tx42_draft_2_v2"}
	id, ok := RunFinalID(run)
	if !ok || id != "tx42_draft_2_v2" {
		t.Errorf("RunFinalID = %q, %v, want tx42_draft_2_v2", id, ok)
	}
	if _, ok := RunFinalID(&dossier.Run{}); ok {
		t.Error("RunFinalID on run without final selection reported ok")
	}
}
