// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package dossier defines the read-side document tree and the collaborator
// interfaces the resolution engine consumes.
//
// The tree has four nesting levels: a Dossier holds ordered Segments, a
// Segment holds ordered Runs (processing attempts), a Run holds ordered
// Drafts (candidate transcriptions). The tree is owned and mutated
// entirely by an external store; this engine only reads snapshots of it.
package dossier

// Dossier is the root aggregate: one reviewed case file.
type Dossier struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Segments    []Segment `json:"segments"`
}

// Segment is one ordered unit of source content (a page or section).
//
// A segment may have an externally stored final selection. That selection
// is always queried through the FinalRegistry collaborator and never
// cached here: a stale copy could silently override a reviewer's
// confirmed choice.
type Segment struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Position int    `json:"position"`
	Runs     []Run  `json:"runs"`
}

// Run is one processing attempt tied to a transcription id.
//
// FinalSelectedID, when non-empty, is a literal strict versioned id set
// by a reviewer. It is authoritative: resolution must surface exactly
// that artifact or nothing.
type Run struct {
	ID              string  `json:"id"`
	Position        int     `json:"position"`
	TranscriptionID string  `json:"transcription_id"`
	FinalSelectedID string  `json:"final_selected_id,omitempty"`
	Drafts          []Draft `json:"drafts"`
}

// Draft is one candidate transcription within a run.
//
// Position is zero-based within the run; versioned ids use the 1-based
// display position. SizeBytes is the stored size of the draft text, used
// as a tie-breaker when no better candidate exists.
type Draft struct {
	ID              string   `json:"id"`
	Position        int      `json:"position"`
	TranscriptionID string   `json:"transcription_id"`
	IsBest          bool     `json:"is_best,omitempty"`
	SizeBytes       int64    `json:"size_bytes,omitempty"`
	Versions        Versions `json:"versions"`
}

// Versions records which revisions of which artifact kinds exist for a
// draft. Flags describe existence only; the artifacts themselves live in
// external text storage.
type Versions struct {
	Raw       VersionPair        `json:"raw"`
	Alignment VersionPair        `json:"alignment"`
	Consensus ConsensusArtifacts `json:"consensus"`
}

// VersionPair marks which of the two revisions of an artifact exist, and
// optionally which one is the recorded head.
type VersionPair struct {
	V1   bool   `json:"v1"`
	V2   bool   `json:"v2"`
	Head string `json:"head,omitempty"`
}

// Any reports whether at least one revision or a recorded head exists.
func (p VersionPair) Any() bool {
	return p.V1 || p.V2 || p.Head != ""
}

// ConsensusArtifacts holds the two run-level consensus kinds, each
// independently possibly present in v1/v2.
type ConsensusArtifacts struct {
	LLM       VersionPair `json:"llm"`
	Alignment VersionPair `json:"alignment"`
}

// SegmentByID returns the segment with the given id, or nil.
func (d *Dossier) SegmentByID(id string) *Segment {
	for i := range d.Segments {
		if d.Segments[i].ID == id {
			return &d.Segments[i]
		}
	}
	return nil
}

// RunByID returns the run with the given id anywhere in the dossier,
// along with its containing segment. Returns nils when absent.
func (d *Dossier) RunByID(id string) (*Segment, *Run) {
	for i := range d.Segments {
		seg := &d.Segments[i]
		for j := range seg.Runs {
			if seg.Runs[j].ID == id {
				return seg, &seg.Runs[j]
			}
		}
	}
	return nil, nil
}

// FirstRun returns the run with the lowest position, or nil for a
// segment with no runs. Run order within a segment is not assumed to be
// sorted on disk.
func (s *Segment) FirstRun() *Run {
	var first *Run
	for i := range s.Runs {
		if first == nil || s.Runs[i].Position < first.Position {
			first = &s.Runs[i]
		}
	}
	return first
}

// DraftByID returns the draft with the given id, or nil.
func (r *Run) DraftByID(id string) *Draft {
	for i := range r.Drafts {
		if r.Drafts[i].ID == id {
			return &r.Drafts[i]
		}
	}
	return nil
}

// FirstDraft returns the draft with the lowest position, or nil.
func (r *Run) FirstDraft() *Draft {
	var first *Draft
	for i := range r.Drafts {
		if first == nil || r.Drafts[i].Position < first.Position {
			first = &r.Drafts[i]
		}
	}
	return first
}

// BestDraft returns the reviewer-flagged best draft, or nil when no
// draft carries the flag.
func (r *Run) BestDraft() *Draft {
	for i := range r.Drafts {
		if r.Drafts[i].IsBest {
			return &r.Drafts[i]
		}
	}
	return nil
}

// LargestDraft returns the draft with the largest stored size, or nil
// for an empty run. Ties break toward the earlier position so repeated
// resolutions stay deterministic.
func (r *Run) LargestDraft() *Draft {
	var largest *Draft
	for i := range r.Drafts {
		d := &r.Drafts[i]
		switch {
		case largest == nil:
			largest = d
		case d.SizeBytes > largest.SizeBytes:
			largest = d
		case d.SizeBytes == largest.SizeBytes && d.Position < largest.Position:
			largest = d
		}
	}
	return largest
}
