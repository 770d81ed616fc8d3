// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package resolver turns a navigational selection into one concrete
// piece of text.
//
// Given a partial path into the dossier tree, the resolver picks a
// strategy by granularity: an explicit draft id is honored exactly (no
// substitution on failure), a run or segment selection walks a fixed
// fallback chain of progressively weaker candidates, and a whole-dossier
// selection is stitched from one artifact per segment.
//
// Resolve never returns an error. It always produces a well-formed
// Result, possibly with empty text, so a caller's render path stays
// simple and crash-free. Overlapping selections are ordered by Guard
// tokens; a superseded selection's result comes back marked and empty
// so it can never overwrite a newer one.
package resolver

import (
	"context"
	"log/slog"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/idcodec"
	"github.com/scriptoria/scriptorium/services/resolution/verindex"
)

// ResolvedArtifact describes which artifact a resolution surfaced and
// where it sits in the tree. Fields that could not be determined stay
// empty; a Result for a missing entity carries whatever coordinates were
// known.
type ResolvedArtifact struct {
	DossierID       string `json:"dossier_id,omitempty"`
	SegmentID       string `json:"segment_id,omitempty"`
	RunID           string `json:"run_id,omitempty"`
	DraftID         string `json:"draft_id,omitempty"`
	TranscriptionID string `json:"transcription_id,omitempty"`
	VersionedID     string `json:"versioned_id,omitempty"`
	Source          Source `json:"source,omitempty"`
}

// Result is the outcome of one selection resolution.
type Result struct {
	Mode       dossier.Granularity   `json:"mode"`
	Path       dossier.SelectionPath `json:"path"`
	Text       string                `json:"text"`
	Context    ResolvedArtifact      `json:"context"`
	Superseded bool                  `json:"superseded,omitempty"`
}

// Resolver is the public entry point of the resolution engine.
//
// All collaborators are injected; the resolver owns no tree data and
// caches nothing beyond the injected version index cache. The final
// registry may be nil when segment-scope finals are not in play.
type Resolver struct {
	trees  dossier.TreeProvider
	texts  dossier.TextFetcher
	finals dossier.FinalRegistry
	index  *verindex.Cache
	guard  Guard
}

// New creates a Resolver from its collaborators. finals may be nil.
func New(trees dossier.TreeProvider, texts dossier.TextFetcher, finals dossier.FinalRegistry, index *verindex.Cache) *Resolver {
	return &Resolver{
		trees:  trees,
		texts:  texts,
		finals: finals,
		index:  index,
	}
}

// NewToken issues a fresh selection token. Callers issue one token per
// externally triggered selection, before starting any fetch, and pass it
// to Resolve.
func (r *Resolver) NewToken() Token {
	return r.guard.Next()
}

// Resolve resolves the path to text under the given token.
//
// If a newer token was issued while this resolution was in flight, the
// result comes back with Superseded set and no text: it must not be
// shown. Resolve never returns an error; failures degrade to empty text
// with as much context as was established.
func (r *Resolver) Resolve(ctx context.Context, token Token, path dossier.SelectionPath) *Result {
	res := r.resolve(ctx, path)
	if !r.guard.Current(token) {
		return &Result{Mode: res.Mode, Path: path, Superseded: true}
	}
	return res
}

// ResolveOnce resolves the path as an independent one-shot request,
// entirely outside the race guard.
//
// The guard protects a single caller's display from out-of-order
// completions among its own selections. Stateless callers (HTTP
// requests, exports, tests) have no such display: their results can
// never be stale for anyone, and they must not draw tokens that would
// supersede the in-flight work of callers that do manage tokens.
func (r *Resolver) ResolveOnce(ctx context.Context, path dossier.SelectionPath) *Result {
	return r.resolve(ctx, path)
}

func (r *Resolver) resolve(ctx context.Context, path dossier.SelectionPath) *Result {
	mode := path.Granularity()
	res := &Result{Mode: mode, Path: path}
	res.Context.DossierID = path.DossierID

	d, err := r.trees.GetDossier(ctx, path.DossierID)
	if err != nil || d == nil {
		slog.Warn("dossier not found for selection", "dossier_id", path.DossierID, "error", err)
		return res
	}

	switch mode {
	case dossier.GranularityDraft:
		res.Text, res.Context = r.resolveDraft(ctx, d, path)
	case dossier.GranularityRun:
		res.Text, res.Context = r.resolveRun(ctx, d, path)
	case dossier.GranularitySegment:
		res.Text, res.Context = r.resolveSegment(ctx, d, path)
	case dossier.GranularityDossier:
		res.Text = r.Stitch(ctx, d)
		res.Context = ResolvedArtifact{DossierID: d.ID, Source: SourceStitched}
	}
	return res
}

// resolveDraft honors an explicit draft id exactly. The id is looked up
// in the version index; on a miss one direct fetch is attempted with the
// literal id, which supports ids constructed outside the index. Either
// way a fetch failure yields empty text with no substitution: the user
// asked for exactly this version.
func (r *Resolver) resolveDraft(ctx context.Context, d *dossier.Dossier, path dossier.SelectionPath) (string, ResolvedArtifact) {
	idx := r.index.Index(ctx, d)
	if entry, ok := idx[path.DraftID]; ok {
		at := ResolvedArtifact{
			DossierID:       d.ID,
			SegmentID:       entry.Context.SegmentID,
			RunID:           entry.Context.RunID,
			DraftID:         entry.BaseDraftID,
			TranscriptionID: entry.TranscriptionID,
			VersionedID:     entry.VersionedID,
			Source:          SourceIndex,
		}
		text, err := r.texts.GetText(ctx, entry.TranscriptionID, entry.VersionedID, d.ID)
		if err != nil {
			slog.Warn("draft fetch failed", "versioned_id", entry.VersionedID, "error", err)
			return "", at
		}
		return text, at
	}

	at := ResolvedArtifact{
		DossierID:   d.ID,
		SegmentID:   path.SegmentID,
		RunID:       path.RunID,
		VersionedID: path.DraftID,
		Source:      SourceDirect,
	}
	at.TranscriptionID = directFetchTID(d, path)
	text, err := r.texts.GetText(ctx, at.TranscriptionID, path.DraftID, d.ID)
	if err != nil {
		slog.Warn("direct draft fetch failed", "id", path.DraftID, "error", err)
		return "", at
	}
	return text, at
}

func (r *Resolver) resolveRun(ctx context.Context, d *dossier.Dossier, path dossier.SelectionPath) (string, ResolvedArtifact) {
	seg, run := d.RunByID(path.RunID)
	if run == nil {
		return "", ResolvedArtifact{DossierID: d.ID, RunID: path.RunID, Source: SourceNone}
	}
	return r.runChain(ctx, d.ID, seg, run)
}

// resolveSegment consults the segment-scope final registry before
// anything else. A recorded segment final has the same absoluteness as a
// run final: its fetch failure surfaces empty text, never a fallback.
// Without one, the segment's first run walks the normal chain.
func (r *Resolver) resolveSegment(ctx context.Context, d *dossier.Dossier, path dossier.SelectionPath) (string, ResolvedArtifact) {
	seg := d.SegmentByID(path.SegmentID)
	if seg == nil {
		return "", ResolvedArtifact{DossierID: d.ID, SegmentID: path.SegmentID, Source: SourceNone}
	}

	if r.finals != nil {
		final, err := r.finals.GetSegmentFinal(ctx, d.ID, seg.ID)
		if err != nil {
			slog.Warn("final registry lookup failed", "dossier_id", d.ID, "segment_id", seg.ID, "error", err)
		}
		if final != nil {
			at := ResolvedArtifact{
				DossierID:       d.ID,
				SegmentID:       seg.ID,
				TranscriptionID: final.TranscriptionID,
				VersionedID:     final.DraftID,
				Source:          SourceSegmentFinal,
			}
			text, err := r.texts.GetText(ctx, final.TranscriptionID, final.DraftID, d.ID)
			if err != nil {
				slog.Warn("segment final fetch failed, surfacing empty text",
					"dossier_id", d.ID, "segment_id", seg.ID, "versioned_id", final.DraftID, "error", err)
				return "", at
			}
			return text, at
		}
	}

	run := seg.FirstRun()
	if run == nil {
		return "", ResolvedArtifact{DossierID: d.ID, SegmentID: seg.ID, Source: SourceNone}
	}
	return r.runChain(ctx, d.ID, seg, run)
}

// directFetchTID picks the transcription id for a direct (non-indexed)
// fetch: the containing run's when the path names one, else the id's own
// encoded tid, else the literal id itself.
func directFetchTID(d *dossier.Dossier, path dossier.SelectionPath) string {
	if path.RunID != "" {
		if _, run := d.RunByID(path.RunID); run != nil {
			return idcodec.StripVersionSuffix(run.TranscriptionID)
		}
	}
	if tid, _, ok := idcodec.Parse(path.DraftID); ok {
		return tid
	}
	return path.DraftID
}
