// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package verindex maintains a per-dossier cache mapping every
// discoverable versioned id to its fetch coordinates.
//
// The index is derived state: it is rebuilt by walking a dossier
// snapshot and holds no ownership over tree data. Caches are created
// lazily on first access per dossier id and evicted by the four named
// invalidation events (see events.go). The cache is an explicit,
// injectable object owned by whoever composes the resolver; there is no
// package-level shared instance.
package verindex

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/idcodec"
)

// EntryContext locates an entry's position in the tree.
type EntryContext struct {
	RunID     string `json:"run_id"`
	SegmentID string `json:"segment_id"`
	DossierID string `json:"dossier_id"`
}

// Entry is the fetch coordinates for one discoverable artifact version.
type Entry struct {
	VersionedID     string       `json:"versioned_id"`
	TranscriptionID string       `json:"transcription_id"`
	BaseDraftID     string       `json:"base_draft_id"`
	Context         EntryContext `json:"context"`
}

// Index maps versioned id to Entry for one dossier.
type Index map[string]Entry

// Cache caches one Index per dossier id.
//
// Thread Safety:
//
//	Cache is safe for concurrent use. The entry map is guarded by an
//	RWMutex; concurrent rebuilds of the same dossier are collapsed into
//	one walk via singleflight.
type Cache struct {
	mu        sync.RWMutex
	byDossier map[string]Index

	// gen counts invalidations per dossier id, genAll global ones. A
	// build snapshots both before walking and stores its result only if
	// neither moved, so an invalidation landing mid-build can never be
	// overwritten by the stale snapshot the build started from.
	gen    map[string]uint64
	genAll uint64

	flight singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		byDossier: make(map[string]Index),
		gen:       make(map[string]uint64),
	}
}

// Index returns the version index for the dossier, building it on a
// cache miss.
//
// The returned map is shared: callers must treat it as read-only. An
// invalidation between the lookup and the caller's use is harmless; the
// caller holds a consistent snapshot of the tree it was built from.
func (c *Cache) Index(ctx context.Context, d *dossier.Dossier) Index {
	if d == nil {
		return Index{}
	}

	c.mu.RLock()
	idx, ok := c.byDossier[d.ID]
	c.mu.RUnlock()
	if ok {
		recordCount(ctx, &indexHits)
		return idx
	}
	recordCount(ctx, &indexMisses)

	built, _, _ := c.flight.Do(d.ID, func() (any, error) {
		genID, genAll := c.genSnapshot(d.ID)
		idx := BuildIndex(d)
		c.storeIfCurrent(d.ID, genID, genAll, idx)
		recordCount(ctx, &indexBuilds)
		slog.Debug("version index built", "dossier_id", d.ID, "entries", len(idx))
		return idx, nil
	})
	return built.(Index)
}

// genSnapshot reads the invalidation generations for one dossier id.
func (c *Cache) genSnapshot(dossierID string) (genID, genAll uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen[dossierID], c.genAll
}

// storeIfCurrent caches idx unless the dossier (or everything) was
// invalidated after the generation snapshot was taken. The caller still
// returns its snapshot either way; only re-caching is skipped.
func (c *Cache) storeIfCurrent(dossierID string, genID, genAll uint64, idx Index) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[dossierID] != genID || c.genAll != genAll {
		return false
	}
	c.byDossier[dossierID] = idx
	return true
}

// Invalidate drops the cached index for one dossier.
func (c *Cache) Invalidate(dossierID string) {
	c.mu.Lock()
	c.gen[dossierID]++
	delete(c.byDossier, dossierID)
	c.mu.Unlock()
	recordCount(context.Background(), &indexInvalidations)
}

// InvalidateAll drops every cached index.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.genAll++
	c.byDossier = make(map[string]Index)
	c.mu.Unlock()
	recordCount(context.Background(), &indexInvalidations)
}

// HandleEvent applies one invalidation event: the carried dossier's
// index is dropped, or every index when the event has no dossier id.
// Unknown event names are ignored with a warning rather than guessed at.
func (c *Cache) HandleEvent(ev Event) {
	if !KnownEvent(ev.Name) {
		slog.Warn("ignoring unknown invalidation event", "event", string(ev.Name))
		return
	}
	if ev.DossierID == "" {
		c.InvalidateAll()
		return
	}
	c.Invalidate(ev.DossierID)
}

// Size returns the number of cached dossier indexes.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byDossier)
}

// BuildIndex walks a dossier snapshot and emits one Entry per
// discoverable artifact version.
//
// For each draft the base transcription id is the run's with any
// trailing revision suffix stripped, and the raw index is the draft's
// 1-based display position. One entry is emitted for every version flag
// present in the draft's metadata: raw v1/v2, alignment v1/v2, and each
// consensus kind's v1/v2.
func BuildIndex(d *dossier.Dossier) Index {
	idx := make(Index)
	for si := range d.Segments {
		seg := &d.Segments[si]
		for ri := range seg.Runs {
			run := &seg.Runs[ri]
			tid := idcodec.StripVersionSuffix(run.TranscriptionID)
			ectx := EntryContext{RunID: run.ID, SegmentID: seg.ID, DossierID: d.ID}
			for di := range run.Drafts {
				draft := &run.Drafts[di]
				index := draft.Position + 1

				addPair(idx, tid, draft, ectx, draft.Versions.Raw,
					idcodec.Key{Kind: idcodec.KindRaw, RawIndex: index})
				addPair(idx, tid, draft, ectx, draft.Versions.Alignment,
					idcodec.Key{Kind: idcodec.KindAlign, RawIndex: index})
				addPair(idx, tid, draft, ectx, draft.Versions.Consensus.LLM,
					idcodec.Key{Kind: idcodec.KindConsensusLLM})
				addPair(idx, tid, draft, ectx, draft.Versions.Consensus.Alignment,
					idcodec.Key{Kind: idcodec.KindConsensusAlignment})
			}
		}
	}
	return idx
}

// addPair emits entries for whichever revisions of one artifact kind
// exist. The key's head field is filled per revision.
func addPair(idx Index, tid string, draft *dossier.Draft, ectx EntryContext, pair dossier.VersionPair, key idcodec.Key) {
	if pair.V1 {
		key.Head = idcodec.HeadV1
		put(idx, tid, draft, ectx, key)
	}
	if pair.V2 {
		key.Head = idcodec.HeadV2
		put(idx, tid, draft, ectx, key)
	}
}

func put(idx Index, tid string, draft *dossier.Draft, ectx EntryContext, key idcodec.Key) {
	id := idcodec.Build(tid, key)
	idx[id] = Entry{
		VersionedID:     id,
		TranscriptionID: tid,
		BaseDraftID:     draft.ID,
		Context:         ectx,
	}
}
