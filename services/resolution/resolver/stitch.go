// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolver

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

// Stitch composes a whole-dossier reading view: one artifact per
// segment, concatenated in segment order with a blank line between
// segments.
//
// Each segment resolves independently: a recorded segment final first
// (fail-closed per segment), otherwise the segment's first run through
// the fallback chain. A segment whose resolution fails contributes an
// empty string and stitching continues; this is a convenience export
// view, not an authoritative per-draft reference, so soft degradation is
// the right trade. Segment texts are fetched concurrently but the output
// order is always the segment order.
func (r *Resolver) Stitch(ctx context.Context, d *dossier.Dossier) string {
	if d == nil || len(d.Segments) == 0 {
		return ""
	}

	segments := make([]*dossier.Segment, len(d.Segments))
	for i := range d.Segments {
		segments[i] = &d.Segments[i]
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Position < segments[j].Position
	})

	texts := make([]string, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		g.Go(func() error {
			path := dossier.SelectionPath{DossierID: d.ID, SegmentID: seg.ID}
			text, _ := r.resolveSegment(gctx, d, path)
			texts[i] = text
			return nil
		})
	}
	// Workers never return errors; per-segment failures already degraded
	// to empty strings.
	_ = g.Wait()

	return strings.Join(texts, "\n\n")
}
