// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolver

import (
	"context"
	"testing"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

// threeSegmentDossier builds a dossier whose segments resolve, through
// their first run's raw draft, to the given texts keyed by segment tid.
func threeSegmentDossier() *dossier.Dossier {
	seg := func(id string, pos int, tid string) dossier.Segment {
		return dossier.Segment{
			ID:       id,
			Position: pos,
			Runs: []dossier.Run{
				{
					ID:              id + "-run",
					TranscriptionID: tid,
					Drafts: []dossier.Draft{
						{
							ID:       id + "-draft",
							Position: 0,
							Versions: dossier.Versions{
								Raw: dossier.VersionPair{V1: true},
							},
						},
					},
				},
			},
		}
	}
	return &dossier.Dossier{
		ID: "dos-1",
		Segments: []dossier.Segment{
			// Deliberately out of order on disk; position decides.
			seg("seg-c", 2, "txc"),
			seg("seg-a", 0, "txa"),
			seg("seg-b", 1, "txb"),
		},
	}
}

func TestStitchConcatenation(t *testing.T) {
	texts := &fakeTexts{texts: map[string]string{
		"txa_v1_v1": "a",
		"txb_v1_v1": "b",
		"txc_v1_v1": "c",
	}}
	d := threeSegmentDossier()
	r := newTestResolver(d, texts, nil)

	got := r.Stitch(context.Background(), d)
	if got != "a\n\nb\n\nc" {
		t.Errorf("Stitch = %q, want %q", got, "a\n\nb\n\nc")
	}
}

func TestStitchDegradation(t *testing.T) {
	// The middle segment's fetch fails: structure is preserved, only
	// that segment's text is empty.
	texts := &fakeTexts{
		texts: map[string]string{
			"txa_v1_v1": "a",
			"txc_v1_v1": "c",
		},
		fail: map[string]bool{"txb_v1_v1": true},
	}
	d := threeSegmentDossier()
	r := newTestResolver(d, texts, nil)

	got := r.Stitch(context.Background(), d)
	if got != "a\n\n\n\nc" {
		t.Errorf("Stitch = %q, want %q", got, "a\n\n\n\nc")
	}
}

func TestStitchEmptyDossier(t *testing.T) {
	r := newTestResolver(nil, &fakeTexts{}, nil)
	if got := r.Stitch(context.Background(), &dossier.Dossier{ID: "dos-0"}); got != "" {
		t.Errorf("Stitch of empty dossier = %q, want empty", got)
	}
	if got := r.Stitch(context.Background(), nil); got != "" {
		t.Errorf("Stitch of nil dossier = %q, want empty", got)
	}
}

func TestResolveDossierGranularityDelegatesToStitch(t *testing.T) {
	texts := &fakeTexts{texts: map[string]string{
		"txa_v1_v1": "a",
		"txb_v1_v1": "b",
		"txc_v1_v1": "c",
	}}
	d := threeSegmentDossier()
	r := newTestResolver(d, texts, nil)

	res := r.ResolveOnce(context.Background(), dossier.SelectionPath{DossierID: "dos-1"})
	if res.Mode != dossier.GranularityDossier {
		t.Errorf("Mode = %q, want dossier", res.Mode)
	}
	if res.Text != "a\n\nb\n\nc" {
		t.Errorf("Text = %q, want stitched view", res.Text)
	}
	if res.Context.Source != SourceStitched {
		t.Errorf("Source = %q, want stitched", res.Context.Source)
	}
}
