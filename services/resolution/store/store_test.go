// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

// writeDossier persists a tree document into a test data root.
func writeDossier(t *testing.T, root string, d *dossier.Dossier) {
	t.Helper()
	dir := filepath.Join(root, "dossiers", d.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dossier.json"), data, 0o640); err != nil {
		t.Fatal(err)
	}
}

func writeText(t *testing.T, root, dossierID, id, text string) {
	t.Helper()
	dir := filepath.Join(root, "dossiers", dossierID, "texts")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+".txt"), []byte(text), 0o640); err != nil {
		t.Fatal(err)
	}
}

func TestStoreGetDossier(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a tree document", func(t *testing.T) {
		root := t.TempDir()
		want := &dossier.Dossier{
			ID:    "dos-1",
			Title: "Deed book 12",
			Segments: []dossier.Segment{
				{
					ID: "seg-1",
					Runs: []dossier.Run{
						{
							ID:              "run-1",
							TranscriptionID: "tx42",
							Drafts: []dossier.Draft{
								{ID: "draft-a", Versions: dossier.Versions{Raw: dossier.VersionPair{V1: true}}},
							},
						},
					},
				},
			},
		}
		writeDossier(t, root, want)

		got, err := New(root).GetDossier(ctx, "dos-1")
		if err != nil {
			t.Fatalf("GetDossier: %v", err)
		}
		if got.Title != want.Title || len(got.Segments) != 1 {
			t.Errorf("got %+v", got)
		}
		if got.Segments[0].Runs[0].Drafts[0].Versions.Raw.V1 != true {
			t.Error("draft version flags lost in round trip")
		}
	})

	t.Run("unknown dossier", func(t *testing.T) {
		_, err := New(t.TempDir()).GetDossier(ctx, "nope")
		if !errors.Is(err, ErrDossierNotFound) {
			t.Errorf("err = %v, want ErrDossierNotFound", err)
		}
	})

	t.Run("traversal id rejected", func(t *testing.T) {
		_, err := New(t.TempDir()).GetDossier(ctx, "../escape")
		if err == nil || errors.Is(err, ErrDossierNotFound) {
			t.Errorf("err = %v, want validation error", err)
		}
	})
}

func TestStoreGetText(t *testing.T) {
	ctx := context.Background()

	t.Run("reads artifact text verbatim by id", func(t *testing.T) {
		root := t.TempDir()
		writeText(t, root, "dos-1", "tx42_draft_1_v2", "aligned text")

		got, err := New(root).GetText(ctx, "tx42", "tx42_draft_1_v2", "dos-1")
		if err != nil {
			t.Fatalf("GetText: %v", err)
		}
		if got != "aligned text" {
			t.Errorf("text = %q", got)
		}
	})

	t.Run("missing artifact", func(t *testing.T) {
		_, err := New(t.TempDir()).GetText(ctx, "tx42", "tx42_v1_v1", "dos-1")
		if !errors.Is(err, ErrTextNotFound) {
			t.Errorf("err = %v, want ErrTextNotFound", err)
		}
	})
}

func TestStoreListDossierIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		ids, err := New(t.TempDir()).ListDossierIDs(ctx)
		if err != nil || len(ids) != 0 {
			t.Errorf("ListDossierIDs = %v, %v, want empty, nil", ids, err)
		}
	})

	t.Run("lists dossier directories", func(t *testing.T) {
		root := t.TempDir()
		writeDossier(t, root, &dossier.Dossier{ID: "dos-1"})
		writeDossier(t, root, &dossier.Dossier{ID: "dos-2"})

		ids, err := New(root).ListDossierIDs(ctx)
		if err != nil {
			t.Fatalf("ListDossierIDs: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("ids = %v, want 2 entries", ids)
		}
	})
}
