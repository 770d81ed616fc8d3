// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry is the file-backed final-selection registry.
//
// One JSON document per dossier, at
// {root}/state/{dossierID}/final_registry.json, maps segment ids to the
// reviewer-confirmed strict versioned id for that segment. Writes are
// atomic (temp file + rename) so a crashed write can never leave a
// half-written registry. Reads always go to disk: finals are never
// cached, since a stale copy could silently override a reviewer's
// confirmed choice.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scriptoria/scriptorium/pkg/validation"
	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

// ErrInvalidEntry is returned when a final entry misses required fields.
var ErrInvalidEntry = errors.New("final entry requires transcription id and draft id")

// document is the on-disk registry schema.
type document struct {
	Segments map[string]dossier.FinalEntry `json:"segments"`
	Version  int                           `json:"_version"`
}

// FileRegistry implements dossier.FinalRegistry on the local filesystem.
//
// Thread Safety: safe for concurrent use within one process as long as
// no two writers target the same dossier concurrently; the atomic
// rename makes concurrent readers always see a complete document.
type FileRegistry struct {
	root string
}

// NewFileRegistry creates a registry rooted at dir.
func NewFileRegistry(dir string) *FileRegistry {
	return &FileRegistry{root: dir}
}

var _ dossier.FinalRegistry = (*FileRegistry)(nil)

// GetSegmentFinal returns the final selection for a segment, or
// (nil, nil) when none is recorded.
func (r *FileRegistry) GetSegmentFinal(_ context.Context, dossierID, segmentID string) (*dossier.FinalEntry, error) {
	if err := validation.ValidateEntityID(dossierID); err != nil {
		return nil, fmt.Errorf("dossier id: %w", err)
	}
	doc, err := r.read(dossierID)
	if err != nil {
		return nil, err
	}
	entry, ok := doc.Segments[segmentID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// SetSegmentFinal records a final selection for a segment. SetAt is
// stamped here when the caller left it empty.
func (r *FileRegistry) SetSegmentFinal(_ context.Context, dossierID, segmentID string, entry dossier.FinalEntry) error {
	if err := validation.ValidateEntityID(dossierID); err != nil {
		return fmt.Errorf("dossier id: %w", err)
	}
	if err := validation.ValidateEntityID(segmentID); err != nil {
		return fmt.Errorf("segment id: %w", err)
	}
	if entry.TranscriptionID == "" || entry.DraftID == "" {
		return ErrInvalidEntry
	}
	if entry.SetAt == "" {
		entry.SetAt = time.Now().UTC().Format(time.RFC3339)
	}

	doc, err := r.read(dossierID)
	if err != nil {
		return err
	}
	doc.Segments[segmentID] = entry
	return r.write(dossierID, doc)
}

// ClearSegmentFinal removes a segment's final selection. Returns true
// when an entry existed.
func (r *FileRegistry) ClearSegmentFinal(_ context.Context, dossierID, segmentID string) (bool, error) {
	if err := validation.ValidateEntityID(dossierID); err != nil {
		return false, fmt.Errorf("dossier id: %w", err)
	}
	doc, err := r.read(dossierID)
	if err != nil {
		return false, err
	}
	_, existed := doc.Segments[segmentID]
	if !existed {
		return false, nil
	}
	delete(doc.Segments, segmentID)
	return true, r.write(dossierID, doc)
}

// ListFinals returns every recorded final for a dossier, keyed by
// segment id.
func (r *FileRegistry) ListFinals(_ context.Context, dossierID string) (map[string]dossier.FinalEntry, error) {
	if err := validation.ValidateEntityID(dossierID); err != nil {
		return nil, fmt.Errorf("dossier id: %w", err)
	}
	doc, err := r.read(dossierID)
	if err != nil {
		return nil, err
	}
	return doc.Segments, nil
}

func (r *FileRegistry) path(dossierID string) string {
	return filepath.Join(r.root, "state", dossierID, "final_registry.json")
}

// read loads the registry document, returning an empty one for a
// missing or unreadable file.
func (r *FileRegistry) read(dossierID string) (*document, error) {
	empty := &document{Segments: map[string]dossier.FinalEntry{}, Version: 1}

	data, err := os.ReadFile(r.path(dossierID))
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return nil, fmt.Errorf("read final registry: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// A corrupt registry is treated as empty rather than blocking
		// all finals for the dossier; the next write repairs the file.
		return empty, nil
	}
	if doc.Segments == nil {
		doc.Segments = map[string]dossier.FinalEntry{}
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	return &doc, nil
}

// write persists the document atomically: marshal to a temp file in the
// target directory, fsync, rename over the destination.
func (r *FileRegistry) write(dossierID string, doc *document) error {
	path := r.path(dossierID)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal final registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "final_registry_*.json")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp registry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace final registry: %w", err)
	}
	return nil
}
