// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the filesystem-backed collaborator set: it serves
// dossier tree snapshots and artifact text from a local data root, and
// bridges filesystem changes to version-index invalidation events.
//
// Layout under the data root:
//
//	dossiers/{dossierID}/dossier.json   full tree document
//	dossiers/{dossierID}/texts/{id}.txt artifact text, keyed by versioned
//	                                    or literal id
//	state/{dossierID}/...               final registry (package registry)
//
// The store is strictly read-side for the engine: tree mutation belongs
// to whatever writes these files.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/scriptoria/scriptorium/pkg/validation"
	"github.com/scriptoria/scriptorium/services/resolution/dossier"
)

// Sentinel errors for store lookups.
var (
	// ErrDossierNotFound is returned for an unknown dossier id.
	ErrDossierNotFound = errors.New("dossier not found")

	// ErrTextNotFound is returned when no artifact text exists for an id.
	ErrTextNotFound = errors.New("artifact text not found")
)

// Store implements dossier.TreeProvider and dossier.TextFetcher against
// a local data root.
type Store struct {
	root string
}

// New creates a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

var (
	_ dossier.TreeProvider = (*Store)(nil)
	_ dossier.TextFetcher  = (*Store)(nil)
)

// Root returns the data root directory.
func (s *Store) Root() string { return s.root }

// GetDossier reads the full tree document for a dossier.
func (s *Store) GetDossier(_ context.Context, dossierID string) (*dossier.Dossier, error) {
	if err := validation.ValidateEntityID(dossierID); err != nil {
		return nil, fmt.Errorf("dossier id: %w", err)
	}

	path := filepath.Join(s.root, "dossiers", dossierID, "dossier.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dossier %s: %w", dossierID, ErrDossierNotFound)
		}
		return nil, fmt.Errorf("read dossier %s: %w", dossierID, err)
	}

	var d dossier.Dossier
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dossier %s: %w", dossierID, err)
	}
	if d.ID == "" {
		d.ID = dossierID
	}
	return &d, nil
}

// ListDossierIDs returns the ids of all stored dossiers, for the list
// endpoints. A missing dossiers directory is an empty store, not an
// error.
func (s *Store) ListDossierIDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "dossiers"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list dossiers: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// GetText reads one artifact text. The id may be a canonical versioned
// id or an opaque literal; it is used verbatim as the file stem.
func (s *Store) GetText(_ context.Context, _, id, dossierID string) (string, error) {
	if err := validation.ValidateEntityIDs(dossierID, id); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, "dossiers", dossierID, "texts", id+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("text %s: %w", id, ErrTextNotFound)
		}
		return "", fmt.Errorf("read text %s: %w", id, err)
	}
	return string(data), nil
}
