// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/scriptoria/scriptorium/services/resolution/verindex"
)

// EventHandler receives invalidation events derived from filesystem
// changes. Typically this is verindex.Cache.HandleEvent.
type EventHandler func(verindex.Event)

// Watcher bridges filesystem changes under the data root to the four
// named invalidation events:
//
//	dossier.json written           -> dossier-refreshed
//	texts/{id}.txt written/created -> draft-saved
//	texts/{id}.txt removed/renamed -> draft-reverted
//	dossier dir created or removed -> dossier-list-refreshed
//
// The watcher is the host-side wiring the cache itself deliberately
// does not do: the cache exposes HandleEvent and stays free of any
// ambient event source.
//
// Thread Safety: safe for concurrent use; the handler is called from a
// single goroutine.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	handler  EventHandler
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher over the store's data root.
func NewWatcher(s *Store, handler EventHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:    s.Root(),
		watcher: fsw,
		handler: handler,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. The dossiers directory and every dossier
// subdirectory are watched; directories created later are added as they
// appear. Watching stops when ctx is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	// The dossiers directory must exist to be watchable; an empty store
	// starts with nothing else.
	if err := os.MkdirAll(filepath.Join(w.root, "dossiers"), 0o750); err != nil {
		return err
	}
	if err := w.addRecursive(filepath.Join(w.root, "dossiers")); err != nil {
		return err
	}
	go w.loop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("store watcher error", "error", err)
		}
	}
}

// handleFSEvent classifies one fsnotify event and emits the matching
// invalidation event, if any.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(filepath.Join(w.root, "dossiers"), ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")

	switch {
	case len(parts) == 1:
		// A dossier directory appeared or vanished: the list changed.
		if ev.Op.Has(fsnotify.Create) {
			// New directories must be watched for their own files.
			_ = w.addRecursive(ev.Name)
		}
		if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
			w.emit(verindex.Event{Name: verindex.EventDossierListRefreshed})
		}

	case parts[1] == "dossier.json":
		if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
			w.emit(verindex.Event{Name: verindex.EventDossierRefreshed, DossierID: parts[0]})
		}

	case parts[1] == "texts":
		if len(parts) == 2 {
			// The texts directory itself was created; watch it.
			if ev.Op.Has(fsnotify.Create) {
				_ = w.watcher.Add(ev.Name)
			}
			return
		}
		switch {
		case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create):
			w.emit(verindex.Event{Name: verindex.EventDraftSaved, DossierID: parts[0]})
		case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
			w.emit(verindex.Event{Name: verindex.EventDraftReverted, DossierID: parts[0]})
		}
	}
}

func (w *Watcher) emit(ev verindex.Event) {
	slog.Debug("store change -> invalidation",
		"event", string(ev.Name), "dossier_id", ev.DossierID)
	w.handler(ev)
}

// addRecursive watches dir and every subdirectory. Missing directories
// are fine: an empty store grows them later and the parent watch sees
// the creation.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.watcher.Add(path)
	})
}
