// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/scriptoria/scriptorium/services/resolution/dossier"
	"github.com/scriptoria/scriptorium/services/resolution/verindex"
)

// eventCollector records emitted invalidation events.
type eventCollector struct {
	mu     sync.Mutex
	events []verindex.Event
}

func (c *eventCollector) handle(ev verindex.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

// waitFor polls until pred sees the collected events or times out.
func (c *eventCollector) waitFor(t *testing.T, pred func([]verindex.Event) bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		ok := pred(append([]verindex.Event(nil), c.events...))
		c.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t.Fatalf("timed out waiting for events; got %+v", c.events)
}

func hasEvent(events []verindex.Event, name verindex.EventName, dossierID string) bool {
	for _, ev := range events {
		if ev.Name == name && ev.DossierID == dossierID {
			return true
		}
	}
	return false
}

func TestWatcherMapsChangesToEvents(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	writeDossier(t, root, &dossier.Dossier{ID: "dos-1"})
	writeText(t, root, "dos-1", "tx42_v1_v1", "seed")

	collector := &eventCollector{}
	w, err := NewWatcher(s, collector.handle)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	t.Run("text write emits draft-saved", func(t *testing.T) {
		writeText(t, root, "dos-1", "tx42_v1_v2", "revised")
		collector.waitFor(t, func(events []verindex.Event) bool {
			return hasEvent(events, verindex.EventDraftSaved, "dos-1")
		})
	})

	t.Run("text removal emits draft-reverted", func(t *testing.T) {
		path := filepath.Join(root, "dossiers", "dos-1", "texts", "tx42_v1_v2.txt")
		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}
		collector.waitFor(t, func(events []verindex.Event) bool {
			return hasEvent(events, verindex.EventDraftReverted, "dos-1")
		})
	})

	t.Run("dossier document write emits dossier-refreshed", func(t *testing.T) {
		writeDossier(t, root, &dossier.Dossier{ID: "dos-1", Title: "retitled"})
		collector.waitFor(t, func(events []verindex.Event) bool {
			return hasEvent(events, verindex.EventDossierRefreshed, "dos-1")
		})
	})

	t.Run("new dossier directory emits list-refreshed", func(t *testing.T) {
		writeDossier(t, root, &dossier.Dossier{ID: "dos-2"})
		collector.waitFor(t, func(events []verindex.Event) bool {
			return hasEvent(events, verindex.EventDossierListRefreshed, "")
		})
	})
}
