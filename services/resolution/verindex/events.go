// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package verindex

// EventName identifies an external change that invalidates cached
// indexes. The set is closed: exactly these four events exist.
type EventName string

const (
	// EventDossierListRefreshed fires when the whole dossier list was
	// reloaded. It usually carries no dossier id and drops everything.
	EventDossierListRefreshed EventName = "dossier-list-refreshed"

	// EventDossierRefreshed fires when a single dossier was reloaded.
	EventDossierRefreshed EventName = "dossier-refreshed"

	// EventDraftSaved fires when a draft revision was written.
	EventDraftSaved EventName = "draft-saved"

	// EventDraftReverted fires when a draft was reverted to an earlier
	// revision.
	EventDraftReverted EventName = "draft-reverted"
)

// Event is one invalidation signal. DossierID may be empty, in which
// case every cached index is dropped.
//
// The host application wires its own event source (SSE stream, file
// watcher, HTTP endpoint) to Cache.HandleEvent; the cache itself never
// subscribes to any ambient broadcast medium.
type Event struct {
	Name      EventName `json:"event"`
	DossierID string    `json:"dossier_id,omitempty"`
}

// KnownEvent reports whether the name is one of the four invalidation
// events.
func KnownEvent(name EventName) bool {
	switch name {
	case EventDossierListRefreshed, EventDossierRefreshed, EventDraftSaved, EventDraftReverted:
		return true
	default:
		return false
	}
}
