// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolution

import "errors"

// Sentinel errors for the resolution service.
var (
	// ErrDossierNotFound indicates the requested dossier does not exist.
	ErrDossierNotFound = errors.New("dossier not found")

	// ErrFinalNotFound indicates no final selection is recorded for the segment.
	ErrFinalNotFound = errors.New("no final selection recorded")

	// ErrUnknownEvent indicates an invalidation event name outside the
	// recognized set.
	ErrUnknownEvent = errors.New("unknown invalidation event")
)
