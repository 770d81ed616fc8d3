// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for security-critical
// identifiers.
//
// Dossier, segment, run and transcription ids arrive from HTTP requests
// and end up in filesystem paths. These validators constrain them to a
// conservative charset so a crafted id can never traverse outside the
// data root.
package validation

import (
	"fmt"
	"regexp"
)

// entityIDPattern matches ids the engine accepts in file paths.
// Allows: letters, digits, underscore, hyphen, dot (not leading).
// Max length: 128 characters.
var entityIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-][A-Za-z0-9_\-.]{0,127}$`)

// ValidateEntityID validates a dossier/segment/run/transcription id for
// use in a filesystem path.
//
// Returns an error for empty ids, ids longer than 128 characters, ids
// with a leading dot, and any character outside [A-Za-z0-9_-.]. Path
// separators are rejected outright, so "../x" and "a/b" never reach the
// filesystem layer.
//
// Example:
//
//	if err := validation.ValidateEntityID(dossierID); err != nil {
//	    return fmt.Errorf("dossier id: %w", err)
//	}
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !entityIDPattern.MatchString(id) {
		return fmt.Errorf("invalid id: %q (allowed: letters, digits, '_', '-', non-leading '.', max 128 chars)", id)
	}
	return nil
}

// ValidateEntityIDs validates several ids, skipping empty ones. Useful
// for partial selection paths where only some levels are populated.
func ValidateEntityIDs(ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if err := ValidateEntityID(id); err != nil {
			return err
		}
	}
	return nil
}
