// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package resolver

import "sync/atomic"

// Token identifies one externally triggered selection. Tokens issued by
// the same Guard are monotonically increasing, so any two overlapping
// selections are distinguishable and ordered.
type Token uint64

// Guard is the "last request wins" race guard.
//
// Every selection takes a fresh token via Next before starting any
// fetch. When a fetch completes, the selection asks Current whether its
// token is still the latest outstanding one; if not, the result must be
// discarded without touching any visible state. Out-of-order completions
// can therefore never revert the display to a stale selection.
//
// There is no true cancellation of in-flight fetches here; cancellation
// is emulated by discarding superseded results. The guard itself is a
// pure counter and is independently testable.
//
// Thread Safety: Guard is safe for concurrent use.
type Guard struct {
	latest atomic.Uint64
}

// Next issues a fresh token and records it as the latest outstanding.
func (g *Guard) Next() Token {
	return Token(g.latest.Add(1))
}

// Current reports whether the token is still the latest outstanding one.
func (g *Guard) Current(t Token) bool {
	return uint64(t) == g.latest.Load()
}
