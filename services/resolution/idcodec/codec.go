// Copyright (C) 2026 Scriptoria Project (maintainers@scriptoria.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package idcodec parses and builds versioned artifact identifiers.
//
// A versioned id names one concrete version of one artifact produced for a
// transcription. Four textual shapes exist:
//
//	raw         {tid}_v{n}_v{1|2}                  tx42_v3_v2
//	align       {tid}_draft_{n}_v{1|2}             tx42_draft_3_v1
//	cons_llm    {tid}_consensus_llm[_v{1|2}]       tx42_consensus_llm_v2
//	cons_align  {tid}_consensus_alignment[_v{1|2}] tx42_consensus_alignment_v1
//
// Keys are a tagged union constructed only through this package, so an
// invalid combination (a consensus key with a raw index, say) cannot be
// represented by accident. Build and Parse round-trip: for every
// well-formed key k, Parse(Build(tid, k)) yields k again.
//
// Anything that does not match one of the four shapes is not an error.
// Callers must treat a non-parsing id as an opaque literal and pass it
// through to storage unchanged.
package idcodec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the four artifact id shapes.
type Kind int

const (
	// KindRaw names an unprocessed candidate transcription revision.
	KindRaw Kind = iota + 1

	// KindAlign names a per-draft alignment output revision.
	KindAlign

	// KindConsensusLLM names the run-level LLM consensus artifact.
	KindConsensusLLM

	// KindConsensusAlignment names the run-level alignment consensus
	// artifact.
	KindConsensusAlignment
)

// String returns the short name used in logs and resolution contexts.
func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindAlign:
		return "align"
	case KindConsensusLLM:
		return "cons_llm"
	case KindConsensusAlignment:
		return "cons_align"
	default:
		return "unknown"
	}
}

// Head is the revision (v1 or v2) an id points at. The zero value means
// no head is encoded, which is only legal for the two consensus kinds.
type Head string

const (
	// HeadNone marks a bare consensus id with no recorded head.
	HeadNone Head = ""

	// HeadV1 points at the first revision.
	HeadV1 Head = "v1"

	// HeadV2 points at the second revision.
	HeadV2 Head = "v2"
)

// Key is the decoded form of a versioned id, minus the transcription id.
//
// RawIndex is the 1-based display position of the draft within its run.
// It is meaningful only for KindRaw and KindAlign; consensus keys carry
// zero. Head may be HeadNone only for the consensus kinds.
type Key struct {
	Kind     Kind
	RawIndex int
	Head     Head
}

// Id shapes, anchored. Transcription ids may themselves contain
// underscores, so the tid capture is greedy and the suffix match is what
// discriminates.
var (
	rawPattern       = regexp.MustCompile(`^(.+)_v([0-9]+)_v([12])$`)
	alignPattern     = regexp.MustCompile(`^(.+)_draft_([0-9]+)_v([12])$`)
	consLLMPattern   = regexp.MustCompile(`^(.+)_consensus_llm(?:_v([12]))?$`)
	consAlignPattern = regexp.MustCompile(`^(.+)_consensus_alignment(?:_v([12]))?$`)
)

// Parse decodes a versioned id into its transcription id and Key.
//
// Returns ok=false for any string that is not one of the four canonical
// shapes. Parse never panics and never returns an error: a non-matching
// id is simply not a versioned id, and callers use it literally.
func Parse(id string) (tid string, key Key, ok bool) {
	// Consensus shapes first: their tails are fully literal, so they can
	// never be shadowed by the numeric shapes, but checking them first
	// keeps ids like "x_consensus_llm_v1" away from the raw matcher.
	if m := consAlignPattern.FindStringSubmatch(id); m != nil {
		return m[1], Key{Kind: KindConsensusAlignment, Head: Head(headOrNone(m[2]))}, true
	}
	if m := consLLMPattern.FindStringSubmatch(id); m != nil {
		return m[1], Key{Kind: KindConsensusLLM, Head: Head(headOrNone(m[2]))}, true
	}
	if m := alignPattern.FindStringSubmatch(id); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", Key{}, false
		}
		return m[1], Key{Kind: KindAlign, RawIndex: n, Head: Head("v" + m[3])}, true
	}
	if m := rawPattern.FindStringSubmatch(id); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return "", Key{}, false
		}
		return m[1], Key{Kind: KindRaw, RawIndex: n, Head: Head("v" + m[3])}, true
	}
	return "", Key{}, false
}

// Build encodes a Key against a transcription id.
//
// Build is pure and total over well-formed keys. A consensus key with
// HeadNone produces the bare base id, meaning "no explicit head recorded
// yet". Build(tid, k) for two equal inputs always yields the same string,
// and two outputs are equal only when the inputs are.
func Build(tid string, key Key) string {
	switch key.Kind {
	case KindRaw:
		return fmt.Sprintf("%s_v%d_%s", tid, key.RawIndex, key.Head)
	case KindAlign:
		return fmt.Sprintf("%s_draft_%d_%s", tid, key.RawIndex, key.Head)
	case KindConsensusLLM:
		if key.Head == HeadNone {
			return tid + "_consensus_llm"
		}
		return tid + "_consensus_llm_" + string(key.Head)
	case KindConsensusAlignment:
		if key.Head == HeadNone {
			return tid + "_consensus_alignment"
		}
		return tid + "_consensus_alignment_" + string(key.Head)
	default:
		return tid
	}
}

// StripVersionSuffix removes a single trailing revision suffix ("_v1" or
// "_v2") from a transcription id. Run transcription ids sometimes carry
// the suffix of the revision they were initialized from; index base ids
// are always computed against the bare id.
func StripVersionSuffix(tid string) string {
	if strings.HasSuffix(tid, "_v1") || strings.HasSuffix(tid, "_v2") {
		return tid[:len(tid)-3]
	}
	return tid
}

func headOrNone(digit string) string {
	if digit == "" {
		return ""
	}
	return "v" + digit
}
