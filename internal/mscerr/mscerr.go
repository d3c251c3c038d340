// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mscerr defines the sentinel error categories used throughout
// the module (spec section 7), so callers can classify a failure with
// errors.Is regardless of which package produced it.
package mscerr

import "errors"

// Category sentinels. Wrap one of these with fmt.Errorf's %w verb to
// report a specific failure while keeping it classifiable.
var (
	// ErrInputParse marks a malformed input file: bad Newick syntax,
	// truncated FASTA/PHYLIP records, an unparsable config line.
	ErrInputParse = errors.New("mscerr: input parse error")

	// ErrInputSemantic marks a structurally valid input that violates
	// a semantic requirement: duplicate labels, a sample with no
	// species mapping, a non-binary or unrooted species tree.
	ErrInputSemantic = errors.New("mscerr: input semantic error")

	// ErrAlignment marks an alignment-specific problem: sequences of
	// unequal length at a locus, no individuals in common with the
	// population map.
	ErrAlignment = errors.New("mscerr: alignment error")

	// ErrNumeric marks a fatal numerical inconsistency discovered
	// during the chain (an invariant violation, a NaN/Inf
	// log-likelihood). The chain cannot continue once this occurs.
	ErrNumeric = errors.New("mscerr: numeric error")

	// ErrResource marks an operational failure unrelated to the input
	// data: a file that could not be opened, a write that failed.
	ErrResource = errors.New("mscerr: resource error")
)
