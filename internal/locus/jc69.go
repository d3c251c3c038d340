// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package locus implements the per-locus phylogenetic likelihood
// engine: JC69 transition probabilities, conditional likelihood
// vectors with a flat, index-addressed pool, scaling, and the
// tip-tip pruning optimization.
package locus

import "math"

// PMatrix builds the 4x4 JC69 transition probability matrix for a
// branch of length bl, flattened row-major (from*4 + to), per spec
// section 4.4:
//
//	P_ii = 1/4 + 3/4 * exp(-4*bl/3)
//	P_ij = 1/4 - 1/4 * exp(-4*bl/3)
func PMatrix(bl float64) [16]float64 {
	var p [16]float64
	e := math.Exp(-4.0 * bl / 3.0)
	pii := 0.25 + 0.75*e
	pij := 0.25 - 0.25*e
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i == j {
				p[i*4+j] = pii
			} else {
				p[i*4+j] = pij
			}
		}
	}
	return p
}

// nucMap gives each IUPAC nucleotide code its 4-bit state set over
// {A, C, G, T} in bits 0..3, matching pll_map_nt's role in spec
// section 4.4.
var nucMap = map[byte]uint8{
	'A': 1, 'a': 1,
	'C': 2, 'c': 2,
	'G': 4, 'g': 4,
	'T': 8, 't': 8,
	'U': 8, 'u': 8,
	'R': 1 | 4, 'r': 1 | 4,
	'Y': 2 | 8, 'y': 2 | 8,
	'S': 2 | 4, 's': 2 | 4,
	'W': 1 | 8, 'w': 1 | 8,
	'K': 4 | 8, 'k': 4 | 8,
	'M': 1 | 2, 'm': 1 | 2,
	'B': 2 | 4 | 8, 'b': 2 | 4 | 8,
	'D': 1 | 4 | 8, 'd': 1 | 4 | 8,
	'H': 1 | 2 | 8, 'h': 1 | 2 | 8,
	'V': 1 | 2 | 4, 'v': 1 | 2 | 4,
	'N': 1 | 2 | 4 | 8,
	'n': 1 | 2 | 4 | 8,
	'-': 1 | 2 | 4 | 8,
	'?': 1 | 2 | 4 | 8,
}

// Code returns the 4-bit state mask for a nucleotide character, and
// whether the character is recognized at all.
func Code(ch byte) (uint8, bool) {
	v, ok := nucMap[ch]
	return v, ok
}

// ValidJC69 reports whether ch may participate when the compression
// step requests strictly JC69-valid data (cleandata option): only
// unambiguous A/C/G/T/U, matching pll_map_validjc69.
func ValidJC69(ch byte) bool {
	switch ch {
	case 'A', 'a', 'C', 'c', 'G', 'g', 'T', 't', 'U', 'u':
		return true
	}
	return false
}

// StateVector expands a 4-bit mask into the tip partial-likelihood
// vector over the 4 states: 1 where the state is compatible with the
// observed (possibly ambiguous) character, 0 otherwise.
func StateVector(mask uint8) [4]float64 {
	var v [4]float64
	for i := 0; i < 4; i++ {
		if mask&(1<<uint(i)) != 0 {
			v[i] = 1
		}
	}
	return v
}
