// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package state ties together the species tree, the per-locus gene
// trees and their likelihood engines, and the seeded RNG stream into
// the single value that proposals read and mutate. It carries no
// package-level mutable state: every function that needs it receives
// a *State explicitly (spec design note on "Global state").
package state

import (
	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/rng"
)

// Finetune holds the adaptive proposal step sizes, one per proposal
// kind (spec section 4.6).
type Finetune struct {
	GtAge, GtSpr, Theta, Tau, Mix float64
}

// Priors holds the Gamma hyperparameters for theta and tau.
type Priors struct {
	ThetaAlpha, ThetaBeta float64
	TauAlpha, TauBeta     float64
}

// State is the full mutable state an MCMC chain operates on.
type State struct {
	Species *model.Tree
	Genes   []*model.Tree  // one per locus
	Loci    []*locus.Locus // one per locus

	RNG      *rng.Stream
	Finetune Finetune
	Priors   Priors

	// Pool runs per-locus recomputation jobs concurrently (spec
	// section 5's optional worker-pool axis); nil means "run every
	// locus recomputation on the calling goroutine", which every
	// proposal must still support.
	Pool *locus.Pool
}

// NumLoci returns the number of loci in the state.
func (s *State) NumLoci() int {
	return len(s.Genes)
}
