// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package proposal implements the Metropolis-Hastings move suite:
// gene-tree age change, gene-tree SPR, species theta update, species
// tau update, and the joint mixing move. Every proposal follows the
// same shape: stash enough state to revert, mutate, recompute only
// what changed, accept or restore.
package proposal

import (
	"math"

	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/rng"
)

// accept draws the Metropolis-Hastings decision for a log acceptance
// ratio that may already exceed zero (certain accept).
func accept(s *rng.Stream, logAlpha float64) bool {
	if logAlpha >= 0 {
		return true
	}
	return math.Log(s.Float64()) < logAlpha
}

// Finetune adapts a step size toward a 30% target acceptance rate
// (spec section 4.6): new_delta = delta * accept_rate / 0.3, clipped
// to stay positive and bounded away from absurd extremes.
func Finetune(delta float64, accepted, total int) float64 {
	if total == 0 {
		return delta
	}
	rate := float64(accepted) / float64(total)
	d := delta * rate / 0.3
	if d < 1e-6 {
		d = 1e-6
	}
	if d > 1e6 {
		d = 1e6
	}
	return d
}

// touchNode rebuilds the pmatrices of the edges incident to n (its two
// child edges and its own edge to its parent, i.e. the "three incident
// edges" of spec section 4.5's age move) and invalidates n's CLV and
// every ancestor's, so the next Recompute call only redoes the
// affected path.
func touchNode(lx *locus.Locus, n *model.GeneNode) {
	if n.Left != nil {
		locus.RebuildEdge(lx, n.Left)
	}
	if n.Right != nil {
		locus.RebuildEdge(lx, n.Right)
	}
	if n.Parent != nil {
		locus.RebuildEdge(lx, n)
	}
	n.InvalidateUp()
}
