// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package proposal

import (
	"math"

	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/rng"
	"github.com/js-arias/msc/internal/state"
)

// touched records one gene node whose age was rescaled by a tau move,
// so the move can restore it exactly on rejection.
type touched struct {
	locus int
	node  *model.GeneNode
	old   float64
}

// Tau proposes a new age for a random internal species population
// (spec section 4.5, tau move): a reflect-boundary perturbation of the
// population's own floor, bounded below by its two children's tau and
// above by its parent's tau (or +Inf at the root).
//
// Every gene-tree node that belongs to this population is affinely
// rescaled between the old and new floor, holding the population's
// ceiling (its parent's tau, unaffected by this move) fixed -- the
// standard MSC tau-update treatment, preserving each event's relative
// position within the population and keeping every node inside its
// interval. The resulting Jacobian is one log(scale) factor per
// rescaled node.
//
// The population's own prior contribution and both of its children's
// (whose ceiling is this population's floor) are recomputed at every
// locus; every edge incident to a rescaled node has its pmatrix
// rebuilt and its CLV path invalidated up to the root.
func Tau(st *state.State) bool {
	internal := make([]*model.Population, 0, len(st.Species.Populations))
	for _, p := range st.Species.Populations {
		if !p.IsTip() {
			internal = append(internal, p)
		}
	}
	if len(internal) == 0 {
		return false
	}
	pop := internal[st.RNG.IntN(len(internal))]

	lo := math.Max(pop.Left.Tau, pop.Right.Tau)
	hi := pop.TauTop()

	oldTau := pop.Tau
	eps := st.RNG.Uniform(-st.Finetune.Tau/2, st.Finetune.Tau/2)
	newTau := rng.Reflect(oldTau+eps, lo, hi)
	if newTau == oldTau {
		return false
	}

	scale := (hi - newTau) / (hi - oldTau)

	pop.SaveOld()
	pop.Tau = newTau

	n := st.NumLoci()
	oldContribs := make(map[int][3]float64, n) // [pop, left, right] per locus
	var touchedNodes []touched

	for l := 0; l < n; l++ {
		gt := st.Genes[l]
		lx := st.Loci[l]

		oldContribs[l] = [3]float64{
			pop.Loci[l].LogprContrib,
			pop.Left.Loci[l].LogprContrib,
			pop.Right.Loci[l].LogprContrib,
		}

		for _, node := range gt.Nodes {
			if node.IsTip() || node.Pop != pop {
				continue
			}
			old := node.Time
			t := newTau + (old-oldTau)*scale
			touchedNodes = append(touchedNodes, touched{locus: l, node: node, old: old})
			node.OldTime = old
			node.Time = t
			node.EventItem = pop.Loci[l].Events.Move(node.EventItem, t)
			touchNode(lx, node)
		}
	}

	var deltaLogl, deltaLogpr float64
	for l := 0; l < n; l++ {
		gt := st.Genes[l]
		lx := st.Loci[l]

		newLogl := locus.Recompute(gt, lx)
		deltaLogl += newLogl - gt.Logl
		gt.SaveOld()
		gt.Logl = newLogl

		msc.UpdateContrib(pop, l)
		msc.UpdateContrib(pop.Left, l)
		msc.UpdateContrib(pop.Right, l)
		old := oldContribs[l]
		newSum := pop.Loci[l].LogprContrib + pop.Left.Loci[l].LogprContrib + pop.Right.Loci[l].LogprContrib
		oldSum := old[0] + old[1] + old[2]
		deltaLogpr += newSum - oldSum
		gt.Logpr = gt.OldLogpr + (newSum - oldSum)
	}

	priorDiff := (st.Priors.TauAlpha-1)*(math.Log(newTau)-math.Log(oldTau)) -
		st.Priors.TauBeta*(newTau-oldTau)
	jacobian := float64(len(touchedNodes)) * math.Log(scale)

	logAlpha := deltaLogl + deltaLogpr + priorDiff + jacobian

	if accept(st.RNG, logAlpha) {
		return true
	}

	// Revert every touched node, then recompute from the reverted
	// state so CLVs and contributions end up bitwise identical to
	// their pre-proposal values.
	for _, tn := range touchedNodes {
		lx := st.Loci[tn.locus]
		tn.node.Time = tn.old
		tn.node.EventItem = pop.Loci[tn.locus].Events.Move(tn.node.EventItem, tn.old)
		touchNode(lx, tn.node)
	}
	pop.Restore()
	for l := 0; l < n; l++ {
		gt := st.Genes[l]
		lx := st.Loci[l]
		locus.Recompute(gt, lx)
		msc.UpdateContrib(pop, l)
		msc.UpdateContrib(pop.Left, l)
		msc.UpdateContrib(pop.Right, l)
		gt.Restore()
	}
	return false
}
