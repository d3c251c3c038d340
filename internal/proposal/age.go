// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package proposal

import (
	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/rng"
	"github.com/js-arias/msc/internal/state"
)

// Age proposes a new coalescent age for a random internal node of a
// random locus's gene tree (spec section 4.5, gene-tree age move): a
// symmetric, reflect-boundary perturbation that keeps the node inside
// its own population's interval and above both its children.
//
// It reports whether the move was accepted.
func Age(st *state.State) bool {
	l := st.RNG.IntN(st.NumLoci())
	gt := st.Genes[l]
	lx := st.Loci[l]

	internal := gt.PostOrder()
	if len(internal) == 0 {
		return false
	}
	u := internal[st.RNG.IntN(len(internal))]

	lo := u.Pop.Tau
	if u.Left.Time > lo {
		lo = u.Left.Time
	}
	if u.Right.Time > lo {
		lo = u.Right.Time
	}
	hi := u.Pop.TauTop()
	if u.Parent != nil && u.Parent.Time < hi {
		hi = u.Parent.Time
	}

	oldTime := u.Time
	eps := st.RNG.Uniform(-st.Finetune.GtAge/2, st.Finetune.GtAge/2)
	newTime := rng.Reflect(oldTime+eps, lo, hi)

	gt.SaveOld()
	pop := u.Pop
	oldContrib := pop.Loci[l].LogprContrib

	u.OldTime = oldTime
	u.Time = newTime
	u.EventItem = pop.Loci[l].Events.Move(u.EventItem, newTime)
	touchNode(lx, u)

	newLogl := locus.Recompute(gt, lx)
	msc.UpdateContrib(pop, l)
	newContrib := pop.Loci[l].LogprContrib
	newLogpr := gt.OldLogpr - oldContrib + newContrib

	logAlpha := (newLogl - gt.OldLogl) + (newLogpr - gt.OldLogpr)

	if accept(st.RNG, logAlpha) {
		gt.Logl = newLogl
		gt.Logpr = newLogpr
		return true
	}

	u.Time = oldTime
	u.EventItem = pop.Loci[l].Events.Move(u.EventItem, oldTime)
	touchNode(lx, u)
	locus.Recompute(gt, lx)
	pop.Loci[l].LogprContrib = oldContrib
	gt.Restore()
	return false
}
