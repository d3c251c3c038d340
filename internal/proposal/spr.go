// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package proposal

import (
	"math"

	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/state"
)

// SPR proposes a subtree prune-and-regraft move on a random locus's
// gene tree (spec section 4.5, gene-tree SPR move): detach the subtree
// rooted at a random non-root internal node, together with its parent
// node, leaving the sibling in the parent's place; pick a new age and a new attachment
// edge among the populations that, per the ancestor table, can legally
// hold a node at that age, and reattach there.
//
// The move only considers regraft populations that are ancestors (in
// the pptable sense) of the pruned subtree's own population, so the
// result never needs a full invariant-1 validity search: any edge in
// that ancestor chain whose own node-time bracket contains the new age
// is a legal target.
func SPR(st *state.State) bool {
	l := st.RNG.IntN(st.NumLoci())
	gt := st.Genes[l]
	lx := st.Loci[l]

	internal := gt.PostOrder()
	if len(internal) == 0 || gt.Root == nil || gt.Root.IsTip() {
		return false
	}
	u := internal[st.RNG.IntN(len(internal))]
	if u.Parent == nil {
		// Root has no parent edge to regraft onto; pick another node
		// if one is available, otherwise skip this round.
		if len(internal) == 1 {
			return false
		}
		u = internal[(st.RNG.IntN(len(internal)-1)+1)%len(internal)]
		if u.Parent == nil {
			return false
		}
	}

	sib := u.Sibling()
	parent := u.Parent
	grand := parent.Parent

	candidates := gt.Nodes
	var target *model.GeneNode
	attempts := 0
	for attempts < len(candidates)*2 {
		attempts++
		c := candidates[st.RNG.IntN(len(candidates))]
		if c == u || c == parent || c == sib {
			continue
		}
		if isDescendant(c, parent) {
			continue
		}
		if !st.Species.PP.Get(c.Pop.Index, u.Pop.Index) && !st.Species.PP.Get(u.Pop.Index, c.Pop.Index) {
			continue
		}
		target = c
		break
	}
	if target == nil {
		return false
	}

	lo := u.Time
	childFloor := target.Time
	var hi float64
	if target.Parent != nil {
		hi = target.Parent.Time
	} else {
		hi = st.Species.Root.TauTop()
	}
	if childFloor > lo {
		lo = childFloor
	}
	if lo >= hi {
		return false
	}
	newAge := st.RNG.Uniform(lo, hi)

	newPop := deepestPopAt(st.Species, u.Pop, target, newAge)
	if newPop == nil {
		return false
	}

	// Hastings correction: the move's discrete target choice and
	// continuous age draw are each uniform, over sets/intervals that
	// generally differ in size between the forward move and the
	// reverse move that would regraft u back between sib and grand.
	forwardCount := countRegraftTargets(st, gt, u, parent, sib)
	forwardWidth := hi - lo
	loR := u.Time
	if sib.Time > loR {
		loR = sib.Time
	}
	var hiR float64
	if grand != nil {
		hiR = grand.Time
	} else {
		hiR = st.Species.Root.TauTop()
	}
	reverseWidth := hiR - loR

	gt.SaveOld()

	oldPop := parent.Pop
	oldTime := parent.Time
	oldTargetParent := target.Parent
	oldParentParent := grand
	oldParentWasLeftOfGrand := grand != nil && grand.Left == parent

	// Detach parent: splice sib into grand's slot.
	if grand != nil {
		if oldParentWasLeftOfGrand {
			grand.Left = sib
		} else {
			grand.Right = sib
		}
		sib.Parent = grand
	} else {
		gt.Root = sib
		sib.Parent = nil
	}
	oldPop.Loci[l].Events.Remove(parent.EventItem)

	// Reattach parent between target and target's old parent.
	parent.Left, parent.Right = u, target
	u.Parent = parent
	target.Parent = parent
	parent.Pop = newPop
	parent.Time = newAge
	parent.Parent = oldTargetParent
	if oldTargetParent != nil {
		if oldTargetParent.Left == target {
			oldTargetParent.Left = parent
		} else {
			oldTargetParent.Right = parent
		}
	} else {
		gt.Root = parent
	}
	parent.EventItem = newPop.Loci[l].Events.Insert(newAge, parent)

	touchNode(lx, parent)
	touchNode(lx, sib)
	if grand != nil {
		grand.InvalidateUp()
	}

	reverseCount := countRegraftTargets(st, gt, u, parent, target)

	newLogl := locus.Recompute(gt, lx)
	newLogpr := msc.FullRecompute(st.Species, l)

	hastings := math.Log(float64(reverseCount)) - math.Log(float64(forwardCount)) + math.Log(forwardWidth) - math.Log(reverseWidth)
	logAlpha := (newLogl - gt.OldLogl) + (newLogpr - gt.OldLogpr) + hastings

	if accept(st.RNG, logAlpha) {
		gt.Logl = newLogl
		gt.Logpr = newLogpr
		return true
	}

	// Revert: undo the splice and reinsertion exactly.
	newPop.Loci[l].Events.Remove(parent.EventItem)
	if oldTargetParent != nil {
		if oldTargetParent.Left == parent {
			oldTargetParent.Left = target
		} else {
			oldTargetParent.Right = target
		}
	}
	target.Parent = oldTargetParent

	parent.Pop = oldPop
	parent.Time = oldTime
	parent.Parent = oldParentParent
	parent.Left, parent.Right = u, sib
	sib.Parent = parent
	if oldParentParent != nil {
		if oldParentWasLeftOfGrand {
			oldParentParent.Left = parent
		} else {
			oldParentParent.Right = parent
		}
	} else {
		gt.Root = parent
	}
	parent.EventItem = oldPop.Loci[l].Events.Insert(oldTime, parent)

	touchNode(lx, parent)
	touchNode(lx, sib)
	if oldParentParent != nil {
		oldParentParent.InvalidateUp()
	}
	locus.Recompute(gt, lx)
	msc.FullRecompute(st.Species, l)
	gt.Restore()
	return false
}

// countRegraftTargets counts the nodes, among gt's current nodes, that
// the target search in SPR would accept for pruned node u whose
// reattached parent excludes exclude (sib on the forward search, the
// new sibling target on the reverse search) -- the same predicate the
// rejection-sampling loop above uses, evaluated against gt's current
// Parent/Pop state. Used to compute the Hastings correction for the
// differing size of the forward and reverse candidate sets.
func countRegraftTargets(st *state.State, gt *model.Tree, u, parent, exclude *model.GeneNode) int {
	count := 0
	for _, c := range gt.Nodes {
		if c == u || c == parent || c == exclude {
			continue
		}
		if isDescendant(c, parent) {
			continue
		}
		if !st.Species.PP.Get(c.Pop.Index, u.Pop.Index) && !st.Species.PP.Get(u.Pop.Index, c.Pop.Index) {
			continue
		}
		count++
	}
	return count
}

// isDescendant reports whether c lies within n's subtree (n included).
func isDescendant(n, c *model.GeneNode) bool {
	for x := c; x != nil; x = x.Parent {
		if x == n {
			return true
		}
	}
	return false
}

// deepestPopAt returns the deepest (most tipward) population on the
// path between u's own population and the species root whose interval
// contains age, and which the ancestor table confirms is reachable
// from both u's population and target's population -- the legal
// regraft population for a new coalescence at that age (spec section
// 4.5's pptable-constrained SPR).
func deepestPopAt(species *model.Tree, uPop *model.Population, target *model.GeneNode, age float64) *model.Population {
	cands := species.PP.Ancestors(uPop.Index)
	var best *model.Population
	for _, idx := range cands {
		p := species.Populations[idx]
		if age < p.Tau || age >= p.TauTop() {
			continue
		}
		if !species.PP.Get(target.Pop.Index, p.Index) {
			continue
		}
		if best == nil || p.Tau > best.Tau {
			best = p
		}
	}
	return best
}
