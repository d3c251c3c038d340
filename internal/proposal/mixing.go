// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package proposal

import (
	"math"

	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/state"
)

// Mixing proposes a single multiplicative factor c = exp(finetune *
// (U - 1/2)) and applies it jointly to every internal population's
// tau, every population's theta, and every gene tree's internal node
// ages (spec section 4.5, mixing move). Because every age and
// parameter moves by the same factor, every population's interval
// retains its relative shape and every invariant-1/invariant-2
// ordering is preserved automatically -- the only quantities that
// need recomputing are the likelihoods and priors themselves.
//
// The Jacobian of this joint rescaling is (#tau + #theta +
// sum of internal gene node counts) * log(c); the Gamma prior
// densities for every rescaled tau and theta also change and enter
// the acceptance ratio directly alongside the coalescent log-prior and
// the sequence log-likelihoods.
func Mixing(st *state.State) bool {
	c := math.Exp(st.Finetune.Mix * (st.RNG.Float64() - 0.5))
	logc := math.Log(c)

	var priorDiff float64
	var scaledCount int

	for _, p := range st.Species.Populations {
		p.SaveOld()
		if !p.IsTip() {
			oldTau := p.Tau
			newTau := oldTau * c
			priorDiff += (st.Priors.TauAlpha-1)*(math.Log(newTau)-math.Log(oldTau)) -
				st.Priors.TauBeta*(newTau-oldTau)
			p.Tau = newTau
			scaledCount++
		}
		if p.Theta != nil {
			oldTheta := *p.Theta
			newTheta := oldTheta * c
			priorDiff += (st.Priors.ThetaAlpha-1)*(math.Log(newTheta)-math.Log(oldTheta)) -
				st.Priors.ThetaBeta*(newTheta-oldTheta)
			*p.Theta = newTheta
			scaledCount++
		}
	}

	for _, gt := range st.Genes {
		gt.SaveOld()
		for _, n := range gt.Nodes {
			if n.IsTip() {
				continue
			}
			n.OldTime = n.Time
			n.Time *= c
			if n.EventItem != nil {
				n.EventItem.Time = n.Time
			}
			scaledCount++
		}
	}

	// Every locus's recomputation is independent once the rescaled ages
	// above are in place; run them on the pool when one is available,
	// with Wait acting as the barrier spec section 5 requires before
	// the deltas below read every locus's result.
	recompute := func(l int) {
		gt, lx := st.Genes[l], st.Loci[l]
		gt.Logl = locus.FullRecompute(gt, lx)
		gt.Logpr = msc.FullRecompute(st.Species, l)
	}
	if st.Pool != nil {
		for l := range st.Genes {
			l := l
			st.Pool.Submit(func() { recompute(l) })
		}
		st.Pool.Wait()
	} else {
		for l := range st.Genes {
			recompute(l)
		}
	}

	var deltaLogl, deltaLogpr float64
	for _, gt := range st.Genes {
		deltaLogl += gt.Logl - gt.OldLogl
		deltaLogpr += gt.Logpr - gt.OldLogpr
	}

	jacobian := float64(scaledCount) * logc
	logAlpha := deltaLogl + deltaLogpr + priorDiff + jacobian

	if accept(st.RNG, logAlpha) {
		return true
	}

	for _, p := range st.Species.Populations {
		p.Restore()
	}
	for l, gt := range st.Genes {
		lx := st.Loci[l]
		for _, n := range gt.Nodes {
			if n.IsTip() {
				continue
			}
			n.Time = n.OldTime
			if n.EventItem != nil {
				n.EventItem.Time = n.Time
			}
		}
		locus.FullRecompute(gt, lx)
		msc.FullRecompute(st.Species, l)
		gt.Restore()
	}
	return false
}
