// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package proposal

import (
	"math"

	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/state"
)

// Theta proposes a multiplicative update to a random population's
// coalescent parameter (spec section 4.5, theta move):
//
//	theta' = theta * exp(finetune * (U - 1/2))
//
// Sequence likelihoods are unaffected (theta does not enter branch
// lengths), so only the MSC log-prior contribution of the chosen
// population, across every locus, needs recomputing. The proposal is
// a log-scale random walk, so it carries a Hastings term log(theta'/theta).
func Theta(st *state.State) bool {
	pops := st.Species.Populations
	candidates := make([]int, 0, len(pops))
	for i, p := range pops {
		if p.Theta != nil {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	pop := pops[candidates[st.RNG.IntN(len(candidates))]]

	oldTheta := *pop.Theta
	u := st.RNG.Float64()
	newTheta := oldTheta * math.Exp(st.Finetune.Theta*(u-0.5))

	pop.SaveOld()
	*pop.Theta = newTheta

	n := st.NumLoci()
	oldContribs := make([]float64, n)
	var deltaLogpr float64
	for l := 0; l < n; l++ {
		oldContribs[l] = pop.Loci[l].LogprContrib
		msc.UpdateContrib(pop, l)
		deltaLogpr += pop.Loci[l].LogprContrib - oldContribs[l]
	}

	hastings := math.Log(newTheta / oldTheta)
	priorDiff := (st.Priors.ThetaAlpha-1)*(math.Log(newTheta)-math.Log(oldTheta)) -
		st.Priors.ThetaBeta*(newTheta-oldTheta)

	logAlpha := deltaLogpr + priorDiff + hastings

	if accept(st.RNG, logAlpha) {
		for l, gt := range st.Genes {
			gt.Logpr += pop.Loci[l].LogprContrib - oldContribs[l]
		}
		return true
	}

	pop.Restore()
	for l := 0; l < n; l++ {
		pop.Loci[l].LogprContrib = oldContribs[l]
	}
	return false
}
