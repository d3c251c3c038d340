// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package msc implements the multispecies-coalescent log-prior over
// gene trees given a species tree: the per-population, per-locus
// Kingman coalescent log-density and its incremental maintenance.
package msc

import (
	"math"

	"github.com/js-arias/msc/internal/model"
)

// Contrib computes population p's additive contribution to locus l's
// log-prior (spec section 4.3):
//
//	log p = sum_i [ log(2/theta) - C(k_i,2)*(t_i - t_{i-1})*2/theta ]
//	        - C(k_{m+1},2)*(tau_top - t_m)*2/theta
//
// where t_0 = p.Tau, k_i = n - i + 1, and the trailing term is omitted
// at the root population (tau_top = +Inf).
func Contrib(p *model.Population, locus int) float64 {
	pl := &p.Loci[locus]
	n := pl.SeqinCount
	if n == 0 {
		return 0
	}

	if p.Theta == nil {
		if pl.Events.Len() > 0 {
			panic("msc: population has coalescent events but undefined theta")
		}
		return 0
	}
	theta := *p.Theta

	times := pl.Events.Times()
	var logp float64
	prev := p.Tau
	k := n
	for _, t := range times {
		coeff := float64(k*(k-1)) / 2
		logp += math.Log(2/theta) - coeff*(t-prev)*2/theta
		prev = t
		k--
	}

	if p.Parent != nil {
		top := p.Parent.Tau
		coeff := float64(k*(k-1)) / 2
		logp -= coeff * (top - prev) * 2 / theta
	}

	return logp
}

// UpdateContrib recomputes p's logpr_contrib for locus l and stores
// it, per spec's gtree_update_logprob_contrib.
func UpdateContrib(p *model.Population, locus int) {
	p.Loci[locus].LogprContrib = Contrib(p, locus)
}

// UpdateContribs recomputes and stores the contribution for every
// population in pops (the subset affected by a proposal) at locus l.
// Proposals use this instead of a full-tree recomputation whenever
// only a handful of populations change (spec section 4.3, "delta
// updates").
func UpdateContribs(pops []*model.Population, locus int) {
	for _, p := range pops {
		UpdateContrib(p, locus)
	}
}

// FullRecompute recomputes every population's contribution for locus l
// and returns the resulting G_l.logpr. Used for full-recomputation
// consistency checks (spec section 8) and whenever more than a few
// populations are affected (e.g. the mixing proposal).
func FullRecompute(tree *model.Tree, locus int) float64 {
	for _, p := range tree.Populations {
		UpdateContrib(p, locus)
	}
	return tree.SumLogpr(locus)
}
