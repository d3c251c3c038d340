// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package model implements the shared species-tree and gene-tree data
// model: populations with tau and theta, gene nodes with a coalescent
// age and a population tag, and the per-population, per-locus event
// index that both the MSC prior and the proposal suite read and
// mutate incrementally.
package model

import (
	"math"

	"github.com/js-arias/msc/internal/event"
	"github.com/js-arias/msc/internal/rng"
)

// PopulationLocus holds the per-locus state of a population: its
// ordered coalescent event list, the number of lineages entering it
// from below, and its additive contribution to that locus's MSC
// log-prior.
type PopulationLocus struct {
	Events *event.List[*GeneNode]

	SeqinCount int

	LogprContrib    float64
	OldLogprContrib float64
}

// Population is a node of the species tree: a population with an age
// (Tau) at its top and a coalescent parameter (Theta).
type Population struct {
	Label  string
	Parent *Population
	Left   *Population
	Right  *Population

	// Tau is the age of the top of this population. Zero at tips.
	Tau, OldTau float64

	// Theta is the coalescent parameter for this population. nil
	// means "undefined": valid only at a population that can never
	// host a coalescent event (see DESIGN.md Open Question c).
	Theta, OldTheta *float64

	Leaves int
	Index  int

	// Loci holds one PopulationLocus per locus, indexed by locus id.
	Loci []PopulationLocus
}

// IsTip reports whether p is a terminal population (species tip).
func (p *Population) IsTip() bool {
	return p.Left == nil && p.Right == nil
}

// TauTop returns the upper boundary for ages within this population:
// the parent's tau, or +Inf at the root.
func (p *Population) TauTop() float64 {
	if p.Parent == nil {
		return math.Inf(1)
	}
	return p.Parent.Tau
}

// SaveOld stashes the current tau and theta into the shadow fields so
// a proposal can be reverted.
func (p *Population) SaveOld() {
	p.OldTau = p.Tau
	if p.Theta != nil {
		v := *p.Theta
		p.OldTheta = &v
	} else {
		p.OldTheta = nil
	}
}

// Restore copies the shadow tau/theta back, undoing a rejected
// proposal's direct field writes.
func (p *Population) Restore() {
	p.Tau = p.OldTau
	p.Theta = p.OldTheta
}

// Tree is a rooted binary species tree with a population at every
// node, plus the ancestor table used by gene-tree proposals to decide
// which populations a node may legally occupy.
type Tree struct {
	Populations []*Population // indexed by Index
	Root        *Population
	NumLoci     int
	PP          *PPTable

	// TipsByLabel maps a tip's label to its Population, for samples to
	// attach to at gene-tree construction time. Populated by the
	// caller that builds the tree from a parsed topology; nil until
	// then.
	TipsByLabel map[string]*Population
}

// NewTree builds a Tree from populations already linked by
// Parent/Left/Right, assigning stable indices in post-order and
// computing the ancestor table. numLoci pre-allocates the per-locus
// arrays on every population.
func NewTree(root *Population, numLoci int) *Tree {
	t := &Tree{Root: root, NumLoci: numLoci}

	var post func(p *Population)
	post = func(p *Population) {
		if p.Left != nil {
			post(p.Left)
		}
		if p.Right != nil {
			post(p.Right)
		}
		p.Index = len(t.Populations)
		p.Loci = make([]PopulationLocus, numLoci)
		for l := range p.Loci {
			p.Loci[l].Events = event.NewList[*GeneNode]()
		}
		t.Populations = append(t.Populations, p)
	}
	post(root)

	t.PP = BuildPPTable(t.Populations, root)
	return t
}

// PostOrder returns the populations in post-order (children before
// parents) -- the order in which gene-tree construction must proceed
// so that every population's incoming lineages are known before it is
// processed.
func (t *Tree) PostOrder() []*Population {
	return t.Populations
}

// InitTheta draws an i.i.d. Gamma(alpha, beta) theta for every
// population, following spec section 4.1.
func (t *Tree) InitTheta(alpha, beta float64, s *rng.Stream) {
	for _, p := range t.Populations {
		v := s.Gamma(alpha, beta)
		p.Theta = &v
	}
}

// InitTau draws the root age from Gamma(alpha, beta), then assigns
// every other internal population's age uniformly in (0, parent.Tau)
// in pre-order, preserving ultrametricity (spec section 4.1). Tip
// populations keep Tau == 0.
func (t *Tree) InitTau(alpha, beta float64, s *rng.Stream) {
	t.Root.Tau = s.Gamma(alpha, beta)

	var pre func(p *Population)
	pre = func(p *Population) {
		if p.IsTip() {
			p.Tau = 0
			return
		}
		if p != t.Root {
			p.Tau = s.Uniform(0, p.Parent.Tau)
		}
		pre(p.Left)
		pre(p.Right)
	}
	pre(t.Root)
}

// SumLogpr returns G_l.logpr, the sum of every population's
// LogprContrib for locus l (spec invariant 5).
func (t *Tree) SumLogpr(locus int) float64 {
	var sum float64
	for _, p := range t.Populations {
		sum += p.Loci[locus].LogprContrib
	}
	return sum
}

// CheckUltrametric asserts that every population's tau is strictly
// less than its parent's (spec invariant: "s.tau < p.tau"). It panics
// on violation, since this is a fatal, corrupted-state condition once
// the tree is running under MCMC (spec section 7).
func (t *Tree) CheckUltrametric() {
	for _, p := range t.Populations {
		if p.Parent == nil {
			continue
		}
		if p.Tau >= p.Parent.Tau {
			panic("model: tau not strictly less than parent tau")
		}
	}
}
