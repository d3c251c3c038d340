// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model_test

import (
	"testing"

	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/rng"
)

// buildTree builds ((A,B),C) as a *model.Tree, with a and b populations
// returned for convenience.
func buildTree() (*model.Tree, *model.Population, *model.Population) {
	a := &model.Population{Label: "A", Leaves: 1}
	b := &model.Population{Label: "B", Leaves: 1}
	c := &model.Population{Label: "C", Leaves: 1}
	ab := &model.Population{Label: "AB", Left: a, Right: b, Leaves: 2}
	a.Parent, b.Parent = ab, ab
	root := &model.Population{Label: "ABC", Left: ab, Right: c, Leaves: 3}
	ab.Parent, c.Parent = root, root

	tree := model.NewTree(root, 1)
	tree.TipsByLabel = map[string]*model.Population{"A": a, "B": b, "C": c}
	return tree, a, b
}

func TestNewTreePostOrderIndices(t *testing.T) {
	tree, _, _ := buildTree()
	if len(tree.Populations) != 5 {
		t.Fatalf("expecting 5 populations, got %d", len(tree.Populations))
	}
	if tree.Root.Index != len(tree.Populations)-1 {
		t.Fatalf("root must be last in post-order, got index %d of %d", tree.Root.Index, len(tree.Populations))
	}
	for _, p := range tree.Populations {
		if p.Left != nil && p.Left.Index >= p.Index {
			t.Fatalf("left child index %d must precede parent index %d", p.Left.Index, p.Index)
		}
	}
}

func TestPPTableAncestry(t *testing.T) {
	tree, a, b := buildTree()
	pp := tree.PP

	if !pp.Get(a.Index, a.Index) {
		t.Fatalf("a population must be its own ancestor")
	}
	if !pp.Get(a.Index, a.Parent.Index) {
		t.Fatalf("ab must be an ancestor of a")
	}
	if !pp.Get(a.Index, tree.Root.Index) {
		t.Fatalf("root must be an ancestor of every population")
	}
	if pp.Get(b.Index, a.Index) {
		t.Fatalf("a must not be an ancestor of its sibling b")
	}

	anc := pp.Ancestors(a.Index)
	want := map[int]bool{a.Index: true, a.Parent.Index: true, tree.Root.Index: true}
	if len(anc) != len(want) {
		t.Fatalf("expecting %d ancestors of a, got %v", len(want), anc)
	}
	for _, idx := range anc {
		if !want[idx] {
			t.Fatalf("unexpected ancestor index %d", idx)
		}
	}
}

func TestInitTauPreservesUltrametricity(t *testing.T) {
	tree, _, _ := buildTree()
	s := rng.New(7)
	tree.InitTau(2, 2000, s)
	tree.CheckUltrametric() // panics on violation
	for _, p := range tree.Populations {
		if p.IsTip() && p.Tau != 0 {
			t.Fatalf("tip %q must keep tau == 0, got %v", p.Label, p.Tau)
		}
	}
}

func TestInitThetaSetsEveryPopulation(t *testing.T) {
	tree, _, _ := buildTree()
	s := rng.New(7)
	tree.InitTheta(2, 2000, s)
	for _, p := range tree.Populations {
		if p.Theta == nil {
			t.Fatalf("population %q must have a theta after InitTheta", p.Label)
		}
		if *p.Theta <= 0 {
			t.Fatalf("theta must be strictly positive, got %v", *p.Theta)
		}
	}
}

func TestSaveOldRestore(t *testing.T) {
	tree, _, _ := buildTree()
	s := rng.New(3)
	tree.InitTau(2, 2000, s)
	tree.InitTheta(2, 2000, s)

	p := tree.Root
	p.SaveOld()
	oldTau, oldTheta := p.Tau, *p.Theta
	p.Tau = oldTau + 1
	v := oldTheta + 1
	p.Theta = &v
	p.Restore()
	if p.Tau != oldTau {
		t.Fatalf("Restore must revert tau: got %v, want %v", p.Tau, oldTau)
	}
	if *p.Theta != oldTheta {
		t.Fatalf("Restore must revert theta: got %v, want %v", *p.Theta, oldTheta)
	}
}
