// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package setup_test

import (
	"math"
	"strings"
	"testing"

	"github.com/js-arias/msc/internal/fasta"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/newick"
	"github.com/js-arias/msc/internal/rng"
	"github.com/js-arias/msc/internal/setup"
)

func TestBuildSpeciesTree(t *testing.T) {
	root, err := newick.Read(strings.NewReader("((A,B),C);"))
	if err != nil {
		t.Fatalf("newick.Read: %v", err)
	}
	tree, err := setup.BuildSpeciesTree(root, 2)
	if err != nil {
		t.Fatalf("BuildSpeciesTree: %v", err)
	}
	if len(tree.Populations) != 5 {
		t.Fatalf("expecting 5 populations, got %d", len(tree.Populations))
	}
	for _, lbl := range []string{"A", "B", "C"} {
		if _, ok := tree.TipsByLabel[lbl]; !ok {
			t.Fatalf("missing tip %q in TipsByLabel", lbl)
		}
	}
	if tree.NumLoci != 2 {
		t.Fatalf("expecting NumLoci == 2, got %d", tree.NumLoci)
	}
}

func TestBuildLocusRejectsUnassignedSample(t *testing.T) {
	root, err := newick.Read(strings.NewReader("(A,B);"))
	if err != nil {
		t.Fatalf("newick.Read: %v", err)
	}
	tree, err := setup.BuildSpeciesTree(root, 1)
	if err != nil {
		t.Fatalf("BuildSpeciesTree: %v", err)
	}
	s := rng.New(1)
	tree.InitTau(2, 2000, s)
	tree.InitTheta(2, 2000, s)

	recs := []fasta.Record{{Label: "unknown", Sequence: "ACGT"}}
	popOf := func(label string) (*model.Population, bool) { return nil, false }

	_, _, err = setup.BuildLocus(tree, 0, recs, popOf, s)
	if err == nil {
		t.Fatalf("expecting an error for a sample with no population assignment")
	}
}

func TestBuildLocusComputesInitialLikelihood(t *testing.T) {
	root, err := newick.Read(strings.NewReader("(A,B);"))
	if err != nil {
		t.Fatalf("newick.Read: %v", err)
	}
	tree, err := setup.BuildSpeciesTree(root, 1)
	if err != nil {
		t.Fatalf("BuildSpeciesTree: %v", err)
	}
	s := rng.New(1)
	tree.InitTau(2, 2000, s)
	tree.InitTheta(2, 2000, s)

	popOf := func(label string) (*model.Population, bool) {
		switch label[0] {
		case 'a':
			return tree.TipsByLabel["A"], true
		case 'b':
			return tree.TipsByLabel["B"], true
		}
		return nil, false
	}
	recs := []fasta.Record{
		{Label: "a1", Sequence: "ACGT"},
		{Label: "b1", Sequence: "ACGA"},
	}
	gt, lx, err := setup.BuildLocus(tree, 0, recs, popOf, s)
	if err != nil {
		t.Fatalf("BuildLocus: %v", err)
	}
	if lx == nil {
		t.Fatalf("expecting a non-nil locus")
	}
	if math.IsNaN(gt.Logl) || math.IsInf(gt.Logl, 0) || gt.Logl > 0 {
		t.Fatalf("expecting a finite, non-positive initial log likelihood, got %v", gt.Logl)
	}
}
