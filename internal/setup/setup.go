// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package setup wires the narrow format parsers (newick, fasta,
// phylip, popmap) and the mcctl config into a ready-to-run
// *state.State: building the species tree, compressing each locus's
// alignment into weighted site patterns, and simulating an initial
// gene tree per locus from the coalescent priors.
package setup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/js-arias/msc/internal/fasta"
	"github.com/js-arias/msc/internal/locus"
	"github.com/js-arias/msc/internal/mcctl"
	"github.com/js-arias/msc/internal/model"
	"github.com/js-arias/msc/internal/msc"
	"github.com/js-arias/msc/internal/mscerr"
	"github.com/js-arias/msc/internal/newick"
	"github.com/js-arias/msc/internal/phylip"
	"github.com/js-arias/msc/internal/popmap"
	"github.com/js-arias/msc/internal/rng"
	"github.com/js-arias/msc/internal/state"
)

// BuildSpeciesTree converts a parsed newick topology into a
// model.Tree, with numLoci per-locus slots on every population.
func BuildSpeciesTree(root *newick.Node, numLoci int) (*model.Tree, error) {
	labelToPop := make(map[string]*model.Population)

	var convert func(n *newick.Node) *model.Population
	convert = func(n *newick.Node) *model.Population {
		p := &model.Population{Label: n.Label}
		if n.IsTip() {
			p.Leaves = 1
			labelToPop[n.Label] = p
			return p
		}
		left := convert(n.Children[0])
		right := convert(n.Children[1])
		left.Parent, right.Parent = p, p
		p.Left, p.Right = left, right
		p.Leaves = left.Leaves + right.Leaves
		return p
	}
	root.Label = strings.TrimSpace(root.Label)
	rootPop := convert(root)

	tree := model.NewTree(rootPop, numLoci)
	tree.TipsByLabel = labelToPop
	return tree, nil
}

// ReadAlignments reads the msafile, dispatching on file extension:
// ".phy"/".phylip" for a (possibly multi-locus) PHYLIP file, anything
// else for a single-locus FASTA file.
func ReadAlignments(path string) ([][]fasta.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".phy", ".phylip":
		return phylip.ReadAll(f)
	default:
		recs, err := fasta.Read(f)
		if err != nil {
			return nil, err
		}
		return [][]fasta.Record{recs}, nil
	}
}

// compressPatterns groups identical alignment columns, returning the
// unique columns (one string per site, one byte per sample in the
// order of labels) and their weights.
func compressPatterns(labels []string, seqs map[string]string) ([]string, []float64) {
	n := len(seqs[labels[0]])
	patternIndex := make(map[string]int, n)
	var patterns []string
	var weights []float64

	col := make([]byte, len(labels))
	for i := 0; i < n; i++ {
		for j, lbl := range labels {
			col[j] = seqs[lbl][i]
		}
		key := string(col)
		if idx, ok := patternIndex[key]; ok {
			weights[idx]++
			continue
		}
		patternIndex[key] = len(patterns)
		patterns = append(patterns, key)
		weights = append(weights, 1)
	}
	return patterns, weights
}

// BuildLocus compresses an alignment into site patterns, builds the
// likelihood engine, and simulates an initial gene tree from the
// coalescent priors. popOf maps each record label to the species
// population it belongs to.
func BuildLocus(tree *model.Tree, localIdx int, recs []fasta.Record, popOf func(label string) (*model.Population, bool), s *rng.Stream) (*model.Tree, *locus.Locus, error) {
	labels := make([]string, len(recs))
	seqs := make(map[string]string, len(recs))
	samples := make([]model.Sample, 0, len(recs))
	for i, rec := range recs {
		labels[i] = rec.Label
		seqs[rec.Label] = rec.Sequence
		pop, ok := popOf(rec.Label)
		if !ok {
			return nil, nil, fmt.Errorf("%w: sample %q has no population assignment", mscerr.ErrAlignment, rec.Label)
		}
		samples = append(samples, model.Sample{Label: rec.Label, Pop: pop})
	}

	patterns, weights := compressPatterns(labels, seqs)
	lx := locus.New(len(patterns), weights)

	tipClv := make(map[string]int, len(labels))
	for li, lbl := range labels {
		idx := lx.AllocCLV()
		codes := make([]uint8, len(patterns))
		for i, pat := range patterns {
			c, ok := locus.Code(pat[li])
			if !ok {
				return nil, nil, fmt.Errorf("%w: unrecognized nucleotide %q in sample %q", mscerr.ErrAlignment, string(pat[li]), lbl)
			}
			codes[i] = c
		}
		if err := lx.SetTipSequence(idx, codes); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", mscerr.ErrAlignment, err)
		}
		tipClv[lbl] = idx
	}

	gt, err := model.BuildGeneTree(tree, localIdx, samples, s)
	if err != nil {
		return nil, nil, err
	}

	// InitBuffers assigns a fresh CLV to every node including tips;
	// point tips back at the buffers their sequences were already
	// loaded into.
	locus.InitBuffers(gt, lx)
	for _, n := range gt.Nodes {
		if n.IsTip() {
			n.ClvIndex = tipClv[n.Label]
		}
	}

	gt.Logl = locus.FullRecompute(gt, lx)
	gt.Logpr = msc.FullRecompute(tree, localIdx)

	return gt, lx, nil
}

// New builds the complete run state from an mcctl.Config.
func New(cfg mcctl.Config) (*state.State, error) {
	streeF, err := os.Open(cfg.SpeciesTree)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	root, err := newick.Read(streeF)
	streeF.Close()
	if err != nil {
		return nil, err
	}

	pmF, err := os.Open(cfg.PopMap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	pm, err := popmap.Read(pmF)
	pmF.Close()
	if err != nil {
		return nil, err
	}

	loci, err := ReadAlignments(cfg.Alignment)
	if err != nil {
		return nil, err
	}

	tree, err := BuildSpeciesTree(root, len(loci))
	if err != nil {
		return nil, err
	}

	s := rng.New(cfg.Seed)
	tree.InitTheta(cfg.ThetaAlpha, cfg.ThetaBeta, s)
	tree.InitTau(cfg.TauAlpha, cfg.TauBeta, s)

	popOf := func(label string) (*model.Population, bool) {
		sp, ok := pm.Species(label)
		if !ok {
			return nil, false
		}
		p, ok := tree.TipsByLabel[sp]
		return p, ok
	}

	genes := make([]*model.Tree, len(loci))
	lxs := make([]*locus.Locus, len(loci))
	for i, recs := range loci {
		gt, lx, err := BuildLocus(tree, i, recs, popOf, s)
		if err != nil {
			return nil, err
		}
		genes[i] = gt
		lxs[i] = lx
	}

	st := &state.State{
		Species: tree,
		Genes:   genes,
		Loci:    lxs,
		RNG:     s,
		Pool:    locus.StartPool(0),
		Finetune: state.Finetune{
			GtAge: cfg.FinetuneGtAge,
			GtSpr: cfg.FinetuneGtSpr,
			Theta: cfg.FinetuneTheta,
			Tau:   cfg.FinetuneTau,
			Mix:   cfg.FinetuneMix,
		},
		Priors: state.Priors{
			ThetaAlpha: cfg.ThetaAlpha,
			ThetaBeta:  cfg.ThetaBeta,
			TauAlpha:   cfg.TauAlpha,
			TauBeta:    cfg.TauBeta,
		},
	}
	return st, nil
}
