// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

import (
	"fmt"

	"github.com/js-arias/msc/internal/rng"
)

// Sample is one sequence label present at a locus, together with the
// species population it is assigned to.
type Sample struct {
	Label string
	Pop   *Population
}

// BuildGeneTree constructs a gene tree for one locus consistent with
// the species tree, by simulating the standard Kingman n-coalescent
// within each population along a post-order walk of the species tree
// (spec section 4.2): lineages entering a population coalesce at rate
// k(k-1)/theta until either one lineage remains or the population's
// upper boundary (parent's tau) is reached, at which point any
// remaining lineages are propagated to the parent population.
//
// BuildGeneTree only establishes topology, population membership and
// coalescent ages. ClvIndex, PmatrixIndex and ScalerIndex are left
// zero; a separate likelihood-engine pass (locus.InitBuffers) assigns
// them once the tree is final, so that topology construction stays
// independent of the likelihood buffer pool.
func BuildGeneTree(tree *Tree, locus int, samples []Sample, s *rng.Stream) (*Tree, error) {
	gt := &Tree{Locus: locus}

	lineages := make(map[int][]*GeneNode, len(tree.Populations)) // by population index
	nextIndex := 0

	for _, sm := range samples {
		n := &GeneNode{
			Pop:      sm.Pop,
			Time:     0,
			Label:    sm.Label,
			ClvValid: true,
			Index:    nextIndex,
		}
		nextIndex++
		gt.Nodes = append(gt.Nodes, n)
		lineages[sm.Pop.Index] = append(lineages[sm.Pop.Index], n)
	}

	for _, pop := range tree.PostOrder() {
		cur := lineages[pop.Index]
		if pop.Left != nil {
			cur = append(cur, lineages[pop.Left.Index]...)
		}
		if pop.Right != nil {
			cur = append(cur, lineages[pop.Right.Index]...)
		}
		delete(lineages, pop.Left.indexOrNeg())
		delete(lineages, pop.Right.indexOrNeg())

		pop.Loci[locus].SeqinCount = len(cur)

		if len(cur) > 1 && pop.Theta == nil {
			return nil, fmt.Errorf("model: population %q has incoming lineages but undefined theta", pop.Label)
		}

		t := pop.Tau
		top := pop.TauTop()
		for len(cur) > 1 {
			k := len(cur)
			rate := float64(k*(k-1)) / *pop.Theta
			t += s.ExpFloat64() / rate
			if t >= top {
				break
			}

			i := s.IntN(k)
			j := s.IntN(k - 1)
			if j >= i {
				j++
			}
			left, right := cur[i], cur[j]

			parent := &GeneNode{
				Pop:   pop,
				Time:  t,
				Left:  left,
				Right: right,
				Index: nextIndex,
			}
			nextIndex++
			left.Parent = parent
			right.Parent = parent
			gt.Nodes = append(gt.Nodes, parent)

			parent.EventItem = pop.Loci[locus].Events.Insert(t, parent)

			next := make([]*GeneNode, 0, k-1)
			for idx, l := range cur {
				if idx != i && idx != j {
					next = append(next, l)
				}
			}
			next = append(next, parent)
			cur = next
		}

		lineages[pop.Index] = cur
	}

	root := lineages[tree.Root.Index]
	if len(root) != 1 {
		return nil, fmt.Errorf("model: coalescent did not resolve to a single root lineage at the species root")
	}
	gt.Root = root[0]

	return gt, nil
}

func (p *Population) indexOrNeg() int {
	if p == nil {
		return -1
	}
	return p.Index
}
