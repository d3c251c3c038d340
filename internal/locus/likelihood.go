// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package locus

import "github.com/js-arias/msc/internal/model"

// InitBuffers walks a freshly built gene tree and assigns every node a
// CLV index, a pmatrix index (for the edge from the node up to its
// parent) and a scaler index, allocating the backing buffers in lx.
// It must run once per gene tree, after topology construction
// (model.BuildGeneTree) and before any likelihood computation.
func InitBuffers(gt *model.Tree, lx *Locus) {
	var walk func(n *model.GeneNode)
	walk = func(n *model.GeneNode) {
		if n == nil {
			return
		}
		walk(n.Left)
		walk(n.Right)
		n.ClvIndex = lx.AllocCLV()
		n.PmatrixIndex = lx.AllocPMatrix()
		n.ScalerIndex = lx.AllocScaler()
	}
	walk(gt.Root)
}

// RebuildEdge recomputes the pmatrix for the edge between n and its
// parent from n's current branch length. It does not touch any CLV:
// invalidating the affected CLVs is the caller's responsibility (spec
// section 9: "mark the path from the moved node to the root invalid").
func RebuildEdge(lx *Locus, n *model.GeneNode) {
	bl := n.Parent.Time - n.Time
	lx.SetPMatrix(n.PmatrixIndex, bl)
}

// Recompute walks the gene tree in post-order and recomputes the CLV
// of every node whose ClvValid flag is false, then returns the
// resulting root log-likelihood. Valid nodes are left untouched: this
// is the "only recompute what a proposal invalidated" contract from
// spec section 9.
func Recompute(gt *model.Tree, lx *Locus) float64 {
	for _, u := range gt.PostOrder() {
		if u.ClvValid {
			continue
		}
		lx.SumScalers(u.ScalerIndex, u.Left.ScalerIndex, u.Right.ScalerIndex)
		lx.Combine(u.ClvIndex, u.Left.ClvIndex, u.Right.ClvIndex, u.Left.PmatrixIndex, u.Right.PmatrixIndex, u.ScalerIndex)
		u.ClvValid = true
	}
	return lx.RootLogL(gt.Root.ClvIndex, gt.Root.ScalerIndex)
}

// FullRecompute forces recomputation of every internal node's CLV
// regardless of ClvValid, rebuilding every pmatrix from the current
// branch lengths first. Used for the full-recomputation consistency
// check (spec section 8) and whenever a proposal changes branch
// lengths throughout the tree (tau and mixing moves).
func FullRecompute(gt *model.Tree, lx *Locus) float64 {
	for _, n := range gt.Nodes {
		if n.Parent != nil {
			RebuildEdge(lx, n)
		}
	}
	for _, u := range gt.PostOrder() {
		u.ClvValid = false
	}
	return Recompute(gt, lx)
}
