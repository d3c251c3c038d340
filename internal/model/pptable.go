// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package model

// PPTable is the packed population-ancestor table: PP.Get(a, b) is
// true iff population b lies on the path from a to the root
// (inclusive of both endpoints). It is built once from a fixed
// topology and never recomputed during MCMC (spec design note on
// pptable); topology-changing species-tree proposals are out of
// scope for this implementation.
type PPTable struct {
	n    int
	bits []uint64
}

func newPPTable(n int) *PPTable {
	words := (n*n + 63) / 64
	if words == 0 {
		words = 1
	}
	return &PPTable{n: n, bits: make([]uint64, words)}
}

func (t *PPTable) index(a, b int) (word, bit int) {
	i := a*t.n + b
	return i / 64, i % 64
}

// Set marks b as an ancestor (inclusive) of a.
func (t *PPTable) Set(a, b int) {
	w, bit := t.index(a, b)
	t.bits[w] |= 1 << uint(bit)
}

// Get reports whether b is an ancestor of a, or a itself.
func (t *PPTable) Get(a, b int) bool {
	w, bit := t.index(a, b)
	return t.bits[w]&(1<<uint(bit)) != 0
}

// BuildPPTable computes the ancestor table with a single depth-first
// traversal from root: the path accumulated on the way down to each
// population is exactly its ancestor set.
func BuildPPTable(pops []*Population, root *Population) *PPTable {
	t := newPPTable(len(pops))

	var walk func(p *Population, path []int)
	walk = func(p *Population, path []int) {
		path = append(path, p.Index)
		for _, a := range path {
			t.Set(p.Index, a)
		}
		if p.Left != nil {
			walk(p.Left, path)
		}
		if p.Right != nil {
			walk(p.Right, path)
		}
	}
	walk(root, nil)

	return t
}

// Ancestors returns the indices of the populations that are ancestors
// of (or equal to) p, in index order (used by the SPR proposal to
// restrict regraft targets to populations on the path from a node's
// own population to the root).
func (t *PPTable) Ancestors(p int) []int {
	out := make([]int, 0, t.n)
	for b := 0; b < t.n; b++ {
		if t.Get(p, b) {
			out = append(out, b)
		}
	}
	return out
}
