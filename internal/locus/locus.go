// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package locus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scaling constants for the scalar reference kernel, equivalent to
// PLL_SCALE_THRESHOLD and PLL_SCALE_FACTOR (spec section 4.4). These
// bound float64 underflow while keeping log-likelihoods exact to
// within the scaler's log(scaleFactor) correction.
const (
	scaleThreshold = 1e-270
	scaleFactor    = 1e270
)

// Locus holds one alignment's compressed site patterns, the flat CLV
// and pmatrix pools addressed by index, and the per-site scaler
// counters.
type Locus struct {
	NumSites int // number of distinct patterns after compression
	Weights  []float64

	clvs    [][]float64 // clv_index -> flat [site*4+state]
	pmats   [][16]float64
	scalers [][]int // scaler_index -> per-site scale count

	// TipCodes holds, for tip clv indices, the raw 4-bit state codes
	// per site -- used by the tip-tip optimization. Empty for
	// internal clv indices.
	TipCodes [][]uint8
}

// New returns a Locus with numSites patterns and the given pattern
// weights (len(weights) == numSites).
func New(numSites int, weights []float64) *Locus {
	return &Locus{
		NumSites: numSites,
		Weights:  append([]float64(nil), weights...),
	}
}

// AllocCLV reserves a new CLV buffer and returns its index.
func (l *Locus) AllocCLV() int {
	l.clvs = append(l.clvs, make([]float64, l.NumSites*4))
	l.TipCodes = append(l.TipCodes, nil)
	return len(l.clvs) - 1
}

// AllocPMatrix reserves a new pmatrix slot and returns its index.
func (l *Locus) AllocPMatrix() int {
	l.pmats = append(l.pmats, [16]float64{})
	return len(l.pmats) - 1
}

// AllocScaler reserves a new per-site scaler counter and returns its
// index.
func (l *Locus) AllocScaler() int {
	l.scalers = append(l.scalers, make([]int, l.NumSites))
	return len(l.scalers) - 1
}

// SetTipSequence fills clv index idx with the tip partial-likelihood
// vectors derived from codes (one 4-bit mask per site), and records
// the raw codes for the tip-tip optimization.
func (l *Locus) SetTipSequence(idx int, codes []uint8) error {
	if len(codes) != l.NumSites {
		return fmt.Errorf("locus: tip sequence has %d sites, want %d", len(codes), l.NumSites)
	}
	clv := l.clvs[idx]
	for site, c := range codes {
		v := StateVector(c)
		copy(clv[site*4:site*4+4], v[:])
	}
	l.TipCodes[idx] = append([]uint8(nil), codes...)
	return nil
}

// SetPMatrix stores the JC69 transition matrix for branch length bl
// at pmatrix index idx.
func (l *Locus) SetPMatrix(idx int, bl float64) {
	l.pmats[idx] = PMatrix(bl)
}

// ResetScaler zeroes the scaler counters at scaler index idx.
func (l *Locus) ResetScaler(idx int) {
	for i := range l.scalers[idx] {
		l.scalers[idx][i] = 0
	}
}

// Combine computes the CLV at dstClv from its two children's CLVs
// (childClv indices) through the pmatrices at pmatIdx, applying
// scaling per site and accumulating the scaler counts at scalerIdx
// (initialized to the sum of the two children's scalers by the
// caller before combining, per the usual pruning scaler convention).
//
// When both children are tips (both TipCodes entries non-nil),
// the tip-tip lookup-table optimization is used instead of the dense
// matrix combine (spec section 4.4).
func (l *Locus) Combine(dstClv, leftClv, rightClv, pmatLeft, pmatRight, scalerIdx int) {
	dst := l.clvs[dstClv]
	Pl := &l.pmats[pmatLeft]
	Pr := &l.pmats[pmatRight]

	if codesL, codesR := l.TipCodes[leftClv], l.TipCodes[rightClv]; codesL != nil && codesR != nil {
		combineTipTip(dst, codesL, codesR, Pl, Pr, l.NumSites)
	} else {
		left := l.clvs[leftClv]
		right := l.clvs[rightClv]
		combineDense(dst, left, right, Pl, Pr, l.NumSites)
	}

	l.applyScale(dst, l.scalers[scalerIdx])
}

func combineDense(dst, left, right []float64, Pl, Pr *[16]float64, numSites int) {
	for site := 0; site < numSites; site++ {
		lo := site * 4
		for s := 0; s < 4; s++ {
			var sumL, sumR float64
			for x := 0; x < 4; x++ {
				sumL += Pl[s*4+x] * left[lo+x]
				sumR += Pr[s*4+x] * right[lo+x]
			}
			dst[lo+s] = sumL * sumR
		}
	}
}

func combineTipTip(dst []float64, codesL, codesR []uint8, Pl, Pr *[16]float64, numSites int) {
	var cache [16][16][4]float64
	var have [16][16]bool

	for site := 0; site < numSites; site++ {
		cl, cr := codesL[site]&0xF, codesR[site]&0xF
		if !have[cl][cr] {
			cache[cl][cr] = tipTipVector(cl, cr, Pl, Pr)
			have[cl][cr] = true
		}
		v := cache[cl][cr]
		lo := site * 4
		copy(dst[lo:lo+4], v[:])
	}
}

func tipTipVector(maskL, maskR uint8, Pl, Pr *[16]float64) [4]float64 {
	var out [4]float64
	for s := 0; s < 4; s++ {
		var sumL, sumR float64
		for x := 0; x < 4; x++ {
			if maskL&(1<<uint(x)) != 0 {
				sumL += Pl[s*4+x]
			}
			if maskR&(1<<uint(x)) != 0 {
				sumR += Pr[s*4+x]
			}
		}
		out[s] = sumL * sumR
	}
	return out
}

// applyScale multiplies a site's CLV by scaleFactor and increments
// that site's scaler whenever every state entry underflows
// scaleThreshold.
func (l *Locus) applyScale(clv []float64, scaler []int) {
	for site := 0; site < l.NumSites; site++ {
		lo := site * 4
		below := true
		for s := 0; s < 4; s++ {
			if clv[lo+s] >= scaleThreshold {
				below = false
				break
			}
		}
		if below && (clv[lo] > 0 || clv[lo+1] > 0 || clv[lo+2] > 0 || clv[lo+3] > 0) {
			for s := 0; s < 4; s++ {
				clv[lo+s] *= scaleFactor
			}
			scaler[site]++
		}
	}
}

// SumScalers sets dst's per-site scaler counts to the sum of srcA's and
// srcB's, the usual convention of accumulating scaling along the
// pruning recursion. dst's previous counts are overwritten, so it
// needs no reset beforehand.
func (l *Locus) SumScalers(dst, srcA, srcB int) {
	d := l.scalers[dst]
	a := l.scalers[srcA]
	b := l.scalers[srcB]
	for i := range d {
		d[i] = a[i] + b[i]
	}
}

// RootLogL computes the root log-likelihood from the CLV at
// rootClvIdx using stationary frequencies of 0.25 (JC69), the
// pattern weights, and the scaler correction at rootScalerIdx (spec
// section 4.4).
func (l *Locus) RootLogL(rootClvIdx, rootScalerIdx int) float64 {
	clv := l.clvs[rootClvIdx]
	scaler := l.scalers[rootScalerIdx]

	siteLogL := make([]float64, l.NumSites)
	logScale := math.Log(scaleFactor)
	for site := 0; site < l.NumSites; site++ {
		lo := site * 4
		sum := 0.25 * floats.Sum(clv[lo:lo+4])
		siteLogL[site] = math.Log(sum) - float64(scaler[site])*logScale
	}

	floats.Mul(siteLogL, l.Weights)
	return floats.Sum(siteLogL)
}
