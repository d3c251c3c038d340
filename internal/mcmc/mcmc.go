// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package mcmc implements the chain driver: the proposal rotation, the
// burn-in and sampling loop with periodic finetune adaptation, and the
// tab-separated trace writer (spec section 4.6).
package mcmc

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/js-arias/msc/internal/proposal"
	"github.com/js-arias/msc/internal/state"
)

// Kind identifies one of the five proposal moves.
type Kind int

const (
	KindAge Kind = iota
	KindSPR
	KindTheta
	KindTau
	KindMixing
	numKinds
)

func (k Kind) String() string {
	switch k {
	case KindAge:
		return "gtage"
	case KindSPR:
		return "gtspr"
	case KindTheta:
		return "theta"
	case KindTau:
		return "tau"
	case KindMixing:
		return "mixing"
	default:
		return "unknown"
	}
}

// tally tracks proposal and acceptance counts for one move kind, used
// both for finetune adaptation and for the end-of-run summary.
type tally struct {
	proposed, accepted int
}

func (t *tally) rate() float64 {
	if t.proposed == 0 {
		return 0
	}
	return float64(t.accepted) / float64(t.proposed)
}

// Chain drives the MCMC loop over a fixed *state.State.
type Chain struct {
	st *state.State

	BurnIn     int
	Samples    int
	SampleFreq int

	// FinetuneReset, if true, clears the acceptance tallies after
	// burn-in, so Summary counts only sampling iterations. The
	// adapted finetune step sizes are kept either way.
	FinetuneReset bool

	tallies [numKinds]tally
}

// New creates a chain driver over st.
func New(st *state.State, burnIn, samples, sampleFreq int, finetuneReset bool) *Chain {
	return &Chain{
		st:            st,
		BurnIn:        burnIn,
		Samples:       samples,
		SampleFreq:    sampleFreq,
		FinetuneReset: finetuneReset,
	}
}

// propose runs every proposal kind once, in a fixed rotation, and
// records each kind's outcome.
func (c *Chain) propose() {
	for k := Kind(0); k < numKinds; k++ {
		var accepted bool
		switch k {
		case KindAge:
			accepted = proposal.Age(c.st)
		case KindSPR:
			accepted = proposal.SPR(c.st)
		case KindTheta:
			accepted = proposal.Theta(c.st)
		case KindTau:
			accepted = proposal.Tau(c.st)
		case KindMixing:
			accepted = proposal.Mixing(c.st)
		}
		c.tallies[k].proposed++
		if accepted {
			c.tallies[k].accepted++
		}
	}
}

// finetuneAdapt applies the spec 4.6 adaptation rule to every move's
// step size, based on the tallies accumulated so far, then resets the
// tallies for the next adaptation window.
func (c *Chain) finetuneAdapt() {
	f := &c.st.Finetune
	f.GtAge = proposal.Finetune(f.GtAge, c.tallies[KindAge].accepted, c.tallies[KindAge].proposed)
	f.GtSpr = proposal.Finetune(f.GtSpr, c.tallies[KindSPR].accepted, c.tallies[KindSPR].proposed)
	f.Theta = proposal.Finetune(f.Theta, c.tallies[KindTheta].accepted, c.tallies[KindTheta].proposed)
	f.Tau = proposal.Finetune(f.Tau, c.tallies[KindTau].accepted, c.tallies[KindTau].proposed)
	f.Mix = proposal.Finetune(f.Mix, c.tallies[KindMixing].accepted, c.tallies[KindMixing].proposed)
	c.tallies = [numKinds]tally{}
}

// Run executes burn-in followed by the sampling loop, writing one
// trace row every SampleFreq accepted-or-rejected iterations to w.
func (c *Chain) Run(w io.Writer) error {
	for i := 0; i < c.BurnIn; i++ {
		c.propose()
		if (i+1)%100 == 0 {
			c.finetuneAdapt()
		}
	}
	if c.FinetuneReset {
		c.tallies = [numKinds]tally{}
	}

	tw, err := newTraceWriter(w, c.st)
	if err != nil {
		return fmt.Errorf("mcmc: %v", err)
	}

	sample := 0
	iter := 0
	for sample < c.Samples {
		c.propose()
		iter++
		if iter%c.SampleFreq == 0 {
			if err := tw.writeRow(sample, c.st); err != nil {
				return fmt.Errorf("mcmc: %v", err)
			}
			sample++
		}
	}
	return tw.flush()
}

// Summary returns the per-move acceptance rate, for reporting at the
// end of a run.
func (c *Chain) Summary() map[string]float64 {
	out := make(map[string]float64, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		out[k.String()] = c.tallies[k].rate()
	}
	return out
}

// traceWriter writes the tab-separated trace file (spec section 6):
// one header comment block, a header row, then one row per sample with
// every population's tau and theta, every locus's logL/logP, and the
// chain's log-posterior.
type traceWriter struct {
	w      *bufio.Writer
	tsv    *csv.Writer
	numPop int
	numLoc int
}

func newTraceWriter(w io.Writer, st *state.State) (*traceWriter, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# msc mcmc trace\n")
	fmt.Fprintf(bw, "# date: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(bw, "# populations: %d\n", len(st.Species.Populations))
	fmt.Fprintf(bw, "# loci: %d\n", st.NumLoci())

	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'

	header := []string{"sample"}
	for _, p := range st.Species.Populations {
		if !p.IsTip() {
			header = append(header, "tau_"+p.Label)
		}
		if p.Theta != nil {
			header = append(header, "theta_"+p.Label)
		}
	}
	for l := 0; l < st.NumLoci(); l++ {
		header = append(header, fmt.Sprintf("logL_%d", l), fmt.Sprintf("logP_%d", l))
	}
	header = append(header, "logPosterior")
	if err := tsv.Write(header); err != nil {
		return nil, err
	}

	return &traceWriter{w: bw, tsv: tsv, numPop: len(st.Species.Populations), numLoc: st.NumLoci()}, nil
}

func (tw *traceWriter) writeRow(sample int, st *state.State) error {
	row := []string{strconv.Itoa(sample)}
	for _, p := range st.Species.Populations {
		if !p.IsTip() {
			row = append(row, strconv.FormatFloat(p.Tau, 'g', -1, 64))
		}
		if p.Theta != nil {
			row = append(row, strconv.FormatFloat(*p.Theta, 'g', -1, 64))
		}
	}
	var logPosterior float64
	for _, gt := range st.Genes {
		row = append(row,
			strconv.FormatFloat(gt.Logl, 'g', -1, 64),
			strconv.FormatFloat(gt.Logpr, 'g', -1, 64),
		)
		logPosterior += gt.Logl + gt.Logpr
	}
	row = append(row, strconv.FormatFloat(logPosterior, 'g', -1, 64))
	return tw.tsv.Write(row)
}

func (tw *traceWriter) flush() error {
	tw.tsv.Flush()
	if err := tw.tsv.Error(); err != nil {
		return err
	}
	return tw.w.Flush()
}
