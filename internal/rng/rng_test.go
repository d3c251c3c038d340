// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package rng_test

import (
	"math"
	"testing"

	"github.com/js-arias/msc/internal/rng"
)

func TestReflectWithinBounds(t *testing.T) {
	lo, hi := 0.01, 0.05
	tau := 0.03
	delta := 10.0

	s := rng.New(1)
	for i := 0; i < 1000; i++ {
		eps := s.Uniform(-delta/2, delta/2)
		got := rng.Reflect(tau+eps, lo, hi)
		if got < lo || got > hi {
			t.Fatalf("reflect out of bounds: got %v, want within [%v, %v]", got, lo, hi)
		}
	}
}

func TestReflectIdentityInsideBounds(t *testing.T) {
	got := rng.Reflect(0.03, 0.01, 0.05)
	if math.Abs(got-0.03) > 1e-12 {
		t.Errorf("reflect of interior point: got %v, want 0.03", got)
	}
}

func TestReflectInfiniteUpperBound(t *testing.T) {
	got := rng.Reflect(0.5, 1.0, math.Inf(1))
	want := 1.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("reflect below lower bound with +Inf upper: got %v, want %v", got, want)
	}

	got = rng.Reflect(2.0, 1.0, math.Inf(1))
	if got != 2.0 {
		t.Errorf("reflect above lower bound with +Inf upper: got %v, want 2.0", got)
	}
}

func TestDeterministicStream(t *testing.T) {
	a := rng.New(42)
	b := rng.New(42)
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams with same seed diverged at draw %d", i)
		}
	}
}

func TestGammaMean(t *testing.T) {
	s := rng.New(7)
	alpha, beta := 100.0, 100.0 // mean 1
	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += s.Gamma(alpha, beta)
	}
	mean := sum / n
	if math.Abs(mean-1.0) > 0.05 {
		t.Errorf("gamma sample mean: got %v, want close to 1.0", mean)
	}
}
