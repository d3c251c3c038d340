// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package popmap_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/msc/internal/mscerr"
	"github.com/js-arias/msc/internal/popmap"
)

func TestRead(t *testing.T) {
	const in = "individual\tspecies\na1\tA\na2\tA\nb1\tB\n"
	m, err := popmap.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expecting 3 entries, got %d", m.Len())
	}
	sp, ok := m.Species("a1")
	if !ok || sp != "A" {
		t.Fatalf("expecting a1 -> A, got %q, %v", sp, ok)
	}
	if _, ok := m.Species("missing"); ok {
		t.Fatalf("expecting missing sample to be absent")
	}
	samples := m.Samples()
	if len(samples) != 3 {
		t.Fatalf("expecting 3 samples, got %d", len(samples))
	}
}

func TestReadHeaderColumnsAnyOrder(t *testing.T) {
	const in = "species\tindividual\nA\ta1\n"
	m, err := popmap.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp, ok := m.Species("a1")
	if !ok || sp != "A" {
		t.Fatalf("expecting a1 -> A, got %q, %v", sp, ok)
	}
}

func TestReadRejectsMissingHeader(t *testing.T) {
	const in = "one\ttwo\na\tb\n"
	_, err := popmap.Read(strings.NewReader(in))
	if !errors.Is(err, mscerr.ErrInputParse) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputParse, err)
	}
}

func TestReadRejectsDuplicateIndividual(t *testing.T) {
	const in = "individual\tspecies\na1\tA\na1\tB\n"
	_, err := popmap.Read(strings.NewReader(in))
	if !errors.Is(err, mscerr.ErrInputSemantic) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputSemantic, err)
	}
}

func TestReadRejectsEmptyMap(t *testing.T) {
	const in = "individual\tspecies\n"
	_, err := popmap.Read(strings.NewReader(in))
	if !errors.Is(err, mscerr.ErrInputParse) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputParse, err)
	}
}
