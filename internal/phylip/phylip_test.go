// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package phylip_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/msc/internal/mscerr"
	"github.com/js-arias/msc/internal/phylip"
)

func TestReadAllMultiLocus(t *testing.T) {
	const in = `2 4
a1 ACGT
a2 ACGA

2 4
a1 ACGT
a2 TTTT
`
	loci, err := phylip.ReadAll(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loci) != 2 {
		t.Fatalf("expecting 2 loci, got %d", len(loci))
	}
	if loci[0][0].Label != "a1" || loci[0][0].Sequence != "ACGT" {
		t.Fatalf("unexpected first record: %+v", loci[0][0])
	}
	if loci[1][1].Sequence != "TTTT" {
		t.Fatalf("unexpected second locus record: %+v", loci[1][1])
	}
}

func TestReadSingleLocus(t *testing.T) {
	const in = "2 4\na1 ACGT\na2 ACGA\n"
	recs, err := phylip.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expecting 2 records, got %d", len(recs))
	}
}

func TestReadRejectsBadHeader(t *testing.T) {
	_, err := phylip.ReadAll(strings.NewReader("not-a-header\na1 ACGT\n"))
	if !errors.Is(err, mscerr.ErrInputParse) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputParse, err)
	}
}

func TestReadRejectsLengthMismatch(t *testing.T) {
	const in = "2 4\na1 ACGT\na2 ACG\n"
	_, err := phylip.ReadAll(strings.NewReader(in))
	if !errors.Is(err, mscerr.ErrAlignment) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrAlignment, err)
	}
}

func TestReadRejectsDuplicateLabel(t *testing.T) {
	const in = "2 4\na1 ACGT\na1 ACGA\n"
	_, err := phylip.ReadAll(strings.NewReader(in))
	if !errors.Is(err, mscerr.ErrInputSemantic) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputSemantic, err)
	}
}
