// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package newick_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/js-arias/msc/internal/mscerr"
	"github.com/js-arias/msc/internal/newick"
)

func TestReadBinary(t *testing.T) {
	root, err := newick.Read(strings.NewReader("((A,B),C);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.IsTip() || len(root.Children) != 2 {
		t.Fatalf("root should have two children, got %d", len(root.Children))
	}
	left := root.Children[0]
	if left.IsTip() || len(left.Children) != 2 {
		t.Fatalf("expecting an internal left child")
	}
	if left.Children[0].Label != "A" || left.Children[1].Label != "B" {
		t.Fatalf("unexpected tip labels: %q, %q", left.Children[0].Label, left.Children[1].Label)
	}
	if root.Children[1].Label != "C" {
		t.Fatalf("unexpected tip label: %q", root.Children[1].Label)
	}
}

func TestReadDiscardsBranchLengths(t *testing.T) {
	root, err := newick.Read(strings.NewReader("((A:0.1,B:0.2):0.3,C:0.4):0.0;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Children[1].Label != "C" {
		t.Fatalf("branch lengths should be discarded without breaking topology")
	}
}

func TestReadRejectsPolytomy(t *testing.T) {
	_, err := newick.Read(strings.NewReader("(A,B,C);"))
	if !errors.Is(err, mscerr.ErrInputSemantic) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputSemantic, err)
	}
}

func TestReadRejectsDuplicateLabel(t *testing.T) {
	_, err := newick.Read(strings.NewReader("((A,A),C);"))
	if !errors.Is(err, mscerr.ErrInputSemantic) {
		t.Fatalf("expecting %v, got %v", mscerr.ErrInputSemantic, err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	root, err := newick.Read(strings.NewReader("((A,B),C);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var buf bytes.Buffer
	if err := newick.Write(&buf, root); err != nil {
		t.Fatalf("Write: %v", err)
	}
	again, err := newick.Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("re-reading written tree: %v", err)
	}
	if again.Children[1].Label != "C" {
		t.Fatalf("round trip lost topology: %q", buf.String())
	}
}

func TestReadUnderscoreIsSpace(t *testing.T) {
	root, err := newick.Read(strings.NewReader("(Homo_sapiens,Pan_troglodytes);"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if root.Children[0].Label != "Homo sapiens" {
		t.Fatalf("expecting underscore to become a space, got %q", root.Children[0].Label)
	}
}
