// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fasta reads per-locus sequence alignments in FASTA format:
// one file per locus, each record already aligned to the same length.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/msc/internal/mscerr"
)

// Record is one aligned sequence.
type Record struct {
	Label    string
	Sequence string
}

// Read parses every record in r. It rejects duplicate labels and
// sequences whose length does not match the first record's (spec
// section 7, alignment errors).
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var recs []Record
	var cur *strings.Builder
	var label string
	seen := make(map[string]bool)

	flush := func() error {
		if cur == nil {
			return nil
		}
		if seen[label] {
			return fmt.Errorf("%w: duplicate sequence label %q", mscerr.ErrInputSemantic, label)
		}
		seen[label] = true
		recs = append(recs, Record{Label: label, Sequence: cur.String()})
		return nil
	}

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			label = strings.TrimSpace(strings.Fields(line[1:])[0])
			if label == "" {
				return nil, fmt.Errorf("%w: unnamed fasta record", mscerr.ErrInputParse)
			}
			cur = &strings.Builder{}
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: sequence data before first header", mscerr.ErrInputParse)
		}
		cur.WriteString(strings.Join(strings.Fields(line), ""))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", mscerr.ErrResource, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: empty fasta file", mscerr.ErrInputParse)
	}

	n := len(recs[0].Sequence)
	for _, rec := range recs {
		if len(rec.Sequence) != n {
			return nil, fmt.Errorf("%w: sequence %q has length %d, expected %d", mscerr.ErrAlignment, rec.Label, len(rec.Sequence), n)
		}
	}
	return recs, nil
}
