// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package phylip reads multi-locus alignments in the classic
// sequential PHYLIP format: one or more blocks, each a header line
// "<ntax> <nsites>" followed by one line per sequence,
// "<label> <sequence>", blocks separated by blank lines.
package phylip

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/js-arias/msc/internal/fasta"
	"github.com/js-arias/msc/internal/mscerr"
)

// ReadAll parses every locus block in r, returning one []fasta.Record
// per locus in file order.
func ReadAll(r io.Reader) ([][]fasta.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var loci [][]fasta.Record
	for {
		recs, ok, err := readBlock(sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		loci = append(loci, recs)
	}
	if len(loci) == 0 {
		return nil, fmt.Errorf("%w: empty phylip file", mscerr.ErrInputParse)
	}
	return loci, nil
}

// Read parses the first (and, for a single-locus file, only) block in
// r, returning the same Record type fasta.Read uses.
func Read(r io.Reader) ([]fasta.Record, error) {
	loci, err := ReadAll(r)
	if err != nil {
		return nil, err
	}
	return loci[0], nil
}

// readBlock reads one locus block, or reports ok == false at EOF.
func readBlock(sc *bufio.Scanner) ([]fasta.Record, bool, error) {
	var header string
	for {
		if !sc.Scan() {
			return nil, false, sc.Err()
		}
		header = strings.TrimSpace(sc.Text())
		if header != "" {
			break
		}
	}

	fields := strings.Fields(header)
	if len(fields) != 2 {
		return nil, false, fmt.Errorf("%w: expecting \"<ntax> <nsites>\" header, got %q", mscerr.ErrInputParse, header)
	}
	ntax, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid taxon count %q", mscerr.ErrInputParse, fields[0])
	}
	nsites, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid site count %q", mscerr.ErrInputParse, fields[1])
	}

	recs := make([]fasta.Record, 0, ntax)
	seen := make(map[string]bool)
	for len(recs) < ntax {
		if !sc.Scan() {
			return nil, false, fmt.Errorf("%w: expecting %d sequences, found %d", mscerr.ErrInputSemantic, ntax, len(recs))
		}
		line := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fs := strings.SplitN(strings.TrimLeft(line, " "), " ", 2)
		if len(fs) != 2 {
			return nil, false, fmt.Errorf("%w: expecting \"<label> <sequence>\", got %q", mscerr.ErrInputParse, line)
		}
		label := strings.TrimSpace(fs[0])
		seq := strings.Join(strings.Fields(fs[1]), "")
		if seen[label] {
			return nil, false, fmt.Errorf("%w: duplicate sequence label %q", mscerr.ErrInputSemantic, label)
		}
		seen[label] = true
		recs = append(recs, fasta.Record{Label: label, Sequence: seq})
	}

	for _, rec := range recs {
		if len(rec.Sequence) != nsites {
			return nil, false, fmt.Errorf("%w: sequence %q has length %d, header declares %d", mscerr.ErrAlignment, rec.Label, len(rec.Sequence), nsites)
		}
	}
	return recs, true, nil
}
