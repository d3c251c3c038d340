// Copyright © 2026 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package popmap reads the individual-to-species population map file:
// a two-column tab-delimited file associating each sequence label with
// the species population it belongs to (spec section 6).
package popmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/js-arias/msc/internal/mscerr"
)

// Map associates a sequence label with its species population label.
type Map struct {
	bySample map[string]string
}

// Species returns the population label for sample, or false if the
// sample is not in the map.
func (m *Map) Species(sample string) (string, bool) {
	sp, ok := m.bySample[sample]
	return sp, ok
}

// Len returns the number of samples in the map.
func (m *Map) Len() int {
	return len(m.bySample)
}

// Samples returns every individual label in the map, in no particular
// order.
func (m *Map) Samples() []string {
	out := make([]string, 0, len(m.bySample))
	for s := range m.bySample {
		out = append(out, s)
	}
	return out
}

// Read parses a population map from r. The file must have a header
// row with fields "individual" and "species" (any order, case
// insensitive); every other column is ignored.
func Read(r io.Reader) (*Map, error) {
	tr := csv.NewReader(r)
	tr.Comma = '\t'
	tr.FieldsPerRecord = -1
	tr.Comment = '#'

	header, err := tr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", mscerr.ErrInputParse, err)
	}
	indCol, spCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(h) {
		case "individual":
			indCol = i
		case "species":
			spCol = i
		}
	}
	if indCol < 0 || spCol < 0 {
		return nil, fmt.Errorf("%w: header must contain \"individual\" and \"species\" columns", mscerr.ErrInputParse)
	}

	m := &Map{bySample: make(map[string]string)}
	for {
		row, err := tr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mscerr.ErrInputParse, err)
		}
		if indCol >= len(row) || spCol >= len(row) {
			return nil, fmt.Errorf("%w: row %v missing required columns", mscerr.ErrInputParse, row)
		}
		ind, sp := row[indCol], row[spCol]
		if ind == "" || sp == "" {
			return nil, fmt.Errorf("%w: row %v has an empty individual or species field", mscerr.ErrInputSemantic, row)
		}
		if _, dup := m.bySample[ind]; dup {
			return nil, fmt.Errorf("%w: individual %q mapped more than once", mscerr.ErrInputSemantic, ind)
		}
		m.bySample[ind] = sp
	}
	if len(m.bySample) == 0 {
		return nil, fmt.Errorf("%w: population map has no entries", mscerr.ErrInputParse)
	}
	return m, nil
}
