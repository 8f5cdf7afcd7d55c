// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package cibar

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// An Observation is a single measured value of one group within one
// category.
type Observation struct {
	Category string
	Group    string
	Value    float64
}

// A Table is an ordered, immutable sequence of observations. Several
// observations may share a (category, group) pair; they are treated as
// replicate measurements.
type Table struct {
	obs []Observation
}

// NewTable returns a table holding a copy of obs.
func NewTable(obs []Observation) *Table {
	return &Table{obs: append([]Observation(nil), obs...)}
}

// Len returns the number of observations in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.obs)
}

// At returns the i'th observation.
func (t *Table) At(i int) Observation {
	return t.obs[i]
}

// Observations returns a copy of the table's observations.
func (t *Table) Observations() []Observation {
	if t == nil {
		return nil
	}
	return append([]Observation(nil), t.obs...)
}

// Fields names the header columns that hold each part of an observation.
type Fields struct {
	Category string
	Group    string
	Value    string

	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

func (f Fields) validate() error {
	names := map[string]string{}
	for _, p := range []struct{ role, name string }{
		{"category", f.Category},
		{"group", f.Group},
		{"value", f.Value},
	} {
		if p.name == "" {
			return fmt.Errorf("%w: %s field name is empty", ErrConfig, p.role)
		}
		if other, ok := names[p.name]; ok {
			return fmt.Errorf("%w: %s and %s fields are both %q", ErrConfig, other, p.role, p.name)
		}
		names[p.name] = p.role
	}
	return nil
}

// LoadTable reads a delimited file with a header row from path.
// See [ReadTable].
func LoadTable(path string, fields Fields) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	t, err := ReadTable(f, fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadTable reads a header row followed by data rows from r and returns the
// observations they describe. Columns other than the three named in fields
// are ignored. A header without data rows yields an empty table.
func ReadTable(r io.Reader, fields Fields) (*Table, error) {
	if err := fields.validate(); err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	if bom, _ := br.Peek(len(utf8BOM)); string(bom) == utf8BOM {
		br.Discard(len(utf8BOM)) //nolint:errcheck
	}

	cr := csv.NewReader(br)
	if fields.Comma != 0 {
		cr.Comma = fields.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrConfig)
	}
	if err != nil {
		return nil, readError(err)
	}

	column := func(name string) (int, error) {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i, nil
			}
		}
		return -1, fmt.Errorf("%w: column %q not found in header %q", ErrConfig, name, header)
	}
	catCol, err := column(fields.Category)
	if err != nil {
		return nil, err
	}
	groupCol, err := column(fields.Group)
	if err != nil {
		return nil, err
	}
	valueCol, err := column(fields.Value)
	if err != nil {
		return nil, err
	}

	t := &Table{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := cr.FieldPos(0)
		cell := strings.TrimSpace(rec[valueCol])
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: line %d: %s %q is not a number", ErrData, line, fields.Value, cell)
		}
		t.obs = append(t.obs, Observation{
			Category: strings.TrimSpace(rec[catCol]),
			Group:    strings.TrimSpace(rec[groupCol]),
			Value:    v,
		})
	}
	return t, nil
}

// Parse errors from the csv reader are data problems; anything else came
// from the underlying reader.
func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", ErrData, err)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}
