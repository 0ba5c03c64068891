// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package piter turns an operator (sub)tree into N independent,
// equal-ish-length segment cursors that can be advanced without
// coordination (§4.4). It knows nothing about the operator tree's
// node types; op constructs cursors that satisfy the interfaces here
// and hands them to an Iterator.
package piter

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// ValueCursor is one parallel reader over a single-column stream.
type ValueCursor interface {
	// Read returns between 0 and k values, 0 only at EOF.
	Read(k int) ([]value.Value, error)
	// Skip discards up to k values and reports how many were
	// actually discarded (< k only at EOF).
	Skip(k int) (int, error)
}

// RowCursor is one parallel reader over a multi-column (row) stream.
type RowCursor interface {
	Read(k int) ([][]value.Value, error)
	Skip(k int) (int, error)
}

// ValueIterator is a set of independent cursors over a single-column
// operator. Concatenating Cursors[0].Read(...) through
// Cursors[N-1].Read(...) in order yields the operator's logical row
// order.
type ValueIterator struct {
	Cursors []ValueCursor
}

// NumCursors returns the degree of parallelism actually achieved.
func (it *ValueIterator) NumCursors() int { return len(it.Cursors) }

// RowIterator is the multi-column analogue of ValueIterator.
type RowIterator struct {
	Cursors []RowCursor
}

func (it *RowIterator) NumCursors() int { return len(it.Cursors) }

// SplitSizes partitions `total` rows into `dop` parts that differ in
// length by at most one row, in the order the parts should be
// assigned to cursors 0..dop-1. Used by non-volatile nodes, whose
// per-cursor lengths must be known and honored exactly.
func SplitSizes(total, dop int) []int {
	if dop < 1 {
		dop = 1
	}
	sizes := make([]int, dop)
	base := total / dop
	rem := total % dop
	for i := 0; i < dop; i++ {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// CheckSizes validates caller-supplied explicit per-cursor lengths
// against the node's known total size.
func CheckSizes(sizes []int, total int) error {
	sum := 0
	for _, s := range sizes {
		if s < 0 {
			return errs.New(errs.InvalidArgument, "piter: negative cursor size %d", s)
		}
		sum += s
	}
	if sum != total {
		return errs.New(errs.InvalidArgument, "piter: cursor sizes sum to %d, want %d", sum, total)
	}
	return nil
}

// DrainValues reads all rows off a ValueCursor sequentially. Useful
// for materializing a single cursor's share of a node's output.
func DrainValues(c ValueCursor, batch int, emit func(value.Value) error) error {
	for {
		vs, err := c.Read(batch)
		if err != nil {
			return err
		}
		if len(vs) == 0 {
			return nil
		}
		for _, v := range vs {
			if err := emit(v); err != nil {
				return err
			}
		}
	}
}

// DrainRows reads all rows off a RowCursor sequentially.
func DrainRows(c RowCursor, batch int, emit func([]value.Value) error) error {
	for {
		rows, err := c.Read(batch)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, r := range rows {
			if err := emit(r); err != nil {
				return err
			}
		}
	}
}
