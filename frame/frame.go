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

// Package frame implements Frame: an ordered list of (name, Column)
// pairs sharing one row count (§4.2). Frame satisfies op.RowSource so
// op's Materialized-row leaf and Append can operate on it without op
// importing this package.
package frame

import (
	"fmt"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/op"
	"github.com/cstorelabs/cstore/value"
)

// Frame is an immutable-schema view over a fixed set of Columns.
// Mutating operations (AddColumn, RemoveColumn, ...) return a new
// Frame sharing the underlying Columns; the receiver is unaffected.
type Frame struct {
	names   []string
	columns []*column.Column
}

// New builds a Frame from columns, which must all share the same
// length.
func New(names []string, columns []*column.Column) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, errs.New(errs.SchemaMismatch, "frame: %d names for %d columns", len(names), len(columns))
	}
	if err := checkUniqueNames(names); err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		n := columns[0].Len()
		for _, c := range columns[1:] {
			if c.Len() != n {
				return nil, errs.New(errs.LengthMismatch, "frame: columns have differing lengths")
			}
		}
	}
	return &Frame{names: append([]string(nil), names...), columns: append([]*column.Column(nil), columns...)}, nil
}

func checkUniqueNames(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return errs.New(errs.DuplicateName, "frame: duplicate column name %q", n)
		}
		seen[n] = true
	}
	return nil
}

// Len returns the Frame's row count (0 for a Frame with no columns).
func (f *Frame) Len() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].Len()
}

// NumColumns, ColumnTag, ReadRows, RowReader implement op.RowSource.
func (f *Frame) NumColumns() int { return len(f.columns) }

func (f *Frame) ColumnTag(i int) value.Tag { return f.columns[i].Tag() }

func (f *Frame) ReadRows(start, end int, out *[][]value.Value) error {
	*out = (*out)[:0]
	if start < 0 || end > f.Len() || start > end {
		return errs.New(errs.OutOfRange, "frame: range [%d,%d) out of bounds for length %d", start, end, f.Len())
	}
	readers := make([]*column.Reader, len(f.columns))
	cols := make([][]value.Value, len(f.columns))
	for i, c := range f.columns {
		readers[i] = c.Reader()
		if err := readers[i].ReadRange(start, end, &cols[i]); err != nil {
			return err
		}
	}
	n := end - start
	*out = make([][]value.Value, n)
	for r := 0; r < n; r++ {
		row := make([]value.Value, len(f.columns))
		for c := range f.columns {
			row[c] = cols[c][r]
		}
		(*out)[r] = row
	}
	return nil
}

func (f *Frame) RowReader() op.RowReaderAt { return &rowReaderAt{f: f} }

// ColumnNames returns the Frame's column names in public order (§4.2:
// "column order is the public contract").
func (f *Frame) ColumnNames() []string { return append([]string(nil), f.names...) }

// Column returns the Column backing the i'th schema position.
func (f *Frame) Column(i int) *column.Column { return f.columns[i] }

func (f *Frame) indexOf(name string) int {
	for i, n := range f.names {
		if n == name {
			return i
		}
	}
	return -1
}

// AsRowNode exposes the Frame as a lazy op.RowNode, the entry point
// for building further operator-tree expressions (Project, Append,
// FlatMap, ...) over it.
func (f *Frame) AsRowNode() op.RowNode { return op.MaterializedRow(f) }

// rowReaderAt adapts Frame to op.RowReaderAt. Segment boundaries come
// from the first column; every column is then read at the same
// absolute row range, so columns with differing segmentation (such as
// one added with AddColumn) stay row-aligned.
type rowReaderAt struct {
	f       *Frame
	readers []*column.Reader
}

func (r *rowReaderAt) ensure() {
	if r.readers == nil {
		r.readers = make([]*column.Reader, len(r.f.columns))
		for i, c := range r.f.columns {
			r.readers[i] = c.Reader()
		}
	}
}

func (r *rowReaderAt) NumSegments() int {
	if len(r.f.columns) == 0 {
		return 1
	}
	return r.f.columns[0].NumSegments()
}

func (r *rowReaderAt) SegmentLength(i int) int {
	if len(r.f.columns) == 0 {
		return 0
	}
	return r.f.columns[0].SegmentLength(i)
}

func (r *rowReaderAt) ReadSegment(seg, offset, n int, out *[][]value.Value) (int, error) {
	r.ensure()
	segLen := r.SegmentLength(seg)
	if offset >= segLen {
		return 0, nil
	}
	if offset+n > segLen {
		n = segLen - offset
	}
	cols := make([][]value.Value, len(r.f.columns))
	absStart := absoluteOffset(r.f.columns[0], seg, offset)
	for i := range r.f.columns {
		if err := r.readers[i].ReadRange(absStart, absStart+n, &cols[i]); err != nil {
			return 0, err
		}
	}
	for row := 0; row < n; row++ {
		rowVals := make([]value.Value, len(cols))
		for c := range cols {
			rowVals[c] = cols[c][row]
		}
		*out = append(*out, rowVals)
	}
	return n, nil
}

// absoluteOffset converts a (segment, within-segment offset) pair to
// an absolute row index for Column c.
func absoluteOffset(c *column.Column, seg, offset int) int {
	abs := 0
	for i := 0; i < seg; i++ {
		abs += c.SegmentLength(i)
	}
	return abs + offset
}

func (f *Frame) String() string {
	return fmt.Sprintf("Frame(columns=%v, len=%d)", f.names, f.Len())
}
