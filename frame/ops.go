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

package frame

import (
	"os"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/ints"
	"github.com/cstorelabs/cstore/op"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// tempColumnDir allocates a scratch directory for one Column produced
// by an eager materialization path (Head/Tail/CopyRange). Sort
// partitions use pool.Registry instead.
func tempColumnDir() (string, error) {
	return os.MkdirTemp("", "cstore-col-")
}

// Append returns a new Frame whose length is f.Len()+other.Len();
// requires identical schema (names in order and tags element-wise).
// The result is materialized immediately into dir using the lazy
// op.AppendRows concat operator (§4.2, §4.3) driven by p.
func (f *Frame) Append(other *Frame, dir string, segments int, p *pool.Pool, tok *pool.Token) (*Frame, error) {
	if !schemaEqual(f, other) {
		return nil, errs.New(errs.SchemaMismatch, "frame: append requires identical schema")
	}
	node := op.AppendRows(f.AsRowNode(), other.AsRowNode())
	w, err := OpenForWrite(dir, f.names, tagsOf(f.columns), segments)
	if err != nil {
		return nil, err
	}
	if err := op.ForceRows(node, w, segments, p, tok); err != nil {
		return nil, err
	}
	return w.Close()
}

func tagsOf(cols []*column.Column) []value.Tag {
	tags := make([]value.Tag, len(cols))
	for i, c := range cols {
		tags[i] = c.Tag()
	}
	return tags
}

// sliceMaterialize walks every column independently at the same
// start/step/end (column order, and hence row alignment, is preserved
// since every column is sliced identically), reading each row directly
// via Column.Reader.ReadRange rather than through the operator tree,
// since this slice is always eagerly materialized in full.
func (f *Frame) sliceMaterialize(start, step, end int) (*Frame, error) {
	if step == 0 {
		return nil, errs.New(errs.InvalidArgument, "frame: step must not be zero")
	}
	n := 0
	if step > 0 {
		if end > start {
			n = (end - start + step - 1) / step
		}
	} else if start > end {
		n = (start - end + (-step) - 1) / (-step)
	}
	cols := make([][]value.Value, len(f.columns))
	for i, c := range f.columns {
		r := c.Reader()
		out := make([]value.Value, 0, n)
		pos := start
		for (step > 0 && pos < end) || (step < 0 && pos > end) {
			var one []value.Value
			if err := r.ReadRange(pos, pos+1, &one); err != nil {
				return nil, err
			}
			out = append(out, one[0])
			pos += step
		}
		cols[i] = out
	}
	return f.buildFromValues(cols, n)
}

// buildFromValues materializes an in-memory column set into fresh,
// single-segment on-disk Columns held in a throwaway temp directory,
// since Frame's invariant is that its Columns are always backed by a
// real Column on disk.
func (f *Frame) buildFromValues(cols [][]value.Value, n int) (*Frame, error) {
	names := f.ColumnNames()
	outCols := make([]*column.Column, len(cols))
	for i, vs := range cols {
		dir, err := tempColumnDir()
		if err != nil {
			return nil, err
		}
		w, err := column.OpenForWrite(dir, f.columns[i].Tag(), 1)
		if err != nil {
			return nil, err
		}
		sw := w.WriterFor(0)
		for _, v := range vs {
			if err := sw.Write(v); err != nil {
				return nil, err
			}
		}
		c, err := w.Close()
		if err != nil {
			return nil, err
		}
		outCols[i] = c
	}
	return New(names, outCols)
}

// Head returns the first n rows as a new materialized Frame.
func (f *Frame) Head(n int) (*Frame, error) {
	n = ints.Min(n, f.Len())
	return f.sliceMaterialize(0, 1, n)
}

// Tail returns the last n rows as a new materialized Frame.
func (f *Frame) Tail(n int) (*Frame, error) {
	total := f.Len()
	n = ints.Min(n, total)
	return f.sliceMaterialize(total-n, 1, total)
}

// CopyRange materializes exactly the rows at positions
// start, start+step, ..., < end; fails with InvalidArgument if step=0
// (§4.8).
func (f *Frame) CopyRange(start, step, end int) (*Frame, error) {
	return f.sliceMaterialize(start, step, end)
}
