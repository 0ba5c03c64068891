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

package op

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/value"
)

const filterBatch = 1024

type logicalFilterNode struct {
	values, mask ColumnNode
}

// LogicalFilter keeps values[i] wherever mask[i] is non-zero/non-empty
// (§4.8). It is volatile: its length is unknown before materialization.
func LogicalFilter(values, mask ColumnNode) ColumnNode {
	return &logicalFilterNode{values: values, mask: mask}
}

func (f *logicalFilterNode) Tag() value.Tag      { return f.values.Tag() }
func (f *logicalFilterNode) HasSize() bool       { return false }
func (f *logicalFilterNode) IsVolatile() bool    { return true }
func (f *logicalFilterNode) Size() (int, error)  { return 0, sizeUnknown() }

func (f *logicalFilterNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	dop = clampDop(dop, -1)
	vit, err := f.values.Iter(dop, nil)
	if err != nil {
		return nil, err
	}
	mit, err := f.mask.Iter(dop, nil)
	if err != nil {
		return nil, err
	}
	if len(vit.Cursors) != len(mit.Cursors) {
		return nil, errs.New(errs.LengthMismatch, "LogicalFilter sides split into %d and %d cursors", len(vit.Cursors), len(mit.Cursors))
	}
	cursors := make([]piter.ValueCursor, len(vit.Cursors))
	for i := range vit.Cursors {
		cursors[i] = &filterCursor{v: vit.Cursors[i], m: mit.Cursors[i]}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

// filterCursor pulls matched (value,mask) batches from the mirrored
// cursors on both sides and buffers any kept rows beyond what the
// caller asked for forward to the next Read call.
type filterCursor struct {
	v, m  piter.ValueCursor
	carry []value.Value
	eof   bool
}

func (c *filterCursor) Read(k int) ([]value.Value, error) {
	out := c.carry
	c.carry = nil
	for len(out) < k && !c.eof {
		vs, err := c.v.Read(filterBatch)
		if err != nil {
			return nil, err
		}
		ms, err := c.m.Read(filterBatch)
		if err != nil {
			return nil, err
		}
		if len(vs) != len(ms) {
			return nil, errs.New(errs.LengthMismatch, "LogicalFilter batch sizes %d and %d disagree", len(vs), len(ms))
		}
		if len(vs) == 0 {
			c.eof = true
			break
		}
		for i, v := range vs {
			if !ms[i].IsFalsy() {
				out = append(out, v)
			}
		}
	}
	if len(out) > k {
		c.carry = append(c.carry, out[k:]...)
		out = out[:k]
	}
	return out, nil
}

func (c *filterCursor) Skip(k int) (int, error) {
	vs, err := c.Read(k)
	if err != nil {
		return 0, err
	}
	return len(vs), nil
}

// LambdaFunc computes a mask value from one input value, e.g. a
// predicate compiled from a query expression.
type LambdaFunc func(value.Value) (value.Value, error)

// LambdaFilter is LogicalFilter with the mask computed on the fly by
// λ rather than read from a materialized column.
func LambdaFilter(child ColumnNode, lambda LambdaFunc, seed int64) ColumnNode {
	mask := Transform(child, TransformFunc(lambda), value.Int64)
	return LogicalFilter(child, mask)
}

// FlatMapFunc expands one input row into zero or more output rows.
type FlatMapFunc func(row []value.Value) ([][]value.Value, error)

type flatMapNode struct {
	child  RowNode
	lambda FlatMapFunc
	tags   []value.Tag
}

// FlatMap applies λ to every row of child, concatenating its outputs.
// It is volatile since the output row count is unknown in advance.
func FlatMap(child RowNode, lambda FlatMapFunc, outTags []value.Tag) RowNode {
	return &flatMapNode{child: child, lambda: lambda, tags: outTags}
}

func (f *flatMapNode) Tags() []value.Tag    { return f.tags }
func (f *flatMapNode) HasSize() bool        { return false }
func (f *flatMapNode) IsVolatile() bool     { return true }
func (f *flatMapNode) Size() (int, error)   { return 0, sizeUnknown() }

func (f *flatMapNode) Iter(dop int, sizes []int) (*piter.RowIterator, error) {
	dop = clampDop(dop, -1)
	cit, err := f.child.Iter(dop, nil)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.RowCursor, len(cit.Cursors))
	for i, c := range cit.Cursors {
		cursors[i] = &flatMapCursor{child: c, lambda: f.lambda}
	}
	return &piter.RowIterator{Cursors: cursors}, nil
}

type flatMapCursor struct {
	child  piter.RowCursor
	lambda FlatMapFunc
	carry  [][]value.Value
	eof    bool
}

func (c *flatMapCursor) Read(k int) ([][]value.Value, error) {
	out := c.carry
	c.carry = nil
	for len(out) < k && !c.eof {
		rows, err := c.child.Read(filterBatch)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			c.eof = true
			break
		}
		for _, row := range rows {
			expanded, err := c.lambda(row)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
		}
	}
	if len(out) > k {
		c.carry = append(c.carry, out[k:]...)
		out = out[:k]
	}
	return out, nil
}

func (c *flatMapCursor) Skip(k int) (int, error) {
	rows, err := c.Read(k)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
