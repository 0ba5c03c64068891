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
	"math/rand"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/value"
)

// materializedColumn is the Materialized(Column) leaf: a node backed
// directly by an on-disk Column.
type materializedColumn struct {
	c *column.Column
}

// MaterializedColumn wraps an existing Column as a leaf ColumnNode.
func MaterializedColumn(c *column.Column) ColumnNode { return &materializedColumn{c: c} }

func (m *materializedColumn) Tag() value.Tag  { return m.c.Tag() }
func (m *materializedColumn) HasSize() bool   { return true }
func (m *materializedColumn) Size() (int, error) { return m.c.Len(), nil }
func (m *materializedColumn) IsVolatile() bool { return false }

func (m *materializedColumn) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	sizes, err := resolveSizes(dop, sizes, m.c.Len())
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(sizes))
	start := 0
	r := m.c.Reader()
	for i, n := range sizes {
		cursors[i] = &columnRangeCursor{r: r, start: start, end: start + n, pos: start}
		start += n
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

// columnRangeCursor is the independent (segment,offset)-addressed
// cursor over a contiguous logical row range of a Column, as sketched
// in §4.4 for non-volatile leaves.
type columnRangeCursor struct {
	r   *column.Reader
	start, end, pos int
}

func (c *columnRangeCursor) Read(k int) ([]value.Value, error) {
	if c.pos >= c.end {
		return nil, nil
	}
	end := c.pos + k
	if end > c.end {
		end = c.end
	}
	var out []value.Value
	if err := c.r.ReadRange(c.pos, end, &out); err != nil {
		return nil, err
	}
	c.pos = end
	return out, nil
}

func (c *columnRangeCursor) Skip(k int) (int, error) {
	if c.pos >= c.end {
		return 0, nil
	}
	end := c.pos + k
	if end > c.end {
		end = c.end
	}
	n := end - c.pos
	c.pos = end
	return n, nil
}

// resolveSizes validates caller-supplied explicit cursor sizes, or
// computes an even split when sizes is nil.
func resolveSizes(dop int, sizes []int, total int) ([]int, error) {
	dop = clampDop(dop, total)
	if sizes != nil {
		if err := piter.CheckSizes(sizes, total); err != nil {
			return nil, err
		}
		return sizes, nil
	}
	return piter.SplitSizes(total, dop), nil
}

// rangeNode is the Range(start,end,reverse) synthetic integer column.
type rangeNode struct {
	start, end int64
	reverse    bool
}

// Range returns the synthetic Int64 column [start,end), optionally
// walked in reverse.
func Range(start, end int64, reverse bool) ColumnNode {
	return &rangeNode{start: start, end: end, reverse: reverse}
}

func (r *rangeNode) Tag() value.Tag    { return value.Int64 }
func (r *rangeNode) HasSize() bool     { return true }
func (r *rangeNode) IsVolatile() bool  { return false }
func (r *rangeNode) Size() (int, error) {
	if r.end < r.start {
		return 0, nil
	}
	return int(r.end - r.start), nil
}

func (r *rangeNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	total, _ := r.Size()
	sizes, err := resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(sizes))
	off := 0
	for i, n := range sizes {
		lo, hi := r.start+int64(off), r.start+int64(off+n)
		cursors[i] = &rangeCursor{lo: lo, hi: hi, pos: lo, reverse: r.reverse}
		off += n
	}
	if r.reverse {
		for i, j := 0, len(cursors)-1; i < j; i, j = i+1, j-1 {
			cursors[i], cursors[j] = cursors[j], cursors[i]
		}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type rangeCursor struct {
	lo, hi, pos int64
	reverse     bool
}

func (c *rangeCursor) Read(k int) ([]value.Value, error) {
	if c.pos >= c.hi {
		return nil, nil
	}
	n := int64(k)
	if c.pos+n > c.hi {
		n = c.hi - c.pos
	}
	out := make([]value.Value, n)
	if c.reverse {
		for i := int64(0); i < n; i++ {
			out[i] = value.NewInt(c.hi - 1 - (c.pos - c.lo) - i)
		}
	} else {
		for i := int64(0); i < n; i++ {
			out[i] = value.NewInt(c.pos + i)
		}
	}
	c.pos += n
	return out, nil
}

func (c *rangeCursor) Skip(k int) (int, error) {
	n := int64(k)
	if c.pos+n > c.hi {
		n = c.hi - c.pos
	}
	c.pos += n
	return int(n), nil
}

// constantNode is the Constant(value,len) synthetic column.
type constantNode struct {
	v   value.Value
	n   int
}

// Constant returns a column of n copies of v.
func Constant(v value.Value, n int) ColumnNode { return &constantNode{v: v, n: n} }

func (c *constantNode) Tag() value.Tag     { return c.v.Tag() }
func (c *constantNode) HasSize() bool      { return true }
func (c *constantNode) IsVolatile() bool   { return false }
func (c *constantNode) Size() (int, error) { return c.n, nil }

func (c *constantNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	sizes, err := resolveSizes(dop, sizes, c.n)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(sizes))
	for i, n := range sizes {
		cursors[i] = &constantCursor{v: c.v, remain: n}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type constantCursor struct {
	v      value.Value
	remain int
}

func (c *constantCursor) Read(k int) ([]value.Value, error) {
	if c.remain <= 0 {
		return nil, nil
	}
	if k > c.remain {
		k = c.remain
	}
	out := make([]value.Value, k)
	for i := range out {
		out[i] = c.v
	}
	c.remain -= k
	return out, nil
}

func (c *constantCursor) Skip(k int) (int, error) {
	if k > c.remain {
		k = c.remain
	}
	c.remain -= k
	return k, nil
}

// randomNode is the Random(prob,seed,len) deterministic Bernoulli
// stream: a column of Int64 0/1 values where P(1) = prob, seeded so
// that repeated materialization is byte-identical.
type randomNode struct {
	prob float64
	seed int64
	n    int
}

// Random returns a deterministic Bernoulli(prob) stream of length n.
func Random(prob float64, seed int64, n int) ColumnNode {
	return &randomNode{prob: prob, seed: seed, n: n}
}

func (r *randomNode) Tag() value.Tag     { return value.Int64 }
func (r *randomNode) HasSize() bool      { return true }
func (r *randomNode) IsVolatile() bool   { return false }
func (r *randomNode) Size() (int, error) { return r.n, nil }

func (r *randomNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	sizes, err := resolveSizes(dop, sizes, r.n)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(sizes))
	off := 0
	for i, n := range sizes {
		// Each cursor gets an independently seeded generator derived
		// from (seed, starting offset) so that the same cursor
		// boundaries always reproduce the same stream regardless of
		// which worker runs it.
		src := rand.New(rand.NewSource(r.seed ^ int64(off)*2654435761))
		cursors[i] = &randomCursor{src: src, prob: r.prob, remain: n}
		off += n
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type randomCursor struct {
	src    *rand.Rand
	prob   float64
	remain int
}

func (c *randomCursor) Read(k int) ([]value.Value, error) {
	if c.remain <= 0 {
		return nil, nil
	}
	if k > c.remain {
		k = c.remain
	}
	out := make([]value.Value, k)
	for i := range out {
		if c.src.Float64() < c.prob {
			out[i] = value.NewInt(1)
		} else {
			out[i] = value.NewInt(0)
		}
	}
	c.remain -= k
	return out, nil
}

func (c *randomCursor) Skip(k int) (int, error) {
	if k > c.remain {
		k = c.remain
	}
	for i := 0; i < k; i++ {
		c.src.Float64()
	}
	c.remain -= k
	return k, nil
}
