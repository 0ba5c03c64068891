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
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/value"
)

type appendNode struct {
	l, r ColumnNode
}

// Append is the lazy concatenation of l then r (§4.3): length is
// l.len+r.len, and it is non-volatile whenever both sides are.
func Append(l, r ColumnNode) ColumnNode { return &appendNode{l: l, r: r} }

func (a *appendNode) Tag() value.Tag   { return a.l.Tag() }
func (a *appendNode) IsVolatile() bool { return a.l.IsVolatile() || a.r.IsVolatile() }
func (a *appendNode) HasSize() bool    { return a.l.HasSize() && a.r.HasSize() }

func (a *appendNode) Size() (int, error) {
	ln, err := a.l.Size()
	if err != nil {
		return 0, err
	}
	rn, err := a.r.Size()
	if err != nil {
		return 0, err
	}
	return ln + rn, nil
}

// Iter partitions the merged logical row range across the two
// children's own segmentations (§4.3): the planner walks the target
// cursor sizes in order, drawing from the left child until it is
// exhausted and then the right; at most one cursor straddles the
// boundary, built as a two-stage sub-iterator drained in order.
func (a *appendNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	total, err := a.Size()
	if err != nil {
		return nil, err
	}
	sizes, err = resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	ln, err := a.l.Size()
	if err != nil {
		return nil, err
	}
	rn, err := a.r.Size()
	if err != nil {
		return nil, err
	}

	// Build independent per-child cursors sized to exactly cover each
	// child's own row range, then parcel them out across the
	// requested output cursors in logical order.
	lSizes := splitAcross(sizes, 0, ln)
	rSizes := splitAcross(sizes, ln, ln+rn)
	lit, err := a.l.Iter(len(lSizes), lSizes)
	if err != nil {
		return nil, err
	}
	rit, err := a.r.Iter(len(rSizes), rSizes)
	if err != nil {
		return nil, err
	}

	cursors := make([]piter.ValueCursor, len(sizes))
	li, ri := 0, 0
	pos := 0
	for i, n := range sizes {
		var parts []piter.ValueCursor
		remaining := n
		for remaining > 0 && pos < ln {
			parts = append(parts, lit.Cursors[li])
			taken := lSizes[li]
			li++
			pos += taken
			remaining -= taken
		}
		for remaining > 0 && pos >= ln {
			parts = append(parts, rit.Cursors[ri])
			taken := rSizes[ri]
			ri++
			pos += taken
			remaining -= taken
		}
		cursors[i] = &concatCursor{parts: parts}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

// splitAcross intersects the global cursor boundaries implied by
// sizes with [lo,hi) and returns the resulting sub-lengths, i.e. the
// pieces of `sizes` that fall inside one child's row range.
func splitAcross(sizes []int, lo, hi int) []int {
	var out []int
	pos := 0
	for _, n := range sizes {
		segLo, segHi := pos, pos+n
		pos += n
		a, b := segLo, segHi
		if a < lo {
			a = lo
		}
		if b > hi {
			b = hi
		}
		if b > a {
			out = append(out, b-a)
		}
	}
	if len(out) == 0 {
		out = []int{0}
	}
	return out
}

// concatCursor drains a fixed, ordered sequence of sub-cursors in
// turn, exposing them as one logical cursor.
type concatCursor struct {
	parts []piter.ValueCursor
	i     int
}

func (c *concatCursor) Read(k int) ([]value.Value, error) {
	for c.i < len(c.parts) {
		vs, err := c.parts[c.i].Read(k)
		if err != nil {
			return nil, err
		}
		if len(vs) > 0 {
			return vs, nil
		}
		c.i++
	}
	return nil, nil
}

func (c *concatCursor) Skip(k int) (int, error) {
	for c.i < len(c.parts) {
		n, err := c.parts[c.i].Skip(k)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
		c.i++
	}
	return 0, nil
}

type appendRowNode struct {
	l, r RowNode
}

// AppendRows is the row-stream analogue of Append, backing
// Frame.append.
func AppendRows(l, r RowNode) RowNode { return &appendRowNode{l: l, r: r} }

func (a *appendRowNode) Tags() []value.Tag { return a.l.Tags() }
func (a *appendRowNode) IsVolatile() bool  { return a.l.IsVolatile() || a.r.IsVolatile() }
func (a *appendRowNode) HasSize() bool     { return a.l.HasSize() && a.r.HasSize() }

func (a *appendRowNode) Size() (int, error) {
	ln, err := a.l.Size()
	if err != nil {
		return 0, err
	}
	rn, err := a.r.Size()
	if err != nil {
		return 0, err
	}
	return ln + rn, nil
}

func (a *appendRowNode) Iter(dop int, sizes []int) (*piter.RowIterator, error) {
	total, err := a.Size()
	if err != nil {
		return nil, err
	}
	sizes, err = resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	ln, _ := a.l.Size()
	rn, _ := a.r.Size()
	lSizes := splitAcross(sizes, 0, ln)
	rSizes := splitAcross(sizes, ln, ln+rn)
	lit, err := a.l.Iter(len(lSizes), lSizes)
	if err != nil {
		return nil, err
	}
	rit, err := a.r.Iter(len(rSizes), rSizes)
	if err != nil {
		return nil, err
	}

	cursors := make([]piter.RowCursor, len(sizes))
	li, ri := 0, 0
	pos := 0
	for i, n := range sizes {
		var parts []piter.RowCursor
		remaining := n
		for remaining > 0 && pos < ln {
			parts = append(parts, lit.Cursors[li])
			taken := lSizes[li]
			li++
			pos += taken
			remaining -= taken
		}
		for remaining > 0 && pos >= ln {
			parts = append(parts, rit.Cursors[ri])
			taken := rSizes[ri]
			ri++
			pos += taken
			remaining -= taken
		}
		cursors[i] = &concatRowCursor{parts: parts}
	}
	return &piter.RowIterator{Cursors: cursors}, nil
}

type concatRowCursor struct {
	parts []piter.RowCursor
	i     int
}

func (c *concatRowCursor) Read(k int) ([][]value.Value, error) {
	for c.i < len(c.parts) {
		rows, err := c.parts[c.i].Read(k)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
		c.i++
	}
	return nil, nil
}

func (c *concatRowCursor) Skip(k int) (int, error) {
	for c.i < len(c.parts) {
		n, err := c.parts[c.i].Skip(k)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
		c.i++
	}
	return 0, nil
}
