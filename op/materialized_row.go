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

type materializedRow struct {
	src RowSource
}

// MaterializedRow wraps a RowSource (satisfied structurally by
// frame.Frame) as a leaf RowNode.
func MaterializedRow(src RowSource) RowNode { return &materializedRow{src: src} }

func (m *materializedRow) Tags() []value.Tag {
	tags := make([]value.Tag, m.src.NumColumns())
	for i := range tags {
		tags[i] = m.src.ColumnTag(i)
	}
	return tags
}

func (m *materializedRow) HasSize() bool      { return true }
func (m *materializedRow) IsVolatile() bool   { return false }
func (m *materializedRow) Size() (int, error) { return m.src.Len(), nil }

func (m *materializedRow) Iter(dop int, sizes []int) (*piter.RowIterator, error) {
	sizes, err := resolveSizes(dop, sizes, m.src.Len())
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.RowCursor, len(sizes))
	r := m.src.RowReader()
	start := 0
	for i, n := range sizes {
		cursors[i] = &rowRangeCursor{r: r, start: start, end: start + n, pos: start}
		start += n
	}
	return &piter.RowIterator{Cursors: cursors}, nil
}

// rowRangeCursor walks a contiguous logical row range of a RowSource,
// delegating to the segment/offset addressed ReadSegment method so it
// never needs to know the RowSource's segmentation up front.
type rowRangeCursor struct {
	r               RowReaderAt
	start, end, pos int
}

func (c *rowRangeCursor) Read(k int) ([][]value.Value, error) {
	if c.pos >= c.end {
		return nil, nil
	}
	want := c.end - c.pos
	if want > k {
		want = k
	}
	seg, off := c.locateAbsolute(c.pos)
	var out [][]value.Value
	for want > 0 {
		n, err := c.r.ReadSegment(seg, off, want, &out)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			segLen := c.r.SegmentLength(seg)
			if off >= segLen {
				seg++
				off = 0
				if seg >= c.r.NumSegments() {
					break
				}
				continue
			}
			break
		}
		want -= n
		off += n
		c.pos += n
	}
	return out, nil
}

func (c *rowRangeCursor) locateAbsolute(row int) (seg, offset int) {
	acc := 0
	for i := 0; i < c.r.NumSegments(); i++ {
		l := c.r.SegmentLength(i)
		if row < acc+l {
			return i, row - acc
		}
		acc += l
	}
	return c.r.NumSegments() - 1, 0
}

func (c *rowRangeCursor) Skip(k int) (int, error) {
	rows, err := c.Read(k)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
