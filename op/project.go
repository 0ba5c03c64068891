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

type projectNode struct {
	child   RowNode
	indices []int
	tags    []value.Tag
}

// Project selects a subset (and/or reordering) of child's columns by
// index.
func Project(child RowNode, indices []int) RowNode {
	childTags := child.Tags()
	tags := make([]value.Tag, len(indices))
	for i, idx := range indices {
		tags[i] = childTags[idx]
	}
	return &projectNode{child: child, indices: indices, tags: tags}
}

func (p *projectNode) Tags() []value.Tag   { return p.tags }
func (p *projectNode) HasSize() bool       { return p.child.HasSize() }
func (p *projectNode) IsVolatile() bool    { return p.child.IsVolatile() }
func (p *projectNode) Size() (int, error)  { return p.child.Size() }

func (p *projectNode) Iter(dop int, sizes []int) (*piter.RowIterator, error) {
	cit, err := p.child.Iter(dop, sizes)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.RowCursor, len(cit.Cursors))
	for i, c := range cit.Cursors {
		cursors[i] = &projectCursor{child: c, indices: p.indices}
	}
	return &piter.RowIterator{Cursors: cursors}, nil
}

type projectCursor struct {
	child   piter.RowCursor
	indices []int
}

func (c *projectCursor) Read(k int) ([][]value.Value, error) {
	rows, err := c.child.Read(k)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	out := make([][]value.Value, len(rows))
	for i, row := range rows {
		projected := make([]value.Value, len(c.indices))
		for j, idx := range c.indices {
			projected[j] = row[idx]
		}
		out[i] = projected
	}
	return out, nil
}

func (c *projectCursor) Skip(k int) (int, error) { return c.child.Skip(k) }

type zipNode struct {
	cols []ColumnNode
}

// ZipColumns turns k equal-length column streams into one row stream,
// column order matching argument order.
func ZipColumns(cols ...ColumnNode) RowNode { return &zipNode{cols: cols} }

func (z *zipNode) Tags() []value.Tag {
	tags := make([]value.Tag, len(z.cols))
	for i, c := range z.cols {
		tags[i] = c.Tag()
	}
	return tags
}

func (z *zipNode) HasSize() bool {
	for _, c := range z.cols {
		if !c.HasSize() {
			return false
		}
	}
	return true
}

func (z *zipNode) IsVolatile() bool {
	for _, c := range z.cols {
		if c.IsVolatile() {
			return true
		}
	}
	return false
}

func (z *zipNode) Size() (int, error) { return z.cols[0].Size() }

func (z *zipNode) Iter(dop int, sizes []int) (*piter.RowIterator, error) {
	total, err := z.Size()
	if err != nil {
		return nil, err
	}
	sizes, err = resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	colIters := make([]*piter.ValueIterator, len(z.cols))
	for i, c := range z.cols {
		it, err := c.Iter(len(sizes), sizes)
		if err != nil {
			return nil, err
		}
		colIters[i] = it
	}
	cursors := make([]piter.RowCursor, len(sizes))
	for i := range sizes {
		colCursors := make([]piter.ValueCursor, len(z.cols))
		for j := range z.cols {
			colCursors[j] = colIters[j].Cursors[i]
		}
		cursors[i] = &zipCursor{cols: colCursors}
	}
	return &piter.RowIterator{Cursors: cursors}, nil
}

type zipCursor struct {
	cols []piter.ValueCursor
}

func (c *zipCursor) Read(k int) ([][]value.Value, error) {
	cols := make([][]value.Value, len(c.cols))
	n := -1
	for i, cur := range c.cols {
		vs, err := cur.Read(k)
		if err != nil {
			return nil, err
		}
		cols[i] = vs
		if n == -1 {
			n = len(vs)
		}
	}
	if n <= 0 {
		return nil, nil
	}
	rows := make([][]value.Value, n)
	for r := 0; r < n; r++ {
		row := make([]value.Value, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

func (c *zipCursor) Skip(k int) (int, error) {
	n := 0
	for _, cur := range c.cols {
		var err error
		n, err = cur.Skip(k)
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}
