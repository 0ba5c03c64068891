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

// TransformFunc maps one input Value to one output Value; it must not
// change the row count.
type TransformFunc func(value.Value) (value.Value, error)

type transformNode struct {
	child  ColumnNode
	f      TransformFunc
	outTag value.Tag
}

// Transform applies f row-wise over child, preserving length.
func Transform(child ColumnNode, f TransformFunc, outTag value.Tag) ColumnNode {
	return &transformNode{child: child, f: f, outTag: outTag}
}

func (t *transformNode) Tag() value.Tag    { return t.outTag }
func (t *transformNode) HasSize() bool     { return t.child.HasSize() }
func (t *transformNode) IsVolatile() bool  { return t.child.IsVolatile() }
func (t *transformNode) Size() (int, error) { return t.child.Size() }

func (t *transformNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	cit, err := t.child.Iter(dop, sizes)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(cit.Cursors))
	for i, c := range cit.Cursors {
		cursors[i] = &transformCursor{child: c, f: t.f}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type transformCursor struct {
	child piter.ValueCursor
	f     TransformFunc
}

func (c *transformCursor) Read(k int) ([]value.Value, error) {
	in, err := c.child.Read(k)
	if err != nil || len(in) == 0 {
		return nil, err
	}
	out := make([]value.Value, len(in))
	for i, v := range in {
		out[i], err = c.f(v)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *transformCursor) Skip(k int) (int, error) { return c.child.Skip(k) }

// BinFunc combines two aligned Values into one output Value.
type BinFunc func(l, r value.Value) (value.Value, error)

type vectorNode struct {
	l, r   ColumnNode
	f      BinFunc
	outTag value.Tag
}

// Vector applies f element-wise across l and r, which must have equal
// length.
func Vector(l, r ColumnNode, f BinFunc, outTag value.Tag) ColumnNode {
	return &vectorNode{l: l, r: r, f: f, outTag: outTag}
}

func (v *vectorNode) Tag() value.Tag   { return v.outTag }
func (v *vectorNode) IsVolatile() bool { return v.l.IsVolatile() || v.r.IsVolatile() }
func (v *vectorNode) HasSize() bool    { return v.l.HasSize() && v.r.HasSize() }

func (v *vectorNode) Size() (int, error) {
	ln, err := v.l.Size()
	if err != nil {
		return 0, err
	}
	rn, err := v.r.Size()
	if err != nil {
		return 0, err
	}
	if ln != rn {
		return 0, errs.New(errs.LengthMismatch, "Vector operands have lengths %d and %d", ln, rn)
	}
	return ln, nil
}

func (v *vectorNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	total, err := v.Size()
	if err != nil {
		return nil, err
	}
	sizes, err = resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	lit, err := v.l.Iter(len(sizes), sizes)
	if err != nil {
		return nil, err
	}
	rit, err := v.r.Iter(len(sizes), sizes)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(sizes))
	for i := range sizes {
		cursors[i] = &vectorCursor{l: lit.Cursors[i], r: rit.Cursors[i], f: v.f}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type vectorCursor struct {
	l, r piter.ValueCursor
	f    BinFunc
}

func (c *vectorCursor) Read(k int) ([]value.Value, error) {
	lv, err := c.l.Read(k)
	if err != nil {
		return nil, err
	}
	rv, err := c.r.Read(k)
	if err != nil {
		return nil, err
	}
	if len(lv) != len(rv) {
		return nil, errs.New(errs.LengthMismatch, "Vector sides produced %d and %d rows in one batch", len(lv), len(rv))
	}
	if len(lv) == 0 {
		return nil, nil
	}
	out := make([]value.Value, len(lv))
	for i := range lv {
		out[i], err = c.f(lv[i], rv[i])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *vectorCursor) Skip(k int) (int, error) {
	n, err := c.l.Skip(k)
	if err != nil {
		return 0, err
	}
	if _, err := c.r.Skip(k); err != nil {
		return 0, err
	}
	return n, nil
}

// side selects which operand of a ScalarBinOp the constant occupies.
type side int

const (
	LeftConstant  side = iota // value OP child
	RightConstant             // child OP value
)

type scalarBinOpNode struct {
	child  ColumnNode
	val    value.Value
	f      BinFunc
	s      side
	outTag value.Tag
}

// ScalarBinOp specializes Vector with one constant operand, avoiding
// materializing a Constant column of the same length as child.
func ScalarBinOp(child ColumnNode, val value.Value, f BinFunc, s side, outTag value.Tag) ColumnNode {
	return &scalarBinOpNode{child: child, val: val, f: f, s: s, outTag: outTag}
}

func (s *scalarBinOpNode) Tag() value.Tag     { return s.outTag }
func (s *scalarBinOpNode) HasSize() bool      { return s.child.HasSize() }
func (s *scalarBinOpNode) IsVolatile() bool   { return s.child.IsVolatile() }
func (s *scalarBinOpNode) Size() (int, error) { return s.child.Size() }

func (s *scalarBinOpNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	cit, err := s.child.Iter(dop, sizes)
	if err != nil {
		return nil, err
	}
	cursors := make([]piter.ValueCursor, len(cit.Cursors))
	for i, c := range cit.Cursors {
		cursors[i] = &scalarBinOpCursor{child: c, val: s.val, f: s.f, s: s.s}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

type scalarBinOpCursor struct {
	child piter.ValueCursor
	val   value.Value
	f     BinFunc
	s     side
}

func (c *scalarBinOpCursor) Read(k int) ([]value.Value, error) {
	in, err := c.child.Read(k)
	if err != nil || len(in) == 0 {
		return nil, err
	}
	out := make([]value.Value, len(in))
	for i, v := range in {
		if c.s == LeftConstant {
			out[i], err = c.f(c.val, v)
		} else {
			out[i], err = c.f(v, c.val)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *scalarBinOpCursor) Skip(k int) (int, error) { return c.child.Skip(k) }
