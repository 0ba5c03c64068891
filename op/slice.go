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

type sliceNode struct {
	child            ColumnNode
	start, step, end int
}

// SliceStep materializes exactly the rows at positions
// start, start+step, ... < end (§4.8's CopyRange), failing with
// InvalidArgument when step is zero or negative: the underlying
// cursor (sliceSource) only ever walks its child forward, so a
// reversed stride is rejected here rather than silently read in the
// wrong direction.
func SliceStep(child ColumnNode, start, step, end int) (ColumnNode, error) {
	if step <= 0 {
		return nil, errs.New(errs.InvalidArgument, "CopyRange: step must be positive")
	}
	return &sliceNode{child: child, start: start, step: step, end: end}, nil
}

func (s *sliceNode) Tag() value.Tag   { return s.child.Tag() }
func (s *sliceNode) HasSize() bool    { return true }
func (s *sliceNode) IsVolatile() bool { return false }

func (s *sliceNode) Size() (int, error) {
	if s.end <= s.start {
		return 0, nil
	}
	return (s.end - s.start + s.step - 1) / s.step, nil
}

func (s *sliceNode) Iter(dop int, sizes []int) (*piter.ValueIterator, error) {
	total, _ := s.Size()
	sizes, err := resolveSizes(dop, sizes, total)
	if err != nil {
		return nil, err
	}
	cit, err := s.child.Iter(1, nil)
	if err != nil {
		return nil, err
	}
	// A single underlying drain cursor is shared across the requested
	// output cursors in logical order, since a strided read cannot be
	// segment-aligned in general.
	shared := &sliceSource{child: cit.Cursors[0], step: s.step, pos: s.start}
	cursors := make([]piter.ValueCursor, len(sizes))
	for i, n := range sizes {
		cursors[i] = &sliceCursor{src: shared, remain: n}
	}
	return &piter.ValueIterator{Cursors: cursors}, nil
}

// sliceSource is the single strided reader shared by every output
// cursor of a sliceNode; cursors drain it in order, so it needs no
// locking beyond the sequential-use contract parallel cursors already
// have.
type sliceSource struct {
	child piter.ValueCursor
	step  int
	pos   int // absolute index of the next element readOne should return
	idx   int // absolute index of the next element next() will yield
	at    int
	buf   []value.Value
}

// next returns the next element of the underlying child stream in
// absolute order, pulling fresh batches as needed.
func (s *sliceSource) next() (value.Value, bool, error) {
	for len(s.buf) == 0 {
		vs, err := s.child.Read(4096)
		if err != nil {
			return value.Value{}, false, err
		}
		if len(vs) == 0 {
			return value.Value{}, false, nil
		}
		s.buf = vs
		s.at = 0
	}
	v := s.buf[s.at]
	s.at++
	s.idx++
	if s.at >= len(s.buf) {
		s.buf = nil
	}
	return v, true, nil
}

// readOne discards elements until the child stream reaches s.pos,
// returns that element, and advances s.pos by step.
func (s *sliceSource) readOne() (value.Value, bool, error) {
	for s.idx < s.pos {
		if _, ok, err := s.next(); err != nil {
			return value.Value{}, false, err
		} else if !ok {
			return value.Value{}, false, nil
		}
	}
	v, ok, err := s.next()
	if err != nil || !ok {
		return value.Value{}, false, err
	}
	s.pos += s.step
	return v, true, nil
}

type sliceCursor struct {
	src    *sliceSource
	remain int
}

func (c *sliceCursor) Read(k int) ([]value.Value, error) {
	if c.remain <= 0 {
		return nil, nil
	}
	if k > c.remain {
		k = c.remain
	}
	out := make([]value.Value, 0, k)
	for i := 0; i < k; i++ {
		v, ok, err := c.src.readOne()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, v)
	}
	c.remain -= len(out)
	return out, nil
}

func (c *sliceCursor) Skip(k int) (int, error) {
	vs, err := c.Read(k)
	if err != nil {
		return 0, err
	}
	return len(vs), nil
}
