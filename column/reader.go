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

package column

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
	"github.com/cstorelabs/cstore/wire"
)

// Reader is an independent read handle over a closed Column. Many
// Readers may coexist, including across goroutines; each Reader owns
// its own file handles.
type Reader struct {
	c *Column
}

// Reader opens an independent reader over c. Readers are cheap: they
// share the Column's prefix-sum index and open segment files lazily.
func (c *Column) Reader() *Reader { return &Reader{c: c} }

// ReadRange fills out with the Values at logical rows [start, end).
func (r *Reader) ReadRange(start, end int, out *[]value.Value) error {
	if start < 0 || end > r.c.Len() || start > end {
		return errs.New(errs.OutOfRange, "column: out of range [%d,%d) over length %d", start, end, r.c.Len())
	}
	*out = (*out)[:0]
	row := start
	for row < end {
		seg, off := r.c.locate(row)
		it, err := r.Segment(seg)
		if err != nil {
			return err
		}
		if err := it.skip(off); err != nil {
			return err
		}
		segRemaining := r.c.segLen[seg] - off
		take := end - row
		if take > segRemaining {
			take = segRemaining
		}
		for i := 0; i < take; i++ {
			v, ok, err := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				return errs.Wrap(errs.Io, io.ErrUnexpectedEOF, "column: unexpected EOF in segment %d", seg)
			}
			*out = append(*out, v)
		}
		it.Close()
		row += take
	}
	return nil
}

// SegmentIterator walks one segment of a Column in order.
type SegmentIterator struct {
	f      *os.File
	br     *bufio.Reader
	tag    value.Tag
	fixed  bool
	remain int
}

// Segment opens an iterator over segment i, starting at its first row.
func (r *Reader) Segment(i int) (*SegmentIterator, error) {
	if i < 0 || i >= len(r.c.segLen) {
		return nil, errs.New(errs.OutOfRange, "column: segment %d out of range", i)
	}
	f, err := os.Open(filepath.Join(r.c.dir, r.c.segPath[i]))
	if err != nil {
		return nil, err
	}
	return &SegmentIterator{
		f:      f,
		br:     bufio.NewReader(f),
		tag:    r.c.tag,
		fixed:  r.c.fixed,
		remain: r.c.segLen[i],
	}, nil
}

// skip advances the iterator past n rows without materializing them.
func (s *SegmentIterator) skip(n int) error {
	for i := 0; i < n; i++ {
		if _, ok, err := s.Next(); err != nil {
			return err
		} else if !ok {
			return io.ErrUnexpectedEOF
		}
	}
	return nil
}

// Next returns the next Value in the segment, or ok=false at EOF.
func (s *SegmentIterator) Next() (value.Value, bool, error) {
	if s.remain <= 0 {
		return value.Value{}, false, nil
	}
	s.remain--
	if s.fixed {
		var rec [fixedRecordSize]byte
		if _, err := io.ReadFull(s.br, rec[:]); err != nil {
			return value.Value{}, false, err
		}
		if rec[0] == 0 {
			return value.Undef, true, nil
		}
		bits := binary.LittleEndian.Uint64(rec[1:])
		if s.tag == value.Int64 {
			return value.NewInt(int64(bits)), true, nil
		}
		return value.NewFloat(math.Float64frombits(bits)), true, nil
	}
	n, err := binary.ReadUvarint(s.br)
	if err != nil {
		return value.Value{}, false, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return value.Value{}, false, err
	}
	v, err := wire.NewDecoder(buf).Value()
	if err != nil {
		return value.Value{}, false, err
	}
	return v, true, nil
}

// Close releases the iterator's file handle.
func (s *SegmentIterator) Close() error {
	return s.f.Close()
}
