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
	"math"
	"os"
	"path/filepath"

	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
	"github.com/cstorelabs/cstore/wire"
)

const fixedRecordSize = 9 // 1 validity byte + 8 data bytes

// Writer is the write-side handle for a Column being built. The
// caller picks a segment count up front; each segment may be written
// by a distinct goroutine concurrently, but a segment's own writer
// must not be used from more than one goroutine at a time.
type Writer struct {
	dir    string
	tag    value.Tag
	fixed  bool
	fh     []*os.File
	bw     []*bufio.Writer
	rows   []int
	closed bool
}

// OpenForWrite creates dir (which must not already exist, or must be
// empty) and returns a Writer with `segments` independent output
// cursors.
func OpenForWrite(dir string, tag value.Tag, segments int) (*Writer, error) {
	if segments < 1 {
		return nil, errs.New(errs.InvalidArgument, "column: segments must be >= 1, got %d", segments)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &Writer{
		dir:   dir,
		tag:   tag,
		fixed: isFixedWidth(tag),
		fh:    make([]*os.File, segments),
		bw:    make([]*bufio.Writer, segments),
		rows:  make([]int, segments),
	}
	for i := 0; i < segments; i++ {
		f, err := os.Create(segmentPath(dir, i))
		if err != nil {
			w.abort()
			return nil, err
		}
		w.fh[i] = f
		w.bw[i] = bufio.NewWriter(f)
	}
	return w, nil
}

func (w *Writer) abort() {
	for _, f := range w.fh {
		if f != nil {
			f.Close()
		}
	}
}

// NumSegments returns the segment count fixed at OpenForWrite time.
func (w *Writer) NumSegments() int { return len(w.fh) }

// WriterFor returns the write cursor for segment i. Writers for
// distinct segments may be used concurrently from distinct goroutines.
func (w *Writer) WriterFor(segment int) *SegmentWriter {
	return &SegmentWriter{w: w, segment: segment}
}

// SegmentWriter is a write cursor for a single segment of a Column.
type SegmentWriter struct {
	w       *Writer
	segment int
}

// Write appends one Value to the segment. v's tag must equal the
// Column's declared tag, or be Undefined.
func (s *SegmentWriter) Write(v value.Value) error {
	w := s.w
	if w.closed {
		return ErrInvalidState
	}
	if v.Tag() != value.Undefined && v.Tag() != value.None && v.Tag() != w.tag {
		return errs.New(errs.TypeMismatch, "column: value tag %s does not match column tag %s", v.Tag(), w.tag)
	}
	bw := w.bw[s.segment]
	if w.fixed {
		var rec [fixedRecordSize]byte
		if v.Tag() == value.Undefined || v.Tag() == value.None {
			rec[0] = 0
		} else {
			rec[0] = 1
			var bits uint64
			if w.tag == value.Int64 {
				bits = uint64(v.Int())
			} else {
				bits = math.Float64bits(v.Float())
			}
			binary.LittleEndian.PutUint64(rec[1:], bits)
		}
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	} else {
		var buf wire.Buffer
		buf.PutValue(v)
		var lenPrefix [binary.MaxVarintLen64]byte
		n := binary.PutUvarint(lenPrefix[:], uint64(len(buf.Bytes())))
		if _, err := bw.Write(lenPrefix[:n]); err != nil {
			return err
		}
		if _, err := bw.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	w.rows[s.segment]++
	return nil
}

// Close flushes all segment writers, commits the Column's .sidx
// index, and returns the resulting read-only Column. After Close, no
// further writes of any kind are accepted.
func (w *Writer) Close() (*Column, error) {
	if w.closed {
		return nil, ErrInvalidState
	}
	w.closed = true
	segLen := make([]int, len(w.fh))
	segPath := make([]string, len(w.fh))
	for i, f := range w.fh {
		if err := w.bw[i].Flush(); err != nil {
			return nil, err
		}
		if err := f.Sync(); err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		segLen[i] = w.rows[i]
		segPath[i] = segmentName(i)
	}
	idx := index{tag: w.tag, segLen: segLen, segPath: segPath}
	if err := writeIndex(idxPath(w.dir), idx); err != nil {
		return nil, err
	}
	return &Column{
		dir:     w.dir,
		tag:     w.tag,
		segLen:  segLen,
		segPath: segPath,
		fixed:   w.fixed,
	}, nil
}

func idxPath(dir string) string {
	return filepath.Join(dir, IndexFileName)
}
