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
	"path/filepath"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/op"
	"github.com/cstorelabs/cstore/value"
)

// Writer is the row-oriented write handle for a Frame being built: all
// columns grow in lockstep, one writer cursor per segment producing
// one row of every column per Write call (§4.2).
type Writer struct {
	dir     string
	names   []string
	tags    []value.Tag
	cols    []*column.Writer
	closed  bool
}

// OpenForWrite creates dir/<name> for each column and returns a Writer
// with `segments` row cursors.
func OpenForWrite(dir string, names []string, tags []value.Tag, segments int) (*Writer, error) {
	if len(names) != len(tags) {
		return nil, errs.New(errs.SchemaMismatch, "frame: %d names for %d tags", len(names), len(tags))
	}
	if err := checkUniqueNames(names); err != nil {
		return nil, err
	}
	cols := make([]*column.Writer, len(names))
	for i, n := range names {
		w, err := column.OpenForWrite(filepath.Join(dir, n), tags[i], segments)
		if err != nil {
			return nil, err
		}
		cols[i] = w
	}
	return &Writer{dir: dir, names: append([]string(nil), names...), tags: append([]value.Tag(nil), tags...), cols: cols}, nil
}

// WriterFor returns the row cursor for segment i, implementing
// op.RowSink/op.RowSegmentWriter so op.ForceRows can drive a RowNode
// straight into a Frame under construction.
func (w *Writer) WriterFor(segment int) op.RowSegmentWriter {
	segWriters := make([]*column.SegmentWriter, len(w.cols))
	for i, c := range w.cols {
		segWriters[i] = c.WriterFor(segment)
	}
	return &rowSegmentWriter{w: w, segWriters: segWriters}
}

type rowSegmentWriter struct {
	w          *Writer
	segWriters []*column.SegmentWriter
}

// Write appends one row. Its arity must match the Writer's column
// count, or it fails with SchemaMismatch.
func (r *rowSegmentWriter) Write(row []value.Value) error {
	if len(row) != len(r.segWriters) {
		return errs.New(errs.SchemaMismatch, "frame: row has %d values, frame has %d columns", len(row), len(r.segWriters))
	}
	for i, v := range row {
		if err := r.segWriters[i].Write(v); err != nil {
			return err
		}
	}
	return nil
}

// Close commits every column, writes the frame.frame_idx index
// recording the column directory names, and returns the resulting
// read-only Frame.
func (w *Writer) Close() (*Frame, error) {
	if w.closed {
		return nil, errs.New(errs.InvalidState, "frame: writer already closed")
	}
	w.closed = true
	cols := make([]*column.Column, len(w.cols))
	for i, cw := range w.cols {
		c, err := cw.Close()
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	if err := writeFrameIndex(filepath.Join(w.dir, IndexFileName), w.names); err != nil {
		return nil, err
	}
	return &Frame{names: w.names, columns: cols}, nil
}
