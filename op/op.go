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

// Package op implements the lazy operator tree (§4.3): a closed set of
// single-column and multi-column node types, each exposing a parallel
// iterator over its logical row stream and an on-demand materialize
// path. op depends on column and value but never on frame, so that
// frame (which builds Append nodes over its own rows) can import op
// without an import cycle; frame instead satisfies the RowSource
// interface defined here structurally.
package op

import (
	"github.com/cstorelabs/cstore/errs"
	xints "github.com/cstorelabs/cstore/ints"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/value"
)

// ColumnNode is a lazy single-column stream of Values.
type ColumnNode interface {
	// Tag is the declared output tag of every yielded Value.
	Tag() value.Tag
	// HasSize reports whether Size can be answered without
	// materializing (false for volatile nodes).
	HasSize() bool
	// Size returns the node's row count, or an error of kind
	// errs.SizeUnknown if HasSize is false and the node has not yet
	// been materialized.
	Size() (int, error)
	// IsVolatile reports whether the row count is unknowable before
	// materialization (filter, lambda-filter, flat-map; §4.3).
	IsVolatile() bool
	// Iter returns a parallel iterator with dop cursors. For
	// non-volatile nodes sizes may be nil (an even split is chosen)
	// or an explicit partition that must sum to Size(); for volatile
	// nodes sizes is advisory only.
	Iter(dop int, sizes []int) (*piter.ValueIterator, error)
}

// RowSource is the structural interface a Materialized row-stream
// leaf wraps. frame.Frame satisfies this without op importing frame.
type RowSource interface {
	NumColumns() int
	ColumnTag(i int) value.Tag
	Len() int
	// ReadRows fills out with rows [start,end) in column order.
	ReadRows(start, end int, out *[][]value.Value) error
	// RowReader returns the segment/offset read handle, mirroring
	// column.Reader, used to build segment-aligned parallel cursors.
	RowReader() RowReaderAt
}

// RowReaderAt is the segment/offset addressable read handle a
// RowSource exposes for cursor construction, mirroring column.Reader.
type RowReaderAt interface {
	NumSegments() int
	SegmentLength(i int) int
	ReadSegment(i, offset, n int, out *[][]value.Value) (int, error)
}

// RowSink is the structural interface a row-stream materialization
// target exposes; frame.Writer satisfies it without op importing frame.
type RowSink interface {
	WriterFor(segment int) RowSegmentWriter
}

// RowSegmentWriter is one segment's write cursor within a RowSink.
type RowSegmentWriter interface {
	Write(row []value.Value) error
}

// RowNode is a lazy multi-column stream of fixed-arity row vectors.
type RowNode interface {
	Tags() []value.Tag
	HasSize() bool
	Size() (int, error)
	IsVolatile() bool
	Iter(dop int, sizes []int) (*piter.RowIterator, error)
}

func sizeUnknown() error {
	return errs.New(errs.SizeUnknown, "len requested on a volatile unmaterialized operator")
}

// clampDop keeps dop sane for degenerate inputs (len 0 or dop <= 0).
func clampDop(dop, total int) int {
	dop = xints.Max(dop, 1)
	if total > 0 {
		dop = xints.Min(dop, total)
	} else if total == 0 {
		dop = 1
	}
	return dop
}
