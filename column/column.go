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

// Package column implements Column: an immutable, typed, segmented
// on-disk sequence of Values with a reader that supports random-range
// and segment iteration (§4.1 of the design).
package column

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// ErrInvalidState is returned for operations attempted on a closed
// or unopened Column (write after close, read before close, etc).
var ErrInvalidState = errs.New(errs.InvalidState, "column: invalid state")

// Column is an immutable sequence of Values sharing one declared Tag.
// A Column is either "opened for write" (exactly once, by its
// creator) or "closed" (read-only forever, freely shareable).
type Column struct {
	dir      string
	tag      value.Tag
	segLen   []int   // length of each segment, in rows
	segPath  []string // on-disk path of each segment, relative to dir
	fixed    bool    // true if tag uses the fixed-width 8-byte fast path

	// prefixSum[i] = sum(segLen[:i]); built once, shared by every reader.
	prefixOnce sync.Once
	prefixSum  []int
}

// Dir returns the directory the Column's files live under.
func (c *Column) Dir() string { return c.dir }

// Tag returns the Column's declared tag.
func (c *Column) Tag() value.Tag { return c.tag }

// NumSegments returns the number of on-disk segments.
func (c *Column) NumSegments() int { return len(c.segLen) }

// SegmentLength returns the row count of segment i.
func (c *Column) SegmentLength(i int) int { return c.segLen[i] }

// Len returns the logical length: the sum of all segment lengths.
func (c *Column) Len() int {
	n := 0
	for _, l := range c.segLen {
		n += l
	}
	return n
}

func isFixedWidth(t value.Tag) bool {
	return t == value.Int64 || t == value.Float64
}

func (c *Column) buildPrefixSum() {
	c.prefixOnce.Do(func() {
		sums := make([]int, len(c.segLen)+1)
		for i, l := range c.segLen {
			sums[i+1] = sums[i] + l
		}
		c.prefixSum = sums
	})
}

// locate performs an O(log n) (effectively O(1) for the small segment
// counts this engine targets, since the prefix sum is built once per
// Column, shared by every reader, and binary-searched) lookup of which segment contains the
// logical row index `row`, returning the segment id and the row's
// offset within that segment.
func (c *Column) locate(row int) (seg, offset int) {
	c.buildPrefixSum()
	lo, hi := 0, len(c.segLen)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.prefixSum[mid] <= row {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, row - c.prefixSum[lo]
}

func segmentName(i int) string {
	return fmt.Sprintf("seg-%06d.dat", i)
}

func segmentPath(dir string, i int) string {
	return filepath.Join(dir, segmentName(i))
}

// Open reads a Column back from its directory, validating the .sidx
// index file written at Close time.
func Open(dir string) (*Column, error) {
	idx, err := readIndex(filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, err
	}
	return &Column{
		dir:     dir,
		tag:     idx.tag,
		segLen:  idx.segLen,
		segPath: idx.segPath,
		fixed:   isFixedWidth(idx.tag),
	}, nil
}

// Delete removes a Column's backing directory. Used by the garbage
// collector to reclaim a writer that never reached Close (§4.1
// failure semantics: a partially-written Column is unrecoverable).
func Delete(dir string) error {
	return os.RemoveAll(dir)
}
