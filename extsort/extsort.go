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

// Package extsort implements the external sort of §4.6: range
// partitioning by splitter sampling, per-partition in-memory sort, and
// a lazy concatenation of the sorted partitions back into one Frame.
package extsort

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/sorting"
	"github.com/cstorelabs/cstore/value"
)

// Key names one sort key column and its direction. Nulls order follows
// direction per §3/§4.6: ascending places Undefined first, descending
// last.
type Key struct {
	Column string
	Dir    sorting.Direction
}

// Sort partitions f's rows by range into numPartitions temporary
// Frames under reg, sorts each partition in memory by the composite
// key, and concatenates the sorted partitions back into one Frame
// under outDir using the lazy Append (§4.6 step 4).
func Sort(f *frame.Frame, keys []Key, numPartitions int, outDir string, reg *pool.Registry, p *pool.Pool, tok *pool.Token) (*frame.Frame, error) {
	if len(keys) == 0 {
		return nil, errs.New(errs.InvalidArgument, "extsort: at least one sort key is required")
	}
	if numPartitions < 1 {
		numPartitions = 1
	}

	keyIdx, err := keyIndices(f, keys)
	if err != nil {
		return nil, err
	}

	var splitters [][]value.Value
	if numPartitions > 1 {
		splitters, err = sampleSplitters(f, keyIdx, keys, numPartitions)
		if err != nil {
			return nil, err
		}
	}

	parts, err := shuffle(f, keyIdx, keys, splitters, numPartitions, reg, p, tok)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, pf := range parts {
			if pf.dir != "" {
				reg.Release(pf.dir)
			}
		}
	}()

	sorted, err := sortPartitions(parts, keyIdx, keys, reg, p, tok)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, pf := range sorted {
			if pf.dir != "" {
				reg.Release(pf.dir)
			}
		}
	}()

	return concatenate(sorted, outDir, numPartitions, p, tok)
}

// keyIndices resolves each Key's column name to its index in f's
// schema.
func keyIndices(f *frame.Frame, keys []Key) ([]int, error) {
	names := f.ColumnNames()
	idx := make([]int, len(keys))
	for i, k := range keys {
		found := -1
		for j, n := range names {
			if n == k.Column {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, errs.New(errs.NotFound, "extsort: no such column %q", k.Column)
		}
		idx[i] = found
	}
	return idx, nil
}
