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

package extsort

import (
	"sort"

	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/value"
)

// sampleSize bounds the prefix sample used to estimate key
// distribution (§4.6 step 1: "small prefix sample").
const sampleSize = 4096

// sampleSplitters reads up to sampleSize rows from the head of f,
// extracts their key tuples, sorts the sample, and picks
// numPartitions-1 evenly spaced splitters defining numPartitions
// contiguous range partitions.
func sampleSplitters(f *frame.Frame, keyIdx []int, keys []Key, numPartitions int) ([][]value.Value, error) {
	n := f.Len()
	if n > sampleSize {
		n = sampleSize
	}
	if n == 0 {
		return nil, nil
	}

	var rows [][]value.Value
	if err := f.ReadRows(0, n, &rows); err != nil {
		return nil, err
	}

	sample := make([][]value.Value, len(rows))
	for i, row := range rows {
		sample[i] = keyOf(row, keyIdx)
	}
	sort.Slice(sample, func(i, j int) bool {
		return compositeCompare(sample[i], sample[j], keys) < 0
	})

	splitters := make([][]value.Value, 0, numPartitions-1)
	for i := 1; i < numPartitions; i++ {
		pos := i * len(sample) / numPartitions
		if pos >= len(sample) {
			pos = len(sample) - 1
		}
		splitters = append(splitters, sample[pos])
	}
	return splitters, nil
}

// partitionOf returns the range-partition index for key, the count of
// splitters less than or equal to key (i.e. the partition whose range
// [splitters[i-1], splitters[i]) contains key).
func partitionOf(key []value.Value, splitters [][]value.Value, keys []Key) int {
	lo, hi := 0, len(splitters)
	for lo < hi {
		mid := (lo + hi) / 2
		if compositeCompare(key, splitters[mid], keys) < 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo
}
