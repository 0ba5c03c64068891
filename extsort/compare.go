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
	"github.com/cstorelabs/cstore/sorting"
	"github.com/cstorelabs/cstore/value"
)

// nullsOrder derives the placement of Undefined for a Direction per
// §4.6: ascending orders nulls first, descending orders nulls last.
func nullsOrder(dir sorting.Direction) value.NullsOrder {
	if dir == sorting.Descending {
		return value.NullsLast
	}
	return value.NullsFirst
}

// compositeCompare compares two key tuples column-by-column in key
// order, applying each column's direction and the nulls rule derived
// from it, stopping at the first column that differs.
func compositeCompare(a, b []value.Value, keys []Key) int {
	for i, k := range keys {
		av, bv := a[i], b[i]
		c := value.CompareWithNulls(av, bv, nullsOrder(k.Dir))
		if c == 0 {
			continue
		}
		// nullsOrder already places Undefined per §4.6's rule for this
		// Direction; only the ordering of two defined values flips
		// under Descending.
		aUndef := av.Tag() == value.Undefined || av.Tag() == value.None
		bUndef := bv.Tag() == value.Undefined || bv.Tag() == value.None
		if k.Dir == sorting.Descending && !aUndef && !bUndef {
			return -c
		}
		return c
	}
	return 0
}

// keyOf extracts the key-column values from row using keyIdx.
func keyOf(row []value.Value, keyIdx []int) []value.Value {
	key := make([]value.Value, len(keyIdx))
	for i, idx := range keyIdx {
		key[i] = row[idx]
	}
	return key
}
