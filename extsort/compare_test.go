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
	"testing"

	"github.com/cstorelabs/cstore/sorting"
	"github.com/cstorelabs/cstore/value"
)

func TestCompositeCompareSingleKeyAscending(t *testing.T) {
	keys := []Key{{Column: "a", Dir: sorting.Ascending}}
	a := []value.Value{value.NewInt(1)}
	b := []value.Value{value.NewInt(2)}
	if compositeCompare(a, b, keys) >= 0 {
		t.Errorf("expected a < b ascending")
	}
	if compositeCompare(b, a, keys) <= 0 {
		t.Errorf("expected b > a ascending")
	}
}

func TestCompositeCompareSingleKeyDescending(t *testing.T) {
	keys := []Key{{Column: "a", Dir: sorting.Descending}}
	a := []value.Value{value.NewInt(1)}
	b := []value.Value{value.NewInt(2)}
	if compositeCompare(a, b, keys) <= 0 {
		t.Errorf("expected a > b descending")
	}
}

func TestCompositeCompareNullsOrdering(t *testing.T) {
	asc := []Key{{Column: "a", Dir: sorting.Ascending}}
	desc := []Key{{Column: "a", Dir: sorting.Descending}}
	undef := []value.Value{value.Undef}
	defined := []value.Value{value.NewInt(1)}

	if compositeCompare(undef, defined, asc) >= 0 {
		t.Errorf("ascending: expected Undefined to sort first")
	}
	if compositeCompare(undef, defined, desc) <= 0 {
		t.Errorf("descending: expected Undefined to sort last")
	}
}

func TestCompositeCompareMultiKeyTieBreak(t *testing.T) {
	keys := []Key{
		{Column: "a", Dir: sorting.Ascending},
		{Column: "b", Dir: sorting.Descending},
	}
	a := []value.Value{value.NewInt(1), value.NewInt(5)}
	b := []value.Value{value.NewInt(1), value.NewInt(2)}
	if compositeCompare(a, b, keys) >= 0 {
		t.Errorf("expected a < b: equal first key, second key descending favors larger b first")
	}
}
