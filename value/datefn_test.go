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

package value

import (
	"testing"

	"github.com/cstorelabs/cstore/date"
)

func dt(y, mo, d, h, mi, s int) Value {
	return NewDateTime(date.Date(y, mo, d, h, mi, s, 0))
}

func TestDateAddMonthCarriesYear(t *testing.T) {
	v, err := DateAdd(Month, dt(2023, 11, 15, 0, 0, 0), 3)
	if err != nil {
		t.Fatalf("DateAdd: %v", err)
	}
	got := v.DateTimeValue()
	if got.Year() != 2024 || got.Month() != 2 || got.Day() != 15 {
		t.Fatalf("DateAdd(Month, 2023-11-15, 3) = %s, want 2024-02-15", got)
	}
}

func TestDateAddUndefinedPropagates(t *testing.T) {
	v, err := DateAdd(Day, Undef, 1)
	if err != nil || !v.IsUndefined() {
		t.Fatalf("DateAdd(Day, Undef, 1) = %v, %v; want Undefined", v, err)
	}
}

func TestDateAddWrongTagErrors(t *testing.T) {
	if _, err := DateAdd(Day, NewInt(1), 1); err == nil {
		t.Fatal("DateAdd on a non-DateTime Value should error")
	}
}

func TestDateTruncDay(t *testing.T) {
	v, err := DateTrunc(Day, dt(2023, 6, 15, 13, 45, 30))
	if err != nil {
		t.Fatalf("DateTrunc: %v", err)
	}
	got := v.DateTimeValue()
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("DateTrunc(Day, ...) = %s, want midnight", got)
	}
	if got.Year() != 2023 || got.Month() != 6 || got.Day() != 15 {
		t.Fatalf("DateTrunc(Day, ...) changed the date: %s", got)
	}
}

func TestDateExtractComponents(t *testing.T) {
	v := dt(2023, 6, 15, 13, 45, 30)
	cases := []struct {
		unit DateUnit
		want int64
	}{
		{Year, 2023},
		{Month, 6},
		{Day, 15},
		{Hour, 13},
		{Minute, 45},
		{Second, 30},
	}
	for _, c := range cases {
		got, err := DateExtract(c.unit, v)
		if err != nil {
			t.Fatalf("DateExtract(%d): %v", c.unit, err)
		}
		if got.Int() != c.want {
			t.Fatalf("DateExtract(%d) = %d, want %d", c.unit, got.Int(), c.want)
		}
	}
}

func TestDateDiffMicrosecondOrdering(t *testing.T) {
	early := dt(2023, 1, 1, 0, 0, 0)
	late := dt(2023, 1, 1, 0, 0, 1)
	v, err := DateDiffMicrosecond(late, early)
	if err != nil {
		t.Fatalf("DateDiffMicrosecond: %v", err)
	}
	if v.Int() != 1e6 {
		t.Fatalf("DateDiffMicrosecond(late, early) = %d, want 1000000", v.Int())
	}
}

func TestDateBinSnapsToStride(t *testing.T) {
	origin := dt(2023, 1, 1, 0, 0, 0)
	v := dt(2023, 1, 1, 0, 0, 90)
	got, err := DateBin(v, origin, 60*1e6)
	if err != nil {
		t.Fatalf("DateBin: %v", err)
	}
	want := dt(2023, 1, 1, 0, 1, 0)
	if got.DateTimeSeconds() != want.DateTimeSeconds() {
		t.Fatalf("DateBin(...) = %s, want %s", got.DateTimeValue(), want.DateTimeValue())
	}
}
