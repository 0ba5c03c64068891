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
	"github.com/cstorelabs/cstore/date"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/fastdate"
)

// DateUnit names the calendar unit used by DateAdd, DateTrunc, and
// DateExtract.
type DateUnit int

const (
	Microsecond DateUnit = iota
	Millisecond
	Second
	Minute
	Hour
	Day
	Month
	Quarter
	Year
)

func toTimestamp(v Value) (fastdate.Timestamp, error) {
	if v.tag != DateTime {
		return 0, errs.New(errs.TypeMismatch, "date function called on %s, want DateTime", v.tag)
	}
	us := v.i*1e6 + int64(v.ns)/1000
	return fastdate.Timestamp(us), nil
}

func fromTimestamp(ts fastdate.Timestamp) Value {
	us := int64(ts)
	sec := us / 1e6
	rem := us % 1e6
	if rem < 0 {
		sec--
		rem += 1e6
	}
	return NewDateTime(date.Unix(sec, rem*1000))
}

// DateAdd adds n units of unit to v, returning a new DateTime Value.
// It is grounded on the per-unit bcdateadd* family in the teacher's
// bytecode interpreter, each of which wraps a single fastdate.Timestamp
// Add method.
func DateAdd(unit DateUnit, v Value, n int64) (Value, error) {
	if v.IsUndefined() {
		return Undef, nil
	}
	ts, err := toTimestamp(v)
	if err != nil {
		return Value{}, err
	}
	var (
		out Value
		ok  bool
	)
	switch unit {
	case Microsecond:
		ok = setAdd(&out, ts.AddMicrosecond(n))
	case Millisecond:
		ok = setAdd(&out, ts.AddMillisecond(n))
	case Second:
		ok = setAdd(&out, ts.AddSecond(n))
	case Minute:
		ok = setAdd(&out, ts.AddMinute(n))
	case Hour:
		ok = setAdd(&out, ts.AddHour(n))
	case Day:
		ok = setAdd(&out, ts.AddDay(n))
	case Month:
		ok = setAdd(&out, ts.AddMonth(n))
	case Quarter:
		ok = setAdd(&out, ts.AddQuarter(n))
	case Year:
		ok = setAdd(&out, ts.AddYear(n))
	default:
		return Value{}, errs.New(errs.InvalidArgument, "unrecognized DateUnit %d", unit)
	}
	if !ok {
		return Undef, nil
	}
	return out, nil
}

func setAdd(out *Value, result fastdate.Timestamp, ok bool) bool {
	if ok {
		*out = fromTimestamp(result)
	}
	return ok
}

// DateTrunc rounds v down to the start of unit.
func DateTrunc(unit DateUnit, v Value) (Value, error) {
	if v.IsUndefined() {
		return Undef, nil
	}
	ts, err := toTimestamp(v)
	if err != nil {
		return Value{}, err
	}
	switch unit {
	case Millisecond:
		return fromTimestamp(ts.TruncMillisecond()), nil
	case Second:
		return fromTimestamp(ts.TruncSecond()), nil
	case Minute:
		return fromTimestamp(ts.TruncMinute()), nil
	case Hour:
		return fromTimestamp(ts.TruncHour()), nil
	case Day:
		return fromTimestamp(ts.TruncDay()), nil
	case Month:
		return fromTimestamp(ts.TruncMonth()), nil
	case Quarter:
		return fromTimestamp(ts.TruncQuarter()), nil
	case Year:
		return fromTimestamp(ts.TruncYear()), nil
	default:
		return Value{}, errs.New(errs.InvalidArgument, "unrecognized DateUnit %d for DateTrunc", unit)
	}
}

// DateExtract returns unit as an Int64 Value extracted from v.
func DateExtract(unit DateUnit, v Value) (Value, error) {
	if v.IsUndefined() {
		return Undef, nil
	}
	ts, err := toTimestamp(v)
	if err != nil {
		return Value{}, err
	}
	switch unit {
	case Microsecond:
		return NewInt(int64(ts.ExtractMicrosecond())), nil
	case Millisecond:
		return NewInt(int64(ts.ExtractMillisecond())), nil
	case Second:
		return NewInt(int64(ts.ExtractSecond())), nil
	case Minute:
		return NewInt(int64(ts.ExtractMinute())), nil
	case Hour:
		return NewInt(int64(ts.ExtractHour())), nil
	case Day:
		return NewInt(int64(ts.ExtractDay())), nil
	case Month:
		return NewInt(int64(ts.ExtractMonth())), nil
	case Quarter:
		return NewInt(int64(ts.ExtractQuarter())), nil
	case Year:
		return NewInt(int64(ts.ExtractYear())), nil
	default:
		return Value{}, errs.New(errs.InvalidArgument, "unrecognized DateUnit %d for DateExtract", unit)
	}
}

// DateDiffMicrosecond returns a - b in whole microseconds as an Int64
// Value.
func DateDiffMicrosecond(a, b Value) (Value, error) {
	if a.IsUndefined() || b.IsUndefined() {
		return Undef, nil
	}
	ta, err := toTimestamp(a)
	if err != nil {
		return Value{}, err
	}
	tb, err := toTimestamp(b)
	if err != nil {
		return Value{}, err
	}
	result, ok := tb.DateDiffMicrosecond(ta)
	if !ok {
		return Undef, nil
	}
	return NewInt(int64(result)), nil
}

// DateBin snaps v down to the nearest multiple of stride (in
// microseconds) counted from origin.
func DateBin(v, origin Value, stride int64) (Value, error) {
	if v.IsUndefined() || origin.IsUndefined() {
		return Undef, nil
	}
	tv, err := toTimestamp(v)
	if err != nil {
		return Value{}, err
	}
	to, err := toTimestamp(origin)
	if err != nil {
		return Value{}, err
	}
	result, ok := tv.DateBin(to, stride)
	if !ok {
		return Undef, nil
	}
	return fromTimestamp(result), nil
}
