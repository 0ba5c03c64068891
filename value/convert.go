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
	"strconv"
	"strings"

	"github.com/cstorelabs/cstore/date"
	"github.com/cstorelabs/cstore/errs"
)

// Convertible reports whether a Value tagged `from` may be soft-assigned
// (`t := u`) into a column declared `to`, per the convertibility lattice
// in §3: Int<->Float<->DateTime, anything->String, Vector<->List under
// documented element rules. Undefined is convertible to every tag.
func Convertible(from, to Tag) bool {
	if from == Undefined || from == None || to == Undefined {
		return true
	}
	if from == to {
		return true
	}
	switch to {
	case String:
		return true
	case Int64, Float64, DateTime:
		return isNumeric(from) || from == DateTime
	case List:
		return from == Vector
	case Vector:
		return from == List
	default:
		return false
	}
}

// Convert performs the soft assignment `t := u` described in §3. It
// returns an error wrapping TypeMismatch-equivalent information when
// `u`'s tag is not convertible to `to`, or when element-level
// conversion fails (e.g. a List containing a non-numeric element
// being converted to Vector).
func Convert(u Value, to Tag) (Value, error) {
	if u.tag == Undefined || u.tag == None {
		return Undef, nil
	}
	if u.tag == to {
		return u, nil
	}
	if !Convertible(u.tag, to) {
		return Value{}, errs.New(errs.TypeMismatch, "cannot convert %s to %s", u.tag, to)
	}
	switch to {
	case String:
		return NewString(stringify(u)), nil
	case Int64:
		switch u.tag {
		case Float64:
			return NewInt(int64(u.f)), nil
		case DateTime:
			return NewInt(u.i), nil
		}
	case Float64:
		switch u.tag {
		case Int64:
			return NewFloat(float64(u.i)), nil
		case DateTime:
			return NewFloat(float64(u.i) + float64(u.ns)/1e9), nil
		}
	case DateTime:
		switch u.tag {
		case Int64:
			return NewDateTime(date.Unix(u.i, 0)), nil
		case Float64:
			sec := int64(u.f)
			ns := int64((u.f - float64(sec)) * 1e9)
			return NewDateTime(date.Unix(sec, ns)), nil
		}
	case Vector:
		out := make([]float64, len(u.list))
		for i, e := range u.list {
			if !isNumeric(e.Tag()) {
				return Value{}, errs.New(errs.TypeMismatch, "cannot convert list element of tag %s to vector element", e.Tag())
			}
			out[i] = e.asFloat()
		}
		return NewVector(out), nil
	case List:
		out := make([]Value, len(u.vec))
		for i, f := range u.vec {
			out[i] = NewFloat(f)
		}
		return NewList(out), nil
	}
	return Value{}, errs.New(errs.TypeMismatch, "cannot convert %s to %s", u.tag, to)
}

func stringify(v Value) string {
	switch v.tag {
	case String:
		return v.s
	case Image:
		return v.s
	case Int64:
		return strconv.FormatInt(v.i, 10)
	case Float64:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case DateTime:
		return v.DateTimeValue().String()
	case Vector:
		parts := make([]string, len(v.vec))
		for i, f := range v.vec {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case List:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = stringify(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Dict:
		parts := make([]string, len(v.dict.keys))
		for i := range v.dict.keys {
			parts[i] = stringify(v.dict.keys[i]) + ":" + stringify(v.dict.values[i])
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		return ""
	}
}
