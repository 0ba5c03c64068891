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

// Package value implements Value, the tagged dynamic cell used
// throughout the columnar storage substrate for heterogeneous
// columns and dictionary/list elements.
package value

import (
	"fmt"

	"github.com/cstorelabs/cstore/date"
)

// Tag identifies the dynamic type carried by a Value.
type Tag uint8

const (
	// None is the tag of the zero Value; it is distinct from Undefined
	// in that a column declared None has never been assigned a type.
	None Tag = iota
	Int64
	Float64
	String
	Vector
	List
	Dict
	DateTime
	Image
	// Undefined is the tagged-null value. It is a legal value under
	// every other declared column tag.
	Undefined
)

func (t Tag) String() string {
	switch t {
	case None:
		return "none"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	case Vector:
		return "vector"
	case List:
		return "list"
	case Dict:
		return "dict"
	case DateTime:
		return "datetime"
	case Image:
		return "image"
	case Undefined:
		return "undefined"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Value is a tagged dynamic cell. The zero Value has tag None.
//
// Only one of the payload fields is meaningful at a time, selected
// by Tag. Value is intentionally a plain struct (not an interface)
// so that Columns can store slices of Values without per-element
// heap allocation for the scalar cases.
type Value struct {
	tag   Tag
	i     int64     // Int64, DateTime (as Unix seconds with ns in f's bit pattern unused)
	f     float64   // Float64
	s     string    // String, Image (content-addressed blob name or raw bytes as string)
	vec   []float64 // Vector
	list  []Value   // List
	dict  *Dict     // Dict
	ns    int32     // DateTime sub-second nanoseconds
}

// Dict is the payload of a Dict-tagged Value: an ordered association
// of Value keys to Value values. Order is insertion order;
// comparisons walk both Dicts pair by pair in that order, so two Dicts
// holding the same pairs in different orders compare as different.
type Dict struct {
	keys   []Value
	values []Value
}

// Undef is the canonical Undefined value.
var Undef = Value{tag: Undefined}

// Null is an alias for Undef, matching the "tagged-null" terminology
// used for missing/unknown data across the engine.
var Null = Undef

// NewInt returns an Int64 Value.
func NewInt(i int64) Value { return Value{tag: Int64, i: i} }

// NewFloat returns a Float64 Value.
func NewFloat(f float64) Value { return Value{tag: Float64, f: f} }

// NewString returns a String Value.
func NewString(s string) Value { return Value{tag: String, s: s} }

// NewVector returns a Vector Value. The slice is retained, not copied.
func NewVector(v []float64) Value { return Value{tag: Vector, vec: v} }

// NewList returns a List Value. The slice is retained, not copied.
func NewList(l []Value) Value { return Value{tag: List, list: l} }

// NewDateTime returns a DateTime Value.
func NewDateTime(t date.Time) Value {
	return Value{tag: DateTime, i: t.Unix(), ns: int32(t.Nanosecond())}
}

// NewImage returns an Image Value wrapping opaque bytes.
func NewImage(raw []byte) Value { return Value{tag: Image, s: string(raw)} }

// NewDict builds a Dict Value from parallel key/value slices. Both
// slices must have equal length; k and v are retained, not copied.
func NewDict(k, v []Value) Value {
	return Value{tag: Dict, dict: &Dict{keys: k, values: v}}
}

// Tag returns the dynamic type of v.
func (v Value) Tag() Tag { return v.tag }

// IsUndefined reports whether v is the tagged-null value.
func (v Value) IsUndefined() bool { return v.tag == Undefined }

// Int returns the Int64 payload of v. It panics if v.Tag() != Int64.
func (v Value) Int() int64 {
	if v.tag != Int64 {
		panic(fmt.Sprintf("value: Int() called on %s", v.tag))
	}
	return v.i
}

// Float returns the Float64 payload of v. It panics if v.Tag() != Float64.
func (v Value) Float() float64 {
	if v.tag != Float64 {
		panic(fmt.Sprintf("value: Float() called on %s", v.tag))
	}
	return v.f
}

// Str returns the String payload of v. It panics if v.Tag() != String.
func (v Value) Str() string {
	if v.tag != String {
		panic(fmt.Sprintf("value: Str() called on %s", v.tag))
	}
	return v.s
}

// ImageBytes returns the raw bytes of an Image Value. It panics if v.Tag() != Image.
func (v Value) ImageBytes() []byte {
	if v.tag != Image {
		panic(fmt.Sprintf("value: ImageBytes() called on %s", v.tag))
	}
	return []byte(v.s)
}

// VectorElems returns the Vector payload of v. It panics if v.Tag() != Vector.
func (v Value) VectorElems() []float64 {
	if v.tag != Vector {
		panic(fmt.Sprintf("value: VectorElems() called on %s", v.tag))
	}
	return v.vec
}

// ListElems returns the List payload of v. It panics if v.Tag() != List.
func (v Value) ListElems() []Value {
	if v.tag != List {
		panic(fmt.Sprintf("value: ListElems() called on %s", v.tag))
	}
	return v.list
}

// DictPairs returns v's keys and values. It panics if v.Tag() != Dict.
func (v Value) DictPairs() ([]Value, []Value) {
	if v.tag != Dict {
		panic(fmt.Sprintf("value: DictPairs() called on %s", v.tag))
	}
	return v.dict.keys, v.dict.values
}

// DateTimeSeconds returns the Unix-seconds component of a DateTime Value.
func (v Value) DateTimeSeconds() int64 {
	if v.tag != DateTime {
		panic(fmt.Sprintf("value: DateTimeSeconds() called on %s", v.tag))
	}
	return v.i
}

// DateTimeValue reconstructs a date.Time from a DateTime Value.
func (v Value) DateTimeValue() date.Time {
	if v.tag != DateTime {
		panic(fmt.Sprintf("value: DateTimeValue() called on %s", v.tag))
	}
	return date.Unix(v.i, int64(v.ns))
}

// IsFalsy reports whether v is "false" per the LogicalFilter mask
// semantics of §4.8: an empty container, empty string, zero int/float,
// or Undefined all count as false; everything else is truthy.
func (v Value) IsFalsy() bool {
	switch v.tag {
	case Undefined, None:
		return true
	case Int64:
		return v.i == 0
	case Float64:
		return v.f == 0
	case String:
		return v.s == ""
	case Vector:
		return len(v.vec) == 0
	case List:
		return len(v.list) == 0
	case Dict:
		return v.dict == nil || len(v.dict.keys) == 0
	default:
		return false
	}
}
