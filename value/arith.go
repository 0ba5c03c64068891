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

import "github.com/cstorelabs/cstore/errs"

// BinOp names the operators supported by op.ScalarBinOp and op.Vector.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
)

// Apply evaluates l `op` r. Arithmetic with Undefined on either side
// yields Undefined; relational ops other than Eq/Ne also yield
// Undefined when either side is Undefined, per the nullability rule
// in the DESIGN NOTES.
func Apply(op BinOp, l, r Value) (Value, error) {
	switch op {
	case Eq:
		return boolValue(Equal(l, r)), nil
	case Ne:
		return boolValue(!Equal(l, r)), nil
	}
	if l.IsUndefined() || r.IsUndefined() {
		return Undef, nil
	}
	switch op {
	case Lt:
		return relValue(Less(l, r)), nil
	case Le:
		return relValue(LessEqual(l, r)), nil
	case Gt:
		return relValue(Less(r, l)), nil
	case Ge:
		return relValue(LessEqual(r, l)), nil
	}
	if !isNumeric(l.tag) || !isNumeric(r.tag) {
		return Value{}, errs.New(errs.TypeMismatch, "arithmetic op %v not defined on %s/%s", op, l.tag, r.tag)
	}
	if l.tag == Int64 && r.tag == Int64 {
		switch op {
		case Add:
			return NewInt(l.i + r.i), nil
		case Sub:
			return NewInt(l.i - r.i), nil
		case Mul:
			return NewInt(l.i * r.i), nil
		case Div:
			if r.i == 0 {
				return Undef, nil
			}
			return NewInt(l.i / r.i), nil
		}
	}
	lf, rf := l.asFloat(), r.asFloat()
	switch op {
	case Add:
		return NewFloat(lf + rf), nil
	case Sub:
		return NewFloat(lf - rf), nil
	case Mul:
		return NewFloat(lf * rf), nil
	case Div:
		if rf == 0 {
			return Undef, nil
		}
		return NewFloat(lf / rf), nil
	}
	return Value{}, errs.New(errs.InvalidArgument, "unknown binary op %v", op)
}

func boolValue(b bool) Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

func relValue(r RelOp) Value {
	switch r {
	case RelTrue:
		return NewInt(1)
	case RelFalse:
		return NewInt(0)
	default:
		return Undef
	}
}

// Add2 sums two numeric-or-Undefined Values, skipping Undefined
// inputs, per the `sum` aggregator contract in §4.7 ("Undefined
// inputs skipped").
func Add2(acc, v Value) Value {
	if v.IsUndefined() {
		return acc
	}
	if acc.IsUndefined() {
		return v
	}
	out, err := Apply(Add, acc, v)
	if err != nil {
		return acc
	}
	return out
}

// AddVector sums two Vector-or-Undefined values elementwise. A
// length mismatch across non-Undefined vectors yields Undefined,
// per the vector_sum aggregator contract.
func AddVector(acc, v Value) Value {
	if v.IsUndefined() {
		return acc
	}
	if acc.IsUndefined() {
		out := make([]float64, len(v.vec))
		copy(out, v.vec)
		return NewVector(out)
	}
	if len(acc.vec) != len(v.vec) {
		return Undef
	}
	out := make([]float64, len(acc.vec))
	for i := range out {
		out[i] = acc.vec[i] + v.vec[i]
	}
	return NewVector(out)
}
