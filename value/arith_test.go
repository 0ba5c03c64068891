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

import "testing"

func TestApplyArithmeticIntAndFloat(t *testing.T) {
	v, err := Apply(Add, NewInt(2), NewInt(3))
	if err != nil || v.Int() != 5 {
		t.Fatalf("Apply(Add, 2, 3) = %v, %v; want 5", v, err)
	}
	v, err = Apply(Div, NewInt(7), NewInt(0))
	if err != nil || !v.IsUndefined() {
		t.Fatalf("Apply(Div, 7, 0) should yield Undefined, got %v, %v", v, err)
	}
	v, err = Apply(Mul, NewFloat(1.5), NewInt(2))
	if err != nil || v.Float() != 3.0 {
		t.Fatalf("Apply(Mul, 1.5, 2) = %v, %v; want 3.0", v, err)
	}
}

func TestApplyUndefinedPropagation(t *testing.T) {
	v, err := Apply(Add, Undef, NewInt(1))
	if err != nil || !v.IsUndefined() {
		t.Fatalf("Apply(Add, Undef, 1) should yield Undefined, got %v, %v", v, err)
	}
	v, err = Apply(Lt, Undef, NewInt(1))
	if err != nil || !v.IsUndefined() {
		t.Fatalf("Apply(Lt, Undef, 1) should yield Undefined, got %v, %v", v, err)
	}
}

func TestApplyEqNeNeverUndefined(t *testing.T) {
	v, err := Apply(Eq, Undef, NewInt(1))
	if err != nil || v.IsUndefined() {
		t.Fatalf("Apply(Eq, Undef, 1) should yield a defined bool, got %v, %v", v, err)
	}
	if v.Int() != 0 {
		t.Errorf("Undef == 1 should be false, got %v", v)
	}
}

func TestApplyRejectsNonNumericArithmetic(t *testing.T) {
	if _, err := Apply(Add, NewString("a"), NewString("b")); err == nil {
		t.Fatal("Apply(Add, \"a\", \"b\") should fail")
	}
}

func TestAdd2SkipsUndefined(t *testing.T) {
	acc := Undef
	acc = Add2(acc, NewInt(1))
	acc = Add2(acc, Undef)
	acc = Add2(acc, NewInt(2))
	if acc.Int() != 3 {
		t.Fatalf("Add2 accumulation = %v, want 3", acc)
	}
}

func TestAddVectorElementwiseAndLengthMismatch(t *testing.T) {
	acc := Undef
	acc = AddVector(acc, NewVector([]float64{1, 2}))
	acc = AddVector(acc, NewVector([]float64{3, 4}))
	got := acc.VectorElems()
	if got[0] != 4 || got[1] != 6 {
		t.Fatalf("AddVector elementwise sum = %v, want [4 6]", got)
	}
	mismatched := AddVector(acc, NewVector([]float64{1}))
	if !mismatched.IsUndefined() {
		t.Fatalf("AddVector with a length mismatch should yield Undefined, got %v", mismatched)
	}
}
