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

package errs

import (
	"errors"
	"testing"
)

func TestNewAndIs(t *testing.T) {
	err := New(OutOfRange, "row %d out of bounds for length %d", 5, 3)
	if !Is(err, OutOfRange) {
		t.Error("Is(err, OutOfRange) should be true")
	}
	if Is(err, NotFound) {
		t.Error("Is(err, NotFound) should be false")
	}
	if err.Error() != "OutOfRange: row 5 out of bounds for length 3" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Io, cause, "writing segment")
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through Wrap to the cause")
	}
	if !Is(err, Io) {
		t.Error("Is(err, Io) should be true")
	}
}

func TestIsOnPlainError(t *testing.T) {
	if Is(errors.New("not ours"), Io) {
		t.Error("Is on a non-*Error should always be false")
	}
	if Is(nil, Io) {
		t.Error("Is(nil, ...) should be false")
	}
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	if BadArchive.String() != "BadArchive" {
		t.Errorf("BadArchive.String() = %q", BadArchive.String())
	}
	if got := Kind(255).String(); got != "Unknown" {
		t.Errorf("Kind(255).String() = %q, want Unknown", got)
	}
}

func TestToWire(t *testing.T) {
	w := ToWire(New(NotFound, "no such column %q", "x"))
	if w.Kind != "NotFound" || w.Message != `no such column "x"` {
		t.Errorf("ToWire = %+v", w)
	}
	if w := ToWire(nil); w != (Wire{}) {
		t.Errorf("ToWire(nil) = %+v, want zero value", w)
	}
	plain := errors.New("boom")
	w = ToWire(plain)
	if w.Kind != Io.String() || w.Message != "boom" {
		t.Errorf("ToWire(plain) = %+v, want kind Io", w)
	}
}
