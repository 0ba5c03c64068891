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

package column

import (
	"path/filepath"
	"testing"

	"github.com/cstorelabs/cstore/value"
)

func writeFixedColumn(t *testing.T, segments int, perSegment int) *Column {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "col")
	w, err := OpenForWrite(dir, value.Int64, segments)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	n := 0
	for seg := 0; seg < segments; seg++ {
		sw := w.WriterFor(seg)
		for i := 0; i < perSegment; i++ {
			if err := sw.Write(value.NewInt(int64(n))); err != nil {
				t.Fatalf("Write: %v", err)
			}
			n++
		}
	}
	c, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return c
}

func TestWriteCloseReadRangeFixedWidth(t *testing.T) {
	c := writeFixedColumn(t, 3, 4)
	if c.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", c.Len())
	}
	if c.NumSegments() != 3 {
		t.Fatalf("NumSegments() = %d, want 3", c.NumSegments())
	}

	r := c.Reader()
	var out []value.Value
	if err := r.ReadRange(0, c.Len(), &out); err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	for i, v := range out {
		if v.Int() != int64(i) {
			t.Fatalf("value %d = %d, want %d", i, v.Int(), i)
		}
	}
}

func TestReadRangeMidSegmentBoundary(t *testing.T) {
	c := writeFixedColumn(t, 3, 4)
	r := c.Reader()
	var out []value.Value
	// [3,7) straddles segment 0 (rows 0-3) and segment 1 (rows 4-7).
	if err := r.ReadRange(3, 7, &out); err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	want := []int64{3, 4, 5, 6}
	if len(out) != len(want) {
		t.Fatalf("ReadRange(3,7) = %v, want %v", out, want)
	}
	for i := range want {
		if out[i].Int() != want[i] {
			t.Fatalf("ReadRange(3,7) = %v, want %v", out, want)
		}
	}
}

func TestReadRangeOutOfBoundsErrors(t *testing.T) {
	c := writeFixedColumn(t, 1, 3)
	r := c.Reader()
	var out []value.Value
	if err := r.ReadRange(0, 10, &out); err == nil {
		t.Fatal("ReadRange past the end should fail")
	}
	if err := r.ReadRange(2, 1, &out); err == nil {
		t.Fatal("ReadRange with start > end should fail")
	}
}

func TestOpenReopensFromDisk(t *testing.T) {
	c := writeFixedColumn(t, 2, 5)
	dir := c.Dir()
	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Len() != 10 || reopened.Tag() != value.Int64 {
		t.Fatalf("reopened Column = len %d tag %v, want len 10 tag Int64", reopened.Len(), reopened.Tag())
	}
	r := reopened.Reader()
	var out []value.Value
	if err := r.ReadRange(0, 10, &out); err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	for i, v := range out {
		if v.Int() != int64(i) {
			t.Fatalf("reopened value %d = %d, want %d", i, v.Int(), i)
		}
	}
}

func TestVariableWidthStringColumn(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "strcol")
	w, err := OpenForWrite(dir, value.String, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	words := []string{"alpha", "beta", "gamma longer text here"}
	for _, s := range words {
		if err := sw.Write(value.NewString(s)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	c, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	r := c.Reader()
	var out []value.Value
	if err := r.ReadRange(0, 3, &out); err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	for i, s := range words {
		if out[i].Str() != s {
			t.Fatalf("value %d = %q, want %q", i, out[i].Str(), s)
		}
	}
}

func TestWriteUndefinedValuePreservesRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "undef")
	w, err := OpenForWrite(dir, value.Int64, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	if err := sw.Write(value.NewInt(1)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sw.Write(value.Undef); err != nil {
		t.Fatalf("Write(Undef): %v", err)
	}
	c, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	r := c.Reader()
	var out []value.Value
	if err := r.ReadRange(0, 2, &out); err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if out[0].Int() != 1 {
		t.Fatalf("value 0 = %d, want 1", out[0].Int())
	}
	if out[1].Tag() != value.Undefined {
		t.Fatalf("value 1 tag = %v, want Undefined", out[1].Tag())
	}
}

func TestWriteRejectsMismatchedTag(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "mismatch")
	w, err := OpenForWrite(dir, value.Int64, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	if err := sw.Write(value.NewString("nope")); err == nil {
		t.Fatal("Write with a mismatched tag should fail")
	}
}

func TestCloseTwiceFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "twice")
	w, err := OpenForWrite(dir, value.Int64, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	if _, err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := w.Close(); err != ErrInvalidState {
		t.Fatalf("second Close() = %v, want ErrInvalidState", err)
	}
}

func TestWriteAfterCloseFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "afterclose")
	w, err := OpenForWrite(dir, value.Int64, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	if _, err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sw.Write(value.NewInt(1)); err != ErrInvalidState {
		t.Fatalf("Write after Close = %v, want ErrInvalidState", err)
	}
}

func TestSegmentIteratorWalksInOrder(t *testing.T) {
	c := writeFixedColumn(t, 2, 3)
	r := c.Reader()
	it, err := r.Segment(1)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	defer it.Close()
	var got []int64
	for {
		v, ok, err := it.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v.Int())
	}
	want := []int64{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("segment 1 values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment 1 values = %v, want %v", got, want)
		}
	}
}

func TestDeleteRemovesDirectory(t *testing.T) {
	c := writeFixedColumn(t, 1, 2)
	dir := c.Dir()
	if err := Delete(dir); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Open(dir); err == nil {
		t.Fatal("Open after Delete should fail")
	}
}

func TestOpenForWriteRejectsZeroSegments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "zero")
	if _, err := OpenForWrite(dir, value.Int64, 0); err == nil {
		t.Fatal("OpenForWrite with 0 segments should fail")
	}
}
