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

package frame

import (
	"path/filepath"
	"testing"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// buildFrame writes a two-column (Int64, String) Frame of n rows to a
// fresh directory and returns the resulting read-only Frame.
func buildFrame(t *testing.T, n int) *Frame {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "f")
	w, err := OpenForWrite(dir, []string{"id", "label"}, []value.Tag{value.Int64, value.String}, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	for i := 0; i < n; i++ {
		row := []value.Value{value.NewInt(int64(i)), value.NewString(label(i))}
		if err := sw.Write(row); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	f, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return f
}

func label(i int) string {
	return string(rune('a' + (i % 26)))
}

func TestOpenForWriteCloseRoundTrip(t *testing.T) {
	f := buildFrame(t, 10)
	if f.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", f.Len())
	}
	if f.NumColumns() != 2 {
		t.Fatalf("NumColumns() = %d, want 2", f.NumColumns())
	}
	if got := f.ColumnNames(); len(got) != 2 || got[0] != "id" || got[1] != "label" {
		t.Fatalf("ColumnNames() = %v", got)
	}

	var rows [][]value.Value
	if err := f.ReadRows(0, f.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	for i, row := range rows {
		if row[0].Int() != int64(i) || row[1].Str() != label(i) {
			t.Fatalf("row %d = %v, want [%d %s]", i, row, i, label(i))
		}
	}
}

func TestFrameOpenReopensFromDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "f")
	w, err := OpenForWrite(dir, []string{"id"}, []value.Tag{value.Int64}, 2)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	for seg := 0; seg < 2; seg++ {
		sw := w.WriterFor(seg)
		if err := sw.Write([]value.Value{value.NewInt(int64(seg))}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if _, err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Len() != 2 {
		t.Fatalf("reopened Len() = %d, want 2", reopened.Len())
	}
	if got := reopened.ColumnNames(); len(got) != 1 || got[0] != "id" {
		t.Fatalf("reopened ColumnNames() = %v, want [id]", got)
	}
}

func TestSelectColumnsRejectsUnknownAndDuplicate(t *testing.T) {
	f := buildFrame(t, 3)
	if _, err := f.SelectColumns([]string{"nope"}); !errs.Is(err, errs.NotFound) {
		t.Fatalf("SelectColumns(unknown) = %v, want NotFound", err)
	}
	if _, err := f.SelectColumns([]string{"id", "id"}); !errs.Is(err, errs.DuplicateName) {
		t.Fatalf("SelectColumns(dup) = %v, want DuplicateName", err)
	}
	proj, err := f.SelectColumn("label")
	if err != nil {
		t.Fatalf("SelectColumn: %v", err)
	}
	if proj.NumColumns() != 1 || proj.ColumnNames()[0] != "label" {
		t.Fatalf("SelectColumn result = %v", proj.ColumnNames())
	}
}

func TestAddRemoveSwapRenameColumn(t *testing.T) {
	f := buildFrame(t, 3)

	dir := filepath.Join(t.TempDir(), "extra")
	w, err := column.OpenForWrite(dir, value.Int64, 1)
	if err != nil {
		t.Fatalf("column.OpenForWrite: %v", err)
	}
	sw := w.WriterFor(0)
	for i := 0; i < 3; i++ {
		sw.Write(value.NewInt(int64(i * 10)))
	}
	extra, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	added, err := f.AddColumn(extra, "extra")
	if err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if added.NumColumns() != 3 {
		t.Fatalf("AddColumn result has %d columns, want 3", added.NumColumns())
	}
	if _, err := added.AddColumn(extra, "extra"); !errs.Is(err, errs.DuplicateName) {
		t.Fatalf("AddColumn(dup name) = %v, want DuplicateName", err)
	}

	removed, err := added.RemoveColumn("id")
	if err != nil {
		t.Fatalf("RemoveColumn: %v", err)
	}
	if removed.NumColumns() != 2 {
		t.Fatalf("RemoveColumn result has %d columns, want 2", removed.NumColumns())
	}
	if _, err := removed.RemoveColumn("id"); !errs.Is(err, errs.NotFound) {
		t.Fatalf("RemoveColumn(missing) = %v, want NotFound", err)
	}

	swapped, err := added.SwapColumns("id", "extra")
	if err != nil {
		t.Fatalf("SwapColumns: %v", err)
	}
	names := swapped.ColumnNames()
	if names[0] != "extra" || names[len(names)-1] != "id" {
		t.Fatalf("SwapColumns result = %v", names)
	}

	renamed, err := added.SetColumnName("extra", "bonus")
	if err != nil {
		t.Fatalf("SetColumnName: %v", err)
	}
	if idx := renamed.indexOf("bonus"); idx < 0 {
		t.Fatal("SetColumnName did not rename the column")
	}
	if _, err := renamed.SetColumnName("id", "bonus"); !errs.Is(err, errs.DuplicateName) {
		t.Fatalf("SetColumnName(collision) = %v, want DuplicateName", err)
	}
}

func TestHeadTailCopyRange(t *testing.T) {
	f := buildFrame(t, 10)

	head, err := f.Head(3)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	var rows [][]value.Value
	if err := head.ReadRows(0, head.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	for i, row := range rows {
		if row[0].Int() != int64(i) {
			t.Fatalf("Head row %d = %d, want %d", i, row[0].Int(), i)
		}
	}

	tail, err := f.Tail(3)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	rows = nil
	if err := tail.ReadRows(0, tail.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	for i, row := range rows {
		want := int64(7 + i)
		if row[0].Int() != want {
			t.Fatalf("Tail row %d = %d, want %d", i, row[0].Int(), want)
		}
	}

	stepped, err := f.CopyRange(0, 2, 10)
	if err != nil {
		t.Fatalf("CopyRange: %v", err)
	}
	if stepped.Len() != 5 {
		t.Fatalf("CopyRange len = %d, want 5", stepped.Len())
	}
	rows = nil
	if err := stepped.ReadRows(0, stepped.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	for i, row := range rows {
		want := int64(i * 2)
		if row[0].Int() != want {
			t.Fatalf("CopyRange row %d = %d, want %d", i, row[0].Int(), want)
		}
	}

	if _, err := f.CopyRange(0, 0, 10); !errs.Is(err, errs.InvalidArgument) {
		t.Fatalf("CopyRange(step=0) = %v, want InvalidArgument", err)
	}
}

func TestAppendRequiresMatchingSchema(t *testing.T) {
	a := buildFrame(t, 3)
	b := buildFrame(t, 4)

	p := pool.New(2)
	defer p.Close()
	tok := pool.NewToken()

	dir := filepath.Join(t.TempDir(), "appended")
	joined, err := a.Append(b, dir, 2, p, tok)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if joined.Len() != 7 {
		t.Fatalf("Append result len = %d, want 7", joined.Len())
	}
	var rows [][]value.Value
	if err := joined.ReadRows(0, joined.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	for i := 0; i < 3; i++ {
		if rows[i][0].Int() != int64(i) {
			t.Fatalf("joined row %d = %d, want %d", i, rows[i][0].Int(), i)
		}
	}
	for i := 0; i < 4; i++ {
		if rows[3+i][0].Int() != int64(i) {
			t.Fatalf("joined row %d = %d, want %d", 3+i, rows[3+i][0].Int(), i)
		}
	}

	mismatched, err := a.SelectColumn("id")
	if err != nil {
		t.Fatalf("SelectColumn: %v", err)
	}
	if _, err := a.Append(mismatched, filepath.Join(t.TempDir(), "x"), 1, p, tok); !errs.Is(err, errs.SchemaMismatch) {
		t.Fatalf("Append(mismatched schema) = %v, want SchemaMismatch", err)
	}
}

func TestPackColumnsList(t *testing.T) {
	f := buildFrame(t, 3)
	packed, err := f.PackColumns([]string{"id", "label"}, "packed", false)
	if err != nil {
		t.Fatalf("PackColumns: %v", err)
	}
	if packed.NumColumns() != 1 || packed.ColumnNames()[0] != "packed" {
		t.Fatalf("PackColumns result = %v", packed.ColumnNames())
	}
	var rows [][]value.Value
	if err := packed.ReadRows(0, packed.Len(), &rows); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if rows[0][0].Tag() != value.List {
		t.Fatalf("packed value tag = %v, want List", rows[0][0].Tag())
	}
}

func TestAsRowNodeReportsSize(t *testing.T) {
	f := buildFrame(t, 5)
	node := f.AsRowNode()
	if node.HasSize() != true {
		t.Fatal("AsRowNode() of a materialized Frame should report HasSize")
	}
	n, err := node.Size()
	if err != nil || n != 5 {
		t.Fatalf("Size() = (%d, %v), want (5, nil)", n, err)
	}
}
