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

package groupby

import (
	"path/filepath"
	"testing"

	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

func buildFrame(t *testing.T, dir string, names []string, tags []value.Tag, rows [][]value.Value) *frame.Frame {
	t.Helper()
	w, err := frame.OpenForWrite(dir, names, tags, 1)
	if err != nil {
		t.Fatalf("OpenForWrite: %v", err)
	}
	sink := w.WriterFor(0)
	for _, row := range rows {
		if err := sink.Write(row); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	f, err := w.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return f
}

func TestRunSumCountAvg(t *testing.T) {
	root := t.TempDir()
	names := []string{"grp", "x"}
	tags := []value.Tag{value.String, value.Int64}
	rows := [][]value.Value{
		{value.NewString("a"), value.NewInt(1)},
		{value.NewString("a"), value.NewInt(2)},
		{value.NewString("a"), value.NewInt(3)},
		{value.NewString("b"), value.NewInt(10)},
	}
	f := buildFrame(t, filepath.Join(root, "in"), names, tags, rows)

	p := pool.New(2)
	defer p.Close()
	tok := pool.NewToken()

	spec := Spec{
		KeyColumns: []string{"grp"},
		Outputs: []Output{
			{Name: "sum_x", Kind: Sum, Inputs: []string{"x"}},
			{Name: "cnt", Kind: Count, Inputs: []string{"x"}},
			{Name: "avg_x", Kind: Avg, Inputs: []string{"x"}},
		},
	}
	out, err := Run(f, spec, 2, filepath.Join(root, "out"), p, tok)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", out.Len())
	}

	var result [][]value.Value
	if err := out.ReadRows(0, out.Len(), &result); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}

	type stats struct{ sum, cnt, avg float64 }
	got := map[string]stats{}
	for _, row := range result {
		got[row[0].Str()] = stats{float64(row[1].Int()), float64(row[2].Int()), row[3].Float()}
	}
	want := map[string]stats{
		"a": {6, 3, 2},
		"b": {10, 1, 10},
	}
	for grp, w := range want {
		g, ok := got[grp]
		if !ok {
			t.Fatalf("missing group %q", grp)
		}
		if g != w {
			t.Errorf("group %q: got %+v, want %+v", grp, g, w)
		}
	}
}

func TestRunMinMaxArgMax(t *testing.T) {
	root := t.TempDir()
	names := []string{"grp", "score", "id"}
	tags := []value.Tag{value.String, value.Int64, value.String}
	rows := [][]value.Value{
		{value.NewString("a"), value.NewInt(5), value.NewString("r1")},
		{value.NewString("a"), value.NewInt(9), value.NewString("r2")},
		{value.NewString("a"), value.NewInt(3), value.NewString("r3")},
		{value.NewString("b"), value.NewInt(1), value.NewString("r4")},
	}
	f := buildFrame(t, filepath.Join(root, "in"), names, tags, rows)

	p := pool.New(1)
	defer p.Close()
	tok := pool.NewToken()

	spec := Spec{
		KeyColumns: []string{"grp"},
		Outputs: []Output{
			{Name: "min_score", Kind: Min, Inputs: []string{"score"}},
			{Name: "max_score", Kind: Max, Inputs: []string{"score"}},
			{Name: "argmax_id", Kind: ArgMax, Inputs: []string{"score", "id"}},
		},
	}
	out, err := Run(f, spec, 1, filepath.Join(root, "out"), p, tok)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var result [][]value.Value
	if err := out.ReadRows(0, out.Len(), &result); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}

	for _, row := range result {
		switch grp := row[0].Str(); grp {
		case "a":
			if row[1].Int() != 3 {
				t.Errorf("a min_score = %v, want 3", row[1])
			}
			if row[2].Int() != 9 {
				t.Errorf("a max_score = %v, want 9", row[2])
			}
			if row[3].Str() != "r2" {
				t.Errorf("a argmax_id = %v, want r2", row[3])
			}
		case "b":
			if row[1].Int() != 1 || row[2].Int() != 1 {
				t.Errorf("b min/max_score = %v/%v, want 1/1", row[1], row[2])
			}
		default:
			t.Errorf("unexpected group %q", grp)
		}
	}
}

func TestRunZipListAndQuantile(t *testing.T) {
	root := t.TempDir()
	names := []string{"grp", "v"}
	tags := []value.Tag{value.String, value.Float64}
	var rows [][]value.Value
	for i := 1; i <= 20; i++ {
		rows = append(rows, []value.Value{value.NewString("a"), value.NewFloat(float64(i))})
	}
	f := buildFrame(t, filepath.Join(root, "in"), names, tags, rows)

	p := pool.New(3)
	defer p.Close()
	tok := pool.NewToken()

	spec := Spec{
		KeyColumns: []string{"grp"},
		Outputs: []Output{
			{Name: "vals", Kind: ZipList, Inputs: []string{"v"}},
			{Name: "q", Kind: Quantile, Inputs: []string{"v"}, Quantiles: []float64{0.5}},
		},
	}
	out, err := Run(f, spec, 2, filepath.Join(root, "out"), p, tok)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 group, got %d", out.Len())
	}

	var result [][]value.Value
	if err := out.ReadRows(0, out.Len(), &result); err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	row := result[0]
	if row[1].Tag() != value.Vector {
		t.Fatalf("zip_list over a Float64 column should emit Vector, got %s", row[1].Tag())
	}
	if n := len(row[1].VectorElems()); n != 20 {
		t.Errorf("expected 20 zipped values, got %d", n)
	}
	if row[2].Tag() != value.Vector {
		t.Fatalf("quantile should emit Vector, got %s", row[2].Tag())
	}
	if med := row[2].VectorElems()[0]; med < 8 || med > 13 {
		t.Errorf("median of 1..20 = %v, want near 10.5", med)
	}
}

func TestRunRejectsEmptyKeyColumns(t *testing.T) {
	root := t.TempDir()
	f := buildFrame(t, filepath.Join(root, "in"),
		[]string{"x"}, []value.Tag{value.Int64},
		[][]value.Value{{value.NewInt(1)}})

	p := pool.New(1)
	defer p.Close()
	tok := pool.NewToken()

	_, err := Run(f, Spec{Outputs: []Output{{Name: "s", Kind: Sum, Inputs: []string{"x"}}}}, 1, filepath.Join(root, "out"), p, tok)
	if err == nil {
		t.Fatal("expected an error for an empty KeyColumns spec")
	}
}
