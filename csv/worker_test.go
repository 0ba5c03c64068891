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

package csv

import (
	"testing"

	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

func TestRangeBoundsOnLineBoundaries(t *testing.T) {
	buf := []byte("aaa\nbbb\nccc\nddd\n")
	bounds := rangeBounds(buf, 3)
	if bounds[0] != 0 || bounds[len(bounds)-1] != len(buf) {
		t.Fatalf("rangeBounds must span the whole buffer, got %v", bounds)
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			t.Fatalf("rangeBounds must be strictly increasing, got %v", bounds)
		}
		if bounds[i] < len(buf) && buf[bounds[i]-1] != '\n' {
			t.Fatalf("boundary %d does not land after a line terminator: %v", bounds[i], bounds)
		}
	}
}

func TestParseOneRange(t *testing.T) {
	cfg := DefaultConfig()
	tok := newTokenizer(cfg)
	buf := []byte("1,a\n2,b\n3,c\n")
	pr, err := parseOneRange(buf, cfg, tok, 2, []value.Tag{value.Int64, value.String})
	if err != nil {
		t.Fatalf("parseOneRange: %v", err)
	}
	if len(pr.rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(pr.rows))
	}
	if pr.rows[0][0] != value.NewInt(1) || pr.rows[0][1] != value.NewString("a") {
		t.Errorf("unexpected first row: %v", pr.rows[0])
	}
}

func TestParseOneRangeArityMismatchContinues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContinueOnFailure = true
	cfg.StoreErrors = true
	tok := newTokenizer(cfg)
	buf := []byte("1,a\n2,b,extra\n3,c\n")
	pr, err := parseOneRange(buf, cfg, tok, 2, []value.Tag{value.Int64, value.String})
	if err != nil {
		t.Fatalf("parseOneRange: %v", err)
	}
	if len(pr.rows) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(pr.rows))
	}
	if len(pr.errors) != 1 {
		t.Fatalf("expected 1 diverted row, got %d", len(pr.errors))
	}
}

func TestParseBuffer(t *testing.T) {
	cfg := DefaultConfig()
	tok := newTokenizer(cfg)
	buf := []byte("1,a\n2,b\n3,c\n4,d\n")
	p := pool.New(2)
	defer p.Close()
	tokn := pool.NewToken()
	ranges, err := parseBuffer(p, tokn, buf, cfg, tok, 2, []value.Tag{value.Int64, value.String}, 2)
	if err != nil {
		t.Fatalf("parseBuffer: %v", err)
	}
	total := 0
	for _, r := range ranges {
		total += len(r.rows)
	}
	if total != 4 {
		t.Fatalf("expected 4 rows across all ranges, got %d", total)
	}
}
