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
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		buf      string
		lines    []string
		trailing string
	}{
		{"a,b\nc,d\n", []string{"a,b", "c,d"}, ""},
		{"a,b\r\nc,d\r\n", []string{"a,b", "c,d"}, ""},
		{"a,b\rc,d\r", []string{"a,b", "c,d"}, ""},
		{"a,b\nc,d", []string{"a,b"}, "c,d"},
		{"", nil, ""},
	}
	for _, tc := range tests {
		lines, trailing := splitLines([]byte(tc.buf))
		if !reflect.DeepEqual(lines, tc.lines) {
			t.Errorf("splitLines(%q) lines = %#v, want %#v", tc.buf, lines, tc.lines)
		}
		if trailing != tc.trailing {
			t.Errorf("splitLines(%q) trailing = %q, want %q", tc.buf, trailing, tc.trailing)
		}
	}
}

func TestLineBoundaryAfter(t *testing.T) {
	buf := []byte("aaaa\nbbbb\r\ncccc")
	tests := []struct {
		from int
		want int
	}{
		{0, 5},
		{5, 11},
		{6, 11},
		{11, 15},
	}
	for _, tc := range tests {
		got := lineBoundaryAfter(buf, tc.from)
		if got != tc.want {
			t.Errorf("lineBoundaryAfter(buf, %d) = %d, want %d", tc.from, got, tc.want)
		}
	}
}

func TestTokenizerSplit(t *testing.T) {
	cfg := DefaultConfig()
	tok := newTokenizer(cfg)
	tests := []struct {
		line string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`a,"b,c",d`, []string{"a", "b,c", "d"}},
		{`a,"b""c",d`, []string{"a", `b"c`, "d"}},
		{"a, b,  c", []string{"a", "b", "c"}},
		{"", []string{""}},
	}
	for _, tc := range tests {
		got := tok.split(tc.line)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("split(%q) = %#v, want %#v", tc.line, got, tc.want)
		}
	}
}

func TestTokenizerIsComment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CommentChar = '#'
	tok := newTokenizer(cfg)
	if !tok.isComment("# a comment") {
		t.Error("expected line to be a comment")
	}
	if tok.isComment("a,b,c") {
		t.Error("did not expect line to be a comment")
	}
}

func TestTokenizerIsNA(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NAValues = []string{"NA", "null"}
	tok := newTokenizer(cfg)
	if !tok.isNA("NA") || !tok.isNA("null") {
		t.Error("expected configured na_values to be recognized")
	}
	if tok.isNA("value") {
		t.Error("did not expect an ordinary field to be recognized as NA")
	}
}
