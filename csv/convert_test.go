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

	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

func TestConvertField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NAValues = []string{"NA"}
	tok := newTokenizer(cfg)

	tests := []struct {
		field string
		tag   value.Tag
		want  value.Value
	}{
		{"42", value.Int64, value.NewInt(42)},
		{"3.5", value.Float64, value.NewFloat(3.5)},
		{"hello", value.String, value.NewString("hello")},
		{"NA", value.Int64, value.Undef},
		{"NA", value.String, value.NewString("NA")},
	}
	for _, tc := range tests {
		got, err := convertField(tok, tc.field, tc.tag)
		if err != nil {
			t.Fatalf("convertField(%q, %v) error: %v", tc.field, tc.tag, err)
		}
		if got != tc.want {
			t.Errorf("convertField(%q, %v) = %v, want %v", tc.field, tc.tag, got, tc.want)
		}
	}
}

func TestConvertFieldTypeMismatch(t *testing.T) {
	cfg := DefaultConfig()
	tok := newTokenizer(cfg)
	_, err := convertField(tok, "not-a-number", value.Int64)
	if !errs.Is(err, errs.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}
