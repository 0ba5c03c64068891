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

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/utf8"
)

// StrLen returns the number of runes (not bytes) in a String Value, the
// way the teacher's own symbol-table length cache does it: counting
// runes via a SWAR continuation-byte scan instead of decoding each one
// with unicode/utf8.DecodeRune.
func StrLen(v Value) (Value, error) {
	if v.IsUndefined() {
		return Undef, nil
	}
	if v.tag != String {
		return Value{}, errs.New(errs.TypeMismatch, "StrLen called on %s, want String", v.tag)
	}
	return NewInt(int64(utf8.ValidStringLength([]byte(v.s)))), nil
}
