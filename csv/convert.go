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
	"strconv"

	"github.com/cstorelabs/cstore/date"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// convertField parses one raw field string into a typed Value per tag,
// returning an errs.TypeMismatch error on failure.
func convertField(tok *tokenizer, field string, tag value.Tag) (value.Value, error) {
	if tag != value.String && tok.isNA(field) {
		return value.Undef, nil
	}
	switch tag {
	case value.String:
		if field == "" && tok.isNA(field) {
			return value.Undef, nil
		}
		return value.NewString(field), nil
	case value.Int64:
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return value.Value{}, errs.New(errs.TypeMismatch, "cannot parse %q as int", field)
		}
		return value.NewInt(n), nil
	case value.Float64:
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return value.Value{}, errs.New(errs.TypeMismatch, "cannot parse %q as float", field)
		}
		return value.NewFloat(f), nil
	case value.DateTime:
		t, ok := date.Parse([]byte(field))
		if !ok {
			return value.Value{}, errs.New(errs.TypeMismatch, "cannot parse %q as datetime", field)
		}
		return value.NewDateTime(t), nil
	default:
		return value.NewString(field), nil
	}
}
