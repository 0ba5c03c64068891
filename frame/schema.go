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
	"fmt"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
)

// SelectColumn returns a single-column Frame sharing the underlying
// Column (no copy).
func (f *Frame) SelectColumn(name string) (*Frame, error) {
	return f.SelectColumns([]string{name})
}

// SelectColumns returns a projected Frame sharing the underlying
// Columns (no copy); duplicate names in the request fail with
// DuplicateName.
func (f *Frame) SelectColumns(names []string) (*Frame, error) {
	if err := checkUniqueNames(names); err != nil {
		return nil, err
	}
	cols := make([]*column.Column, len(names))
	for i, n := range names {
		idx := f.indexOf(n)
		if idx < 0 {
			return nil, errs.New(errs.NotFound, "frame: no such column %q", n)
		}
		cols[i] = f.columns[idx]
	}
	return &Frame{names: append([]string(nil), names...), columns: cols}, nil
}

// AddColumn returns a new Frame with c appended under name. If name is
// empty, it is auto-generated as "X<k>" where k is one past the
// current column count. Fails with LengthMismatch unless f is empty
// (in which case c's length fixes the Frame's length) or c.Len()
// equals f.Len(); fails with DuplicateName if name collides.
func (f *Frame) AddColumn(c *column.Column, name string) (*Frame, error) {
	if name == "" {
		name = fmt.Sprintf("X%d", len(f.columns)+1)
	}
	if f.indexOf(name) >= 0 {
		return nil, errs.New(errs.DuplicateName, "frame: duplicate column name %q", name)
	}
	if len(f.columns) > 0 && c.Len() != f.Len() {
		return nil, errs.New(errs.LengthMismatch, "frame: new column has length %d, frame has length %d", c.Len(), f.Len())
	}
	return &Frame{
		names:   append(append([]string(nil), f.names...), name),
		columns: append(append([]*column.Column(nil), f.columns...), c),
	}, nil
}

// RemoveColumn returns a new Frame without the named column.
func (f *Frame) RemoveColumn(name string) (*Frame, error) {
	idx := f.indexOf(name)
	if idx < 0 {
		return nil, errs.New(errs.NotFound, "frame: no such column %q", name)
	}
	names := make([]string, 0, len(f.names)-1)
	cols := make([]*column.Column, 0, len(f.columns)-1)
	for i := range f.names {
		if i == idx {
			continue
		}
		names = append(names, f.names[i])
		cols = append(cols, f.columns[i])
	}
	return &Frame{names: names, columns: cols}, nil
}

// SwapColumns returns a new Frame with the positions of a and b
// exchanged.
func (f *Frame) SwapColumns(a, b string) (*Frame, error) {
	ia, ib := f.indexOf(a), f.indexOf(b)
	if ia < 0 {
		return nil, errs.New(errs.NotFound, "frame: no such column %q", a)
	}
	if ib < 0 {
		return nil, errs.New(errs.NotFound, "frame: no such column %q", b)
	}
	names := append([]string(nil), f.names...)
	cols := append([]*column.Column(nil), f.columns...)
	names[ia], names[ib] = names[ib], names[ia]
	cols[ia], cols[ib] = cols[ib], cols[ia]
	return &Frame{names: names, columns: cols}, nil
}

// SetColumnName returns a new Frame with the named column renamed.
func (f *Frame) SetColumnName(old, new string) (*Frame, error) {
	idx := f.indexOf(old)
	if idx < 0 {
		return nil, errs.New(errs.NotFound, "frame: no such column %q", old)
	}
	if new != old && f.indexOf(new) >= 0 {
		return nil, errs.New(errs.DuplicateName, "frame: duplicate column name %q", new)
	}
	names := append([]string(nil), f.names...)
	names[idx] = new
	return &Frame{names: names, columns: f.columns}, nil
}

// schemaEqual reports whether f and g have identical column names (in
// order) and tags, the precondition for Append (§4.2).
func schemaEqual(f, g *Frame) bool {
	if len(f.columns) != len(g.columns) {
		return false
	}
	for i := range f.columns {
		if f.names[i] != g.names[i] || f.columns[i].Tag() != g.columns[i].Tag() {
			return false
		}
	}
	return true
}
