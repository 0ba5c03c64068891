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
	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// PackColumns folds the named columns into a single new column, Dict-
// or List-typed per the dictionary flag, replacing them in the
// returned Frame with one column named outName. Recovered from the
// original engine's unity_sframe pack_columns operation.
func (f *Frame) PackColumns(names []string, outName string, dictionary bool) (*Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = f.indexOf(n)
		if idx[i] < 0 {
			return nil, errs.New(errs.NotFound, "frame: no such column %q", n)
		}
	}
	readers := make([]*column.Reader, len(idx))
	for i, ci := range idx {
		readers[i] = f.columns[ci].Reader()
	}
	n := f.Len()
	packed := make([]value.Value, n)
	rowBuf := make([][]value.Value, len(idx))
	for i, r := range readers {
		if err := r.ReadRange(0, n, &rowBuf[i]); err != nil {
			return nil, err
		}
	}
	for row := 0; row < n; row++ {
		if dictionary {
			keys := make([]value.Value, len(idx))
			vals := make([]value.Value, len(idx))
			for i, name := range names {
				keys[i] = value.NewString(name)
				vals[i] = rowBuf[i][row]
			}
			packed[row] = value.NewDict(keys, vals)
		} else {
			elems := make([]value.Value, len(idx))
			for i := range idx {
				elems[i] = rowBuf[i][row]
			}
			packed[row] = value.NewList(elems)
		}
	}

	keep := make(map[int]bool, len(idx))
	for _, i := range idx {
		keep[i] = true
	}
	names2 := make([]string, 0, len(f.names)-len(idx)+1)
	cols2 := make([]*column.Column, 0, len(f.columns)-len(idx)+1)
	for i := range f.columns {
		if keep[i] {
			continue
		}
		names2 = append(names2, f.names[i])
		cols2 = append(cols2, f.columns[i])
	}

	tag := value.List
	if dictionary {
		tag = value.Dict
	}
	dir, err := tempColumnDir()
	if err != nil {
		return nil, err
	}
	w, err := column.OpenForWrite(dir, tag, 1)
	if err != nil {
		return nil, err
	}
	sw := w.WriterFor(0)
	for _, v := range packed {
		if err := sw.Write(v); err != nil {
			return nil, err
		}
	}
	outCol, err := w.Close()
	if err != nil {
		return nil, err
	}
	names2 = append(names2, outName)
	cols2 = append(cols2, outCol)
	return New(names2, cols2)
}

