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

package op

import (
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// ForceRows drives n to completion against sink, one pool task per
// cursor, mirroring Force's column-level materialization.
func ForceRows(n RowNode, sink RowSink, segments int, p *pool.Pool, tok *pool.Token) error {
	it, err := n.Iter(segments, nil)
	if err != nil {
		return err
	}
	tasks := make([]pool.Task, len(it.Cursors))
	for i, cur := range it.Cursors {
		cur, sw := cur, sink.WriterFor(i)
		tasks[i] = func(t *pool.Token) error {
			return piter.DrainRows(cur, writeBatch, func(row []value.Value) error {
				if err := t.CheckCancelled(); err != nil {
					return err
				}
				return sw.Write(row)
			})
		}
	}
	return p.Run(tok, tasks)
}
