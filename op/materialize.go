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
	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// writeBatch is the size materialization reads from a cursor at a
// time; it bounds peak memory while amortizing per-call overhead.
const writeBatch = 4096

// Force commits n's output to a freshly-created Column directory with
// `segments` parallel cursors, driven by p. Each cursor runs as one
// pool task, matching §5's "a submitted batch of dop cursors is one
// task per cursor; tasks do not migrate". It is the mechanism behind
// every one of the four implicit-materialization triggers in §4.3;
// callers (frame, archive) decide when to invoke it.
func Force(n ColumnNode, dir string, segments int, p *pool.Pool, tok *pool.Token) (*column.Column, error) {
	it, err := n.Iter(segments, nil)
	if err != nil {
		return nil, err
	}
	w, err := column.OpenForWrite(dir, n.Tag(), len(it.Cursors))
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, len(it.Cursors))
	for i, cur := range it.Cursors {
		cur, sw := cur, w.WriterFor(i)
		tasks[i] = func(t *pool.Token) error {
			return piter.DrainValues(cur, writeBatch, func(v value.Value) error {
				if err := t.CheckCancelled(); err != nil {
					return err
				}
				return sw.Write(v)
			})
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		return nil, err
	}
	return w.Close()
}
