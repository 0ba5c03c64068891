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

package extsort

import (
	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// partition is one temporary, unsorted shuffle-pass output (§4.6 step
// 2: "each partition is a temporary Frame backed by the Column
// substrate").
type partition struct {
	dir string
	f   *frame.Frame
}

// shuffle splits f's rows across p's workers, routes each worker's
// share into per-partition row buffers by range partition, then
// drains the buffers (in worker order, preserving each worker's
// relative row order within a partition) into one temporary Frame per
// partition.
func shuffle(f *frame.Frame, keyIdx []int, keys []Key, splitters [][]value.Value, numPartitions int, reg *pool.Registry, p *pool.Pool, tok *pool.Token) ([]partition, error) {
	sizes := piter.SplitSizes(f.Len(), numWorkers(p, f.Len()))
	buffers := make([][][][]value.Value, len(sizes)) // buffers[worker][partition] = rows

	tasks := make([]pool.Task, len(sizes))
	off := 0
	for i, sz := range sizes {
		i, lo, hi := i, off, off+sz
		off += sz
		tasks[i] = func(tk *pool.Token) error {
			var rows [][]value.Value
			if err := f.ReadRows(lo, hi, &rows); err != nil {
				return err
			}
			local := make([][][]value.Value, numPartitions)
			for _, row := range rows {
				if err := tk.CheckCancelled(); err != nil {
					return err
				}
				part := 0
				if len(splitters) > 0 {
					part = partitionOf(keyOf(row, keyIdx), splitters, keys)
				}
				local[part] = append(local[part], row)
			}
			buffers[i] = local
			return nil
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		return nil, err
	}

	names := f.ColumnNames()
	tags := make([]value.Tag, len(names))
	for i := range names {
		tags[i] = f.ColumnTag(i)
	}

	parts := make([]partition, numPartitions)
	for pi := 0; pi < numPartitions; pi++ {
		dir, err := reg.NewDir()
		if err != nil {
			return nil, err
		}
		w, err := frame.OpenForWrite(dir, names, tags, 1)
		if err != nil {
			return nil, err
		}
		sink := w.WriterFor(0)
		for _, worker := range buffers {
			for _, row := range worker[pi] {
				if err := sink.Write(row); err != nil {
					return nil, err
				}
			}
		}
		pf, err := w.Close()
		if err != nil {
			return nil, err
		}
		parts[pi] = partition{dir: dir, f: pf}
	}
	return parts, nil
}

func numWorkers(p *pool.Pool, total int) int {
	n := p.Workers()
	if n > total && total > 0 {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}
