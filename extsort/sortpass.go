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
	"sort"

	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// sortPartitions sorts each partition's rows in memory by the
// composite key (§4.6 step 3), one pool.Task per partition so
// partitions sort in parallel; each task loads exactly one
// partition's rows and releases them once its sorted output is
// written, matching the per-partition memory discipline.
func sortPartitions(parts []partition, keyIdx []int, keys []Key, reg *pool.Registry, p *pool.Pool, tok *pool.Token) ([]partition, error) {
	out := make([]partition, len(parts))
	tasks := make([]pool.Task, len(parts))
	for i, part := range parts {
		i, part := i, part
		tasks[i] = func(tk *pool.Token) error {
			sorted, err := sortOnePartition(part, keyIdx, keys, reg)
			if err != nil {
				return err
			}
			out[i] = sorted
			return nil
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		return nil, err
	}
	return out, nil
}

func sortOnePartition(part partition, keyIdx []int, keys []Key, reg *pool.Registry) (partition, error) {
	var rows [][]value.Value
	if err := part.f.ReadRows(0, part.f.Len(), &rows); err != nil {
		return partition{}, err
	}
	sort.Slice(rows, func(i, j int) bool {
		return compositeCompare(keyOf(rows[i], keyIdx), keyOf(rows[j], keyIdx), keys) < 0
	})

	dir, err := reg.NewDir()
	if err != nil {
		return partition{}, err
	}
	names := part.f.ColumnNames()
	tags := make([]value.Tag, len(names))
	for i := range names {
		tags[i] = part.f.ColumnTag(i)
	}
	w, err := frame.OpenForWrite(dir, names, tags, 1)
	if err != nil {
		return partition{}, err
	}
	sink := w.WriterFor(0)
	for _, row := range rows {
		if err := sink.Write(row); err != nil {
			return partition{}, err
		}
	}
	sortedF, err := w.Close()
	if err != nil {
		return partition{}, err
	}
	return partition{dir: dir, f: sortedF}, nil
}
