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
	"github.com/cstorelabs/cstore/op"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// concatenate builds one lazy op.AppendRows chain over the sorted
// partitions, in partition order (§4.6 step 4), and materializes it
// once into outDir.
func concatenate(sorted []partition, outDir string, segments int, p *pool.Pool, tok *pool.Token) (*frame.Frame, error) {
	if len(sorted) == 0 {
		return nil, nil
	}
	chain := sorted[0].f.AsRowNode()
	for i := 1; i < len(sorted); i++ {
		chain = op.AppendRows(chain, sorted[i].f.AsRowNode())
	}

	names := sorted[0].f.ColumnNames()
	tags := make([]value.Tag, len(names))
	for i := range names {
		tags[i] = sorted[0].f.ColumnTag(i)
	}
	if segments < 1 {
		segments = 1
	}
	w, err := frame.OpenForWrite(outDir, names, tags, segments)
	if err != nil {
		return nil, err
	}
	if err := op.ForceRows(chain, w, segments, p, tok); err != nil {
		return nil, err
	}
	return w.Close()
}
