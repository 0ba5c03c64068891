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

import "github.com/cstorelabs/cstore/value"

// Scan is the cooperative linear-scan iterator used by foreign
// callers (§6): Begin resets it, subsequent NextBatch(k) calls return
// up to k rows and fewer at EOF. Any schema mutation on the Frame that
// produced it invalidates the Scan; this module enforces that by
// construction, since schema mutations return a *new* Frame rather
// than mutating the original.
type Scan struct {
	f   *Frame
	pos int
}

// Begin starts a fresh cooperative scan over f.
func (f *Frame) Begin() *Scan { return &Scan{f: f} }

// NextBatch returns up to k rows starting from the scan's current
// position; returns fewer than k only at EOF.
func (s *Scan) NextBatch(k int) ([][]value.Value, error) {
	if s.pos >= s.f.Len() {
		return nil, nil
	}
	end := s.pos + k
	if end > s.f.Len() {
		end = s.f.Len()
	}
	var out [][]value.Value
	if err := s.f.ReadRows(s.pos, end, &out); err != nil {
		return nil, err
	}
	s.pos = end
	return out, nil
}
