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

package groupby

import (
	"github.com/dchest/siphash"

	"github.com/cstorelabs/cstore/value"
	"github.com/cstorelabs/cstore/wire"
)

// siphash keys, fixed so that a key tuple always routes to the same
// partition across workers and across runs of the same query.
// Grounded on tenant.go's siphash.Hash128(k0, k1, buf.Bytes()) idiom.
const (
	partitionK0 = 0x9f17c3fd5efd3ce4
	partitionK1 = 0xdbf1ba5f07eee2c0
)

// keyBytes returns the wire encoding of vs, used both as the
// partition-routing hash input and as a comparable Go map key (Value
// itself is not comparable: it can carry slice-typed payloads).
func keyBytes(vs []value.Value) []byte {
	var buf wire.Buffer
	for _, v := range vs {
		buf.PutValue(v)
	}
	return buf.Bytes()
}

// partitionOf hashes encoded key bytes into [0,numPartitions).
func partitionOf(encoded []byte, numPartitions int) int {
	if numPartitions <= 1 {
		return 0
	}
	lo, _ := siphash.Hash128(partitionK0, partitionK1, encoded)
	return int(lo % uint64(numPartitions))
}
