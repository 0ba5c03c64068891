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
	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// groupState is one distinct key tuple's running aggregator state.
type groupState struct {
	key  []value.Value
	aggs []Aggregator
}

// partitionMap is one worker's partial state for one output
// partition: key encoding -> groupState.
type partitionMap map[string]*groupState

// scanRange reads f's rows [lo,hi), routes each row to its hash
// partition by key, and returns one partitionMap per partition
// holding this range's contribution.
func scanRange(f *frame.Frame, lo, hi int, keyIdx []int, outs []resolvedOutput, numPartitions int, tk *pool.Token) ([]partitionMap, error) {
	var rows [][]value.Value
	if err := f.ReadRows(lo, hi, &rows); err != nil {
		return nil, err
	}
	locals := make([]partitionMap, numPartitions)
	for i := range locals {
		locals[i] = make(partitionMap)
	}
	inputRow := make([]value.Value, 0, 2)
	for _, row := range rows {
		if err := tk.CheckCancelled(); err != nil {
			return nil, err
		}
		key := make([]value.Value, len(keyIdx))
		for i, ki := range keyIdx {
			key[i] = row[ki]
		}
		enc := keyBytes(key)
		part := partitionOf(enc, numPartitions)
		ks := string(enc)
		gs, ok := locals[part][ks]
		if !ok {
			gs = &groupState{key: key, aggs: newAggregators(outs)}
			locals[part][ks] = gs
		}
		for oi, o := range outs {
			inputRow = inputRow[:0]
			for _, ci := range o.inputIdx {
				inputRow = append(inputRow, row[ci])
			}
			gs.aggs[oi].Add(inputRow)
		}
	}
	return locals, nil
}

// combinePartition merges every worker's partitionMap for partition
// part into one map, combining in increasing worker order so that
// first-seen tie-breaks (ArgMin/ArgMax/SelectOne) are deterministic.
func combinePartition(perWorker [][]partitionMap, part int) partitionMap {
	combined := make(partitionMap)
	for _, worker := range perWorker {
		for ks, gs := range worker[part] {
			existing, ok := combined[ks]
			if !ok {
				combined[ks] = gs
				continue
			}
			for i, a := range existing.aggs {
				a.Combine(gs.aggs[i])
			}
		}
	}
	return combined
}
