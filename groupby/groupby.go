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

// Package groupby implements the hash-partitioned aggregation of
// §4.7: workers build partial per-partition aggregator state over
// disjoint row ranges, partial state is combined within each
// partition, and the combined groups are emitted to the output
// Frame's segment for that partition.
package groupby

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/piter"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// AggKind names one entry of the §4.7 aggregator catalog.
type AggKind int

const (
	Sum AggKind = iota
	VectorSum
	Min
	Max
	ArgMin
	ArgMax
	Count
	Avg
	VectorAverage
	Var
	Stdv
	Quantile
	ZipDict
	ZipList
	SelectOne
)

// Output names one (output name, input columns, aggregator) triple.
// Most aggregators take a single input column; ArgMin/ArgMax take
// (score, witness) and ZipDict takes (key, value). Quantile additionally
// carries the configured q-vector and emits one Vector entry per q.
type Output struct {
	Name      string
	Kind      AggKind
	Inputs    []string
	Quantiles []float64
}

// Spec is a groupby-aggregate request: group by KeyColumns, emit one
// row per distinct key tuple with one column per Output.
type Spec struct {
	KeyColumns []string
	Outputs    []Output
}

type resolvedOutput struct {
	name      string
	kind      AggKind
	inputIdx  []int
	quantiles []float64
	tag       value.Tag
	asVector  bool // ZipList only: input column tag is Float64
}

// Run groups f's rows by KeyColumns and aggregates each group per
// Outputs, writing one row per distinct key tuple to numPartitions
// segments of the Frame opened at outDir. Partitioning is by siphash
// of the wire-encoded key tuple (§3's dependency table), so a given
// key tuple always lands in the same output segment regardless of
// which worker observed it.
func Run(f *frame.Frame, spec Spec, numPartitions int, outDir string, p *pool.Pool, tok *pool.Token) (*frame.Frame, error) {
	if len(spec.KeyColumns) == 0 {
		return nil, errs.New(errs.InvalidArgument, "groupby: at least one key column is required")
	}
	if numPartitions < 1 {
		numPartitions = 1
	}

	keyIdx, err := columnIndices(f, spec.KeyColumns)
	if err != nil {
		return nil, err
	}
	outs, err := resolveOutputs(f, spec.Outputs)
	if err != nil {
		return nil, err
	}

	sizes := piter.SplitSizes(f.Len(), numWorkers(p, f.Len()))
	perWorker := make([][]partitionMap, len(sizes))

	tasks := make([]pool.Task, len(sizes))
	off := 0
	for i, sz := range sizes {
		i, lo, hi := i, off, off+sz
		off += sz
		tasks[i] = func(tk *pool.Token) error {
			local, err := scanRange(f, lo, hi, keyIdx, outs, numPartitions, tk)
			if err != nil {
				return err
			}
			for _, pm := range local {
				for _, gs := range pm {
					for _, a := range gs.aggs {
						a.PartialFinalize()
					}
				}
			}
			perWorker[i] = local
			return nil
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(spec.KeyColumns)+len(outs))
	names = append(names, spec.KeyColumns...)
	tags := make([]value.Tag, 0, cap(names))
	for _, ki := range keyIdx {
		tags = append(tags, f.ColumnTag(ki))
	}
	for _, o := range outs {
		names = append(names, o.name)
		tags = append(tags, o.tag)
	}

	w, err := frame.OpenForWrite(outDir, names, tags, numPartitions)
	if err != nil {
		return nil, err
	}

	emitTasks := make([]pool.Task, numPartitions)
	for part := 0; part < numPartitions; part++ {
		part := part
		emitTasks[part] = func(tk *pool.Token) error {
			combined := combinePartition(perWorker, part)
			sink := w.WriterFor(part)
			for _, gs := range combined {
				if err := tk.CheckCancelled(); err != nil {
					return err
				}
				row := make([]value.Value, 0, len(gs.key)+len(outs))
				row = append(row, gs.key...)
				for _, a := range gs.aggs {
					row = append(row, a.Emit())
				}
				if err := sink.Write(row); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if err := p.Run(tok, emitTasks); err != nil {
		return nil, err
	}

	return w.Close()
}

func columnIndices(f *frame.Frame, names []string) ([]int, error) {
	all := f.ColumnNames()
	idx := make([]int, len(names))
	for i, n := range names {
		found := -1
		for j, an := range all {
			if an == n {
				found = j
				break
			}
		}
		if found < 0 {
			return nil, errs.New(errs.NotFound, "groupby: no such column %q", n)
		}
		idx[i] = found
	}
	return idx, nil
}

func resolveOutputs(f *frame.Frame, outputs []Output) ([]resolvedOutput, error) {
	outs := make([]resolvedOutput, len(outputs))
	for i, o := range outputs {
		idx, err := columnIndices(f, o.Inputs)
		if err != nil {
			return nil, err
		}
		asVector := o.Kind == ZipList && len(idx) > 0 && f.ColumnTag(idx[0]) == value.Float64
		outs[i] = resolvedOutput{
			name:      o.Name,
			kind:      o.Kind,
			inputIdx:  idx,
			quantiles: o.Quantiles,
			tag:       outputTag(o.Kind, f, idx, asVector),
			asVector:  asVector,
		}
	}
	return outs, nil
}

func outputTag(kind AggKind, f *frame.Frame, inputIdx []int, asVector bool) value.Tag {
	switch kind {
	case Count:
		return value.Int64
	case Avg, Var, Stdv:
		return value.Float64
	case VectorSum, VectorAverage, Quantile:
		return value.Vector
	case ZipDict:
		return value.Dict
	case ZipList:
		// §4.7: "Vector when input is Float, else List" — decided once
		// from the input column's declared tag, since a Column's
		// output tag is fixed at OpenForWrite time and cannot vary
		// per group.
		if asVector {
			return value.Vector
		}
		return value.List
	case ArgMin, ArgMax:
		return f.ColumnTag(inputIdx[1])
	default: // Sum, Min, Max, SelectOne: same tag as the (single) input
		return f.ColumnTag(inputIdx[0])
	}
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
