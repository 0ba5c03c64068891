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

import "github.com/cstorelabs/cstore/value"

// Aggregator is the shared interface implemented by every entry of
// the §4.7 catalog. Add feeds one row's selected input values into
// the aggregator's running state. PartialFinalize is called once per
// worker-local aggregator before combining across workers within a
// partition (§4.7 step 2); aggregators that don't need a distinct
// finalize step (everything but Quantile) leave it a no-op. Combine
// merges another same-kind Aggregator's state into this one,
// associatively and commutatively except where the catalog documents
// otherwise (ArgMin/ArgMax/SelectOne break ties by first-seen, so
// Combine must be called in a stable, deterministic worker order).
// Emit produces the final output Value.
type Aggregator interface {
	Add(row []value.Value)
	PartialFinalize()
	Combine(other Aggregator)
	Emit() value.Value
}

func newAggregator(o resolvedOutput) Aggregator {
	switch o.kind {
	case Sum:
		return &sumAgg{acc: value.Undef}
	case VectorSum:
		return &vectorSumAgg{acc: value.Undef}
	case Min:
		return &minMaxAgg{max: false}
	case Max:
		return &minMaxAgg{max: true}
	case ArgMin:
		return &argAgg{max: false}
	case ArgMax:
		return &argAgg{max: true}
	case Count:
		return &countAgg{}
	case Avg:
		return &avgAgg{}
	case VectorAverage:
		return &vectorAvgAgg{acc: value.Undef}
	case Var:
		return &varAgg{}
	case Stdv:
		return &varAgg{stdv: true}
	case Quantile:
		return &quantileAgg{qs: o.quantiles}
	case ZipDict:
		return &zipDictAgg{}
	case ZipList:
		return &zipListAgg{asVector: o.asVector}
	case SelectOne:
		return &selectOneAgg{}
	default:
		panic("groupby: unknown aggregator kind")
	}
}

func newAggregators(outs []resolvedOutput) []Aggregator {
	aggs := make([]Aggregator, len(outs))
	for i, o := range outs {
		aggs[i] = newAggregator(o)
	}
	return aggs
}

func numericFloat(v value.Value) float64 {
	if v.Tag() == value.Int64 {
		return float64(v.Int())
	}
	return v.Float()
}
