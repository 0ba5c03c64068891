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
	"math"

	"github.com/cstorelabs/cstore/internal/percentile"
	"github.com/cstorelabs/cstore/value"
)

// sumAgg implements `sum`: Int/Float accumulation via value.Add2,
// which already skips Undefined inputs (§4.7 catalog).
type sumAgg struct{ acc value.Value }

func (a *sumAgg) Add(row []value.Value)       { a.acc = value.Add2(a.acc, row[0]) }
func (a *sumAgg) PartialFinalize()             {}
func (a *sumAgg) Combine(other Aggregator)     { a.acc = value.Add2(a.acc, other.(*sumAgg).acc) }
func (a *sumAgg) Emit() value.Value            { return a.acc }

// vectorSumAgg implements `vector_sum` via value.AddVector, which
// already yields Undefined on a length mismatch.
type vectorSumAgg struct{ acc value.Value }

func (a *vectorSumAgg) Add(row []value.Value)   { a.acc = value.AddVector(a.acc, row[0]) }
func (a *vectorSumAgg) PartialFinalize()         {}
func (a *vectorSumAgg) Combine(other Aggregator) {
	a.acc = value.AddVector(a.acc, other.(*vectorSumAgg).acc)
}
func (a *vectorSumAgg) Emit() value.Value { return a.acc }

// minMaxAgg implements `min`/`max`: Undefined inputs are skipped; an
// all-Undefined group emits Undefined.
type minMaxAgg struct {
	max  bool
	best value.Value
	has  bool
}

func (a *minMaxAgg) better(v value.Value) bool {
	c := value.Compare(v, a.best)
	if a.max {
		return c > 0
	}
	return c < 0
}

func (a *minMaxAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	if !a.has {
		a.best, a.has = v, true
		return
	}
	if a.better(v) {
		a.best = v
	}
}

func (a *minMaxAgg) PartialFinalize() {}

func (a *minMaxAgg) Combine(other Aggregator) {
	o := other.(*minMaxAgg)
	if !o.has {
		return
	}
	if !a.has {
		a.best, a.has = o.best, true
		return
	}
	if a.better(o.best) {
		a.best = o.best
	}
}

func (a *minMaxAgg) Emit() value.Value {
	if !a.has {
		return value.Undef
	}
	return a.best
}

// argAgg implements `argmin`/`argmax`: Add takes (score, witness);
// ties keep the first-seen witness, so Combine must be invoked in a
// stable worker order (the caller's combinePartition guarantees this).
type argAgg struct {
	max         bool
	bestScore   value.Value
	bestWitness value.Value
	has         bool
}

func (a *argAgg) better(score value.Value) bool {
	c := value.Compare(score, a.bestScore)
	if a.max {
		return c > 0
	}
	return c < 0
}

func (a *argAgg) Add(row []value.Value) {
	score, witness := row[0], row[1]
	if score.IsUndefined() {
		return
	}
	if !a.has {
		a.bestScore, a.bestWitness, a.has = score, witness, true
		return
	}
	if a.better(score) {
		a.bestScore, a.bestWitness = score, witness
	}
}

func (a *argAgg) PartialFinalize() {}

func (a *argAgg) Combine(other Aggregator) {
	o := other.(*argAgg)
	if !o.has {
		return
	}
	if !a.has {
		a.bestScore, a.bestWitness, a.has = o.bestScore, o.bestWitness, true
		return
	}
	if a.better(o.bestScore) {
		a.bestScore, a.bestWitness = o.bestScore, o.bestWitness
	}
}

func (a *argAgg) Emit() value.Value {
	if !a.has {
		return value.Undef
	}
	return a.bestWitness
}

// countAgg implements `count`: every row counts, including ones
// whose declared input is Undefined.
type countAgg struct{ n int64 }

func (a *countAgg) Add(row []value.Value)     { a.n++ }
func (a *countAgg) PartialFinalize()           {}
func (a *countAgg) Combine(other Aggregator)   { a.n += other.(*countAgg).n }
func (a *countAgg) Emit() value.Value          { return value.NewInt(a.n) }

// avgAgg implements `avg` via the incremental-mean recurrence
// (mean += (x-mean)/n), the "numerically-stable recurrence" the
// catalog calls for; Combine merges two (mean, n) pairs by weighted
// average rather than re-deriving from raw sums.
type avgAgg struct {
	mean float64
	n    int64
}

func (a *avgAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	a.n++
	a.mean += (numericFloat(v) - a.mean) / float64(a.n)
}

func (a *avgAgg) PartialFinalize() {}

func (a *avgAgg) Combine(other Aggregator) {
	o := other.(*avgAgg)
	if o.n == 0 {
		return
	}
	if a.n == 0 {
		a.mean, a.n = o.mean, o.n
		return
	}
	total := a.n + o.n
	a.mean = (a.mean*float64(a.n) + o.mean*float64(o.n)) / float64(total)
	a.n = total
}

func (a *avgAgg) Emit() value.Value {
	if a.n == 0 {
		return value.Undef
	}
	return value.NewFloat(a.mean)
}

// vectorAvgAgg implements `vector_average`: an elementwise vector sum
// plus a count, divided elementwise at Emit. A length mismatch across
// inputs yields Undefined through value.AddVector.
type vectorAvgAgg struct {
	acc value.Value
	n   int64
}

func (a *vectorAvgAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	a.acc = value.AddVector(a.acc, v)
	a.n++
}

func (a *vectorAvgAgg) PartialFinalize() {}

func (a *vectorAvgAgg) Combine(other Aggregator) {
	o := other.(*vectorAvgAgg)
	a.acc = value.AddVector(a.acc, o.acc)
	a.n += o.n
}

func (a *vectorAvgAgg) Emit() value.Value {
	if a.n == 0 || a.acc.IsUndefined() {
		return value.Undef
	}
	elems := a.acc.VectorElems()
	out := make([]float64, len(elems))
	for i, e := range elems {
		out[i] = e / float64(a.n)
	}
	return value.NewVector(out)
}

// varAgg implements `var`/`stdv` via Welford's algorithm, combined
// across workers with Chan et al.'s parallel-variance formula.
// ddof=0, per the catalog's stated default.
type varAgg struct {
	stdv       bool
	mean, m2   float64
	n          int64
}

func (a *varAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	a.n++
	x := numericFloat(v)
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

func (a *varAgg) PartialFinalize() {}

func (a *varAgg) Combine(other Aggregator) {
	o := other.(*varAgg)
	if o.n == 0 {
		return
	}
	if a.n == 0 {
		a.mean, a.m2, a.n = o.mean, o.m2, o.n
		return
	}
	delta := o.mean - a.mean
	total := a.n + o.n
	newMean := a.mean + delta*float64(o.n)/float64(total)
	newM2 := a.m2 + o.m2 + delta*delta*float64(a.n)*float64(o.n)/float64(total)
	a.mean, a.m2, a.n = newMean, newM2, total
}

func (a *varAgg) Emit() value.Value {
	if a.n == 0 {
		return value.Undef
	}
	variance := a.m2 / float64(a.n)
	if a.stdv {
		return value.NewFloat(math.Sqrt(variance))
	}
	return value.NewFloat(variance)
}

// quantileCompression is the t-digest compression parameter. The
// internal/percentile digest keeps centroids in fixed-size blocks and
// does not accept a value above 16 (see DESIGN.md's Open Question
// decision on quantile sketch accuracy).
const quantileCompression = 16

// quantileAgg implements `quantile`: raw values are buffered until
// PartialFinalize builds a t-digest, after which Combine only ever
// merges digests (never raw buffers), matching the catalog's note
// that partial_finalize runs once per worker-local aggregator before
// combining.
type quantileAgg struct {
	qs     []float64
	buf    []float32
	digest *percentile.TDigest
}

func (a *quantileAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	a.buf = append(a.buf, float32(numericFloat(v)))
}

func (a *quantileAgg) PartialFinalize() {
	if a.digest != nil || len(a.buf) == 0 {
		return
	}
	// NewTDigest takes at most 16 values at a time.
	for len(a.buf) > 0 {
		n := len(a.buf)
		if n > 16 {
			n = 16
		}
		d := percentile.NewTDigest(a.buf[:n], quantileCompression)
		if a.digest == nil {
			a.digest = d
		} else {
			a.digest.Merge(d, quantileCompression)
		}
		a.buf = a.buf[n:]
	}
	a.buf = nil
}

func (a *quantileAgg) Combine(other Aggregator) {
	o := other.(*quantileAgg)
	if o.digest == nil {
		return
	}
	if a.digest == nil {
		a.digest = o.digest
		return
	}
	a.digest.Merge(o.digest, quantileCompression)
}

func (a *quantileAgg) Emit() value.Value {
	if a.digest == nil {
		return value.Undef
	}
	ps := make([]float32, len(a.qs))
	for i, q := range a.qs {
		ps[i] = float32(q)
	}
	out := a.digest.Percentiles(ps)
	vec := make([]float64, len(out))
	for i, p := range out {
		vec[i] = float64(p)
	}
	return value.NewVector(vec)
}

// zipDictAgg implements `zip_dict`: Undefined keys become the
// sentinel "missing" string; merge is a union keyed by the wire
// encoding of the (possibly-substituted) key, first-seen wins on
// duplicate keys.
type zipDictAgg struct {
	keys []value.Value
	vals []value.Value
	seen map[string]bool
}

func (a *zipDictAgg) add(k, v value.Value) {
	if k.IsUndefined() {
		k = value.NewString("missing")
	}
	ks := string(keyBytes([]value.Value{k}))
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	if a.seen[ks] {
		return
	}
	a.seen[ks] = true
	a.keys = append(a.keys, k)
	a.vals = append(a.vals, v)
}

func (a *zipDictAgg) Add(row []value.Value) { a.add(row[0], row[1]) }
func (a *zipDictAgg) PartialFinalize()       {}

func (a *zipDictAgg) Combine(other Aggregator) {
	o := other.(*zipDictAgg)
	for i, k := range o.keys {
		a.add(k, o.vals[i])
	}
}

func (a *zipDictAgg) Emit() value.Value {
	if len(a.keys) == 0 {
		return value.Undef
	}
	return value.NewDict(a.keys, a.vals)
}

// zipListAgg implements `zip_list`: a Vector when the input column is
// Float64, otherwise a List (§4.7 catalog). asVector is decided once
// from the input column's schema tag by the caller (Run), since a
// Column's tag cannot vary per group.
type zipListAgg struct {
	asVector bool
	floats   []float64
	list     []value.Value
}

func (a *zipListAgg) Add(row []value.Value) {
	v := row[0]
	if v.IsUndefined() {
		return
	}
	if a.asVector {
		a.floats = append(a.floats, v.Float())
	} else {
		a.list = append(a.list, v)
	}
}

func (a *zipListAgg) PartialFinalize() {}

func (a *zipListAgg) Combine(other Aggregator) {
	o := other.(*zipListAgg)
	a.floats = append(a.floats, o.floats...)
	a.list = append(a.list, o.list...)
}

func (a *zipListAgg) Emit() value.Value {
	if a.asVector {
		return value.NewVector(a.floats)
	}
	return value.NewList(a.list)
}

// selectOneAgg implements `select_one`: "any one value", implemented
// as first-seen-wins (a valid reading of the documented semantics,
// consistent with the catalog's tie-break convention elsewhere).
type selectOneAgg struct {
	v   value.Value
	has bool
}

func (a *selectOneAgg) Add(row []value.Value) {
	if a.has || row[0].IsUndefined() {
		return
	}
	a.v, a.has = row[0], true
}

func (a *selectOneAgg) PartialFinalize() {}

func (a *selectOneAgg) Combine(other Aggregator) {
	o := other.(*selectOneAgg)
	if !a.has && o.has {
		a.v, a.has = o.v, true
	}
}

func (a *selectOneAgg) Emit() value.Value {
	if !a.has {
		return value.Undef
	}
	return a.v
}
