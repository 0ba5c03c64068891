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

package csv

import (
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
)

// rowError records one diverted row for the per-file error Column.
type rowError struct {
	line int
	err  error
}

// parseRange is one worker's share of a byte buffer: the raw rows it
// accepted and any it diverted (§4.5 step 5).
type parseRange struct {
	rows   [][]value.Value
	errors []rowError
}

// parseBuffer slices buf into up to nworkers byte ranges, each
// adjusted to start after the first line boundary strictly within its
// slice and end after the first line boundary at-or-after its slice's
// end (the last worker always ends at buf's end), and tokenizes each
// range on a pool task. Ranges are returned in order, so concatenating
// their rows reproduces the buffer's logical row order.
func parseBuffer(p *pool.Pool, tok *pool.Token, buf []byte, cfg Config, t *tokenizer, ncols int, tags []value.Tag, nworkers int) ([]parseRange, error) {
	if nworkers < 1 {
		nworkers = 1
	}
	if len(buf) == 0 {
		return nil, nil
	}
	bounds := rangeBounds(buf, nworkers)
	results := make([]parseRange, len(bounds)-1)
	tasks := make([]pool.Task, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		i := i
		lo, hi := bounds[i], bounds[i+1]
		tasks[i] = func(tk *pool.Token) error {
			if err := tk.CheckCancelled(); err != nil {
				return err
			}
			r, err := parseOneRange(buf[lo:hi], cfg, t, ncols, tags)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		}
	}
	if err := p.Run(tok, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

// rangeBounds computes nworkers+1 byte offsets into buf such that each
// [bounds[i],bounds[i+1]) range starts and ends on a line boundary.
func rangeBounds(buf []byte, nworkers int) []int {
	if nworkers > len(buf) {
		nworkers = len(buf)
	}
	if nworkers < 1 {
		nworkers = 1
	}
	bounds := make([]int, nworkers+1)
	bounds[0] = 0
	bounds[nworkers] = len(buf)
	step := len(buf) / nworkers
	for i := 1; i < nworkers; i++ {
		target := i * step
		bounds[i] = lineBoundaryAfter(buf, target)
	}
	// Collapse any non-increasing boundaries caused by clustering of
	// line terminators near the same offset.
	out := bounds[:1]
	for i := 1; i < len(bounds); i++ {
		if bounds[i] > out[len(out)-1] {
			out = append(out, bounds[i])
		}
	}
	if out[len(out)-1] != len(buf) {
		out = append(out, len(buf))
	}
	return out
}

func parseOneRange(buf []byte, cfg Config, t *tokenizer, ncols int, tags []value.Tag) (parseRange, error) {
	lines, _ := splitLines(buf)
	var pr parseRange
	for _, line := range lines {
		if line == "" || t.isComment(line) {
			continue
		}
		fields := t.split(line)
		if len(fields) != ncols {
			err := errs.New(errs.SchemaMismatch, "expected %d fields, got %d", ncols, len(fields))
			if cfg.ContinueOnFailure {
				if cfg.StoreErrors {
					pr.errors = append(pr.errors, rowError{err: err})
				}
				continue
			}
			return parseRange{}, err
		}
		row := make([]value.Value, ncols)
		failed := false
		for i, f := range fields {
			v, err := convertField(t, f, tags[i])
			if err != nil {
				if cfg.ContinueOnFailure {
					if cfg.StoreErrors {
						pr.errors = append(pr.errors, rowError{err: err})
					}
					failed = true
					break
				}
				return parseRange{}, err
			}
			row[i] = v
		}
		if !failed {
			pr.rows = append(pr.rows, row)
		}
	}
	return pr, nil
}
