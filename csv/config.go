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

// Package csv implements the parallel CSV ingester of §4.5: byte-range
// tokenization across worker goroutines, type-hinted column inference,
// and a Frame as output.
package csv

import "github.com/cstorelabs/cstore/value"

// Config is the CSV ingester's tokenizer and ingestion configuration
// (§6's "CSV configuration options").
type Config struct {
	UseHeader         bool
	ContinueOnFailure bool
	StoreErrors       bool
	RowLimit          uint64 // 0 = unlimited

	Delimiter        byte
	CommentChar      byte // 0 = none
	EscapeChar       byte
	DoubleQuote      bool
	QuoteChar        byte
	SkipInitialSpace bool
	NAValues         []string

	// Hints maps a column name (or the positional form "__X<i>__", or
	// the catch-all "__all_columns__") to a declared output tag.
	Hints map[string]value.Tag

	// NumWorkers bounds the byte-range parallelism of step 5; <= 0
	// selects runtime.GOMAXPROCS.
	NumWorkers int

	// ReadBufferSize is a byte-buffer size (<= 0 selects an 8 MiB
	// default via readBufferSize). ReadAll does not consult it: each
	// input file is read whole into a single buffer.
	ReadBufferSize int

	// NumSegments is the number of output Column/Frame segments rows
	// are assigned to by cumulative byte position (step 6).
	NumSegments int
}

// DefaultConfig returns the documented zero-value defaults of §6.
func DefaultConfig() Config {
	return Config{
		DoubleQuote:      true,
		QuoteChar:        '"',
		Delimiter:        ',',
		EscapeChar:       '\\',
		SkipInitialSpace: true,
		NumSegments:      1,
	}
}

func (c Config) readBufferSize() int {
	if c.ReadBufferSize > 0 {
		return c.ReadBufferSize
	}
	return 8 << 20
}
