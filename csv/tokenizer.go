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

import "strings"

// splitLines splits buf into physical lines, accepting \n, \r, and
// \r\n as equivalent line endings (§4.5 step 8). The trailing partial
// line (no terminator found) is returned separately so the caller can
// prepend it to the next buffer read.
func splitLines(buf []byte) (lines []string, trailing string) {
	start := 0
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			lines = append(lines, string(buf[start:i]))
			start = i + 1
		case '\r':
			lines = append(lines, string(buf[start:i]))
			if i+1 < len(buf) && buf[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	trailing = string(buf[start:])
	return lines, trailing
}

// lineBoundaryAfter returns the index just past the first line
// terminator at-or-after `from`, or len(buf) if none is found.
func lineBoundaryAfter(buf []byte, from int) int {
	for i := from; i < len(buf); i++ {
		switch buf[i] {
		case '\n':
			return i + 1
		case '\r':
			if i+1 < len(buf) && buf[i+1] == '\n' {
				return i + 2
			}
			return i + 1
		}
	}
	return len(buf)
}

// tokenizer splits one physical line into fields per Config's
// delimiter/quote/escape/comment conventions, in xsv.CsvChopper's
// spirit but hand-rolled so that quote_char, escape_char, and
// na_values — none of which encoding/csv supports independently — are
// all configurable.
type tokenizer struct {
	cfg Config
}

func newTokenizer(cfg Config) *tokenizer { return &tokenizer{cfg: cfg} }

// isComment reports whether line is a comment line to be skipped
// entirely (not even counted as a row).
func (t *tokenizer) isComment(line string) bool {
	if t.cfg.CommentChar == 0 {
		return false
	}
	trimmed := line
	if t.cfg.SkipInitialSpace {
		trimmed = strings.TrimLeft(trimmed, " ")
	}
	return len(trimmed) > 0 && trimmed[0] == t.cfg.CommentChar
}

// split tokenizes one physical line into fields.
func (t *tokenizer) split(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	i := 0
	n := len(line)
	skipSpace := func() {
		if t.cfg.SkipInitialSpace {
			for i < n && line[i] == ' ' {
				i++
			}
		}
	}
	skipSpace()
	for i < n {
		c := line[i]
		switch {
		case inQuotes:
			if c == t.cfg.EscapeChar && !t.cfg.DoubleQuote && i+1 < n {
				cur.WriteByte(line[i+1])
				i += 2
				continue
			}
			if c == t.cfg.QuoteChar {
				if t.cfg.DoubleQuote && i+1 < n && line[i+1] == t.cfg.QuoteChar {
					cur.WriteByte(t.cfg.QuoteChar)
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			cur.WriteByte(c)
			i++
		case c == t.cfg.QuoteChar && cur.Len() == 0:
			inQuotes = true
			i++
		case c == t.cfg.EscapeChar && i+1 < n:
			cur.WriteByte(line[i+1])
			i += 2
		case c == t.cfg.Delimiter:
			fields = append(fields, cur.String())
			cur.Reset()
			i++
			skipSpace()
		default:
			cur.WriteByte(c)
			i++
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// isNA reports whether s is one of the configured na_values, in which
// case the field should be treated as Undefined.
func (t *tokenizer) isNA(s string) bool {
	for _, na := range t.cfg.NAValues {
		if s == na {
			return true
		}
	}
	return false
}
