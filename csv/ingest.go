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
	"compress/gzip"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/cstorelabs/cstore/compr"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/fsutil"
	"github.com/cstorelabs/cstore/frame"
	"github.com/cstorelabs/cstore/op"
	"github.com/cstorelabs/cstore/pool"
	"github.com/cstorelabs/cstore/value"
	"github.com/klauspost/compress/s2"
)

// Result carries a Frame plus the diagnostics step 7/8 calls for:
// unused hint warnings, per-file schema-drift skips, and (when
// ContinueOnFailure is set) the rows diverted during parsing.
type Result struct {
	Frame    *frame.Frame
	Warnings []string
	Errors   []error
}

// ReadAll expands uris (each a literal path or a glob pattern relative
// to "/"), decompresses recognized extensions transparently, infers a
// schema from the first matched file's first non-comment line, and
// parses every matched file's rows in parallel across p, writing the
// result into a fresh Frame under dir (§4.5 steps 1-8).
func ReadAll(p *pool.Pool, tok *pool.Token, dir string, uris []string, cfg Config) (*Result, error) {
	files, err := expandURIs(uris)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errs.New(errs.InvalidArgument, "csv: no input files matched %v", uris)
	}

	t := newTokenizer(cfg)
	var names []string
	var tags []value.Tag
	var usedHints map[string]bool
	var ncols int
	res := &Result{}

	nworkers := cfg.NumWorkers
	if nworkers <= 0 {
		nworkers = runtime.GOMAXPROCS(0)
	}

	var allRanges []parseRange
	var rangeByteStart []int64
	var totalBytes int64
	var rowsParsed uint64

	for fi, fpath := range files {
		if cfg.RowLimit > 0 && rowsParsed >= cfg.RowLimit {
			break
		}
		raw, err := readFile(fpath)
		if err != nil {
			return nil, err
		}

		lines, trailing := splitLines(raw)
		if trailing != "" {
			lines = append(lines, trailing)
		}

		firstData := 0
		if fi == 0 {
			for firstData < len(lines) && (lines[firstData] == "" || t.isComment(lines[firstData])) {
				firstData++
			}
			if firstData >= len(lines) {
				return nil, errs.New(errs.Parse, "csv: %s has no data rows", fpath)
			}
			tokens := t.split(lines[firstData])
			ncols = len(tokens)
			if cfg.UseHeader {
				names = uniquifyNames(tokens)
				firstData++
			} else {
				names = syntheticNames(ncols)
			}
			tags, usedHints = resolveTags(names, cfg.Hints)
		} else {
			skip := 0
			for skip < len(lines) && (lines[skip] == "" || t.isComment(lines[skip])) {
				skip++
			}
			if skip < len(lines) {
				// unless errors are stored, a file whose first line has a
				// different column count is skipped with a warning.
				if !cfg.StoreErrors && len(t.split(lines[skip])) != ncols {
					res.Warnings = append(res.Warnings, "csv: "+fpath+" has a differing column count, skipped")
					continue
				}
				// subsequent files repeat the header line; skip it.
				if cfg.UseHeader {
					firstData = skip + 1
				}
			}
		}

		body := []byte(strings.Join(lines[firstData:], "\n"))
		if len(body) == 0 {
			res.Warnings = append(res.Warnings, "csv: "+fpath+" has no data rows after header/comment skip")
			continue
		}

		ranges, err := parseBuffer(p, tok, body, cfg, t, ncols, tags, nworkers)
		if err != nil {
			return nil, err
		}
		for _, r := range ranges {
			if len(r.rows) == 0 && len(r.errors) == 0 {
				continue
			}
			if len(r.rows) > 0 && len(r.rows[0]) != ncols {
				res.Warnings = append(res.Warnings, "csv: "+fpath+" has a differing column count, skipped")
				continue
			}
			allRanges = append(allRanges, r)
			rangeByteStart = append(rangeByteStart, totalBytes)
			totalBytes += int64(len(body))
			rowsParsed += uint64(len(r.rows))
		}
	}

	res.Warnings = append(res.Warnings, unusedHintWarnings(cfg.Hints, usedHints)...)

	segments := cfg.NumSegments
	if segments < 1 {
		segments = 1
	}
	w, err := frame.OpenForWrite(dir, names, tags, segments)
	if err != nil {
		return nil, err
	}

	writers := make([]op.RowSegmentWriter, segments)
	for i := range writers {
		writers[i] = w.WriterFor(i)
	}

	var written uint64
	for i, r := range allRanges {
		seg := segmentFor(rangeByteStart[i], totalBytes, segments)
		for _, row := range r.rows {
			if cfg.RowLimit > 0 && written >= cfg.RowLimit {
				break
			}
			if err := writers[seg].Write(row); err != nil {
				return nil, err
			}
			written++
		}
		for _, re := range r.errors {
			res.Errors = append(res.Errors, re.err)
		}
	}

	f, err := w.Close()
	if err != nil {
		return nil, err
	}
	res.Frame = f
	return res, nil
}

// segmentFor maps a byte offset into [0,total) onto a segment index in
// [0,segments), by cumulative byte position (step 6).
func segmentFor(offset, total int64, segments int) int {
	if total <= 0 || segments <= 1 {
		return 0
	}
	seg := int(offset * int64(segments) / total)
	if seg >= segments {
		seg = segments - 1
	}
	return seg
}

// expandURIs resolves each uri to a sorted list of concrete file
// paths, treating it as a glob pattern against the root filesystem
// when it is not itself a plain existing path.
func expandURIs(uris []string) ([]string, error) {
	var out []string
	root := os.DirFS("/")
	for _, u := range uris {
		if _, err := os.Stat(u); err == nil {
			out = append(out, u)
			continue
		}
		rel := strings.TrimPrefix(u, "/")
		matches, err := fsutil.OpenGlob(root, rel)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "csv: expanding %q", u)
		}
		for _, m := range matches {
			m.Close()
			out = append(out, "/"+m.Path())
		}
	}
	return out, nil
}

// readFile reads the (possibly compressed) file at path in full,
// transparently decompressing recognized extensions. compr's
// Decompressor interface operates on whole in-memory buffers rather
// than streams, so .s2/.zst files are fully buffered either way; .gz
// uses compress/gzip since compr does not wrap gzip.
func readFile(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "csv: opening %s", p)
	}
	defer f.Close()

	switch path.Ext(p) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "csv: gzip %s", p)
		}
		defer gz.Close()
		return io.ReadAll(gz)
	case ".zst":
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "csv: reading %s", p)
		}
		return compr.DecodeZstd(raw, nil)
	case ".s2":
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "csv: reading %s", p)
		}
		return s2.Decode(nil, raw)
	default:
		return io.ReadAll(f)
	}
}
