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

package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cstorelabs/cstore/csv"
	"github.com/cstorelabs/cstore/value"
	"sigs.k8s.io/yaml"
)

// csvConfigDoc is the YAML-friendly mirror of csv.Config: single-byte
// delimiter fields become one-rune strings and column-tag hints become
// their string names, so the sidecar file reads like a normal
// human-editable CSV dialect description rather than raw ASCII codes.
type csvConfigDoc struct {
	UseHeader         bool              `json:"useHeader,omitempty"`
	ContinueOnFailure bool              `json:"continueOnFailure,omitempty"`
	StoreErrors       bool              `json:"storeErrors,omitempty"`
	RowLimit          uint64            `json:"rowLimit,omitempty"`
	Delimiter         string            `json:"delimiter,omitempty"`
	CommentChar       string            `json:"commentChar,omitempty"`
	EscapeChar        string            `json:"escapeChar,omitempty"`
	DoubleQuote       bool              `json:"doubleQuote,omitempty"`
	QuoteChar         string            `json:"quoteChar,omitempty"`
	SkipInitialSpace  bool              `json:"skipInitialSpace,omitempty"`
	NAValues          []string          `json:"naValues,omitempty"`
	Hints             map[string]string `json:"hints,omitempty"`
}

func byteToStr(b byte) string {
	if b == 0 {
		return ""
	}
	return string(rune(b))
}

func strToByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}

func toDoc(cfg csv.Config) csvConfigDoc {
	hints := make(map[string]string, len(cfg.Hints))
	for k, t := range cfg.Hints {
		hints[k] = t.String()
	}
	return csvConfigDoc{
		UseHeader:         cfg.UseHeader,
		ContinueOnFailure: cfg.ContinueOnFailure,
		StoreErrors:       cfg.StoreErrors,
		RowLimit:          cfg.RowLimit,
		Delimiter:         byteToStr(cfg.Delimiter),
		CommentChar:       byteToStr(cfg.CommentChar),
		EscapeChar:        byteToStr(cfg.EscapeChar),
		DoubleQuote:       cfg.DoubleQuote,
		QuoteChar:         byteToStr(cfg.QuoteChar),
		SkipInitialSpace:  cfg.SkipInitialSpace,
		NAValues:          cfg.NAValues,
		Hints:             hints,
	}
}

func fromDoc(d csvConfigDoc) (csv.Config, error) {
	hints := make(map[string]value.Tag, len(d.Hints))
	for k, s := range d.Hints {
		t, ok := tagByName(s)
		if !ok {
			return csv.Config{}, fmt.Errorf("archive: csvconfig: unknown column tag %q for hint %q", s, k)
		}
		hints[k] = t
	}
	return csv.Config{
		UseHeader:         d.UseHeader,
		ContinueOnFailure: d.ContinueOnFailure,
		StoreErrors:       d.StoreErrors,
		RowLimit:          d.RowLimit,
		Delimiter:         strToByte(d.Delimiter),
		CommentChar:       strToByte(d.CommentChar),
		EscapeChar:        strToByte(d.EscapeChar),
		DoubleQuote:       d.DoubleQuote,
		QuoteChar:         strToByte(d.QuoteChar),
		SkipInitialSpace:  d.SkipInitialSpace,
		NAValues:          d.NAValues,
		Hints:             hints,
	}, nil
}

func tagByName(s string) (value.Tag, bool) {
	for _, t := range []value.Tag{
		value.Int64, value.Float64, value.String, value.Vector,
		value.List, value.Dict, value.DateTime, value.Image,
	} {
		if t.String() == s {
			return t, true
		}
	}
	return value.None, false
}

// csvConfigName returns the sidecar file name for prefix, following
// the <prefix>.csvconfig.yaml convention used alongside an ingested
// Frame's content file to let a later reader reproduce the ingest.
func csvConfigName(prefix string) string {
	return prefix + ".csvconfig.yaml"
}

// WriteCSVConfig records the csv.Config used to build the Frame
// content file at prefix as a YAML sidecar, so a future reader of this
// archive can reproduce the ingest (e.g. to re-run it against updated
// source files).
func (w *Writer) WriteCSVConfig(prefix string, cfg csv.Config) error {
	b, err := yaml.Marshal(toDoc(cfg))
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(w.dir, csvConfigName(prefix)), b, 0o644)
}

// ReadCSVConfig loads the csv.Config sidecar for prefix, if one was
// written by WriteCSVConfig.
func (r *Reader) ReadCSVConfig(prefix string) (csv.Config, error) {
	b, err := os.ReadFile(filepath.Join(r.dir, csvConfigName(prefix)))
	if err != nil {
		return csv.Config{}, err
	}
	var d csvConfigDoc
	if err := yaml.Unmarshal(b, &d); err != nil {
		return csv.Config{}, err
	}
	return fromDoc(d)
}
