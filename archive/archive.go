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

// Package archive implements the directory archive of §4.9: a
// directory holding one dir_archive.ini metadata file and a set of
// content files named <prefix>.<ext>, where prefix comes from a
// monotonically increasing counter and ext identifies the content's
// kind (sidx for a Column, frame_idx for a Frame). Writing is atomic
// at Close; reading validates the contents tag before a typed loader
// is bound to it.
package archive

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/frame"
	"github.com/google/uuid"
)

// Contents tags recognized at the top level of a dir_archive.ini
// (§6). A reader rejects any other value before binding a loader.
const (
	ContentsSArray = "sarray"
	ContentsSFrame = "sframe"
	ContentsGraph  = "graph"
	ContentsModel  = "model"
)

// ContentsKey is the required dir_archive.ini metadata key naming the
// archive's kind.
const ContentsKey = "contents"

const iniFileName = "dir_archive.ini"

func validContents(v string) bool {
	switch v {
	case ContentsSArray, ContentsSFrame, ContentsGraph, ContentsModel:
		return true
	}
	return false
}

// Writer builds a directory archive. Content files are added by
// calling NextWritePrefix to reserve a name and then writing to the
// returned path with column.OpenForWrite or frame.OpenForWrite; the
// archive's own metadata (including the contents tag) is committed
// atomically when Close is called.
type Writer struct {
	dir    string
	meta   map[string]string
	next   int
	closed bool
}

// Create makes a fresh archive directory at dir declaring the given
// contents kind, which must be one of the recognized tags.
func Create(dir, contents string) (*Writer, error) {
	if !validContents(contents) {
		return nil, errs.New(errs.InvalidArgument, "archive: unrecognized contents %q", contents)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		dir: dir,
		meta: map[string]string{
			ContentsKey: contents,
			"id":        uuid.New().String(),
		},
	}, nil
}

// SetMetadata records an arbitrary UTF-8 key/value pair in the
// archive's [metadata] section. Overwrites any prior value for key;
// the contents tag itself may not be changed this way.
func (w *Writer) SetMetadata(key, value string) error {
	if key == ContentsKey {
		return errs.New(errs.InvalidArgument, "archive: contents tag may not be overwritten via SetMetadata")
	}
	w.meta[key] = value
	return nil
}

// NextWritePrefix returns a fresh, monotonically increasing content
// file prefix, unique within this archive.
func (w *Writer) NextWritePrefix() string {
	w.next++
	return fmt.Sprintf("m_%d", w.next)
}

// ColumnPath returns the directory a Column content file for prefix
// should be opened at (via column.OpenForWrite), following the
// <prefix>.sidx naming of §6.
func (w *Writer) ColumnPath(prefix string) string {
	return filepath.Join(w.dir, prefix+".sidx")
}

// FramePath returns the directory a Frame content file for prefix
// should be opened at (via frame.OpenForWrite), following the
// <prefix>.frame_idx naming of §6.
func (w *Writer) FramePath(prefix string) string {
	return filepath.Join(w.dir, prefix+".frame_idx")
}

// Close commits the archive's metadata file. Content files written
// under paths returned by ColumnPath/FramePath are already durable by
// the time their own Close returns (each Column/Frame Close syncs its
// own index); this call only makes the metadata — and therefore the
// archive as a whole — visible. The .ini file is written to a
// temporary name and renamed into place so a reader never observes a
// partially written metadata file.
func (w *Writer) Close() error {
	if w.closed {
		return errs.New(errs.InvalidState, "archive: writer already closed")
	}
	w.closed = true
	tmp := filepath.Join(w.dir, iniFileName+".tmp")
	if err := writeINI(tmp, w.meta); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, filepath.Join(w.dir, iniFileName))
}

// Reader opens an existing directory archive for reading.
type Reader struct {
	dir  string
	meta map[string]string
}

// Open reads dir's dir_archive.ini and validates that its contents
// tag is one of the recognized kinds (§4.9's "reading validates the
// contents tag before binding to a typed loader"). It does not open
// any content file itself.
func Open(dir string) (*Reader, error) {
	meta, err := readINI(filepath.Join(dir, iniFileName))
	if err != nil {
		return nil, errs.Wrap(errs.BadArchive, err, "archive: %s", dir)
	}
	contents, ok := meta[ContentsKey]
	if !ok {
		return nil, errs.New(errs.BadArchive, "archive: %s: missing required %q key", dir, ContentsKey)
	}
	if !validContents(contents) {
		return nil, errs.New(errs.BadArchive, "archive: %s: unrecognized contents %q", dir, contents)
	}
	return &Reader{dir: dir, meta: meta}, nil
}

// Contents returns the archive's validated contents tag.
func (r *Reader) Contents() string { return r.meta[ContentsKey] }

// Metadata returns the value of an arbitrary metadata key.
func (r *Reader) Metadata(key string) (string, bool) {
	v, ok := r.meta[key]
	return v, ok
}

// OpenColumn reopens a Column content file written under prefix by a
// Writer of contents kind ContentsSArray.
func (r *Reader) OpenColumn(prefix string) (*column.Column, error) {
	return column.Open(filepath.Join(r.dir, prefix+".sidx"))
}

// OpenFrame reopens a Frame content file written under prefix by a
// Writer of contents kind ContentsSFrame.
func (r *Reader) OpenFrame(prefix string) (*frame.Frame, error) {
	return frame.Open(filepath.Join(r.dir, prefix+".frame_idx"))
}
