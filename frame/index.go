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

package frame

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cstorelabs/cstore/column"
	"github.com/cstorelabs/cstore/value"
)

// IndexFileName is the name of a Frame's index file within its
// directory; the extension matches the `.frame_idx` convention of §6.
const IndexFileName = "frame.frame_idx"

const (
	frameIndexMagic   uint32 = 0x46494458 // "FIDX"
	frameIndexVersion uint16 = 1
)

// writeFrameIndex records the column names backing f, in public order,
// so Open can reconstruct the Frame by reopening each name's
// subdirectory as a Column. Column tags are not duplicated here: each
// Column's own .sidx header is the source of truth for its tag.
func writeFrameIndex(path string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	var hdr [4 + 2 + 8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], frameIndexMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], frameIndexVersion)
	binary.LittleEndian.PutUint64(hdr[6:14], uint64(len(names)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	for _, n := range names {
		if err := writeIndexString(bw, n); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readFrameIndex(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br := bufio.NewReader(f)

	var hdr [4 + 2 + 8]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("frame: reading index header: %w", err)
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != frameIndexMagic {
		return nil, fmt.Errorf("frame: %s: bad magic", path)
	}
	if binary.LittleEndian.Uint16(hdr[4:6]) != frameIndexVersion {
		return nil, fmt.Errorf("frame: %s: unsupported index version", path)
	}
	n := binary.LittleEndian.Uint64(hdr[6:14])
	names := make([]string, n)
	for i := uint64(0); i < n; i++ {
		s, err := readIndexString(br)
		if err != nil {
			return nil, err
		}
		names[i] = s
	}
	return names, nil
}

func writeIndexString(w *bufio.Writer, s string) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readIndexString(r *bufio.Reader) (string, error) {
	n, err := binary.ReadUvarint(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Open reads a Frame back from a directory written by a Writer's
// Close: dir/frame.frame_idx names the column subdirectories, each
// reopened with column.Open.
func Open(dir string) (*Frame, error) {
	names, err := readFrameIndex(filepath.Join(dir, IndexFileName))
	if err != nil {
		return nil, err
	}
	cols := make([]*column.Column, len(names))
	for i, n := range names {
		c, err := column.Open(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return &Frame{names: names, columns: cols}, nil
}
