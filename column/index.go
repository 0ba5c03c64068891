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

package column

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// IndexFileName is the name of a Column's index file within its
// directory; the extension matches the `.sidx` convention of §6.
const IndexFileName = "column.sidx"

// indexMagic/indexVersion identify the on-disk format. The header is
// self-describing: a reader validates magic+version before trusting
// the rest of the file; there are no trailers (§6 says the index is
// self-describing at the head, with no trailer section allowed).
const (
	indexMagic   uint32 = 0x53494458 // "SIDX"
	indexVersion uint16 = 1
)

type index struct {
	tag     value.Tag
	segLen  []int
	segPath []string
}

func writeIndex(path string, idx index) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	var hdr [4 + 2 + 1 + 8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], indexMagic)
	binary.LittleEndian.PutUint16(hdr[4:6], indexVersion)
	hdr[6] = byte(idx.tag)
	binary.LittleEndian.PutUint64(hdr[7:15], uint64(len(idx.segLen)))
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	for i := range idx.segLen {
		if err := writeString(bw, idx.segPath[i]); err != nil {
			return err
		}
		var lenBuf [8]byte
		binary.LittleEndian.PutUint64(lenBuf[:], uint64(idx.segLen[i]))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func readIndex(path string) (index, error) {
	f, err := os.Open(path)
	if err != nil {
		return index{}, err
	}
	defer f.Close()
	br := bufio.NewReader(f)

	var hdr [4 + 2 + 1 + 8]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return index{}, errs.Wrap(errs.Io, err, "column: reading index header")
	}
	if binary.LittleEndian.Uint32(hdr[0:4]) != indexMagic {
		return index{}, errs.New(errs.Parse, "column: %s: bad magic", path)
	}
	if binary.LittleEndian.Uint16(hdr[4:6]) != indexVersion {
		return index{}, errs.New(errs.Parse, "column: %s: unsupported index version", path)
	}
	tag := value.Tag(hdr[6])
	n := binary.LittleEndian.Uint64(hdr[7:15])

	idx := index{tag: tag, segLen: make([]int, n), segPath: make([]string, n)}
	for i := uint64(0); i < n; i++ {
		s, err := readString(br)
		if err != nil {
			return index{}, err
		}
		idx.segPath[i] = s
		var lenBuf [8]byte
		if _, err := io.ReadFull(br, lenBuf[:]); err != nil {
			return index{}, err
		}
		idx.segLen[i] = int(binary.LittleEndian.Uint64(lenBuf[:]))
	}
	return idx, nil
}

func writeString(w *bufio.Writer, s string) error {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func readString(r *bufio.Reader) (string, error) {
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
