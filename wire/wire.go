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

// Package wire implements the framed binary encoding used to persist
// Values, Frame/Column schemas, and index descriptors to disk. Each
// encoded item is a tag byte followed by a type-specific payload;
// containers (List, Dict, Vector) are prefixed with their element
// count, followed by the elements themselves.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cstorelabs/cstore/date"
	"github.com/cstorelabs/cstore/errs"
	"github.com/cstorelabs/cstore/value"
)

// wire tags. These are a disk format and must never be reordered;
// new tags may only be appended.
const (
	wNone byte = iota
	wUndefined
	wInt64
	wFloat64
	wString
	wVector
	wList
	wDict
	wDateTime
	wImage
)

func tagToWire(t value.Tag) byte {
	switch t {
	case value.None:
		return wNone
	case value.Undefined:
		return wUndefined
	case value.Int64:
		return wInt64
	case value.Float64:
		return wFloat64
	case value.String:
		return wString
	case value.Vector:
		return wVector
	case value.List:
		return wList
	case value.Dict:
		return wDict
	case value.DateTime:
		return wDateTime
	case value.Image:
		return wImage
	default:
		panic(fmt.Sprintf("wire: unknown tag %v", t))
	}
}

func wireToTag(w byte) (value.Tag, error) {
	switch w {
	case wNone:
		return value.None, nil
	case wUndefined:
		return value.Undefined, nil
	case wInt64:
		return value.Int64, nil
	case wFloat64:
		return value.Float64, nil
	case wString:
		return value.String, nil
	case wVector:
		return value.Vector, nil
	case wList:
		return value.List, nil
	case wDict:
		return value.Dict, nil
	case wDateTime:
		return value.DateTime, nil
	case wImage:
		return value.Image, nil
	default:
		return 0, errs.New(errs.Parse, "wire: unrecognized tag byte 0x%02x", w)
	}
}

// Buffer is an append-only byte buffer used to build an encoded
// record before it is written to a segment file.
type Buffer struct {
	buf []byte
}

// Bytes returns the buffer's contents. The returned slice aliases
// the Buffer's internal storage.
func (b *Buffer) Bytes() []byte { return b.buf }

// Reset empties the buffer so it can be reused.
func (b *Buffer) Reset() { b.buf = b.buf[:0] }

func (b *Buffer) putUvarint(x uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	b.buf = append(b.buf, tmp[:n]...)
}

func (b *Buffer) putVarint(x int64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], x)
	b.buf = append(b.buf, tmp[:n]...)
}

// PutValue appends the encoding of v to the buffer.
func (b *Buffer) PutValue(v value.Value) {
	b.buf = append(b.buf, tagToWire(v.Tag()))
	switch v.Tag() {
	case value.None, value.Undefined:
		// no payload
	case value.Int64:
		b.putVarint(v.Int())
	case value.Float64:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Float()))
		b.buf = append(b.buf, tmp[:]...)
	case value.String:
		b.putString(v.Str())
	case value.Image:
		b.putString(string(v.ImageBytes()))
	case value.DateTime:
		t := v.DateTimeValue()
		b.putVarint(t.Unix())
		b.putVarint(int64(t.Nanosecond()))
	case value.Vector:
		elems := v.VectorElems()
		b.putUvarint(uint64(len(elems)))
		for _, f := range elems {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
			b.buf = append(b.buf, tmp[:]...)
		}
	case value.List:
		elems := v.ListElems()
		b.putUvarint(uint64(len(elems)))
		for _, e := range elems {
			b.PutValue(e)
		}
	case value.Dict:
		keys, values := v.DictPairs()
		b.putUvarint(uint64(len(keys)))
		for i := range keys {
			b.PutValue(keys[i])
			b.PutValue(values[i])
		}
	}
}

func (b *Buffer) putString(s string) {
	b.putUvarint(uint64(len(s)))
	b.buf = append(b.buf, s...)
}

// Decoder decodes a sequence of Values previously written with Buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding starting at offset 0.
func NewDecoder(buf []byte) *Decoder { return &Decoder{buf: buf} }

// Pos returns the current read offset, useful for building a
// fixed-width index over variable-width records.
func (d *Decoder) Pos() int { return d.pos }

// Done reports whether the decoder has consumed the whole buffer.
func (d *Decoder) Done() bool { return d.pos >= len(d.buf) }

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	c := d.buf[d.pos]
	d.pos++
	return c, nil
}

func (d *Decoder) readUvarint() (uint64, error) {
	x, n := binary.Uvarint(d.buf[d.pos:])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	d.pos += n
	return x, nil
}

func (d *Decoder) readVarint() (int64, error) {
	x, n := binary.Varint(d.buf[d.pos:])
	if n <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	d.pos += n
	return x, nil
}

func (d *Decoder) readFloat64() (float64, error) {
	if d.pos+8 > len(d.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8])
	d.pos += 8
	return math.Float64frombits(bits), nil
}

func (d *Decoder) readString() (string, error) {
	n, err := d.readUvarint()
	if err != nil {
		return "", err
	}
	if d.pos+int(n) > len(d.buf) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[d.pos : d.pos+int(n)])
	d.pos += int(n)
	return s, nil
}

// Value decodes and returns the next Value in the stream.
func (d *Decoder) Value() (value.Value, error) {
	wtag, err := d.readByte()
	if err != nil {
		return value.Value{}, err
	}
	tag, err := wireToTag(wtag)
	if err != nil {
		return value.Value{}, err
	}
	switch tag {
	case value.None:
		return value.Value{}, nil
	case value.Undefined:
		return value.Undef, nil
	case value.Int64:
		i, err := d.readVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewInt(i), nil
	case value.Float64:
		f, err := d.readFloat64()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewFloat(f), nil
	case value.String:
		s, err := d.readString()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case value.Image:
		s, err := d.readString()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewImage([]byte(s)), nil
	case value.DateTime:
		sec, err := d.readVarint()
		if err != nil {
			return value.Value{}, err
		}
		ns, err := d.readVarint()
		if err != nil {
			return value.Value{}, err
		}
		return value.NewDateTime(date.Unix(sec, ns)), nil
	case value.Vector:
		n, err := d.readUvarint()
		if err != nil {
			return value.Value{}, err
		}
		out := make([]float64, n)
		for i := range out {
			out[i], err = d.readFloat64()
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.NewVector(out), nil
	case value.List:
		n, err := d.readUvarint()
		if err != nil {
			return value.Value{}, err
		}
		out := make([]value.Value, n)
		for i := range out {
			out[i], err = d.Value()
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.NewList(out), nil
	case value.Dict:
		n, err := d.readUvarint()
		if err != nil {
			return value.Value{}, err
		}
		keys := make([]value.Value, n)
		values := make([]value.Value, n)
		for i := range keys {
			keys[i], err = d.Value()
			if err != nil {
				return value.Value{}, err
			}
			values[i], err = d.Value()
			if err != nil {
				return value.Value{}, err
			}
		}
		return value.NewDict(keys, values), nil
	default:
		return value.Value{}, errs.New(errs.Parse, "wire: unhandled tag %v", tag)
	}
}

// EncodeValue is a convenience wrapper that encodes a single Value
// into a freshly allocated byte slice.
func EncodeValue(v value.Value) []byte {
	var b Buffer
	b.PutValue(v)
	return b.Bytes()
}

// DecodeValue is a convenience wrapper that decodes a single Value
// previously produced by EncodeValue.
func DecodeValue(buf []byte) (value.Value, error) {
	return NewDecoder(buf).Value()
}
