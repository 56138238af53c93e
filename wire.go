// Copyright 2021-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package osc

import (
	"bytes"
	"encoding/binary"
	"math"
)

// zeros backs every padding run. OSC never pads by more than 4 bytes.
var zeros [4]byte

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int {
	return (n + 3) &^ 3
}

// stringPadding returns the NUL terminator plus zero padding that follows n
// bytes of string content.
func stringPadding(n int) []byte {
	return zeros[:pad4(n+1)-n]
}

// blobPadding returns the zero padding that follows n bytes of blob content.
// The 4-byte size prefix is already aligned, so only the content matters.
func blobPadding(n int) []byte {
	return zeros[:pad4(n)-n]
}

func appendString(dst []byte, s string) []byte {
	dst = append(dst, s...)
	return append(dst, stringPadding(len(s))...)
}

func appendPaddedBytes(dst []byte, b []byte) []byte {
	dst = append(dst, b...)
	return append(dst, stringPadding(len(b))...)
}

func writeUint32(dst *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	dst.Write(b[:])
}

func writeUint64(dst *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	dst.Write(b[:])
}

func writeString(dst *bytes.Buffer, s string) {
	dst.WriteString(s)
	dst.Write(stringPadding(len(s)))
}

func writeBlob(dst *bytes.Buffer, b []byte) {
	writeUint32(dst, uint32(len(b)))
	dst.Write(b)
	dst.Write(blobPadding(len(b)))
}

// A reader is a cursor over an untrusted datagram. Every read checks the
// remaining length first and reports the field it was reading on failure.
type reader struct {
	data   []byte
	offset int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.offset
}

func (r *reader) done() bool {
	return r.offset >= len(r.data)
}

func (r *reader) next(field string, n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, errTruncated(field, r.offset, n, r.remaining())
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b, nil
}

func (r *reader) readUint32(field string) (uint32, error) {
	b, err := r.next(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readInt32(field string) (int32, error) {
	u, err := r.readUint32(field)
	return int32(u), err
}

func (r *reader) readFloat32(field string) (float32, error) {
	u, err := r.readUint32(field)
	return math.Float32frombits(u), err
}

func (r *reader) readUint64(field string) (uint64, error) {
	b, err := r.next(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) readFloat64(field string) (float64, error) {
	u, err := r.readUint64(field)
	return math.Float64frombits(u), err
}

// readString reads a NUL-terminated string and skips to the next 4-byte
// boundary. Padding bytes aren't validated, and a cursor that would land past
// the end of the data stops at the end instead.
func (r *reader) readString(field string) (string, error) {
	rest := r.data[r.offset:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", errorf(
			CodeTruncated,
			"truncated %s at offset %d: no NUL terminator in %d bytes",
			field, r.offset, len(rest),
		)
	}
	s := string(rest[:end])
	r.offset += pad4(end + 1)
	if r.offset > len(r.data) {
		r.offset = len(r.data)
	}
	return s, nil
}

// readBlob reads a size-prefixed blob. The returned slice aliases the
// reader's data.
func (r *reader) readBlob(field string) ([]byte, error) {
	start := r.offset
	size, err := r.readUint32(field + " size")
	if err != nil {
		return nil, err
	}
	if uint64(size) > uint64(r.remaining()) {
		return nil, errMalformedLength(field, start, int(size), r.remaining())
	}
	padded := pad4(int(size))
	if padded > r.remaining() {
		return nil, errTruncated(field+" padding", r.offset, padded, r.remaining())
	}
	blob := r.data[r.offset : r.offset+int(size)]
	r.offset += padded
	return blob, nil
}
