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
	"strings"
)

// EncodeMessage encodes a message with a string address. The datagram is the
// padded address, the padded type tag string (',' followed by one tag per
// argument), and then the argument payload.
func EncodeMessage(address string, args ...Value) ([]byte, error) {
	datagram, err := appendMessage(nil, address, args, 0)
	if err != nil {
		return nil, err
	}
	return datagram, nil
}

// AppendMessage is like EncodeMessage, but appends the datagram to dst. On
// error, it returns dst unchanged.
func AppendMessage(dst []byte, address string, args ...Value) ([]byte, error) {
	return appendMessage(dst, address, args, 0)
}

// EncodeMessageInt encodes a message addressed by a raw 32-bit integer
// instead of a string, for servers that index commands numerically. The
// address occupies exactly four big-endian bytes with no padding or NUL
// terminator. DecodeMessage can't read these datagrams back, since it
// expects a string address.
func EncodeMessageInt(address int32, args ...Value) ([]byte, error) {
	dst := binary.BigEndian.AppendUint32(make([]byte, 0, 64), uint32(address))
	dst, err := appendArguments(dst, args, 0)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func appendMessage(dst []byte, address string, args []Value, depth int) ([]byte, error) {
	if depth > defaultMaxDepth {
		return dst, errorf(CodeDepthExceeded, "message nesting exceeds %d levels", defaultMaxDepth)
	}
	if strings.IndexByte(address, 0) >= 0 {
		return dst, errorf(CodeUnsupportedValue, "address %q contains a NUL byte", address)
	}
	start := len(dst)
	dst = appendString(dst, address)
	dst, err := appendArguments(dst, args, depth)
	if err != nil {
		return dst[:start], err
	}
	return dst, nil
}

// appendArguments appends the framed type tag string followed by the
// argument payload. The tag string's length isn't known until every argument
// has been visited, so tags and payload accumulate in separate buffers first.
func appendArguments(dst []byte, args []Value, depth int) ([]byte, error) {
	tags := getBuffer()
	defer putBuffer(tags)
	payload := getBuffer()
	defer putBuffer(payload)

	tags.WriteByte(',')
	for i, arg := range args {
		if err := encodeValue(tags, payload, arg, depth); err != nil {
			return dst, prefixError(err, "argument %d", i)
		}
	}
	dst = appendPaddedBytes(dst, tags.Bytes())
	return append(dst, payload.Bytes()...), nil
}

// encodeValue appends the value's tag (or bracketed tags, for arrays) to tags
// and its serialized bytes to payload. depth is the nesting level of the
// value's container.
func encodeValue(tags, payload *bytes.Buffer, value Value, depth int) error {
	switch v := value.(type) {
	case Bool:
		tags.WriteByte(v.Tag())
	case Nil:
		tags.WriteByte(TagNil)
	case Int32:
		tags.WriteByte(TagInt32)
		writeUint32(payload, uint32(v))
	case Float32:
		tags.WriteByte(TagFloat32)
		writeUint32(payload, math.Float32bits(float32(v)))
	case Float64:
		tags.WriteByte(TagFloat64)
		writeUint64(payload, math.Float64bits(float64(v)))
	case String:
		if strings.IndexByte(string(v), 0) >= 0 {
			return errorf(CodeUnsupportedValue, "string %q contains a NUL byte", string(v))
		}
		tags.WriteByte(TagString)
		writeString(payload, string(v))
	case Blob:
		if err := checkBlobSize(len(v)); err != nil {
			return err
		}
		tags.WriteByte(TagBlob)
		writeBlob(payload, v)
	case *Message:
		if v == nil {
			return errorf(CodeUnsupportedValue, "cannot encode nil *osc.Message")
		}
		datagram, err := appendMessage(nil, v.Address, v.Args, depth+1)
		if err != nil {
			return prefixError(err, "nested message %s", v.Address)
		}
		if err := checkBlobSize(len(datagram)); err != nil {
			return err
		}
		tags.WriteByte(TagBlob)
		writeBlob(payload, datagram)
	case *Bundle:
		if v == nil {
			return errorf(CodeUnsupportedValue, "cannot encode nil *osc.Bundle")
		}
		datagram, err := v.appendBundle(nil, depth+1)
		if err != nil {
			return prefixError(err, "nested bundle")
		}
		if err := checkBlobSize(len(datagram)); err != nil {
			return err
		}
		tags.WriteByte(TagBlob)
		writeBlob(payload, datagram)
	case Array:
		if depth+1 > defaultMaxDepth {
			return errorf(CodeDepthExceeded, "array nesting exceeds %d levels", defaultMaxDepth)
		}
		tags.WriteByte(TagArrayOpen)
		for i, elem := range v {
			if err := encodeValue(tags, payload, elem, depth+1); err != nil {
				return prefixError(err, "element %d", i)
			}
		}
		tags.WriteByte(TagArrayClose)
	case nil:
		return errorf(CodeUnsupportedValue, "cannot encode a nil Value, use osc.Nil{}")
	default:
		return errUnsupported(value)
	}
	return nil
}

func checkBlobSize(n int) error {
	if uint64(n) > math.MaxUint32 {
		return errorf(CodeUnsupportedValue, "blob of %d bytes exceeds the 32-bit size prefix", n)
	}
	return nil
}
