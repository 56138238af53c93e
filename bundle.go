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

// bundleMarker opens every bundle datagram.
const bundleMarker = "#bundle\x00"

// A Bundle is a time tag and an ordered list of messages and bundles, which a
// receiver applies as one unit.
type Bundle struct {
	Time     TimeTag
	Elements []Packet
}

// NewBundle returns a Bundle scheduled at t.
func NewBundle(t TimeTag, elements ...Packet) *Bundle {
	return &Bundle{Time: t, Elements: elements}
}

// Tag implements Value. Nested bundles are encoded as blobs.
func (*Bundle) Tag() byte { return TagBlob }

func (*Bundle) isValue()  {}
func (*Bundle) isPacket() {}

// EncodeBundle encodes a bundle: the "#bundle" marker, the 8-byte time tag,
// and each element's datagram behind a 4-byte big-endian size.
func EncodeBundle(b *Bundle) ([]byte, error) {
	return b.MarshalBinary()
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	datagram, err := b.AppendBinary(nil)
	if err != nil {
		return nil, err
	}
	return datagram, nil
}

// AppendBinary appends the encoded bundle to dst. On error, it returns dst
// unchanged.
func (b *Bundle) AppendBinary(dst []byte) ([]byte, error) {
	if b == nil {
		return dst, errorf(CodeUnsupportedValue, "cannot encode nil *osc.Bundle")
	}
	return b.appendBundle(dst, 0)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using the default
// decoding options.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeBundle(data)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}

func (b *Bundle) appendBundle(dst []byte, depth int) ([]byte, error) {
	if depth > defaultMaxDepth {
		return dst, errorf(CodeDepthExceeded, "bundle nesting exceeds %d levels", defaultMaxDepth)
	}
	wire, err := b.Time.wire()
	if err != nil {
		return dst, err
	}
	start := len(dst)
	dst = append(dst, bundleMarker...)
	dst = binary.BigEndian.AppendUint64(dst, wire)
	for i, elem := range b.Elements {
		// Reserve the size prefix, append the element in place, then
		// backfill the size.
		prefix := len(dst)
		dst = append(dst, zeros[:4]...)
		dst, err = appendElement(dst, elem, depth+1)
		if err != nil {
			return dst[:start], prefixError(err, "bundle element %d", i)
		}
		size := len(dst) - prefix - 4
		if size > math.MaxInt32 {
			return dst[:start], errorf(CodeUnsupportedValue, "bundle element %d is %d bytes, larger than an int32 size", i, size)
		}
		binary.BigEndian.PutUint32(dst[prefix:], uint32(size))
	}
	return dst, nil
}

func appendElement(dst []byte, elem Packet, depth int) ([]byte, error) {
	switch p := elem.(type) {
	case *Message:
		if p == nil {
			return dst, errorf(CodeUnsupportedValue, "cannot encode nil *osc.Message")
		}
		return appendMessage(dst, p.Address, p.Args, depth)
	case *Bundle:
		if p == nil {
			return dst, errorf(CodeUnsupportedValue, "cannot encode nil *osc.Bundle")
		}
		return p.appendBundle(dst, depth)
	case nil:
		return dst, errorf(CodeUnsupportedValue, "cannot encode a nil Packet")
	default:
		return dst, errUnsupported(elem)
	}
}

func hasBundleMarker(data []byte) bool {
	return bytes.HasPrefix(data, []byte(bundleMarker))
}

// DecodeBundle decodes a bundle datagram, resolving every element. Elements
// that begin with the "#bundle" marker are decoded as bundles and all others
// as messages; any failure aborts the whole decode.
//
// Data without the marker fails with CodeNotBundle. A bundle with no elements
// is valid.
func DecodeBundle(data []byte, options ...DecodeOption) (*Bundle, error) {
	d := newDecoder(options)
	if err := d.checkSize(data); err != nil {
		return nil, err
	}
	return d.decodeBundle(data, 0)
}

// DecodeBundleRaw decodes a bundle's time tag and splits out its elements
// without decoding them, so callers can resolve each element later (for
// example with DecodePacket). Each element is a copy of the corresponding
// bytes in data.
func DecodeBundleRaw(data []byte, options ...DecodeOption) (TimeTag, [][]byte, error) {
	d := newDecoder(options)
	if err := d.checkSize(data); err != nil {
		return Immediately, nil, err
	}
	var elements [][]byte
	timeTag, err := walkBundle(data, func(elem []byte) error {
		elements = append(elements, bytes.Clone(elem))
		return nil
	})
	if err != nil {
		return Immediately, nil, err
	}
	return timeTag, elements, nil
}

// walkBundle validates the bundle framing and calls visit with each element's
// bytes, in order. The slices passed to visit alias data.
func walkBundle(data []byte, visit func([]byte) error) (TimeTag, error) {
	if !hasBundleMarker(data) {
		return Immediately, errorf(CodeNotBundle, "datagram doesn't begin with %q", bundleMarker)
	}
	r := newReader(data)
	r.offset = len(bundleMarker)
	wire, err := r.readUint64("bundle time tag")
	if err != nil {
		return Immediately, err
	}
	for !r.done() {
		start := r.offset
		size, err := r.readInt32("bundle element size")
		if err != nil {
			return Immediately, err
		}
		if size < 0 || int64(size) > int64(r.remaining()) {
			return Immediately, errMalformedLength("bundle element", start, int(size), r.remaining())
		}
		elem, err := r.next("bundle element", int(size))
		if err != nil {
			return Immediately, err
		}
		if err := visit(elem); err != nil {
			return Immediately, err
		}
	}
	return timeTagFromWire(wire), nil
}
