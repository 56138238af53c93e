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
)

// DecodeMessage decodes a message datagram into its address and arguments.
//
// Arguments are produced by walking the type tag string against the payload.
// Blob arguments are speculatively re-read: first as a bundle (if they begin
// with the "#bundle" marker), then as a message. The first reading that
// succeeds becomes the argument, as a *Bundle or *Message. If neither
// succeeds, the argument is a Blob of the raw bytes. Failures during this
// speculation are never reported.
//
// Any other failure aborts the decode; no partial result is returned.
func DecodeMessage(data []byte, options ...DecodeOption) (string, []Value, error) {
	d := newDecoder(options)
	if err := d.checkSize(data); err != nil {
		return "", nil, err
	}
	return d.decodeMessage(data, 0)
}

// DecodePacket decodes a datagram as a *Bundle if it begins with the
// "#bundle" marker and as a *Message otherwise. It's the natural way to
// resolve the raw elements returned by DecodeBundleRaw.
func DecodePacket(data []byte, options ...DecodeOption) (Packet, error) {
	d := newDecoder(options)
	if err := d.checkSize(data); err != nil {
		return nil, err
	}
	return d.decodePacket(data, 0)
}

type decoder struct {
	maxDepth     int
	readMaxBytes int
	inspectBlobs bool
}

func newDecoder(options []DecodeOption) *decoder {
	config := newDecoderConfig(options)
	return &decoder{
		maxDepth:     config.MaxDepth,
		readMaxBytes: config.ReadMaxBytes,
		inspectBlobs: !config.DisableBlobInspection,
	}
}

func (d *decoder) checkSize(data []byte) error {
	if d.readMaxBytes > 0 && len(data) > d.readMaxBytes {
		return errorf(CodeTooLarge, "datagram size %d is larger than configured max %d", len(data), d.readMaxBytes)
	}
	return nil
}

func (d *decoder) checkDepth(depth int) error {
	if depth > d.maxDepth {
		return errorf(CodeDepthExceeded, "nesting exceeds %d levels", d.maxDepth)
	}
	return nil
}

func (d *decoder) decodePacket(data []byte, depth int) (Packet, error) {
	if hasBundleMarker(data) {
		return d.decodeBundle(data, depth)
	}
	address, args, err := d.decodeMessage(data, depth)
	if err != nil {
		return nil, err
	}
	return &Message{Address: address, Args: args}, nil
}

func (d *decoder) decodeBundle(data []byte, depth int) (*Bundle, error) {
	if err := d.checkDepth(depth); err != nil {
		return nil, err
	}
	var elements []Packet
	timeTag, err := walkBundle(data, func(elem []byte) error {
		packet, err := d.decodePacket(elem, depth+1)
		if err != nil {
			return prefixError(err, "bundle element %d", len(elements))
		}
		elements = append(elements, packet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Bundle{Time: timeTag, Elements: elements}, nil
}

// A sequenceBuilder collects the values of one open array, or of the
// top-level argument list.
type sequenceBuilder struct {
	values []Value
}

// decodeMessage decodes one message datagram. A datagram that ends right
// after its address, or whose type tag string is empty, is a message with no
// arguments.
func (d *decoder) decodeMessage(data []byte, depth int) (string, []Value, error) {
	if err := d.checkDepth(depth); err != nil {
		return "", nil, err
	}
	r := newReader(data)
	address, err := r.readString("address")
	if err != nil {
		return "", nil, err
	}
	if r.done() {
		// OSC 1.0 allows senders to omit the type tag string entirely.
		return address, nil, nil
	}
	tags, err := r.readString("type tag string")
	if err != nil {
		return "", nil, err
	}
	if len(tags) == 0 {
		return address, nil, nil
	}
	if tags[0] != ',' {
		return "", nil, errorf(CodeUnknownTag, "type tag string %q doesn't begin with ','", tags)
	}

	// stack[0] holds the top-level arguments and is never popped.
	stack := []*sequenceBuilder{{}}
	for i := 1; i < len(tags); i++ {
		var value Value
		switch tag := tags[i]; tag {
		case TagInt32:
			n, err := r.readInt32("int32 argument")
			if err != nil {
				return "", nil, err
			}
			value = Int32(n)
		case TagFloat32:
			f, err := r.readFloat32("float32 argument")
			if err != nil {
				return "", nil, err
			}
			value = Float32(f)
		case TagFloat64:
			f, err := r.readFloat64("float64 argument")
			if err != nil {
				return "", nil, err
			}
			value = Float64(f)
		case TagString:
			s, err := r.readString("string argument")
			if err != nil {
				return "", nil, err
			}
			value = String(s)
		case TagBlob:
			blob, err := r.readBlob("blob argument")
			if err != nil {
				return "", nil, err
			}
			// Packets inside the blob sit one level below the open arrays.
			value = d.decodeBlob(blob, depth+len(stack))
		case TagTrue:
			value = Bool(true)
		case TagFalse:
			value = Bool(false)
		case TagNil:
			value = Nil{}
		case TagArrayOpen:
			if err := d.checkDepth(depth + len(stack)); err != nil {
				return "", nil, err
			}
			stack = append(stack, &sequenceBuilder{values: []Value{}})
			continue
		case TagArrayClose:
			if len(stack) > 1 {
				stack = closeArray(stack)
			}
			continue
		default:
			return "", nil, errorf(CodeUnknownTag, "unable to parse type tag %q at index %d", tag, i)
		}
		top := stack[len(stack)-1]
		top.values = append(top.values, value)
	}
	// Arrays left open by the tag string end with the message.
	for len(stack) > 1 {
		stack = closeArray(stack)
	}
	return address, stack[0].values, nil
}

// closeArray pops the innermost open array and appends it to its parent.
func closeArray(stack []*sequenceBuilder) []*sequenceBuilder {
	child := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	parent := stack[len(stack)-1]
	parent.values = append(parent.values, Array(child.values))
	return stack
}

// A blobCandidate tries one interpretation of a blob's contents. It reports
// false instead of returning an error, so falling through to the next
// candidate is ordinary control flow.
type blobCandidate func(d *decoder, blob []byte, depth int) (Value, bool)

// decodeBlob tries each candidate in order: bundle, then message. A blob that
// matches neither is returned as a copy of its raw bytes.
func (d *decoder) decodeBlob(blob []byte, depth int) Value {
	if d.inspectBlobs {
		candidates := [...]blobCandidate{blobAsBundle, blobAsMessage}
		for _, candidate := range candidates {
			if value, ok := candidate(d, blob, depth); ok {
				return value
			}
		}
	}
	return Blob(bytes.Clone(blob))
}

func blobAsBundle(d *decoder, blob []byte, depth int) (Value, bool) {
	if !hasBundleMarker(blob) {
		return nil, false
	}
	bundle, err := d.decodeBundle(blob, depth)
	if err != nil {
		return nil, false
	}
	return bundle, true
}

func blobAsMessage(d *decoder, blob []byte, depth int) (Value, bool) {
	address, args, err := d.decodeMessage(blob, depth)
	if err != nil {
		return nil, false
	}
	return &Message{Address: address, Args: args}, true
}
