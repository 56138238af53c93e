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
	"fmt"
)

// CodecNameBinary is the name of the codec returned by NewCodec.
const CodecNameBinary = "osc"

// A Codec can marshal packets to and from bytes. The binary codec returned by
// NewCodec speaks the OSC wire format; other packages supply alternate
// renderings (see the oscjson package).
type Codec interface {
	Name() string
	Marshal(any) ([]byte, error)
	Unmarshal([]byte, any) error
}

// NewCodec returns the binary OSC codec. Marshal accepts a *Message, a
// *Bundle, or any other Packet. Unmarshal accepts a *Message, a *Bundle, or a
// *Packet; a *Packet receives whichever kind of datagram the data holds. The
// options apply to every Unmarshal call.
func NewCodec(options ...DecodeOption) Codec {
	return &binaryCodec{options: options}
}

type binaryCodec struct {
	options []DecodeOption
}

var _ Codec = (*binaryCodec)(nil)

func (c *binaryCodec) Name() string { return CodecNameBinary }

func (c *binaryCodec) Marshal(message any) ([]byte, error) {
	packet, ok := message.(Packet)
	if !ok {
		return nil, errNotPacket(message)
	}
	return packet.MarshalBinary()
}

// MarshalAppend is like Marshal, but appends to dst.
func (c *binaryCodec) MarshalAppend(dst []byte, message any) ([]byte, error) {
	packet, ok := message.(Packet)
	if !ok {
		return dst, errNotPacket(message)
	}
	return packet.AppendBinary(dst)
}

func (c *binaryCodec) Unmarshal(data []byte, message any) error {
	switch dst := message.(type) {
	case *Message:
		address, args, err := DecodeMessage(data, c.options...)
		if err != nil {
			return err
		}
		dst.Address = address
		dst.Args = args
		return nil
	case *Bundle:
		bundle, err := DecodeBundle(data, c.options...)
		if err != nil {
			return err
		}
		*dst = *bundle
		return nil
	case *Packet:
		packet, err := DecodePacket(data, c.options...)
		if err != nil {
			return err
		}
		*dst = packet
		return nil
	default:
		return errNotPacket(message)
	}
}

func errNotPacket(m any) error {
	return NewError(CodeUnsupportedValue, fmt.Errorf("%T isn't an OSC packet", m))
}
