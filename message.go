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

// A Packet is a complete OSC datagram: a *Message or a *Bundle. Packets are
// also Values, so they can be nested inside another message's arguments,
// where they travel as blobs.
type Packet interface {
	Value

	// MarshalBinary encodes the packet as a datagram.
	MarshalBinary() ([]byte, error)
	// AppendBinary appends the packet's datagram to dst.
	AppendBinary(dst []byte) ([]byte, error)

	isPacket()
}

// A Message is an address and an ordered list of arguments.
type Message struct {
	// Address is conventionally a slash-separated path like "/s_new".
	Address string
	Args    []Value
}

// NewMessage converts args with ValueOf and returns a Message.
func NewMessage(address string, args ...any) (*Message, error) {
	values, err := Values(args...)
	if err != nil {
		return nil, err
	}
	return &Message{Address: address, Args: values}, nil
}

// Tag implements Value. Nested messages are encoded as blobs.
func (*Message) Tag() byte { return TagBlob }

func (*Message) isValue()  {}
func (*Message) isPacket() {}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	datagram, err := m.AppendBinary(nil)
	if err != nil {
		return nil, err
	}
	return datagram, nil
}

// AppendBinary appends the encoded message to dst.
func (m *Message) AppendBinary(dst []byte) ([]byte, error) {
	if m == nil {
		return dst, errorf(CodeUnsupportedValue, "cannot encode nil *osc.Message")
	}
	return appendMessage(dst, m.Address, m.Args, 0)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using the default
// decoding options.
func (m *Message) UnmarshalBinary(data []byte) error {
	address, args, err := DecodeMessage(data)
	if err != nil {
		return err
	}
	m.Address = address
	m.Args = args
	return nil
}
