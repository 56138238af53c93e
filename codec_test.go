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
	"testing"

	"github.com/bufbuild/osc/internal/assert"
)

func TestBinaryCodec(t *testing.T) {
	t.Parallel()
	codec := NewCodec()
	assert.Equal(t, codec.Name(), CodecNameBinary)

	message := &Message{Address: "/c_set", Args: []Value{Int32(0), Float32(0.5)}}
	bundle := NewBundle(TimeTagAt(4), message)

	t.Run("message", func(t *testing.T) {
		t.Parallel()
		data, err := codec.Marshal(message)
		assert.Nil(t, err)
		var decoded Message
		assert.Nil(t, codec.Unmarshal(data, &decoded))
		assert.Equal(t, &decoded, message)
	})
	t.Run("bundle", func(t *testing.T) {
		t.Parallel()
		data, err := codec.Marshal(bundle)
		assert.Nil(t, err)
		var decoded Bundle
		assert.Nil(t, codec.Unmarshal(data, &decoded))
		assert.Equal(t, &decoded, bundle)
	})
	t.Run("packet", func(t *testing.T) {
		t.Parallel()
		for _, want := range []Packet{message, bundle} {
			data, err := codec.Marshal(want)
			assert.Nil(t, err)
			var got Packet
			assert.Nil(t, codec.Unmarshal(data, &got))
			assert.Equal(t, got, want)
		}
	})
	t.Run("append", func(t *testing.T) {
		t.Parallel()
		appender, ok := codec.(interface {
			MarshalAppend([]byte, any) ([]byte, error)
		})
		assert.True(t, ok)
		dst, err := appender.MarshalAppend([]byte{0xff}, message)
		assert.Nil(t, err)
		assert.Equal(t, dst[0], byte(0xff))
		var decoded Message
		assert.Nil(t, codec.Unmarshal(dst[1:], &decoded))
		assert.Equal(t, &decoded, message)

		dst, err = appender.MarshalAppend([]byte{0xff}, "not a packet")
		assert.Equal(t, CodeOf(err), CodeUnsupportedValue)
		assert.EqualBytes(t, dst, []byte{0xff})
	})
	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := codec.Marshal(Int32(1))
		assert.Equal(t, CodeOf(err), CodeUnsupportedValue)
		var target string
		err = codec.Unmarshal([]byte("/x\x00\x00,\x00\x00\x00"), &target)
		assert.Equal(t, CodeOf(err), CodeUnsupportedValue)
		var decoded Bundle
		err = codec.Unmarshal([]byte("/x\x00\x00,\x00\x00\x00"), &decoded)
		assert.Equal(t, CodeOf(err), CodeNotBundle)
	})
	t.Run("options", func(t *testing.T) {
		t.Parallel()
		limited := NewCodec(WithReadMaxBytes(8))
		data, err := limited.Marshal(message)
		assert.Nil(t, err)
		var decoded Message
		err = limited.Unmarshal(data, &decoded)
		assert.Equal(t, CodeOf(err), CodeTooLarge)
	})
}
