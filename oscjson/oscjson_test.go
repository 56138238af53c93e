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

package oscjson

import (
	"math"
	"testing"

	"github.com/bufbuild/osc"
	"github.com/bufbuild/osc/internal/assert"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestToValue(t *testing.T) {
	t.Parallel()
	message := &osc.Message{Address: "/s_new", Args: []osc.Value{osc.String("default"), osc.Int32(1000)}}
	got, err := ToValue(message)
	assert.Nil(t, err)
	want, err := structpb.NewValue(map[string]any{
		"address": "/s_new",
		"args": []any{
			map[string]any{"s": "default"},
			map[string]any{"i": 1000},
		},
	})
	assert.Nil(t, err)
	assert.Equal(t, got, want)

	got, err = ToValue(osc.NewBundle(osc.Immediately))
	assert.Nil(t, err)
	want, err = structpb.NewValue(map[string]any{"time": "immediately", "elements": []any{}})
	assert.Nil(t, err)
	assert.Equal(t, got, want)
}

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()
	inner := &osc.Message{Address: "/n_free", Args: []osc.Value{osc.Int32(1)}}
	packets := []osc.Packet{
		&osc.Message{Address: "/status"},
		&osc.Message{
			Address: "/everything",
			Args: []osc.Value{
				osc.Int32(-7), osc.Float32(0.1), osc.Float64(math.Pi), osc.String("fréquence"),
				osc.Blob{0, 1, 2, 0xff}, osc.Bool(true), osc.Bool(false), osc.Nil{},
				osc.Array{osc.Int32(1), osc.Array{}}, inner,
				osc.NewBundle(osc.TimeTagAt(1_700_000_000.5), inner),
			},
		},
		osc.NewBundle(osc.TimeTagAt(12.25), inner, osc.NewBundle(osc.Immediately)),
	}
	for _, indent := range []string{"", "  "} {
		codec := New(indent)
		assert.Equal(t, codec.Name(), Name)
		for _, want := range packets {
			data, err := codec.Marshal(want)
			assert.Nil(t, err)
			var got osc.Packet
			assert.Nil(t, codec.Unmarshal(data, &got), assert.Sprintf("json: %s", data))
			assert.Equal(t, got, want)
		}
	}
}

func TestCodecTargets(t *testing.T) {
	t.Parallel()
	codec := New("")
	message := &osc.Message{Address: "/quit"}
	data, err := codec.Marshal(message)
	assert.Nil(t, err)

	var decoded osc.Message
	assert.Nil(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, &decoded, message)

	var bundle osc.Bundle
	err = codec.Unmarshal(data, &bundle)
	assert.Equal(t, osc.CodeOf(err), osc.CodeNotBundle)

	var target int
	err = codec.Unmarshal(data, &target)
	assert.Equal(t, osc.CodeOf(err), osc.CodeUnsupportedValue)

	_, err = codec.Marshal("not a packet")
	assert.Equal(t, osc.CodeOf(err), osc.CodeUnsupportedValue)
}

func TestNonFiniteFloats(t *testing.T) {
	t.Parallel()
	codec := New("")
	data, err := codec.Marshal(&osc.Message{
		Address: "/f",
		Args:    []osc.Value{osc.Float32(float32(math.NaN())), osc.Float64(math.Inf(1)), osc.Float64(math.Inf(-1))},
	})
	assert.Nil(t, err)
	var decoded osc.Message
	assert.Nil(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, len(decoded.Args), 3)
	f, ok := decoded.Args[0].(osc.Float32)
	assert.True(t, ok)
	assert.True(t, math.IsNaN(float64(f)))
	assert.Equal(t, decoded.Args[1], osc.Value(osc.Float64(math.Inf(1))))
	assert.Equal(t, decoded.Args[2], osc.Value(osc.Float64(math.Inf(-1))))
}

func TestFromValueFailures(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		json string
	}{
		{name: "not an object", json: `[1, 2]`},
		{name: "neither message nor bundle", json: `{"foo": 1}`},
		{name: "numeric address", json: `{"address": 5}`},
		{name: "bad time", json: `{"time": "later"}`},
		{name: "untagged argument", json: `{"address": "/x", "args": [1]}`},
		{name: "two tags", json: `{"address": "/x", "args": [{"i": 1, "f": 2}]}`},
		{name: "unknown tag", json: `{"address": "/x", "args": [{"z": 1}]}`},
		{name: "fractional int", json: `{"address": "/x", "args": [{"i": 1.5}]}`},
		{name: "int overflow", json: `{"address": "/x", "args": [{"i": 4294967296}]}`},
		{name: "bad base64", json: `{"address": "/x", "args": [{"b": "!!"}]}`},
		{name: "mismatched bool", json: `{"address": "/x", "args": [{"T": false}]}`},
		{name: "non-null nil", json: `{"address": "/x", "args": [{"N": 0}]}`},
		{name: "bad array element", json: `{"address": "/x", "args": [{"[": [{"s": 1}]}]}`},
		{name: "bad bundle element", json: `{"time": 0, "elements": [{"address": 1}]}`},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			var value structpb.Value
			assert.Nil(t, protojson.Unmarshal([]byte(testCase.json), &value))
			packet, err := FromValue(&value)
			assert.Nil(t, packet)
			assert.Equal(t, osc.CodeOf(err), osc.CodeUnsupportedValue, assert.Sprintf("error: %v", err))
		})
	}
}

func TestUnmarshalInvalidJSON(t *testing.T) {
	t.Parallel()
	var packet osc.Packet
	err := New("").Unmarshal([]byte(`{"address":`), &packet)
	assert.Equal(t, osc.CodeOf(err), osc.CodeUnsupportedValue)
}
