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

// Package oscjson renders OSC packets as JSON, for logging, fixtures, and
// tooling that can't speak the binary wire format.
//
// Every argument becomes a single-key object keyed by its type tag, so the
// rendering is lossless:
//
//	{"address": "/s_new", "args": [{"s": "default"}, {"i": 1000}, {"f": 0.5}]}
//
// Booleans are {"T": true} and {"F": false}, nil is {"N": null}, and arrays
// are {"[": [...]}. Blobs are base64 strings, unless they hold a nested
// message or bundle, which is rendered as an object. Non-finite floats are
// the strings "NaN", "Infinity", and "-Infinity". Bundles are
//
//	{"time": "immediately", "elements": [...]}
//
// where time is either "immediately" or fractional seconds since the Unix
// epoch.
package oscjson

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/bufbuild/osc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Name is the name of the JSON codec.
const Name = "osc+json"

const (
	keyAddress  = "address"
	keyArgs     = "args"
	keyTime     = "time"
	keyElements = "elements"
	immediately = "immediately"
)

// Codec marshals packets to and from JSON. It implements osc.Codec.
type Codec struct {
	marshalOptions   protojson.MarshalOptions
	unmarshalOptions protojson.UnmarshalOptions
}

// New constructs a JSON codec. Output is compact unless indent is non-empty.
func New(indent string) *Codec {
	return &Codec{
		marshalOptions: protojson.MarshalOptions{Indent: indent},
	}
}

var _ osc.Codec = (*Codec)(nil)

// Name implements osc.Codec.
func (c *Codec) Name() string { return Name }

// Marshal implements osc.Codec. It accepts any osc.Packet.
func (c *Codec) Marshal(message any) ([]byte, error) {
	packet, ok := message.(osc.Packet)
	if !ok {
		return nil, errNotPacket(message)
	}
	value, err := ToValue(packet)
	if err != nil {
		return nil, err
	}
	return c.marshalOptions.Marshal(value)
}

// Unmarshal implements osc.Codec. It accepts a *osc.Message, a *osc.Bundle,
// or a *osc.Packet.
func (c *Codec) Unmarshal(data []byte, message any) error {
	var value structpb.Value
	if err := c.unmarshalOptions.Unmarshal(data, &value); err != nil {
		return osc.NewError(osc.CodeUnsupportedValue, err)
	}
	packet, err := FromValue(&value)
	if err != nil {
		return err
	}
	switch dst := message.(type) {
	case *osc.Packet:
		*dst = packet
	case *osc.Message:
		m, ok := packet.(*osc.Message)
		if !ok {
			return errorf("can't unmarshal a bundle into %T", message)
		}
		*dst = *m
	case *osc.Bundle:
		b, ok := packet.(*osc.Bundle)
		if !ok {
			return osc.NewError(osc.CodeNotBundle, fmt.Errorf("can't unmarshal a message into %T", message))
		}
		*dst = *b
	default:
		return errNotPacket(message)
	}
	return nil
}

// ToValue converts a packet to its JSON structure.
func ToValue(packet osc.Packet) (*structpb.Value, error) {
	switch p := packet.(type) {
	case *osc.Message:
		if p == nil {
			return nil, errorf("cannot convert nil *osc.Message")
		}
		args := make([]*structpb.Value, len(p.Args))
		for i, arg := range p.Args {
			value, err := argToValue(arg)
			if err != nil {
				return nil, errorf("argument %d: %w", i, err)
			}
			args[i] = value
		}
		return object(map[string]*structpb.Value{
			keyAddress: structpb.NewStringValue(p.Address),
			keyArgs:    structpb.NewListValue(&structpb.ListValue{Values: args}),
		}), nil
	case *osc.Bundle:
		if p == nil {
			return nil, errorf("cannot convert nil *osc.Bundle")
		}
		elements := make([]*structpb.Value, len(p.Elements))
		for i, elem := range p.Elements {
			value, err := ToValue(elem)
			if err != nil {
				return nil, errorf("bundle element %d: %w", i, err)
			}
			elements[i] = value
		}
		when := structpb.NewStringValue(immediately)
		if !p.Time.IsImmediate() {
			when = structpb.NewNumberValue(p.Time.Seconds())
		}
		return object(map[string]*structpb.Value{
			keyTime:     when,
			keyElements: structpb.NewListValue(&structpb.ListValue{Values: elements}),
		}), nil
	default:
		return nil, errNotPacket(packet)
	}
}

func argToValue(arg osc.Value) (*structpb.Value, error) {
	var value *structpb.Value
	switch v := arg.(type) {
	case osc.Int32:
		value = structpb.NewNumberValue(float64(v))
	case osc.Float32:
		value = floatValue(float64(v))
	case osc.Float64:
		value = floatValue(float64(v))
	case osc.String:
		value = structpb.NewStringValue(string(v))
	case osc.Blob:
		value = structpb.NewStringValue(base64.StdEncoding.EncodeToString(v))
	case osc.Bool:
		value = structpb.NewBoolValue(bool(v))
	case osc.Nil:
		value = structpb.NewNullValue()
	case osc.Array:
		elems := make([]*structpb.Value, len(v))
		for i, elem := range v {
			converted, err := argToValue(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = converted
		}
		value = structpb.NewListValue(&structpb.ListValue{Values: elems})
	case *osc.Message, *osc.Bundle:
		converted, err := ToValue(v.(osc.Packet))
		if err != nil {
			return nil, err
		}
		value = converted
	default:
		return nil, fmt.Errorf("unsupported value %T", arg)
	}
	return object(map[string]*structpb.Value{string(arg.Tag()): value}), nil
}

// FromValue converts a JSON structure produced by ToValue back to a packet.
func FromValue(value *structpb.Value) (osc.Packet, error) {
	fields := value.GetStructValue().GetFields()
	if fields == nil {
		return nil, errorf("packet must be a JSON object")
	}
	if address, ok := fields[keyAddress]; ok {
		message, err := messageFromFields(address, fields[keyArgs])
		if err != nil {
			return nil, err
		}
		return message, nil
	}
	if when, ok := fields[keyTime]; ok {
		bundle, err := bundleFromFields(when, fields[keyElements])
		if err != nil {
			return nil, err
		}
		return bundle, nil
	}
	return nil, errorf("packet object needs an %q or a %q key", keyAddress, keyTime)
}

func messageFromFields(address, args *structpb.Value) (*osc.Message, error) {
	s, ok := address.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, errorf("message address must be a string")
	}
	message := &osc.Message{Address: s.StringValue}
	for i, arg := range args.GetListValue().GetValues() {
		value, err := argFromValue(arg)
		if err != nil {
			return nil, errorf("argument %d: %w", i, err)
		}
		message.Args = append(message.Args, value)
	}
	return message, nil
}

func bundleFromFields(when, elements *structpb.Value) (*osc.Bundle, error) {
	bundle := &osc.Bundle{}
	switch kind := when.GetKind().(type) {
	case *structpb.Value_StringValue:
		if kind.StringValue != immediately {
			return nil, errorf("bundle time %q must be %q or a number", kind.StringValue, immediately)
		}
		bundle.Time = osc.Immediately
	case *structpb.Value_NumberValue:
		bundle.Time = osc.TimeTagAt(kind.NumberValue)
	default:
		return nil, errorf("bundle time must be %q or a number", immediately)
	}
	for i, elem := range elements.GetListValue().GetValues() {
		packet, err := FromValue(elem)
		if err != nil {
			return nil, errorf("bundle element %d: %w", i, err)
		}
		bundle.Elements = append(bundle.Elements, packet)
	}
	return bundle, nil
}

func argFromValue(value *structpb.Value) (osc.Value, error) {
	fields := value.GetStructValue().GetFields()
	if len(fields) != 1 {
		return nil, fmt.Errorf("argument must be an object with exactly one type tag key")
	}
	var tag string
	for key := range fields {
		tag = key
	}
	return tagged(tag, fields[tag])
}

func tagged(tag string, value *structpb.Value) (osc.Value, error) {
	if len(tag) != 1 {
		return nil, fmt.Errorf("unknown type tag %q", tag)
	}
	switch tag[0] {
	case osc.TagInt32:
		n, ok := value.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) ||
			n.NumberValue < math.MinInt32 || n.NumberValue > math.MaxInt32 {
			return nil, fmt.Errorf("%q must be an int32", tag)
		}
		return osc.Int32(n.NumberValue), nil
	case osc.TagFloat32:
		f, err := floatFromValue(tag, value)
		return osc.Float32(f), err
	case osc.TagFloat64:
		f, err := floatFromValue(tag, value)
		return osc.Float64(f), err
	case osc.TagString:
		s, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%q must be a string", tag)
		}
		return osc.String(s.StringValue), nil
	case osc.TagBlob:
		switch kind := value.GetKind().(type) {
		case *structpb.Value_StringValue:
			blob, err := base64.StdEncoding.DecodeString(kind.StringValue)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", tag, err)
			}
			return osc.Blob(blob), nil
		case *structpb.Value_StructValue:
			packet, err := FromValue(value)
			if err != nil {
				return nil, err
			}
			return packet, nil
		default:
			return nil, fmt.Errorf("%q must be base64 or a packet object", tag)
		}
	case osc.TagTrue, osc.TagFalse:
		b, ok := value.GetKind().(*structpb.Value_BoolValue)
		if !ok || b.BoolValue != (tag[0] == osc.TagTrue) {
			return nil, fmt.Errorf("%q must be %t", tag, tag[0] == osc.TagTrue)
		}
		return osc.Bool(b.BoolValue), nil
	case osc.TagNil:
		if _, ok := value.GetKind().(*structpb.Value_NullValue); !ok {
			return nil, fmt.Errorf("%q must be null", tag)
		}
		return osc.Nil{}, nil
	case osc.TagArrayOpen:
		list, ok := value.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return nil, fmt.Errorf("%q must be a list", tag)
		}
		array := make(osc.Array, 0, len(list.ListValue.GetValues()))
		for i, elem := range list.ListValue.GetValues() {
			converted, err := argFromValue(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			array = append(array, converted)
		}
		return array, nil
	default:
		return nil, fmt.Errorf("unknown type tag %q", tag)
	}
}

func floatValue(f float64) *structpb.Value {
	switch {
	case math.IsNaN(f):
		return structpb.NewStringValue("NaN")
	case math.IsInf(f, 1):
		return structpb.NewStringValue("Infinity")
	case math.IsInf(f, -1):
		return structpb.NewStringValue("-Infinity")
	}
	return structpb.NewNumberValue(f)
}

func floatFromValue(tag string, value *structpb.Value) (float64, error) {
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return kind.NumberValue, nil
	case *structpb.Value_StringValue:
		switch kind.StringValue {
		case "NaN", "Infinity", "-Infinity":
			// ParseFloat accepts all three spellings.
			return strconv.ParseFloat(kind.StringValue, 64)
		}
	}
	return 0, fmt.Errorf("%q must be a number", tag)
}

func object(fields map[string]*structpb.Value) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: fields})
}

func errorf(template string, args ...any) *osc.Error {
	return osc.NewError(osc.CodeUnsupportedValue, fmt.Errorf(template, args...))
}

func errNotPacket(m any) error {
	return errorf("%T isn't an OSC packet", m)
}
