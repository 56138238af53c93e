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
	"math"
	"reflect"
)

// Type tags. Each argument of a message contributes exactly one tag to the
// type tag string, except arrays, which contribute their elements' tags
// wrapped in TagArrayOpen and TagArrayClose.
const (
	TagInt32      byte = 'i'
	TagFloat32    byte = 'f'
	TagFloat64    byte = 'd'
	TagString     byte = 's'
	TagBlob       byte = 'b'
	TagTrue       byte = 'T'
	TagFalse      byte = 'F'
	TagNil        byte = 'N'
	TagArrayOpen  byte = '['
	TagArrayClose byte = ']'
)

// A Value is a single OSC argument. The set of implementations is closed:
// Int32, Float32, Float64, String, Bool, Nil, Blob, Array, *Message, and
// *Bundle. Messages and bundles used as arguments travel as blobs containing
// their own datagrams.
//
// Use ValueOf to convert ordinary Go values.
type Value interface {
	// Tag returns the argument's type tag. Arrays report TagArrayOpen.
	Tag() byte

	isValue()
}

// Int32 is a big-endian 32-bit signed integer, tag 'i'.
type Int32 int32

// Float32 is a big-endian IEEE 754 single-precision float, tag 'f'.
type Float32 float32

// Float64 is a big-endian IEEE 754 double-precision float, tag 'd'.
type Float64 float64

// String is a NUL-terminated, 4-byte padded string, tag 's'. It may not
// contain NUL bytes.
type String string

// Bool is true or false, tags 'T' and 'F'. Booleans have no payload.
type Bool bool

// Nil is the zero-width nil value, tag 'N'.
type Nil struct{}

// Blob is a size-prefixed run of opaque bytes, tag 'b'.
type Blob []byte

// Array is an ordered sequence of values, wrapped in '[' and ']' tags.
type Array []Value

func (Int32) Tag() byte   { return TagInt32 }
func (Float32) Tag() byte { return TagFloat32 }
func (Float64) Tag() byte { return TagFloat64 }
func (String) Tag() byte  { return TagString }
func (Nil) Tag() byte     { return TagNil }
func (Blob) Tag() byte    { return TagBlob }
func (Array) Tag() byte   { return TagArrayOpen }

func (b Bool) Tag() byte {
	if b {
		return TagTrue
	}
	return TagFalse
}

func (Int32) isValue()   {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (String) isValue()  {}
func (Bool) isValue()    {}
func (Nil) isValue()     {}
func (Blob) isValue()    {}
func (Array) isValue()   {}

// A Marshaler is a type with its own datagram representation. ValueOf
// encodes Marshalers as blobs holding the bytes returned by MarshalOSC.
type Marshaler interface {
	MarshalOSC() ([]byte, error)
}

// ValueOf converts a Go value to a Value. Booleans are checked before
// integers, so bools always become Bool. Conversions:
//
//   - Value: returned unchanged
//   - nil: Nil
//   - bool: Bool
//   - signed and unsigned integers within int32 range: Int32
//   - float32 and float64: Float32
//   - string: String
//   - []byte: Blob
//   - Marshaler: Blob of the marshaled datagram
//   - other slices and arrays: Array, converting each element
//
// Anything else fails with CodeUnsupportedValue.
func ValueOf(v any) (Value, error) {
	return valueOf(v, 0)
}

// Values converts each argument with ValueOf.
func Values(args ...any) ([]Value, error) {
	values := make([]Value, len(args))
	for i, arg := range args {
		value, err := valueOf(arg, 0)
		if err != nil {
			return nil, prefixError(err, "argument %d", i)
		}
		values[i] = value
	}
	return values, nil
}

func valueOf(v any, depth int) (Value, error) {
	if depth > defaultMaxDepth {
		return nil, errorf(CodeDepthExceeded, "value nesting exceeds %d levels", defaultMaxDepth)
	}
	switch x := v.(type) {
	case nil:
		return Nil{}, nil
	case *Message:
		if x == nil {
			return nil, errorf(CodeUnsupportedValue, "cannot convert nil *osc.Message")
		}
		return x, nil
	case *Bundle:
		if x == nil {
			return nil, errorf(CodeUnsupportedValue, "cannot convert nil *osc.Bundle")
		}
		return x, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return int32Of(int64(x), v)
	case int8:
		return Int32(x), nil
	case int16:
		return Int32(x), nil
	case int32:
		return Int32(x), nil
	case int64:
		return int32Of(x, v)
	case uint:
		return uint32Of(uint64(x), v)
	case uint8:
		return Int32(x), nil
	case uint16:
		return Int32(x), nil
	case uint32:
		return uint32Of(uint64(x), v)
	case uint64:
		return uint32Of(x, v)
	case float32:
		return Float32(x), nil
	case float64:
		return Float32(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Blob(x), nil
	case Marshaler:
		datagram, err := x.MarshalOSC()
		if err != nil {
			return nil, errorf(CodeUnsupportedValue, "marshal %T: %w", v, err)
		}
		return Blob(datagram), nil
	case []Value:
		array := make(Array, len(x))
		for i, elem := range x {
			value, err := valueOf(elem, depth+1)
			if err != nil {
				return nil, prefixError(err, "element %d", i)
			}
			array[i] = value
		}
		return array, nil
	case []any:
		array := make(Array, len(x))
		for i, elem := range x {
			value, err := valueOf(elem, depth+1)
			if err != nil {
				return nil, prefixError(err, "element %d", i)
			}
			array[i] = value
		}
		return array, nil
	}
	reflected := reflect.ValueOf(v)
	switch reflected.Kind() {
	case reflect.Slice, reflect.Array:
		array := make(Array, reflected.Len())
		for i := range array {
			value, err := valueOf(reflected.Index(i).Interface(), depth+1)
			if err != nil {
				return nil, prefixError(err, "element %d", i)
			}
			array[i] = value
		}
		return array, nil
	default:
		return nil, errUnsupported(v)
	}
}

func int32Of(n int64, original any) (Value, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, errorf(CodeUnsupportedValue, "integer %v (%T) overflows int32", original, original)
	}
	return Int32(n), nil
}

func uint32Of(n uint64, original any) (Value, error) {
	if n > math.MaxInt32 {
		return nil, errorf(CodeUnsupportedValue, "integer %v (%T) overflows int32", original, original)
	}
	return Int32(n), nil
}

func errUnsupported(v any) *Error {
	return errorf(CodeUnsupportedValue, "cannot encode %#v (%T) as an OSC value", v, v)
}
