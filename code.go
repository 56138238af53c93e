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
	"strconv"
)

var strToCode = map[string]Code{
	"OK":                CodeOK,
	"UNSUPPORTED_VALUE": CodeUnsupportedValue,
	"TRUNCATED":         CodeTruncated,
	"MALFORMED_LENGTH":  CodeMalformedLength,
	"UNKNOWN_TAG":       CodeUnknownTag,
	"NOT_BUNDLE":        CodeNotBundle,
	"DEPTH_EXCEEDED":    CodeDepthExceeded,
	"TOO_LARGE":         CodeTooLarge,
	"UNKNOWN":           CodeUnknown,
}

// A Code classifies an encoding or decoding failure. There are no
// user-defined codes, so only the codes enumerated below are valid.
type Code uint32

const (
	CodeOK               Code = 0 // success
	CodeUnsupportedValue Code = 1 // value has no OSC representation
	CodeTruncated        Code = 2 // buffer ends inside a field
	CodeMalformedLength  Code = 3 // declared length exceeds the remaining buffer
	CodeUnknownTag       Code = 4 // type tag outside the recognized set
	CodeNotBundle        Code = 5 // datagram lacks the "#bundle" marker
	CodeDepthExceeded    Code = 6 // nesting deeper than the configured maximum
	CodeTooLarge         Code = 7 // datagram larger than the configured maximum
	CodeUnknown          Code = 8 // error didn't originate in this package

	minCode Code = CodeOK
	maxCode Code = CodeUnknown
)

// MarshalText implements encoding.TextMarshaler. Codes are marshaled in their
// numeric representations.
func (c Code) MarshalText() ([]byte, error) {
	if c < minCode || c > maxCode {
		return nil, fmt.Errorf("invalid code %v", c)
	}
	return []byte(strconv.Itoa(int(c))), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts both numeric
// representations (as produced by MarshalText) and all-caps names like
// "TRUNCATED".
func (c *Code) UnmarshalText(b []byte) error {
	if n, ok := strToCode[string(b)]; ok {
		*c = n
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10 /* base */, 32 /* bitsize */)
	if err != nil {
		return fmt.Errorf("invalid code %q", string(b))
	}
	code := Code(n)
	if code < minCode || code > maxCode {
		return fmt.Errorf("invalid code %v", n)
	}
	*c = code
	return nil
}

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeUnsupportedValue:
		return "UnsupportedValue"
	case CodeTruncated:
		return "Truncated"
	case CodeMalformedLength:
		return "MalformedLength"
	case CodeUnknownTag:
		return "UnknownTag"
	case CodeNotBundle:
		return "NotBundle"
	case CodeDepthExceeded:
		return "DepthExceeded"
	case CodeTooLarge:
		return "TooLarge"
	case CodeUnknown:
		return "Unknown"
	}
	return fmt.Sprintf("Code(%d)", c)
}
