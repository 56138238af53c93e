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

package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/bufbuild/osc"
)

// parseValues converts typed command-line tokens into message arguments.
// "[" and "]" open and close arrays, which must balance.
func parseValues(tokens []string) ([]osc.Value, error) {
	stack := [][]osc.Value{{}}
	for i, token := range tokens {
		switch token {
		case "[":
			stack = append(stack, osc.Array{})
			continue
		case "]":
			if len(stack) == 1 {
				return nil, fmt.Errorf("argument %d: unmatched ]", i)
			}
			array := osc.Array(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
			stack[len(stack)-1] = append(stack[len(stack)-1], array)
			continue
		}
		value, err := parseValue(token)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		stack[len(stack)-1] = append(stack[len(stack)-1], value)
	}
	if len(stack) > 1 {
		return nil, fmt.Errorf("%d unclosed [", len(stack)-1)
	}
	return stack[0], nil
}

func parseValue(token string) (osc.Value, error) {
	switch token {
	case "T":
		return osc.Bool(true), nil
	case "F":
		return osc.Bool(false), nil
	case "N":
		return osc.Nil{}, nil
	}
	tag, text, ok := strings.Cut(token, ":")
	if !ok || len(tag) != 1 {
		return nil, fmt.Errorf("token %q isn't T, F, N, [, ], or tag:value", token)
	}
	switch tag[0] {
	case osc.TagInt32:
		n, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return nil, err
		}
		return osc.Int32(n), nil
	case osc.TagFloat32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, err
		}
		return osc.Float32(f), nil
	case osc.TagFloat64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, err
		}
		return osc.Float64(f), nil
	case osc.TagString:
		return osc.String(text), nil
	case osc.TagBlob:
		blob, err := hex.DecodeString(text)
		if err != nil {
			return nil, err
		}
		return osc.Blob(blob), nil
	default:
		return nil, fmt.Errorf("unknown type tag %q in %q", tag, token)
	}
}
