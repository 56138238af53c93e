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
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/osc"
)

// writePacket prints a packet as indented text, one argument or element per
// line.
func writePacket(w io.Writer, packet osc.Packet) error {
	buffered := bufio.NewWriter(w)
	printPacket(buffered, packet, 0)
	return buffered.Flush()
}

func printPacket(w *bufio.Writer, packet osc.Packet, depth int) {
	indent := strings.Repeat("  ", depth)
	switch p := packet.(type) {
	case *osc.Message:
		fmt.Fprintf(w, "%smessage %s\n", indent, p.Address)
		for _, arg := range p.Args {
			printValue(w, arg, depth+1)
		}
	case *osc.Bundle:
		fmt.Fprintf(w, "%sbundle %s\n", indent, p.Time)
		for _, elem := range p.Elements {
			printPacket(w, elem, depth+1)
		}
	}
}

func printValue(w *bufio.Writer, value osc.Value, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := value.(type) {
	case osc.Int32:
		fmt.Fprintf(w, "%si %d\n", indent, v)
	case osc.Float32:
		fmt.Fprintf(w, "%sf %s\n", indent, strconv.FormatFloat(float64(v), 'g', -1, 32))
	case osc.Float64:
		fmt.Fprintf(w, "%sd %s\n", indent, strconv.FormatFloat(float64(v), 'g', -1, 64))
	case osc.String:
		fmt.Fprintf(w, "%ss %q\n", indent, string(v))
	case osc.Blob:
		fmt.Fprintf(w, "%sb %s\n", indent, hex.EncodeToString(v))
	case osc.Bool, osc.Nil:
		fmt.Fprintf(w, "%s%c\n", indent, v.Tag())
	case osc.Array:
		fmt.Fprintf(w, "%s[\n", indent)
		for _, elem := range v {
			printValue(w, elem, depth+1)
		}
		fmt.Fprintf(w, "%s]\n", indent)
	case osc.Packet:
		printPacket(w, v, depth)
	}
}
