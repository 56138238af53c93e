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

// osctool encodes and decodes Open Sound Control datagrams from the command
// line, for inspecting captured traffic and building test fixtures.
//
//	osctool encode [--hex] [--int-address] <address> [args...]
//	osctool decode [--hex] [--json] [--raw-blobs] [--max-depth n] [file]
//
// Encoded datagrams are written to stdout. Decode reads a file, or stdin
// when no file (or "-") is given.
package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/bufbuild/osc"
	"github.com/bufbuild/osc/oscjson"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// errUsage marks errors caused by bad invocations, which exit with status 2.
var errUsage = errors.New("usage")

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 2
	}
	var err error
	switch command, rest := args[0], args[1:]; command {
	case "encode":
		err = runEncode(rest, stdout, stderr)
	case "decode":
		err = runDecode(rest, stdin, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	fmt.Fprintf(stderr, "osctool: %v\n", err)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `osctool encodes and decodes Open Sound Control datagrams.

Usage:
  osctool encode [flags] <address> [args...]
  osctool decode [flags] [file]

Encode arguments are typed tokens:
  i:<int32>  f:<float32>  d:<float64>  s:<string>  b:<hex>
  T  F  N    [ ... ]

Examples:
  osctool encode --hex /s_new s:default i:1000 i:0 i:0
  osctool encode /n_setn i:1000 [ f:440 f:0.5 ] > fixture.osc
  osctool decode --json fixture.osc

Run "osctool <command> --help" for the flags of each command.
`)
}

func newFlagSet(name string, stderr io.Writer) (*pflag.FlagSet, *bool) {
	flagSet := pflag.NewFlagSet("osctool "+name, pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	verbose := flagSet.BoolP("verbose", "v", false, "log debug details to stderr")
	return flagSet, verbose
}

func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func runEncode(args []string, stdout, stderr io.Writer) error {
	flagSet, verbose := newFlagSet("encode", stderr)
	asHex := flagSet.Bool("hex", false, "write the datagram as hex instead of binary")
	intAddress := flagSet.Bool("int-address", false, "treat the address as a 32-bit integer command number")
	// Flag parsing stops at the address, so argument tokens pass through as is.
	flagSet.SetInterspersed(false)
	if err := flagSet.Parse(args); err != nil {
		return usageError(err)
	}
	logger := newLogger(stderr, *verbose)

	positional := flagSet.Args()
	if len(positional) == 0 {
		return fmt.Errorf("%w: encode needs an address", errUsage)
	}
	values, err := parseValues(positional[1:])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var datagram []byte
	if *intAddress {
		address, err := strconv.ParseInt(positional[0], 0, 32)
		if err != nil {
			return fmt.Errorf("%w: integer address %q: %v", errUsage, positional[0], err)
		}
		datagram, err = osc.EncodeMessageInt(int32(address), values...)
		if err != nil {
			return err
		}
	} else {
		datagram, err = osc.EncodeMessage(positional[0], values...)
		if err != nil {
			return err
		}
	}
	logger.Debug("encoded message",
		"address", positional[0],
		"args", len(values),
		"bytes", len(datagram),
	)

	if *asHex {
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(datagram))
		return err
	}
	_, err = stdout.Write(datagram)
	return err
}

func runDecode(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet, verbose := newFlagSet("decode", stderr)
	fromHex := flagSet.Bool("hex", false, "read the datagram as hex instead of binary")
	asJSON := flagSet.Bool("json", false, "print the packet as JSON")
	indent := flagSet.String("indent", "  ", "indentation for --json output, empty for compact output")
	rawBlobs := flagSet.Bool("raw-blobs", false, "don't try to decode blobs as nested packets")
	maxDepth := flagSet.Int("max-depth", 0, "maximum nesting depth (0 for the default)")
	maxBytes := flagSet.Int("max-bytes", 0, "reject datagrams larger than this many bytes (0 for no limit)")
	if err := flagSet.Parse(args); err != nil {
		return usageError(err)
	}
	logger := newLogger(stderr, *verbose)

	var input io.Reader = stdin
	name := "stdin"
	switch positional := flagSet.Args(); len(positional) {
	case 0:
	case 1:
		if positional[0] != "-" {
			file, err := os.Open(positional[0])
			if err != nil {
				return err
			}
			defer file.Close()
			input, name = file, positional[0]
		}
	default:
		return fmt.Errorf("%w: decode takes at most one file", errUsage)
	}
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if *fromHex {
		data, err = hex.DecodeString(string(bytes.TrimSpace(data)))
		if err != nil {
			return fmt.Errorf("decoding hex from %s: %w", name, err)
		}
	}
	logger.Debug("read datagram", "source", name, "bytes", len(data))

	options := []osc.DecodeOption{osc.WithMaxDepth(*maxDepth), osc.WithReadMaxBytes(*maxBytes)}
	if *rawBlobs {
		options = append(options, osc.WithoutBlobInspection())
	}
	packet, err := osc.DecodePacket(data, options...)
	if err != nil {
		logger.Debug("decode failed", "source", name, "code", osc.CodeOf(err).String())
		return fmt.Errorf("decoding %s: %w", name, err)
	}

	if *asJSON {
		out, err := oscjson.New(*indent).Marshal(packet)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return err
	}
	return writePacket(stdout, packet)
}

func usageError(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}
