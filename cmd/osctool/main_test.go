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
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bufbuild/osc"
	"github.com/bufbuild/osc/internal/assert"
)

func runTool(t *testing.T, stdin []byte, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	status := run(args, bytes.NewReader(stdin), &stdout, &stderr)
	return status, stdout.String(), stderr.String()
}

func TestEncode(t *testing.T) {
	t.Parallel()
	status, stdout, stderr := runTool(t, nil, "encode", "/s_new", "s:default", "i:1000", "i:0", "i:0")
	assert.Equal(t, status, 0, assert.Sprintf("stderr: %s", stderr))
	want, err := osc.EncodeMessage("/s_new", osc.String("default"), osc.Int32(1000), osc.Int32(0), osc.Int32(0))
	assert.Nil(t, err)
	assert.EqualBytes(t, []byte(stdout), want)

	status, stdout, _ = runTool(t, nil, "encode", "--hex", "/status")
	assert.Equal(t, status, 0)
	assert.Equal(t, stdout, hex.EncodeToString([]byte("/status\x00,\x00\x00\x00"))+"\n")

	status, stdout, _ = runTool(t, nil, "encode", "--hex", "--int-address", "21", "i:1")
	assert.Equal(t, status, 0)
	assert.Equal(t, stdout, "00000015"+"2c690000"+"00000001\n")
}

func TestEncodeFailures(t *testing.T) {
	t.Parallel()
	status, _, stderr := runTool(t, nil, "encode")
	assert.Equal(t, status, 2)
	assert.True(t, strings.Contains(stderr, "needs an address"))

	status, _, _ = runTool(t, nil, "encode", "/x", "q:1")
	assert.Equal(t, status, 2)

	status, _, _ = runTool(t, nil, "encode", "--int-address", "/x")
	assert.Equal(t, status, 2)

	status, _, stderr = runTool(t, nil, "encode", "/x", "s:a\x00b")
	assert.Equal(t, status, 1)
	assert.True(t, strings.Contains(stderr, osc.CodeUnsupportedValue.String()))
}

func TestDecode(t *testing.T) {
	t.Parallel()
	inner := &osc.Message{Address: "/n_free", Args: []osc.Value{osc.Int32(1000)}}
	bundle := osc.NewBundle(osc.Immediately,
		&osc.Message{Address: "/n_set", Args: []osc.Value{
			osc.String("freq"), osc.Float32(440), osc.Array{osc.Bool(true), osc.Nil{}}, osc.Blob{1, 2}, inner,
		}},
	)
	data, err := bundle.MarshalBinary()
	assert.Nil(t, err)

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		status, stdout, stderr := runTool(t, data, "decode")
		assert.Equal(t, status, 0, assert.Sprintf("stderr: %s", stderr))
		assert.Equal(t, stdout, `bundle immediately
  message /n_set
    s "freq"
    f 440
    [
      T
      N
    ]
    b 0102
    message /n_free
      i 1000
`)
	})
	t.Run("raw blobs", func(t *testing.T) {
		t.Parallel()
		status, stdout, _ := runTool(t, data, "decode", "--raw-blobs")
		assert.Equal(t, status, 0)
		assert.False(t, strings.Contains(stdout, "message /n_free"))
	})
	t.Run("hex file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bundle.hex")
		assert.Nil(t, os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), 0o600))
		status, stdout, stderr := runTool(t, nil, "decode", "--hex", "--json", "--indent", "", path)
		assert.Equal(t, status, 0, assert.Sprintf("stderr: %s", stderr))
		assert.True(t, strings.Contains(stdout, `"immediately"`), assert.Sprintf("stdout: %s", stdout))
		assert.True(t, strings.Contains(stdout, `"/n_free"`), assert.Sprintf("stdout: %s", stdout))
	})
	t.Run("verbose", func(t *testing.T) {
		t.Parallel()
		status, _, stderr := runTool(t, data, "decode", "-v", "-")
		assert.Equal(t, status, 0)
		assert.True(t, strings.Contains(stderr, "read datagram"), assert.Sprintf("stderr: %s", stderr))
	})
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()
	status, _, stderr := runTool(t, []byte("/x\x00\x00,i\x00\x00\x00\x00\x01"), "decode")
	assert.Equal(t, status, 1)
	assert.True(t, strings.Contains(stderr, osc.CodeTruncated.String()), assert.Sprintf("stderr: %s", stderr))

	status, _, stderr = runTool(t, []byte("/x\x00\x00,\x00\x00\x00"), "decode", "--max-bytes", "4")
	assert.Equal(t, status, 1)
	assert.True(t, strings.Contains(stderr, osc.CodeTooLarge.String()), assert.Sprintf("stderr: %s", stderr))

	status, _, _ = runTool(t, []byte("zz"), "decode", "--hex")
	assert.Equal(t, status, 1)

	status, _, _ = runTool(t, nil, "decode", "a", "b")
	assert.Equal(t, status, 2)

	status, _, _ = runTool(t, nil, "decode", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, status, 1)
}

func TestCommands(t *testing.T) {
	t.Parallel()
	status, _, stderr := runTool(t, nil)
	assert.Equal(t, status, 2)
	assert.True(t, strings.Contains(stderr, "Usage:"))

	status, stdout, _ := runTool(t, nil, "help")
	assert.Equal(t, status, 0)
	assert.True(t, strings.Contains(stdout, "Usage:"))

	status, _, _ = runTool(t, nil, "send")
	assert.Equal(t, status, 2)

	status, _, _ = runTool(t, nil, "decode", "--help")
	assert.Equal(t, status, 0)

	status, _, _ = runTool(t, nil, "decode", "--bogus")
	assert.Equal(t, status, 2)
}
