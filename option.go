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

// defaultMaxDepth bounds nesting of arrays, blob-embedded packets, and bundle
// elements, for both encoding and decoding.
const defaultMaxDepth = 64

// A DecodeOption configures DecodeMessage, DecodeBundle, DecodeBundleRaw, and
// DecodePacket.
type DecodeOption interface {
	applyToDecoder(*decoderConfig)
}

type decoderConfig struct {
	MaxDepth              int
	ReadMaxBytes          int
	DisableBlobInspection bool
}

func newDecoderConfig(options []DecodeOption) *decoderConfig {
	config := &decoderConfig{MaxDepth: defaultMaxDepth}
	for _, opt := range options {
		opt.applyToDecoder(config)
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = defaultMaxDepth
	}
	return config
}

type maxDepthOption struct {
	Max int
}

// WithMaxDepth limits how deeply arrays and nested packets may be stacked in
// a decoded datagram. Each array and each bundle or message carried inside
// another packet counts as one level. Datagrams that nest deeper fail with
// CodeDepthExceeded, except inside a speculatively decoded blob, which falls
// back to raw bytes.
//
// Values less than or equal to zero restore the default of 64 levels.
func WithMaxDepth(n int) DecodeOption {
	return &maxDepthOption{n}
}

func (o *maxDepthOption) applyToDecoder(config *decoderConfig) {
	config.MaxDepth = o.Max
}

type readMaxBytesOption struct {
	Max int
}

// WithReadMaxBytes rejects datagrams larger than n bytes with CodeTooLarge
// before any parsing takes place. The limit applies to the outermost
// datagram only.
//
// Setting WithReadMaxBytes to zero allows any size, which is the default.
func WithReadMaxBytes(n int) DecodeOption {
	return &readMaxBytesOption{n}
}

func (o *readMaxBytesOption) applyToDecoder(config *decoderConfig) {
	config.ReadMaxBytes = o.Max
}

type disableBlobInspectionOption struct{}

// WithoutBlobInspection turns off speculative decoding of blobs. Every 'b'
// argument decodes to a Blob holding its raw bytes, even if those bytes form
// a valid message or bundle.
func WithoutBlobInspection() DecodeOption {
	return &disableBlobInspectionOption{}
}

func (o *disableBlobInspectionOption) applyToDecoder(config *decoderConfig) {
	config.DisableBlobInspection = true
}
