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

// Package osc encodes and decodes Open Sound Control datagrams, the compact
// binary messages used to drive networked audio engines like SuperCollider's
// scsynth.
//
// The wire format is OSC 1.0 plus the common extension tags: T and F
// (booleans), N (nil), d (float64), and [ ] (arrays). Messages are a padded
// address string, a padded type tag string, and the argument payload:
//
//	datagram, err := osc.EncodeMessage("/s_new",
//		osc.String("default"), osc.Int32(1000), osc.Int32(0), osc.Int32(0))
//	address, args, err := osc.DecodeMessage(datagram)
//
// Bundles group messages (and other bundles) under a single time tag:
//
//	datagram, err := osc.EncodeBundle(osc.NewBundle(osc.Immediately, first, second))
//	bundle, err := osc.DecodeBundle(datagram)
//
// Blob arguments often carry whole datagrams, so the decoder tries to read
// each blob as a bundle, then as a message, and only returns the raw bytes if
// both attempts fail. Use WithoutBlobInspection to always get raw bytes.
//
// The package holds no state between calls. All functions are safe for
// concurrent use, and decoded values never alias the input buffer.
//
// This documentation is intended to explain each type and function in
// isolation. See the OSC 1.0 specification at
// https://opensoundcontrol.stanford.edu/spec-1_0.html for background on the
// protocol itself.
package osc
