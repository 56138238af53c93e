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
	"errors"
	"fmt"
)

// An Error captures a Code and an underlying Go error. Every error returned
// by the encoders and decoders in this package can be cast to an *Error
// using the standard library's errors.As, or inspected with CodeOf.
//
// The codec never logs or swallows these errors. The single exception is
// speculative blob decoding: when a blob can't be read as a nested bundle or
// message, the failure is dropped and the blob's raw bytes are used instead.
type Error struct {
	code Code
	err  error
}

// NewError annotates any Go error with a Code.
func NewError(c Code, underlying error) *Error {
	return &Error{code: c, err: underlying}
}

func (e *Error) Error() string {
	text := e.err.Error()
	if text == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + text
}

// Unwrap implements errors.Wrapper, which allows errors.Is and errors.As
// access to the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the error's code.
func (e *Error) Code() Code {
	return e.code
}

// Message returns the underlying error message without the code prefix.
func (e *Error) Message() string {
	return e.err.Error()
}

// CodeOf returns the error's code if it is or wraps an *osc.Error, CodeOK if
// the error is nil, and CodeUnknown otherwise.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	if oscErr, ok := asError(err); ok {
		return oscErr.Code()
	}
	return CodeUnknown
}

// errorf calls fmt.Errorf with the supplied template and arguments, then wraps
// the resulting error.
func errorf(c Code, template string, args ...any) *Error {
	return NewError(c, fmt.Errorf(template, args...))
}

// asError uses errors.As to unwrap any error and look for an *osc.Error.
func asError(err error) (*Error, bool) {
	var oscErr *Error
	ok := errors.As(err, &oscErr)
	return oscErr, ok
}

func errTruncated(field string, offset, want, have int) *Error {
	return errorf(CodeTruncated, "truncated %s at offset %d: need %d bytes, have %d", field, offset, want, have)
}

func errMalformedLength(field string, offset, declared, remaining int) *Error {
	return errorf(
		CodeMalformedLength,
		"%s at offset %d declares %d bytes, only %d remain",
		field, offset, declared, remaining,
	)
}

// prefixError adds context to an *Error without repeating its code. Other
// errors are returned unchanged.
func prefixError(err error, template string, args ...any) error {
	oscErr, ok := asError(err)
	if !ok {
		return err
	}
	return NewError(oscErr.code, fmt.Errorf("%s: %w", fmt.Sprintf(template, args...), oscErr.err))
}
