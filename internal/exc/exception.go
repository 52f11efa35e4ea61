// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import (
	"errors"
	"fmt"

	"gopkg.wendlang.org/wendc/internal/syntax"
)

type Exception interface {
	error
	Code() string
	Message() string
	Location() Location
	Kind() Kind
}

type Location struct {
	syntax.Location
	URI string
}

func (l Location) String() string {
	if l.URI == "" {
		return l.Location.String()
	}
	return fmt.Sprintf("%s:%d:%d", l.URI, l.Line, l.Column)
}

type exc struct {
	code     string
	message  string
	location Location
}

func (e *exc) Error() string {
	return fmt.Sprintf("%s -- %s %s: %s", e.location, e.Kind(), e.code, e.message)
}

func (e *exc) Code() string {
	return e.code
}

func (e *exc) Message() string {
	return e.message
}

func (e *exc) Location() Location {
	return e.location
}

func (e *exc) Kind() Kind {
	return KindOf(e.code)
}

type excUnwrap struct {
	Exception
	cause error
}

func (e *excUnwrap) Unwrap() error {
	return e.cause
}

func New(location Location, code string, message string) Exception {
	return &exc{
		location: location,
		message:  message,
		code:     code,
	}
}

// Newf is New with a formatted message.
func Newf(location Location, code string, format string, args ...any) Exception {
	return New(location, code, fmt.Sprintf(format, args...))
}

func Wrap(location Location, code string, err error) Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(Exception); ok {
		return &excUnwrap{
			Exception: New(location, code, e.Message()),
			cause:     e,
		}
	}
	return &excUnwrap{
		cause:     err,
		Exception: New(location, code, err.Error()),
	}
}

func WrapUnknown(location Location, err error) Exception {
	return Wrap(location, CodeUnknownFatal, err)
}

// WithURI returns a copy of the exception located in the given source. It is
// used by the pipeline to attach a file name to stage diagnostics that only
// know line and column.
func WithURI(e Exception, uri string) Exception {
	loc := e.Location()
	loc.URI = uri
	return &excUnwrap{
		Exception: New(loc, e.Code(), e.Message()),
		cause:     e,
	}
}

// IsSyntax reports whether err carries a SyntaxError diagnostic.
func IsSyntax(err error) bool {
	return kindOfErr(err) == KindSyntax
}

// IsSemantic reports whether err carries a SemanticError diagnostic.
func IsSemantic(err error) bool {
	return kindOfErr(err) == KindSemantic
}

// HasCode reports whether err is an Exception with the given code.
func HasCode(err error, code string) bool {
	var e Exception
	if !errors.As(err, &e) {
		return false
	}
	return e.Code() == code
}

func kindOfErr(err error) Kind {
	var e Exception
	if !errors.As(err, &e) {
		return KindNone
	}
	return e.Kind()
}
