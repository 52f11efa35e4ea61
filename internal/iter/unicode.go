// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package iter

import (
	"bufio"
	"context"
	"errors"
	"io"
	"unicode/utf8"

	"gopkg.wendlang.org/wendc/internal/optional"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// NewUnicodeFileBody converts a FileBody into an iterator of code points. The
// given context is used for all reads of the body. Invalid UTF-8 sequences
// are produced as utf8.RuneError. Any read error other than EOF ends the
// iteration and is returned from Close.
func NewUnicodeFileBody(ctx context.Context, b syntax.FileBody) syntax.Iterator[syntax.CodePoint] {
	return &fileBodyRunes{
		body:   b,
		reader: bufio.NewReader(&fileBodyIO{ctx: ctx, body: b}),
	}
}

type fileBodyRunes struct {
	body   syntax.FileBody
	reader *bufio.Reader
	err    error
}

func (self *fileBodyRunes) Next(ctx context.Context) optional.Optional[syntax.CodePoint] {
	if self.err != nil {
		return optional.None[syntax.CodePoint]()
	}
	r, _, err := self.reader.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			self.err = err
		} else {
			self.err = io.EOF
		}
		return optional.None[syntax.CodePoint]()
	}
	return optional.Some(syntax.CodePoint(r))
}

func (self *fileBodyRunes) Close(ctx context.Context) error {
	closeErr := self.body.Close(ctx)
	if self.err != nil && !errors.Is(self.err, io.EOF) {
		return self.err
	}
	return closeErr
}

type fileBodyIO struct {
	ctx  context.Context
	body syntax.FileBody
}

func (self *fileBodyIO) Read(p []byte) (int, error) {
	b, err := self.body.Read(self.ctx, int32(len(p)))
	n := copy(p, b)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		return n, err
	}
	return n, nil
}

// NewUnicodeString iterates over the code points of an in-memory text.
func NewUnicodeString(s string) syntax.Iterator[syntax.CodePoint] {
	return &stringRunes{text: s}
}

type stringRunes struct {
	text   string
	offset int
}

func (self *stringRunes) Next(ctx context.Context) optional.Optional[syntax.CodePoint] {
	if self.offset >= len(self.text) {
		return optional.None[syntax.CodePoint]()
	}
	r, size := utf8.DecodeRuneInString(self.text[self.offset:])
	self.offset = self.offset + size
	return optional.Some(syntax.CodePoint(r))
}

func (self *stringRunes) Close(ctx context.Context) error {
	return nil
}
