// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"bufio"
	"context"
	"io"
	"strings"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// NewFileString wraps static string content in syntax.File.
func NewFileString(path string, content string, kind syntax.FileKind) syntax.File {
	return NewFileFN(path, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(content)), nil
	}, kind)
}

type fileIOFunc struct {
	path string
	kind syntax.FileKind
	body func() (io.ReadCloser, error)
}

// NewFileFN wraps file based content in the syntax.File interface. The body
// function is called on every call to Body and must return a fresh handle
// each time.
func NewFileFN(path string, body func() (io.ReadCloser, error), kind syntax.FileKind) syntax.File {
	return &fileIOFunc{
		path: path,
		kind: kind,
		body: body,
	}
}

func (f *fileIOFunc) Path(ctx context.Context) string {
	return f.path
}

func (f *fileIOFunc) Kind(ctx context.Context) syntax.FileKind {
	return f.kind
}

func (f *fileIOFunc) Body(ctx context.Context) (syntax.FileBody, error) {
	rc, err := f.body()
	if err != nil {
		return nil, fsErr(f.path, err)
	}
	return bodyFromIO(&bufioReaderCloser{
		Reader: bufio.NewReader(rc),
		Closer: rc,
	}), nil
}

// ReadAll loads the full content of a file.
func ReadAll(ctx context.Context, f syntax.File) (string, error) {
	body, err := f.Body(ctx)
	if err != nil {
		return "", err
	}
	defer body.Close(ctx)
	var b strings.Builder
	for {
		chunk, err := body.Read(ctx, 4096)
		_, _ = b.Write(chunk)
		if err != nil {
			if exc.HasCode(err, exc.CodeEOF) {
				return b.String(), nil
			}
			return "", err
		}
	}
}

type bufioReaderCloser struct {
	*bufio.Reader
	io.Closer
}
