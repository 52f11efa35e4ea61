// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"io"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

func bodyFromIO(v io.ReadCloser) syntax.FileBody {
	return &ioFileBody{rc: v}
}

// ioFileBody adapts an io.ReadCloser to syntax.FileBody. The slice returned
// by Read is only valid until the next call.
type ioFileBody struct {
	rc io.ReadCloser
	b  []byte
}

func (self *ioFileBody) Read(ctx context.Context, size int32) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
	if len(self.b) < int(size) {
		self.b = make([]byte, size)
	}
	count, err := self.rc.Read(self.b[:size])
	switch {
	case err == nil:
		return self.b[:count], nil
	case errors.Is(err, io.EOF):
		return self.b[:count], exc.Wrap(exc.Location{}, exc.CodeEOF, err)
	default:
		return nil, exc.WrapUnknown(exc.Location{}, err)
	}
}

func (self *ioFileBody) Close(ctx context.Context) error {
	return self.rc.Close()
}
