// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"os"
	"path/filepath"

	"gopkg.wendlang.org/wendc/internal/fs"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// NewDefaultFS resolves targets against the working directory, then the
// file system root for absolute paths, then the shared source directories
// of the platform. Missing shared directories are skipped.
func NewDefaultFS(lookup func(string) (string, bool)) (syntax.FileSystem, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	roots := append([]string{wd, string(filepath.Separator)}, getDefaultRoots(lookup)...)
	f := make(fs.FileSystemMulti, 0, len(roots))
	for offset, root := range roots {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		if offset > 1 {
			if stat, err := os.Stat(absRoot); err != nil || !stat.IsDir() {
				continue
			}
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
