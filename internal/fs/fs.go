// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// FileExt is the extension of Wend source files.
const FileExt = ".wd"

var knownExts = map[string]syntax.FileKind{
	FileExt: syntax.FileKindWend,
}

// KindOf returns the file kind implied by a path's extension.
func KindOf(path string) syntax.FileKind {
	return knownExts[filepath.Ext(path)]
}

var _ syntax.FileSystem = FileSystemMulti{}

// FileSystemMulti is an ordered set of FileSystem implementations that are
// tried in order. Note that this type does not implement write operations.
// Those must be performed on individual backends.
type FileSystemMulti []syntax.FileSystem

func (r FileSystemMulti) Open(ctx context.Context, uri string) ([]syntax.File, error) {
	var firstErr error
	for _, fs := range r {
		files, err := fs.Open(ctx, uri)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return files, nil
	}
	if firstErr != nil && !exc.HasCode(firstErr, exc.CodeFileNotFound) {
		return nil, firstErr
	}
	return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("could not open %s from any file system", uri))
}

func (r FileSystemMulti) Write(ctx context.Context, uri string, content string) error {
	return exc.New(exc.Location{URI: uri}, exc.CodeUnsuportedFileSystemOperation, "cannot write to a composite file system")
}

// FileFilter is a filter function type used to select which files to open when
// the path being opened is a directory. Implementations should return true if
// the file should be opened, false otherwise.
type FileFilter func(ctx context.Context, fname string) bool

type FileSystemLocalOption func(*fileSystemLocal)

// WithOptionFSFactory installs a custom factory function used to generate the
// underlying file system handle. The default value is os.DirFS. The string
// value provided to the factory function is the root directory of the file
// system. All paths given to open or write are considered relative to this
// root.
func WithOptionFSFactory(v func(root string) fs.FS) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fsFactory = v
	}
}

// WithOptionFileFilter installs a custom filter function used to select files
// when a target is a directory. The default keeps only .wd sources.
func WithOptionFileFilter(v FileFilter) FileSystemLocalOption {
	return func(rfs *fileSystemLocal) {
		rfs.fileFilter = v
	}
}

type fileSystemLocal struct {
	root       string
	fsFactory  func(string) fs.FS
	fileFilter FileFilter
}

// NewFileSystemLocal creates a new FileSystem that uses the local file system.
func NewFileSystemLocal(root string, options ...FileSystemLocalOption) (syntax.FileSystem, error) {
	absroot, err := filepath.Abs(root)
	if err != nil {
		return nil, exc.WrapUnknown(exc.Location{URI: root}, err)
	}
	result := &fileSystemLocal{
		root:      absroot,
		fsFactory: os.DirFS,
		fileFilter: func(ctx context.Context, fname string) bool {
			return KindOf(fname) != syntax.FileKindNone
		},
	}
	for _, option := range options {
		option(result)
	}
	return result, nil
}

func (r *fileSystemLocal) Open(ctx context.Context, uri string) ([]syntax.File, error) {
	p := fsPath(uri)
	dir := r.fsFactory(r.root)
	stat, err := fs.Stat(dir, p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	if !stat.IsDir() {
		return []syntax.File{r.file(dir, p)}, nil
	}
	// Directories expand to their matching files, one level deep.
	entries, err := fs.ReadDir(dir, p)
	if err != nil {
		return nil, fsErr(p, err)
	}
	files := make([]syntax.File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !r.fileFilter(ctx, entry.Name()) {
			continue
		}
		files = append(files, r.file(dir, filepath.ToSlash(filepath.Join(p, entry.Name()))))
	}
	if len(files) < 1 {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("found directory %s but it has no %s files", uri, FileExt))
	}
	return files, nil
}

func (r *fileSystemLocal) file(dir fs.FS, p string) syntax.File {
	return NewFileFN(filepath.Join(r.root, p), func() (io.ReadCloser, error) {
		return dir.Open(p)
	}, KindOf(p))
}

func (r *fileSystemLocal) Write(ctx context.Context, uri string, content string) error {
	p := filepath.Join(r.root, filepath.FromSlash(fsPath(uri)))
	d := filepath.Dir(p)
	if err := os.MkdirAll(d, os.ModeDir|0o755); err != nil {
		return fsErr(d, err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return fsErr(p, err)
	}
	return nil
}

// FileSystemMemory holds sources in memory, keyed by cleaned absolute path.
// Pass it to compiler.OptionWithFS to compile sources that never touch disk.
type FileSystemMemory struct {
	lock  sync.RWMutex
	files map[string]string
}

func NewFileSystemMemory(files map[string]string) *FileSystemMemory {
	m := &FileSystemMemory{files: make(map[string]string, len(files))}
	for k, v := range files {
		m.files[memKey(k)] = v
	}
	return m
}

func (m *FileSystemMemory) Open(ctx context.Context, uri string) ([]syntax.File, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	key := memKey(uri)
	if content, ok := m.files[key]; ok {
		return []syntax.File{NewFileString(key, content, KindOf(key))}, nil
	}
	prefix := strings.TrimSuffix(key, "/") + "/"
	var names []string
	for name := range m.files {
		rest, ok := strings.CutPrefix(name, prefix)
		if ok && !strings.Contains(rest, "/") && KindOf(name) != syntax.FileKindNone {
			names = append(names, name)
		}
	}
	if len(names) < 1 {
		return nil, exc.New(exc.Location{URI: uri}, exc.CodeFileNotFound, fmt.Sprintf("%s does not exist", uri))
	}
	sort.Strings(names)
	files := make([]syntax.File, 0, len(names))
	for _, name := range names {
		files = append(files, NewFileString(name, m.files[name], KindOf(name)))
	}
	return files, nil
}

func (m *FileSystemMemory) Write(ctx context.Context, uri string, content string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.files[memKey(uri)] = content
	return nil
}

func memKey(uri string) string {
	p := fsPath(uri)
	if p == "." {
		return "/"
	}
	return "/" + p
}

// fsPath converts a target URI or path into the un-rooted, slash separated
// form that fs.FS requires. The root itself becomes ".".
func fsPath(uri string) string {
	path := uri
	if u, err := url.Parse(uri); err == nil && (u.Scheme == "" || u.Scheme == "file") {
		path = u.Path
	}
	p := strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+path)), "/")
	if p == "" {
		return "."
	}
	return p
}

func fsErr(path string, err error) error {
	if errT, ok := err.(*fs.PathError); ok {
		switch {
		case errors.Is(errT.Err, fs.ErrNotExist):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodeFileNotFound, errT)
		case errors.Is(errT.Err, fs.ErrPermission):
			return exc.Wrap(exc.Location{URI: errT.Path}, exc.CodePermissionDenied, errT)
		default:
			return exc.WrapUnknown(exc.Location{URI: errT.Path}, errT)
		}
	}
	return exc.WrapUnknown(exc.Location{URI: path}, err)
}
