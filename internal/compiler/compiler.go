// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package compiler runs the Wend front end: lexing, layout, grammar
// matching, tree building and semantic analysis.
package compiler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/fs"
	"gopkg.wendlang.org/wendc/internal/grammar"
	"gopkg.wendlang.org/wendc/internal/syntax"
	"gopkg.wendlang.org/wendc/internal/target"
)

type Option func(c *Compiler) error

func OptionWithFS(fs syntax.FileSystem) Option {
	return func(c *Compiler) error {
		c.fs = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *Compiler) error {
		c.lookupEnv = lookupEnv
		return nil
	}
}

// OptionWithExcReporter installs a Reporter that receives the diagnostic of
// every file that fails in Compile.
func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *Compiler) error {
		c.reporter = reporter
		return nil
	}
}

// OptionWithTabWidth sets the column a tab advances indentation to a
// multiple of. Values below one select the default of four.
func OptionWithTabWidth(width int) Option {
	return func(c *Compiler) error {
		c.tabWidth = width
		return nil
	}
}

func OptionWithGrammar(g *grammar.Grammar) Option {
	return func(c *Compiler) error {
		c.grammar = g
		return nil
	}
}

func OptionWithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) error {
		c.logger = logger
		return nil
	}
}

func OptionWithMaxConcurrency(max int) Option {
	return func(c *Compiler) error {
		c.maxConcurrency = max
		return nil
	}
}

// Compiler holds the settings shared by every file it processes. A Compiler
// is safe for concurrent use. Files share nothing but the grammar, which is
// never modified.
type Compiler struct {
	lookupEnv      func(string) (string, bool)
	fs             syntax.FileSystem
	maxConcurrency int
	semaphore      *semaphore
	reporter       exc.Reporter
	tabWidth       int
	grammar        *grammar.Grammar
	logger         *slog.Logger
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.lookupEnv == nil {
		c.lookupEnv = os.LookupEnv
	}
	if c.fs == nil {
		dfs, err := NewDefaultFS(c.lookupEnv)
		if err != nil {
			return nil, err
		}
		c.fs = dfs
	}
	if c.maxConcurrency < 1 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.maxConcurrency = max
	}
	if c.semaphore == nil {
		c.semaphore = newSemaphore(c.maxConcurrency)
	}
	if c.reporter == nil {
		c.reporter = exc.NewReporter(nil)
	}
	if c.tabWidth < 1 {
		c.tabWidth = defaultTabWidth
	}
	if c.grammar == nil {
		g, err := grammar.Default()
		if err != nil {
			return nil, err
		}
		c.grammar = g
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// Request names the files to compile. Each entry may be a file path, a
// directory or a file URI. Directories expand to the sources they contain.
type Request struct {
	Files []string
	// Stage is the last stage to run. The zero value runs every stage.
	Stage      Stage
	DumpTokens bool
	DumpTree   bool
}

type Response struct {
	// Results holds one entry per file that compiled, ordered by path.
	Results []*Result
}

// Compile runs the pipeline over every requested file, at most
// maxConcurrency files at a time. A file that fails does not stop the
// others. When any file fails the error is a MultiException with one
// diagnostic per failed file and the response still holds the files that
// succeeded.
func (self *Compiler) Compile(ctx context.Context, req *Request) (*Response, error) {
	started := time.Now()
	var failed []exc.Exception
	files := make([]syntax.File, 0, len(req.Files))
	for _, t := range req.Files {
		uri := target.Normalize(t)
		in, err := self.fs.Open(ctx, uri)
		if err != nil {
			failed = append(failed, self.report(asException(err, uri)))
			continue
		}
		for _, inf := range in {
			if inf.Kind(ctx) == syntax.FileKindNone {
				continue
			}
			files = append(files, inf)
		}
	}

	loaded := &sync.Map{}
	// Buffered so that workers never block once Compile stops reading.
	results := make(chan fileResult, len(files))
	expectedResults := len(files)
	for _, file := range files {
		go func(file syntax.File) {
			res, err := self.compileFile(ctx, file, loaded, req.Stage)
			results <- fileResult{path: file.Path(ctx), result: res, err: err}
		}(file)
	}

	resp := &Response{}
	for x := 0; x < expectedResults; x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.err != nil {
				failed = append(failed, self.report(asException(result.err, result.path)))
				continue
			}
			if result.result == nil {
				continue
			}
			if !req.DumpTokens {
				result.result.Tokens = nil
			}
			if !req.DumpTree {
				result.result.Tree = nil
			}
			resp.Results = append(resp.Results, result.result)
		}
	}
	sort.Slice(resp.Results, func(i, j int) bool {
		return resp.Results[i].Path < resp.Results[j].Path
	})
	self.logger.Info("compile finished",
		slog.Int("files", expectedResults),
		slog.Int("failed", len(failed)),
		slog.Duration("elapsed", time.Since(started)),
	)
	if len(failed) > 0 {
		sort.SliceStable(failed, func(i, j int) bool {
			return failed[i].Location().URI < failed[j].Location().URI
		})
		return resp, MultiException(failed)
	}
	return resp, nil
}

func (self *Compiler) compileFile(ctx context.Context, file syntax.File, loaded *sync.Map, stage Stage) (*Result, error) {
	if err := self.semaphore.Lock(ctx); err != nil {
		return nil, err
	}
	defer self.semaphore.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := loaded.LoadOrStore(file.Path(ctx), true); ok {
		return nil, nil
	}
	if file.Kind(ctx) != syntax.FileKindWend {
		return nil, exc.New(exc.Location{URI: file.Path(ctx)}, exc.CodeUnsupportedFileFormat, "unsupported file format")
	}
	return self.run(ctx, file, stage)
}

func (self *Compiler) report(e exc.Exception) exc.Exception {
	_ = self.reporter.Report(e)
	return e
}

// Parse runs every stage over a single source text. name is only used to
// locate diagnostics.
func (self *Compiler) Parse(ctx context.Context, name string, text string) (*Result, error) {
	return self.ParseStage(ctx, name, text, StageChecked)
}

// ParseStage runs the stages up to and including stage over a single source
// text.
func (self *Compiler) ParseStage(ctx context.Context, name string, text string, stage Stage) (*Result, error) {
	return self.run(ctx, fs.NewFileString(name, text, syntax.FileKindWend), stage)
}

// Source returns the text of the file at uri as the compiler's file system
// resolves it.
func (self *Compiler) Source(ctx context.Context, uri string) (string, error) {
	files, err := self.fs.Open(ctx, uri)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", exc.Newf(exc.Location{URI: uri}, exc.CodeUnsupportedFileFormat, "%s is not a single file", uri)
	}
	return fs.ReadAll(ctx, files[0])
}

// Grammar returns the grammar files are matched against.
func (self *Compiler) Grammar() *grammar.Grammar {
	return self.grammar
}

// Parse is the front end in one call: it returns the analysed program for
// text, or the first diagnostic and no program.
func Parse(ctx context.Context, text string) (*ast.Program, error) {
	return parseDefault(ctx, text, StageChecked)
}

// ParseSyntax is Parse without semantic analysis.
func ParseSyntax(ctx context.Context, text string) (*ast.Program, error) {
	return parseDefault(ctx, text, StageAST)
}

const inputName = "<input>"

func parseDefault(ctx context.Context, text string, stage Stage) (*ast.Program, error) {
	c, err := New(OptionWithFS(fs.NewFileSystemMemory(nil)))
	if err != nil {
		return nil, err
	}
	res, err := c.ParseStage(ctx, inputName, text, stage)
	if err != nil {
		return nil, err
	}
	return res.Program, nil
}

type fileResult struct {
	path   string
	result *Result
	err    error
}

// MultiException carries the diagnostics of every file that failed in one
// Compile call.
type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

// Unwrap exposes the individual diagnostics to errors.Is and errors.As.
func (self MultiException) Unwrap() []error {
	out := make([]error, 0, len(self))
	for _, e := range self {
		out = append(out, e)
	}
	return out
}
