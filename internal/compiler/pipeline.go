package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/grammar"
	"gopkg.wendlang.org/wendc/internal/iter"
	"gopkg.wendlang.org/wendc/internal/semantic"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// Stage selects how far the pipeline runs.
type Stage uint8

const (
	// StageChecked runs every stage, ending with semantic analysis.
	StageChecked Stage = iota
	// StageTokens stops after layout, leaving only Result.Tokens.
	StageTokens
	// StageTree stops after grammar matching.
	StageTree
	// StageAST stops after the tree is built and skips analysis.
	StageAST
)

func (s Stage) String() string {
	switch s {
	case StageChecked:
		return "checked"
	case StageTokens:
		return "tokens"
	case StageTree:
		return "tree"
	case StageAST:
		return "ast"
	default:
		return fmt.Sprintf("stage(%d)", uint8(s))
	}
}

// Result is what the pipeline produced for one file. Fields for stages that
// did not run are nil.
type Result struct {
	Path    string
	Tokens  []*syntax.Token
	Tree    *grammar.Node
	Program *ast.Program
	Info    *semantic.Info
}

// run is the pipeline for one file. Every stage either succeeds completely
// or the run ends with that stage's single diagnostic.
func (self *Compiler) run(ctx context.Context, file syntax.File, stage Stage) (*Result, error) {
	path := file.Path(ctx)
	log := self.logger.With(slog.String("file", path))
	res := &Result{Path: path}

	reporter := exc.NewReporter(nil)
	lexed, err := NewLexerWend(reporter).Lex(ctx, file)
	if err != nil {
		return nil, asException(err, path)
	}
	raw, err := lexed.Tokens(ctx)
	if err != nil {
		return nil, asException(err, path)
	}
	tokens, err := iter.Collect(ctx, NewPreprocessor(path, raw, reporter, self.tabWidth))
	if e := exc.FirstFatal(reporter); e != nil {
		log.Debug("layout failed", slog.String("code", e.Code()))
		return nil, e
	}
	if err != nil {
		return nil, asException(err, path)
	}
	res.Tokens = tokens
	log.Debug("tokens ready", slog.Int("count", len(tokens)))
	if stage == StageTokens {
		return res, nil
	}

	tree, err := self.grammar.Match(path, tokens)
	if err != nil {
		log.Debug("match failed", slog.String("error", err.Error()))
		return nil, asException(err, path)
	}
	res.Tree = tree
	if stage == StageTree {
		return res, nil
	}

	program, err := ast.Build(tree)
	if err != nil {
		return nil, asException(err, path)
	}
	res.Program = program
	log.Debug("tree built", slog.Int("statements", len(program.Body)))
	if stage == StageAST {
		return res, nil
	}

	info, err := semantic.Analyze(program)
	if err != nil {
		log.Debug("analysis failed", slog.String("error", err.Error()))
		return nil, asException(err, path)
	}
	res.Info = info
	return res, nil
}

// asException locates err in path unless it already names a source. Errors
// that are not diagnostics are wrapped as unknown failures.
func asException(err error, path string) exc.Exception {
	var e exc.Exception
	if !errors.As(err, &e) {
		return exc.WrapUnknown(exc.Location{URI: path}, err)
	}
	if e.Location().URI != "" {
		return e
	}
	return exc.WithURI(e, path)
}
