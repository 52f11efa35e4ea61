// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the wendc command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gopkg.wendlang.org/wendc/internal/compiler"
	"gopkg.wendlang.org/wendc/internal/config"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/grammar"
)

// Version is replaced at link time for release builds.
var Version = "0.1.0-dev"

type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// errReported marks a failure whose diagnostics were already written.
var errReported = errors.New("diagnostics reported")

type globalFlags struct {
	config   string
	logLevel string
	tabWidth int
	grammar  string
	color    string
}

type app struct {
	streams   Streams
	lookupEnv func(string) (string, bool)
	flags     globalFlags
	cfg       *config.Config
	logger    *slog.Logger
	render    *renderer
}

// Main runs wendc with args and returns the process exit code: 0 on
// success, 1 when sources have errors and 2 when wendc itself could not run.
func Main(ctx context.Context, args []string, streams Streams, lookupEnv func(string) (string, bool)) int {
	a := &app{streams: streams, lookupEnv: lookupEnv}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)
	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(streams.Err, "wendc: %s\n", err)
		return 2
	}
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wendc",
		Short: "Front end for the Wend language",
		Long: `wendc reads Wend sources, checks their layout, syntax, scoping and
types, and reports the first error found in each file.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.config, "config", "", "config file (default: $"+config.EnvConfig+" or the user config directory)")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.IntVar(&a.flags.tabWidth, "tab-width", 0, "columns between tab stops")
	flags.StringVar(&a.flags.grammar, "grammar", "", "YAML grammar to use in place of the built-in one")
	flags.StringVar(&a.flags.color, "color", "", "colored diagnostics: auto, always or never")

	root.AddCommand(
		a.newCheckCommand(),
		a.newTokensCommand(),
		a.newTreeCommand(),
		a.newASTCommand(),
		a.newReplCommand(),
		a.newVersionCommand(),
	)
	return root
}

// setup merges the config file with flags set on the command line and
// prepares logging and rendering.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.flags.config, a.lookupEnv)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	if flags.Changed("tab-width") {
		cfg.Lexer.TabWidth = a.flags.tabWidth
	}
	if flags.Changed("grammar") {
		cfg.Grammar.Path = a.flags.grammar
	}
	if flags.Changed("color") {
		cfg.Output.Color = a.flags.color
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.streams.Err, &slog.HandlerOptions{Level: level})).
		With(slog.String("run_id", uuid.NewString()))
	a.render = newRenderer(a.streams.Err, cfg.Output.Color)
	a.logger.Debug("configured",
		slog.String("command", cmd.Name()),
		slog.String("config", cfg.Path),
		slog.Int("tab_width", cfg.Lexer.TabWidth),
	)
	return nil
}

func (a *app) newCompiler() (*compiler.Compiler, error) {
	opts := []compiler.Option{
		compiler.OptionWithLookupEnv(a.lookupEnv),
		compiler.OptionWithTabWidth(a.cfg.Lexer.TabWidth),
		compiler.OptionWithLogger(a.logger),
		compiler.OptionWithMaxConcurrency(a.cfg.Compile.MaxConcurrency),
	}
	if path := a.cfg.Grammar.Path; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeFileNotFound, err)
		}
		g, err := grammar.Load(data)
		var e exc.Exception
		if errors.As(err, &e) {
			return nil, exc.WithURI(e, path)
		}
		if err != nil {
			return nil, err
		}
		a.logger.Debug("grammar loaded", slog.String("path", path), slog.String("name", g.Name()))
		opts = append(opts, compiler.OptionWithGrammar(g))
	}
	return compiler.New(opts...)
}

// report renders the diagnostics carried by err. Errors that are not
// diagnostics are returned unchanged.
func (a *app) report(ctx context.Context, c *compiler.Compiler, err error) error {
	var found []exc.Exception
	var multi compiler.MultiException
	var single exc.Exception
	switch {
	case errors.As(err, &multi):
		found = multi
	case errors.As(err, &single):
		found = []exc.Exception{single}
	default:
		return err
	}
	for _, e := range found {
		source := ""
		if uri := e.Location().URI; uri != "" {
			source, _ = c.Source(ctx, uri)
		}
		fmt.Fprint(a.streams.Err, a.render.diagnostic(e, source))
	}
	return errReported
}
