package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/protojson"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/compiler"
	"gopkg.wendlang.org/wendc/internal/grammar"
	"gopkg.wendlang.org/wendc/internal/syntax"
)

// dump runs the pipeline up to stage over one target and hands each result
// to write.
func (a *app) dump(ctx context.Context, target string, stage compiler.Stage, write func(io.Writer, *compiler.Result) error) error {
	c, err := a.newCompiler()
	if err != nil {
		return err
	}
	resp, err := c.Compile(ctx, &compiler.Request{
		Files:      []string{target},
		Stage:      stage,
		DumpTokens: stage == compiler.StageTokens,
		DumpTree:   stage == compiler.StageTree,
	})
	if err != nil {
		return a.report(ctx, c, err)
	}
	for _, res := range resp.Results {
		if len(resp.Results) > 1 {
			fmt.Fprintf(a.streams.Out, "# %s\n", res.Path)
		}
		if err := write(a.streams.Out, res); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream after layout processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(cmd.Context(), args[0], compiler.StageTokens, writeTokens)
		},
	}
}

func writeTokens(w io.Writer, res *compiler.Result) error {
	for _, t := range res.Tokens {
		var err error
		switch {
		case t.Synthetic && t.Type == syntax.TokenTypeCurlyOpen:
			_, err = fmt.Fprintf(w, "%s\tINDENT\n", t.Span.Start)
		case t.Synthetic && t.Type == syntax.TokenTypeCurlyClose:
			_, err = fmt.Fprintf(w, "%s\tDEDENT\n", t.Span.Start)
		default:
			_, err = fmt.Fprintf(w, "%s\t%s\t%q\n", t.Span.Start, t.Type, t.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) newTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the concrete parse tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dump(cmd.Context(), args[0], compiler.StageTree, func(w io.Writer, res *compiler.Result) error {
				return grammar.Dump(w, res.Tree)
			})
		},
	}
}

func (a *app) newASTCommand() *cobra.Command {
	var unchecked bool
	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the checked syntax tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := compiler.StageChecked
			if unchecked {
				stage = compiler.StageAST
			}
			return a.dump(cmd.Context(), args[0], stage, writeAST)
		},
	}
	cmd.Flags().BoolVar(&unchecked, "unchecked", false, "skip semantic analysis")
	return cmd
}

func writeAST(w io.Writer, res *compiler.Result) error {
	tree, err := ast.Encode(res.Program)
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(tree)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
