package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"gopkg.wendlang.org/wendc/internal/ast"
	"gopkg.wendlang.org/wendc/internal/compiler"
	"gopkg.wendlang.org/wendc/internal/exc"
	"gopkg.wendlang.org/wendc/internal/types"
)

const (
	promptMain = "wend> "
	promptCont = "  ... "
	replName   = "<repl>"
)

// prompter is the line source of the REPL. *liner.State is one.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// scanPrompter reads lines from a non-interactive input without echoing
// prompts.
type scanPrompter struct {
	scanner *bufio.Scanner
}

func (self *scanPrompter) Prompt(string) (string, error) {
	if !self.scanner.Scan() {
		if err := self.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return self.scanner.Text(), nil
}

func (a *app) newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Check statements interactively",
		Long: `Each entry is checked together with every entry accepted before it, so
later entries may use earlier declarations. Entries with errors are
discarded. An entry that opens a block continues until a blank line.

Commands: :source prints the accepted program, :reset forgets it and :quit
exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newCompiler()
			if err != nil {
				return err
			}
			r := &repl{compiler: c, out: a.streams.Out, render: a.render, logger: a.logger, errOut: a.streams.Err}
			if a.streams.In != os.Stdin {
				return r.run(cmd.Context(), &scanPrompter{scanner: bufio.NewScanner(a.streams.In)})
			}
			ln := liner.NewLiner()
			defer ln.Close()
			ln.SetCtrlCAborts(true)
			history := historyPath()
			if f, err := os.Open(history); err == nil {
				_, _ = ln.ReadHistory(f)
				_ = f.Close()
			}
			defer func() {
				if err := os.MkdirAll(filepath.Dir(history), 0o700); err != nil {
					return
				}
				if f, err := os.Create(history); err == nil {
					_, _ = ln.WriteHistory(f)
					_ = f.Close()
				}
			}()
			r.history = ln.AppendHistory
			return r.run(cmd.Context(), ln)
		},
	}
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "wendc", "history")
}

type repl struct {
	compiler *compiler.Compiler
	out      io.Writer
	errOut   io.Writer
	render   *renderer
	logger   *slog.Logger
	history  func(string)
	accepted []string
}

func (self *repl) run(ctx context.Context, p prompter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, ok := self.read(ctx, p)
		if !ok {
			return nil
		}
		trimmed := strings.TrimSpace(entry)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit":
			return nil
		case trimmed == ":reset":
			self.accepted = nil
			continue
		case trimmed == ":source":
			for _, chunk := range self.accepted {
				fmt.Fprintln(self.out, chunk)
			}
			continue
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintf(self.errOut, "unknown command %s\n", trimmed)
			continue
		}
		if self.history != nil {
			self.history(entry)
		}
		self.eval(ctx, entry)
	}
}

// read collects lines until they form a complete entry. It reports false
// at the end of input.
func (self *repl) read(ctx context.Context, p prompter) (string, bool) {
	var lines []string
	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			lines = nil
			continue
		}
		if err != nil {
			if len(lines) > 0 {
				return strings.Join(lines, "\n"), true
			}
			return "", false
		}
		if strings.TrimSpace(line) == "" && len(lines) > 0 {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
		entry := strings.Join(lines, "\n")
		if !self.incomplete(ctx, entry) {
			return entry, true
		}
	}
}

// incomplete reports whether entry needs more lines: its input ended
// before the syntax did, or its last line is inside an indented block.
func (self *repl) incomplete(ctx context.Context, entry string) bool {
	_, err := self.compiler.ParseStage(ctx, replName, entry, compiler.StageAST)
	if err != nil {
		return exc.HasCode(err, exc.CodeUnexpectedEOF)
	}
	lines := strings.Split(entry, "\n")
	last := lines[len(lines)-1]
	return len(lines) > 1 && strings.TrimLeft(last, " \t") != last
}

// eval checks entry after every accepted entry and keeps it when the whole
// program is valid.
func (self *repl) eval(ctx context.Context, entry string) {
	prior := strings.Join(self.accepted, "\n")
	offset := int32(0)
	if prior != "" {
		offset = int32(strings.Count(prior, "\n") + 1)
		prior = prior + "\n"
	}
	res, err := self.compiler.Parse(ctx, replName, prior+entry+"\n")
	if err != nil {
		var e exc.Exception
		if !errors.As(err, &e) {
			fmt.Fprintln(self.errOut, err)
			return
		}
		loc := e.Location()
		if loc.Line > offset {
			loc.Line = loc.Line - offset
		}
		fmt.Fprint(self.errOut, self.render.diagnostic(exc.New(loc, e.Code(), e.Message()), entry))
		return
	}
	self.accepted = append(self.accepted, entry)
	self.logger.Debug("entry accepted", slog.Int("entries", len(self.accepted)))
	body := res.Program.Body
	if len(body) == 0 {
		return
	}
	if last, ok := body[len(body)-1].(*ast.ExpressionStatement); ok {
		if t := res.Info.TypeOf(last.Value); t != nil && t.Kind() != types.KindVoid {
			fmt.Fprintf(self.out, ": %s\n", t)
		}
	}
}
