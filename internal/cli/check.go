package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gopkg.wendlang.org/wendc/internal/compiler"
)

type checkOptions struct {
	plugin       string
	pluginParams []string
	output       string
}

func addCheckFlags(flags *pflag.FlagSet, op *checkOptions) {
	flags.StringVar(&op.plugin, "plugin", "", "executable that receives the checked trees on stdin")
	flags.StringArrayVar(&op.pluginParams, "plugin-param", nil, "parameter passed through to the plugin; may be repeated")
	flags.StringVar(&op.output, "output", ".", "directory for files the plugin returns")
}

func (a *app) newCheckCommand() *cobra.Command {
	op := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Check Wend sources",
		Long: `Runs every stage over each file. Directories expand to the .wd files
they contain. Each failing file reports its first error.

With --plugin the checked trees are encoded as protobuf and written to the
plugin's stdin. Files named in the plugin's reply are written under --output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.newCompiler()
			if err != nil {
				return err
			}
			resp, err := c.Compile(ctx, &compiler.Request{Files: args})
			if resp != nil {
				for _, res := range resp.Results {
					fmt.Fprintf(a.streams.Out, "ok %s\n", res.Path)
				}
			}
			if err != nil {
				return a.report(ctx, c, err)
			}
			if op.plugin == "" {
				return nil
			}
			a.logger.Info("running plugin", slog.String("plugin", op.plugin), slog.Int("files", len(resp.Results)))
			written, err := runPlugin(ctx, c, op, resp.Results)
			if err != nil {
				return err
			}
			for _, name := range written {
				fmt.Fprintf(a.streams.Out, "wrote %s\n", name)
			}
			return nil
		},
	}
	addCheckFlags(cmd.Flags(), op)
	return cmd
}
