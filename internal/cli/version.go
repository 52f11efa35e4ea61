package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newCompiler()
			if err != nil {
				return err
			}
			g := c.Grammar()
			fmt.Fprintf(a.streams.Out, "wendc %s\n", Version)
			fmt.Fprintf(a.streams.Out, "  grammar:  %s %s\n", g.Name(), g.Version())
			fmt.Fprintf(a.streams.Out, "  go:       %s\n", runtime.Version())
			fmt.Fprintf(a.streams.Out, "  os/arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
