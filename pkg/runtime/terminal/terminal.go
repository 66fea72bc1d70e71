package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/qb-tools/quote-forge/pkg/runtime/terminal/commands"
	"github.com/qb-tools/quote-forge/pkg/runtime/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	service  commands.DraftService
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Service commands.DraftService
	Output  io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		service:  opts.Service,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quotation pricing tool",
	}

	cmd.AddCommand(commands.NewPriceCmd(cli.service, cli.reporter))
	cmd.AddCommand(commands.NewValidateCmd(cli.service))
	cmd.AddCommand(commands.NewDraftCmd(cli.service))
	cmd.AddCommand(commands.NewMaterialsCmd(cli.service))

	return cmd
}
