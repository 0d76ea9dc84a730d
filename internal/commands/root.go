package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// The root command itself processes a transactions file.
func NewRootCommand() *cobra.Command {
	var opts processOptions

	rootCmd := &cobra.Command{
		Use:     "ledgerflow <transactions.csv|->",
		Short:   "Apply a stream of payment transactions and print account balances",
		Version: buildinfo.String(),
		Args:    cobra.ExactArgs(1),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0], opts)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "path to ledgerflow.yaml")
	f.IntVar(&opts.workers, "workers", 1, "number of workers applying records")
	f.StringVar(&opts.rejections, "rejections", "", "write skipped records to this CSV file")
	f.StringVar(&opts.logLevel, "log-level", "info", "diagnostic log level (debug, info, warn, error)")
	f.BoolVar(&opts.noWithdrawalDisputes, "no-withdrawal-disputes", false, "reject disputes that reference withdrawals")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newDiffCommand())

	return rootCmd
}
