package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerflow/internal/accounts"
	"github.com/cleared-dev/ledgerflow/internal/ledger"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// errSummariesDiffer is returned so the process exits non-zero.
var errSummariesDiffer = errors.New("summaries differ")

func newDiffCommand() *cobra.Command {
	var scale int32

	cmd := &cobra.Command{
		Use:   "diff <left.csv> <right.csv>",
		Short: "Compare two account summaries by client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := accounts.Load(args[0])
			if err != nil {
				return err
			}
			right, err := accounts.Load(args[1])
			if err != nil {
				return err
			}

			diffs := accounts.Diff(left, right)
			if len(diffs) == 0 {
				return nil
			}
			if err := printDiff(cmd.OutOrStdout(), diffs, scale); err != nil {
				return err
			}
			return fmt.Errorf("%w: %d client(s)", errSummariesDiffer, len(diffs))
		},
	}

	cmd.Flags().Int32Var(&scale, "scale", ledger.DefaultScale, "decimal places used when printing balances")

	return cmd
}

// printDiff writes "-" rows for the left summary and "+" rows for the right.
func printDiff(w io.Writer, diffs []accounts.Difference, scale int32) error {
	cw := csv.NewWriter(w)
	row := func(sign string, acct *model.Account) error {
		if acct == nil {
			return nil
		}
		return cw.Write(append([]string{sign}, accounts.MarshalAccount(*acct, scale)...))
	}
	for _, d := range diffs {
		if err := row("-", d.Left); err != nil {
			return fmt.Errorf("writing diff: %w", err)
		}
		if err := row("+", d.Right); err != nil {
			return fmt.Errorf("writing diff: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
