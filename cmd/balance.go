package cmd

import (
	"context"

	"multicollateral/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "synthetic and collateral balances",
}

var balanceListCmd = &cobra.Command{
	Use:   "list <account>",
	Short: "list balances of account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		balances, err := provideStores().balances.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printJSON(cmd, balances)
		return nil
	},
}

var balanceMintCmd = &cobra.Command{
	Use:   "mint <account> <currency> <amount>",
	Short: "credit an account",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			return err
		}

		if !amount.IsPositive() {
			return core.ErrInputInvalid
		}

		e := provideEngine()
		ctx := cmd.Context()
		return e.lane.Do(ctx, func() error {
			return e.tx.Tx(ctx, func(ctx context.Context) error {
				return e.balances.Mint(ctx, args[0], args[1], amount)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.AddCommand(balanceListCmd, balanceMintCmd)
}
