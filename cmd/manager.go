package cmd

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var managerCmd = &cobra.Command{
	Use:   "manager",
	Short: "collateral manager settings",
}

var managerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show settings, pools and aggregate debt",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := provideEngine()

		settings, err := e.manager.Settings(ctx)
		if err != nil {
			return err
		}

		entries, err := e.manager.Pools(ctx)
		if err != nil {
			return err
		}

		debts, err := e.manager.Debts(ctx)
		if err != nil {
			return err
		}

		totals := map[string]decimal.Decimal{}
		for _, debt := range debts {
			totals[debt.Currency] = totals[debt.Currency].Add(debt.Amount)
		}

		printJSON(cmd, map[string]interface{}{
			"settings":   settings,
			"pools":      entries,
			"total_debt": totals,
		})
		return nil
	},
}

var managerSetCmd = &cobra.Command{
	Use:     "set <name> <value>",
	Short:   "override debt_ceiling, short_base_rate, short_slope or ceiling:<currency>",
	Example: "multicollateral manager set ceiling:sBTC 100",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := decimal.NewFromString(args[1])
		if err != nil {
			return err
		}

		return provideEngine().manager.SetSetting(cmd.Context(), args[0], value)
	},
}

func init() {
	rootCmd.AddCommand(managerCmd)
	managerCmd.AddCommand(managerShowCmd, managerSetCmd)
}
