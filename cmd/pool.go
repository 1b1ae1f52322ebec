package cmd

import (
	"encoding/json"
	"strings"

	"multicollateral/core"
	"multicollateral/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "manage collateral pools",
}

func printJSON(cmd *cobra.Command, v interface{}) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// applyPoolFlags copies the flags into pool, only the changed ones unless all is set
func applyPoolFlags(cmd *cobra.Command, pool *core.Pool, all bool) {
	flags := cmd.Flags()
	set := func(name string) bool {
		return all || flags.Changed(name)
	}

	dec := func(name string, target *decimal.Decimal) {
		if set(name) {
			v, _ := flags.GetString(name)
			*target = number.Decimal(v)
		}
	}

	if set("kind") {
		kind, _ := flags.GetString("kind")
		pool.Kind = core.CollateralKind(kind)
	}

	if set("collateral") {
		pool.CollateralCurrency, _ = flags.GetString("collateral")
	}

	if set("currencies") {
		pool.Currencies, _ = flags.GetStringSlice("currencies")
	}

	if set("decimals") {
		pool.TokenDecimals, _ = flags.GetInt32("decimals")
	}

	if set("delay") {
		pool.InteractionDelay, _ = flags.GetInt64("delay")
	}

	dec("ratio", &pool.MinCollateralRatio)
	dec("min-size", &pool.MinLoanSize)
	dec("issue-fee", &pool.IssueFeeRate)
	dec("penalty", &pool.LiquidationPenalty)
	dec("penalty-share", &pool.PenaltyFeeShare)
	dec("rate", &pool.InterestRate)
}

func addPoolFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("kind", string(core.KindNative), "native, token or short")
	flags.String("collateral", "", "collateral currency")
	flags.StringSlice("currencies", nil, "currencies the pool lends")
	flags.Int32("decimals", 18, "token decimals, token pools only")
	flags.String("ratio", "1.5", "minimum collateral ratio")
	flags.String("min-size", "0", "minimum loan size")
	flags.String("issue-fee", "0", "issuance fee rate")
	flags.String("penalty", "0.1", "liquidation penalty")
	flags.String("penalty-share", "0", "share of the penalty paid to fees")
	flags.String("rate", "0", "annual interest rate, ignored by short pools")
	flags.Int64("delay", 0, "interaction delay in seconds")
}

var poolAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "add a collateral pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := provideEngine()

		pool := &core.Pool{ID: args[0]}
		applyPoolFlags(cmd, pool, true)

		svc, err := e.pools.Add(ctx, pool)
		if err != nil {
			return err
		}

		if pool, err = svc.Pool(ctx); err != nil {
			return err
		}

		printJSON(cmd, pool)
		return nil
	},
}

var poolUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "update the parameters of a pool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := provideEngine()

		svc, err := e.pools.Get(ctx, args[0])
		if err != nil {
			return err
		}

		pool, err := svc.Pool(ctx)
		if err != nil {
			return err
		}

		applyPoolFlags(cmd, pool, false)
		if err := e.pools.Update(ctx, pool); err != nil {
			return err
		}

		printJSON(cmd, pool)
		return nil
	},
}

var poolRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "deregister a pool without open loans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := provideEngine()

		svc, err := e.pools.Get(ctx, args[0])
		if err != nil {
			return err
		}

		if active, err := e.manager.IsActive(ctx, args[0]); err != nil {
			return err
		} else if !active {
			return core.ErrPoolInactive
		}

		pool, err := svc.Pool(ctx)
		if err != nil {
			return err
		}

		// the manager needs the pool's reporter to count open loans
		if err := e.manager.AddPool(ctx, pool, svc); err != nil {
			return err
		}

		return e.manager.RemovePool(ctx, args[0])
	},
}

func sectionOf(args []string) string {
	if len(args) == 0 || strings.EqualFold(args[0], core.SectionGlobal) {
		return core.SectionGlobal
	}

	return core.PoolSection(args[0])
}

var poolSuspendCmd = &cobra.Command{
	Use:   "suspend [id]",
	Short: "suspend a pool, or everything without id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		return provideEngine().status.Suspend(cmd.Context(), sectionOf(args), reason)
	},
}

var poolResumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "resume a pool, or everything without id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return provideEngine().status.Resume(cmd.Context(), sectionOf(args))
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "list pools",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e := provideEngine()

		pools, err := e.stores.pools.All(ctx)
		if err != nil {
			return err
		}

		items := make([]map[string]interface{}, 0, len(pools))
		for _, pool := range pools {
			item := structs.Map(pool)
			if item["active"], err = e.manager.IsActive(ctx, pool.ID); err != nil {
				return err
			}

			if item["suspended"], err = e.status.IsSuspended(ctx, core.PoolSection(pool.ID)); err != nil {
				return err
			}

			items = append(items, item)
		}

		printJSON(cmd, items)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolAddCmd, poolUpdateCmd, poolRemoveCmd, poolSuspendCmd, poolResumeCmd, poolListCmd)

	addPoolFlags(poolAddCmd)
	addPoolFlags(poolUpdateCmd)
	poolSuspendCmd.Flags().String("reason", "suspended by admin", "why")
}
