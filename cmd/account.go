package cmd

import (
	"multicollateral/pkg/id"

	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "api accounts",
}

var accountNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "generate an account id and api key for the accounts section of the config",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		account := foxuuid.New()
		if len(args) > 0 {
			account = id.UUIDFromString("account:" + args[0])
		}

		printJSON(cmd, map[string]string{
			"account": account,
			"api_key": foxuuid.Modify(id.GenUUIDString(), account),
		})
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountNewCmd)
}
