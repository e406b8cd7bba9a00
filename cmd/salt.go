package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yugabyte/chameleon/src/anon"
	"github.com/yugabyte/chameleon/src/utils"
)

var saltCmd = &cobra.Command{
	Use:   "salt",
	Short: "Manage anonymization salts",
}

var saltGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a new random salt, hex encoded, for use with --salt",
	Args:  cobra.NoArgs,

	Run: func(cmd *cobra.Command, args []string) {
		salt, err := anon.GenerateSalt(anon.SALT_SIZE)
		if err != nil {
			utils.ErrExit("generate salt: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%x\n", salt)
	},
}

func init() {
	rootCmd.AddCommand(saltCmd)
	saltCmd.AddCommand(saltGenerateCmd)
}
