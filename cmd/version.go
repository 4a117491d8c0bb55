package cmd

import (
	"github.com/spf13/cobra"

	"urzis-pass/internal/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version",
	RunE: func(cmd *cobra.Command, args []string) error {
		printf(cmd.OutOrStdout(), "urzis %s\n", utils.GetVersion())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
