package cmd

import (
	"fmt"

	"statdash/internal/config"

	"github.com/spf13/cobra"
)

var configOut string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or write configuration",
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the effective configuration to a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(cfg, configOut); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configOut)
		return nil
	},
}

func init() {
	configWriteCmd.Flags().StringVarP(&configOut, "out", "o", "statdash.yaml", "destination file")
	configCmd.AddCommand(configWriteCmd)
	rootCmd.AddCommand(configCmd)
}
