package cmd

import (
	"statdash/internal"
	"statdash/internal/errors"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the run history schema in DATABASE_URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required")
		}
		db, err := initDatabase(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		internal.DefaultLogger.Info("[Migrate] done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
