package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanpawarit/hitl-purchase-agent/agent/state/postgres"
	configx "github.com/tanpawarit/hitl-purchase-agent/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the products, purchase_orders and session_messages tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		pgCfg, err := configx.New[postgres.Config]("POSTGRES")
		if err != nil {
			return err
		}
		db, err := postgres.Open(cmd.Context(), *pgCfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info().Msg("database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
