package cmd

import (
	"context"

	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/hitl-purchase-agent/pkg/config"
	seedx "github.com/tanpawarit/hitl-purchase-agent/pkg/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert random demo data into the record store",
}

var seedProductsCmd = &cobra.Command{
	Use:   "products",
	Short: "Insert N random catalog products (PRD-0001...)",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")

		app, err := configx.New[AppConfig]("")
		if err != nil {
			return err
		}
		if err := runSeedProducts(cmd.Context(), *app, n); err != nil {
			return err
		}
		logger.Info().Int("n", n).Msg("inserted products")
		return nil
	},
}

var seedOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Insert N random executed purchase orders for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		userID, _ := cmd.Flags().GetString("user-id")

		app, err := configx.New[AppConfig]("")
		if err != nil {
			return err
		}
		if err := runSeedOrders(cmd.Context(), *app, userID, n); err != nil {
			return err
		}
		logger.Info().Int("n", n).Str("user_id", userID).Msg("inserted purchase orders")
		return nil
	},
}

func runSeedProducts(ctx context.Context, app AppConfig, n int) error {
	if err := requirePersistentStore(app); err != nil {
		return err
	}
	b, err := openBackend(ctx, app)
	if err != nil {
		return err
	}
	defer b.Close()

	return seedx.New(b.store, nil).Products(ctx, n)
}

func runSeedOrders(ctx context.Context, app AppConfig, userID string, n int) error {
	if err := requirePersistentStore(app); err != nil {
		return err
	}
	b, err := openBackend(ctx, app)
	if err != nil {
		return err
	}
	defer b.Close()

	return seedx.New(b.store, nil).Orders(ctx, userID, n)
}

func init() {
	seedProductsCmd.Flags().Int("n", 50, "number of products to insert")
	seedOrdersCmd.Flags().Int("n", 50, "number of purchase orders to insert")
	seedOrdersCmd.Flags().String("user-id", "", "owner user_id for the generated orders")
	_ = seedOrdersCmd.MarkFlagRequired("user-id")

	seedCmd.AddCommand(seedProductsCmd, seedOrdersCmd)
	rootCmd.AddCommand(seedCmd)
}
