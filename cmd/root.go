package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/hitl-purchase-agent/pkg/config"
	logx "github.com/tanpawarit/hitl-purchase-agent/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "hitl-agent",
	Short: "Purchase-order agent with human approval before every write",
	Long: `hitl-agent serves a chat endpoint backed by a language model that can
propose creating or deleting purchase orders. Proposed writes are returned for
human approval and only committed through the separate execute endpoint.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		configx.SetEnvFile(envFile)

		logCfg, err := configx.New[logx.Config]("LOG")
		if err != nil {
			return err
		}
		logger = logx.Init(*logCfg)
		return nil
	},
}

var logger = zerolog.Nop()

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "dotenv file to load (default ./.env when present)")
}
