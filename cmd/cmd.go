package cmd

import (
	"context"
	"log/slog"

	"github.com/gaze-network/drop-offerer/internal/config"
	"github.com/gaze-network/drop-offerer/pkg/logger"
	"github.com/gaze-network/drop-offerer/pkg/logger/slogx"
	"github.com/spf13/cobra"
)

var cmd = &cobra.Command{
	Use:  "drop-offerer",
	Long: `Mint authorization and payment distribution service for token drops`,
}

func Execute(ctx context.Context) {
	var configFile string

	// Add global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")
	flags.String("database", "", "storage backend, E.g. `memory` or `postgres`")

	// Bind flags to configuration
	config.BindPFlag("modules.drop.database", flags.Lookup("database"))

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		// Initialize configuration
		config := config.Parse(configFile)

		// Initialize logger
		if err := logger.Init(config.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", config.Logger))
		}
	})

	// Register sub-commands
	cmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
		NewGenerateKeypairCommand(),
		NewAllowListCommand(),
		NewSignMintCommand(),
	)

	// Execute command
	if err := cmd.ExecuteContext(ctx); err != nil {
		// Cobra will print the error message by default
		logger.DebugContext(ctx, "Error executing command", slogx.Error(err))
	}
}
