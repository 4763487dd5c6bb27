package cmd

import (
	"github.com/gaze-network/drop-offerer/cmd/migrate"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate drop database schema",
		Long:  "Apply the drop module postgres migrations. Only needed when modules.drop.database is `postgres`.",
	}
	cmd.AddCommand(
		migrate.NewMigrateUpCommand(),
		migrate.NewMigrateDownCommand(),
	)
	return cmd
}
