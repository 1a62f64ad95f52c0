package cmd

import (
	"hackvote/internal/initializers"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Run: func(cmd *cobra.Command, args []string) {
		initializers.RunMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
