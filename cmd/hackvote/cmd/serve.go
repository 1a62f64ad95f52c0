package cmd

import (
	"hackvote/internal/initializers"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the metrics server",
	Run: func(cmd *cobra.Command, args []string) {
		initializers.RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
