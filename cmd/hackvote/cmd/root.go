package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hackvote",
	Short: "Hackathon lifecycle and voting service",
	Long: `hackvote runs the hackathon core of the community platform: event
phases, team registration, awards, the vote ledger and rankings.

Configuration comes from the environment (local.env outside PROD).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
