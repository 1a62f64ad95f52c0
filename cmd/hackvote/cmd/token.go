package cmd

import (
	"fmt"
	"log"
	"time"

	"hackvote/internal/initializers"

	"github.com/spf13/cobra"
)

var (
	tokenUserID string
	tokenAdmin  bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for local testing",
	Run: func(cmd *cobra.Command, args []string) {
		token, expire, err := initializers.IssueDevToken(tokenUserID, tokenAdmin)
		if err != nil {
			log.Fatalf("Unable to sign token: %s", err)
		}
		fmt.Println(token)
		fmt.Println("expires:", expire.Format(time.RFC3339))
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUserID, "user", "u", "", "user id to put in the token")
	tokenCmd.Flags().BoolVar(&tokenAdmin, "admin", false, "grant the admin role")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
