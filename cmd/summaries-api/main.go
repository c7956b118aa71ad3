// Command summaries-api serves the course summaries sharing backend.
package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/syntheses-api/api/swagger"
)

// @title Synthèses API
// @version 1.0.0
// @description Shared course summaries: uploads, catalogue, votes, chat and admin moderation.
// @BasePath /
// @schemes http https

var rootCmd = &cobra.Command{
	Use:          "summaries-api",
	Short:        "Course summaries sharing backend",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, hashPasswordCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
