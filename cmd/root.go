package cmd

import (
	"fmt"
	"os"

	"cutroom/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cutroom",
	Short: "Cutroom is a collaborative highlight-cutting video editor.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
