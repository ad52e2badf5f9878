package cmd

import (
	"cutroom/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Cutroom server",
	Long:  `Start the HTTP server: the editing API, the websocket sync endpoint and the media proxy.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
