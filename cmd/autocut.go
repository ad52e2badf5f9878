package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"cutroom/core/autocut"
	"cutroom/model"
	"cutroom/storage"

	"github.com/spf13/cobra"
)

var autocutName string

var autocutCmd = &cobra.Command{
	Use:   "autocut",
	Short: "Preview highlight detection",
	Long:  `Run the highlight detector against a media name and print the windows it would cut.`,
	Run: func(cmd *cobra.Command, args []string) {
		if autocutName == "" {
			fmt.Println("Provide a media name with --name")
			os.Exit(1)
		}

		kind, ok := storage.KindForFilename(autocutName)
		if !ok {
			log.Fatalf("Unsupported media type: %s", autocutName)
		}

		detector := autocut.StubDetector{}
		ranges, err := detector.Detect(context.Background(), model.Asset{
			ID:   "preview",
			Name: autocutName,
			Kind: kind,
		})
		if err != nil {
			log.Fatalf("Detection failed: %v", err)
		}

		fmt.Printf("Detected %d highlight windows in %s (%s track):\n", len(ranges), autocutName, kind)
		for i, r := range ranges {
			fmt.Printf("%d. %.1fs - %.1fs (%.1fs)\n", i+1, r.Start, r.End, r.Length())
		}
	},
}

func init() {
	rootCmd.AddCommand(autocutCmd)

	autocutCmd.Flags().StringVarP(&autocutName, "name", "n", "", "media file name to preview")
}
