package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/chatscribe/internal/export"
)

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().String("dest", "", "extraction directory (default: a unique temp directory)")
}

var extractCmd = &cobra.Command{
	Use:   "extract <zip>",
	Short: "Extract an export ZIP and locate its conversation files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !export.IsZip(args[0]) {
			return fmt.Errorf("not a ZIP archive: %s", args[0])
		}
		dest, _ := cmd.Flags().GetString("dest")

		dir, err := export.ExtractZip(args[0], dest)
		if err != nil {
			return fmt.Errorf("extract %s: %w", args[0], err)
		}

		fmt.Fprintf(os.Stdout, "Extracted. Use this path as input: %s\n", dir)
		return nil
	},
}
