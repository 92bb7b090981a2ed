package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/user/chatscribe/internal/assemble"
	"github.com/user/chatscribe/internal/config"
	"github.com/user/chatscribe/internal/export"
)

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("input", "", "export directory, ZIP file, or conversations.json (overrides config)")
	convertCmd.Flags().String("output", "", "output directory (overrides config)")
	convertCmd.Flags().Bool("no-assets", false, "strip asset references instead of copying attachments")
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an export archive to markdown documents",
	Args:  cobra.NoArgs,
	RunE:  runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		cfg.InputPath = input
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.OutputDirectory = output
	}
	if noAssets, _ := cmd.Flags().GetBool("no-assets"); noAssets {
		cfg.ExtractAssets = false
	}
	if cfg.InputPath == "" {
		return fmt.Errorf("no input configured (set input_path or pass --input)")
	}
	if cfg.OutputDirectory == "" {
		return fmt.Errorf("no output directory configured (set output_directory or pass --output)")
	}

	searchRoot, conversations, err := loadInput(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var written, messages, attachments int
	for _, conv := range conversations {
		res, err := assemble.WriteConversation(conv, cfg, cfg.OutputDirectory, searchRoot)
		if err != nil {
			return fmt.Errorf("convert conversation %q: %w", conv.Title, err)
		}
		written++
		messages += res.Messages
		attachments += res.Attachments
		slog.Debug("wrote conversation", "path", res.Path, "messages", res.Messages, "attachments", res.Attachments)
	}

	slog.Info("conversion complete",
		"conversations", written,
		"messages", messages,
		"attachments", attachments,
		"output", cfg.OutputDirectory,
		"organization_mode", cfg.OrganizationMode,
		"extract_assets", cfg.ExtractAssets,
	)
	return nil
}

// loadInput resolves the configured input into a set of conversation records
// and the directory to search for attachment files. ZIP archives are unpacked
// to a temp location first.
func loadInput(cfg *config.Config) (string, []*export.Conversation, error) {
	input := cfg.InputPath

	if export.IsZip(input) {
		dir, err := export.ExtractZip(input, "")
		if err != nil {
			return "", nil, err
		}
		slog.Info("extracted export archive", "zip", input, "dir", dir)
		conversations, err := export.LoadArchive(dir)
		return dir, conversations, err
	}

	if cfg.InputMode == "file" {
		conversations, err := export.LoadFile(input)
		return filepath.Dir(input), conversations, err
	}

	dir, err := export.FindExportDir(input)
	if err != nil {
		return "", nil, err
	}
	conversations, err := export.LoadArchive(dir)
	return dir, conversations, err
}
