package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/chatscribe/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "chatscribe",
	Short: "Convert ChatGPT export archives to markdown",
	Long: `Chatscribe converts a ChatGPT data-export archive into a directory of
markdown documents, one per conversation, with referenced images and voice
recordings copied alongside and embedded via relative links.

Point it at an extracted export directory or the export ZIP itself:

  chatscribe convert --input ~/Downloads/chatgpt-export --output ~/notes/chatgpt`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultPath := filepath.Join(os.Getenv("HOME"), ".chatscribe", "config.json")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "config file path")
}

// loadConfig loads the config file or exits; commands that reach this point
// cannot do anything useful without one.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
