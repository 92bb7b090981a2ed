package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/chatscribe/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("Chatscribe Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.InputPath = prompt(scanner, "Export directory or ZIP path", cfg.InputPath)
		cfg.OutputDirectory = prompt(scanner, "Output directory", cfg.OutputDirectory)
		cfg.UserName = prompt(scanner, "Name for your messages", cfg.UserName)
		cfg.AssistantName = prompt(scanner, "Name for assistant messages", cfg.AssistantName)
		cfg.OrganizationMode = prompt(scanner, "Organization mode (flat/date)", cfg.OrganizationMode)
		cfg.ExtractAssets = promptBool(scanner, "Copy images and audio into the output", cfg.ExtractAssets)
		cfg.UseObsidianCallouts = promptBool(scanner, "Use Obsidian callout blocks", cfg.UseObsidianCallouts)
		cfg.UseFrontmatter = promptBool(scanner, "Write YAML front-matter", cfg.UseFrontmatter)

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

func promptBool(scanner *bufio.Scanner, label string, defaultVal bool) bool {
	def := "y"
	if !defaultVal {
		def = "n"
	}
	switch strings.ToLower(prompt(scanner, label+" (y/n)", def)) {
	case "y", "yes", "true":
		return true
	default:
		return false
	}
}
