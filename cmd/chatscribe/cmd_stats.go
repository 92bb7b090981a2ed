package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/chatscribe/internal/stats"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("input", "", "export directory or conversations.json (overrides config)")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize an export archive without converting it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		if input, _ := cmd.Flags().GetString("input"); input != "" {
			cfg.InputPath = input
		}
		if cfg.InputPath == "" {
			return fmt.Errorf("no input configured (set input_path or pass --input)")
		}

		_, conversations, err := loadInput(cfg)
		if err != nil {
			return err
		}

		counter, err := stats.NewCounter()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TITLE\tMESSAGES\tWORDS\tTOKENS")

		var totals stats.ConversationStats
		for _, conv := range conversations {
			s := counter.Conversation(conv)
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", s.Title, s.Messages, s.Words, s.Tokens)
			totals.Messages += s.Messages
			totals.Words += s.Words
			totals.Tokens += s.Tokens
		}
		fmt.Fprintf(w, "TOTAL (%d conversations)\t%d\t%d\t%d\n",
			len(conversations), totals.Messages, totals.Words, totals.Tokens)
		return w.Flush()
	},
}
