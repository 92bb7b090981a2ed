// internal/stats/stats.go

// Package stats summarizes an export archive: message, word and token counts
// per conversation. Token counts use the cl100k_base encoding so they line up
// with what chat models actually consume.
package stats

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/chatscribe/internal/assemble"
	"github.com/user/chatscribe/internal/export"
	"github.com/user/chatscribe/internal/render"
)

type ConversationStats struct {
	Title    string
	Messages int
	Words    int
	Tokens   int
}

// Counter tokenizes rendered conversation text.
type Counter struct {
	enc *tiktoken.Tiktoken
}

func NewCounter() (*Counter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("get tokenizer: %w", err)
	}
	return &Counter{enc: enc}, nil
}

// Conversation renders every visible non-system message with asset handling
// disabled (no files are touched) and tallies the text.
func (c *Counter) Conversation(conv *export.Conversation) ConversationStats {
	// Stripping mode keeps the tallies about the dialogue itself rather
	// than embed markup, and guarantees rendering does no I/O.
	renderer := &render.Renderer{ExtractAssets: false}

	s := ConversationStats{Title: assemble.NormalizeTitle(conv.Title)}
	for _, msg := range conv.Messages() {
		if msg.Author.Role == "system" {
			continue
		}
		res, err := renderer.Render(msg)
		if err != nil || strings.TrimSpace(res.Text) == "" {
			continue
		}
		s.Messages++
		s.Words += len(strings.Fields(res.Text))
		s.Tokens += len(c.enc.Encode(res.Text, nil, nil))
	}
	return s
}
