// Package render converts one message's content payload into markdown text
// plus the list of attachments it references. The export's content union has
// grown shapes over the years and is only partially documented, so every
// branch substitutes defaults for missing fields and unknown shapes degrade
// to best-effort text instead of failing the conversation.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/user/chatscribe/internal/export"
)

// Renderer carries the per-conversation context needed to render messages:
// where to look for attachment files, where copies go, and which document the
// relative references are computed against.
type Renderer struct {
	SearchRoot   string
	OutputRoot   string
	DocumentPath string

	// ExtractAssets embeds located attachments; when false all asset markup
	// is stripped from the output instead.
	ExtractAssets bool
	// UseCallouts renders reasoning and context blocks as Obsidian callouts.
	UseCallouts bool
	// ConvertHTML converts HTML fragments in tool results to markdown.
	ConvertHTML bool
}

// Result is the rendered form of one message.
type Result struct {
	Text        string
	Attachments []string
}

// Render dispatches on the shape of the message content. The only errors it
// returns are real I/O failures while copying attachments; malformed content
// never errors.
func (r *Renderer) Render(msg *export.Message) (Result, error) {
	c := &msg.Content

	switch {
	case c.Parts != nil:
		text, att, err := r.renderParts(c.Parts)
		return Result{Text: text, Attachments: att}, err

	case c.ContentType == "reasoning_recap":
		recap := rawString(c.Content)
		if recap == "" {
			recap = "Reasoning completed"
		}
		if r.UseCallouts {
			return Result{Text: "> [!info] Reasoning Summary\n> " + recap}, nil
		}
		return Result{Text: "*" + recap + "*"}, nil

	case len(c.Thoughts) > 0:
		return Result{Text: r.renderThoughts(c.Thoughts)}, nil

	case c.ContentType == "user_editable_context":
		text := strings.TrimSpace("*User Context*:\n" + c.UserProfile + "\n" + c.UserInstructions)
		if r.UseCallouts {
			text = "> [!abstract] User Context\n> " + strings.ReplaceAll(text, "\n", "\n> ")
		}
		return Result{Text: text}, nil

	case c.ContentType == "code":
		code := ""
		if c.Text != nil {
			code = *c.Text
		} else {
			code = rawString(c.Content)
		}
		return Result{Text: "```\n" + code + "\n```"}, nil

	case c.Text != nil:
		return Result{Text: r.stripUnlessExtracting(*c.Text)}, nil

	case c.Result != nil:
		text := *c.Result
		if r.ConvertHTML {
			text = r.htmlToMarkdown(text)
		}
		return Result{Text: r.stripUnlessExtracting(text)}, nil

	default:
		// Unknown shape: salvage a content field if one exists.
		return Result{Text: r.stripUnlessExtracting(stringify(c.Content))}, nil
	}
}

func (r *Renderer) renderThoughts(thoughts []export.Thought) string {
	lines := make([]string, 0, len(thoughts))
	for _, t := range thoughts {
		summary := t.Summary
		if summary == "" {
			summary = "Thought"
		}
		lines = append(lines, "**"+summary+"**: "+t.Content)
	}
	text := strings.Join(lines, "\n")
	if r.UseCallouts && text != "" {
		text = "> [!note] Internal Reasoning\n> " + strings.ReplaceAll(text, "\n", "\n> ")
	}
	return text
}

func (r *Renderer) stripUnlessExtracting(text string) string {
	if r.ExtractAssets {
		return text
	}
	return StripAssetReferences(text)
}

// htmlToMarkdown converts an HTML fragment to markdown, returning the input
// untouched when conversion fails or the text has no markup to convert.
func (r *Renderer) htmlToMarkdown(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return text
	}
	return md
}

// rawString decodes a raw JSON value that is expected to be a string.
// Non-string values yield "".
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// stringify renders a raw JSON value as display text: strings decode to their
// value, anything else is shown verbatim.
func stringify(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}

// formatDuration renders an audio duration annotation like "3.5s".
func formatDuration(seconds float64) string {
	return fmt.Sprintf("%.1fs", seconds)
}
