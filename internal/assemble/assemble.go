// internal/assemble/assemble.go

// Package assemble turns one conversation into one markdown document: it
// orders and filters the messages, renders each through the content renderer,
// and writes the document with front-matter into the organized output tree.
package assemble

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/ncruces/go-strftime"

	"github.com/user/chatscribe/internal/config"
	"github.com/user/chatscribe/internal/export"
	"github.com/user/chatscribe/internal/organize"
	"github.com/user/chatscribe/internal/render"
)

const untitled = "Untitled Conversation"

// timestampLayout is the fixed format for front-matter created/updated lines.
const timestampLayout = "%Y-%m-%d %H:%M:%S"

// Result reports what writing one conversation produced.
type Result struct {
	Path        string
	Messages    int
	Attachments int
}

// WriteConversation renders the conversation to a document under outputRoot,
// materializing referenced attachments from searchRoot along the way.
func WriteConversation(conv *export.Conversation, cfg *config.Config, outputRoot, searchRoot string) (Result, error) {
	messages := conv.Messages()

	title := NormalizeTitle(conv.Title)
	safeTitle := SanitizeTitle(title, conv.CreateTime)

	dir := organize.ConversationDir(outputRoot, cfg.OrganizationMode, conv.CreateTime)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create conversation dir: %w", err)
	}
	fileName := strings.ReplaceAll(cfg.FileNameFormat, "{title}", safeTitle) + ".md"
	docPath := filepath.Join(dir, fileName)

	renderer := &render.Renderer{
		SearchRoot:    searchRoot,
		OutputRoot:    outputRoot,
		DocumentPath:  docPath,
		ExtractAssets: cfg.ExtractAssets,
		UseCallouts:   cfg.UseObsidianCallouts,
		ConvertHTML:   cfg.ConvertHTMLResults,
	}

	var doc strings.Builder
	if cfg.UseFrontmatter {
		doc.WriteString(Frontmatter(conv.CreateTime, conv.UpdateTime))
	}
	doc.WriteString("# " + title + "\n\n")

	if cfg.IncludeDate && len(messages) > 0 && messages[0].CreateTime != nil {
		date := strftime.Format(cfg.DateFormat, epochTime(*messages[0].CreateTime))
		doc.WriteString("<sub>" + date + "</sub>\n\n")
	}
	doc.WriteString("---\n\n")

	result := Result{Path: docPath}
	for _, msg := range messages {
		if msg.Author.Role == "system" {
			continue
		}

		res, err := renderer.Render(msg)
		if err != nil {
			return Result{}, fmt.Errorf("render message: %w", err)
		}
		if cfg.SkipEmptyMessages && strings.TrimSpace(res.Text) == "" {
			continue
		}

		author := AuthorName(msg, cfg)
		doc.WriteString("**" + author + "**:\n\n" + res.Text + cfg.MessageSeparator)
		result.Messages++
		result.Attachments += len(res.Attachments)
	}

	if err := os.WriteFile(docPath, []byte(doc.String()), 0o644); err != nil {
		return Result{}, fmt.Errorf("write document: %w", err)
	}
	return result, nil
}

// Frontmatter builds the YAML front-matter block, including the timestamps
// when the conversation carries them.
func Frontmatter(createTime, updateTime *float64) string {
	lines := []string{"---"}
	if createTime != nil {
		lines = append(lines, "created: "+strftime.Format(timestampLayout, epochTime(*createTime)))
	}
	if updateTime != nil {
		lines = append(lines, "updated: "+strftime.Format(timestampLayout, epochTime(*updateTime)))
	}
	lines = append(lines,
		"tags:",
		"  - chatgpt",
		"  - conversation",
		"---",
		"",
	)
	return strings.Join(lines, "\n") + "\n"
}

// NormalizeTitle cleans a conversation title for display: underscores become
// spaces, runs of whitespace collapse, and a blank title gets a placeholder.
func NormalizeTitle(title string) string {
	normalized := strings.ReplaceAll(title, "_", " ")
	normalized = strings.Join(strings.Fields(normalized), " ")
	if normalized == "" {
		return untitled
	}
	return normalized
}

// SanitizeTitle derives a filesystem-safe name from a normalized title,
// keeping only letters, digits, spaces and hyphens. An empty result falls
// back to a synthetic name based on the conversation timestamp.
func SanitizeTitle(normalized string, createTime *float64) string {
	var b strings.Builder
	for _, r := range normalized {
		if isAlnum(r) || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimRight(b.String(), " \t\r\n")
	if safe == "" {
		var ts float64
		if createTime != nil {
			ts = *createTime
		}
		safe = fmt.Sprintf("conversation %d", int64(ts))
	}
	return safe
}

// AuthorName attributes a message. Tool messages carry the tool's own name,
// and several content shapes annotate the base name so readers can tell
// reasoning, tool traffic and injected context apart from the dialogue.
func AuthorName(msg *export.Message, cfg *config.Config) string {
	if msg.Author.Role == "tool" {
		name := msg.Author.Name
		if name == "" {
			name = "tool"
		}
		return "Tool (" + name + ")"
	}

	base := cfg.AssistantName
	if msg.Author.Role == "user" {
		base = cfg.UserName
	}

	c := &msg.Content
	switch {
	case c.ContentType == "code" && msg.Recipient == "web":
		return base + " (tool call)"
	case c.ContentType == "code" && msg.Recipient == "web.run":
		return base + " (tool execution)"
	case len(c.Thoughts) > 0:
		return base + " (thinking)"
	case c.ContentType == "reasoning_recap":
		return base + " (reasoning summary)"
	case c.ContentType == "user_editable_context":
		return "System (context)"
	}
	return base
}

func epochTime(ts float64) time.Time {
	return time.Unix(int64(ts), 0)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
