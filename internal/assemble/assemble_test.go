package assemble

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/chatscribe/internal/config"
	"github.com/user/chatscribe/internal/export"
)

func ts(v float64) *float64 { return &v }

func textMessage(role, text string, createTime float64) *export.Message {
	raw, _ := json.Marshal(text)
	return &export.Message{
		Author:     export.Author{Role: role},
		Content:    export.ContentPayload{Parts: []json.RawMessage{raw}},
		CreateTime: ts(createTime),
	}
}

func conversationOf(title string, msgs ...*export.Message) *export.Conversation {
	mapping := make(map[string]export.Node, len(msgs))
	for i, m := range msgs {
		mapping[string(rune('a'+i))] = export.Node{Message: m}
	}
	return &export.Conversation{Title: title, CreateTime: ts(1700000000), Mapping: mapping}
}

func TestWriteConversation_ImageScenario(t *testing.T) {
	searchRoot := t.TempDir()
	outputRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(searchRoot, "file-AAA-cat.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	imgMsg := &export.Message{
		Author: export.Author{Role: "assistant"},
		Content: export.ContentPayload{Parts: []json.RawMessage{
			json.RawMessage(`{"content_type":"image_asset_pointer","asset_pointer":"file-service://file-AAA"}`),
		}},
		CreateTime: ts(2),
	}
	conv := conversationOf("Cat Pics", textMessage("user", "Hello", 1), imgMsg)

	cfg := config.Defaults()
	res, err := WriteConversation(conv, cfg, outputRoot, searchRoot)
	if err != nil {
		t.Fatalf("WriteConversation failed: %v", err)
	}
	if res.Messages != 2 || res.Attachments != 1 {
		t.Errorf("unexpected result counts: %+v", res)
	}

	data, err := os.ReadFile(filepath.Join(outputRoot, "Cat Pics.md"))
	if err != nil {
		t.Fatalf("document missing: %v", err)
	}
	doc := string(data)

	if !strings.Contains(doc, "**User**:\n\nHello") {
		t.Errorf("user message missing or misformatted:\n%s", doc)
	}
	if !strings.Contains(doc, "**ChatGPT**:") {
		t.Errorf("assistant author line missing:\n%s", doc)
	}
	if !strings.Contains(doc, "![Image](assets/images/file-AAA-cat.png)") {
		t.Errorf("image embed missing:\n%s", doc)
	}
	if _, err := os.Stat(filepath.Join(outputRoot, "assets", "images", "file-AAA-cat.png")); err != nil {
		t.Errorf("asset not copied: %v", err)
	}
}

func TestWriteConversation_NoAssetExtraction(t *testing.T) {
	searchRoot := t.TempDir()
	outputRoot := t.TempDir()
	if err := os.WriteFile(filepath.Join(searchRoot, "file-AAA-cat.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	imgMsg := &export.Message{
		Author: export.Author{Role: "assistant"},
		Content: export.ContentPayload{Parts: []json.RawMessage{
			json.RawMessage(`"here you go ![Image](file-service://file-AAA)"`),
			json.RawMessage(`{"content_type":"image_asset_pointer","asset_pointer":"file-service://file-AAA"}`),
		}},
		CreateTime: ts(2),
	}
	conv := conversationOf("Cat Pics", textMessage("user", "Hello", 1), imgMsg)

	cfg := config.Defaults()
	cfg.ExtractAssets = false
	if _, err := WriteConversation(conv, cfg, outputRoot, searchRoot); err != nil {
		t.Fatalf("WriteConversation failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outputRoot, "Cat Pics.md"))
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)

	if strings.Contains(doc, "![Image") || strings.Contains(doc, "file-service://") {
		t.Errorf("asset markup left dangling:\n%s", doc)
	}
	if _, err := os.Stat(filepath.Join(outputRoot, "assets")); !os.IsNotExist(err) {
		t.Error("no asset copy should occur when extraction is disabled")
	}
}

func TestWriteConversation_SkipsSystemAndHidden(t *testing.T) {
	outputRoot := t.TempDir()

	hidden := textMessage("user", "secret", 1)
	hidden.Metadata.IsVisuallyHidden = true
	conv := conversationOf("Filter Test",
		hidden,
		textMessage("system", "system prompt", 2),
		textMessage("user", "visible", 3),
	)

	cfg := config.Defaults()
	res, err := WriteConversation(conv, cfg, outputRoot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Messages != 1 {
		t.Errorf("expected 1 written message, got %d", res.Messages)
	}

	data, _ := os.ReadFile(filepath.Join(outputRoot, "Filter Test.md"))
	doc := string(data)
	if strings.Contains(doc, "secret") || strings.Contains(doc, "system prompt") {
		t.Errorf("hidden or system content leaked:\n%s", doc)
	}
}

func TestWriteConversation_SortsOutOfOrderMessages(t *testing.T) {
	outputRoot := t.TempDir()
	conv := conversationOf("Ordering",
		textMessage("assistant", "second", 20),
		textMessage("user", "first", 10),
	)

	cfg := config.Defaults()
	if _, err := WriteConversation(conv, cfg, outputRoot, t.TempDir()); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(outputRoot, "Ordering.md"))
	doc := string(data)
	if strings.Index(doc, "first") > strings.Index(doc, "second") {
		t.Errorf("messages not in create_time order:\n%s", doc)
	}
}

func TestWriteConversation_SkipEmptyMessages(t *testing.T) {
	outputRoot := t.TempDir()
	conv := conversationOf("Empties",
		textMessage("user", "", 1),
		textMessage("assistant", "reply", 2),
	)

	cfg := config.Defaults()
	res, err := WriteConversation(conv, cfg, outputRoot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Messages != 1 {
		t.Errorf("empty message should be skipped, wrote %d", res.Messages)
	}

	cfg.SkipEmptyMessages = false
	res, err = WriteConversation(conv, cfg, outputRoot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Messages != 2 {
		t.Errorf("with skipping disabled both messages should be written, wrote %d", res.Messages)
	}
}

func TestWriteConversation_FrontmatterAndDate(t *testing.T) {
	outputRoot := t.TempDir()
	conv := conversationOf("Meta", textMessage("user", "hi", 1700000100))
	conv.UpdateTime = ts(1700000500)

	cfg := config.Defaults()
	if _, err := WriteConversation(conv, cfg, outputRoot, t.TempDir()); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(outputRoot, "Meta.md"))
	doc := string(data)

	created := time.Unix(1700000000, 0).Format("2006-01-02 15:04:05")
	updated := time.Unix(1700000500, 0).Format("2006-01-02 15:04:05")
	for _, want := range []string{
		"---\ncreated: " + created,
		"updated: " + updated,
		"tags:\n  - chatgpt\n  - conversation",
		"# Meta\n\n",
		"<sub>" + time.Unix(1700000100, 0).Format("2006-01-02") + "</sub>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}

	cfg.UseFrontmatter = false
	cfg.IncludeDate = false
	if _, err := WriteConversation(conv, cfg, outputRoot, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(filepath.Join(outputRoot, "Meta.md"))
	if strings.Contains(string(data), "created:") || strings.Contains(string(data), "<sub>") {
		t.Errorf("front-matter or date written despite being disabled:\n%s", data)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My_Chat_Log", "My Chat Log"},
		{"  spaced   out  ", "spaced out"},
		{"", "Untitled Conversation"},
		{"___", "Untitled Conversation"},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	if got := SanitizeTitle("What? A plan: v2.0!", nil); got != "What A plan v20" {
		t.Errorf("unexpected sanitized title: %q", got)
	}
	if got := SanitizeTitle("résumé notes", nil); got != "résumé notes" {
		t.Errorf("unicode letters should survive: %q", got)
	}
	if got := SanitizeTitle("???", ts(1700000000)); got != "conversation 1700000000" {
		t.Errorf("expected timestamp fallback, got %q", got)
	}
	if got := SanitizeTitle("!!!", nil); got != "conversation 0" {
		t.Errorf("expected zero-timestamp fallback, got %q", got)
	}
}

func TestAuthorName(t *testing.T) {
	cfg := config.Defaults()
	codeContent := export.ContentPayload{ContentType: "code"}

	tests := []struct {
		name string
		msg  *export.Message
		want string
	}{
		{
			"user",
			&export.Message{Author: export.Author{Role: "user"}},
			"User",
		},
		{
			"assistant",
			&export.Message{Author: export.Author{Role: "assistant"}},
			"ChatGPT",
		},
		{
			"named tool",
			&export.Message{Author: export.Author{Role: "tool", Name: "python"}},
			"Tool (python)",
		},
		{
			"unnamed tool",
			&export.Message{Author: export.Author{Role: "tool"}},
			"Tool (tool)",
		},
		{
			"web tool call",
			&export.Message{Author: export.Author{Role: "assistant"}, Content: codeContent, Recipient: "web"},
			"ChatGPT (tool call)",
		},
		{
			"web tool execution",
			&export.Message{Author: export.Author{Role: "assistant"}, Content: codeContent, Recipient: "web.run"},
			"ChatGPT (tool execution)",
		},
		{
			"thinking",
			&export.Message{Author: export.Author{Role: "assistant"}, Content: export.ContentPayload{Thoughts: []export.Thought{{Content: "hm"}}}},
			"ChatGPT (thinking)",
		},
		{
			"reasoning summary",
			&export.Message{Author: export.Author{Role: "assistant"}, Content: export.ContentPayload{ContentType: "reasoning_recap"}},
			"ChatGPT (reasoning summary)",
		},
		{
			"user context",
			&export.Message{Author: export.Author{Role: "user"}, Content: export.ContentPayload{ContentType: "user_editable_context"}},
			"System (context)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorName(tt.msg, cfg); got != tt.want {
				t.Errorf("AuthorName = %q, want %q", got, tt.want)
			}
		})
	}
}
