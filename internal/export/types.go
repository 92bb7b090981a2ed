// internal/export/types.go
package export

import (
	"encoding/json"
	"math"
)

// Conversation is one chat thread from the export archive. The mapping is an
// unordered node graph keyed by node ID; this tool only extracts the messages
// and ignores the parent/child structure.
type Conversation struct {
	Title      string          `json:"title"`
	CreateTime *float64        `json:"create_time"`
	UpdateTime *float64        `json:"update_time"`
	Mapping    map[string]Node `json:"mapping"`
}

type Node struct {
	ID       string   `json:"id"`
	Message  *Message `json:"message"`
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
}

type Message struct {
	Author     Author          `json:"author"`
	Content    ContentPayload  `json:"content"`
	Recipient  string          `json:"recipient"`
	Metadata   MessageMetadata `json:"metadata"`
	CreateTime *float64        `json:"create_time"`
}

type Author struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type MessageMetadata struct {
	IsVisuallyHidden bool `json:"is_visually_hidden_from_conversation"`
}

// ContentPayload is the loosely-typed content union. The export format tags
// some shapes with content_type and distinguishes others only by which keys
// are present, so every field here is optional and the renderer dispatches on
// presence.
type ContentPayload struct {
	ContentType      string            `json:"content_type"`
	Parts            []json.RawMessage `json:"parts"`
	Thoughts         []Thought         `json:"thoughts"`
	Text             *string           `json:"text"`
	Result           *string           `json:"result"`
	Content          json.RawMessage   `json:"content"`
	UserProfile      string            `json:"user_profile"`
	UserInstructions string            `json:"user_instructions"`
}

type Thought struct {
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// UnmarshalJSON decodes every content field independently. Old records carry
// fields with unexpected types; a bad field decodes to its zero value rather
// than failing the message and, with it, the whole conversation record.
func (c *ContentPayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// Content that is not an object carries nothing to dispatch on.
		return nil
	}
	if raw, ok := fields["content_type"]; ok {
		var v string
		if json.Unmarshal(raw, &v) == nil {
			c.ContentType = v
		}
	}
	if raw, ok := fields["parts"]; ok {
		var v []json.RawMessage
		if json.Unmarshal(raw, &v) == nil {
			c.Parts = v
		}
	}
	if raw, ok := fields["thoughts"]; ok {
		var v []Thought
		if json.Unmarshal(raw, &v) == nil {
			c.Thoughts = v
		}
	}
	if raw, ok := fields["text"]; ok {
		var v *string
		if json.Unmarshal(raw, &v) == nil {
			c.Text = v
		}
	}
	if raw, ok := fields["result"]; ok {
		var v *string
		if json.Unmarshal(raw, &v) == nil {
			c.Result = v
		}
	}
	if raw, ok := fields["content"]; ok {
		c.Content = raw
	}
	if raw, ok := fields["user_profile"]; ok {
		var v string
		if json.Unmarshal(raw, &v) == nil {
			c.UserProfile = v
		}
	}
	if raw, ok := fields["user_instructions"]; ok {
		var v string
		if json.Unmarshal(raw, &v) == nil {
			c.UserInstructions = v
		}
	}
	return nil
}

// SortKey returns the message timestamp for ordering. Messages without a
// create_time sort first.
func (m *Message) SortKey() float64 {
	if m.CreateTime == nil {
		return math.Inf(-1)
	}
	return *m.CreateTime
}
