// internal/export/archive.go
package export

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadArchive reads all conversation records from an export directory.
// Newer exports shard the data across conversations-*.json files; older ones
// ship a single conversations.json. Either way every file holds a JSON array
// of records or a single record, and all records are concatenated in
// filename-sorted shard order.
//
// Entries that are not conversation records are logged and skipped. A missing
// archive or an unparseable file is fatal.
func LoadArchive(dir string) ([]*Conversation, error) {
	legacy := filepath.Join(dir, "conversations.json")
	if _, err := os.Stat(legacy); err == nil {
		return LoadFile(legacy)
	}

	shards, err := filepath.Glob(filepath.Join(dir, "conversations-*.json"))
	if err != nil {
		return nil, fmt.Errorf("glob conversation shards: %w", err)
	}
	if len(shards) == 0 {
		return nil, fmt.Errorf("no conversation files found in %s (expected conversations.json or conversations-*.json)", dir)
	}
	sort.Strings(shards)

	var all []*Conversation
	for _, shard := range shards {
		convs, err := LoadFile(shard)
		if err != nil {
			return nil, err
		}
		all = append(all, convs...)
	}
	return all, nil
}

// LoadFile parses one conversation file, which may hold either a JSON array
// of records or a single record.
func LoadFile(path string) ([]*Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		var entries []json.RawMessage
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		convs := make([]*Conversation, 0, len(entries))
		for i, entry := range entries {
			var conv Conversation
			if err := json.Unmarshal(entry, &conv); err != nil {
				slog.Warn("skipping archive entry that is not a conversation record",
					"file", filepath.Base(path), "index", i, "error", err)
				continue
			}
			convs = append(convs, &conv)
		}
		return convs, nil
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []*Conversation{&conv}, nil
}

// FindExportDir locates the directory holding the conversation JSON files
// under root, searching recursively. Sharded files take priority over the
// legacy single file, matching the layout of newer exports.
func FindExportDir(root string) (string, error) {
	var shards, legacy []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case strings.HasPrefix(name, "conversations-") && strings.HasSuffix(name, ".json"):
			shards = append(shards, path)
		case name == "conversations.json":
			legacy = append(legacy, path)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Strings(shards)
	sort.Strings(legacy)
	if len(shards) > 0 {
		return filepath.Dir(shards[0]), nil
	}
	if len(legacy) > 0 {
		return filepath.Dir(legacy[0]), nil
	}
	return "", fmt.Errorf("no conversation files found under %s (expected conversations.json or conversations-*.json)", root)
}

// Messages flattens the conversation's node mapping to its visible messages in
// chronological order. Nodes without a message and messages marked hidden are
// dropped; messages without a timestamp sort first.
func (c *Conversation) Messages() []*Message {
	var msgs []*Message
	for _, node := range c.Mapping {
		if node.Message == nil {
			continue
		}
		if node.Message.Metadata.IsVisuallyHidden {
			continue
		}
		msgs = append(msgs, node.Message)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].SortKey() < msgs[j].SortKey()
	})
	return msgs
}
