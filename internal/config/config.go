// Package config loads and persists the converter configuration. Defaults are
// applied first, then the config file is overlaid, so a partial file is fine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	InputPath       string `json:"input_path"`
	OutputDirectory string `json:"output_directory"`
	InputMode       string `json:"input_mode"` // "directory" or "file"
	LogLevel        string `json:"log_level"`

	ExtractAssets       bool   `json:"extract_assets"`
	UseObsidianCallouts bool   `json:"use_obsidian_callouts"`
	UseFrontmatter      bool   `json:"use_frontmatter"`
	IncludeDate         bool   `json:"include_date"`
	SkipEmptyMessages   bool   `json:"skip_empty_messages"`
	ConvertHTMLResults  bool   `json:"convert_html_results"`
	DateFormat          string `json:"date_format"` // strftime pattern
	FileNameFormat      string `json:"file_name_format"`
	MessageSeparator    string `json:"message_separator"`
	UserName            string `json:"user_name"`
	AssistantName       string `json:"assistant_name"`
	OrganizationMode    string `json:"organization_mode"` // "flat" or "date"
}

// Defaults returns a config populated with the default values.
func Defaults() *Config {
	return &Config{
		InputMode:           "directory",
		LogLevel:            "info",
		ExtractAssets:       true,
		UseObsidianCallouts: true,
		UseFrontmatter:      true,
		IncludeDate:         true,
		SkipEmptyMessages:   true,
		DateFormat:          "%Y-%m-%d",
		FileNameFormat:      "{title}",
		MessageSeparator:    "\n\n",
		UserName:            "User",
		AssistantName:       "ChatGPT",
		OrganizationMode:    "flat",
	}
}

// Load reads the config file at path over the defaults. A missing file is
// created with the default values so users have something to edit.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated and templated fields once at load time so
// rendering never has to re-check them.
func (c *Config) Validate() error {
	switch c.InputMode {
	case "directory", "file":
	default:
		return fmt.Errorf("invalid input_mode %q (expected directory or file)", c.InputMode)
	}
	switch c.OrganizationMode {
	case "flat", "date":
	default:
		return fmt.Errorf("invalid organization_mode %q (expected flat or date)", c.OrganizationMode)
	}
	if !strings.Contains(c.FileNameFormat, "{title}") {
		return fmt.Errorf("file_name_format %q must contain the {title} placeholder", c.FileNameFormat)
	}
	return nil
}

// Save writes the config atomically via a temp file and rename.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ToMap converts the config to a generic map for flattened key access.
func ToMap(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListValues returns all config values keyed by their dot-separated names.
func ListValues(cfg *Config) (map[string]any, error) {
	m, err := ToMap(cfg)
	if err != nil {
		return nil, err
	}
	return Flatten(m), nil
}

// GetValue loads the config at path and returns the value for a key.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg)
	if err != nil {
		return nil, err
	}
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue loads the config at path, sets key to value (coercing bools and
// numbers from their string form), validates, and saves.
func SetValue(path, key, value string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	flat, err := ListValues(cfg)
	if err != nil {
		return err
	}
	if _, ok := flat[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	flat[key] = coerce(value)

	nested := Unflatten(flat)
	data, err := json.Marshal(nested)
	if err != nil {
		return fmt.Errorf("marshal config values: %w", err)
	}
	updated := &Config{}
	if err := json.Unmarshal(data, updated); err != nil {
		return fmt.Errorf("apply config value: %w", err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	return Save(path, updated)
}

// coerce interprets a string value as a bool or number when it parses as one.
func coerce(value string) any {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	var n json.Number
	if err := json.Unmarshal([]byte(value), &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return value
}
