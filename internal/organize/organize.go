// internal/organize/organize.go

// Package organize decides where documents and copied attachments land in the
// output tree. The rest of the pipeline treats these decisions as policy and
// never computes output paths itself.
package organize

import (
	"fmt"
	"path/filepath"
	"time"
)

// Modes for laying out conversation documents under the output root.
const (
	ModeFlat = "flat" // every document directly in the output root
	ModeDate = "date" // documents under YYYY/MM by conversation create time
)

// ConversationDir returns the directory a conversation document belongs in.
// createTime is the conversation's epoch timestamp; nil falls back to the
// Unix epoch so undated conversations still get a stable location.
func ConversationDir(outputRoot, mode string, createTime *float64) string {
	if mode != ModeDate {
		return outputRoot
	}
	var ts float64
	if createTime != nil {
		ts = *createTime
	}
	t := time.Unix(int64(ts), 0)
	return filepath.Join(outputRoot, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())))
}

// AssetDir returns the directory a copied attachment of the given category
// belongs in. Categories map to stable subdirectories of assets/ so documents
// can reference them relatively.
func AssetDir(outputRoot, category string) string {
	switch category {
	case "dalle":
		return filepath.Join(outputRoot, "assets", "dalle")
	case "audio":
		return filepath.Join(outputRoot, "assets", "audio")
	default:
		return filepath.Join(outputRoot, "assets", "images")
	}
}

// RelativeAssetPath expresses an asset path relative to the directory holding
// the document that references it, with forward slashes so the reference stays
// valid markdown on any platform. Falls back to the absolute path when no
// relative path exists (different volumes).
func RelativeAssetPath(documentPath, assetPath string) string {
	rel, err := filepath.Rel(filepath.Dir(documentPath), assetPath)
	if err != nil {
		return filepath.ToSlash(assetPath)
	}
	return filepath.ToSlash(rel)
}
