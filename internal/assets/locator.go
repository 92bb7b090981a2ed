// internal/assets/locator.go

// Package assets locates attachment files referenced by asset pointers in an
// export archive and copies them into the organized output tree.
package assets

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Category classifies a located attachment by where the export stores it.
type Category string

const (
	CategoryImage Category = "image"
	CategoryDalle Category = "dalle"
	CategoryAudio Category = "audio"
)

var (
	fileServiceRe = regexp.MustCompile(`file-service://(file-[\w-]+)`)
	sedimentRe    = regexp.MustCompile(`sediment://(file_\w+)`)
)

// ExtractFileID pulls the normalized attachment identifier out of an asset
// pointer. Two schemes are recognized: file-service:// (image attachments,
// IDs like file-ABC123) and sediment:// (audio attachments, IDs like
// file_0000abcd). Anything else yields an empty ID.
func ExtractFileID(assetPointer string) string {
	if assetPointer == "" {
		return ""
	}
	if m := fileServiceRe.FindStringSubmatch(assetPointer); m != nil {
		return m[1]
	}
	if m := sedimentRe.FindStringSubmatch(assetPointer); m != nil {
		return m[1]
	}
	return ""
}

// Locate finds the physical file for a file ID under the search root. Export
// archives have stored attachments in several layouts over time, so a fixed
// sequence of locations is probed:
//
//  1. <root>/<id>-*                 images in the root
//  2. <root>/dalle-generations/<id>-*  generated images
//  3. <root>/user-*/<id>*           user-uploaded files
//  4. <root>/**/audio/<id>-*        voice recordings under per-conversation dirs
//
// The first location with a match wins; ties resolve to the lexically first
// match. A miss in every location returns ok=false, which callers treat as a
// normal outcome.
func Locate(fileID, searchRoot string) (path string, category Category, ok bool) {
	if fileID == "" {
		return "", "", false
	}

	patterns := []string{
		filepath.Join(searchRoot, fileID+"-*"),
		filepath.Join(searchRoot, "dalle-generations", fileID+"-*"),
		filepath.Join(searchRoot, "user-*", fileID+"*"),
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0], categoryFor(matches[0]), true
	}

	if match := findInAudioDirs(fileID, searchRoot); match != "" {
		return match, categoryFor(match), true
	}
	return "", "", false
}

// findInAudioDirs searches every audio/ directory below the root, at any
// depth, for a file prefixed with the ID.
func findInAudioDirs(fileID, searchRoot string) string {
	var matches []string
	_ = filepath.WalkDir(searchRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep probing the rest
		}
		if d.IsDir() || filepath.Base(filepath.Dir(path)) != "audio" {
			return nil
		}
		if strings.HasPrefix(d.Name(), fileID+"-") {
			matches = append(matches, path)
		}
		return nil
	})
	if len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[0]
}

func categoryFor(path string) Category {
	sep := string(filepath.Separator)
	switch {
	case strings.Contains(path, sep+"dalle-generations"+sep):
		return CategoryDalle
	case strings.Contains(path, sep+"audio"+sep):
		return CategoryAudio
	default:
		return CategoryImage
	}
}
