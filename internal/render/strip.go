package render

import (
	"regexp"
	"strings"
)

var (
	imageEmbedRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	audioTagRe   = regexp.MustCompile(`(?is)<audio[^>]*>.*?</audio>`)
	videoTagRe   = regexp.MustCompile(`(?is)<video[^>]*>.*?</video>`)

	// Markdown links whose target is an exported asset: a media file
	// extension or one of the pointer schemes the export uses.
	assetLinkRe = regexp.MustCompile(`(?i)\[[^\]]*\]\(` +
		`(?:[^)]*\.(?:png|jpg|jpeg|gif|webp|bmp|svg|wav|mp3|m4a|ogg|mp4|webm)` +
		`|file-service://[^)]+` +
		`|sediment://[^)]+` +
		`|sandbox:/mnt/data/[^)]+)` +
		`\)`)

	blankLinesRe = regexp.MustCompile(`\n{3,}`)
)

// StripAssetReferences removes markdown and HTML references to exported
// assets from text. Used when asset extraction is disabled, so documents
// never carry links to files that were not copied.
func StripAssetReferences(text string) string {
	if text == "" {
		return text
	}
	text = imageEmbedRe.ReplaceAllString(text, "")
	text = audioTagRe.ReplaceAllString(text, "")
	text = videoTagRe.ReplaceAllString(text, "")
	text = assetLinkRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
