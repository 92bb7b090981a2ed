package render

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/user/chatscribe/internal/assets"
)

// partPayload is the dict form of a parts-array element. Which fields are
// meaningful depends on content_type.
type partPayload struct {
	ContentType       string         `json:"content_type"`
	AssetPointer      string         `json:"asset_pointer"`
	Metadata          *assetMetadata `json:"metadata"`
	AudioAssetPointer *audioPointer  `json:"audio_asset_pointer"`
	Text              *string        `json:"text"`
}

// audioPointer is the nested pointer inside real-time audio/video parts.
type audioPointer struct {
	AssetPointer string         `json:"asset_pointer"`
	Metadata     *assetMetadata `json:"metadata"`
}

type assetMetadata struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// renderParts walks a parts array, producing one text fragment per part and
// accumulating relative paths for every attachment it materializes. Empty
// fragments are dropped and the rest joined with newlines.
func (r *Renderer) renderParts(parts []json.RawMessage) (string, []string, error) {
	var fragments []string
	var attachments []string

	for _, raw := range parts {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil {
			fragments = append(fragments, r.stripUnlessExtracting(text))
			continue
		}

		if first := firstByte(raw); first != '{' {
			// Neither a string nor a dict: keep it verbatim.
			fragments = append(fragments, strings.TrimSpace(string(raw)))
			continue
		}

		var part partPayload
		if err := json.Unmarshal(raw, &part); err != nil {
			continue // malformed dict part, drop silently
		}

		fragment, att, err := r.renderDictPart(&part)
		if err != nil {
			return "", nil, err
		}
		fragments = append(fragments, fragment)
		attachments = append(attachments, att...)
	}

	return joinFragments(fragments), attachments, nil
}

func (r *Renderer) renderDictPart(part *partPayload) (string, []string, error) {
	switch part.ContentType {
	case "image_asset_pointer":
		if !r.ExtractAssets {
			return "", nil, nil
		}
		return r.renderImagePart(part.AssetPointer)

	case "audio_asset_pointer", "real_time_user_audio_video_asset_pointer":
		if !r.ExtractAssets {
			return "", nil, nil
		}
		pointer := part.AssetPointer
		meta := part.Metadata
		if part.ContentType == "real_time_user_audio_video_asset_pointer" {
			pointer, meta = "", nil
			if part.AudioAssetPointer != nil {
				pointer = part.AudioAssetPointer.AssetPointer
				meta = part.AudioAssetPointer.Metadata
			}
		}
		var duration float64
		if meta != nil {
			duration = meta.End - meta.Start
		}
		return r.renderAudioPart(pointer, duration)

	default:
		if part.Text != nil {
			return r.stripUnlessExtracting(*part.Text), nil, nil
		}
		// Unknown dict shape: dropped rather than dumped into the document.
		return "", nil, nil
	}
}

// renderImagePart locates and copies an image attachment, emitting a markdown
// embed. A pointer that cannot be resolved produces no output at all.
func (r *Renderer) renderImagePart(assetPointer string) (string, []string, error) {
	fileID := assets.ExtractFileID(assetPointer)
	if fileID == "" {
		return "", nil, nil
	}
	src, category, ok := assets.Locate(fileID, r.SearchRoot)
	if !ok {
		return "", nil, nil
	}
	ref, err := assets.Materialize(src, r.OutputRoot, category, filepath.Base(src), r.DocumentPath)
	if err != nil {
		return "", nil, err
	}
	if ref == "" {
		return "", nil, nil
	}
	return "![Image](" + ref + ")", []string{ref}, nil
}

// renderAudioPart embeds a located voice recording, or falls back to a
// duration placeholder when the pointer cannot be resolved. A match that is
// not in the audio category is rejected: image files can share an ID prefix
// with recordings and must not be embedded as audio.
func (r *Renderer) renderAudioPart(assetPointer string, duration float64) (string, []string, error) {
	if assetPointer != "" {
		if fileID := assets.ExtractFileID(assetPointer); fileID != "" {
			src, category, ok := assets.Locate(fileID, r.SearchRoot)
			if ok && category == assets.CategoryAudio {
				ref, err := assets.Materialize(src, r.OutputRoot, category, filepath.Base(src), r.DocumentPath)
				if err != nil {
					return "", nil, err
				}
				if ref != "" {
					suffix := ""
					if duration != 0 {
						suffix = " (" + formatDuration(duration) + ")"
					}
					fragment := `<audio controls src="` + ref + `"></audio> *Audio` + suffix + `*`
					return fragment, []string{ref}, nil
				}
			}
		}
	}

	if duration != 0 {
		return "*[Audio message: " + formatDuration(duration) + "]*", nil, nil
	}
	return "*[Audio message]*", nil, nil
}

func joinFragments(fragments []string) string {
	nonEmpty := fragments[:0]
	for _, f := range fragments {
		if f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b
		}
	}
	return 0
}
