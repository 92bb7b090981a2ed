// internal/assets/materialize.go
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/user/chatscribe/internal/organize"
)

// Materialize copies a located attachment into the organized asset directory
// under outputRoot and returns the path a document at documentPath should use
// to reference it. Source filenames embed the attachment ID, so the name is
// kept and the copy happens at most once: an existing target is reused as-is.
//
// A missing source returns an empty reference and no error; callers fall back
// to placeholder text. Copy failures are real I/O errors and propagate.
func Materialize(sourcePath, outputRoot string, category Category, filename, documentPath string) (string, error) {
	if sourcePath == "" {
		return "", nil
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return "", nil
	}

	assetDir := organize.AssetDir(outputRoot, string(category))
	if err := os.MkdirAll(assetDir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	if filename == "" {
		filename = filepath.Base(sourcePath)
	}
	target := filepath.Join(assetDir, filename)

	if _, err := os.Stat(target); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat %s: %w", target, err)
		}
		if err := copyFile(sourcePath, target); err != nil {
			return "", err
		}
	}

	return organize.RelativeAssetPath(documentPath, target), nil
}

// copyFile copies src to dst, preserving the source's mode and timestamps.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
