package writerbackends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"stillreel/logger"
)

// UploadToDirectServe writes the clip below baseDir so it can be served as a
// static file after the in-memory artifact is released.
func UploadToDirectServe(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	baseDir := accessInfo["baseDir"]
	folder := accessInfo["folder"]
	filename := accessInfo["filename"]

	if baseDir == "" || filename == "" {
		return fmt.Errorf("missing required accessInfo keys: baseDir, filename")
	}
	if filepath.Base(filename) != filename || strings.Contains(folder, "..") {
		return fmt.Errorf("refusing path outside %s: %s/%s", baseDir, folder, filename)
	}

	fullDir := filepath.Join(baseDir, folder)
	fullPath := filepath.Join(fullDir, filename)

	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}

	logger.Infof("Exported '%s' to '%s'", filename, fullPath)
	return nil
}
