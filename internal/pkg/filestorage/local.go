package filestorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/edutech/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory for stored files
	baseURL  string // public prefix the server exposes basePath under
}

// NewLocalStorage creates a new LocalStorage instance.
// When baseURL is empty, returned URLs are relative to /uploads.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload writes the buffer under a generated name and returns its URL
func (ls *LocalStorage) Upload(ctx context.Context, file File) (string, error) {
	if len(file.Data) == 0 {
		return "", ErrEmptyFile
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(file)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	if err := os.WriteFile(dstPath, file.Data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + key
	logger.Debug().Str("filename", file.Name).Str("url", url).Msg("File saved")
	return url, nil
}
