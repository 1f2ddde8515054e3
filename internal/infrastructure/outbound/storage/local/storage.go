package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"yatube/internal/custom_errors"
	ports "yatube/internal/domain/ports/output"
)

const postsDir = "posts"

var extensionsByType = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ImageStorage writes uploads below root/posts under random names.
type ImageStorage struct {
	root     string
	maxBytes int64
	log      ports.Logger
}

func NewImageStorage(root string, maxBytes int64, log ports.Logger) *ImageStorage {
	return &ImageStorage{root: root, maxBytes: maxBytes, log: log}
}

func (s *ImageStorage) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", custom_errors.ErrInvalidImage
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		s.log.Debug("Rejected oversized image", slog.String("filename", filename), slog.Int("size", len(data)))
		return "", custom_errors.ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensionsByType[contentType]
	if !ok {
		s.log.Debug("Rejected non-image upload",
			slog.String("filename", filename),
			slog.String("content_type", contentType))
		return "", custom_errors.ErrInvalidImage
	}
	if own := strings.ToLower(filepath.Ext(filename)); own == ".jpeg" && ext == ".jpg" {
		ext = own
	}

	rel := path.Join(postsDir, uuid.NewString()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		s.log.Error("Failed to create media directory", slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", custom_errors.ErrImageStorage, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		s.log.Error("Failed to write image", slog.String("path", dst), slog.String("error", err.Error()))
		return "", fmt.Errorf("%w: %v", custom_errors.ErrImageStorage, err)
	}

	s.log.Debug("Stored image", slog.String("path", rel), slog.String("content_type", contentType))
	return rel, nil
}

func (s *ImageStorage) Delete(ctx context.Context, rel string) error {
	clean := path.Clean("/" + rel)
	if !strings.HasPrefix(clean, "/"+postsDir+"/") {
		return custom_errors.ErrInvalidInput
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("Failed to delete image", slog.String("path", rel), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", custom_errors.ErrImageStorage, err)
	}
	return nil
}
