package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaStore uploads composed pipeline media to object storage and hands
// back durable public URLs for publishing.
type MediaStore struct {
	storage ObjectStorage
}

// NewMediaStore creates a new MediaStore.
// Parameters:
//   - storage: object storage backend.
// Returns:
//   - *MediaStore: store instance bound to the backend.
func NewMediaStore(storage ObjectStorage) *MediaStore {
	return &MediaStore{storage: storage}
}

// UploadVideo uploads a final composed video for a content item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content the video belongs to.
//   - path: local path of the composed video file.
// Returns:
//   - string: public URL of the uploaded video.
//   - error: non-nil if the upload fails.
func (m *MediaStore) UploadVideo(ctx context.Context, contentID, path string) (string, error) {
	key := fmt.Sprintf("videos/%s/final%s", contentID, extOrDefault(path, ".mp4"))
	if err := m.uploadFile(ctx, key, path, "video/mp4"); err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	return m.storage.GetURL(key), nil
}

// UploadCover uploads a cover image for a content item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content the cover belongs to.
//   - path: local path of the cover image file.
// Returns:
//   - string: public URL of the uploaded cover.
//   - error: non-nil if the upload fails.
func (m *MediaStore) UploadCover(ctx context.Context, contentID, path string) (string, error) {
	ext := extOrDefault(path, ".jpg")
	key := fmt.Sprintf("videos/%s/cover%s", contentID, ext)
	if err := m.uploadFile(ctx, key, path, coverContentType(ext)); err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}
	return m.storage.GetURL(key), nil
}

func (m *MediaStore) uploadFile(ctx context.Context, key, path, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return m.storage.Upload(ctx, key, f, info.Size(), contentType)
}

func extOrDefault(path, def string) string {
	if ext := filepath.Ext(path); ext != "" {
		return strings.ToLower(ext)
	}
	return def
}

func coverContentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
