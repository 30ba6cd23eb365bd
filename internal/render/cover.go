package render

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// ProbeCover decodes the image header at path and returns its dimensions
// and format name. JPEG, PNG, and WebP are recognized.
func ProbeCover(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("failed to open cover: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("failed to decode cover: %w", err)
	}
	return cfg, format, nil
}
