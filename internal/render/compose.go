package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/JamesCAlger/social-media-sub002/internal/logger"
)

// ComposerConfig holds local composition settings.
type ComposerConfig struct {
	WorkDir     string
	FFmpegPath  string
	FFprobePath string
}

// Result is the output of a composition run.
type Result struct {
	VideoPath       string
	CoverPath       string
	DurationSeconds float64
}

// Composer assembles raw scene clips into the final vertical video and
// derives its cover image using ffmpeg.
type Composer struct {
	config ComposerConfig
}

// NewComposer creates a Composer. Empty binary paths fall back to looking
// up ffmpeg and ffprobe on PATH.
func NewComposer(config ComposerConfig) *Composer {
	if config.FFmpegPath == "" {
		config.FFmpegPath = "ffmpeg"
	}
	if config.FFprobePath == "" {
		config.FFprobePath = "ffprobe"
	}
	if config.WorkDir == "" {
		config.WorkDir = os.TempDir()
	}
	return &Composer{config: config}
}

// Compose concatenates the clips in order into a single 1080x1920 MP4,
// picks a cover image, and measures the final duration.
//
// Parameters:
//   - ctx: request context
//   - contentID: used to scope the working directory
//   - clips: local clip paths in playback order
//   - coverCandidate: optional provider thumbnail; used as the cover when it
//     decodes to a portrait image, otherwise the first frame is extracted
//
// Returns the final video path, cover path, and duration in seconds.
func (c *Composer) Compose(ctx context.Context, contentID string, clips []string, coverCandidate string) (*Result, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips to compose")
	}

	dir := filepath.Join(c.config.WorkDir, contentID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	videoPath, err := c.concat(ctx, dir, clips)
	if err != nil {
		return nil, err
	}

	duration, err := c.probeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	coverPath, err := c.cover(ctx, dir, videoPath, coverCandidate)
	if err != nil {
		return nil, err
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "render",
		logger.FieldContentID: contentID,
		logger.FieldCount:     len(clips),
	}).Info(ctx, "Composition finished: %.1fs", duration)

	return &Result{
		VideoPath:       videoPath,
		CoverPath:       coverPath,
		DurationSeconds: duration,
	}, nil
}

// concat joins the clips with the ffmpeg concat demuxer, normalizing every
// clip to 1080x1920 at 30fps.
func (c *Composer) concat(ctx context.Context, dir string, clips []string) (string, error) {
	lines := make([]string, 0, len(clips))
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}

	listFile := filepath.Join(dir, "clips_concat.txt")
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	outFile := filepath.Join(dir, "final.mp4")
	err := c.runFFmpeg(ctx,
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-vf", "scale=1080:1920:force_original_aspect_ratio=decrease,pad=1080:1920:(ow-iw)/2:(oh-ih)/2,setsar=1",
		"-r", "30",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		outFile,
	)
	if err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}
	return outFile, nil
}

// cover prefers a valid portrait provider thumbnail, converted to JPEG,
// and falls back to extracting the first frame of the final video.
func (c *Composer) cover(ctx context.Context, dir, videoPath, candidate string) (string, error) {
	outFile := filepath.Join(dir, "cover.jpg")

	if candidate != "" {
		cfg, _, err := ProbeCover(candidate)
		if err != nil {
			logger.CtxWarn(ctx, "Cover candidate unusable, extracting frame: %v", err)
		} else if cfg.Height > cfg.Width {
			if err := c.runFFmpeg(ctx, "-i", candidate, "-frames:v", "1", outFile); err != nil {
				return "", fmt.Errorf("ffmpeg cover convert: %w", err)
			}
			return outFile, nil
		}
	}

	err := c.runFFmpeg(ctx,
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outFile,
	)
	if err != nil {
		return "", fmt.Errorf("ffmpeg cover extract: %w", err)
	}
	return outFile, nil
}

// probeDuration reads the container duration in seconds with ffprobe.
func (c *Composer) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	out, err := exec.CommandContext(ctx, c.config.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}

	var dur float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur); err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q", strings.TrimSpace(string(out)))
	}
	return dur, nil
}

func (c *Composer) runFFmpeg(ctx context.Context, args ...string) error {
	full := append([]string{"-y"}, args...)
	cmd := exec.CommandContext(ctx, c.config.FFmpegPath, full...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, tail(string(out), 512))
	}
	return nil
}

// tail returns the last n bytes of s, keeping error output readable.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
