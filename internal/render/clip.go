package render

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JamesCAlger/social-media-sub002/internal/logger"
)

// Generation job statuses reported by the render provider.
const (
	jobQueued     = "queued"
	jobProcessing = "processing"
	jobSucceeded  = "succeeded"
	jobFailed     = "failed"
)

// ClipConfig holds render provider connection settings.
type ClipConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxPollTime  time.Duration
}

// Clip is one downloaded scene clip.
type Clip struct {
	Path      string
	CoverPath string // provider thumbnail when available, empty otherwise
}

// ClipGenerator turns a scene prompt into a downloaded video clip through
// an asynchronous text-to-video provider API.
type ClipGenerator struct {
	client *resty.Client
	config ClipConfig
}

// NewClipGenerator creates a render provider client.
func NewClipGenerator(config ClipConfig) *ClipGenerator {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.MaxPollTime == 0 {
		config.MaxPollTime = 10 * time.Minute
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Authorization", "Bearer "+config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(config.Timeout)

	return &ClipGenerator{
		client: client,
		config: config,
	}
}

type generationRequest struct {
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

type generationResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Generate submits a scene prompt, waits for the provider to finish, and
// downloads the resulting clip into destDir under the given name.
//
// Parameters:
//   - ctx: request context, cancelling it aborts the poll loop
//   - prompt: self-contained scene prompt
//   - destDir: existing directory for downloaded files
//   - name: file name stem, e.g. "scene_01"
//
// Returns the downloaded clip or an error when the job fails or does not
// finish within the configured poll window.
func (g *ClipGenerator) Generate(ctx context.Context, prompt, destDir, name string) (*Clip, error) {
	job, err := g.submit(ctx, prompt)
	if err != nil {
		return nil, err
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "render",
		"job_id":              job.ID,
	}).Info(ctx, "Clip generation submitted")

	job, err = g.waitForJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	clip := &Clip{Path: filepath.Join(destDir, name+".mp4")}
	if err := g.download(ctx, job.VideoURL, clip.Path); err != nil {
		return nil, fmt.Errorf("failed to download clip: %w", err)
	}

	if job.ThumbnailURL != "" {
		coverPath := filepath.Join(destDir, name+"_cover"+coverExt(job.ThumbnailURL))
		if err := g.download(ctx, job.ThumbnailURL, coverPath); err != nil {
			logger.CtxWarn(ctx, "Failed to download clip thumbnail: %v", err)
		} else {
			clip.CoverPath = coverPath
		}
	}

	return clip, nil
}

func (g *ClipGenerator) submit(ctx context.Context, prompt string) (*generationResponse, error) {
	req := generationRequest{
		Model:       g.config.Model,
		Prompt:      prompt,
		AspectRatio: "9:16",
	}

	var job generationResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&job).
		Post("/v1/generations")
	if err != nil {
		return nil, fmt.Errorf("failed to submit generation: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("generation submit returned status %d: %s", resp.StatusCode(), resp.String())
	}
	if job.ID == "" {
		return nil, fmt.Errorf("generation submit returned no job id")
	}
	return &job, nil
}

// waitForJob polls the job until it reaches a terminal status or the poll
// window elapses.
func (g *ClipGenerator) waitForJob(ctx context.Context, jobID string) (*generationResponse, error) {
	deadline := time.Now().Add(g.config.MaxPollTime)
	for {
		var job generationResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetResult(&job).
			Get("/v1/generations/" + jobID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll generation %s: %w", jobID, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("generation poll returned status %d: %s", resp.StatusCode(), resp.String())
		}

		switch job.Status {
		case jobSucceeded:
			if job.VideoURL == "" {
				return nil, fmt.Errorf("generation %s succeeded without a video url", jobID)
			}
			return &job, nil
		case jobFailed:
			return nil, fmt.Errorf("generation %s failed: %s", jobID, job.Error)
		case jobQueued, jobProcessing:
			// keep polling
		default:
			return nil, fmt.Errorf("generation %s returned unknown status %q", jobID, job.Status)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("generation %s did not finish within %s", jobID, g.config.MaxPollTime)
		}
		if err := wait(ctx, g.config.PollInterval); err != nil {
			return nil, err
		}
	}
}

func (g *ClipGenerator) download(ctx context.Context, url, path string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("download returned status %d", resp.StatusCode())
	}
	return nil
}

// wait sleeps for d unless the context is cancelled first.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func coverExt(url string) string {
	if ext := filepath.Ext(url); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".webp"
}
