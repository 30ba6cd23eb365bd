package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/generator"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/render"
	"github.com/JamesCAlger/social-media-sub002/internal/storage"
)

// ideaExecutor generates the content idea, seeded with trending topics
// when a trending source is configured.
type ideaExecutor struct {
	gen           *generator.Generator
	trending      generator.TrendingSource
	trendingLimit int
}

// NewIdeaExecutor creates the idea layer. trending may be nil.
func NewIdeaExecutor(gen *generator.Generator, trending generator.TrendingSource, trendingLimit int) LayerExecutor {
	return &ideaExecutor{
		gen:           gen,
		trending:      trending,
		trendingLimit: trendingLimit,
	}
}

func (e *ideaExecutor) Layer() domain.Layer { return domain.LayerIdea }

func (e *ideaExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	var topics []string
	if e.trending != nil {
		var err error
		topics, err = e.trending.TrendingTopics(ctx, e.trendingLimit)
		if err != nil {
			// Trending is seasoning, not a dependency.
			logger.CtxWarn(ctx, "Trending lookup failed, generating without it: %v", err)
			topics = nil
		}
	}

	idea, err := e.gen.GenerateIdea(ctx, account.ContentNiche, topics)
	if err != nil {
		return nil, err
	}

	content.Idea = idea.Map()
	return &LayerResult{Fields: map[string]interface{}{
		"idea": content.Idea,
	}}, nil
}

// promptExecutor expands the idea into per-scene generation prompts.
type promptExecutor struct {
	gen        *generator.Generator
	sceneCount int
}

// NewPromptExecutor creates the prompt engineering layer.
func NewPromptExecutor(gen *generator.Generator, sceneCount int) LayerExecutor {
	return &promptExecutor{
		gen:        gen,
		sceneCount: sceneCount,
	}
}

func (e *promptExecutor) Layer() domain.Layer { return domain.LayerPromptEngineering }

func (e *promptExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	if len(content.Idea) == 0 {
		return nil, fmt.Errorf("content %s has no idea to expand", content.ID)
	}

	scenes, err := e.gen.GenerateScenes(ctx, generator.IdeaFromMap(content.Idea), e.sceneCount)
	if err != nil {
		return nil, err
	}

	content.ScenePrompts = domain.StringArray(scenes)
	return &LayerResult{Fields: map[string]interface{}{
		"scene_prompts": content.ScenePrompts,
	}}, nil
}

// videoExecutor turns each scene prompt into a downloaded raw clip.
type videoExecutor struct {
	clips   *render.ClipGenerator
	workDir string
}

// NewVideoExecutor creates the video generation layer.
func NewVideoExecutor(clips *render.ClipGenerator, workDir string) LayerExecutor {
	return &videoExecutor{
		clips:   clips,
		workDir: workDir,
	}
}

func (e *videoExecutor) Layer() domain.Layer { return domain.LayerVideoGeneration }

func (e *videoExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	if len(content.ScenePrompts) == 0 {
		return nil, fmt.Errorf("content %s has no scene prompts", content.ID)
	}

	dir := filepath.Join(e.workDir, content.ID, "clips")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create clip dir: %w", err)
	}

	paths := make(domain.StringArray, 0, len(content.ScenePrompts))
	cover := ""
	for i, prompt := range content.ScenePrompts {
		clip, err := e.clips.Generate(ctx, prompt, dir, fmt.Sprintf("scene_%02d", i+1))
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i+1, err)
		}
		paths = append(paths, clip.Path)
		if cover == "" && clip.CoverPath != "" {
			cover = clip.CoverPath
		}
	}

	content.RawClipPaths = paths
	fields := map[string]interface{}{
		"raw_clip_paths": paths,
	}
	if cover != "" {
		// Best-known cover so far; composition replaces it with the final one.
		content.CoverImagePath = cover
		fields["cover_image_path"] = cover
	}
	return &LayerResult{Fields: fields}, nil
}

// composeExecutor assembles the final video, uploads it, and records the
// artifacts.
type composeExecutor struct {
	composer *render.Composer
	media    *storage.MediaStore
}

// NewComposeExecutor creates the composition layer.
func NewComposeExecutor(composer *render.Composer, media *storage.MediaStore) LayerExecutor {
	return &composeExecutor{
		composer: composer,
		media:    media,
	}
}

func (e *composeExecutor) Layer() domain.Layer { return domain.LayerComposition }

func (e *composeExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	if len(content.RawClipPaths) == 0 {
		return nil, fmt.Errorf("content %s has no raw clips", content.ID)
	}

	result, err := e.composer.Compose(ctx, content.ID, content.RawClipPaths, content.CoverImagePath)
	if err != nil {
		return nil, err
	}

	videoURL, err := e.media.UploadVideo(ctx, content.ID, result.VideoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to upload video: %w", err)
	}
	if _, err := e.media.UploadCover(ctx, content.ID, result.CoverPath); err != nil {
		// The cover is optional for publication, the video is not.
		logger.CtxWarn(ctx, "Failed to upload cover: %v", err)
	}

	content.FinalVideoPath = result.VideoPath
	content.CoverImagePath = result.CoverPath
	content.DurationSeconds = result.DurationSeconds
	content.StorageURL = videoURL
	return &LayerResult{Fields: map[string]interface{}{
		"final_video_path": result.VideoPath,
		"cover_image_path": result.CoverPath,
		"duration_seconds": result.DurationSeconds,
		"storage_url":      videoURL,
	}}, nil
}

// reviewExecutor sends the composed video to the review channel.
type reviewExecutor struct {
	reviews *ReviewService
}

// NewReviewExecutor creates the review layer.
func NewReviewExecutor(reviews *ReviewService) LayerExecutor {
	return &reviewExecutor{reviews: reviews}
}

func (e *reviewExecutor) Layer() domain.Layer { return domain.LayerReview }

func (e *reviewExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	if err := e.reviews.SendReviewRequest(ctx, content, account); err != nil {
		return nil, err
	}
	return nil, nil
}

// distributionExecutor publishes approved content through the publish
// service.
type distributionExecutor struct {
	publisher *PublishService
}

// NewDistributionExecutor creates the distribution layer.
func NewDistributionExecutor(publisher *PublishService) LayerExecutor {
	return &distributionExecutor{publisher: publisher}
}

func (e *distributionExecutor) Layer() domain.Layer { return domain.LayerDistribution }

func (e *distributionExecutor) Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error) {
	post, err := e.publisher.Publish(ctx, content, account)
	if err != nil {
		return nil, err
	}

	content.PostedAt = post.PostedAt
	return &LayerResult{Fields: map[string]interface{}{
		"posted_at": post.PostedAt,
	}}, nil
}
