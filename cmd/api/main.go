package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/api"
	"github.com/JamesCAlger/social-media-sub002/internal/config"
	"github.com/JamesCAlger/social-media-sub002/internal/generator"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/platform/instagram"
	"github.com/JamesCAlger/social-media-sub002/internal/platform/youtube"
	"github.com/JamesCAlger/social-media-sub002/internal/prompts"
	"github.com/JamesCAlger/social-media-sub002/internal/render"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/review"
	"github.com/JamesCAlger/social-media-sub002/internal/service"
	"github.com/JamesCAlger/social-media-sub002/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	contentRepo := repository.NewContentRepository(db)
	logRepo := repository.NewProcessingLogRepository(db)
	postRepo := repository.NewPlatformPostRepository(db)

	// Initialize storage (supports R2, S3, MinIO)
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		Bucket:       cfg.Storage.Bucket,
		UsePathStyle: cfg.Storage.UsePathStyle,
		PublicURL:    cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		logger.Fatal("Failed to ensure storage bucket: %v", err)
	}
	media := storage.NewMediaStore(objectStorage)

	// Initialize platform clients
	igClient := instagram.NewClient(&instagram.Config{
		BaseURL:   cfg.Instagram.BaseURL,
		AppID:     cfg.Instagram.AppID,
		AppSecret: cfg.Instagram.AppSecret,
	})
	telegramClient := review.NewTelegramClient(&review.TelegramConfig{
		BaseURL:  cfg.Telegram.BaseURL,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
	})
	var ytUploader *youtube.Uploader
	if cfg.YouTube.Enabled {
		ytUploader = youtube.NewUploader(&youtube.Config{
			ClientID:     cfg.YouTube.ClientID,
			ClientSecret: cfg.YouTube.ClientSecret,
			RefreshToken: cfg.YouTube.RefreshToken,
			Category:     cfg.YouTube.Category,
			Privacy:      cfg.YouTube.Privacy,
		})
	}

	// Initialize generation clients
	promptSet, err := prompts.Load(cfg.Generator.PromptsFile)
	if err != nil {
		logger.Fatal("Failed to load prompt overrides: %v", err)
	}
	llm := generator.NewLLMClient(&generator.LLMConfig{
		Provider:    cfg.Generator.Provider,
		Model:       cfg.Generator.Model,
		APIKey:      cfg.Generator.APIKey,
		BaseURL:     cfg.Generator.BaseURL,
		Temperature: cfg.Generator.Temperature,
	})
	gen := generator.NewGenerator(llm, promptSet)

	var trending generator.TrendingSource
	if cfg.Trending.Enabled {
		redditSource, err := generator.NewRedditTrending(cfg.Trending.Subreddits)
		if err != nil {
			logger.Fatal("Failed to initialize trending source: %v", err)
		}
		trending = redditSource
		logger.Info("Trending lookup enabled for %d subreddits", len(cfg.Trending.Subreddits))
	}

	// Initialize rendering clients
	clips := render.NewClipGenerator(render.ClipConfig{
		BaseURL:      cfg.Renderer.BaseURL,
		APIKey:       cfg.Renderer.APIKey,
		Model:        cfg.Renderer.Model,
		PollInterval: cfg.Renderer.PollInterval,
		MaxPollTime:  cfg.Renderer.MaxPollTime,
	})
	composer := render.NewComposer(render.ComposerConfig{
		WorkDir:     cfg.Renderer.WorkDir,
		FFmpegPath:  cfg.Renderer.FFmpegPath,
		FFprobePath: cfg.Renderer.FFprobePath,
	})

	// Initialize services
	tokens := service.NewTokenService(accountRepo, igClient, cfg.Instagram.RefreshMargin)
	reviews := service.NewReviewService(contentRepo, telegramClient)
	publisher := service.NewPublishService(contentRepo, postRepo, tokens, igClient, ytUploader, service.PublishConfig{
		PollInterval:    cfg.Instagram.PollInterval,
		MaxPollAttempts: cfg.Instagram.MaxPollAttempts,
	})
	runner := service.NewLayerRunner(contentRepo, logRepo)
	resume := service.NewResumeService(contentRepo, logRepo)

	executors := []service.LayerExecutor{
		service.NewIdeaExecutor(gen, trending, cfg.Trending.Limit),
		service.NewPromptExecutor(gen, cfg.Generator.SceneCount),
		service.NewVideoExecutor(clips, cfg.Renderer.WorkDir),
		service.NewComposeExecutor(composer, media),
		service.NewReviewExecutor(reviews),
		service.NewDistributionExecutor(publisher),
	}

	pipeline := service.NewPipelineService(contentRepo, accountRepo, logRepo, postRepo, runner, resume, executors, cfg.Pipeline.AutoPublish)
	accounts := service.NewAccountService(accountRepo)

	// Setup router
	router := api.SetupRouter(db, api.Services{
		Pipeline: pipeline,
		Resume:   resume,
		Reviews:  reviews,
		Accounts: accounts,
	}, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server on port %d in %s mode", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout. In-flight pipeline runs hold their own
	// background contexts and finish independently.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
