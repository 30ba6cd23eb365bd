package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

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
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "text",
		ServiceName: "pipeline-cli",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	createFor := flag.String("create", "", "Create content for the given account slug")
	runAll := flag.Bool("run-all", false, "Create and process one content for every active account")
	processID := flag.String("process", "", "Run the pipeline for the given content ID")
	resumeID := flag.String("resume", "", "Reopen failed content and continue processing")
	retryLast := flag.Bool("retry-last-failed", false, "Reopen and reprocess the most recent failed content")
	publishID := flag.String("publish", "", "Publish approved content to its platform")
	decideID := flag.String("decide", "", "Record a review decision for the given content ID")
	action := flag.String("action", "", "Review action for -decide: approve or reject")
	reviewer := flag.String("reviewer", "cli", "Reviewer recorded with -decide")
	notes := flag.String("notes", "", "Review notes recorded with -decide")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		appLogger.WithError(err).Fatal("Invalid config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	contentRepo := repository.NewContentRepository(db)
	logRepo := repository.NewProcessingLogRepository(db)
	postRepo := repository.NewPlatformPostRepository(db)

	// Initialize S3-compatible storage (supports R2, S3, MinIO)
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
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Ensure bucket exists
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
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

	// Initialize generation and rendering clients
	promptSet, err := prompts.Load(cfg.Generator.PromptsFile)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load prompt overrides")
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
			appLogger.WithError(err).Fatal("Failed to initialize trending source")
		}
		trending = redditSource
	}

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

	// Run the requested command
	switch {
	case *createFor != "":
		content, err := pipeline.CreateContent(ctx, *createFor)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to create content")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"account":    *createFor,
		}).Info("Content created")

	case *runAll:
		accounts, err := accountRepo.ListActive(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to list active accounts")
		}
		if len(accounts) == 0 {
			appLogger.Warn("No active accounts to run")
			return
		}
		var failed int
		for _, account := range accounts {
			if ctx.Err() != nil {
				appLogger.Warn("Batch run canceled")
				break
			}
			content, err := pipeline.CreateContent(ctx, account.Slug)
			if err != nil {
				failed++
				appLogger.WithError(err).WithField("account", account.Slug).Error("Failed to create content")
				continue
			}
			entry := appLogger.WithFields(logger.Fields{
				"account":    account.Slug,
				"content_id": content.ID,
			})
			processed, err := pipeline.Process(ctx, content.ID)
			if err != nil {
				failed++
				entry.WithError(err).Error("Processing failed")
				continue
			}
			entry.WithField("status", processed.Status).Info("Processing finished")
		}
		appLogger.WithFields(logger.Fields{
			"accounts": len(accounts),
			"failed":   failed,
		}).Info("Batch run finished")
		if failed > 0 {
			os.Exit(1)
		}

	case *processID != "":
		content, err := pipeline.Process(ctx, *processID)
		if err != nil {
			appLogger.WithError(err).Fatal("Processing failed")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"status":     content.Status,
		}).Info("Processing finished")

	case *resumeID != "":
		content, err := pipeline.Retry(ctx, *resumeID)
		if err != nil {
			appLogger.WithError(err).Fatal("Resume failed")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"status":     content.Status,
		}).Info("Resume finished")

	case *retryLast:
		content, err := pipeline.RetryLastFailed(ctx)
		if err != nil {
			appLogger.WithError(err).Fatal("Retry failed")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"status":     content.Status,
		}).Info("Retry finished")

	case *publishID != "":
		content, err := pipeline.Publish(ctx, *publishID)
		if err != nil {
			appLogger.WithError(err).Fatal("Publish failed")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"status":     content.Status,
		}).Info("Publish finished")

	case *decideID != "":
		content, err := reviews.Decide(ctx, *decideID, *action, *reviewer, *notes)
		if err != nil {
			appLogger.WithError(err).Fatal("Decision failed")
		}
		appLogger.WithFields(logger.Fields{
			"content_id": content.ID,
			"status":     content.Status,
		}).Info("Decision recorded")

	default:
		flag.Usage()
		os.Exit(2)
	}
}
