package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// PipelineService drives content through the production layers. Pipeline
// position is always derived from processing logs; a run picks up after
// the last completed layer no matter which process last touched the row.
type PipelineService struct {
	contents    *repository.ContentRepository
	accounts    *repository.AccountRepository
	logs        *repository.ProcessingLogRepository
	posts       *repository.PlatformPostRepository
	runner      *LayerRunner
	resume      *ResumeService
	executors   map[domain.Layer]LayerExecutor
	autoPublish bool
	running     sync.Map
}

// NewPipelineService creates a PipelineService over the given executors.
// autoPublish controls whether processing continues into distribution on
// its own once content is approved.
func NewPipelineService(
	contents *repository.ContentRepository,
	accounts *repository.AccountRepository,
	logs *repository.ProcessingLogRepository,
	posts *repository.PlatformPostRepository,
	runner *LayerRunner,
	resume *ResumeService,
	executors []LayerExecutor,
	autoPublish bool,
) *PipelineService {
	byLayer := make(map[domain.Layer]LayerExecutor, len(executors))
	for _, exec := range executors {
		byLayer[exec.Layer()] = exec
	}
	return &PipelineService{
		contents:    contents,
		accounts:    accounts,
		logs:        logs,
		posts:       posts,
		runner:      runner,
		resume:      resume,
		executors:   byLayer,
		autoPublish: autoPublish,
	}
}

// CreateContent registers a new content item for an account in the created
// status. Nothing is generated yet; Process starts the pipeline.
func (s *PipelineService) CreateContent(ctx context.Context, accountSlug string) (*domain.Content, error) {
	account, err := s.accounts.GetBySlug(ctx, accountSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountSlug, err)
	}
	if !account.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Slug)
	}

	content := &domain.Content{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		Status:    domain.ContentStatusCreated,
	}
	if err := s.contents.Create(ctx, content); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "pipeline",
		logger.FieldContentID: content.ID,
		logger.FieldAccount:   account.Slug,
	}).Info(ctx, "Content created")

	return content, nil
}

// Process advances a content item layer by layer from its resume point.
//
// The run stops without error when it reaches a wait state: review was
// requested and no decision has arrived, the content is already terminal,
// or distribution is next but auto publish is disabled. A layer failure
// stops the run with the content moved to failed.
//
// Only one run per content item is allowed at a time.
func (s *PipelineService) Process(ctx context.Context, contentID string) (*domain.Content, error) {
	release, err := s.acquire(contentID)
	if err != nil {
		return nil, err
	}
	defer release()

	content, account, err := s.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetContentID(ctx, content.ID)
	ctx = logger.SetAccount(ctx, account.Slug)

	if content.Status == domain.ContentStatusFailed {
		return content, fmt.Errorf("content %s is failed (%s); reopen it before processing", content.ID, content.FailureReason)
	}

	for {
		if domain.IsTerminal(content.Status) {
			return content, nil
		}

		next, err := s.resume.ResumePoint(ctx, content.ID)
		if err != nil {
			return content, err
		}
		if next == "" {
			return content, nil
		}

		if next == domain.LayerDistribution {
			if content.Status == domain.ContentStatusReviewPending {
				logger.CtxInfo(ctx, "Awaiting review decision")
				return content, nil
			}
			if content.Status != domain.ContentStatusApproved {
				return content, fmt.Errorf("%w: content %s is %s", domain.ErrNotApproved, content.ID, content.Status)
			}
			if !s.autoPublish {
				logger.CtxInfo(ctx, "Auto publish disabled, stopping before distribution")
				return content, nil
			}
			if !account.Active {
				return content, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Slug)
			}
		}

		exec, ok := s.executors[next]
		if !ok {
			return content, fmt.Errorf("no executor registered for layer %s", next)
		}
		if err := s.runner.Run(ctx, content, account, exec); err != nil {
			return content, err
		}

		if next == domain.LayerReview {
			// The pipeline halts here until a decision arrives.
			return content, nil
		}
	}
}

// Publish runs the distribution layer for approved content on demand. Used
// by operators when auto publish is off, and to push content whose decision
// arrived while nothing was processing. Publishing content that is already
// posted is a no-op.
func (s *PipelineService) Publish(ctx context.Context, contentID string) (*domain.Content, error) {
	release, err := s.acquire(contentID)
	if err != nil {
		return nil, err
	}
	defer release()

	content, account, err := s.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	ctx = logger.SetContentID(ctx, content.ID)
	ctx = logger.SetAccount(ctx, account.Slug)

	if content.Status == domain.ContentStatusPosted {
		return content, nil
	}
	if content.Status != domain.ContentStatusApproved {
		return content, fmt.Errorf("%w: content %s is %s", domain.ErrNotApproved, content.ID, content.Status)
	}
	if !account.Active {
		return content, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Slug)
	}

	exec, ok := s.executors[domain.LayerDistribution]
	if !ok {
		return content, fmt.Errorf("no executor registered for layer %s", domain.LayerDistribution)
	}
	if err := s.runner.Run(ctx, content, account, exec); err != nil {
		return content, err
	}
	return content, nil
}

// Retry reopens failed content and processes it from its resume point.
func (s *PipelineService) Retry(ctx context.Context, contentID string) (*domain.Content, error) {
	if _, err := s.resume.Reopen(ctx, contentID); err != nil {
		return nil, err
	}
	return s.Process(ctx, contentID)
}

// RetryLastFailed retries the most recently created failed content item.
func (s *PipelineService) RetryLastFailed(ctx context.Context) (*domain.Content, error) {
	content, err := s.resume.LastFailed(ctx)
	if err != nil {
		return nil, fmt.Errorf("no failed content to retry: %w", err)
	}
	return s.Retry(ctx, content.ID)
}

// GetContent returns a content item with its processing history and
// publication records.
func (s *PipelineService) GetContent(ctx context.Context, contentID string) (*domain.Content, []domain.ProcessingLog, []domain.PlatformPost, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, nil, nil, err
	}
	logs, err := s.logs.ListForContent(ctx, contentID)
	if err != nil {
		return nil, nil, nil, err
	}
	posts, err := s.posts.ListForContent(ctx, contentID)
	if err != nil {
		return nil, nil, nil, err
	}
	return content, logs, posts, nil
}

// ListContents returns content items, optionally filtered by status.
func (s *PipelineService) ListContents(ctx context.Context, status domain.ContentStatus, limit, offset int) ([]domain.Content, error) {
	return s.contents.ListByStatus(ctx, status, limit, offset)
}

// Running reports whether a run currently holds the content's guard.
func (s *PipelineService) Running(contentID string) bool {
	_, loaded := s.running.Load(contentID)
	return loaded
}

// acquire takes the per-content run guard.
func (s *PipelineService) acquire(contentID string) (func(), error) {
	if _, loaded := s.running.LoadOrStore(contentID, struct{}{}); loaded {
		return nil, fmt.Errorf("content %s is already being processed", contentID)
	}
	return func() { s.running.Delete(contentID) }, nil
}

func (s *PipelineService) load(ctx context.Context, contentID string) (*domain.Content, *domain.Account, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accounts.GetByID(ctx, content.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load account for content %s: %w", contentID, err)
	}
	return content, account, nil
}
