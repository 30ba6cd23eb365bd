package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/platform/instagram"
	"github.com/JamesCAlger/social-media-sub002/internal/platform/youtube"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// PublishConfig holds container polling settings.
type PublishConfig struct {
	PollInterval    time.Duration
	MaxPollAttempts int
}

// PublishService pushes approved content to its account's platform and
// records the outcome as a platform post. It never writes content status;
// the distribution layer owns that.
type PublishService struct {
	contents  *repository.ContentRepository
	posts     *repository.PlatformPostRepository
	tokens    *TokenService
	instagram *instagram.Client
	youtube   *youtube.Uploader
	config    PublishConfig
	sleep     func(time.Duration)
	now       func() time.Time
}

// NewPublishService creates a PublishService. The youtube uploader may be
// nil when no YouTube account is configured.
func NewPublishService(
	contents *repository.ContentRepository,
	posts *repository.PlatformPostRepository,
	tokens *TokenService,
	ig *instagram.Client,
	yt *youtube.Uploader,
	config PublishConfig,
) *PublishService {
	if config.PollInterval == 0 {
		config.PollInterval = 10 * time.Second
	}
	if config.MaxPollAttempts == 0 {
		config.MaxPollAttempts = 30
	}
	return &PublishService{
		contents:  contents,
		posts:     posts,
		tokens:    tokens,
		instagram: ig,
		youtube:   yt,
		config:    config,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Publish pushes the content to the account's platform.
//
// A previously successful publication for the same (content, platform) pair
// short-circuits: the stored post is returned and no platform call is made.
// On a platform failure a failure row is recorded for later inspection and
// the error is returned; a later retry upgrades that row in place.
func (s *PublishService) Publish(ctx context.Context, content *domain.Content, account *domain.Account) (*domain.PlatformPost, error) {
	ctx = logger.SetPlatform(ctx, string(account.Platform))

	existing, err := s.posts.FindSuccess(ctx, content.ID, account.Platform)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.CtxInfo(ctx, "Content already published as %s, skipping", existing.PostID)
		return existing, nil
	}

	var post *domain.PlatformPost
	var pubErr error
	switch account.Platform {
	case domain.PlatformInstagram:
		post, pubErr = s.publishInstagram(ctx, content, account)
	case domain.PlatformYouTube:
		post, pubErr = s.publishYouTube(ctx, content, account)
	default:
		pubErr = fmt.Errorf("unsupported platform %q", account.Platform)
	}

	if pubErr != nil {
		attemptedAt := s.now().UTC()
		failure := &domain.PlatformPost{
			ContentID: content.ID,
			Platform:  account.Platform,
			Status:    domain.PostStatusFailure,
			Error:     pubErr.Error(),
			PostedAt:  &attemptedAt,
		}
		if err := s.posts.Record(ctx, failure); err != nil {
			logger.CtxError(ctx, "Failed to record publish failure: %v", err)
		}
		return nil, pubErr
	}

	if err := s.posts.Record(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to record platform post: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "publish",
		"post_id":             post.PostID,
	}).Info(ctx, "Content published")

	return post, nil
}

// publishInstagram runs the Reels container protocol: create a media
// container, poll it until FINISHED, publish it, then fetch the permalink.
// The container id is persisted on the content as soon as it exists so a
// retry after a crash reuses it instead of creating a duplicate.
func (s *PublishService) publishInstagram(ctx context.Context, content *domain.Content, account *domain.Account) (*domain.PlatformPost, error) {
	if content.StorageURL == "" {
		return nil, fmt.Errorf("content %s has no stored video url", content.ID)
	}

	token, err := s.tokens.ValidToken(ctx, account)
	if err != nil {
		return nil, err
	}

	containerID := content.ContainerID
	if containerID == "" {
		caption := BuildCaption(content, account)
		containerID, err = s.instagram.CreateContainer(ctx, account.BusinessAccountID, content.StorageURL, caption, token)
		if err != nil {
			return nil, err
		}
		err = s.contents.UpdateFields(ctx, content.ID, map[string]interface{}{
			"container_id": containerID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to persist container id: %w", err)
		}
		content.ContainerID = containerID
	} else {
		logger.CtxInfo(ctx, "Reusing existing container %s", containerID)
	}

	if err := s.waitForContainer(ctx, containerID, token); err != nil {
		if errors.Is(err, domain.ErrContainerStatus) {
			// The container is in a terminal state. A retry must create a
			// fresh one instead of polling this one forever. A timeout keeps
			// the id; the container may still finish.
			if clearErr := s.contents.UpdateFields(ctx, content.ID, map[string]interface{}{
				"container_id": "",
			}); clearErr != nil {
				logger.CtxError(ctx, "Failed to clear dead container id: %v", clearErr)
			} else {
				content.ContainerID = ""
			}
		}
		return nil, err
	}

	mediaID, err := s.instagram.PublishContainer(ctx, account.BusinessAccountID, containerID, token)
	if err != nil {
		return nil, err
	}

	// The post is live at this point. A permalink failure is logged, not
	// returned, so the publication is never reported as failed.
	permalink, err := s.instagram.Permalink(ctx, mediaID, token)
	if err != nil {
		logger.CtxWarn(ctx, "Failed to fetch permalink for %s: %v", mediaID, err)
		permalink = ""
	}

	postedAt := s.now().UTC()
	return &domain.PlatformPost{
		ContentID: content.ID,
		Platform:  domain.PlatformInstagram,
		PostID:    mediaID,
		PostURL:   permalink,
		Status:    domain.PostStatusSuccess,
		PostedAt:  &postedAt,
	}, nil
}

// waitForContainer polls the container status until FINISHED. IN_PROGRESS
// keeps polling up to the attempt budget; any other status aborts.
func (s *PublishService) waitForContainer(ctx context.Context, containerID, token string) error {
	for attempt := 1; attempt <= s.config.MaxPollAttempts; attempt++ {
		status, err := s.instagram.ContainerStatus(ctx, containerID, token)
		if err != nil {
			return err
		}

		switch status {
		case instagram.ContainerFinished:
			return nil
		case instagram.ContainerInProgress:
			logger.CtxDebug(ctx, "Container %s still processing (attempt %d/%d)",
				containerID, attempt, s.config.MaxPollAttempts)
		default:
			return fmt.Errorf("%w: container %s reported %s", domain.ErrContainerStatus, containerID, status)
		}

		if attempt < s.config.MaxPollAttempts {
			s.sleep(s.config.PollInterval)
		}
	}
	return fmt.Errorf("%w: container %s after %d attempts", domain.ErrContainerTimeout, containerID, s.config.MaxPollAttempts)
}

func (s *PublishService) publishYouTube(ctx context.Context, content *domain.Content, account *domain.Account) (*domain.PlatformPost, error) {
	if s.youtube == nil {
		return nil, fmt.Errorf("youtube publishing is not configured")
	}
	if content.FinalVideoPath == "" {
		return nil, fmt.Errorf("content %s has no local video file", content.ID)
	}

	videoID, watchURL, err := s.youtube.Upload(ctx, content.FinalVideoPath, &youtube.Metadata{
		Title:       content.Title(),
		Description: BuildCaption(content, account),
		Tags:        account.CaptionHashtags,
	})
	if err != nil {
		return nil, err
	}

	postedAt := s.now().UTC()
	return &domain.PlatformPost{
		ContentID: content.ID,
		Platform:  domain.PlatformYouTube,
		PostID:    videoID,
		PostURL:   watchURL,
		Status:    domain.PostStatusSuccess,
		PostedAt:  &postedAt,
	}, nil
}
