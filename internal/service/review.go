package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
	"github.com/JamesCAlger/social-media-sub002/internal/review"
)

// ReviewService sends composed content out for human review and records
// the decision that comes back.
type ReviewService struct {
	contents *repository.ContentRepository
	telegram *review.TelegramClient
	now      func() time.Time
}

// NewReviewService creates a ReviewService.
func NewReviewService(contents *repository.ContentRepository, telegram *review.TelegramClient) *ReviewService {
	return &ReviewService{
		contents: contents,
		telegram: telegram,
		now:      time.Now,
	}
}

// SendReviewRequest pushes the composed video to the review channel with
// approve and reject actions attached.
func (s *ReviewService) SendReviewRequest(ctx context.Context, content *domain.Content, account *domain.Account) error {
	videoURL := content.StorageURL
	if videoURL == "" {
		return fmt.Errorf("content %s has no stored video to review", content.ID)
	}

	summary := fmt.Sprintf("%s / %s\n%s\nDuration: %.0fs",
		account.Slug, content.Title(), content.Caption(), content.DurationSeconds)

	if err := s.telegram.SendVideoReview(ctx, content.ID, videoURL, summary); err != nil {
		return fmt.Errorf("failed to send review request: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "review",
		logger.FieldContentID: content.ID,
	}).Info(ctx, "Review request sent")

	return nil
}

// Decide records a review decision. Decisions are only accepted while the
// content sits in review_pending; anything later returns
// domain.ErrDecisionRecorded and leaves the earlier decision untouched,
// which makes retried webhook deliveries harmless.
//
// Parameters:
//   - ctx: request context
//   - contentID: content under review
//   - decision: review.CallbackApprove or review.CallbackReject
//   - reviewer: identifier of whoever decided
//   - notes: optional free-form notes stored with the decision
//
// Returns the updated content.
func (s *ReviewService) Decide(ctx context.Context, contentID, decision, reviewer, notes string) (*domain.Content, error) {
	var target domain.ContentStatus
	switch decision {
	case review.CallbackApprove:
		target = domain.ContentStatusApproved
	case review.CallbackReject:
		target = domain.ContentStatusRejected
	default:
		return nil, fmt.Errorf("unknown review decision %q", decision)
	}

	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.Status != domain.ContentStatusReviewPending {
		return content, fmt.Errorf("%w: content %s is %s", domain.ErrDecisionRecorded, content.ID, content.Status)
	}

	reviewedAt := s.now().UTC()
	err = s.contents.Transition(ctx, content, target, map[string]interface{}{
		"reviewed_at":  reviewedAt,
		"reviewed_by":  reviewer,
		"review_notes": notes,
	})
	if err != nil {
		return nil, err
	}
	content.ReviewedAt = &reviewedAt
	content.ReviewedBy = reviewer
	content.ReviewNotes = notes

	logger.With(logger.Fields{
		logger.FieldComponent: "review",
		logger.FieldContentID: content.ID,
		logger.FieldReviewer:  reviewer,
		logger.FieldStatus:    string(target),
	}).Info(ctx, "Review decision recorded")

	// Chat acknowledgment is best-effort; the decision is already recorded.
	if s.telegram != nil {
		ack := fmt.Sprintf("Content %s %s by %s", content.ID, target, reviewer)
		if err := s.telegram.SendMessage(ctx, ack); err != nil {
			logger.CtxWarn(ctx, "Failed to send decision acknowledgment: %v", err)
		}
	}

	return content, nil
}

// AcknowledgeCallback answers the inline button press that delivered a
// decision so the reviewer's client stops waiting. Best-effort.
func (s *ReviewService) AcknowledgeCallback(ctx context.Context, callbackID string, status domain.ContentStatus) {
	if s.telegram == nil || callbackID == "" {
		return
	}
	if err := s.telegram.AnswerCallback(ctx, callbackID, fmt.Sprintf("Recorded: %s", status)); err != nil {
		logger.CtxWarn(ctx, "Failed to answer review callback: %v", err)
	}
}
