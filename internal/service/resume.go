package service

import (
	"context"
	"fmt"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// ResumeService derives pipeline position from processing logs and reopens
// failed content. Position is always computed from the latest completed log
// row, never from which artifact columns happen to be populated.
type ResumeService struct {
	contents *repository.ContentRepository
	logs     *repository.ProcessingLogRepository
}

// NewResumeService creates a ResumeService.
func NewResumeService(contents *repository.ContentRepository, logs *repository.ProcessingLogRepository) *ResumeService {
	return &ResumeService{
		contents: contents,
		logs:     logs,
	}
}

// ResumePoint returns the next layer that would execute for a content item.
// An empty layer means every layer has already completed.
func (s *ResumeService) ResumePoint(ctx context.Context, contentID string) (domain.Layer, error) {
	last, err := s.logs.LatestCompleted(ctx, contentID)
	if err != nil {
		return "", err
	}
	var lastLayer domain.Layer
	if last != nil {
		lastLayer = last.Layer
	}
	next, ok := domain.NextLayer(lastLayer)
	if !ok {
		return "", nil
	}
	return next, nil
}

// Reopen moves failed content back to the status of its last completed
// layer, or created when nothing completed, and clears the failure reason.
// Processing then naturally re-runs the layer that failed. Only failed
// content can be reopened.
func (s *ResumeService) Reopen(ctx context.Context, contentID string) (*domain.Content, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if content.Status != domain.ContentStatusFailed {
		return nil, fmt.Errorf("%w: only failed content can be reopened, content %s is %s",
			domain.ErrInvalidTransition, content.ID, content.Status)
	}

	last, err := s.logs.LatestCompleted(ctx, contentID)
	if err != nil {
		return nil, err
	}
	target := domain.ContentStatusCreated
	if last != nil {
		if t, ok := domain.LayerTarget(last.Layer); ok {
			target = t
		}
	}

	err = s.contents.Transition(ctx, content, target, map[string]interface{}{
		"failure_reason": "",
	})
	if err != nil {
		return nil, err
	}
	content.FailureReason = ""

	logger.With(logger.Fields{
		logger.FieldComponent: "resume",
		logger.FieldContentID: content.ID,
		logger.FieldStatus:    string(target),
	}).Info(ctx, "Reopened failed content")

	return content, nil
}

// LastFailed returns the most recently created failed content item.
func (s *ResumeService) LastFailed(ctx context.Context) (*domain.Content, error) {
	return s.contents.LastFailed(ctx)
}
