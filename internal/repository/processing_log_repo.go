package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"gorm.io/gorm"
)

// ProcessingLogRepository handles layer execution log operations.
type ProcessingLogRepository struct {
	db *gorm.DB
}

// NewProcessingLogRepository creates a new ProcessingLogRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ProcessingLogRepository: repository instance bound to db.
func NewProcessingLogRepository(db *gorm.DB) *ProcessingLogRepository {
	return &ProcessingLogRepository{db: db}
}

// Append creates a running log row for a layer execution attempt.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content the layer runs for.
//   - layer: pipeline layer being executed.
// Returns:
//   - *domain.ProcessingLog: persisted running log row.
//   - error: non-nil if the insert fails.
func (r *ProcessingLogRepository) Append(ctx context.Context, contentID string, layer domain.Layer) (*domain.ProcessingLog, error) {
	logRow := &domain.ProcessingLog{
		ContentID: contentID,
		Layer:     layer,
		Status:    domain.LogStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(logRow).Error; err != nil {
		return nil, err
	}
	return logRow, nil
}

// Complete marks a log row as completed with the current timestamp.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: log row ID.
// Returns:
//   - error: non-nil if the update fails.
func (r *ProcessingLogRepository) Complete(ctx context.Context, id uint) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.ProcessingLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.LogStatusCompleted,
			"completed_at": now,
		}).Error
}

// Fail marks a log row as failed and records the error detail.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: log row ID.
//   - detail: error message to record.
// Returns:
//   - error: non-nil if the update fails.
func (r *ProcessingLogRepository) Fail(ctx context.Context, id uint, detail string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Model(&domain.ProcessingLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       domain.LogStatusFailed,
			"completed_at": now,
			"error":        detail,
		}).Error
}

// LatestCompleted retrieves the most recent completed log row for a
// content item. Returns nil without error when the content has no
// completed layer yet.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content ID to inspect.
// Returns:
//   - *domain.ProcessingLog: latest completed row, or nil when none exist.
//   - error: non-nil if the query fails.
func (r *ProcessingLogRepository) LatestCompleted(ctx context.Context, contentID string) (*domain.ProcessingLog, error) {
	var logRow domain.ProcessingLog
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND status = ?", contentID, domain.LogStatusCompleted).
		Order("completed_at DESC").
		Order("id DESC").
		First(&logRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &logRow, nil
}

// ListForContent retrieves all log rows for a content item in execution order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content ID to inspect.
// Returns:
//   - []domain.ProcessingLog: log rows ordered by start time.
//   - error: non-nil if the query fails.
func (r *ProcessingLogRepository) ListForContent(ctx context.Context, contentID string) ([]domain.ProcessingLog, error) {
	var logs []domain.ProcessingLog
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("started_at").
		Order("id").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
