package repository

import (
	"context"
	"errors"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"gorm.io/gorm"
)

// PlatformPostRepository handles platform publication records.
type PlatformPostRepository struct {
	db *gorm.DB
}

// NewPlatformPostRepository creates a new PlatformPostRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PlatformPostRepository: repository instance bound to db.
func NewPlatformPostRepository(db *gorm.DB) *PlatformPostRepository {
	return &PlatformPostRepository{db: db}
}

// FindSuccess retrieves the successful publication record for a content
// item on a platform. Returns nil without error when none exists.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content ID.
//   - platform: publishing platform.
// Returns:
//   - *domain.PlatformPost: success record, or nil when none exists.
//   - error: non-nil if the query fails.
func (r *PlatformPostRepository) FindSuccess(ctx context.Context, contentID string, platform domain.Platform) (*domain.PlatformPost, error) {
	var post domain.PlatformPost
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND platform = ? AND status = ?", contentID, platform, domain.PostStatusSuccess).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Record persists a publication outcome for (content, platform). The pair
// holds at most one row: a failure row is upgraded in place by a later
// attempt, while an existing success row is never overwritten. When a
// success row already exists, post is overwritten with the stored record
// so callers observe the original publication.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - post: publication outcome to record.
// Returns:
//   - error: non-nil if the write fails.
func (r *PlatformPostRepository) Record(ctx context.Context, post *domain.PlatformPost) error {
	var existing domain.PlatformPost
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND platform = ?", post.ContentID, post.Platform).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(post).Error
	}
	if err != nil {
		return err
	}

	if existing.Status == domain.PostStatusSuccess {
		*post = existing
		return nil
	}

	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(post).Error
}

// ListForContent retrieves all publication records for a content item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - contentID: content ID.
// Returns:
//   - []domain.PlatformPost: publication records.
//   - error: non-nil if the query fails.
func (r *PlatformPostRepository) ListForContent(ctx context.Context, contentID string) ([]domain.PlatformPost, error) {
	var posts []domain.PlatformPost
	if err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("id").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
