package repository

import (
	"context"
	"fmt"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"gorm.io/gorm"
)

// ContentRepository handles content data operations.
type ContentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ContentRepository: repository instance bound to db.
func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a new content record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - content: content record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

// GetByID retrieves a content item by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: content ID.
// Returns:
//   - *domain.Content: content record if found.
//   - error: non-nil if lookup fails.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	var content domain.Content
	if err := r.db.WithContext(ctx).First(&content, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

// Update saves an existing content record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - content: content record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *ContentRepository) Update(ctx context.Context, content *domain.Content) error {
	return r.db.WithContext(ctx).Save(content).Error
}

// UpdateFields applies a partial update to a content record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: content ID.
//   - fields: column/value pairs to update.
// Returns:
//   - error: non-nil if the update fails.
func (r *ContentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Content{}).Where("id = ?", id).Updates(fields).Error
}

// Transition moves a content item to a new status after validating the
// edge against the transition table. Extra fields are written in the same
// update so artifacts and status land together.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - content: current content record; Status is updated in place on success.
//   - to: requested target status.
//   - fields: additional column/value pairs to persist with the status.
// Returns:
//   - error: domain.ErrInvalidTransition when the edge is not legal.
func (r *ContentRepository) Transition(ctx context.Context, content *domain.Content, to domain.ContentStatus, fields map[string]interface{}) error {
	if !domain.CanTransition(content.Status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, content.Status, to)
	}

	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["status"] = to

	if err := r.db.WithContext(ctx).Model(&domain.Content{}).Where("id = ?", content.ID).Updates(updates).Error; err != nil {
		return err
	}
	content.Status = to
	return nil
}

// ListByStatus retrieves content items by status with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: content status to filter by; empty means all.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Content: matching content records.
//   - error: non-nil if the query fails.
func (r *ContentRepository) ListByStatus(ctx context.Context, status domain.ContentStatus, limit, offset int) ([]domain.Content, error) {
	var contents []domain.Content
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// LastFailed retrieves the most recently created failed content item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.Content: newest failed content record.
//   - error: gorm.ErrRecordNotFound when no failed content exists.
func (r *ContentRepository) LastFailed(ctx context.Context) (*domain.Content, error) {
	var content domain.Content
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.ContentStatusFailed).
		Order("created_at DESC").
		First(&content).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

// CountByStatus counts content items by status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: content status to count.
// Returns:
//   - int64: number of matching records.
//   - error: non-nil if the query fails.
func (r *ContentRepository) CountByStatus(ctx context.Context, status domain.ContentStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Content{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
