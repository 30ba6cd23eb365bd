package repository

import (
	"context"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"gorm.io/gorm"
)

// AccountRepository handles publishing account data operations.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *AccountRepository: repository instance bound to db.
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - account: account record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetByID retrieves an account by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: account ID.
// Returns:
//   - *domain.Account: account record if found.
//   - error: non-nil if lookup fails.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// GetBySlug retrieves an account by its unique slug.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - slug: account slug.
// Returns:
//   - *domain.Account: account record if found.
//   - error: non-nil if lookup fails.
func (r *AccountRepository) GetBySlug(ctx context.Context, slug string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// ListActive retrieves all active accounts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Account: active account records.
//   - error: non-nil if the query fails.
func (r *AccountRepository) ListActive(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("slug").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// List retrieves all accounts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Account: all account records.
//   - error: non-nil if the query fails.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).Order("slug").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Update saves an existing account record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - account: account record with updated fields.
// Returns:
//   - error: non-nil if the update fails.
func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// UpdateCredential writes a new access token together with its expiry.
// The pair is always written in one update so a reader never observes a
// fresh token with a stale expiry or the reverse.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: account ID.
//   - token: new access token.
//   - expiresAt: expiry of the new token.
// Returns:
//   - error: non-nil if the update fails.
func (r *AccountRepository) UpdateCredential(ctx context.Context, id, token string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_token":     token,
			"token_expires_at": expiresAt,
		}).Error
}
