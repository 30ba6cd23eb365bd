package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// AccountService manages publishing accounts and their credentials.
type AccountService struct {
	accounts *repository.AccountRepository
}

// NewAccountService creates an AccountService.
func NewAccountService(accounts *repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// CreateAccountInput carries the fields needed to register an account.
type CreateAccountInput struct {
	Slug              string
	DisplayName       string
	Platform          string
	BusinessAccountID string
	PageID            string
	AccessToken       string
	TokenExpiresAt    *time.Time
	ContentNiche      string
	CaptionHashtags   []string
	PostingWindow     string
}

// Create registers a new active publishing account.
func (s *AccountService) Create(ctx context.Context, in CreateAccountInput) (*domain.Account, error) {
	if in.Slug == "" {
		return nil, fmt.Errorf("account slug is required")
	}

	platform := domain.Platform(in.Platform)
	switch platform {
	case "":
		platform = domain.PlatformInstagram
	case domain.PlatformInstagram, domain.PlatformYouTube:
	default:
		return nil, fmt.Errorf("unknown platform %q", in.Platform)
	}

	account := &domain.Account{
		ID:                uuid.New().String(),
		Slug:              in.Slug,
		DisplayName:       in.DisplayName,
		Platform:          platform,
		BusinessAccountID: in.BusinessAccountID,
		PageID:            in.PageID,
		AccessToken:       in.AccessToken,
		TokenExpiresAt:    in.TokenExpiresAt,
		Active:            true,
		ContentNiche:      in.ContentNiche,
		CaptionHashtags:   domain.StringArray(in.CaptionHashtags),
		PostingWindow:     in.PostingWindow,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "account",
		logger.FieldAccount:   account.Slug,
		logger.FieldPlatform:  string(account.Platform),
	}).Info(ctx, "Account registered")

	return account, nil
}

// List returns all accounts.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	return s.accounts.List(ctx)
}

// GetBySlug returns one account by slug.
func (s *AccountService) GetBySlug(ctx context.Context, slug string) (*domain.Account, error) {
	return s.accounts.GetBySlug(ctx, slug)
}

// SetCredential overrides an account's access token. Token and expiry are
// required together and stored in one write; an override never leaves the
// row with a mismatched pair.
func (s *AccountService) SetCredential(ctx context.Context, accountID, token string, expiresAt time.Time) (*domain.Account, error) {
	if token == "" {
		return nil, fmt.Errorf("access token is required")
	}
	if expiresAt.IsZero() {
		return nil, fmt.Errorf("token expiry is required")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateCredential(ctx, account.ID, token, expiresAt.UTC()); err != nil {
		return nil, err
	}
	account.AccessToken = token
	expiry := expiresAt.UTC()
	account.TokenExpiresAt = &expiry

	logger.With(logger.Fields{
		logger.FieldComponent: "account",
		logger.FieldAccount:   account.Slug,
	}).Info(ctx, "Credential overridden, valid until %s", expiry.Format(time.RFC3339))

	return account, nil
}
