package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/platform/instagram"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// DefaultRefreshMargin is how far ahead of expiry a credential is refreshed.
const DefaultRefreshMargin = 7 * 24 * time.Hour

// TokenService keeps account credentials valid ahead of publication.
type TokenService struct {
	accounts  *repository.AccountRepository
	instagram *instagram.Client
	margin    time.Duration
	now       func() time.Time
}

// NewTokenService creates a TokenService. A non-positive margin falls back
// to DefaultRefreshMargin.
func NewTokenService(accounts *repository.AccountRepository, ig *instagram.Client, margin time.Duration) *TokenService {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &TokenService{
		accounts:  accounts,
		instagram: ig,
		margin:    margin,
		now:       time.Now,
	}
}

// ValidToken returns an access token guaranteed to outlive the refresh
// margin. A credential expiring inside the margin is exchanged for a fresh
// long-lived token first; the new token and its expiry are persisted in one
// write before the token is returned, and the account is updated in place.
// When the exchange fails the stored credential is left untouched and the
// returned error wraps domain.ErrCredentialRefresh.
func (s *TokenService) ValidToken(ctx context.Context, account *domain.Account) (string, error) {
	if account.AccessToken == "" {
		return "", fmt.Errorf("%w: account %s has no stored credential", domain.ErrCredentialRefresh, account.Slug)
	}
	if !account.TokenExpiresWithin(s.margin, s.now()) {
		return account.AccessToken, nil
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "token",
		logger.FieldAccount:   account.Slug,
	}).Info(ctx, "Access token expires within margin, refreshing")

	token, err := s.instagram.ExchangeToken(ctx, account.AccessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrCredentialRefresh, err)
	}

	expiresAt := s.now().Add(token.ExpiresIn).UTC()
	if err := s.accounts.UpdateCredential(ctx, account.ID, token.AccessToken, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store refreshed credential: %w", err)
	}
	account.AccessToken = token.AccessToken
	account.TokenExpiresAt = &expiresAt

	logger.With(logger.Fields{
		logger.FieldComponent: "token",
		logger.FieldAccount:   account.Slug,
	}).Info(ctx, "Access token refreshed, valid until %s", expiresAt.Format(time.RFC3339))

	return token.AccessToken, nil
}
