package domain

import "time"

// Platform identifies a publishing destination.
// Values include PlatformInstagram and PlatformYouTube.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

// Account represents one managed publishing account. Each account owns
// its own credential; token refresh for one account never reads or writes
// another account's row.
type Account struct {
	ID                string      `gorm:"type:text;primaryKey" json:"id"`
	Slug              string      `gorm:"type:text;not null;uniqueIndex:idx_accounts_slug" json:"slug"`
	DisplayName       string      `gorm:"type:text" json:"display_name"`
	Platform          Platform    `gorm:"type:text;default:instagram" json:"platform"`
	BusinessAccountID string      `gorm:"type:text" json:"business_account_id,omitempty"`
	PageID            string      `gorm:"type:text" json:"page_id,omitempty"`
	AccessToken       string      `gorm:"type:text" json:"-"`
	TokenExpiresAt    *time.Time  `json:"token_expires_at,omitempty"`
	Active            bool        `gorm:"default:true;index:idx_accounts_active" json:"active"`
	ContentNiche      string      `gorm:"type:text" json:"content_niche,omitempty"`
	CaptionHashtags   StringArray `gorm:"type:text" json:"caption_hashtags,omitempty"`
	PostingWindow     string      `gorm:"type:text" json:"posting_window,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Account.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Account) TableName() string {
	return "accounts"
}

// TokenExpiresWithin reports whether the account credential expires within
// the given margin of now. A missing expiry counts as expiring so the
// credential gets refreshed rather than trusted.
// Parameters:
//   - margin: lead time before actual expiry at which refresh should happen.
//   - now: reference time.
// Returns:
//   - bool: true when the token must be refreshed before use.
func (a *Account) TokenExpiresWithin(margin time.Duration, now time.Time) bool {
	if a.TokenExpiresAt == nil {
		return true
	}
	return a.TokenExpiresAt.Before(now.Add(margin))
}
