package domain

import "time"

// PostStatus represents the outcome recorded for one publish attempt.
// Values include PostStatusSuccess and PostStatusFailure.
type PostStatus string

const (
	PostStatusSuccess PostStatus = "success"
	PostStatusFailure PostStatus = "failure"
)

// PlatformPost records the publication of a content item on one platform.
// The (content_id, platform) pair is unique: a failure row may later be
// upgraded to success in place, but a success row is never overwritten,
// which keeps repeated publish requests idempotent.
type PlatformPost struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentID string     `gorm:"type:text;not null;index:idx_platform_posts_content,unique" json:"content_id"`
	Platform  Platform   `gorm:"type:text;not null;index:idx_platform_posts_content,unique" json:"platform"`
	PostID    string     `gorm:"type:text" json:"post_id,omitempty"`
	PostURL   string     `gorm:"type:text" json:"post_url,omitempty"`
	Status    PostStatus `gorm:"type:text;not null" json:"status"`
	Error     string     `gorm:"type:text" json:"error,omitempty"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName returns the database table name for PlatformPost.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (PlatformPost) TableName() string {
	return "platform_posts"
}
