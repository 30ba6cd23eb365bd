package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ContentStatus represents the lifecycle status of a content item.
// Values follow the production pipeline: ContentStatusCreated through
// ContentStatusPosted, with ContentStatusFailed reachable from any
// non-terminal status.
type ContentStatus string

const (
	ContentStatusCreated        ContentStatus = "created"
	ContentStatusIdeaReady      ContentStatus = "idea_ready"
	ContentStatusPromptsReady   ContentStatus = "prompts_ready"
	ContentStatusVideoGenerated ContentStatus = "video_generated"
	ContentStatusComposed       ContentStatus = "composed"
	ContentStatusReviewPending  ContentStatus = "review_pending"
	ContentStatusApproved       ContentStatus = "approved"
	ContentStatusRejected       ContentStatus = "rejected"
	ContentStatusPosted         ContentStatus = "posted"
	ContentStatusFailed         ContentStatus = "failed"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// JSONMap is a custom type for storing JSON objects in the database.
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the map.
//   - error: non-nil if marshaling fails.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan JSONMap")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, m)
}

// Content represents a content item moving through the production pipeline.
// Fields include identifiers, per-stage artifacts, review metadata, and
// publication metadata. Artifact fields are informational only; pipeline
// position is derived from processing logs, never from artifact presence.
type Content struct {
	ID              string        `gorm:"type:text;primaryKey" json:"id"`
	AccountID       string        `gorm:"type:text;index:idx_contents_account" json:"account_id,omitempty"`
	Status          ContentStatus `gorm:"type:text;index:idx_contents_status;default:created" json:"status"`
	Idea            JSONMap       `gorm:"type:text" json:"idea,omitempty"`
	ScenePrompts    StringArray   `gorm:"type:text" json:"scene_prompts,omitempty"`
	RawClipPaths    StringArray   `gorm:"type:text" json:"raw_clip_paths,omitempty"`
	FinalVideoPath  string        `gorm:"type:text" json:"final_video_path,omitempty"`
	CoverImagePath  string        `gorm:"type:text" json:"cover_image_path,omitempty"`
	DurationSeconds float64       `json:"duration_seconds,omitempty"`
	StorageURL      string        `gorm:"type:text" json:"storage_url,omitempty"`
	ContainerID     string        `gorm:"type:text" json:"container_id,omitempty"`
	FailureReason   string        `gorm:"type:text" json:"failure_reason,omitempty"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
	ReviewedBy      string        `gorm:"type:text" json:"reviewed_by,omitempty"`
	ReviewNotes     string        `gorm:"type:text" json:"review_notes,omitempty"`
	PostedAt        *time.Time    `json:"posted_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName returns the database table name for Content.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Content) TableName() string {
	return "contents"
}

// Caption returns the caption text stored in the idea artifact, or an
// empty string when no idea has been generated yet.
func (c *Content) Caption() string {
	if c.Idea == nil {
		return ""
	}
	if v, ok := c.Idea["caption"].(string); ok {
		return v
	}
	return ""
}

// Title returns the title stored in the idea artifact, or an empty string.
func (c *Content) Title() string {
	if c.Idea == nil {
		return ""
	}
	if v, ok := c.Idea["title"].(string); ok {
		return v
	}
	return ""
}
