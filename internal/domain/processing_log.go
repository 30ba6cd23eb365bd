package domain

import "time"

// LogStatus represents the status of a single layer execution attempt.
// Values include LogStatusRunning, LogStatusCompleted, and LogStatusFailed.
type LogStatus string

const (
	LogStatusRunning   LogStatus = "running"
	LogStatusCompleted LogStatus = "completed"
	LogStatusFailed    LogStatus = "failed"
)

// ProcessingLog records one execution attempt of one pipeline layer for
// one content item. A layer may accumulate several attempts; resume logic
// trusts only the most recent completed row.
type ProcessingLog struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentID   string     `gorm:"type:text;not null;index:idx_processing_logs_content" json:"content_id"`
	Layer       Layer      `gorm:"type:text;not null" json:"layer"`
	Status      LogStatus  `gorm:"type:text;default:running" json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName returns the database table name for ProcessingLog.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (ProcessingLog) TableName() string {
	return "processing_logs"
}
