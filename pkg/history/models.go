package history

import (
	"time"
)

// Session records a single scramble or descramble run.
type Session struct {
	ID             uint   `gorm:"primaryKey"`
	Tool           string `gorm:"size:16;index"` // "scramble" or "descramble"
	InputPath      string `gorm:"size:512"`
	OutputPath     string `gorm:"size:512"`
	Standard       string `gorm:"size:8"`
	Segments       int
	Permutation    bool
	Inversion      bool
	Shift          bool
	Backend        string `gorm:"size:16"`
	KeyFingerprint string `gorm:"size:16;index"` // short hash of the key, not the key
	StreamID       uint64
	Frames         int
	DurationMS     int64
	StartedAt      time.Time
	FinishedAt     time.Time
	Completed      bool
	CreatedAt      time.Time
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}
