package history

import (
	"time"

	"gorm.io/gorm"
)

// SessionRepository handles session persistence
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db.GetDB()}
}

// Create inserts a new session row at the start of a run
func (r *SessionRepository) Create(s *Session) error {
	s.StartedAt = time.Now()
	return r.db.Create(s).Error
}

// Finish marks a session complete and records its frame count and duration
func (r *SessionRepository) Finish(s *Session, frames int) error {
	now := time.Now()
	s.Frames = frames
	s.FinishedAt = now
	s.DurationMS = now.Sub(s.StartedAt).Milliseconds()
	s.Completed = true
	return r.db.Model(s).Updates(map[string]interface{}{
		"frames":      s.Frames,
		"finished_at": s.FinishedAt,
		"duration_ms": s.DurationMS,
		"completed":   s.Completed,
	}).Error
}

// Recent returns the most recent sessions, newest first
func (r *SessionRepository) Recent(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	var sessions []Session
	err := r.db.Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// ByFingerprint returns sessions that used a key with the given fingerprint
func (r *SessionRepository) ByFingerprint(fp string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	var sessions []Session
	err := r.db.Where("key_fingerprint = ?", fp).
		Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}
