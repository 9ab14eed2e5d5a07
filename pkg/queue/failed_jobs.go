package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is a job that exhausted its retries.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "tiffin_failed_jobs" }

// UseDB persists failed jobs to db as well as keeping them in memory. The
// table is created by the migrations.
func (m *Manager) UseDB(db *gorm.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedDB = db
}

func (m *Manager) persistFailed(ctx context.Context, env envelope, lastErr error, attempts int) {
	now := time.Now()

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: env.Type, Payload: env.Payload, Err: lastErr, FailedAt: now, Attempts: attempts,
	})
	db := m.failedDB
	m.mu.Unlock()

	if db == nil {
		return
	}
	record := FailedJobRecord{
		JobType:  env.Type,
		Payload:  string(env.Payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: now,
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		logger.Error("queue: persist failed job", "type", env.Type, "error", err)
	}
}
