package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type WindowRecord struct {
	Bucket      string `gorm:"primaryKey;size:191"`
	Hits        int    `gorm:"not null"`
	WindowStart int64  `gorm:"not null"`
	ExpiresAt   int64  `gorm:"not null;index"`
}

func (WindowRecord) TableName() string {
	return "rate_limit_windows"
}

// The row is only touched when the window has expired or still has room, so
// an empty RETURNING set means the hit was refused. Times are unix nanos to
// keep the arithmetic identical on postgres and sqlite.
const hitWindowSQL = `
INSERT INTO rate_limit_windows (bucket, hits, window_start, expires_at)
VALUES (@bucket, 1, @now, @expires)
ON CONFLICT (bucket) DO UPDATE SET
	hits = CASE WHEN rate_limit_windows.expires_at <= excluded.window_start
		THEN 1 ELSE rate_limit_windows.hits + 1 END,
	window_start = CASE WHEN rate_limit_windows.expires_at <= excluded.window_start
		THEN excluded.window_start ELSE rate_limit_windows.window_start END,
	expires_at = CASE WHEN rate_limit_windows.expires_at <= excluded.window_start
		THEN excluded.expires_at ELSE rate_limit_windows.expires_at END
WHERE rate_limit_windows.expires_at <= excluded.window_start
	OR rate_limit_windows.hits < @limit
RETURNING bucket, hits, window_start, expires_at`

// GormStore keeps windows in the application database so every instance
// behind the load balancer shares them.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&WindowRecord{})
}

func (s *GormStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Window, error) {
	var rows []WindowRecord

	err := s.db.WithContext(ctx).Raw(hitWindowSQL, map[string]interface{}{
		"bucket":  key,
		"now":     now.UnixNano(),
		"expires": now.Add(window).UnixNano(),
		"limit":   limit,
	}).Scan(&rows).Error
	if err != nil {
		return Window{}, fmt.Errorf("s.db.Raw(hitWindowSQL) -> %w", err)
	}

	if len(rows) > 0 {
		return recordToWindow(rows[0], true), nil
	}

	var current WindowRecord
	err = s.db.WithContext(ctx).First(&current, "bucket = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Window{Allowed: false, Start: now, ResetAt: now.Add(window)}, nil
		}

		return Window{}, fmt.Errorf("s.db.First -> %w", err)
	}

	return recordToWindow(current, false), nil
}

func (s *GormStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now.UnixNano()).Delete(&WindowRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("s.db.Delete -> %w", result.Error)
	}

	return result.RowsAffected, nil
}

func recordToWindow(r WindowRecord, allowed bool) Window {
	return Window{
		Allowed: allowed,
		Count:   r.Hits,
		Start:   time.Unix(0, r.WindowStart),
		ResetAt: time.Unix(0, r.ExpiresAt),
	}
}
