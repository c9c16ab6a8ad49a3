package store

import (
	"context"
	"time"

	"gamelife/internal/models"
)

// ListAchievementUnlocks returns a user's unlocks in unlock order.
func (s *Store) ListAchievementUnlocks(ctx context.Context, userID int64) ([]models.AchievementUnlock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, achievement_key, unlocked_at
		FROM user_achievements
		WHERE user_id = ?
		ORDER BY unlocked_at ASC, achievement_key ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocks := make([]models.AchievementUnlock, 0)
	for rows.Next() {
		var unlock models.AchievementUnlock
		var unlockedAt string
		if err := rows.Scan(&unlock.UserID, &unlock.Key, &unlockedAt); err != nil {
			return nil, err
		}
		parsed, err := parseTime(unlockedAt)
		if err != nil {
			return nil, err
		}
		unlock.UnlockedAt = parsed
		unlocks = append(unlocks, unlock)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return unlocks, nil
}

// RecordAchievementUnlock stores an unlock. Recording the same key twice is a no-op.
func (s *Store) RecordAchievementUnlock(ctx context.Context, userID int64, key string, unlockedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_achievements (user_id, achievement_key, unlocked_at)
		VALUES (?, ?, ?)
	`, userID, key, formatTime(unlockedAt))
	return err
}
