package models

import "time"

// User is a local player profile and its progression state.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	Streak        int    `json:"streak"`
	LongestStreak int    `json:"longest_streak"`
	// LastCompletionDate holds a calendar date at midnight UTC.
	LastCompletionDate *time.Time `json:"last_completion_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// AchievementUnlock records that a user was awarded an achievement.
type AchievementUnlock struct {
	UserID     int64     `json:"user_id"`
	Key        string    `json:"key"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
