package game

import (
	"context"
	"time"

	"gamelife/internal/models"
)

// LevelProgress summarizes how far a user is into the current level and rank.
type LevelProgress struct {
	Level        int    `json:"level"`
	XP           int    `json:"xp"`
	XPIntoLevel  int    `json:"xp_into_level"`
	XPPerLevel   int    `json:"xp_per_level"`
	Rank         string `json:"rank"`
	NextRank     string `json:"next_rank,omitempty"`
	XPToNextRank int    `json:"xp_to_next_rank,omitempty"`
}

// Progress derives level and rank progress from the user's XP.
func (e *Engine) Progress(user *models.User) LevelProgress {
	per := e.econ.XPPerLevel
	p := LevelProgress{
		Level:       e.LevelFor(user.XP),
		XP:          user.XP,
		XPIntoLevel: user.XP % per,
		XPPerLevel:  per,
		Rank:        e.Rank(user),
	}
	for _, rank := range e.econ.Ranks {
		if rank.MinXP > user.XP {
			p.NextRank = rank.Name
			p.XPToNextRank = rank.MinXP - user.XP
			break
		}
	}
	return p
}

// UnlockedAchievement pairs a registered achievement with its unlock time.
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlocked_at"`
}

// UnlockedAchievements returns the user's persisted unlocks that match a
// registered achievement, in unlock order.
func (e *Engine) UnlockedAchievements(ctx context.Context, user *models.User) ([]UnlockedAchievement, error) {
	unlocks, err := e.repo.ListAchievementUnlocks(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]Achievement, len(e.achievements))
	for _, a := range e.achievements {
		byKey[a.Key] = a
	}

	out := make([]UnlockedAchievement, 0, len(unlocks))
	for _, unlock := range unlocks {
		a, ok := byKey[unlock.Key]
		if !ok {
			continue
		}
		out = append(out, UnlockedAchievement{Achievement: a, UnlockedAt: unlock.UnlockedAt})
	}
	return out, nil
}
