package game

import (
	"context"

	"gamelife/internal/models"
	"gamelife/internal/store"
)

// Achievement is a named predicate over a user's progression state that
// grants Reward XP when it holds.
type Achievement struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`

	Check func(ctx context.Context, user *models.User, repo store.ProgressStore) (bool, error) `json:"-"`
}

const (
	weekWarriorStreak     = 7
	centuryClubCompletion = 100
)

// DefaultAchievements returns the built-in achievement table in evaluation order.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{
			Key:         "first_steps",
			Name:        "First Steps",
			Description: "Complete your first task",
			Reward:      25,
			Check:       completedAtLeast(1),
		},
		{
			Key:         "week_warrior",
			Name:        "Week Warrior",
			Description: "Maintain a 7-day completion streak",
			Reward:      100,
			Check: func(_ context.Context, user *models.User, _ store.ProgressStore) (bool, error) {
				return user.Streak >= weekWarriorStreak, nil
			},
		},
		{
			Key:         "century_club",
			Name:        "Century Club",
			Description: "Complete 100 tasks",
			Reward:      500,
			Check:       completedAtLeast(centuryClubCompletion),
		},
	}
}

func completedAtLeast(n int) func(context.Context, *models.User, store.ProgressStore) (bool, error) {
	return func(ctx context.Context, user *models.User, repo store.ProgressStore) (bool, error) {
		count, err := repo.CountTasks(ctx, user.ID, models.StatusCompleted)
		if err != nil {
			return false, err
		}
		return count >= n, nil
	}
}

func achievementXP(achievements []Achievement) int {
	total := 0
	for _, a := range achievements {
		total += a.Reward
	}
	return total
}
