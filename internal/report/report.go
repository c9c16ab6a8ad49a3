// Package report derives read-only summaries of a user's progression and
// task history.
package report

import (
	"context"
	"fmt"
	"time"

	"gamelife/internal/game"
	"gamelife/internal/models"
)

// Counter is the store surface reports read from.
type Counter interface {
	CountTasksByStatus(ctx context.Context, userID int64) (map[models.TaskStatus]int, error)
	CountTasksByPriority(ctx context.Context, userID int64, status models.TaskStatus) (map[models.TaskPriority]int, error)
}

// StatusCount is the number of a user's tasks in one status.
type StatusCount struct {
	Status models.TaskStatus `json:"status"`
	Count  int               `json:"count"`
}

// Summary is the dashboard view of a user.
type Summary struct {
	UserID         int64                      `json:"user_id"`
	Username       string                     `json:"username"`
	Progress       game.LevelProgress         `json:"progress"`
	Streak         int                        `json:"streak"`
	LongestStreak  int                        `json:"longest_streak"`
	LastCompletion *time.Time                 `json:"last_completion,omitempty"`
	Tasks          []StatusCount              `json:"tasks"`
	TotalTasks     int                        `json:"total_tasks"`
	CompletionRate float64                    `json:"completion_rate"`
	Achievements   []game.UnlockedAchievement `json:"achievements"`
	Available      int                        `json:"achievements_available"`
}

// Count returns the number of tasks in status.
func (s Summary) Count(status models.TaskStatus) int {
	for _, c := range s.Tasks {
		if c.Status == status {
			return c.Count
		}
	}
	return 0
}

// Dashboard builds the summary for user. Every status appears in Tasks, in
// lifecycle order, even when its count is zero.
func Dashboard(ctx context.Context, st Counter, engine *game.Engine, user *models.User) (Summary, error) {
	byStatus, err := st.CountTasksByStatus(ctx, user.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("count tasks: %w", err)
	}
	unlocked, err := engine.UnlockedAchievements(ctx, user)
	if err != nil {
		return Summary{}, fmt.Errorf("list achievements: %w", err)
	}

	summary := Summary{
		UserID:         user.ID,
		Username:       user.Username,
		Progress:       engine.Progress(user),
		Streak:         user.Streak,
		LongestStreak:  user.LongestStreak,
		LastCompletion: user.LastCompletionDate,
		Achievements:   unlocked,
		Available:      len(engine.Achievements()),
	}
	for _, status := range models.AllStatuses() {
		count := byStatus[status]
		summary.Tasks = append(summary.Tasks, StatusCount{Status: status, Count: count})
		summary.TotalTasks += count
	}

	// Completion rate is over decided tasks only; open work does not dilute it.
	decided := byStatus[models.StatusCompleted] + byStatus[models.StatusFailed]
	if decided > 0 {
		summary.CompletionRate = float64(byStatus[models.StatusCompleted]) / float64(decided)
	}
	return summary, nil
}

// PriorityRow is one bar of the tasks-by-priority chart.
type PriorityRow struct {
	Priority  models.TaskPriority `json:"priority"`
	Total     int                 `json:"total"`
	Open      int                 `json:"open"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
}

// ByPriority breaks a user's tasks down by priority, lowest first.
func ByPriority(ctx context.Context, st Counter, user *models.User) ([]PriorityRow, error) {
	rows := make([]PriorityRow, 0, len(models.AllPriorities()))
	index := make(map[models.TaskPriority]int, len(models.AllPriorities()))
	for i, priority := range models.AllPriorities() {
		rows = append(rows, PriorityRow{Priority: priority})
		index[priority] = i
	}

	for _, status := range models.AllStatuses() {
		counts, err := st.CountTasksByPriority(ctx, user.ID, status)
		if err != nil {
			return nil, fmt.Errorf("count %s tasks: %w", status, err)
		}
		for priority, count := range counts {
			i, ok := index[priority]
			if !ok {
				continue
			}
			rows[i].Total += count
			switch status {
			case models.StatusCompleted:
				rows[i].Completed += count
			case models.StatusFailed:
				rows[i].Failed += count
			default:
				rows[i].Open += count
			}
		}
	}
	return rows, nil
}
