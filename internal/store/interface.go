package store

import (
	"context"
	"time"

	"gamelife/internal/models"
)

// ProgressStore is the repository surface consumed by the progression engine.
type ProgressStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserXP(ctx context.Context, id int64, xp, level int) error
	UpdateUserStreak(ctx context.Context, id int64, streak, longestStreak int, lastCompletionDate time.Time) error
	UpdateTaskStatus(ctx context.Context, id int64, status models.TaskStatus, completedAt *time.Time) error
	GetTasks(ctx context.Context, userID int64, statuses ...models.TaskStatus) ([]models.Task, error)
	CountTasks(ctx context.Context, userID int64, statuses ...models.TaskStatus) (int, error)
	ListAchievementUnlocks(ctx context.Context, userID int64) ([]models.AchievementUnlock, error)
	RecordAchievementUnlock(ctx context.Context, userID int64, key string, unlockedAt time.Time) error
}

// UserStore manages user profiles.
type UserStore interface {
	CreateUser(ctx context.Context, username string, now time.Time) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TaskStore manages task records.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, update TaskUpdate) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	UpdateTaskStatus(ctx context.Context, id int64, status models.TaskStatus, completedAt *time.Time) error
	MarkOverdue(ctx context.Context, cutoff time.Time) ([]int64, error)
	CountTasksByPriority(ctx context.Context, userID int64, status models.TaskStatus) (map[models.TaskPriority]int, error)
	CountTasksByStatus(ctx context.Context, userID int64) (map[models.TaskStatus]int, error)
}

var (
	_ ProgressStore = (*Store)(nil)
	_ UserStore     = (*Store)(nil)
	_ TaskStore     = (*Store)(nil)
)
