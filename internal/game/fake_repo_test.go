package game

import (
	"context"
	"fmt"
	"time"

	"gamelife/internal/models"
	"gamelife/internal/store"
)

type xpWrite struct {
	UserID int64
	XP     int
	Level  int
}

// fakeRepo is an in-memory ProgressStore that records writes.
type fakeRepo struct {
	users        map[int64]*models.User
	tasks        map[int64]*models.Task
	unlocks      []models.AchievementUnlock
	xpWrites     []xpWrite
	streakWrites int
	statusWrites int
}

var _ store.ProgressStore = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users: map[int64]*models.User{},
		tasks: map[int64]*models.Task{},
	}
}

func (r *fakeRepo) addUser(user models.User) {
	if user.Level == 0 {
		user.Level = 1
	}
	r.users[user.ID] = &user
}

func (r *fakeRepo) addTask(task models.Task) *models.Task {
	if task.ID == 0 {
		task.ID = int64(len(r.tasks) + 1)
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	stored := task
	r.tasks[task.ID] = &stored
	return &task
}

func (r *fakeRepo) lastXPWrite() (xpWrite, bool) {
	if len(r.xpWrites) == 0 {
		return xpWrite{}, false
	}
	return r.xpWrites[len(r.xpWrites)-1], true
}

func (r *fakeRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeRepo) UpdateUserXP(_ context.Context, id int64, xp, level int) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	user.XP = xp
	user.Level = level
	r.xpWrites = append(r.xpWrites, xpWrite{UserID: id, XP: xp, Level: level})
	return nil
}

func (r *fakeRepo) UpdateUserStreak(_ context.Context, id int64, streak, longestStreak int, last time.Time) error {
	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %d: %w", id, store.ErrNotFound)
	}
	user.Streak = streak
	user.LongestStreak = longestStreak
	user.LastCompletionDate = &last
	r.streakWrites++
	return nil
}

func (r *fakeRepo) UpdateTaskStatus(_ context.Context, id int64, status models.TaskStatus, completedAt *time.Time) error {
	task, ok := r.tasks[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, store.ErrNotFound)
	}
	task.Status = status
	task.CompletedAt = completedAt
	r.statusWrites++
	return nil
}

func (r *fakeRepo) GetTasks(_ context.Context, userID int64, statuses ...models.TaskStatus) ([]models.Task, error) {
	var out []models.Task
	for _, task := range r.tasks {
		if task.UserID != userID {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, task.Status) {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeRepo) CountTasks(ctx context.Context, userID int64, statuses ...models.TaskStatus) (int, error) {
	tasks, err := r.GetTasks(ctx, userID, statuses...)
	return len(tasks), err
}

func (r *fakeRepo) ListAchievementUnlocks(_ context.Context, userID int64) ([]models.AchievementUnlock, error) {
	var out []models.AchievementUnlock
	for _, unlock := range r.unlocks {
		if unlock.UserID == userID {
			out = append(out, unlock)
		}
	}
	return out, nil
}

func (r *fakeRepo) RecordAchievementUnlock(_ context.Context, userID int64, key string, at time.Time) error {
	for _, unlock := range r.unlocks {
		if unlock.UserID == userID && unlock.Key == key {
			return nil
		}
	}
	r.unlocks = append(r.unlocks, models.AchievementUnlock{UserID: userID, Key: key, UnlockedAt: at})
	return nil
}

func containsStatus(statuses []models.TaskStatus, status models.TaskStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// fakeClock is a settable Clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advanceDays(days int) {
	c.now = c.now.AddDate(0, 0, days)
}
