package game

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gamelife/internal/config"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "game.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestEngineAgainstSQLite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	clock := &fakeClock{now: baseTime}
	engine := newTestEngine(st, penaltyEconomy(), clock)

	user, err := st.CreateUser(ctx, "test_user", baseTime)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	newTask := func(title string, priority models.TaskPriority, due time.Time) *models.Task {
		t.Helper()
		task := &models.Task{
			UserID:    user.ID,
			Title:     title,
			Priority:  priority,
			Status:    models.StatusPending,
			DueAt:     due,
			CreatedAt: clock.now,
			UpdatedAt: clock.now,
		}
		if err := st.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
		return task
	}

	early := newTask("Early", models.PriorityMedium, baseTime.AddDate(0, 0, 7))
	xp, err := engine.CompleteTask(ctx, early, baseTime)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if xp != 37+25 {
		t.Fatalf("expected 37 + First Steps 25, got %d", xp)
	}

	stored, err := st.GetTask(ctx, early.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if stored.Status != models.StatusCompleted || stored.CompletedAt == nil || !stored.CompletedAt.Equal(baseTime) {
		t.Fatalf("unexpected stored task: %+v", stored)
	}

	clock.advanceDays(1)
	late := newTask("Late", models.PriorityHigh, baseTime)
	if _, err := engine.CompleteTask(ctx, late, clock.now); err != nil {
		t.Fatalf("complete late: %v", err)
	}

	got, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 112 || got.Level != 2 {
		t.Fatalf("expected xp=112 level=2, got xp=%d level=%d", got.XP, got.Level)
	}
	if got.Streak != 2 || got.LongestStreak != 2 {
		t.Fatalf("expected streak 2/2, got %d/%d", got.Streak, got.LongestStreak)
	}
	wantDate := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if got.LastCompletionDate == nil || !got.LastCompletionDate.Equal(wantDate) {
		t.Fatalf("expected last completion %v, got %v", wantDate, got.LastCompletionDate)
	}

	failed := newTask("Missed", models.PriorityLow, baseTime)
	delta, err := engine.FailTask(ctx, failed)
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if delta != -15 {
		t.Fatalf("expected -15, got %d", delta)
	}

	got, err = st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 97 || got.Level != 1 {
		t.Fatalf("expected xp=97 level=1, got xp=%d level=%d", got.XP, got.Level)
	}

	unlocked, err := engine.UnlockedAchievements(ctx, got)
	if err != nil {
		t.Fatalf("unlocked: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Key != "first_steps" {
		t.Fatalf("expected first_steps persisted, got %+v", unlocked)
	}
}

func TestEngineDefaultEconomyWithoutPenaltyAgainstSQLite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	engine := newTestEngine(st, config.DefaultEconomy(), &fakeClock{now: baseTime})

	user, err := st.CreateUser(ctx, "floor_user", baseTime)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := st.UpdateUserXP(ctx, user.ID, 40, 1); err != nil {
		t.Fatalf("seed xp: %v", err)
	}
	task := &models.Task{UserID: user.ID, Title: "Skipped", Priority: models.PriorityCritical, Status: models.StatusOverdue, DueAt: baseTime}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if _, err := engine.FailTask(ctx, task); err != nil {
		t.Fatalf("fail: %v", err)
	}
	got, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.XP != 40 {
		t.Fatalf("expected xp unchanged at 40, got %d", got.XP)
	}
}
