package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*store.Store, *game.Engine, *models.User) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	engine := game.New(st, config.DefaultEconomy(),
		game.WithClock(game.ClockFunc(func() time.Time { return testNow })),
		game.WithLocation(time.UTC),
		game.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	user, err := st.CreateUser(context.Background(), "reporter", testNow)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return st, engine, user
}

func addTask(t *testing.T, st *store.Store, user *models.User, priority models.TaskPriority, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		UserID:    user.ID,
		Title:     string(priority) + " " + string(status),
		Priority:  priority,
		Status:    status,
		DueAt:     testNow,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if err := st.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestDashboard(t *testing.T) {
	st, engine, user := setup(t)
	ctx := context.Background()

	addTask(t, st, user, models.PriorityLow, models.StatusPending)
	addTask(t, st, user, models.PriorityHigh, models.StatusInProgress)
	addTask(t, st, user, models.PriorityMedium, models.StatusFailed)
	done := addTask(t, st, user, models.PriorityLow, models.StatusPending)
	if _, err := engine.CompleteTask(ctx, done, testNow); err != nil {
		t.Fatalf("complete: %v", err)
	}

	fresh, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	summary, err := Dashboard(ctx, st, engine, fresh)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if summary.Progress.XP != 35 || summary.Progress.Level != 1 || summary.Progress.Rank != "Procrastinator" {
		t.Fatalf("unexpected progress: %+v", summary.Progress)
	}
	if summary.Progress.NextRank != "Dabbler" || summary.Progress.XPToNextRank != 65 {
		t.Fatalf("unexpected next rank: %+v", summary.Progress)
	}
	if summary.Streak != 1 || summary.LongestStreak != 1 {
		t.Fatalf("unexpected streak: %d/%d", summary.Streak, summary.LongestStreak)
	}
	if len(summary.Tasks) != len(models.AllStatuses()) {
		t.Fatalf("expected every status listed, got %+v", summary.Tasks)
	}
	if summary.Count(models.StatusPending) != 1 || summary.Count(models.StatusCompleted) != 1 ||
		summary.Count(models.StatusOverdue) != 0 || summary.TotalTasks != 4 {
		t.Fatalf("unexpected counts: %+v", summary.Tasks)
	}
	if summary.CompletionRate != 0.5 {
		t.Fatalf("expected completion rate 0.5, got %v", summary.CompletionRate)
	}
	if len(summary.Achievements) != 1 || summary.Available != 3 {
		t.Fatalf("expected 1 of 3 achievements, got %d of %d", len(summary.Achievements), summary.Available)
	}
}

func TestDashboardEmpty(t *testing.T) {
	st, engine, user := setup(t)

	summary, err := Dashboard(context.Background(), st, engine, user)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.TotalTasks != 0 || summary.CompletionRate != 0 || summary.LastCompletion != nil {
		t.Fatalf("unexpected empty summary: %+v", summary)
	}
}

func TestByPriority(t *testing.T) {
	st, _, user := setup(t)

	addTask(t, st, user, models.PriorityCritical, models.StatusPending)
	addTask(t, st, user, models.PriorityCritical, models.StatusCompleted)
	addTask(t, st, user, models.PriorityCritical, models.StatusFailed)
	addTask(t, st, user, models.PriorityLow, models.StatusOverdue)

	rows, err := ByPriority(context.Background(), st, user)
	if err != nil {
		t.Fatalf("by priority: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected one row per priority, got %d", len(rows))
	}
	if rows[0].Priority != models.PriorityLow || rows[0].Total != 1 || rows[0].Open != 1 {
		t.Fatalf("unexpected LOW row: %+v", rows[0])
	}
	if rows[1].Total != 0 || rows[2].Total != 0 {
		t.Fatalf("expected empty MEDIUM/HIGH rows, got %+v %+v", rows[1], rows[2])
	}
	want := PriorityRow{Priority: models.PriorityCritical, Total: 3, Open: 1, Completed: 1, Failed: 1}
	if rows[3] != want {
		t.Fatalf("expected %+v, got %+v", want, rows[3])
	}
}

type failingCounter struct{}

func (failingCounter) CountTasksByStatus(context.Context, int64) (map[models.TaskStatus]int, error) {
	return nil, errors.New("boom")
}

func (failingCounter) CountTasksByPriority(context.Context, int64, models.TaskStatus) (map[models.TaskPriority]int, error) {
	return nil, errors.New("boom")
}

func TestReportsPropagateStoreErrors(t *testing.T) {
	_, engine, user := setup(t)
	if _, err := Dashboard(context.Background(), failingCounter{}, engine, user); err == nil {
		t.Fatal("expected dashboard error")
	}
	if _, err := ByPriority(context.Background(), failingCounter{}, user); err == nil {
		t.Fatal("expected by-priority error")
	}
}
