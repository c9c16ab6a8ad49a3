package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *store.Store
	tasks    *TaskService
	profiles *ProfileService
	user     *models.User
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	env := &testEnv{store: st, now: testNow}
	clock := game.ClockFunc(func() time.Time { return env.now })
	engine := game.New(st, config.DefaultEconomy(),
		game.WithClock(clock),
		game.WithLocation(time.UTC),
		game.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	env.tasks = NewTaskService(st, engine, time.UTC, clock)
	env.profiles = NewProfileService(st, clock)

	user, err := env.profiles.Create(context.Background(), "test_user")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	env.user = user
	return env
}

func (env *testEnv) mustCreate(t *testing.T, title, priority, due string) *models.Task {
	t.Helper()
	task, err := env.tasks.Create(context.Background(), CreateTaskInput{
		UserID:   env.user.ID,
		Title:    title,
		Priority: priority,
		Due:      due,
	})
	if err != nil {
		t.Fatalf("create %q: %v", title, err)
	}
	return task
}

func TestParseDue(t *testing.T) {
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "date and time", input: "2025-03-10 18:00", want: time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)},
		{name: "T separator", input: "2025-03-10T18:00", want: time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)},
		{name: "date only is end of day", input: "2025-03-10", want: time.Date(2025, 3, 10, 21, 59, 0, 0, time.UTC)},
		{name: "rfc3339 keeps its zone", input: "2025-03-10T18:00:00Z", want: time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)},
		{name: "surrounding space", input: "  2025-03-10 18:00  ", want: time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)},
		{name: "empty", input: "", wantErr: true},
		{name: "words", input: "tomorrow", wantErr: true},
		{name: "bad month", input: "2025-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDue(tt.input, plusTwo)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTaskServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.tasks.Create(ctx, CreateTaskInput{
		UserID:      env.user.ID,
		Title:       "  Write report  ",
		Description: "quarterly",
		Priority:    "high",
		Due:         "2025-03-12 17:00",
		Category:    "Home Chores",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected id assigned")
	}
	if task.Title != "Write report" || task.Priority != models.PriorityHigh || task.Status != models.StatusPending {
		t.Fatalf("unexpected task: %+v", task)
	}
	if task.Category != "home-chores" {
		t.Fatalf("expected slugged category, got %q", task.Category)
	}

	stored, err := env.store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.DueAt.Equal(time.Date(2025, 3, 12, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected stored due: %v", stored.DueAt)
	}

	defaulted := env.mustCreate(t, "No priority", "", "2025-03-12")
	if defaulted.Priority != models.PriorityMedium {
		t.Fatalf("expected default MEDIUM, got %s", defaulted.Priority)
	}
}

func TestTaskServiceCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateTaskInput
		want string
	}{
		{name: "missing title", in: CreateTaskInput{UserID: env.user.ID, Title: "  ", Due: "2025-03-12"}, want: "title is required"},
		{name: "long title", in: CreateTaskInput{UserID: env.user.ID, Title: strings.Repeat("x", maxTitleLength+1), Due: "2025-03-12"}, want: "at most"},
		{name: "bad priority", in: CreateTaskInput{UserID: env.user.ID, Title: "x", Priority: "urgent", Due: "2025-03-12"}, want: "invalid priority"},
		{name: "missing due", in: CreateTaskInput{UserID: env.user.ID, Title: "x"}, want: "due date is required"},
		{name: "missing user", in: CreateTaskInput{Title: "x", Due: "2025-03-12"}, want: "user is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.Create(ctx, tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindInvalidArgument {
				t.Fatalf("expected invalid_argument, got %s (%v)", KindOf(err), err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestTaskServiceGetScopesToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, "Mine", "low", "2025-03-12")

	other, err := env.profiles.Create(ctx, "other_user")
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	if _, err := env.tasks.Get(ctx, other.ID, task.ID); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found for foreign task, got %v", err)
	}
	if _, err := env.tasks.Get(ctx, env.user.ID, 9999); KindOf(err) != KindNotFound {
		t.Fatalf("expected not_found for missing task, got %v", err)
	}
	if _, err := env.tasks.Get(ctx, env.user.ID, 0); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for id 0, got %v", err)
	}
}

func TestTaskServiceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.mustCreate(t, "Later", "low", "2025-03-20")
	first := env.mustCreate(t, "Sooner", "critical", "2025-03-11")
	done := env.mustCreate(t, "Done", "medium", "2025-03-15")
	if _, _, err := env.tasks.Complete(ctx, env.user.ID, done.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	all, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != first.ID {
		t.Fatalf("expected 3 tasks soonest first, got %+v", all)
	}

	open, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID, Statuses: []string{"pending,in-progress"}})
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open tasks, got %d", len(open))
	}

	critical, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID, Priority: "Critical"})
	if err != nil {
		t.Fatalf("list critical: %v", err)
	}
	if len(critical) != 1 || critical[0].ID != first.ID {
		t.Fatalf("expected only critical task, got %+v", critical)
	}

	dueSoon, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID, DueBefore: "2025-03-16"})
	if err != nil {
		t.Fatalf("list due before: %v", err)
	}
	if len(dueSoon) != 2 {
		t.Fatalf("expected 2 tasks due before 16th, got %d", len(dueSoon))
	}

	if _, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID, Statuses: []string{"archived"}}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for bad status, got %v", err)
	}
	if _, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID, Limit: -1}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for negative limit, got %v", err)
	}
}

func TestTaskServiceUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, "Draft", "low", "2025-03-12")

	title := "Final"
	priority := "critical"
	category := "Deep Work"
	updated, err := env.tasks.Update(ctx, env.user.ID, task.ID, UpdateTaskInput{Title: &title, Priority: &priority, Category: &category})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Final" || updated.Priority != models.PriorityCritical || updated.Category != "deep-work" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := env.tasks.Update(ctx, env.user.ID, task.ID, UpdateTaskInput{}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for empty update, got %v", err)
	}
	empty := ""
	if _, err := env.tasks.Update(ctx, env.user.ID, task.ID, UpdateTaskInput{Title: &empty}); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for blank title, got %v", err)
	}

	if _, _, err := env.tasks.Complete(ctx, env.user.ID, task.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := env.tasks.Update(ctx, env.user.ID, task.ID, UpdateTaskInput{Title: &title}); KindOf(err) != KindConflict {
		t.Fatalf("expected conflict editing completed task, got %v", err)
	}
}

func TestTaskServiceUpdateReopensOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, "Slipped", "medium", "2025-03-09 12:00")

	if _, err := env.store.MarkOverdue(ctx, env.now); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	due := "2025-03-14"
	updated, err := env.tasks.Update(ctx, env.user.ID, task.ID, UpdateTaskInput{Due: &due})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.StatusPending {
		t.Fatalf("expected PENDING after moving deadline forward, got %s", updated.Status)
	}
}

func TestTaskServiceStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, "Begin", "medium", "2025-03-12")

	started, err := env.tasks.Start(ctx, env.user.ID, task.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != models.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}
	again, err := env.tasks.Start(ctx, env.user.ID, task.ID)
	if err != nil || again.Status != models.StatusInProgress {
		t.Fatalf("expected idempotent start, got %v (err: %v)", again, err)
	}

	if _, _, err := env.tasks.Fail(ctx, env.user.ID, task.ID); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if _, err := env.tasks.Start(ctx, env.user.ID, task.ID); KindOf(err) != KindConflict {
		t.Fatalf("expected conflict starting failed task, got %v", err)
	}
}

func TestTaskServiceCompleteAndFail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	task := env.mustCreate(t, "Ship", "low", "2025-03-10 09:00")

	completed, outcome, err := env.tasks.Complete(ctx, env.user.ID, task.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", completed.Status)
	}
	if outcome.TaskXP != 10 || outcome.AchievementXP != 25 || len(outcome.Unlocked) != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}

	_, _, err = env.tasks.Complete(ctx, env.user.ID, task.ID)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict completing twice, got %v", err)
	}
	_, _, err = env.tasks.Fail(ctx, env.user.ID, task.ID)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict failing completed task, got %v", err)
	}

	user, err := env.store.GetUserByID(ctx, env.user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.XP != 35 {
		t.Fatalf("expected 35 xp, got %d", user.XP)
	}
}

func TestTaskServiceImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doc := `---
priority: high
due: 2025-03-15 18:00
category: Garden Work
description: weekend list
---
# Weekend

- Mow lawn
* [ ] Trim hedge
- [x] Water plants

Some trailing prose.
`
	created, err := env.tasks.Import(ctx, env.user.ID, doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(created))
	}
	if created[1].Title != "Trim hedge" || created[2].Title != "Water plants" {
		t.Fatalf("expected checkbox markers stripped, got %q, %q", created[1].Title, created[2].Title)
	}
	for _, task := range created {
		if task.Priority != models.PriorityHigh || task.Category != "garden-work" || task.Description != "weekend list" {
			t.Fatalf("front matter not applied: %+v", task)
		}
		if !task.DueAt.Equal(time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)) {
			t.Fatalf("unexpected due: %v", task.DueAt)
		}
	}
}

func TestTaskServiceImportIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tasks.Import(ctx, env.user.ID, "---\npriority: sky-high\ndue: 2025-03-15\n---\n- One\n- Two\n")
	if KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	if !strings.Contains(err.Error(), "item 1") {
		t.Fatalf("expected item position in error, got %v", err)
	}

	tasks, err := env.tasks.List(ctx, ListTasksInput{UserID: env.user.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks created, got %d", len(tasks))
	}

	if _, err := env.tasks.Import(ctx, env.user.ID, "---\ndue: 2025-03-15\n"); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for unclosed front matter, got %v", err)
	}
	if _, err := env.tasks.Import(ctx, env.user.ID, "just prose"); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for document without items, got %v", err)
	}
}
