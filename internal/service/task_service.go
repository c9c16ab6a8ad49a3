package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

const maxListLimit = 1000

// CreateTaskInput describes a new task. Priority and Due are raw user input.
type CreateTaskInput struct {
	UserID      int64
	Title       string
	Description string
	Priority    string
	Due         string
	Category    string
}

// UpdateTaskInput carries edits; nil fields are left untouched.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Due         *string
	Category    *string
}

// ListTasksInput filters a user's tasks.
type ListTasksInput struct {
	UserID    int64
	Statuses  []string
	Priority  string
	Category  string
	DueBefore string
	Limit     int
	Offset    int
}

// TaskService centralizes task validation and routes lifecycle transitions
// through the progression engine.
type TaskService struct {
	store  store.TaskStore
	engine *game.Engine
	loc    *time.Location
	clock  game.Clock
}

// NewTaskService constructs a TaskService. Due dates without a zone are
// interpreted in loc.
func NewTaskService(st store.TaskStore, engine *game.Engine, loc *time.Location, clock game.Clock) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = game.SystemClock{}
	}
	return &TaskService{store: st, engine: engine, loc: loc, clock: clock}
}

// Create validates input and stores a PENDING task.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	task, err := s.buildTask(in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fromStore(err)
	}
	return task, nil
}

func (s *TaskService) buildTask(in CreateTaskInput) (*models.Task, error) {
	if in.UserID <= 0 {
		return nil, badRequest(fmt.Errorf("user is required"))
	}
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, badRequest(err)
	}
	priority, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, badRequest(err)
	}
	due, err := ParseDue(in.Due, s.loc)
	if err != nil {
		return nil, badRequest(err)
	}

	now := s.clock.Now().UTC()
	return &models.Task{
		UserID:      in.UserID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		Status:      models.StatusPending,
		DueAt:       due,
		Category:    normalizeCategory(in.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Get returns a task owned by userID.
func (s *TaskService) Get(ctx context.Context, userID, id int64) (*models.Task, error) {
	if id <= 0 {
		return nil, badRequest(fmt.Errorf("invalid task id"))
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	if task.UserID != userID {
		return nil, notFound(fmt.Errorf("task %d: %w", id, store.ErrNotFound))
	}
	return task, nil
}

// List returns a user's tasks matching the filter, soonest due first.
func (s *TaskService) List(ctx context.Context, in ListTasksInput) ([]models.Task, error) {
	filter := store.TaskFilter{UserID: in.UserID}

	statuses, err := normalizeStatuses(in.Statuses)
	if err != nil {
		return nil, badRequest(err)
	}
	filter.Statuses = statuses

	if strings.TrimSpace(in.Priority) != "" {
		priority, err := models.ParseTaskPriority(in.Priority)
		if err != nil {
			return nil, badRequest(err)
		}
		filter.Priority = priority
	}
	filter.Category = normalizeCategory(in.Category)

	if strings.TrimSpace(in.DueBefore) != "" {
		due, err := ParseDue(in.DueBefore, s.loc)
		if err != nil {
			return nil, badRequest(err)
		}
		filter.DueBefore = &due
	}

	if in.Limit < 0 || in.Offset < 0 {
		return nil, badRequest(fmt.Errorf("limit and offset must not be negative"))
	}
	filter.Limit = min(in.Limit, maxListLimit)
	filter.Offset = in.Offset

	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fromStore(err)
	}
	return tasks, nil
}

// Update edits an open task. Completed and failed tasks are immutable.
func (s *TaskService) Update(ctx context.Context, userID, id int64, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		return nil, conflict(fmt.Errorf("task %d is %s and can no longer be edited", id, strings.ToLower(string(task.Status))))
	}

	update := store.TaskUpdate{UpdatedAt: s.clock.Now().UTC()}
	changed := false

	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return nil, badRequest(err)
		}
		update.Title = &title
		changed = true
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		update.Description = &description
		changed = true
	}
	if in.Priority != nil {
		priority, err := models.ParseTaskPriority(*in.Priority)
		if err != nil {
			return nil, badRequest(err)
		}
		update.Priority = &priority
		changed = true
	}
	if in.Due != nil {
		due, err := ParseDue(*in.Due, s.loc)
		if err != nil {
			return nil, badRequest(err)
		}
		update.DueAt = &due
		changed = true
		// A new deadline in the future reopens an overdue task.
		if task.Status == models.StatusOverdue && due.After(s.clock.Now()) {
			pending := models.StatusPending
			update.Status = &pending
		}
	}
	if in.Category != nil {
		category := normalizeCategory(*in.Category)
		update.Category = &category
		changed = true
	}

	if !changed {
		return nil, badRequest(fmt.Errorf("no fields to update"))
	}

	if err := s.store.UpdateTask(ctx, id, update); err != nil {
		return nil, fromStore(err)
	}
	return s.Get(ctx, userID, id)
}

// Start moves a PENDING or OVERDUE task to IN_PROGRESS. Starting a task that
// is already in progress is a no-op.
func (s *TaskService) Start(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	switch task.Status {
	case models.StatusInProgress:
		return task, nil
	case models.StatusPending, models.StatusOverdue:
	default:
		return nil, conflict(fmt.Errorf("task %d is %s and cannot be started", id, strings.ToLower(string(task.Status))))
	}

	if err := s.store.UpdateTaskStatus(ctx, id, models.StatusInProgress, nil); err != nil {
		return nil, fromStore(err)
	}
	task.Status = models.StatusInProgress
	return task, nil
}

// Complete marks a task completed now and applies its XP.
func (s *TaskService) Complete(ctx context.Context, userID, id int64) (*models.Task, game.Outcome, error) {
	task, err := s.openTask(ctx, userID, id, "completed")
	if err != nil {
		return nil, game.Outcome{}, err
	}
	outcome, err := s.engine.Complete(ctx, task, s.clock.Now().UTC())
	if err != nil {
		return nil, game.Outcome{}, fromStore(err)
	}
	return task, outcome, nil
}

// Fail marks a task failed and applies its penalty.
func (s *TaskService) Fail(ctx context.Context, userID, id int64) (*models.Task, game.Outcome, error) {
	task, err := s.openTask(ctx, userID, id, "failed")
	if err != nil {
		return nil, game.Outcome{}, err
	}
	outcome, err := s.engine.Fail(ctx, task)
	if err != nil {
		return nil, game.Outcome{}, fromStore(err)
	}
	return task, outcome, nil
}

func (s *TaskService) openTask(ctx context.Context, userID, id int64, verb string) (*models.Task, error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task.Status.IsTerminal() {
		return nil, conflict(fmt.Errorf("task %d is already %s and cannot be %s",
			id, strings.ToLower(string(task.Status)), verb))
	}
	return task, nil
}
