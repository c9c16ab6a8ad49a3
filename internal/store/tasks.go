package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamelife/internal/models"
)

const taskColumns = "id, user_id, title, description, priority, status, category, due_at, completed_at, created_at, updated_at"

// TaskUpdate carries editable task fields; nil pointers are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Status      *models.TaskStatus
	DueAt       *time.Time
	Category    *string
	UpdatedAt   time.Time
}

// CreateTask inserts a task and assigns its id.
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("task is required")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			user_id, title, description, priority, status, category, due_at, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.UserID,
		task.Title,
		nullIfEmpty(task.Description),
		string(task.Priority),
		string(task.Status),
		nullIfEmpty(task.Category),
		formatTime(task.DueAt),
		nullTime(task.CompletedAt),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// GetTask returns a task by id or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return task, err
}

// UpdateTask updates mutable fields on a task.
func (s *Store) UpdateTask(ctx context.Context, id int64, update TaskUpdate) error {
	set := []string{}
	args := []any{}

	if update.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, nullIfEmpty(*update.Description))
	}
	if update.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, string(*update.Priority))
	}
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, string(*update.Status))
	}
	if update.DueAt != nil {
		set = append(set, "due_at = ?")
		args = append(args, formatTime(*update.DueAt))
	}
	if update.Category != nil {
		set = append(set, "category = ?")
		args = append(args, nullIfEmpty(*update.Category))
	}

	set = append(set, "updated_at = ?")
	args = append(args, formatTime(update.UpdatedAt))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(set, ", "))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return requireAffected(result, "task", id)
}

// UpdateTaskStatus sets status and completion time. A nil completedAt clears it.
func (s *Store) UpdateTaskStatus(ctx context.Context, id int64, status models.TaskStatus, completedAt *time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET status = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, string(status), nullTime(completedAt), formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	return requireAffected(result, "task", id)
}

// ListTasks returns tasks matching the provided filter, soonest due first.
func (s *Store) ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTasks returns a user's tasks, optionally restricted to statuses.
func (s *Store) GetTasks(ctx context.Context, userID int64, statuses ...models.TaskStatus) ([]models.Task, error) {
	return s.ListTasks(ctx, TaskFilter{UserID: userID, Statuses: statuses})
}

// CountTasks counts a user's tasks, optionally restricted to statuses.
func (s *Store) CountTasks(ctx context.Context, userID int64, statuses ...models.TaskStatus) (int, error) {
	query := "SELECT COUNT(*) FROM tasks WHERE user_id = ?"
	args := []any{userID}
	if len(statuses) > 0 {
		query += fmt.Sprintf(" AND status IN (%s)", placeholders(len(statuses)))
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountTasksByPriority counts a user's tasks in one status, grouped by priority.
func (s *Store) CountTasksByPriority(ctx context.Context, userID int64, status models.TaskStatus) (map[models.TaskPriority]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT priority, COUNT(*) FROM tasks
		WHERE user_id = ? AND status = ?
		GROUP BY priority
	`, userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TaskPriority]int)
	for rows.Next() {
		var priority string
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[models.TaskPriority(priority)] = count
	}
	return counts, rows.Err()
}

// CountTasksByStatus counts a user's tasks grouped by status.
func (s *Store) CountTasksByStatus(ctx context.Context, userID int64) (map[models.TaskStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM tasks
		WHERE user_id = ?
		GROUP BY status
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.TaskStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.TaskStatus(status)] = count
	}
	return counts, rows.Err()
}

// MarkOverdue moves open tasks due before cutoff to OVERDUE and returns their ids.
func (s *Store) MarkOverdue(ctx context.Context, cutoff time.Time) (ids []int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	open := models.OpenTaskStatuses()
	args := []any{formatTime(cutoff)}
	for _, status := range open {
		args = append(args, string(status))
	}

	rows, err := tx.QueryContext(ctx, fmt.Sprintf(
		"SELECT id FROM tasks WHERE due_at < ? AND status IN (%s) ORDER BY id",
		placeholders(len(open)),
	), args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, tx.Commit()
	}

	updateArgs := []any{string(models.StatusOverdue), formatTime(time.Now())}
	for _, id := range ids {
		updateArgs = append(updateArgs, id)
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf(
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id IN (%s)",
		placeholders(len(ids)),
	), updateArgs...); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*models.Task, error) {
	var task models.Task
	var description, category, completedAt sql.NullString
	var priority, status string
	var dueAt, createdAt, updatedAt string

	if err := scanner.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&priority,
		&status,
		&category,
		&dueAt,
		&completedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Category = category.String
	task.Priority = models.TaskPriority(priority)
	task.Status = models.TaskStatus(status)

	var err error
	if task.DueAt, err = parseTime(dueAt); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if completedAt.Valid && completedAt.String != "" {
		parsed, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &parsed
	}

	return &task, nil
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}
