package store

import (
	"context"
	"fmt"
	"time"

	"gamelife/internal/models"
)

// StoreInfo summarizes the database contents.
type StoreInfo struct {
	SchemaVersion int                       `json:"schema_version"`
	Users         int                       `json:"users"`
	TotalTasks    int                       `json:"total_tasks"`
	TaskCounts    map[models.TaskStatus]int `json:"task_counts"`
}

// CleanupResult lists the finished tasks a cleanup removed, or would remove
// when DryRun is set.
type CleanupResult struct {
	TaskIDs []int64 `json:"task_ids"`
	Count   int     `json:"count"`
	DryRun  bool    `json:"dry_run"`
}

// StoreInfo returns the schema version and row counts across all users.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	info := &StoreInfo{TaskCounts: make(map[models.TaskStatus]int)}

	version, err := currentVersion(s.db)
	if err != nil {
		return nil, err
	}
	info.SchemaVersion = version

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&info.Users); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		info.TaskCounts[models.TaskStatus(status)] = count
		info.TotalTasks += count
	}
	return info, rows.Err()
}

// CleanupFinishedTasks deletes COMPLETED and FAILED tasks last touched before
// cutoff. A zero userID covers every user. XP already awarded is unaffected.
func (s *Store) CleanupFinishedTasks(ctx context.Context, userID int64, cutoff time.Time, dryRun bool) (result *CleanupResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	where := "status IN (?, ?) AND COALESCE(completed_at, updated_at) < ?"
	args := []any{string(models.StatusCompleted), string(models.StatusFailed), formatTime(cutoff)}
	if userID != 0 {
		where += " AND user_id = ?"
		args = append(args, userID)
	}

	rows, err := tx.QueryContext(ctx, "SELECT id FROM tasks WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	result = &CleanupResult{TaskIDs: []int64{}, DryRun: dryRun}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		result.TaskIDs = append(result.TaskIDs, id)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	result.Count = len(result.TaskIDs)

	if dryRun || result.Count == 0 {
		return result, tx.Rollback()
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM tasks WHERE "+where, args...); err != nil {
		return nil, fmt.Errorf("delete finished tasks: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return result, nil
}
