package models

import "time"

// Task is one unit of work owned by a user profile.
//
// CompletedAt is set if and only if Status is COMPLETED.
type Task struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueAt       time.Time    `json:"due_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Category    string       `json:"category,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
