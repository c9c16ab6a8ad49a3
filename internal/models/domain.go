package models

import (
	"fmt"
	"strings"
)

// TaskPriority is a lookup key into the reward and penalty tables.
type TaskPriority string

const (
	PriorityLow      TaskPriority = "LOW"
	PriorityMedium   TaskPriority = "MEDIUM"
	PriorityHigh     TaskPriority = "HIGH"
	PriorityCritical TaskPriority = "CRITICAL"
)

// TaskStatus defines allowed lifecycle states for tasks.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusOverdue    TaskStatus = "OVERDUE"
	StatusFailed     TaskStatus = "FAILED"
)

const DefaultPriority = PriorityMedium

var allPriorities = []TaskPriority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

var allStatuses = []TaskStatus{
	StatusPending,
	StatusInProgress,
	StatusCompleted,
	StatusOverdue,
	StatusFailed,
}

// Statuses the overdue sweep may move to OVERDUE.
var openTaskStatuses = []TaskStatus{
	StatusPending,
	StatusInProgress,
}

// AllPriorities returns every priority in severity order.
func AllPriorities() []TaskPriority {
	out := make([]TaskPriority, len(allPriorities))
	copy(out, allPriorities)
	return out
}

// AllStatuses returns every status in lifecycle order.
func AllStatuses() []TaskStatus {
	out := make([]TaskStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

func OpenTaskStatuses() []TaskStatus {
	out := make([]TaskStatus, len(openTaskStatuses))
	copy(out, openTaskStatuses)
	return out
}

func IsValidTaskPriority(priority TaskPriority) bool {
	for _, p := range allPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

func IsValidTaskStatus(status TaskStatus) bool {
	for _, s := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the engine treats the status as absorbing.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	value := TaskPriority(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("priority is required")
	}
	if !IsValidTaskPriority(value) {
		return "", fmt.Errorf("invalid priority: %s", raw)
	}
	return value, nil
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	value := TaskStatus(normalized)
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTaskStatus(value) {
		return "", fmt.Errorf("invalid status: %s", raw)
	}
	return value, nil
}

// StatusStrings converts statuses to their persisted names.
func StatusStrings(values []TaskStatus) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, string(value))
	}
	return out
}
