package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"gamelife/internal/format"
	"gamelife/internal/game"
	"gamelife/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(w io.Writer, payload any) error {
	return outputFormatter.Write(w, payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func statusSymbol(status models.TaskStatus) string {
	switch status {
	case models.StatusInProgress:
		return "◐"
	case models.StatusCompleted:
		return "●"
	case models.StatusOverdue:
		return "!"
	case models.StatusFailed:
		return "✗"
	default:
		return "○"
	}
}

func writeTaskList(w io.Writer, tasks []models.Task, now time.Time) error {
	if len(tasks) == 0 {
		return writePlain(w, "no tasks\n")
	}
	for _, task := range tasks {
		if err := writePlain(w, "%s\n", formatTaskLine(task, now)); err != nil {
			return err
		}
	}
	return nil
}

func formatTaskLine(task models.Task, now time.Time) string {
	line := fmt.Sprintf("%s #%d [%s] %s", statusSymbol(task.Status), task.ID, task.Priority, task.Title)
	if task.Category != "" {
		line += " (" + task.Category + ")"
	}
	return line + " · " + relativeDue(task, now)
}

func relativeDue(task models.Task, now time.Time) string {
	switch task.Status {
	case models.StatusCompleted:
		if task.CompletedAt != nil {
			return "completed " + humanize.RelTime(*task.CompletedAt, now, "ago", "from now")
		}
		return "completed"
	case models.StatusFailed:
		return "failed"
	}
	return "due " + humanize.RelTime(task.DueAt, now, "ago", "from now")
}

func writeTaskDetail(w io.Writer, task models.Task, loc *time.Location, now time.Time) error {
	lines := []string{
		fmt.Sprintf("id: %d", task.ID),
		fmt.Sprintf("title: %s", task.Title),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("priority: %s", task.Priority),
		fmt.Sprintf("due: %s (%s)", formatLocal(task.DueAt, loc), relativeDue(task, now)),
	}
	if task.Category != "" {
		lines = append(lines, fmt.Sprintf("category: %s", task.Category))
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("completed_at: %s", formatLocal(*task.CompletedAt, loc)))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", formatLocal(task.CreatedAt, loc)),
		fmt.Sprintf("updated_at: %s", formatLocal(task.UpdatedAt, loc)),
	)
	return writePlain(w, "%s\n", strings.Join(lines, "\n"))
}

func writeOutcome(w io.Writer, task *models.Task, outcome game.Outcome) error {
	var lines []string
	switch task.Status {
	case models.StatusCompleted:
		lines = append(lines, fmt.Sprintf("completed #%d %s: %+d XP", task.ID, task.Title, outcome.TaskXP))
	case models.StatusFailed:
		lines = append(lines, fmt.Sprintf("failed #%d %s: %+d XP", task.ID, task.Title, outcome.TaskXP))
	}
	for _, achievement := range outcome.Unlocked {
		lines = append(lines, fmt.Sprintf("★ achievement unlocked: %s (+%d XP)", achievement.Name, achievement.Reward))
	}
	if outcome.User != nil {
		if outcome.User.Level != outcome.PreviousLevel {
			lines = append(lines, fmt.Sprintf("level %d → %d", outcome.PreviousLevel, outcome.User.Level))
		}
		lines = append(lines, fmt.Sprintf("%s XP · level %d · streak %d",
			humanize.Comma(int64(outcome.User.XP)), outcome.User.Level, outcome.User.Streak))
	}
	return writePlain(w, "%s\n", strings.Join(lines, "\n"))
}

func writeProfile(w io.Writer, user *models.User, progress game.LevelProgress) error {
	lines := []string{
		fmt.Sprintf("id: %d", user.ID),
		fmt.Sprintf("username: %s", user.Username),
		fmt.Sprintf("level: %d (%s)", progress.Level, progress.Rank),
		fmt.Sprintf("xp: %s", humanize.Comma(int64(user.XP))),
		fmt.Sprintf("streak: %d (longest %d)", user.Streak, user.LongestStreak),
	}
	if progress.NextRank != "" {
		lines = append(lines, fmt.Sprintf("next rank: %s in %d XP", progress.NextRank, progress.XPToNextRank))
	}
	return writePlain(w, "%s\n", strings.Join(lines, "\n"))
}

func formatLocal(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(loc).Format("2006-01-02 15:04")
}
