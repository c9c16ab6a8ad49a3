package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"gamelife/internal/models"
	"gamelife/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	statusPending    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusOverdue    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	statusFailed     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const progressBarWidth = 20

func renderDashboard(s report.Summary, loc *time.Location, now time.Time) string {
	title := titleStyle.Render(fmt.Sprintf("%s · Level %d %s", s.Username, s.Progress.Level, s.Progress.Rank))

	nextRank := dimStyle.Render("top rank reached")
	if s.Progress.NextRank != "" {
		nextRank = fmt.Sprintf("%s in %s XP", s.Progress.NextRank, humanize.Comma(int64(s.Progress.XPToNextRank)))
	}
	progress := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Progress"),
		fmt.Sprintf("XP %s", humanize.Comma(int64(s.Progress.XP))),
		fmt.Sprintf("%s %d/%d", progressBar(s.Progress.XPIntoLevel, s.Progress.XPPerLevel, progressBarWidth),
			s.Progress.XPIntoLevel, s.Progress.XPPerLevel),
		"Next: "+nextRank,
	))

	last := dimStyle.Render("never")
	if s.LastCompletion != nil {
		last = humanize.RelTime(*s.LastCompletion, calendarDay(now, loc), "ago", "from now")
		if calendarDay(now, loc).Equal(*s.LastCompletion) {
			last = "today"
		}
	}
	streaks := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Streak"),
		fmt.Sprintf("Current %d days", s.Streak),
		fmt.Sprintf("Longest %d days", s.LongestStreak),
		"Last    "+last,
	))

	taskLines := []string{headerStyle.Render("Tasks")}
	for _, c := range s.Tasks {
		taskLines = append(taskLines, styleForStatus(c.Status).Render(fmt.Sprintf("%-12s %d", statusLabel(c.Status), c.Count)))
	}
	taskLines = append(taskLines, dimStyle.Render(fmt.Sprintf("success rate %.0f%%", s.CompletionRate*100)))
	tasks := panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, taskLines...))

	body := lipgloss.JoinHorizontal(lipgloss.Top, progress, streaks, tasks)
	footer := dimStyle.Render(fmt.Sprintf("achievements %d/%d", len(s.Achievements), s.Available))
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer) + "\n"
}

func progressBar(value, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(max(value*width/total, 0), width)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func statusLabel(status models.TaskStatus) string {
	return strings.ReplaceAll(strings.ToLower(string(status)), "_", " ")
}

func styleForStatus(status models.TaskStatus) lipgloss.Style {
	switch status {
	case models.StatusInProgress:
		return statusInProgress
	case models.StatusCompleted:
		return statusCompleted
	case models.StatusOverdue:
		return statusOverdue
	case models.StatusFailed:
		return statusFailed
	default:
		return statusPending
	}
}

// calendarDay matches how streak dates are stored: the local date at midnight UTC.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func renderPriorityChart(rows []report.PriorityRow) string {
	maxTotal := 0
	for _, row := range rows {
		maxTotal = max(maxTotal, row.Total)
	}

	lines := []string{headerStyle.Render("Tasks by priority")}
	for _, row := range rows {
		bar := ""
		if maxTotal > 0 {
			bar = strings.Repeat("█", row.Total*progressBarWidth/maxTotal)
		}
		lines = append(lines, fmt.Sprintf("%-9s %-*s %3d  %s",
			row.Priority, progressBarWidth, bar, row.Total,
			dimStyle.Render(fmt.Sprintf("open %d · done %d · failed %d", row.Open, row.Completed, row.Failed))))
	}
	return strings.Join(lines, "\n") + "\n"
}
