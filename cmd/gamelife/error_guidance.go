package main

import (
	"errors"
	"strings"

	"gamelife/internal/service"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{"error: " + err.Error()}

	if errors.Is(err, service.ErrNoProfile) {
		lines = append(lines,
			"hint: create one with: gamelife profile create <name>",
			"hint: list existing profiles with: gamelife profile list",
		)
		return uniqueLines(lines)
	}

	message := err.Error()
	switch service.KindOf(err) {
	case service.KindInvalidArgument:
		if strings.Contains(message, "due date") {
			lines = append(lines, "hint: due dates look like 2025-03-10, \"2025-03-10 18:00\" or 2025-03-10T18:00:00Z.")
		}
		if strings.Contains(message, "priority") {
			lines = append(lines, "hint: priorities are low, medium, high or critical.")
		}
	case service.KindNotFound:
		if strings.Contains(message, "user") {
			lines = append(lines, "hint: list existing profiles with: gamelife profile list")
		} else {
			lines = append(lines, "hint: list your tasks with: gamelife task list --all")
		}
	case service.KindInternal:
		if strings.Contains(message, "database is locked") || strings.Contains(message, "SQLITE_BUSY") {
			lines = append(lines, "hint: another gamelife process (such as watch) is writing; retry shortly.")
		}
		if strings.Contains(message, "economy") {
			lines = append(lines, "hint: check the [economy] section of the file shown by: gamelife config path")
		}
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
