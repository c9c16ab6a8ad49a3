package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosimple/slug"

	"gamelife/internal/models"
)

const (
	maxTitleLength    = 200
	maxUsernameLength = 64
)

// dueLayouts are tried in order after RFC3339.
var dueLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

const dateOnlyLayout = "2006-01-02"

// ParseDue parses a due time in loc. A bare date means the end of that day.
func ParseDue(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("due date is required")
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, value, loc); err == nil {
		return t.Add(24*time.Hour - time.Minute).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (use YYYY-MM-DD, YYYY-MM-DD HH:MM or RFC3339)", value)
}

func normalizeTitle(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(value) > maxTitleLength {
		return "", fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	return value, nil
}

func normalizePriority(value string) (models.TaskPriority, error) {
	if strings.TrimSpace(value) == "" {
		return models.DefaultPriority, nil
	}
	return models.ParseTaskPriority(value)
}

// normalizeCategory turns free-form input like "Home Chores" into "home-chores".
func normalizeCategory(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return slug.Make(value)
}

func normalizeUsername(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("username is required")
	}
	if utf8.RuneCountInString(value) > maxUsernameLength {
		return "", fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	}
	if strings.ContainsAny(value, "\n\r\t") {
		return "", fmt.Errorf("username must not contain control whitespace")
	}
	return value, nil
}

func normalizeStatuses(values []string) ([]models.TaskStatus, error) {
	out := make([]models.TaskStatus, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			status, err := models.ParseTaskStatus(part)
			if err != nil {
				return nil, err
			}
			out = append(out, status)
		}
	}
	return out, nil
}
