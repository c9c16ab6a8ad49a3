package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"gamelife/internal/models"
)

var listItemRegex = regexp.MustCompile(`^\s*[-*]\s+(?:\[[ xX]\]\s+)?(.*)$`)

// ImportDefaults are the front matter fields applied to every imported item.
type ImportDefaults struct {
	Priority    string `yaml:"priority"`
	Due         string `yaml:"due"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// ParseMarkdown splits a markdown document into its YAML front matter and the
// text of each top-level list item.
func ParseMarkdown(input string) (ImportDefaults, []string, error) {
	var defaults ImportDefaults
	content := input

	lines := strings.Split(input, "\n")
	if len(lines) >= 3 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return defaults, nil, fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &defaults); err != nil {
			return defaults, nil, fmt.Errorf("front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	items := []string{}
	for _, line := range strings.Split(content, "\n") {
		match := listItemRegex.FindStringSubmatch(line)
		if len(match) == 2 {
			item := strings.TrimSpace(match[1])
			if item != "" {
				items = append(items, item)
			}
		}
	}
	return defaults, items, nil
}

// Import creates one task per markdown list item. Every item is validated
// before any task is stored, so a bad document creates nothing.
func (s *TaskService) Import(ctx context.Context, userID int64, markdown string) ([]models.Task, error) {
	defaults, items, err := ParseMarkdown(markdown)
	if err != nil {
		return nil, badRequest(err)
	}
	if len(items) == 0 {
		return nil, badRequest(fmt.Errorf("no list items found"))
	}

	tasks := make([]*models.Task, 0, len(items))
	for i, item := range items {
		task, err := s.buildTask(CreateTaskInput{
			UserID:      userID,
			Title:       item,
			Description: defaults.Description,
			Priority:    defaults.Priority,
			Due:         defaults.Due,
			Category:    defaults.Category,
		})
		if err != nil {
			return nil, badRequest(fmt.Errorf("item %d (%q): %v", i+1, item, err))
		}
		tasks = append(tasks, task)
	}

	created := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if err := s.store.CreateTask(ctx, task); err != nil {
			return created, fromStore(err)
		}
		created = append(created, *task)
	}
	return created, nil
}
