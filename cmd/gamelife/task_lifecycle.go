package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/service"
)

func newTaskEditCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var title, description, priority, due, category string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an open task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			var in service.UpdateTaskInput
			changed := cmd.Flags().Changed
			if changed("title") {
				in.Title = &title
			}
			if changed("description") {
				in.Description = &description
			}
			if changed("priority") {
				in.Priority = &priority
			}
			if changed("due") {
				in.Due = &due
			}
			if changed("category") {
				in.Category = &category
			}
			return runTaskAction(cmd, cfg, flags, func(ctx context.Context, a *app, userID int64) (*models.Task, error) {
				return a.tasks.Update(ctx, userID, id, in)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category (empty clears it)")
	return cmd
}

func newTaskStartCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Mark a task as in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return runTaskAction(cmd, cfg, flags, func(ctx context.Context, a *app, userID int64) (*models.Task, error) {
				return a.tasks.Start(ctx, userID, id)
			})
		},
	}
}

// runTaskAction resolves the current user, applies fn and prints the task.
func runTaskAction(cmd *cobra.Command, cfg *config.Config, flags *globalFlags, fn func(context.Context, *app, int64) (*models.Task, error)) error {
	return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
		user, err := a.currentUser(ctx, flags.user)
		if err != nil {
			return err
		}
		task, err := fn(ctx, a, user.ID)
		if err != nil {
			return err
		}
		if flags.jsonOutput {
			return writeJSON(cmd.OutOrStdout(), task)
		}
		return writePlain(cmd.OutOrStdout(), "%s\n", formatTaskLine(*task, a.clock.Now()))
	})
}

func newTaskCompleteCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <id>",
		Aliases: []string{"done"},
		Short:   "Complete a task and collect XP",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutcome(cmd, cfg, flags, args[0], func(ctx context.Context, a *app, userID, id int64) (*models.Task, game.Outcome, error) {
				return a.tasks.Complete(ctx, userID, id)
			})
		},
	}
}

func newTaskFailCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fail <id>",
		Short: "Give up on a task and take the penalty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutcome(cmd, cfg, flags, args[0], func(ctx context.Context, a *app, userID, id int64) (*models.Task, game.Outcome, error) {
				return a.tasks.Fail(ctx, userID, id)
			})
		},
	}
}

type outcomeResult struct {
	Task    *models.Task `json:"task"`
	Outcome game.Outcome `json:"outcome"`
	XP      int          `json:"xp_delta"`
}

func runOutcome(cmd *cobra.Command, cfg *config.Config, flags *globalFlags, rawID string, fn func(context.Context, *app, int64, int64) (*models.Task, game.Outcome, error)) error {
	id, err := parseTaskID(rawID)
	if err != nil {
		return err
	}
	return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
		user, err := a.currentUser(ctx, flags.user)
		if err != nil {
			return err
		}
		task, outcome, err := fn(ctx, a, user.ID, id)
		if err != nil {
			return err
		}
		if flags.jsonOutput {
			return writeJSON(cmd.OutOrStdout(), outcomeResult{Task: task, Outcome: outcome, XP: outcome.Total()})
		}
		return writeOutcome(cmd.OutOrStdout(), task, outcome)
	})
}

func newTaskImportCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Create tasks from a markdown list with YAML front matter",
		Long: `Create one task per markdown list item. Front matter supplies the
due date and optional priority, category and description for every item:

  ---
  due: 2025-03-15 18:00
  priority: high
  category: garden
  ---
  - Mow lawn
  - Trim hedge`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				created, err := a.tasks.Import(ctx, user.ID, string(data))
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), created)
				}
				if err := writePlain(cmd.OutOrStdout(), "imported %d tasks\n", len(created)); err != nil {
					return err
				}
				return writeTaskList(cmd.OutOrStdout(), created, a.clock.Now())
			})
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
