package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/models"
	"gamelife/internal/service"
)

func newTaskCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, edit and finish tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(cfg, flags),
		newTaskListCmd(cfg, flags),
		newTaskShowCmd(cfg, flags),
		newTaskEditCmd(cfg, flags),
		newTaskStartCmd(cfg, flags),
		newTaskCompleteCmd(cfg, flags),
		newTaskFailCmd(cfg, flags),
		newTaskImportCmd(cfg, flags),
	)
	return cmd
}

func newTaskAddCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var in service.CreateTaskInput

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = strings.Join(args, " ")
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				in.UserID = user.ID
				task, err := a.tasks.Create(ctx, in)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), task)
				}
				return writePlain(cmd.OutOrStdout(), "created %s\n", formatTaskLine(*task, a.clock.Now()))
			})
		},
	}

	cmd.Flags().StringVar(&in.Due, "due", "", "due date (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC3339)")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "priority (low, medium, high, critical)")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "category")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "description")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newTaskListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var in service.ListTasksInput
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, soonest due first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(in.Statuses) == 0 && !all {
				in.Statuses = models.StatusStrings([]models.TaskStatus{
					models.StatusPending, models.StatusInProgress, models.StatusOverdue,
				})
			}
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				in.UserID = user.ID
				tasks, err := a.tasks.List(ctx, in)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), tasks)
				}
				return writeTaskList(cmd.OutOrStdout(), tasks, a.clock.Now())
			})
		},
	}

	cmd.Flags().StringSliceVarP(&in.Statuses, "status", "s", nil, "filter by status (repeatable or comma-separated)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include completed and failed tasks")
	cmd.Flags().StringVarP(&in.Priority, "priority", "p", "", "filter by priority")
	cmd.Flags().StringVarP(&in.Category, "category", "c", "", "filter by category")
	cmd.Flags().StringVar(&in.DueBefore, "due-before", "", "only tasks due before this date")
	cmd.Flags().IntVar(&in.Limit, "limit", 0, "maximum number of tasks")
	cmd.Flags().IntVar(&in.Offset, "offset", 0, "skip this many tasks")
	return cmd
}

func newTaskShowCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				task, err := a.tasks.Get(ctx, user.ID, id)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), task)
				}
				return writeTaskDetail(cmd.OutOrStdout(), *task, a.loc, a.clock.Now())
			})
		},
	}
}
