package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

func newInfoCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database info",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				info, err := a.store.StoreInfo(ctx)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), struct {
						DBPath string `json:"db_path"`
						*store.StoreInfo
					}{DBPath: cfg.DBPath, StoreInfo: info})
				}

				out := cmd.OutOrStdout()
				_ = writePlain(out, "db_path: %s\n", cfg.DBPath)
				_ = writePlain(out, "schema_version: %d\n", info.SchemaVersion)
				_ = writePlain(out, "profiles: %d\n", info.Users)
				_ = writePlain(out, "total_tasks: %d\n", info.TotalTasks)

				statuses := make([]string, 0, len(info.TaskCounts))
				for status := range info.TaskCounts {
					statuses = append(statuses, string(status))
				}
				slices.Sort(statuses)
				for _, status := range statuses {
					_ = writePlain(out, "  %s: %d\n", status, info.TaskCounts[models.TaskStatus(status)])
				}
				return nil
			})
		},
	}
}

func newCleanupCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var (
		olderThan int
		dryRun    bool
		force     bool
		allUsers  bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove old completed and failed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be > 0")
			}
			if !force && !dryRun {
				dryRun = true
			}

			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				var userID int64
				if !allUsers {
					user, err := a.currentUser(ctx, flags.user)
					if err != nil {
						return err
					}
					userID = user.ID
				}

				cutoff := a.clock.Now().Add(-time.Duration(olderThan) * 24 * time.Hour)
				result, err := a.store.CleanupFinishedTasks(ctx, userID, cutoff, dryRun)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), result)
				}

				out := cmd.OutOrStdout()
				if result.DryRun {
					if err := writePlain(out, "dry run: %d finished tasks would be removed (use --force to delete)\n", result.Count); err != nil {
						return err
					}
				} else if err := writePlain(out, "removed %d finished tasks\n", result.Count); err != nil {
					return err
				}
				for _, id := range result.TaskIDs {
					if err := writePlain(out, "  #%d\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&olderThan, "older-than", 0, "remove tasks finished more than N days ago (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be removed without deleting")
	cmd.Flags().BoolVar(&force, "force", false, "actually delete tasks (required for non-dry-run)")
	cmd.Flags().BoolVar(&allUsers, "all-users", false, "clean up every profile, not just the current one")

	return cmd
}
