package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/report"
)

func newStatsCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		Aliases: []string{"dashboard"},
		Short:   "Show level, streak and task counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				summary, err := report.Dashboard(ctx, a.store, a.engine, user)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), summary)
				}
				return writePlain(cmd.OutOrStdout(), "%s", renderDashboard(summary, a.loc, a.clock.Now()))
			})
		},
	}
}

type achievementRow struct {
	game.Achievement
	Unlocked bool `json:"unlocked"`
}

func newAchievementsCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which ones are unlocked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				unlocked, err := a.engine.UnlockedAchievements(ctx, user)
				if err != nil {
					return err
				}
				have := make(map[string]bool, len(unlocked))
				for _, u := range unlocked {
					have[u.Key] = true
				}

				all := a.engine.Achievements()
				rows := make([]achievementRow, 0, len(all))
				for _, achievement := range all {
					rows = append(rows, achievementRow{Achievement: achievement, Unlocked: have[achievement.Key]})
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				for _, row := range rows {
					if err := writePlain(cmd.OutOrStdout(), "%s\n", formatAchievementLine(row)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func formatAchievementLine(row achievementRow) string {
	mark := "☆"
	if row.Unlocked {
		mark = "★"
	}
	return fmt.Sprintf("%s %-16s +%-4d %s", mark, row.Name, row.Reward, row.Description)
}

func newReportCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Chart tasks by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, flags.user)
				if err != nil {
					return err
				}
				rows, err := report.ByPriority(ctx, a.store, user)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), rows)
				}
				return writePlain(cmd.OutOrStdout(), "%s", renderPriorityChart(rows))
			})
		},
	}
}
