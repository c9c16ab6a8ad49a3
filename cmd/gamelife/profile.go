package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/models"
)

func newProfileCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create and inspect player profiles",
	}
	cmd.AddCommand(
		newProfileCreateCmd(cfg, flags),
		newProfileListCmd(cfg, flags),
		newProfileShowCmd(cfg, flags),
	)
	return cmd
}

func newProfileCreateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "create <username>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.profiles.Create(ctx, args[0])
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), user)
				}
				return writePlain(cmd.OutOrStdout(), "created profile %s (#%d)\n", user.Username, user.ID)
			})
		},
	}
}

func newProfileListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				users, err := a.profiles.List(ctx)
				if err != nil {
					return err
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), users)
				}
				if len(users) == 0 {
					return writePlain(cmd.OutOrStdout(), "no profiles\n")
				}
				for _, user := range users {
					if err := writePlain(cmd.OutOrStdout(), "%s\n", formatProfileLine(user, a.engine.Rank(&user))); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func formatProfileLine(user models.User, rank string) string {
	return fmt.Sprintf("#%d %s · level %d %s · %s XP", user.ID, user.Username, user.Level, rank, humanize.Comma(int64(user.XP)))
}

func newProfileShowCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [username]",
		Short: "Show a profile's level, rank and streak",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := flags.user
			if len(args) == 1 {
				ref = args[0]
			}
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx, ref)
				if err != nil {
					return err
				}
				progress := a.engine.Progress(user)
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), struct {
						User     *models.User       `json:"user"`
						Progress game.LevelProgress `json:"progress"`
					}{User: user, Progress: progress})
				}
				return writeProfile(cmd.OutOrStdout(), user, progress)
			})
		},
	}
}
