package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/format"
)

const userEnvKey = "GAMELIFE_USER"

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	jsonOutput bool
	output     string
	logLevel   string
	user       string
}

// configureOutput picks the structured formatter. Setting --output implies --json.
func configureOutput(flags *globalFlags) error {
	outputFormatter = format.JSONFormatter{}
	if flags.output == "" {
		return nil
	}
	f, err := format.ByName(flags.output)
	if err != nil {
		return err
	}
	outputFormatter = f
	flags.jsonOutput = true
	return nil
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "gamelife",
		Short:         "Gamelife turns your task list into a game with XP, levels and streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configureOutput(flags); err != nil {
				return err
			}
			warning, err := setupLogging(cmd.ErrOrStderr(), flags.logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&flags.jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "structured output format (json, yaml)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&flags.user, "user", "u", os.Getenv(userEnvKey), "profile name or #id")

	cmd.AddCommand(
		newProfileCmd(cfg, flags),
		newTaskCmd(cfg, flags),
		newStatsCmd(cfg, flags),
		newAchievementsCmd(cfg, flags),
		newReportCmd(cfg, flags),
		newSweepCmd(cfg, flags),
		newWatchCmd(cfg, flags),
		newConfigCmd(cfg),
		newMigrateCmd(cfg, flags),
		newInfoCmd(cfg, flags),
		newCleanupCmd(cfg, flags),
	)

	return cmd
}
