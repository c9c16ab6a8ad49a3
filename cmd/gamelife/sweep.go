package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gamelife/internal/config"
	"gamelife/internal/scheduler"
)

func newSweepCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark open tasks past their due time as overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				sweeper := scheduler.NewSweeper(a.store, 0, scheduler.WithClock(a.clock), scheduler.WithLogger(slog.Default()))
				ids, err := sweeper.SweepOnce(ctx)
				if err != nil {
					return err
				}
				if ids == nil {
					ids = []int64{}
				}
				if flags.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"marked_overdue": ids})
				}
				return writePlain(cmd.OutOrStdout(), "%s\n", formatSwept(ids))
			})
		},
	}
}

func newWatchCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep sweeping overdue tasks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := cfg.SweepEvery()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withApp(ctx, cfg, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				sweeper := scheduler.NewSweeper(a.store, interval,
					scheduler.WithClock(a.clock),
					scheduler.WithLogger(slog.Default()),
					scheduler.WithOnSweep(func(ids []int64) {
						if flags.jsonOutput {
							_ = writeJSON(out, map[string]any{"marked_overdue": ids})
							return
						}
						_ = writePlain(out, "%s %s\n", formatLocal(a.clock.Now(), a.loc), formatSwept(ids))
					}),
				)
				if !flags.jsonOutput {
					if err := writePlain(out, "sweeping every %s, press Ctrl-C to stop\n", interval); err != nil {
						return err
					}
				}
				return sweeper.Start(ctx)
			})
		},
	}
}

func formatSwept(ids []int64) string {
	switch len(ids) {
	case 0:
		return "no tasks became overdue"
	case 1:
		return fmt.Sprintf("marked #%d overdue", ids[0])
	default:
		return fmt.Sprintf("marked %d tasks overdue %v", len(ids), ids)
	}
}
