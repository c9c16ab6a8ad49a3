package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gamelife/internal/config"
	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/service"
	"gamelife/internal/store"
)

// app wires the store, engine and services for one command invocation.
type app struct {
	cfg      *config.Config
	store    *store.Store
	engine   *game.Engine
	tasks    *service.TaskService
	profiles *service.ProfileService
	loc      *time.Location
	clock    game.Clock
}

func openApp(cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	clock := game.SystemClock{}
	engine := game.New(st, cfg.Economy,
		game.WithClock(clock),
		game.WithLocation(loc),
		game.WithLogger(slog.Default()),
	)
	return &app{
		cfg:      cfg,
		store:    st,
		engine:   engine,
		tasks:    service.NewTaskService(st, engine, loc, clock),
		profiles: service.NewProfileService(st, clock),
		loc:      loc,
		clock:    clock,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the app, runs fn and closes the store.
func withApp(ctx context.Context, cfg *config.Config, fn func(context.Context, *app) error) (err error) {
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(ctx, a)
}

// currentUser resolves the --user reference. With no reference and a single
// profile on disk, that profile is used.
func (a *app) currentUser(ctx context.Context, ref string) (*models.User, error) {
	if strings.TrimSpace(ref) == "" {
		users, err := a.profiles.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(users) == 1 {
			return &users[0], nil
		}
	}
	return a.profiles.Resolve(ctx, ref)
}

func parseTaskID(raw string) (int64, error) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}
