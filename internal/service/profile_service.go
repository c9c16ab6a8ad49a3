package service

import (
	"context"
	"strconv"
	"strings"

	"gamelife/internal/game"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

// ProfileService manages local user profiles.
type ProfileService struct {
	store store.UserStore
	clock game.Clock
}

// NewProfileService constructs a ProfileService.
func NewProfileService(st store.UserStore, clock game.Clock) *ProfileService {
	if clock == nil {
		clock = game.SystemClock{}
	}
	return &ProfileService{store: st, clock: clock}
}

// Create registers a new profile starting at level 1 with no XP.
func (s *ProfileService) Create(ctx context.Context, username string) (*models.User, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return nil, badRequest(err)
	}
	user, err := s.store.CreateUser(ctx, name, s.clock.Now().UTC())
	if err != nil {
		return nil, fromStore(err)
	}
	return user, nil
}

// List returns all profiles ordered by username.
func (s *ProfileService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fromStore(err)
	}
	return users, nil
}

// Resolve finds a profile by username, or by numeric id when ref is "#<id>"
// or all digits and no user has that name.
func (s *ProfileService) Resolve(ctx context.Context, ref string) (*models.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, badRequest(ErrNoProfile)
	}

	if id, ok := strings.CutPrefix(ref, "#"); ok {
		return s.byID(ctx, id)
	}

	user, err := s.store.GetUserByUsername(ctx, ref)
	if err == nil {
		return user, nil
	}
	if KindOf(err) != KindNotFound {
		return nil, err
	}
	if _, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		return s.byID(ctx, ref)
	}
	return nil, fromStore(err)
}

func (s *ProfileService) byID(ctx context.Context, raw string) (*models.User, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, badRequest(errInvalidProfileID)
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fromStore(err)
	}
	return user, nil
}
