package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gamelife/internal/store"
)

func TestProfileServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if env.user.Level != 1 || env.user.XP != 0 || env.user.Streak != 0 {
		t.Fatalf("expected fresh profile, got %+v", env.user)
	}

	if _, err := env.profiles.Create(ctx, "test_user"); KindOf(err) != KindConflict {
		t.Fatalf("expected conflict for duplicate username, got %v", err)
	}
	if _, err := env.profiles.Create(ctx, "   "); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for blank username, got %v", err)
	}
	if _, err := env.profiles.Create(ctx, strings.Repeat("a", maxUsernameLength+1)); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for long username, got %v", err)
	}
}

func TestProfileServiceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.profiles.Create(ctx, "alice"); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	users, err := env.profiles.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "test_user" {
		t.Fatalf("expected alice, test_user; got %+v", users)
	}
}

func TestProfileServiceResolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	byName, err := env.profiles.Resolve(ctx, " test_user ")
	if err != nil || byName.ID != env.user.ID {
		t.Fatalf("resolve by name: %+v (err: %v)", byName, err)
	}

	byHash, err := env.profiles.Resolve(ctx, fmt.Sprintf("#%d", env.user.ID))
	if err != nil || byHash.ID != env.user.ID {
		t.Fatalf("resolve by #id: %+v (err: %v)", byHash, err)
	}

	byDigits, err := env.profiles.Resolve(ctx, fmt.Sprintf("%d", env.user.ID))
	if err != nil || byDigits.ID != env.user.ID {
		t.Fatalf("resolve by digits: %+v (err: %v)", byDigits, err)
	}

	numericName, err := env.profiles.Create(ctx, "42")
	if err != nil {
		t.Fatalf("create numeric name: %v", err)
	}
	resolved, err := env.profiles.Resolve(ctx, "42")
	if err != nil || resolved.ID != numericName.ID {
		t.Fatalf("expected username match to win over id, got %+v (err: %v)", resolved, err)
	}

	_, err = env.profiles.Resolve(ctx, "nobody")
	if KindOf(err) != KindNotFound || !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not_found wrapping store.ErrNotFound, got %v", err)
	}
	if _, err := env.profiles.Resolve(ctx, ""); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for empty ref, got %v", err)
	}
	if _, err := env.profiles.Resolve(ctx, "#abc"); KindOf(err) != KindInvalidArgument {
		t.Fatalf("expected invalid_argument for bad id, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{err: nil, want: ""},
		{err: badRequest(errors.New("x")), want: KindInvalidArgument},
		{err: fmt.Errorf("wrapped: %w", conflict(errors.New("x"))), want: KindConflict},
		{err: fmt.Errorf("task 1: %w", store.ErrNotFound), want: KindNotFound},
		{err: errors.New("disk on fire"), want: KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v): expected %q, got %q", tt.err, tt.want, got)
		}
	}
}
