package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamelife/internal/models"
)

const userColumns = "id, username, xp, level, streak, longest_streak, last_completion_date, created_at"

// CreateUser inserts a new profile with zero progression.
func (s *Store) CreateUser(ctx context.Context, username string, now time.Time) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, xp, level, streak, longest_streak, created_at)
		VALUES (?, 0, 1, 0, 0, ?)
	`, username, formatTime(now))
	if err != nil {
		if isUniqueConstraint(err) {
			return nil, fmt.Errorf("username %q already exists: %w", username, ErrConflict)
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{
		ID:        id,
		Username:  username,
		XP:        0,
		Level:     1,
		CreatedAt: now.UTC(),
	}, nil
}

// GetUserByID returns a user by id or ErrNotFound.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, err
}

// GetUserByUsername returns a user by username or ErrNotFound.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? LIMIT 1", username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return user, err
}

// ListUsers returns all profiles sorted by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY username ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserXP overwrites both xp and level.
func (s *Store) UpdateUserXP(ctx context.Context, id int64, xp, level int) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET xp = ?, level = ? WHERE id = ?", xp, level, id)
	if err != nil {
		return err
	}
	return requireAffected(result, "user", id)
}

// UpdateUserStreak overwrites the streak triple.
func (s *Store) UpdateUserStreak(ctx context.Context, id int64, streak, longestStreak int, lastCompletionDate time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET streak = ?, longest_streak = ?, last_completion_date = ?
		WHERE id = ?
	`, streak, longestStreak, formatDate(lastCompletionDate), id)
	if err != nil {
		return err
	}
	return requireAffected(result, "user", id)
}

func scanUser(scanner interface {
	Scan(dest ...any) error
}) (*models.User, error) {
	var user models.User
	var lastCompletion sql.NullString
	var createdAt string

	if err := scanner.Scan(
		&user.ID,
		&user.Username,
		&user.XP,
		&user.Level,
		&user.Streak,
		&user.LongestStreak,
		&lastCompletion,
		&createdAt,
	); err != nil {
		return nil, err
	}

	if lastCompletion.Valid && lastCompletion.String != "" {
		date, err := parseDate(lastCompletion.String)
		if err != nil {
			return nil, err
		}
		user.LastCompletionDate = &date
	}
	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = parsedCreated

	return &user, nil
}

func requireAffected(result sql.Result, entity string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}
