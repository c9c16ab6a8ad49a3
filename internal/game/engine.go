package game

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gamelife/internal/config"
	"gamelife/internal/models"
	"gamelife/internal/store"
)

// minUserXP is the hard lower bound on a stored XP balance.
const minUserXP = 0

// Engine turns task lifecycle events into XP, levels, streaks and
// achievement unlocks.
//
// The engine performs no locking. It assumes at most one in-flight mutation
// per user; concurrent callers acting on the same user must serialize
// externally.
type Engine struct {
	repo         store.ProgressStore
	econ         config.Economy
	clock        Clock
	loc          *time.Location
	achievements []Achievement
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLocation sets the timezone used to derive calendar dates for streaks.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithAchievements(achievements []Achievement) Option {
	return func(e *Engine) { e.achievements = achievements }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New constructs an Engine over repo using the given economy.
func New(repo store.ProgressStore, econ config.Economy, opts ...Option) *Engine {
	e := &Engine{
		repo:         repo,
		econ:         econ,
		clock:        SystemClock{},
		loc:          time.Local,
		achievements: DefaultAchievements(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Economy returns the economy the engine was built with.
func (e *Engine) Economy() config.Economy {
	return e.econ
}

// Achievements returns the registered achievements in evaluation order.
func (e *Engine) Achievements() []Achievement {
	out := make([]Achievement, len(e.achievements))
	copy(out, e.achievements)
	return out
}

// CalculateTaskXP returns the XP delta for a task in its current status.
// Only COMPLETED and FAILED tasks produce a non-zero delta. completionTime
// enables the early-completion bonus; at most one threshold applies, the
// first one met in configured order.
func (e *Engine) CalculateTaskXP(task *models.Task, completionTime *time.Time) int {
	var xp int
	switch task.Status {
	case models.StatusCompleted:
		xp = e.econ.Rewards[task.Priority]
		if completionTime != nil {
			early := task.DueAt.Sub(*completionTime)
			for _, threshold := range e.econ.EarlyBonuses {
				if early >= threshold.Duration() {
					xp += xp * threshold.BonusPct / 100
					break
				}
			}
		}
	case models.StatusFailed:
		xp = -e.econ.Penalties[task.Priority]
	default:
		return 0
	}
	return max(xp, e.econ.XPFloor)
}

// LevelFor returns the level implied by an XP balance.
func (e *Engine) LevelFor(xp int) int {
	return xp/e.econ.XPPerLevel + 1
}

// UpdateUserLevel recomputes the user's level and persists (xp, level) only
// when the level changed.
func (e *Engine) UpdateUserLevel(ctx context.Context, user *models.User) error {
	level := e.LevelFor(user.XP)
	if level == user.Level {
		return nil
	}
	previous := user.Level
	user.Level = level
	if err := e.repo.UpdateUserXP(ctx, user.ID, user.XP, user.Level); err != nil {
		return fmt.Errorf("update level: %w", err)
	}
	e.logger.Info("level changed", "user_id", user.ID, "from", previous, "to", level, "xp", user.XP)
	return nil
}

// Rank returns the name of the highest rank whose minimum the user's XP meets.
func (e *Engine) Rank(user *models.User) string {
	return e.rankFor(user.XP).Name
}

func (e *Engine) rankFor(xp int) config.Rank {
	current := e.econ.Ranks[0]
	for _, rank := range e.econ.Ranks {
		if xp >= rank.MinXP {
			current = rank
		}
	}
	return current
}

// UpdateStreak credits today's completion to the user's streak. A second
// completion on the same calendar day changes nothing and writes nothing.
func (e *Engine) UpdateStreak(ctx context.Context, user *models.User) error {
	today := calendarDate(e.clock.Now(), e.loc)

	switch {
	case user.LastCompletionDate == nil:
		user.Streak = 1
	case user.LastCompletionDate.Equal(today):
		return nil
	case user.LastCompletionDate.AddDate(0, 0, 1).Equal(today):
		user.Streak++
	default:
		user.Streak = 1
	}

	user.LongestStreak = max(user.LongestStreak, user.Streak)
	user.LastCompletionDate = &today

	if err := e.repo.UpdateUserStreak(ctx, user.ID, user.Streak, user.LongestStreak, today); err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

// CheckAchievements returns every registered achievement whose predicate
// currently holds, in registration order. It does not consult unlock
// history, so a persistently true predicate is returned on every call.
func (e *Engine) CheckAchievements(ctx context.Context, user *models.User) ([]Achievement, error) {
	var met []Achievement
	for _, achievement := range e.achievements {
		ok, err := achievement.Check(ctx, user, e.repo)
		if err != nil {
			return nil, fmt.Errorf("check achievement %s: %w", achievement.Key, err)
		}
		if ok {
			met = append(met, achievement)
		}
	}
	return met, nil
}

// Outcome describes the effect of a completion or failure on its owner.
type Outcome struct {
	TaskXP        int           `json:"task_xp"`
	AchievementXP int           `json:"achievement_xp"`
	Unlocked      []Achievement `json:"unlocked,omitempty"`
	PreviousLevel int           `json:"previous_level"`
	User          *models.User  `json:"user,omitempty"`
}

// Total is the XP delta applied to the user.
func (o Outcome) Total() int {
	return o.TaskXP + o.AchievementXP
}

// LeveledUp reports whether the user's level increased.
func (o Outcome) LeveledUp() bool {
	return o.User != nil && o.User.Level > o.PreviousLevel
}

// CompleteTask marks task COMPLETED at completionTime and returns the total
// XP awarded. Calling it on a task that is already COMPLETED or FAILED
// returns 0 and changes nothing.
func (e *Engine) CompleteTask(ctx context.Context, task *models.Task, completionTime time.Time) (int, error) {
	outcome, err := e.Complete(ctx, task, completionTime)
	if err != nil {
		return 0, err
	}
	return outcome.Total(), nil
}

// Complete is CompleteTask with the full outcome.
func (e *Engine) Complete(ctx context.Context, task *models.Task, completionTime time.Time) (Outcome, error) {
	if task.Status.IsTerminal() {
		return Outcome{}, nil
	}

	if err := e.repo.UpdateTaskStatus(ctx, task.ID, models.StatusCompleted, &completionTime); err != nil {
		return Outcome{}, fmt.Errorf("complete task %d: %w", task.ID, err)
	}
	task.Status = models.StatusCompleted
	task.CompletedAt = &completionTime

	taskXP := e.CalculateTaskXP(task, &completionTime)

	user, err := e.repo.GetUserByID(ctx, task.UserID)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{TaskXP: taskXP, PreviousLevel: user.Level, User: user}

	user.XP = max(user.XP+taskXP, minUserXP)
	if err := e.UpdateUserLevel(ctx, user); err != nil {
		return Outcome{}, err
	}
	if err := e.UpdateStreak(ctx, user); err != nil {
		return Outcome{}, err
	}

	unlocked, err := e.awardAchievements(ctx, user)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Unlocked = unlocked
	outcome.AchievementXP = achievementXP(unlocked)

	user.XP += outcome.AchievementXP
	user.Level = e.LevelFor(user.XP)
	if err := e.repo.UpdateUserXP(ctx, user.ID, user.XP, user.Level); err != nil {
		return Outcome{}, fmt.Errorf("update xp: %w", err)
	}

	e.logger.Info("task completed",
		"user_id", user.ID,
		"task_id", task.ID,
		"task_xp", outcome.TaskXP,
		"achievement_xp", outcome.AchievementXP,
		"xp", user.XP,
		"level", user.Level,
		"streak", user.Streak,
	)
	return outcome, nil
}

// FailTask marks task FAILED and returns the XP delta actually applied to
// the owner's balance (zero or negative). The balance never drops below 0.
// Calling it on a task that is already COMPLETED or FAILED returns 0.
func (e *Engine) FailTask(ctx context.Context, task *models.Task) (int, error) {
	outcome, err := e.Fail(ctx, task)
	if err != nil {
		return 0, err
	}
	return outcome.Total(), nil
}

// Fail is FailTask with the full outcome.
func (e *Engine) Fail(ctx context.Context, task *models.Task) (Outcome, error) {
	if task.Status.IsTerminal() {
		return Outcome{}, nil
	}

	if err := e.repo.UpdateTaskStatus(ctx, task.ID, models.StatusFailed, nil); err != nil {
		return Outcome{}, fmt.Errorf("fail task %d: %w", task.ID, err)
	}
	task.Status = models.StatusFailed
	task.CompletedAt = nil

	penalty := e.CalculateTaskXP(task, nil)

	user, err := e.repo.GetUserByID(ctx, task.UserID)
	if err != nil {
		return Outcome{}, err
	}
	outcome := Outcome{PreviousLevel: user.Level, User: user}

	balance := max(user.XP+penalty, minUserXP)
	outcome.TaskXP = balance - user.XP
	user.XP = balance

	if err := e.UpdateUserLevel(ctx, user); err != nil {
		return Outcome{}, err
	}
	if err := e.repo.UpdateUserXP(ctx, user.ID, user.XP, user.Level); err != nil {
		return Outcome{}, fmt.Errorf("update xp: %w", err)
	}

	e.logger.Info("task failed",
		"user_id", user.ID,
		"task_id", task.ID,
		"penalty", penalty,
		"applied", outcome.TaskXP,
		"xp", user.XP,
		"level", user.Level,
	)
	return outcome, nil
}

// awardAchievements returns the achievements whose reward is granted now.
// Unless the economy repeats rewards, an achievement pays out once per user.
func (e *Engine) awardAchievements(ctx context.Context, user *models.User) ([]Achievement, error) {
	met, err := e.CheckAchievements(ctx, user)
	if err != nil {
		return nil, err
	}
	if len(met) == 0 {
		return nil, nil
	}

	unlocked := map[string]struct{}{}
	if !e.econ.RepeatAchievementRewards {
		previous, err := e.repo.ListAchievementUnlocks(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list unlocks: %w", err)
		}
		for _, unlock := range previous {
			unlocked[unlock.Key] = struct{}{}
		}
	}

	now := e.clock.Now()
	var awarded []Achievement
	for _, achievement := range met {
		if _, ok := unlocked[achievement.Key]; ok {
			continue
		}
		if err := e.repo.RecordAchievementUnlock(ctx, user.ID, achievement.Key, now); err != nil {
			return nil, fmt.Errorf("record unlock %s: %w", achievement.Key, err)
		}
		awarded = append(awarded, achievement)
		e.logger.Info("achievement unlocked", "user_id", user.ID, "achievement", achievement.Key, "reward", achievement.Reward)
	}
	return awarded, nil
}
