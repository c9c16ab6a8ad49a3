package config

import (
	"fmt"
	"strings"
	"time"

	"gamelife/internal/models"
)

const (
	DefaultXPPerLevel = 100
	DefaultXPFloor    = 0
)

// LeadUnit names the unit of an early-completion lead time.
type LeadUnit string

const (
	LeadDays  LeadUnit = "days"
	LeadHours LeadUnit = "hours"
)

// Rank is one rung of the rank ladder.
type Rank struct {
	Name  string `toml:"name" json:"name"`
	MinXP int    `toml:"min_xp" json:"min_xp"`
}

// BonusThreshold grants BonusPct percent of the base reward when a task is
// completed at least Lead units before it is due.
type BonusThreshold struct {
	Lead     int      `toml:"lead" json:"lead"`
	Unit     LeadUnit `toml:"unit" json:"unit"`
	BonusPct int      `toml:"bonus_pct" json:"bonus_pct"`
}

// Duration returns the lead time as a duration.
func (b BonusThreshold) Duration() time.Duration {
	switch b.Unit {
	case LeadDays:
		return time.Duration(b.Lead) * 24 * time.Hour
	case LeadHours:
		return time.Duration(b.Lead) * time.Hour
	default:
		return 0
	}
}

// Economy holds the static tunables of the progression engine. It is built
// once and treated as read-only afterwards.
type Economy struct {
	XPPerLevel   int                         `toml:"xp_per_level" json:"xp_per_level"`
	XPFloor      int                         `toml:"xp_floor" json:"xp_floor"`
	Ranks        []Rank                      `toml:"ranks" json:"ranks"`
	Rewards      map[models.TaskPriority]int `toml:"rewards" json:"rewards"`
	Penalties    map[models.TaskPriority]int `toml:"penalties" json:"penalties"`
	EarlyBonuses []BonusThreshold            `toml:"early_bonuses" json:"early_bonuses"`

	// RepeatAchievementRewards re-grants an achievement's reward on every
	// completion while its predicate holds, instead of once per user.
	RepeatAchievementRewards bool `toml:"repeat_achievement_rewards" json:"repeat_achievement_rewards"`
}

// DefaultEconomy returns the stock economy.
func DefaultEconomy() Economy {
	return Economy{
		XPPerLevel: DefaultXPPerLevel,
		XPFloor:    DefaultXPFloor,
		Ranks: []Rank{
			{Name: "Procrastinator", MinXP: 0},
			{Name: "Dabbler", MinXP: 100},
			{Name: "Doer", MinXP: 300},
			{Name: "Achiever", MinXP: 600},
			{Name: "Champion", MinXP: 1000},
			{Name: "Master", MinXP: 1500},
			{Name: "Legend", MinXP: 2500},
		},
		Rewards: map[models.TaskPriority]int{
			models.PriorityLow:      10,
			models.PriorityMedium:   25,
			models.PriorityHigh:     50,
			models.PriorityCritical: 100,
		},
		Penalties: map[models.TaskPriority]int{
			models.PriorityLow:      15,
			models.PriorityMedium:   38,
			models.PriorityHigh:     75,
			models.PriorityCritical: 150,
		},
		EarlyBonuses: []BonusThreshold{
			{Lead: 7, Unit: LeadDays, BonusPct: 50},
			{Lead: 3, Unit: LeadDays, BonusPct: 25},
			{Lead: 24, Unit: LeadHours, BonusPct: 10},
		},
	}
}

// Validate checks the invariants the engine relies on.
func (e Economy) Validate() error {
	if e.XPPerLevel <= 0 {
		return fmt.Errorf("xp_per_level must be positive, got %d", e.XPPerLevel)
	}
	if len(e.Ranks) == 0 {
		return fmt.Errorf("rank ladder is empty")
	}
	if e.Ranks[0].MinXP != 0 {
		return fmt.Errorf("first rank %q must start at 0 xp, got %d", e.Ranks[0].Name, e.Ranks[0].MinXP)
	}
	for i, rank := range e.Ranks {
		if strings.TrimSpace(rank.Name) == "" {
			return fmt.Errorf("rank %d has no name", i)
		}
		if i > 0 && rank.MinXP < e.Ranks[i-1].MinXP {
			return fmt.Errorf("rank ladder must be ascending: %q (%d) after %q (%d)",
				rank.Name, rank.MinXP, e.Ranks[i-1].Name, e.Ranks[i-1].MinXP)
		}
	}
	for _, priority := range models.AllPriorities() {
		if _, ok := e.Rewards[priority]; !ok {
			return fmt.Errorf("missing reward for priority %s", priority)
		}
		if _, ok := e.Penalties[priority]; !ok {
			return fmt.Errorf("missing penalty for priority %s", priority)
		}
	}
	for i, threshold := range e.EarlyBonuses {
		if threshold.Unit != LeadDays && threshold.Unit != LeadHours {
			return fmt.Errorf("early bonus %d: unknown unit %q", i, threshold.Unit)
		}
		if threshold.Lead < 0 {
			return fmt.Errorf("early bonus %d: lead must not be negative", i)
		}
	}
	return nil
}

// normalize canonicalizes priority keys decoded from TOML (e.g. "low").
func (e *Economy) normalize() error {
	rewards, err := normalizePriorityTable(e.Rewards)
	if err != nil {
		return fmt.Errorf("economy.rewards: %w", err)
	}
	penalties, err := normalizePriorityTable(e.Penalties)
	if err != nil {
		return fmt.Errorf("economy.penalties: %w", err)
	}
	e.Rewards = rewards
	e.Penalties = penalties
	for i := range e.EarlyBonuses {
		e.EarlyBonuses[i].Unit = LeadUnit(strings.ToLower(strings.TrimSpace(string(e.EarlyBonuses[i].Unit))))
	}
	return nil
}

func normalizePriorityTable(table map[models.TaskPriority]int) (map[models.TaskPriority]int, error) {
	if table == nil {
		return nil, nil
	}
	out := make(map[models.TaskPriority]int, len(table))
	// Defaults are stored under canonical keys; values written by the user
	// under other spellings must win over them.
	for key, value := range table {
		if models.IsValidTaskPriority(key) {
			out[key] = value
		}
	}
	for key, value := range table {
		if models.IsValidTaskPriority(key) {
			continue
		}
		priority, err := models.ParseTaskPriority(string(key))
		if err != nil {
			return nil, err
		}
		out[priority] = value
	}
	return out, nil
}
