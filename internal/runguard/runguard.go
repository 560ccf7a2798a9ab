package runguard

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/sirupsen/logrus"
)

// Mode selects whether a second audit on the same day is allowed
type Mode string

const (
	// ModeEnforce skips the audit when one already completed today
	ModeEnforce Mode = "enforce"
	// ModeBypass always runs; the run state is still recorded
	ModeBypass Mode = "bypass"
)

// ParseMode validates a configured mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEnforce, ModeBypass:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown run guard mode %q (want %q or %q)", s, ModeEnforce, ModeBypass)
}

// Store persists the single run state row. GetRunState returns nil, nil when no
// audit has ever completed.
type Store interface {
	GetRunState(ctx context.Context) (*models.RunState, error)
	PutRunState(ctx context.Context, state *models.RunState) error
}

// Guard gives the daily audit its at-most-once-per-day behaviour
type Guard struct {
	store Store
	mode  Mode
	log   *logrus.Logger
}

// NewGuard creates a guard over store
func NewGuard(store Store, mode Mode, log *logrus.Logger) *Guard {
	return &Guard{store: store, mode: mode, log: log}
}

func (g *Guard) Mode() Mode {
	return g.mode
}

// ShouldRun reports whether an audit for today may start
func (g *Guard) ShouldRun(ctx context.Context, today billing.Date) (bool, error) {
	if g.mode == ModeBypass {
		return true, nil
	}

	state, err := g.store.GetRunState(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read run state: %w", err)
	}
	if state != nil && billing.DateOf(state.LastRunDate) == today {
		g.log.WithFields(logrus.Fields{
			"today":          today.String(),
			"last_run_count": state.LastRunCount,
		}).Info("Reminder audit already ran today, skipping")
		return false, nil
	}
	return true, nil
}

// RecordRun overwrites the run state after a completed audit, whatever the mode
func (g *Guard) RecordRun(ctx context.Context, today billing.Date, count int) error {
	state := &models.RunState{
		LastRunDate:  today.Time(),
		LastRunCount: count,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := g.store.PutRunState(ctx, state); err != nil {
		return fmt.Errorf("failed to record run for %s: %w", today, err)
	}
	return nil
}

// State returns the persisted run state, nil if none
func (g *Guard) State(ctx context.Context) (*models.RunState, error) {
	state, err := g.store.GetRunState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}
	return state, nil
}
