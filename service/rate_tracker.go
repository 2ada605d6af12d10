package service

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/models"
)

// RatePolicy parametrizes the sliding-window tracker for one subsystem.
// FirstHitCount is the count a fresh or lapsed record starts at, and Decide
// maps the persisted count to a verdict.
type RatePolicy struct {
	Scope         models.RateScope
	Window        time.Duration
	FirstHitCount int
	Decide        func(violations int, inserted bool) models.Verdict
}

// BugReportPolicy grants one free report per window, one warning, then mutes
// every subsequent attempt inside the same window.
func BugReportPolicy(window time.Duration) RatePolicy {
	return RatePolicy{
		Scope:         models.RateScopeBugReport,
		Window:        window,
		FirstHitCount: 0,
		Decide: func(violations int, inserted bool) models.Verdict {
			switch {
			case inserted || violations == 0:
				return models.VerdictOK
			case violations == 1:
				return models.VerdictWarn
			default:
				return models.VerdictMute
			}
		},
	}
}

// AntipingPolicy warns on the first offense of a window and mutes once the
// count exceeds the threshold.
func AntipingPolicy(window time.Duration, threshold int) RatePolicy {
	return RatePolicy{
		Scope:         models.RateScopeAntiping,
		Window:        window,
		FirstHitCount: 1,
		Decide: func(violations int, inserted bool) models.Verdict {
			if violations > threshold {
				return models.VerdictMute
			}
			return models.VerdictWarn
		},
	}
}

type rateTracker struct {
	uowFactory UnitOfWorkFactory
}

// NewRateTracker creates a new sliding-window escalation tracker
func NewRateTracker(uowFactory UnitOfWorkFactory) RateTracker {
	return &rateTracker{
		uowFactory: uowFactory,
	}
}

// Record registers one event for (policy.Scope, guildID, userID) and returns
// the verdict. The counter advance is a single atomic store operation, so two
// concurrent events cannot both observe the pre-increment count.
func (t *rateTracker) Record(ctx context.Context, policy RatePolicy, guildID, userID int64) (models.Verdict, error) {
	uow := t.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	now := time.Now()
	cutoff := now.Add(-policy.Window)

	violations, inserted, err := uow.RateRecordRepository().Touch(
		ctx, policy.Scope, guildID, userID, policy.FirstHitCount, cutoff, now)
	if err != nil {
		return "", fmt.Errorf("failed to advance rate record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return policy.Decide(violations, inserted), nil
}
