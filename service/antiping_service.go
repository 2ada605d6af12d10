package service

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/models"
)

// AntipingDefaults are the fallback escalation parameters used when a guild
// has not configured its own
type AntipingDefaults struct {
	Window    time.Duration
	Threshold int
	Timeout   time.Duration
}

type antipingService struct {
	uowFactory UnitOfWorkFactory
	tracker    RateTracker
	defaults   AntipingDefaults
}

// NewAntipingService creates a new anti-mention protection service
func NewAntipingService(uowFactory UnitOfWorkFactory, tracker RateTracker, defaults AntipingDefaults) AntipingService {
	return &antipingService{
		uowFactory: uowFactory,
		tracker:    tracker,
		defaults:   defaults,
	}
}

func (s *antipingService) AddTarget(ctx context.Context, guildID, userID, addedBy int64) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	added, err := uow.AntipingRepository().Add(ctx, &models.AntipingTarget{
		GuildID: guildID,
		UserID:  userID,
		AddedBy: addedBy,
	})
	if err != nil {
		return "", fmt.Errorf("failed to add protected target: %w", err)
	}
	if !added {
		return models.ReasonDuplicate, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *antipingService) RemoveTarget(ctx context.Context, guildID, userID int64) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	removed, err := uow.AntipingRepository().Remove(ctx, guildID, userID)
	if err != nil {
		return "", fmt.Errorf("failed to remove protected target: %w", err)
	}
	if !removed {
		return models.ReasonNotFound, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *antipingService) ListTargets(ctx context.Context, guildID int64) ([]*models.AntipingTarget, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	targets, err := uow.AntipingRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list protected targets: %w", err)
	}

	return targets, nil
}

func (s *antipingService) IsProtected(ctx context.Context, guildID int64, mentioned []int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	for _, userID := range mentioned {
		protected, err := uow.AntipingRepository().IsTarget(ctx, guildID, userID)
		if err != nil {
			return false, fmt.Errorf("failed to check protected target: %w", err)
		}
		if protected {
			return true, nil
		}
	}

	return false, nil
}

// HandleMention runs one offending mention through the escalation tracker
// using the guild's configured parameters, falling back to the defaults
func (s *antipingService) HandleMention(ctx context.Context, guildID, offenderID int64) (models.Verdict, time.Duration, error) {
	window, threshold, timeout, err := s.parameters(ctx, guildID)
	if err != nil {
		return "", 0, err
	}

	verdict, err := s.tracker.Record(ctx, AntipingPolicy(window, threshold), guildID, offenderID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to run antiping escalation: %w", err)
	}

	if verdict == models.VerdictMute {
		return verdict, timeout, nil
	}
	return verdict, 0, nil
}

func (s *antipingService) parameters(ctx context.Context, guildID int64) (time.Duration, int, time.Duration, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to load guild settings: %w", err)
	}

	window := s.defaults.Window
	threshold := s.defaults.Threshold
	timeout := s.defaults.Timeout
	if settings.AntipingWindowMin != nil {
		window = time.Duration(*settings.AntipingWindowMin) * time.Minute
	}
	if settings.AntipingThreshold != nil {
		threshold = *settings.AntipingThreshold
	}
	if settings.AntipingTimeoutMin != nil {
		timeout = time.Duration(*settings.AntipingTimeoutMin) * time.Minute
	}

	return window, threshold, timeout, nil
}
