package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
)

const (
	xpCooldown = 60 * time.Second
	xpMin      = 8
	xpMax      = 14
)

type levelService struct {
	uowFactory UnitOfWorkFactory
}

// NewLevelService creates a new message XP service
func NewLevelService(uowFactory UnitOfWorkFactory) LevelService {
	return &levelService{
		uowFactory: uowFactory,
	}
}

// HandleMessage awards XP for one message. Messages inside the per-user
// cooldown earn nothing and do not refresh the cooldown.
func (s *levelService) HandleMessage(ctx context.Context, guildID, userID int64) (int, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	profile, err := uow.LevelRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load level profile: %w", err)
	}

	now := time.Now()
	if profile.LastXPAt != nil && now.Sub(*profile.LastXPAt) < xpCooldown {
		return profile.Level, false, nil
	}

	profile.XP += int64(xpMin + rand.Intn(xpMax-xpMin+1))
	profile.LastXPAt = &now

	leveledUp := false
	for profile.XP >= models.XPNeeded(profile.Level) {
		profile.XP -= models.XPNeeded(profile.Level)
		profile.Level++
		leveledUp = true
	}

	if err := uow.LevelRepository().Update(ctx, profile); err != nil {
		return 0, false, fmt.Errorf("failed to update level profile: %w", err)
	}

	if leveledUp {
		uow.EventBus().Publish(events.LevelUpEvent{
			GuildID:  guildID,
			UserID:   userID,
			NewLevel: profile.Level,
		})
	}

	if err := uow.Commit(); err != nil {
		return 0, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return profile.Level, leveledUp, nil
}

func (s *levelService) Profile(ctx context.Context, guildID, userID int64) (*models.LevelProfile, int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	profile, err := uow.LevelRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load level profile: %w", err)
	}

	rank, err := uow.LevelRepository().Rank(ctx, guildID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load rank: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return profile, rank, nil
}

func (s *levelService) Top(ctx context.Context, guildID int64, limit int) ([]*models.LevelProfile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	profiles, err := uow.LevelRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	return profiles, nil
}
