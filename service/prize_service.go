package service

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/models"
)

type prizeService struct {
	uowFactory UnitOfWorkFactory
}

// NewPrizeService creates a new prize service
func NewPrizeService(uowFactory UnitOfWorkFactory) PrizeService {
	return &prizeService{
		uowFactory: uowFactory,
	}
}

func (s *prizeService) Add(ctx context.Context, guildID int64, name, description string, weight int) (models.FailureReason, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ReasonValidationFailed, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.PrizeRepository().GetByName(ctx, guildID, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up prize: %w", err)
	}
	if existing != nil {
		return models.ReasonDuplicate, nil
	}

	prize := &models.Prize{
		GuildID:     guildID,
		Name:        name,
		Description: description,
		Weight:      weight,
	}
	if err := uow.PrizeRepository().Create(ctx, prize); err != nil {
		return "", fmt.Errorf("failed to create prize: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *prizeService) List(ctx context.Context, guildID int64) ([]*models.Prize, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	prizes, err := uow.PrizeRepository().List(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}

	return prizes, nil
}

func (s *prizeService) Remove(ctx context.Context, guildID int64, name string) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	// Fixed keys referencing the prize keep their dangling reference and
	// fail redemption with a prize-missing result, not a cascading delete
	removed, err := uow.PrizeRepository().Delete(ctx, guildID, strings.TrimSpace(name))
	if err != nil {
		return "", fmt.Errorf("failed to delete prize: %w", err)
	}
	if !removed {
		return models.ReasonNotFound, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}
