package service

import (
	"context"
	"fmt"

	"guildkeeper/models"
)

type infractionService struct {
	uowFactory UnitOfWorkFactory
}

// NewInfractionService creates a new moderation warning service
func NewInfractionService(uowFactory UnitOfWorkFactory) InfractionService {
	return &infractionService{
		uowFactory: uowFactory,
	}
}

func (s *infractionService) Warn(ctx context.Context, guildID, userID, issuerID int64, reason string) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	infraction := &models.Infraction{
		GuildID:  guildID,
		UserID:   userID,
		IssuerID: issuerID,
		Reason:   reason,
	}
	if err := uow.InfractionRepository().Create(ctx, infraction); err != nil {
		return 0, fmt.Errorf("failed to record infraction: %w", err)
	}

	existing, err := uow.InfractionRepository().ListByUser(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count infractions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(existing), nil
}

func (s *infractionService) List(ctx context.Context, guildID, userID int64) ([]*models.Infraction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	infractions, err := uow.InfractionRepository().ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions: %w", err)
	}

	return infractions, nil
}

func (s *infractionService) Clear(ctx context.Context, guildID, userID int64) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	removed, err := uow.InfractionRepository().ClearByUser(ctx, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear infractions: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return removed, nil
}
