package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
)

const maxKeysPerBatch = 50

type keyService struct {
	uowFactory UnitOfWorkFactory
}

// NewKeyService creates a new key service
func NewKeyService(uowFactory UnitOfWorkFactory) KeyService {
	return &keyService{
		uowFactory: uowFactory,
	}
}

func (s *keyService) GenerateKeys(ctx context.Context, guildID, createdBy int64, count int, mode models.KeyMode, prizeName string, expiresIn time.Duration) ([]*models.Key, models.FailureReason, error) {
	if count < 1 || count > maxKeysPerBatch {
		return nil, models.ReasonValidationFailed, nil
	}
	if mode != models.KeyModeFixed && mode != models.KeyModeRandom {
		return nil, models.ReasonValidationFailed, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	var prizeID *int64
	if mode == models.KeyModeFixed {
		prize, err := uow.PrizeRepository().GetByName(ctx, guildID, strings.TrimSpace(prizeName))
		if err != nil {
			return nil, "", fmt.Errorf("failed to look up prize: %w", err)
		}
		if prize == nil {
			return nil, models.ReasonPrizeMissing, nil
		}
		prizeID = &prize.ID
	}

	var expiresAt *time.Time
	if expiresIn > 0 {
		t := time.Now().Add(expiresIn)
		expiresAt = &t
	}

	keys := make([]*models.Key, 0, count)
	for i := 0; i < count; i++ {
		code, err := GenerateUniqueCode(ctx, uow.KeyRepository().CodeExists)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate code: %w", err)
		}

		key := &models.Key{
			GuildID:   guildID,
			Code:      code,
			Mode:      mode,
			PrizeID:   prizeID,
			ExpiresAt: expiresAt,
			CreatedBy: createdBy,
		}
		if err := uow.KeyRepository().Create(ctx, key); err != nil {
			return nil, "", fmt.Errorf("failed to create key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := uow.Commit(); err != nil {
		return nil, "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return keys, models.ReasonNone, nil
}

// Redeem consumes a key exactly once. The final consume is a conditional
// update on the unused flag, so of two concurrent redeemers only one can
// succeed; the loser sees "used".
func (s *keyService) Redeem(ctx context.Context, code string, userID int64) (*models.RedemptionResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	code = strings.ToUpper(strings.TrimSpace(code))

	key, err := uow.KeyRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up key: %w", err)
	}
	if key == nil {
		return &models.RedemptionResult{Reason: models.ReasonNotFound}, nil
	}
	if key.Used {
		return &models.RedemptionResult{Reason: models.ReasonUsed, Key: key}, nil
	}

	now := time.Now()
	if key.IsExpired(now) {
		return &models.RedemptionResult{Reason: models.ReasonExpired, Key: key}, nil
	}

	// Resolve the prize before consuming so a failed draw leaves the key intact
	var prize *models.Prize
	switch key.Mode {
	case models.KeyModeFixed:
		prize, err = uow.PrizeRepository().GetByID(ctx, *key.PrizeID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up prize: %w", err)
		}
		if prize == nil {
			return &models.RedemptionResult{Reason: models.ReasonPrizeMissing, Key: key}, nil
		}
	case models.KeyModeRandom:
		prizes, err := uow.PrizeRepository().List(ctx, key.GuildID)
		if err != nil {
			return nil, fmt.Errorf("failed to list prizes: %w", err)
		}
		drawn, ok := DrawPrize(prizes)
		if !ok {
			return &models.RedemptionResult{Reason: models.ReasonNoPrizes, Key: key}, nil
		}
		prize = drawn
	}

	consumed, err := uow.KeyRepository().Consume(ctx, code, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to consume key: %w", err)
	}
	if !consumed {
		// A concurrent redeemer won the race
		return &models.RedemptionResult{Reason: models.ReasonUsed, Key: key}, nil
	}

	key.Used = true
	key.UsedBy = &userID
	key.UsedAt = &now

	uow.EventBus().Publish(events.KeyRedeemedEvent{
		GuildID:   key.GuildID,
		UserID:    userID,
		Code:      code,
		PrizeName: prize.Name,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RedemptionResult{OK: true, Key: key, Prize: prize}, nil
}

// Lookup fetches a key by code without consuming it
func (s *keyService) Lookup(ctx context.Context, code string) (*models.Key, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	code = strings.ToUpper(strings.TrimSpace(code))

	key, err := uow.KeyRepository().GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to look up key: %w", err)
	}

	return key, nil
}

func (s *keyService) Stats(ctx context.Context, guildID int64) (int, int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	total, unused, err := uow.KeyRepository().CountByGuild(ctx, guildID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count keys: %w", err)
	}

	return total, unused, nil
}
