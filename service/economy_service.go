package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"guildkeeper/models"
)

const (
	dailyCooldown = 24 * time.Hour
	dailyMin      = 100
	dailyMax      = 200

	workCooldown = 30 * time.Minute
	workMin      = 40
	workMax      = 90
)

type economyService struct {
	uowFactory UnitOfWorkFactory
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
	}
}

func (s *economyService) Balance(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := uow.WalletRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet, nil
}

func (s *economyService) Daily(ctx context.Context, guildID, userID int64) (*models.ClaimResult, error) {
	amount := int64(dailyMin + rand.Intn(dailyMax-dailyMin+1))
	return s.claim(ctx, guildID, userID, amount, dailyCooldown, claimDaily)
}

func (s *economyService) Work(ctx context.Context, guildID, userID int64) (*models.ClaimResult, error) {
	amount := int64(workMin + rand.Intn(workMax-workMin+1))
	return s.claim(ctx, guildID, userID, amount, workCooldown, claimWork)
}

type claimKind int

const (
	claimDaily claimKind = iota
	claimWork
)

// claim runs one cooldown-gated reward. The credit and cooldown check are a
// single conditional update, so two concurrent claims cannot both pay out.
func (s *economyService) claim(ctx context.Context, guildID, userID int64, amount int64, cooldown time.Duration, kind claimKind) (*models.ClaimResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	now := time.Now()
	cutoff := now.Add(-cooldown)

	var claimed bool
	var err error
	switch kind {
	case claimDaily:
		claimed, err = uow.WalletRepository().ClaimDaily(ctx, guildID, userID, amount, cutoff, now)
	case claimWork:
		claimed, err = uow.WalletRepository().ClaimWork(ctx, guildID, userID, amount, cutoff, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim reward: %w", err)
	}

	wallet, err := uow.WalletRepository().GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	if !claimed {
		var last *time.Time
		switch kind {
		case claimDaily:
			last = wallet.LastDaily
		case claimWork:
			last = wallet.LastWork
		}
		result := &models.ClaimResult{Reason: models.ReasonOnCooldown, NewBalance: wallet.Balance}
		if last != nil {
			result.RetryAfter = last.Add(cooldown).Sub(now)
		}
		return result, nil
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClaimResult{OK: true, Amount: amount, NewBalance: wallet.Balance}, nil
}

func (s *economyService) Give(ctx context.Context, guildID, fromID, toID int64, amount int64) (models.FailureReason, error) {
	if amount <= 0 || fromID == toID {
		return models.ReasonValidationFailed, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	debited, err := uow.WalletRepository().Debit(ctx, guildID, fromID, amount)
	if err != nil {
		return "", fmt.Errorf("failed to debit sender: %w", err)
	}
	if !debited {
		return models.ReasonInsufficientFunds, nil
	}

	if err := uow.WalletRepository().Credit(ctx, guildID, toID, amount); err != nil {
		return "", fmt.Errorf("failed to credit recipient: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *economyService) Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallets, err := uow.WalletRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	return wallets, nil
}
