package service

import (
	"context"
	"testing"
	"time"

	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEconomyService_Daily_Claimed(t *testing.T) {
	uow, factory := setupUoW()

	var claimedAmount int64
	var cutoff, now time.Time
	walletRepo := &MockWalletRepository{}
	walletRepo.On("ClaimDaily", mock.Anything, int64(100), int64(42), mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		claimedAmount = args.Get(3).(int64)
		cutoff = args.Get(4).(time.Time)
		now = args.Get(5).(time.Time)
	}).Return(true, nil)
	walletRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Balance: 350}, nil)
	uow.SetWalletRepository(walletRepo)

	svc := NewEconomyService(factory)
	result, err := svc.Daily(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.GreaterOrEqual(t, result.Amount, int64(dailyMin))
	assert.LessOrEqual(t, result.Amount, int64(dailyMax))
	assert.Equal(t, claimedAmount, result.Amount)
	assert.Equal(t, int64(350), result.NewBalance)
	assert.Equal(t, dailyCooldown, now.Sub(cutoff))
}

func TestEconomyService_Daily_OnCooldown(t *testing.T) {
	uow, factory := setupUoW()

	lastDaily := time.Now().Add(-time.Hour)
	walletRepo := &MockWalletRepository{}
	walletRepo.On("ClaimDaily", mock.Anything, int64(100), int64(42), mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	walletRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.Wallet{
		GuildID:   100,
		UserID:    42,
		Balance:   350,
		LastDaily: &lastDaily,
	}, nil)
	uow.SetWalletRepository(walletRepo)

	svc := NewEconomyService(factory)
	result, err := svc.Daily(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonOnCooldown, result.Reason)
	assert.InDelta(t, (23 * time.Hour).Seconds(), result.RetryAfter.Seconds(), 60)
}

func TestEconomyService_Work_AmountRange(t *testing.T) {
	uow, factory := setupUoW()

	walletRepo := &MockWalletRepository{}
	walletRepo.On("ClaimWork", mock.Anything, int64(100), int64(42), mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	walletRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.Wallet{GuildID: 100, UserID: 42, Balance: 90}, nil)
	uow.SetWalletRepository(walletRepo)

	svc := NewEconomyService(factory)
	for i := 0; i < 50; i++ {
		result, err := svc.Work(context.Background(), 100, 42)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Amount, int64(workMin))
		assert.LessOrEqual(t, result.Amount, int64(workMax))
	}
}

func TestEconomyService_Give_Validation(t *testing.T) {
	_, factory := setupUoW()
	svc := NewEconomyService(factory)

	tests := []struct {
		name   string
		from   int64
		to     int64
		amount int64
	}{
		{"zero amount", 42, 7, 0},
		{"negative amount", 42, 7, -10},
		{"self transfer", 42, 42, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, err := svc.Give(context.Background(), 100, tt.from, tt.to, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, models.ReasonValidationFailed, reason)
		})
	}
}

func TestEconomyService_Give_InsufficientFunds(t *testing.T) {
	uow, factory := setupUoW()

	walletRepo := &MockWalletRepository{}
	walletRepo.On("Debit", mock.Anything, int64(100), int64(42), int64(500)).Return(false, nil)
	uow.SetWalletRepository(walletRepo)

	svc := NewEconomyService(factory)
	reason, err := svc.Give(context.Background(), 100, 42, 7, 500)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonInsufficientFunds, reason)
	walletRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEconomyService_Give_TransfersBetweenWallets(t *testing.T) {
	uow, factory := setupUoW()

	walletRepo := &MockWalletRepository{}
	walletRepo.On("Debit", mock.Anything, int64(100), int64(42), int64(150)).Return(true, nil)
	walletRepo.On("Credit", mock.Anything, int64(100), int64(7), int64(150)).Return(nil)
	uow.SetWalletRepository(walletRepo)

	svc := NewEconomyService(factory)
	reason, err := svc.Give(context.Background(), 100, 42, 7, 150)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
	walletRepo.AssertExpectations(t)
	uow.AssertCalled(t, "Commit")
}
