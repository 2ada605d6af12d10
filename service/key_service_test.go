package service

import (
	"context"
	"testing"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupUoW wires a permissive mock unit of work behind a factory
func setupUoW() (*MockUnitOfWork, *MockUnitOfWorkFactory) {
	uow := &MockUnitOfWork{}
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	factory := &MockUnitOfWorkFactory{}
	factory.On("Create").Return(uow)
	return uow, factory
}

func TestKeyService_GenerateKeys_Validation(t *testing.T) {
	_, factory := setupUoW()
	svc := NewKeyService(factory)

	tests := []struct {
		name  string
		count int
		mode  models.KeyMode
	}{
		{"zero count", 0, models.KeyModeRandom},
		{"negative count", -3, models.KeyModeRandom},
		{"over batch limit", maxKeysPerBatch + 1, models.KeyModeRandom},
		{"unknown mode", 5, models.KeyMode("jackpot")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, reason, err := svc.GenerateKeys(context.Background(), 100, 1, tt.count, tt.mode, "", 0)
			require.NoError(t, err)
			assert.Equal(t, models.ReasonValidationFailed, reason)
			assert.Nil(t, keys)
		})
	}
}

func TestKeyService_GenerateKeys_FixedPrizeMissing(t *testing.T) {
	uow, factory := setupUoW()

	prizeRepo := &MockPrizeRepository{}
	prizeRepo.On("GetByName", mock.Anything, int64(100), "VIP").Return(nil, nil)
	uow.SetPrizeRepository(prizeRepo)

	svc := NewKeyService(factory)
	keys, reason, err := svc.GenerateKeys(context.Background(), 100, 1, 3, models.KeyModeFixed, "VIP", 0)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonPrizeMissing, reason)
	assert.Nil(t, keys)
}

func TestKeyService_GenerateKeys_CreatesBatch(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	keyRepo.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
	keyRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	uow.SetKeyRepository(keyRepo)

	svc := NewKeyService(factory)
	keys, reason, err := svc.GenerateKeys(context.Background(), 100, 1, 5, models.KeyModeRandom, "", time.Hour)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
	require.Len(t, keys, 5)

	seen := make(map[string]bool)
	for _, key := range keys {
		assert.Equal(t, models.KeyModeRandom, key.Mode)
		assert.Nil(t, key.PrizeID)
		assert.NotNil(t, key.ExpiresAt)
		assert.False(t, seen[key.Code], "codes must be unique within a batch")
		seen[key.Code] = true
	}
	keyRepo.AssertNumberOfCalls(t, "Create", 5)
}

func TestKeyService_Redeem_NotFound(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, "AAAA-BBBB-CCCC").Return(nil, nil)
	uow.SetKeyRepository(keyRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonNotFound, result.Reason)
}

func TestKeyService_Redeem_NormalizesCode(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	// Lowercase input with padding must be looked up in canonical form
	keyRepo.On("GetByCode", mock.Anything, "AAAA-BBBB-CCCC").Return(nil, nil)
	uow.SetKeyRepository(keyRepo)

	svc := NewKeyService(factory)
	_, err := svc.Redeem(context.Background(), "  aaaa-bbbb-cccc ", 42)

	require.NoError(t, err)
	keyRepo.AssertExpectations(t)
}

func TestKeyService_Redeem_AlreadyUsed(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		Code: "AAAA-BBBB-CCCC",
		Mode: models.KeyModeRandom,
		Used: true,
	}, nil)
	uow.SetKeyRepository(keyRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonUsed, result.Reason)
}

func TestKeyService_Redeem_Expired(t *testing.T) {
	uow, factory := setupUoW()

	past := time.Now().Add(-time.Hour)
	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		Code:      "AAAA-BBBB-CCCC",
		Mode:      models.KeyModeRandom,
		ExpiresAt: &past,
	}, nil)
	uow.SetKeyRepository(keyRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonExpired, result.Reason)
	keyRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKeyService_Redeem_FixedSuccess(t *testing.T) {
	uow, factory := setupUoW()

	prizeID := int64(7)
	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		GuildID: 100,
		Code:    "AAAA-BBBB-CCCC",
		Mode:    models.KeyModeFixed,
		PrizeID: &prizeID,
	}, nil)
	keyRepo.On("Consume", mock.Anything, "AAAA-BBBB-CCCC", int64(42), mock.Anything).Return(true, nil)
	uow.SetKeyRepository(keyRepo)

	prizeRepo := &MockPrizeRepository{}
	prizeRepo.On("GetByID", mock.Anything, prizeID).Return(&models.Prize{ID: prizeID, Name: "VIP"}, nil)
	uow.SetPrizeRepository(prizeRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "VIP", result.Prize.Name)
	assert.True(t, result.Key.Used)
	require.NotNil(t, result.Key.UsedBy)
	assert.Equal(t, int64(42), *result.Key.UsedBy)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	redeemed, ok := published[0].(events.KeyRedeemedEvent)
	require.True(t, ok)
	assert.Equal(t, "VIP", redeemed.PrizeName)
	assert.Equal(t, int64(42), redeemed.UserID)
}

func TestKeyService_Redeem_FixedPrizeDeleted(t *testing.T) {
	uow, factory := setupUoW()

	prizeID := int64(7)
	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		GuildID: 100,
		Code:    "AAAA-BBBB-CCCC",
		Mode:    models.KeyModeFixed,
		PrizeID: &prizeID,
	}, nil)
	uow.SetKeyRepository(keyRepo)

	prizeRepo := &MockPrizeRepository{}
	prizeRepo.On("GetByID", mock.Anything, prizeID).Return(nil, nil)
	uow.SetPrizeRepository(prizeRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonPrizeMissing, result.Reason)
	// The key must survive a failed prize resolution
	keyRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKeyService_Redeem_RandomNoPrizes(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		GuildID: 100,
		Code:    "AAAA-BBBB-CCCC",
		Mode:    models.KeyModeRandom,
	}, nil)
	uow.SetKeyRepository(keyRepo)

	prizeRepo := &MockPrizeRepository{}
	prizeRepo.On("List", mock.Anything, int64(100)).Return([]*models.Prize{}, nil)
	uow.SetPrizeRepository(prizeRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNoPrizes, result.Reason)
	keyRepo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestKeyService_Redeem_ConcurrentLoser(t *testing.T) {
	uow, factory := setupUoW()

	keyRepo := &MockKeyRepository{}
	keyRepo.On("GetByCode", mock.Anything, mock.Anything).Return(&models.Key{
		GuildID: 100,
		Code:    "AAAA-BBBB-CCCC",
		Mode:    models.KeyModeRandom,
	}, nil)
	// A concurrent redeemer consumed the key between the read and the update
	keyRepo.On("Consume", mock.Anything, "AAAA-BBBB-CCCC", int64(42), mock.Anything).Return(false, nil)
	uow.SetKeyRepository(keyRepo)

	prizeRepo := &MockPrizeRepository{}
	prizeRepo.On("List", mock.Anything, int64(100)).Return([]*models.Prize{{ID: 1, Name: "VIP", Weight: 1}}, nil)
	uow.SetPrizeRepository(prizeRepo)

	svc := NewKeyService(factory)
	result, err := svc.Redeem(context.Background(), "AAAA-BBBB-CCCC", 42)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonUsed, result.Reason)
	assert.Empty(t, uow.PublishedEvents())
}
