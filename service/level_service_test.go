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

func TestLevelService_HandleMessage_CooldownEarnsNothing(t *testing.T) {
	uow, factory := setupUoW()

	recent := time.Now().Add(-30 * time.Second)
	levelRepo := &MockLevelRepository{}
	levelRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.LevelProfile{
		GuildID:  100,
		UserID:   42,
		XP:       50,
		Level:    3,
		LastXPAt: &recent,
	}, nil)
	uow.SetLevelRepository(levelRepo)

	svc := NewLevelService(factory)
	level, leveledUp, err := svc.HandleMessage(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.Equal(t, 3, level)
	assert.False(t, leveledUp)
	levelRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLevelService_HandleMessage_AwardsXP(t *testing.T) {
	uow, factory := setupUoW()

	var updated *models.LevelProfile
	levelRepo := &MockLevelRepository{}
	levelRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.LevelProfile{
		GuildID: 100,
		UserID:  42,
		XP:      10,
		Level:   1,
	}, nil)
	levelRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.LevelProfile)
	}).Return(nil)
	uow.SetLevelRepository(levelRepo)

	svc := NewLevelService(factory)
	level, leveledUp, err := svc.HandleMessage(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.Equal(t, 1, level)
	assert.False(t, leveledUp)
	require.NotNil(t, updated)
	assert.GreaterOrEqual(t, updated.XP, int64(10+xpMin))
	assert.LessOrEqual(t, updated.XP, int64(10+xpMax))
	assert.NotNil(t, updated.LastXPAt)
	assert.Empty(t, uow.PublishedEvents())
}

func TestLevelService_HandleMessage_LevelUp(t *testing.T) {
	uow, factory := setupUoW()

	// One message away from the 100 XP needed to leave level 1
	levelRepo := &MockLevelRepository{}
	levelRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.LevelProfile{
		GuildID: 100,
		UserID:  42,
		XP:      95,
		Level:   1,
	}, nil)
	levelRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
	uow.SetLevelRepository(levelRepo)

	svc := NewLevelService(factory)
	level, leveledUp, err := svc.HandleMessage(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.True(t, leveledUp)
	assert.Equal(t, 2, level)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	event, ok := published[0].(events.LevelUpEvent)
	require.True(t, ok)
	assert.Equal(t, 2, event.NewLevel)
}

func TestLevelService_HandleMessage_MultiLevelJump(t *testing.T) {
	uow, factory := setupUoW()

	// Enough banked XP to clear level 1 (100) and level 2 (150) in one award
	var updated *models.LevelProfile
	levelRepo := &MockLevelRepository{}
	levelRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.LevelProfile{
		GuildID: 100,
		UserID:  42,
		XP:      245,
		Level:   1,
	}, nil)
	levelRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		updated = args.Get(1).(*models.LevelProfile)
	}).Return(nil)
	uow.SetLevelRepository(levelRepo)

	svc := NewLevelService(factory)
	level, leveledUp, err := svc.HandleMessage(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.True(t, leveledUp)
	assert.Equal(t, 3, level)
	require.NotNil(t, updated)
	assert.Less(t, updated.XP, models.XPNeeded(3))
}

func TestLevelService_Profile_IncludesRank(t *testing.T) {
	uow, factory := setupUoW()

	levelRepo := &MockLevelRepository{}
	levelRepo.On("GetOrCreate", mock.Anything, int64(100), int64(42)).Return(&models.LevelProfile{
		GuildID: 100,
		UserID:  42,
		XP:      80,
		Level:   5,
	}, nil)
	levelRepo.On("Rank", mock.Anything, int64(100), int64(42)).Return(3, nil)
	uow.SetLevelRepository(levelRepo)

	svc := NewLevelService(factory)
	profile, rank, err := svc.Profile(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.Equal(t, 5, profile.Level)
	assert.Equal(t, 3, rank)
}

func TestXPNeeded_Curve(t *testing.T) {
	assert.Equal(t, int64(100), models.XPNeeded(1))
	assert.Equal(t, int64(150), models.XPNeeded(2))
	assert.Equal(t, int64(550), models.XPNeeded(10))
	// Out-of-range levels clamp to the base requirement
	assert.Equal(t, int64(100), models.XPNeeded(0))
}
