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

var testAntipingDefaults = AntipingDefaults{
	Window:    5 * time.Minute,
	Threshold: 1,
	Timeout:   5 * time.Minute,
}

func TestAntipingService_AddTarget_Duplicate(t *testing.T) {
	uow, factory := setupUoW()

	antipingRepo := &MockAntipingRepository{}
	antipingRepo.On("Add", mock.Anything, mock.Anything).Return(false, nil)
	uow.SetAntipingRepository(antipingRepo)

	tracker := &MockRateTracker{}
	svc := NewAntipingService(factory, tracker, testAntipingDefaults)
	reason, err := svc.AddTarget(context.Background(), 100, 42, 1)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonDuplicate, reason)
}

func TestAntipingService_IsProtected(t *testing.T) {
	uow, factory := setupUoW()

	antipingRepo := &MockAntipingRepository{}
	antipingRepo.On("IsTarget", mock.Anything, int64(100), int64(10)).Return(false, nil)
	antipingRepo.On("IsTarget", mock.Anything, int64(100), int64(20)).Return(true, nil)
	uow.SetAntipingRepository(antipingRepo)

	tracker := &MockRateTracker{}
	svc := NewAntipingService(factory, tracker, testAntipingDefaults)

	protected, err := svc.IsProtected(context.Background(), 100, []int64{10, 20})
	require.NoError(t, err)
	assert.True(t, protected)

	protected, err = svc.IsProtected(context.Background(), 100, []int64{10})
	require.NoError(t, err)
	assert.False(t, protected)
}

func TestAntipingService_HandleMention_UsesDefaults(t *testing.T) {
	uow, factory := setupUoW()

	settingsRepo := &MockGuildSettingsRepository{}
	settingsRepo.On("GetOrCreateGuildSettings", mock.Anything, int64(100)).Return(&models.GuildSettings{GuildID: 100}, nil)
	uow.SetGuildSettingsRepository(settingsRepo)

	var recorded RatePolicy
	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Run(func(args mock.Arguments) {
		recorded = args.Get(1).(RatePolicy)
	}).Return(models.VerdictWarn, nil)

	svc := NewAntipingService(factory, tracker, testAntipingDefaults)
	verdict, timeout, err := svc.HandleMention(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.Equal(t, models.VerdictWarn, verdict)
	assert.Zero(t, timeout)
	assert.Equal(t, models.RateScopeAntiping, recorded.Scope)
	assert.Equal(t, testAntipingDefaults.Window, recorded.Window)
}

func TestAntipingService_HandleMention_GuildOverrides(t *testing.T) {
	uow, factory := setupUoW()

	window := 15
	threshold := 3
	timeoutMin := 30
	settingsRepo := &MockGuildSettingsRepository{}
	settingsRepo.On("GetOrCreateGuildSettings", mock.Anything, int64(100)).Return(&models.GuildSettings{
		GuildID:            100,
		AntipingWindowMin:  &window,
		AntipingThreshold:  &threshold,
		AntipingTimeoutMin: &timeoutMin,
	}, nil)
	uow.SetGuildSettingsRepository(settingsRepo)

	var recorded RatePolicy
	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Run(func(args mock.Arguments) {
		recorded = args.Get(1).(RatePolicy)
	}).Return(models.VerdictMute, nil)

	svc := NewAntipingService(factory, tracker, testAntipingDefaults)
	verdict, timeout, err := svc.HandleMention(context.Background(), 100, 42)

	require.NoError(t, err)
	assert.Equal(t, models.VerdictMute, verdict)
	assert.Equal(t, 30*time.Minute, timeout)
	assert.Equal(t, 15*time.Minute, recorded.Window)
}
