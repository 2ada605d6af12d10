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

func TestGiveawayService_Create_ClampsWinnerCount(t *testing.T) {
	uow, factory := setupUoW()

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	giveaway := &models.Giveaway{GuildID: 100, ChannelID: 555, Prize: "Nitro", WinnerCount: 0, EndsAt: time.Now().Add(time.Hour)}
	err := svc.Create(context.Background(), giveaway)

	require.NoError(t, err)
	assert.Equal(t, 1, giveaway.WinnerCount)
	assert.Equal(t, models.GiveawayStatusRunning, giveaway.Status)
}

func TestGiveawayService_Enter(t *testing.T) {
	tests := []struct {
		name         string
		giveaway     *models.Giveaway
		entryAdded   bool
		wantAccepted bool
		wantReason   models.FailureReason
	}{
		{
			name:       "unknown giveaway",
			giveaway:   nil,
			wantReason: models.ReasonNotFound,
		},
		{
			name:       "already ended",
			giveaway:   &models.Giveaway{ID: 1, Status: models.GiveawayStatusEnded},
			wantReason: models.ReasonNotRunning,
		},
		{
			name:       "duplicate entry",
			giveaway:   &models.Giveaway{ID: 1, Status: models.GiveawayStatusRunning},
			entryAdded: false,
			wantReason: models.ReasonDuplicate,
		},
		{
			name:         "accepted",
			giveaway:     &models.Giveaway{ID: 1, Status: models.GiveawayStatusRunning},
			entryAdded:   true,
			wantAccepted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow, factory := setupUoW()

			giveawayRepo := &MockGiveawayRepository{}
			if tt.giveaway == nil {
				giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, nil)
			} else {
				giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(tt.giveaway, nil)
			}
			giveawayRepo.On("AddEntry", mock.Anything, int64(1), int64(42), mock.Anything).Return(tt.entryAdded, nil)
			uow.SetGiveawayRepository(giveawayRepo)

			svc := NewGiveawayService(factory)
			result, err := svc.Enter(context.Background(), 1, 42)

			require.NoError(t, err)
			assert.Equal(t, tt.wantAccepted, result.Accepted)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestGiveawayService_End_SamplesWinners(t *testing.T) {
	uow, factory := setupUoW()

	giveaway := &models.Giveaway{
		ID:          1,
		GuildID:     100,
		ChannelID:   555,
		Prize:       "Nitro",
		WinnerCount: 2,
		Status:      models.GiveawayStatusEnded,
	}

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("MarkEnded", mock.Anything, int64(1)).Return(true, nil)
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(giveaway, nil)
	giveawayRepo.On("GetEntries", mock.Anything, int64(1)).Return([]int64{10, 20, 30, 40}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	result, err := svc.End(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Winners, 2)

	pool := map[int64]bool{10: true, 20: true, 30: true, 40: true}
	assert.True(t, pool[result.Winners[0]])
	assert.True(t, pool[result.Winners[1]])
	assert.NotEqual(t, result.Winners[0], result.Winners[1], "one entry must not win twice")

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	event, ok := published[0].(events.GiveawayEndedEvent)
	require.True(t, ok)
	assert.Equal(t, "Nitro", event.Prize)
	assert.False(t, event.Reroll)
	assert.Equal(t, result.Winners, event.Winners)
}

func TestGiveawayService_End_NoEntries(t *testing.T) {
	uow, factory := setupUoW()

	giveaway := &models.Giveaway{ID: 1, GuildID: 100, WinnerCount: 1, Status: models.GiveawayStatusEnded}

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("MarkEnded", mock.Anything, int64(1)).Return(true, nil)
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(giveaway, nil)
	giveawayRepo.On("GetEntries", mock.Anything, int64(1)).Return([]int64{}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	result, err := svc.End(context.Background(), 1)

	// Ending with nobody entered is still a successful end, just without winners
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Empty(t, result.Winners)
}

func TestGiveawayService_End_ConcurrentLoser(t *testing.T) {
	uow, factory := setupUoW()

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("MarkEnded", mock.Anything, int64(1)).Return(false, nil)
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Giveaway{ID: 1, Status: models.GiveawayStatusEnded}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	result, err := svc.End(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonNotRunning, result.Reason)
	assert.Empty(t, uow.PublishedEvents())
}

func TestGiveawayService_Reroll_RequiresEnded(t *testing.T) {
	uow, factory := setupUoW()

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Giveaway{ID: 1, Status: models.GiveawayStatusRunning}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	result, err := svc.Reroll(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, models.ReasonNotEnded, result.Reason)
}

func TestGiveawayService_Reroll_ResamplesEndedGiveaway(t *testing.T) {
	uow, factory := setupUoW()

	giveaway := &models.Giveaway{ID: 1, GuildID: 100, Prize: "Nitro", WinnerCount: 1, Status: models.GiveawayStatusEnded}

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(giveaway, nil)
	giveawayRepo.On("GetEntries", mock.Anything, int64(1)).Return([]int64{10, 20}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	result, err := svc.Reroll(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, result.OK)
	require.Len(t, result.Winners, 1)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	event, ok := published[0].(events.GiveawayEndedEvent)
	require.True(t, ok)
	assert.True(t, event.Reroll)
}

func TestGiveawayService_Cancel_NotRunning(t *testing.T) {
	uow, factory := setupUoW()

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("MarkCancelled", mock.Anything, int64(1)).Return(false, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	reason, err := svc.Cancel(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNotRunning, reason)
}

func TestGiveawayService_EndDue_EndsEachDueGiveaway(t *testing.T) {
	uow, factory := setupUoW()

	now := time.Now()
	first := &models.Giveaway{ID: 1, GuildID: 100, WinnerCount: 1, Status: models.GiveawayStatusEnded}
	second := &models.Giveaway{ID: 2, GuildID: 100, WinnerCount: 1, Status: models.GiveawayStatusEnded}

	giveawayRepo := &MockGiveawayRepository{}
	giveawayRepo.On("ListDue", mock.Anything, now).Return([]*models.Giveaway{first, second}, nil)
	giveawayRepo.On("MarkEnded", mock.Anything, int64(1)).Return(true, nil)
	// The second giveaway was ended manually while the scan ran
	giveawayRepo.On("MarkEnded", mock.Anything, int64(2)).Return(false, nil)
	giveawayRepo.On("GetByID", mock.Anything, int64(1)).Return(first, nil)
	giveawayRepo.On("GetByID", mock.Anything, int64(2)).Return(second, nil)
	giveawayRepo.On("GetEntries", mock.Anything, int64(1)).Return([]int64{10}, nil)
	uow.SetGiveawayRepository(giveawayRepo)

	svc := NewGiveawayService(factory)
	results, err := svc.EndDue(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].Giveaway.ID)
	assert.Equal(t, []int64{10}, results[0].Winners)
}
