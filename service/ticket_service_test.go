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

const testInactivityLimit = 180 * time.Minute

func TestTicketService_Open_DuplicateChannel(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(&models.Ticket{ID: 1, ChannelID: 555}, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	reason, err := svc.Open(context.Background(), &models.Ticket{GuildID: 100, OpenerID: 42, ChannelID: 555, Kind: models.TicketKindSupport})

	require.NoError(t, err)
	assert.Equal(t, models.ReasonDuplicate, reason)
	ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTicketService_RecordMessage_IgnoresUnboundChannel(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(nil, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	err := svc.RecordMessage(context.Background(), 555, &models.TicketMessage{AuthorID: 42, Content: "hello"})

	require.NoError(t, err)
	ticketRepo.AssertNotCalled(t, "AddMessage", mock.Anything, mock.Anything)
}

func TestTicketService_Close_Success(t *testing.T) {
	uow, factory := setupUoW()

	closed := &models.Ticket{
		ID:        1,
		GuildID:   100,
		OpenerID:  42,
		ChannelID: 555,
		Kind:      models.TicketKindSupport,
		Status:    models.TicketStatusClosed,
	}
	messages := []*models.TicketMessage{
		{TicketID: 1, AuthorID: 42, Content: "first"},
		{TicketID: 1, AuthorID: 7, Content: "second"},
	}

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("Close", mock.Anything, int64(555), int64(7), "resolved", mock.Anything).Return(closed, nil)
	ticketRepo.On("GetMessages", mock.Anything, int64(1)).Return(messages, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	result, err := svc.Close(context.Background(), 555, 7, "resolved")

	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Len(t, result.Messages, 2)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	event, ok := published[0].(events.TicketClosedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), event.ClosedBy)
	assert.Equal(t, "resolved", event.Reason)
}

func TestTicketService_Close_NotFound(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("Close", mock.Anything, int64(555), int64(7), "resolved", mock.Anything).Return(nil, nil)
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(nil, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	result, err := svc.Close(context.Background(), 555, 7, "resolved")

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNotFound, result.Reason)
}

func TestTicketService_Close_AlreadyClosed(t *testing.T) {
	uow, factory := setupUoW()

	existing := &models.Ticket{ID: 1, ChannelID: 555, Status: models.TicketStatusClosed}
	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("Close", mock.Anything, int64(555), int64(7), "resolved", mock.Anything).Return(nil, nil)
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(existing, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	result, err := svc.Close(context.Background(), 555, 7, "resolved")

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNotOpen, result.Reason)
	assert.Empty(t, uow.PublishedEvents())
}

func TestTicketService_Reopen_RefreshesTimer(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(&models.Ticket{
		ID:        1,
		ChannelID: 555,
		Status:    models.TicketStatusClosed,
	}, nil)

	var refreshedAt time.Time
	ticketRepo.On("Reopen", mock.Anything, int64(1), mock.Anything).Run(func(args mock.Arguments) {
		refreshedAt = args.Get(2).(time.Time)
	}).Return(true, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	reason, err := svc.Reopen(context.Background(), 555)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
	assert.WithinDuration(t, time.Now(), refreshedAt, time.Minute)
}

func TestTicketService_Reopen_NotClosed(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(&models.Ticket{
		ID:        1,
		ChannelID: 555,
		Status:    models.TicketStatusOpen,
	}, nil)
	ticketRepo.On("Reopen", mock.Anything, int64(1), mock.Anything).Return(false, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	reason, err := svc.Reopen(context.Background(), 555)

	require.NoError(t, err)
	assert.Equal(t, models.ReasonNotOpen, reason)
}

func TestTicketService_SetPurchaseDetails_WrongKind(t *testing.T) {
	uow, factory := setupUoW()

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("GetByChannel", mock.Anything, int64(555)).Return(&models.Ticket{
		ID:        1,
		ChannelID: 555,
		Kind:      models.TicketKindSupport,
		Status:    models.TicketStatusOpen,
	}, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	reason, err := svc.SetPurchaseDetails(context.Background(), 555, "premium", "paypal")

	require.NoError(t, err)
	assert.Equal(t, models.ReasonValidationFailed, reason)
	ticketRepo.AssertNotCalled(t, "SetPurchaseDetails", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func openTicketIdleFor(id, channelID int64, idle time.Duration, now time.Time) *models.Ticket {
	return &models.Ticket{
		ID:             id,
		GuildID:        100,
		OpenerID:       42,
		ChannelID:      channelID,
		Kind:           models.TicketKindSupport,
		Status:         models.TicketStatusOpen,
		LastActivityAt: now.Add(-idle),
	}
}

func TestTicketService_ScanInactive_Progression(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		idle       time.Duration
		warned30   bool
		warned10   bool
		wantAction TicketEscalationAction
		wantNone   bool
	}{
		{"fresh ticket untouched", time.Hour, false, false, "", true},
		{"first warning due", testInactivityLimit - 25*time.Minute, false, false, EscalationWarn30, false},
		{"first warning already sent", testInactivityLimit - 25*time.Minute, true, false, "", true},
		{"final warning due", testInactivityLimit - 5*time.Minute, true, false, EscalationWarn10, false},
		{"final warning already sent", testInactivityLimit - 5*time.Minute, true, true, "", true},
		{"deadline passed", testInactivityLimit + time.Minute, true, true, EscalationClose, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow, factory := setupUoW()

			ticket := openTicketIdleFor(1, 555, tt.idle, now)
			ticket.Warned30 = tt.warned30
			ticket.Warned10 = tt.warned10

			ticketRepo := &MockTicketRepository{}
			ticketRepo.On("ListOpen", mock.Anything).Return([]*models.Ticket{ticket}, nil)
			ticketRepo.On("SetWarningFlags", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(nil)

			if tt.wantAction == EscalationClose {
				closed := *ticket
				closed.Status = models.TicketStatusClosed
				ticketRepo.On("Close", mock.Anything, int64(555), int64(0), autoCloseReason, now).Return(&closed, nil)
				ticketRepo.On("GetMessages", mock.Anything, int64(1)).Return([]*models.TicketMessage{}, nil)
			}
			uow.SetTicketRepository(ticketRepo)

			svc := NewTicketService(factory, testInactivityLimit)
			escalations, err := svc.ScanInactive(context.Background(), now)
			require.NoError(t, err)

			if tt.wantNone {
				assert.Empty(t, escalations)
				return
			}
			require.Len(t, escalations, 1)
			assert.Equal(t, tt.wantAction, escalations[0].Action)
		})
	}
}

func TestTicketService_ScanInactive_SkippedWarningsFireTogether(t *testing.T) {
	now := time.Now()
	uow, factory := setupUoW()

	// Never warned, but already inside the final-warning lead; one scan
	// catches up by delivering both notices
	ticket := openTicketIdleFor(1, 555, testInactivityLimit-5*time.Minute, now)

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("ListOpen", mock.Anything).Return([]*models.Ticket{ticket}, nil)
	ticketRepo.On("SetWarningFlags", mock.Anything, int64(1), true, true).Return(nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	escalations, err := svc.ScanInactive(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, escalations, 2)
	assert.Equal(t, EscalationWarn30, escalations[0].Action)
	assert.Equal(t, EscalationWarn10, escalations[1].Action)
	ticketRepo.AssertExpectations(t)
}

func TestTicketService_ScanInactive_FinalWarningMarksBothFlags(t *testing.T) {
	now := time.Now()
	uow, factory := setupUoW()

	ticket := openTicketIdleFor(1, 555, testInactivityLimit-5*time.Minute, now)
	ticket.Warned30 = true

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("ListOpen", mock.Anything).Return([]*models.Ticket{ticket}, nil)
	ticketRepo.On("SetWarningFlags", mock.Anything, int64(1), true, true).Return(nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	escalations, err := svc.ScanInactive(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, escalations, 1)
	assert.Equal(t, EscalationWarn10, escalations[0].Action)
	ticketRepo.AssertExpectations(t)
}

func TestTicketService_ScanInactive_CloseRaced(t *testing.T) {
	now := time.Now()
	uow, factory := setupUoW()

	ticket := openTicketIdleFor(1, 555, testInactivityLimit+time.Minute, now)

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("ListOpen", mock.Anything).Return([]*models.Ticket{ticket}, nil)
	// A staff member closed the ticket between the list and the update
	ticketRepo.On("Close", mock.Anything, int64(555), int64(0), autoCloseReason, now).Return(nil, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	escalations, err := svc.ScanInactive(context.Background(), now)

	require.NoError(t, err)
	assert.Empty(t, escalations)
	assert.Empty(t, uow.PublishedEvents())
}

func TestTicketService_ScanInactive_AutoClosePublishesSystemEvent(t *testing.T) {
	now := time.Now()
	uow, factory := setupUoW()

	ticket := openTicketIdleFor(1, 555, testInactivityLimit+time.Minute, now)
	closed := *ticket
	closed.Status = models.TicketStatusClosed

	ticketRepo := &MockTicketRepository{}
	ticketRepo.On("ListOpen", mock.Anything).Return([]*models.Ticket{ticket}, nil)
	ticketRepo.On("Close", mock.Anything, int64(555), int64(0), autoCloseReason, now).Return(&closed, nil)
	ticketRepo.On("GetMessages", mock.Anything, int64(1)).Return([]*models.TicketMessage{{TicketID: 1, Content: "hi"}}, nil)
	uow.SetTicketRepository(ticketRepo)

	svc := NewTicketService(factory, testInactivityLimit)
	escalations, err := svc.ScanInactive(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, escalations, 1)
	assert.Equal(t, EscalationClose, escalations[0].Action)
	assert.Len(t, escalations[0].Messages, 1)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	event, ok := published[0].(events.TicketClosedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(0), event.ClosedBy)
	assert.Equal(t, autoCloseReason, event.Reason)
}
