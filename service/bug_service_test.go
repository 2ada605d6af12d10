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

const (
	testBugWindow  = 10 * time.Minute
	testBugTimeout = 10 * time.Minute
)

func TestBugReportService_Submit_OK(t *testing.T) {
	uow, factory := setupUoW()

	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Return(models.VerdictOK, nil)

	bugRepo := &MockBugReportRepository{}
	bugRepo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.BugReport).ID = 7
	}).Return(nil)
	uow.SetBugReportRepository(bugRepo)

	svc := NewBugReportService(factory, tracker, testBugWindow, testBugTimeout)
	result, err := svc.Submit(context.Background(), 100, 42, 555, 777, "the bot double-posts transcripts")

	require.NoError(t, err)
	assert.Equal(t, models.VerdictOK, result.Verdict)
	require.NotNil(t, result.Report)
	assert.Equal(t, int64(7), result.Report.ID)
	assert.Equal(t, models.BugReportStatusOpen, result.Report.Status)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	registered, ok := published[0].(events.BugRegisteredEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), registered.ReportID)
}

func TestBugReportService_Submit_PassesThrottlePolicy(t *testing.T) {
	_, factory := setupUoW()

	var recorded RatePolicy
	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Run(func(args mock.Arguments) {
		recorded = args.Get(1).(RatePolicy)
	}).Return(models.VerdictWarn, nil)

	svc := NewBugReportService(factory, tracker, testBugWindow, testBugTimeout)
	_, err := svc.Submit(context.Background(), 100, 42, 555, 777, "report")

	require.NoError(t, err)
	assert.Equal(t, models.RateScopeBugReport, recorded.Scope)
	assert.Equal(t, testBugWindow, recorded.Window)
}

func TestBugReportService_Submit_WarnSkipsStorage(t *testing.T) {
	uow, factory := setupUoW()

	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Return(models.VerdictWarn, nil)

	bugRepo := &MockBugReportRepository{}
	uow.SetBugReportRepository(bugRepo)

	svc := NewBugReportService(factory, tracker, testBugWindow, testBugTimeout)
	result, err := svc.Submit(context.Background(), 100, 42, 555, 777, "report")

	require.NoError(t, err)
	assert.Equal(t, models.VerdictWarn, result.Verdict)
	assert.Nil(t, result.Report)
	assert.Zero(t, result.Timeout)
	bugRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBugReportService_Submit_MuteCarriesTimeout(t *testing.T) {
	_, factory := setupUoW()

	tracker := &MockRateTracker{}
	tracker.On("Record", mock.Anything, mock.Anything, int64(100), int64(42)).Return(models.VerdictMute, nil)

	svc := NewBugReportService(factory, tracker, testBugWindow, testBugTimeout)
	result, err := svc.Submit(context.Background(), 100, 42, 555, 777, "report")

	require.NoError(t, err)
	assert.Equal(t, models.VerdictMute, result.Verdict)
	assert.Equal(t, testBugTimeout, result.Timeout)
}

func TestBugReportService_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		report     *models.BugReport
		resolved   bool
		wantReason models.FailureReason
	}{
		{"unknown report", nil, false, models.ReasonNotFound},
		{"wrong guild", &models.BugReport{ID: 7, GuildID: 999}, false, models.ReasonNotFound},
		{"already resolved", &models.BugReport{ID: 7, GuildID: 100}, false, models.ReasonNotOpen},
		{"resolved", &models.BugReport{ID: 7, GuildID: 100}, true, models.ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uow, factory := setupUoW()

			bugRepo := &MockBugReportRepository{}
			if tt.report == nil {
				bugRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)
			} else {
				bugRepo.On("GetByID", mock.Anything, int64(7)).Return(tt.report, nil)
			}
			bugRepo.On("Resolve", mock.Anything, int64(7), int64(1), "fixed", mock.Anything).Return(tt.resolved, nil)
			uow.SetBugReportRepository(bugRepo)

			tracker := &MockRateTracker{}
			svc := NewBugReportService(factory, tracker, testBugWindow, testBugTimeout)
			reason, err := svc.Resolve(context.Background(), 100, 7, 1, "fixed")

			require.NoError(t, err)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}
