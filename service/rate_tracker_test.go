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

func TestBugReportPolicy_Verdicts(t *testing.T) {
	policy := BugReportPolicy(10 * time.Minute)

	tests := []struct {
		name       string
		violations int
		inserted   bool
		want       models.Verdict
	}{
		{"first report ever", 0, true, models.VerdictOK},
		{"report after window reset", 0, false, models.VerdictOK},
		{"second report in window", 1, false, models.VerdictWarn},
		{"third report in window", 2, false, models.VerdictMute},
		{"further reports keep muting", 5, false, models.VerdictMute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Decide(tt.violations, tt.inserted))
		})
	}

	assert.Equal(t, models.RateScopeBugReport, policy.Scope)
	assert.Equal(t, 0, policy.FirstHitCount)
}

func TestAntipingPolicy_Verdicts(t *testing.T) {
	policy := AntipingPolicy(5*time.Minute, 1)

	tests := []struct {
		name       string
		violations int
		inserted   bool
		want       models.Verdict
	}{
		{"first offense ever", 1, true, models.VerdictWarn},
		{"offense after window reset", 1, false, models.VerdictWarn},
		{"second offense in window", 2, false, models.VerdictMute},
		{"further offenses keep muting", 4, false, models.VerdictMute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Decide(tt.violations, tt.inserted))
		})
	}

	assert.Equal(t, models.RateScopeAntiping, policy.Scope)
	assert.Equal(t, 1, policy.FirstHitCount)
}

func TestAntipingPolicy_HigherThreshold(t *testing.T) {
	policy := AntipingPolicy(5*time.Minute, 3)

	assert.Equal(t, models.VerdictWarn, policy.Decide(1, true))
	assert.Equal(t, models.VerdictWarn, policy.Decide(2, false))
	assert.Equal(t, models.VerdictWarn, policy.Decide(3, false))
	assert.Equal(t, models.VerdictMute, policy.Decide(4, false))
}

func TestRateTracker_Record(t *testing.T) {
	ctx := context.Background()

	setup := func() (RateTracker, *MockUnitOfWork, *MockRateRecordRepository) {
		mockUoW := new(MockUnitOfWork)
		mockFactory := new(MockUnitOfWorkFactory)
		mockRateRepo := new(MockRateRecordRepository)

		mockUoW.SetRateRecordRepository(mockRateRepo)
		mockFactory.On("Create").Return(mockUoW)

		return NewRateTracker(mockFactory), mockUoW, mockRateRepo
	}

	t.Run("persists through the store and maps the verdict", func(t *testing.T) {
		tracker, mockUoW, mockRateRepo := setup()

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockRateRepo.On("Touch", ctx, models.RateScopeBugReport, int64(100), int64(200), 0,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(1, false, nil)

		verdict, err := tracker.Record(ctx, BugReportPolicy(10*time.Minute), 100, 200)
		require.NoError(t, err)
		assert.Equal(t, models.VerdictWarn, verdict)

		mockUoW.AssertExpectations(t)
		mockRateRepo.AssertExpectations(t)
	})

	t.Run("window cutoff precedes now by the policy window", func(t *testing.T) {
		tracker, mockUoW, mockRateRepo := setup()

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)

		window := 5 * time.Minute
		var gotCutoff, gotNow time.Time
		mockRateRepo.On("Touch", ctx, models.RateScopeAntiping, int64(100), int64(200), 1,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Run(func(args mock.Arguments) {
				gotCutoff = args.Get(5).(time.Time)
				gotNow = args.Get(6).(time.Time)
			}).
			Return(2, false, nil)

		verdict, err := tracker.Record(ctx, AntipingPolicy(window, 1), 100, 200)
		require.NoError(t, err)
		assert.Equal(t, models.VerdictMute, verdict)
		assert.Equal(t, window, gotNow.Sub(gotCutoff))
	})

	t.Run("store failure surfaces as error", func(t *testing.T) {
		tracker, mockUoW, mockRateRepo := setup()

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)

		mockRateRepo.On("Touch", ctx, models.RateScopeBugReport, int64(100), int64(200), 0,
			mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(0, false, assert.AnError)

		_, err := tracker.Record(ctx, BugReportPolicy(10*time.Minute), 100, 200)
		assert.Error(t, err)
	})
}
