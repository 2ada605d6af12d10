package service

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
)

type bugReportService struct {
	uowFactory UnitOfWorkFactory
	tracker    RateTracker
	window     time.Duration
	timeout    time.Duration
}

// NewBugReportService creates a new bug report service. Window is the
// throttle window, timeout the suspension applied on a mute verdict.
func NewBugReportService(uowFactory UnitOfWorkFactory, tracker RateTracker, window, timeout time.Duration) BugReportService {
	return &bugReportService{
		uowFactory: uowFactory,
		tracker:    tracker,
		window:     window,
		timeout:    timeout,
	}
}

// Submit runs the reporter through the throttle and registers the report on
// an ok verdict. Warned and muted submissions are not stored.
func (s *bugReportService) Submit(ctx context.Context, guildID, reporterID, channelID, messageID int64, content string) (*models.BugSubmitResult, error) {
	verdict, err := s.tracker.Record(ctx, BugReportPolicy(s.window), guildID, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to run bug report throttle: %w", err)
	}

	switch verdict {
	case models.VerdictWarn:
		return &models.BugSubmitResult{Verdict: verdict}, nil
	case models.VerdictMute:
		return &models.BugSubmitResult{Verdict: verdict, Timeout: s.timeout}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	report := &models.BugReport{
		GuildID:         guildID,
		ReporterID:      reporterID,
		SourceChannelID: channelID,
		SourceMessageID: messageID,
		Content:         content,
		Status:          models.BugReportStatusOpen,
	}
	if err := uow.BugReportRepository().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create bug report: %w", err)
	}

	uow.EventBus().Publish(events.BugRegisteredEvent{
		ReportID:   report.ID,
		GuildID:    guildID,
		ReporterID: reporterID,
		Content:    content,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BugSubmitResult{Verdict: models.VerdictOK, Report: report}, nil
}

func (s *bugReportService) SetRegistryMessage(ctx context.Context, reportID, messageID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.BugReportRepository().SetRegistryMessage(ctx, reportID, messageID); err != nil {
		return fmt.Errorf("failed to record registry message: %w", err)
	}

	return uow.Commit()
}

func (s *bugReportService) Resolve(ctx context.Context, guildID, reportID, resolvedBy int64, reason string) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	report, err := uow.BugReportRepository().GetByID(ctx, reportID)
	if err != nil {
		return "", fmt.Errorf("failed to look up bug report: %w", err)
	}
	if report == nil || report.GuildID != guildID {
		return models.ReasonNotFound, nil
	}

	resolved, err := uow.BugReportRepository().Resolve(ctx, reportID, resolvedBy, reason, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to resolve bug report: %w", err)
	}
	if !resolved {
		return models.ReasonNotOpen, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *bugReportService) ListOpen(ctx context.Context, guildID int64) ([]*models.BugReport, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	reports, err := uow.BugReportRepository().ListOpen(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bug reports: %w", err)
	}

	return reports, nil
}
