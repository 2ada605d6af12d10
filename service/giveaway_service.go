package service

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

type giveawayService struct {
	uowFactory UnitOfWorkFactory
}

// NewGiveawayService creates a new giveaway service
func NewGiveawayService(uowFactory UnitOfWorkFactory) GiveawayService {
	return &giveawayService{
		uowFactory: uowFactory,
	}
}

func (s *giveawayService) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if giveaway.WinnerCount < 1 {
		giveaway.WinnerCount = 1
	}
	giveaway.Status = models.GiveawayStatusRunning

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.GiveawayRepository().Create(ctx, giveaway); err != nil {
		return fmt.Errorf("failed to create giveaway: %w", err)
	}

	return uow.Commit()
}

func (s *giveawayService) SetMessageID(ctx context.Context, giveawayID, messageID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.GiveawayRepository().SetMessageID(ctx, giveawayID, messageID); err != nil {
		return fmt.Errorf("failed to record message id: %w", err)
	}

	return uow.Commit()
}

// Enter registers a participant. Duplicate entries are rejected without error
// so button mashing stays silent on the caller side.
func (s *giveawayService) Enter(ctx context.Context, giveawayID, userID int64) (*models.GiveawayEntryResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	giveaway, err := uow.GiveawayRepository().GetByID(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up giveaway: %w", err)
	}
	if giveaway == nil {
		return &models.GiveawayEntryResult{Reason: models.ReasonNotFound}, nil
	}
	if !giveaway.IsRunning() {
		return &models.GiveawayEntryResult{Reason: models.ReasonNotRunning}, nil
	}

	added, err := uow.GiveawayRepository().AddEntry(ctx, giveawayID, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}
	if !added {
		return &models.GiveawayEntryResult{Reason: models.ReasonDuplicate}, nil
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GiveawayEntryResult{Accepted: true}, nil
}

// End transitions a running giveaway to ended and samples the winners. The
// status transition is a conditional update, so of two concurrent end
// attempts only one samples winners; the loser sees not_running.
func (s *giveawayService) End(ctx context.Context, giveawayID int64) (*models.GiveawayEndResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ended, err := uow.GiveawayRepository().MarkEnded(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to end giveaway: %w", err)
	}
	if !ended {
		giveaway, err := uow.GiveawayRepository().GetByID(ctx, giveawayID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up giveaway: %w", err)
		}
		if giveaway == nil {
			return &models.GiveawayEndResult{Reason: models.ReasonNotFound}, nil
		}
		return &models.GiveawayEndResult{Reason: models.ReasonNotRunning, Giveaway: giveaway}, nil
	}

	giveaway, err := uow.GiveawayRepository().GetByID(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload giveaway: %w", err)
	}

	entries, err := uow.GiveawayRepository().GetEntries(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	winners := SampleWinners(entries, giveaway.WinnerCount)

	uow.EventBus().Publish(events.GiveawayEndedEvent{
		GiveawayID: giveaway.ID,
		GuildID:    giveaway.GuildID,
		ChannelID:  giveaway.ChannelID,
		Prize:      giveaway.Prize,
		Winners:    winners,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GiveawayEndResult{OK: true, Giveaway: giveaway, Winners: winners}, nil
}

// Reroll re-samples winners of an already ended giveaway. It is a distinct
// transition from End so it stays reachable after the due-poll has finished
// the giveaway; the stored entries are sampled again and the status is left
// untouched.
func (s *giveawayService) Reroll(ctx context.Context, giveawayID int64) (*models.GiveawayEndResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	giveaway, err := uow.GiveawayRepository().GetByID(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up giveaway: %w", err)
	}
	if giveaway == nil {
		return &models.GiveawayEndResult{Reason: models.ReasonNotFound}, nil
	}
	if giveaway.Status != models.GiveawayStatusEnded {
		return &models.GiveawayEndResult{Reason: models.ReasonNotEnded, Giveaway: giveaway}, nil
	}

	entries, err := uow.GiveawayRepository().GetEntries(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	winners := SampleWinners(entries, giveaway.WinnerCount)

	uow.EventBus().Publish(events.GiveawayEndedEvent{
		GiveawayID: giveaway.ID,
		GuildID:    giveaway.GuildID,
		ChannelID:  giveaway.ChannelID,
		Prize:      giveaway.Prize,
		Winners:    winners,
		Reroll:     true,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.GiveawayEndResult{OK: true, Giveaway: giveaway, Winners: winners}, nil
}

func (s *giveawayService) Cancel(ctx context.Context, giveawayID int64) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	cancelled, err := uow.GiveawayRepository().MarkCancelled(ctx, giveawayID)
	if err != nil {
		return "", fmt.Errorf("failed to cancel giveaway: %w", err)
	}
	if !cancelled {
		return models.ReasonNotRunning, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

// EndDue ends every running giveaway whose end time has passed. Each giveaway
// ends in its own transaction so one failure does not hold up the rest.
func (s *giveawayService) EndDue(ctx context.Context, now time.Time) ([]*models.GiveawayEndResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	due, err := uow.GiveawayRepository().ListDue(ctx, now)
	if rbErr := uow.Rollback(); rbErr != nil {
		log.Errorf("Error rolling back due-scan transaction: %v", rbErr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list due giveaways: %w", err)
	}

	var results []*models.GiveawayEndResult
	for _, giveaway := range due {
		result, err := s.End(ctx, giveaway.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"giveawayID": giveaway.ID,
				"error":      err,
			}).Error("Failed to end due giveaway")
			continue
		}
		if !result.OK {
			// Raced with a manual end, nothing to announce
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *giveawayService) ListRunning(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	giveaways, err := uow.GiveawayRepository().ListRunning(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list giveaways: %w", err)
	}

	return giveaways, nil
}
