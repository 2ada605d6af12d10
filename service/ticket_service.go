package service

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// Inactivity warnings fire this long before the auto-close deadline
const (
	warn30Lead = 30 * time.Minute
	warn10Lead = 10 * time.Minute
)

// autoCloseReason is the fixed system reason recorded on inactivity closes
const autoCloseReason = "Closed automatically due to inactivity"

// TicketEscalationAction is the step the inactivity scan decided on
type TicketEscalationAction string

const (
	EscalationWarn30 TicketEscalationAction = "warn_30"
	EscalationWarn10 TicketEscalationAction = "warn_10"
	EscalationClose  TicketEscalationAction = "close"
)

// TicketEscalation is one due inactivity step found by a scan. Warning flags
// and closes are already persisted; callers only perform the notifications.
type TicketEscalation struct {
	Ticket   *models.Ticket
	Action   TicketEscalationAction
	Messages []*models.TicketMessage // message history, populated for closes
}

type ticketService struct {
	uowFactory      UnitOfWorkFactory
	inactivityLimit time.Duration
}

// NewTicketService creates a new ticket service with the given idle auto-close limit
func NewTicketService(uowFactory UnitOfWorkFactory, inactivityLimit time.Duration) TicketService {
	return &ticketService{
		uowFactory:      uowFactory,
		inactivityLimit: inactivityLimit,
	}
}

func (s *ticketService) Open(ctx context.Context, ticket *models.Ticket) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.TicketRepository().GetByChannel(ctx, ticket.ChannelID)
	if err != nil {
		return "", fmt.Errorf("failed to check channel binding: %w", err)
	}
	if existing != nil {
		return models.ReasonDuplicate, nil
	}

	ticket.Status = models.TicketStatusOpen
	if err := uow.TicketRepository().Create(ctx, ticket); err != nil {
		return "", fmt.Errorf("failed to create ticket: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *ticketService) GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ticket: %w", err)
	}

	return ticket, nil
}

// RecordMessage appends a message to the bound ticket's log and refreshes the
// rolling inactivity timer. Messages in channels without an open ticket are
// silently ignored.
func (s *ticketService) RecordMessage(ctx context.Context, channelID int64, msg *models.TicketMessage) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil || !ticket.IsOpen() {
		return nil
	}

	msg.TicketID = ticket.ID
	if err := uow.TicketRepository().AddMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to log ticket message: %w", err)
	}

	if _, err := uow.TicketRepository().TouchActivity(ctx, channelID, time.Now()); err != nil {
		return fmt.Errorf("failed to refresh ticket activity: %w", err)
	}

	return uow.Commit()
}

// Close transitions the ticket bound to the channel from open to closed. The
// transition is a conditional update keyed on the open status, so concurrent
// close attempts produce exactly one transcript.
func (s *ticketService) Close(ctx context.Context, channelID int64, closedBy int64, reason string) (*models.TicketCloseResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().Close(ctx, channelID, closedBy, reason, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to close ticket: %w", err)
	}
	if ticket == nil {
		// Distinguish a missing binding from an already-closed ticket
		existing, err := uow.TicketRepository().GetByChannel(ctx, channelID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up ticket: %w", err)
		}
		if existing == nil {
			return &models.TicketCloseResult{Reason: models.ReasonNotFound}, nil
		}
		return &models.TicketCloseResult{Reason: models.ReasonNotOpen, Ticket: existing}, nil
	}

	messages, err := uow.TicketRepository().GetMessages(ctx, ticket.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket messages: %w", err)
	}

	uow.EventBus().Publish(events.TicketClosedEvent{
		TicketID:  ticket.ID,
		GuildID:   ticket.GuildID,
		ChannelID: ticket.ChannelID,
		OpenerID:  ticket.OpenerID,
		ClosedBy:  closedBy,
		Reason:    reason,
		Kind:      ticket.Kind,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TicketCloseResult{OK: true, Ticket: ticket, Messages: messages}, nil
}

func (s *ticketService) Reopen(ctx context.Context, channelID int64) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return models.ReasonNotFound, nil
	}

	// Reopen also refreshes the inactivity timer, otherwise the stale
	// last-activity timestamp would make the ticket instantly auto-closable
	reopened, err := uow.TicketRepository().Reopen(ctx, ticket.ID, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to reopen ticket: %w", err)
	}
	if !reopened {
		return models.ReasonNotOpen, nil
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *ticketService) Claim(ctx context.Context, channelID int64, claimant *int64) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return models.ReasonNotFound, nil
	}
	if !ticket.IsOpen() {
		return models.ReasonNotOpen, nil
	}

	if err := uow.TicketRepository().SetClaimant(ctx, ticket.ID, claimant); err != nil {
		return "", fmt.Errorf("failed to update claimant: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *ticketService) SetPurchaseDetails(ctx context.Context, channelID int64, plan, method string) (models.FailureReason, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	ticket, err := uow.TicketRepository().GetByChannel(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("failed to look up ticket: %w", err)
	}
	if ticket == nil {
		return models.ReasonNotFound, nil
	}
	if ticket.Kind != models.TicketKindPurchase {
		return models.ReasonValidationFailed, nil
	}

	if err := uow.TicketRepository().SetPurchaseDetails(ctx, ticket.ID, plan, method); err != nil {
		return "", fmt.Errorf("failed to update purchase details: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return models.ReasonNone, nil
}

func (s *ticketService) Stats(ctx context.Context, guildID int64) (int, int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	open, closed, err := uow.TicketRepository().CountByGuild(ctx, guildID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	return open, closed, nil
}

func (s *ticketService) RegisterPanel(ctx context.Context, panel *models.TicketPanel) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.TicketRepository().CreatePanel(ctx, panel); err != nil {
		return fmt.Errorf("failed to record panel: %w", err)
	}

	return uow.Commit()
}

// ScanInactive walks all open tickets and applies the due escalation steps.
// The warnings are sticky flags so each fires at most once per open period;
// the deadline itself is level-triggered, so detection lags by up to one
// scan interval.
func (s *ticketService) ScanInactive(ctx context.Context, now time.Time) ([]*TicketEscalation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	open, err := uow.TicketRepository().ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}

	var escalations []*TicketEscalation
	for _, ticket := range open {
		idle := ticket.IdleFor(now)

		switch {
		case idle >= s.inactivityLimit:
			closed, err := uow.TicketRepository().Close(ctx, ticket.ChannelID, 0, autoCloseReason, now)
			if err != nil {
				return nil, fmt.Errorf("failed to auto-close ticket %d: %w", ticket.ID, err)
			}
			if closed == nil {
				// Closed manually between the list and the update
				continue
			}

			messages, err := uow.TicketRepository().GetMessages(ctx, closed.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load messages for ticket %d: %w", closed.ID, err)
			}

			uow.EventBus().Publish(events.TicketClosedEvent{
				TicketID:  closed.ID,
				GuildID:   closed.GuildID,
				ChannelID: closed.ChannelID,
				OpenerID:  closed.OpenerID,
				ClosedBy:  0,
				Reason:    autoCloseReason,
				Kind:      closed.Kind,
			})

			escalations = append(escalations, &TicketEscalation{
				Ticket:   closed,
				Action:   EscalationClose,
				Messages: messages,
			})

		case idle >= s.inactivityLimit-warn10Lead && !ticket.Warned10:
			if err := uow.TicketRepository().SetWarningFlags(ctx, ticket.ID, true, true); err != nil {
				return nil, fmt.Errorf("failed to set warning flags on ticket %d: %w", ticket.ID, err)
			}
			// A ticket that skipped past both thresholds between scans still
			// owes the 30-minute notice
			if !ticket.Warned30 {
				ticket.Warned30 = true
				escalations = append(escalations, &TicketEscalation{Ticket: ticket, Action: EscalationWarn30})
			}
			ticket.Warned10 = true
			escalations = append(escalations, &TicketEscalation{Ticket: ticket, Action: EscalationWarn10})

		case idle >= s.inactivityLimit-warn30Lead && !ticket.Warned30:
			if err := uow.TicketRepository().SetWarningFlags(ctx, ticket.ID, true, ticket.Warned10); err != nil {
				return nil, fmt.Errorf("failed to set warning flags on ticket %d: %w", ticket.ID, err)
			}
			ticket.Warned30 = true
			escalations = append(escalations, &TicketEscalation{Ticket: ticket, Action: EscalationWarn30})
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(escalations) > 0 {
		log.WithFields(log.Fields{
			"escalations": len(escalations),
			"openTickets": len(open),
		}).Info("Ticket inactivity scan produced escalations")
	}

	return escalations, nil
}
