package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// TicketRepository implements the TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

const ticketColumns = `id, guild_id, opener_id, kind, channel_id, status, claimed_by,
	purchase_plan, payment_method, created_at, closed_at, close_reason, closed_by,
	last_activity_at, warned_30, warned_10`

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var ticket models.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.GuildID,
		&ticket.OpenerID,
		&ticket.Kind,
		&ticket.ChannelID,
		&ticket.Status,
		&ticket.ClaimedBy,
		&ticket.PurchasePlan,
		&ticket.PaymentMethod,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
		&ticket.CloseReason,
		&ticket.ClosedBy,
		&ticket.LastActivityAt,
		&ticket.Warned30,
		&ticket.Warned10,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Create persists a new open ticket; fails on a duplicate channel binding
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (guild_id, opener_id, kind, channel_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at, last_activity_at
	`

	err := r.q.QueryRow(ctx, query,
		ticket.GuildID,
		ticket.OpenerID,
		ticket.Kind,
		ticket.ChannelID,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt, &ticket.LastActivityAt)

	if err != nil {
		return fmt.Errorf("failed to create ticket for channel %d: %w", ticket.ChannelID, err)
	}

	return nil
}

// GetByID retrieves a ticket by id, or nil when absent
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}

	return ticket, nil
}

// GetByChannel retrieves the ticket bound to a channel, or nil when absent
func (r *TicketRepository) GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE channel_id = $1`

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, channelID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket for channel %d: %w", channelID, err)
	}

	return ticket, nil
}

// Close transitions the ticket bound to the channel from open to closed. The
// status is part of the match so concurrent closers cannot both succeed;
// returns nil when no open ticket is bound to the channel.
func (r *TicketRepository) Close(ctx context.Context, channelID int64, closedBy int64, reason string, now time.Time) (*models.Ticket, error) {
	query := `
		UPDATE tickets
		SET status = 'closed', closed_at = $3, close_reason = $4, closed_by = $2
		WHERE channel_id = $1 AND status = 'open'
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.q.QueryRow(ctx, query, channelID, closedBy, now, reason))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to close ticket for channel %d: %w", channelID, err)
	}

	return ticket, nil
}

// Reopen transitions a closed ticket back to open, refreshing activity and
// clearing the warning flags. Returns false when the ticket is not closed.
func (r *TicketRepository) Reopen(ctx context.Context, ticketID int64, now time.Time) (bool, error) {
	query := `
		UPDATE tickets
		SET status = 'open', closed_at = NULL, close_reason = NULL, closed_by = NULL,
			last_activity_at = $2, warned_30 = FALSE, warned_10 = FALSE
		WHERE id = $1 AND status = 'closed'
	`

	result, err := r.q.Exec(ctx, query, ticketID, now)
	if err != nil {
		return false, fmt.Errorf("failed to reopen ticket %d: %w", ticketID, err)
	}

	return result.RowsAffected() == 1, nil
}

// SetClaimant sets or clears the ticket's claimant
func (r *TicketRepository) SetClaimant(ctx context.Context, ticketID int64, claimant *int64) error {
	query := `UPDATE tickets SET claimed_by = $2 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, ticketID, claimant)
	if err != nil {
		return fmt.Errorf("failed to update claimant for ticket %d: %w", ticketID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found", ticketID)
	}

	return nil
}

// SetPurchaseDetails records plan and payment method on a purchase ticket
func (r *TicketRepository) SetPurchaseDetails(ctx context.Context, ticketID int64, plan, method string) error {
	query := `UPDATE tickets SET purchase_plan = $2, payment_method = $3 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, ticketID, plan, method)
	if err != nil {
		return fmt.Errorf("failed to update purchase details for ticket %d: %w", ticketID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not found", ticketID)
	}

	return nil
}

// TouchActivity refreshes last activity on the open ticket bound to the
// channel. The warning flags stay put; they are sticky for the whole open
// period so each notice fires at most once.
func (r *TicketRepository) TouchActivity(ctx context.Context, channelID int64, now time.Time) (bool, error) {
	query := `
		UPDATE tickets
		SET last_activity_at = $2
		WHERE channel_id = $1 AND status = 'open'
	`

	result, err := r.q.Exec(ctx, query, channelID, now)
	if err != nil {
		return false, fmt.Errorf("failed to touch activity for channel %d: %w", channelID, err)
	}

	return result.RowsAffected() == 1, nil
}

// SetWarningFlags marks the sticky inactivity warning flags
func (r *TicketRepository) SetWarningFlags(ctx context.Context, ticketID int64, warned30, warned10 bool) error {
	query := `UPDATE tickets SET warned_30 = $2, warned_10 = $3 WHERE id = $1`

	if _, err := r.q.Exec(ctx, query, ticketID, warned30, warned10); err != nil {
		return fmt.Errorf("failed to set warning flags on ticket %d: %w", ticketID, err)
	}

	return nil
}

// AddMessage appends one entry to the ticket's message log
func (r *TicketRepository) AddMessage(ctx context.Context, msg *models.TicketMessage) error {
	query := `
		INSERT INTO ticket_messages (ticket_id, author_id, author_name, content, attachments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		msg.TicketID,
		msg.AuthorID,
		msg.AuthorName,
		msg.Content,
		msg.Attachments,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to log message for ticket %d: %w", msg.TicketID, err)
	}

	return nil
}

// GetMessages returns the ticket's message log in chronological order
func (r *TicketRepository) GetMessages(ctx context.Context, ticketID int64) ([]*models.TicketMessage, error) {
	query := `
		SELECT id, ticket_id, author_id, author_name, content, attachments, created_at
		FROM ticket_messages
		WHERE ticket_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for ticket %d: %w", ticketID, err)
	}
	defer rows.Close()

	var messages []*models.TicketMessage
	for rows.Next() {
		var msg models.TicketMessage
		err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.AuthorID,
			&msg.AuthorName,
			&msg.Content,
			&msg.Attachments,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket message: %w", err)
		}
		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket messages: %w", err)
	}

	return messages, nil
}

// ListOpen returns all open tickets
func (r *TicketRepository) ListOpen(ctx context.Context) ([]*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = 'open' ORDER BY id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list open tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// CountByGuild returns open and closed ticket counts for a guild
func (r *TicketRepository) CountByGuild(ctx context.Context, guildID int64) (int, int, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'open'), COUNT(*) FILTER (WHERE status = 'closed')
		FROM tickets
		WHERE guild_id = $1
	`

	var open, closed int
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&open, &closed); err != nil {
		return 0, 0, fmt.Errorf("failed to count tickets for guild %d: %w", guildID, err)
	}

	return open, closed, nil
}

// CreatePanel records a posted ticket panel message
func (r *TicketRepository) CreatePanel(ctx context.Context, panel *models.TicketPanel) error {
	query := `
		INSERT INTO ticket_panels (guild_id, channel_id, message_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		panel.GuildID,
		panel.ChannelID,
		panel.MessageID,
	).Scan(&panel.ID, &panel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create panel for guild %d: %w", panel.GuildID, err)
	}

	return nil
}

// ListPanels returns the recorded panels for a guild
func (r *TicketRepository) ListPanels(ctx context.Context, guildID int64) ([]*models.TicketPanel, error) {
	query := `
		SELECT id, guild_id, channel_id, message_id, created_at
		FROM ticket_panels
		WHERE guild_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list panels for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var panels []*models.TicketPanel
	for rows.Next() {
		var panel models.TicketPanel
		err := rows.Scan(
			&panel.ID,
			&panel.GuildID,
			&panel.ChannelID,
			&panel.MessageID,
			&panel.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan panel: %w", err)
		}
		panels = append(panels, &panel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate panels: %w", err)
	}

	return panels, nil
}
