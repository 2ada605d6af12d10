package models

import (
	"time"
)

// TicketKind represents the kind of ticket
type TicketKind string

const (
	TicketKindPurchase TicketKind = "purchase"
	TicketKindSupport  TicketKind = "support"
)

// TicketStatus represents the lifecycle state of a ticket
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// Ticket represents a support or purchase ticket bound to a dedicated channel
type Ticket struct {
	ID             int64        `db:"id"`
	GuildID        int64        `db:"guild_id"`
	OpenerID       int64        `db:"opener_id"`
	Kind           TicketKind   `db:"kind"`
	ChannelID      int64        `db:"channel_id"`
	Status         TicketStatus `db:"status"`
	ClaimedBy      *int64       `db:"claimed_by"`
	PurchasePlan   *string      `db:"purchase_plan"`
	PaymentMethod  *string      `db:"payment_method"`
	CreatedAt      time.Time    `db:"created_at"`
	ClosedAt       *time.Time   `db:"closed_at"`
	CloseReason    *string      `db:"close_reason"`
	ClosedBy       *int64       `db:"closed_by"`
	LastActivityAt time.Time    `db:"last_activity_at"`
	Warned30       bool         `db:"warned_30"`
	Warned10       bool         `db:"warned_10"`
}

// IsOpen checks whether the ticket is in the open state
func (t *Ticket) IsOpen() bool {
	return t.Status == TicketStatusOpen
}

// IdleFor returns how long the ticket has been without activity
func (t *Ticket) IdleFor(now time.Time) time.Duration {
	return now.Sub(t.LastActivityAt)
}

// TicketMessage is one append-only log entry of a ticket's conversation
type TicketMessage struct {
	ID          int64     `db:"id"`
	TicketID    int64     `db:"ticket_id"`
	AuthorID    int64     `db:"author_id"`
	AuthorName  string    `db:"author_name"`
	Content     string    `db:"content"`
	Attachments []string  `db:"attachments"`
	CreatedAt   time.Time `db:"created_at"`
}

// TicketPanel records a posted panel message whose buttons open tickets
type TicketPanel struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	ChannelID int64     `db:"channel_id"`
	MessageID int64     `db:"message_id"`
	CreatedAt time.Time `db:"created_at"`
}
