package models

import (
	"time"
)

// GiveawayStatus represents the lifecycle state of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusRunning   GiveawayStatus = "running"
	GiveawayStatusEnded     GiveawayStatus = "ended"
	GiveawayStatusCancelled GiveawayStatus = "cancelled"
)

// Giveaway represents a timed giveaway with randomized winner selection
type Giveaway struct {
	ID          int64          `db:"id"`
	GuildID     int64          `db:"guild_id"`
	ChannelID   int64          `db:"channel_id"`
	MessageID   *int64         `db:"message_id"`
	Prize       string         `db:"prize"`
	WinnerCount int            `db:"winner_count"`
	EndsAt      time.Time      `db:"ends_at"`
	PingRoleID  *int64         `db:"ping_role_id"`
	CreatedBy   int64          `db:"created_by"`
	Status      GiveawayStatus `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

// IsRunning checks whether the giveaway still accepts entries
func (g *Giveaway) IsRunning() bool {
	return g.Status == GiveawayStatusRunning
}

// IsDue checks whether a running giveaway's end time has passed
func (g *Giveaway) IsDue(now time.Time) bool {
	return g.Status == GiveawayStatusRunning && !now.Before(g.EndsAt)
}

// GiveawayEntry records one participant's entry; unique per (giveaway, user)
type GiveawayEntry struct {
	GiveawayID int64     `db:"giveaway_id"`
	UserID     int64     `db:"user_id"`
	EnteredAt  time.Time `db:"entered_at"`
}
