package models

import (
	"time"
)

// Infraction represents a moderation warning issued to a user
type Infraction struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	IssuerID  int64     `db:"issuer_id"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}
