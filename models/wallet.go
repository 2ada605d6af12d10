package models

import (
	"time"
)

// Wallet represents a user's per-guild currency balance and reward cooldowns
type Wallet struct {
	GuildID   int64      `db:"guild_id"`
	UserID    int64      `db:"user_id"`
	Balance   int64      `db:"balance"`
	LastDaily *time.Time `db:"last_daily"`
	LastWork  *time.Time `db:"last_work"`
	UpdatedAt time.Time  `db:"updated_at"`
}
