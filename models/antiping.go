package models

import (
	"time"
)

// AntipingTarget marks a user as protected from unwanted mentions in a guild
type AntipingTarget struct {
	GuildID int64     `db:"guild_id"`
	UserID  int64     `db:"user_id"`
	AddedBy int64     `db:"added_by"`
	AddedAt time.Time `db:"added_at"`
}
