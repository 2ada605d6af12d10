package models

import (
	"time"
)

// LevelProfile tracks a user's message XP within one guild
type LevelProfile struct {
	GuildID  int64      `db:"guild_id"`
	UserID   int64      `db:"user_id"`
	XP       int64      `db:"xp"`
	Level    int        `db:"level"`
	LastXPAt *time.Time `db:"last_xp_at"`
}

// XPNeeded returns the XP required to advance from the given level
func XPNeeded(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(100 + (level-1)*50)
}
