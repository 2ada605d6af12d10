package models

import (
	"time"
)

// Prize represents a reward that keys can resolve to
type Prize struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Weight      int       `db:"weight"`
	CreatedAt   time.Time `db:"created_at"`
}

// DrawWeight returns the weight used by the random draw, clamped to a minimum of 1
func (p *Prize) DrawWeight() int {
	if p.Weight < 1 {
		return 1
	}
	return p.Weight
}
