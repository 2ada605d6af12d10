package models

import (
	"time"
)

// KeyMode determines how a key resolves to a prize on redemption
type KeyMode string

const (
	KeyModeFixed  KeyMode = "fixed"  // always grants the referenced prize
	KeyModeRandom KeyMode = "random" // weighted draw over the prize table
)

// Key represents a redeemable reward code
type Key struct {
	ID        int64      `db:"id"`
	GuildID   int64      `db:"guild_id"`
	Code      string     `db:"code"`
	Mode      KeyMode    `db:"mode"`
	PrizeID   *int64     `db:"prize_id"`
	ExpiresAt *time.Time `db:"expires_at"`
	Used      bool       `db:"used"`
	UsedBy    *int64     `db:"used_by"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedBy int64      `db:"created_by"`
	CreatedAt time.Time  `db:"created_at"`
}

// IsExpired checks whether the key's expiry has passed
func (k *Key) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
