package models

import (
	"time"
)

// RateScope distinguishes the subsystems sharing the rate tracker
type RateScope string

const (
	RateScopeBugReport RateScope = "bug_report"
	RateScopeAntiping  RateScope = "antiping"
)

// Verdict is the outcome of a tracker check that callers translate into side effects
type Verdict string

const (
	VerdictOK   Verdict = "ok"
	VerdictWarn Verdict = "warn"
	VerdictMute Verdict = "mute"
)

// RateRecord tracks sliding-window violations for one (scope, guild, actor) key
type RateRecord struct {
	Scope       RateScope `db:"scope"`
	GuildID     int64     `db:"guild_id"`
	UserID      int64     `db:"user_id"`
	Violations  int       `db:"violations"`
	LastEventAt time.Time `db:"last_event_at"`
}
