package models

import (
	"time"
)

// FailureReason classifies expected business failures so callers can render
// a specific user-facing message instead of a generic error
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonNotFound          FailureReason = "not_found"
	ReasonUsed              FailureReason = "used"
	ReasonExpired           FailureReason = "expired"
	ReasonDuplicate         FailureReason = "duplicate"
	ReasonNotOpen           FailureReason = "not_open"
	ReasonNotRunning        FailureReason = "not_running"
	ReasonNotEnded          FailureReason = "not_ended"
	ReasonNoPrizes          FailureReason = "no_prizes"
	ReasonPrizeMissing      FailureReason = "prize_missing"
	ReasonValidationFailed  FailureReason = "validation_failed"
	ReasonOnCooldown        FailureReason = "on_cooldown"
	ReasonInsufficientFunds FailureReason = "insufficient_funds"
)

// RedemptionResult is the outcome of attempting to redeem a key
type RedemptionResult struct {
	OK     bool
	Reason FailureReason
	Key    *Key
	Prize  *Prize
}

// TicketCloseResult is the outcome of closing a ticket, carrying the ordered
// message history for transcript rendering
type TicketCloseResult struct {
	OK       bool
	Reason   FailureReason
	Ticket   *Ticket
	Messages []*TicketMessage
}

// GiveawayEndResult is the outcome of ending or rerolling a giveaway
type GiveawayEndResult struct {
	OK       bool
	Reason   FailureReason
	Giveaway *Giveaway
	Winners  []int64
}

// GiveawayEntryResult distinguishes an accepted entry from a rejected one
type GiveawayEntryResult struct {
	Accepted bool
	Reason   FailureReason
}

// ClaimResult is the outcome of a cooldown-gated economy reward
type ClaimResult struct {
	OK         bool
	Reason     FailureReason
	Amount     int64
	NewBalance int64
	RetryAfter time.Duration
}

// TriviaAnswerResult is the outcome of one answer attempt in an open round
type TriviaAnswerResult struct {
	Correct bool
	Reason  FailureReason
	Points  int64
	Place   int
}

// BugSubmitResult is the outcome of a throttled bug report submission
type BugSubmitResult struct {
	Verdict Verdict
	Report  *BugReport
	Timeout time.Duration
}
