package service

import (
	"context"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
)

// KeyRepository defines the interface for redeemable key data access
type KeyRepository interface {
	// Create persists a new key
	Create(ctx context.Context, key *models.Key) error

	// GetByCode retrieves a key by its code, or nil when absent
	GetByCode(ctx context.Context, code string) (*models.Key, error)

	// CodeExists reports whether a code is already taken
	CodeExists(ctx context.Context, code string) (bool, error)

	// Consume marks an unused key as used by the given user. Returns false
	// when the key was already consumed by a concurrent redeemer.
	Consume(ctx context.Context, code string, userID int64, now time.Time) (bool, error)

	// CountByGuild returns total and unused key counts for a guild
	CountByGuild(ctx context.Context, guildID int64) (total int, unused int, err error)
}

// PrizeRepository defines the interface for prize data access
type PrizeRepository interface {
	// Create persists a new prize
	Create(ctx context.Context, prize *models.Prize) error

	// GetByID retrieves a prize by id, or nil when absent
	GetByID(ctx context.Context, id int64) (*models.Prize, error)

	// GetByName retrieves a prize by (guild, name), or nil when absent
	GetByName(ctx context.Context, guildID int64, name string) (*models.Prize, error)

	// List returns all prizes for a guild
	List(ctx context.Context, guildID int64) ([]*models.Prize, error)

	// Delete removes a prize by (guild, name); returns false when absent
	Delete(ctx context.Context, guildID int64, name string) (bool, error)
}

// RateRecordRepository defines the interface for the sliding-window tracker state
type RateRecordRepository interface {
	// Touch atomically inserts or advances the record for (scope, guild, user).
	// A fresh record starts at firstHitCount. An existing record resets to
	// firstHitCount when last_event_at is at or before cutoff, otherwise it
	// increments. Returns the resulting violation count and whether the
	// record was newly inserted.
	Touch(ctx context.Context, scope models.RateScope, guildID, userID int64, firstHitCount int, cutoff, now time.Time) (violations int, inserted bool, err error)

	// Get retrieves the record for (scope, guild, user), or nil when absent
	Get(ctx context.Context, scope models.RateScope, guildID, userID int64) (*models.RateRecord, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// Create persists a new open ticket; fails on a duplicate channel binding
	Create(ctx context.Context, ticket *models.Ticket) error

	// GetByID retrieves a ticket by id, or nil when absent
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)

	// GetByChannel retrieves the ticket bound to a channel, or nil when absent
	GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error)

	// Close transitions the ticket bound to the channel from open to closed.
	// Returns nil when no open ticket is bound to the channel.
	Close(ctx context.Context, channelID int64, closedBy int64, reason string, now time.Time) (*models.Ticket, error)

	// Reopen transitions a closed ticket back to open, refreshing activity
	// and clearing the warning flags. Returns false when the ticket is not closed.
	Reopen(ctx context.Context, ticketID int64, now time.Time) (bool, error)

	// SetClaimant sets or clears the ticket's claimant
	SetClaimant(ctx context.Context, ticketID int64, claimant *int64) error

	// SetPurchaseDetails records plan and payment method on a purchase ticket
	SetPurchaseDetails(ctx context.Context, ticketID int64, plan, method string) error

	// TouchActivity refreshes last activity on the open ticket bound to the
	// channel; returns false when no open ticket is bound
	TouchActivity(ctx context.Context, channelID int64, now time.Time) (bool, error)

	// SetWarningFlags marks the sticky inactivity warning flags
	SetWarningFlags(ctx context.Context, ticketID int64, warned30, warned10 bool) error

	// AddMessage appends one entry to the ticket's message log
	AddMessage(ctx context.Context, msg *models.TicketMessage) error

	// GetMessages returns the ticket's message log in chronological order
	GetMessages(ctx context.Context, ticketID int64) ([]*models.TicketMessage, error)

	// ListOpen returns all open tickets
	ListOpen(ctx context.Context) ([]*models.Ticket, error)

	// CountByGuild returns open and closed ticket counts for a guild
	CountByGuild(ctx context.Context, guildID int64) (open int, closed int, err error)

	// CreatePanel records a posted ticket panel message
	CreatePanel(ctx context.Context, panel *models.TicketPanel) error

	// ListPanels returns the recorded panels for a guild
	ListPanels(ctx context.Context, guildID int64) ([]*models.TicketPanel, error)
}

// GiveawayRepository defines the interface for giveaway data access
type GiveawayRepository interface {
	// Create persists a new running giveaway
	Create(ctx context.Context, giveaway *models.Giveaway) error

	// GetByID retrieves a giveaway by id, or nil when absent
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)

	// SetMessageID records the announcement message for a giveaway
	SetMessageID(ctx context.Context, giveawayID, messageID int64) error

	// AddEntry inserts an entry; returns false when the participant already entered
	AddEntry(ctx context.Context, giveawayID, userID int64, now time.Time) (bool, error)

	// GetEntries returns participant ids in entry order
	GetEntries(ctx context.Context, giveawayID int64) ([]int64, error)

	// CountEntries returns the number of entries for a giveaway
	CountEntries(ctx context.Context, giveawayID int64) (int, error)

	// MarkEnded transitions a running giveaway to ended; returns false when
	// it was not running
	MarkEnded(ctx context.Context, giveawayID int64) (bool, error)

	// MarkCancelled transitions a running giveaway to cancelled; returns
	// false when it was not running
	MarkCancelled(ctx context.Context, giveawayID int64) (bool, error)

	// ListDue returns running giveaways whose end time has passed
	ListDue(ctx context.Context, now time.Time) ([]*models.Giveaway, error)

	// ListRunning returns running giveaways for a guild
	ListRunning(ctx context.Context, guildID int64) ([]*models.Giveaway, error)
}

// BugReportRepository defines the interface for bug report data access
type BugReportRepository interface {
	// Create persists a new bug report
	Create(ctx context.Context, report *models.BugReport) error

	// GetByID retrieves a report by id, or nil when absent
	GetByID(ctx context.Context, id int64) (*models.BugReport, error)

	// SetRegistryMessage records the registry repost for a report
	SetRegistryMessage(ctx context.Context, reportID, messageID int64) error

	// Resolve marks an open report resolved; returns false when it was not open
	Resolve(ctx context.Context, reportID, resolvedBy int64, reason string, now time.Time) (bool, error)

	// ListOpen returns open reports for a guild
	ListOpen(ctx context.Context, guildID int64) ([]*models.BugReport, error)
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
	GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// UpdateGuildSettings updates guild settings
	UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error
}

// WalletRepository defines the interface for economy wallet data access
type WalletRepository interface {
	// GetOrCreate retrieves a wallet, creating an empty one if absent
	GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// Credit adds to a wallet balance
	Credit(ctx context.Context, guildID, userID int64, amount int64) error

	// Debit subtracts from a wallet balance; returns false on insufficient funds
	Debit(ctx context.Context, guildID, userID int64, amount int64) (bool, error)

	// ClaimDaily credits the daily reward if the cooldown has lapsed;
	// returns false when still on cooldown
	ClaimDaily(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error)

	// ClaimWork credits the work reward if the cooldown has lapsed;
	// returns false when still on cooldown
	ClaimWork(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error)

	// Top returns the richest wallets for a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error)
}

// LevelRepository defines the interface for level profile data access
type LevelRepository interface {
	// GetOrCreate retrieves a level profile, creating a fresh one if absent
	GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LevelProfile, error)

	// Update persists an advanced profile
	Update(ctx context.Context, profile *models.LevelProfile) error

	// Top returns the highest-XP profiles for a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.LevelProfile, error)

	// Rank returns the 1-based rank of a user within a guild by XP
	Rank(ctx context.Context, guildID, userID int64) (int, error)
}

// TriviaScoreRepository defines the interface for durable trivia scores
type TriviaScoreRepository interface {
	// AddPoints upserts points and correct-answer counts for a user
	AddPoints(ctx context.Context, guildID, userID int64, points int64, correct int, now time.Time) error

	// Top returns the trivia leaderboard for a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.TriviaScore, error)
}

// InfractionRepository defines the interface for moderation warning data access
type InfractionRepository interface {
	// Create persists a new infraction
	Create(ctx context.Context, infraction *models.Infraction) error

	// ListByUser returns a user's infractions, newest first
	ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Infraction, error)

	// ClearByUser deletes a user's infractions and returns how many were removed
	ClearByUser(ctx context.Context, guildID, userID int64) (int, error)
}

// AntipingRepository defines the interface for protected-target data access
type AntipingRepository interface {
	// Add marks a user as protected; returns false when already protected
	Add(ctx context.Context, target *models.AntipingTarget) (bool, error)

	// Remove unmarks a protected user; returns false when not protected
	Remove(ctx context.Context, guildID, userID int64) (bool, error)

	// List returns the protected targets for a guild
	List(ctx context.Context, guildID int64) ([]*models.AntipingTarget, error)

	// IsTarget reports whether a user is protected in a guild
	IsTarget(ctx context.Context, guildID, userID int64) (bool, error)
}

// KeyService defines the interface for key generation and redemption
type KeyService interface {
	// GenerateKeys creates a batch of unique keys. For fixed mode the named
	// prize must exist.
	GenerateKeys(ctx context.Context, guildID, createdBy int64, count int, mode models.KeyMode, prizeName string, expiresIn time.Duration) ([]*models.Key, models.FailureReason, error)

	// Redeem consumes a key exactly once and resolves its prize
	Redeem(ctx context.Context, code string, userID int64) (*models.RedemptionResult, error)

	// Lookup fetches a key by code without consuming it
	Lookup(ctx context.Context, code string) (*models.Key, error)

	// Stats returns total and unused key counts for a guild
	Stats(ctx context.Context, guildID int64) (total int, unused int, err error)
}

// PrizeService defines the interface for prize administration
type PrizeService interface {
	// Add creates a prize; duplicate names are rejected
	Add(ctx context.Context, guildID int64, name, description string, weight int) (models.FailureReason, error)

	// List returns all prizes for a guild
	List(ctx context.Context, guildID int64) ([]*models.Prize, error)

	// Remove deletes a prize by name
	Remove(ctx context.Context, guildID int64, name string) (models.FailureReason, error)
}

// RateTracker defines the interface for the sliding-window escalation tracker
type RateTracker interface {
	// Record registers one event and returns the escalation verdict
	Record(ctx context.Context, policy RatePolicy, guildID, userID int64) (models.Verdict, error)
}

// TicketService defines the interface for ticket lifecycle operations
type TicketService interface {
	// Open creates a new open ticket bound to a channel
	Open(ctx context.Context, ticket *models.Ticket) (models.FailureReason, error)

	// GetByChannel fetches the ticket bound to a channel, nil when none
	GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error)

	// RecordMessage logs an inbound message and refreshes the inactivity timer
	RecordMessage(ctx context.Context, channelID int64, msg *models.TicketMessage) error

	// Close transitions an open ticket to closed and returns its message history
	Close(ctx context.Context, channelID int64, closedBy int64, reason string) (*models.TicketCloseResult, error)

	// Reopen transitions a closed ticket back to open
	Reopen(ctx context.Context, channelID int64) (models.FailureReason, error)

	// Claim sets or clears the claimant on the ticket bound to a channel
	Claim(ctx context.Context, channelID int64, claimant *int64) (models.FailureReason, error)

	// SetPurchaseDetails records plan and payment method on a purchase ticket
	SetPurchaseDetails(ctx context.Context, channelID int64, plan, method string) (models.FailureReason, error)

	// Stats returns open and closed ticket counts for a guild
	Stats(ctx context.Context, guildID int64) (open int, closed int, err error)

	// RegisterPanel records a posted ticket panel message
	RegisterPanel(ctx context.Context, panel *models.TicketPanel) error

	// ScanInactive inspects open tickets and returns the due escalations.
	// Warning flags are persisted and closes are executed before returning.
	ScanInactive(ctx context.Context, now time.Time) ([]*TicketEscalation, error)
}

// GiveawayService defines the interface for giveaway lifecycle operations
type GiveawayService interface {
	// Create starts a new running giveaway
	Create(ctx context.Context, giveaway *models.Giveaway) error

	// SetMessageID records the announcement message
	SetMessageID(ctx context.Context, giveawayID, messageID int64) error

	// Enter registers a participant; duplicates are rejected silently
	Enter(ctx context.Context, giveawayID, userID int64) (*models.GiveawayEntryResult, error)

	// End transitions a running giveaway to ended and samples winners
	End(ctx context.Context, giveawayID int64) (*models.GiveawayEndResult, error)

	// Reroll re-samples winners of an already ended giveaway
	Reroll(ctx context.Context, giveawayID int64) (*models.GiveawayEndResult, error)

	// Cancel transitions a running giveaway to cancelled
	Cancel(ctx context.Context, giveawayID int64) (models.FailureReason, error)

	// EndDue ends every running giveaway whose end time has passed
	EndDue(ctx context.Context, now time.Time) ([]*models.GiveawayEndResult, error)

	// ListRunning returns running giveaways for a guild
	ListRunning(ctx context.Context, guildID int64) ([]*models.Giveaway, error)
}

// BugReportService defines the interface for throttled bug report intake
type BugReportService interface {
	// Submit runs the throttle and registers the report when allowed
	Submit(ctx context.Context, guildID, reporterID, channelID, messageID int64, content string) (*models.BugSubmitResult, error)

	// SetRegistryMessage records the registry repost for a report
	SetRegistryMessage(ctx context.Context, reportID, messageID int64) error

	// Resolve marks an open report resolved
	Resolve(ctx context.Context, guildID, reportID, resolvedBy int64, reason string) (models.FailureReason, error)

	// ListOpen returns open reports for a guild
	ListOpen(ctx context.Context, guildID int64) ([]*models.BugReport, error)
}

// AntipingService defines the interface for anti-mention protection
type AntipingService interface {
	// AddTarget protects a user from unwanted mentions
	AddTarget(ctx context.Context, guildID, userID, addedBy int64) (models.FailureReason, error)

	// RemoveTarget removes protection from a user
	RemoveTarget(ctx context.Context, guildID, userID int64) (models.FailureReason, error)

	// ListTargets returns the protected users for a guild
	ListTargets(ctx context.Context, guildID int64) ([]*models.AntipingTarget, error)

	// HandleMention processes an offending mention and returns the verdict
	// plus the timeout duration to apply on a mute
	HandleMention(ctx context.Context, guildID, offenderID int64) (models.Verdict, time.Duration, error)

	// IsProtected reports whether any of the mentioned users are protected
	IsProtected(ctx context.Context, guildID int64, mentioned []int64) (bool, error)
}

// EconomyService defines the interface for the lightweight currency system
type EconomyService interface {
	// Balance returns a user's wallet, creating it if absent
	Balance(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// Daily claims the daily reward
	Daily(ctx context.Context, guildID, userID int64) (*models.ClaimResult, error)

	// Work claims the work reward
	Work(ctx context.Context, guildID, userID int64) (*models.ClaimResult, error)

	// Give transfers currency between users
	Give(ctx context.Context, guildID, fromID, toID int64, amount int64) (models.FailureReason, error)

	// Top returns the richest wallets for a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error)
}

// LevelService defines the interface for message XP tracking
type LevelService interface {
	// HandleMessage awards XP for a message, honoring the per-user cooldown.
	// Returns the new level when the message caused a level up.
	HandleMessage(ctx context.Context, guildID, userID int64) (newLevel int, leveledUp bool, err error)

	// Profile returns a user's level profile with their guild rank
	Profile(ctx context.Context, guildID, userID int64) (*models.LevelProfile, int, error)

	// Top returns the highest-XP profiles for a guild
	Top(ctx context.Context, guildID int64, limit int) ([]*models.LevelProfile, error)
}

// TriviaService defines the interface for trivia rounds and durable scores
type TriviaService interface {
	// StartRound fetches a question and opens a round in the channel.
	// Returns duplicate when a round is already open there.
	StartRound(ctx context.Context, guildID, channelID int64) (*models.TriviaQuestion, models.FailureReason, error)

	// SubmitAnswer scores one answer attempt in the channel's open round
	SubmitAnswer(ctx context.Context, guildID, channelID, userID int64, answer string) (*models.TriviaAnswerResult, error)

	// EndRound closes the channel's open round and reveals the answer
	EndRound(channelID int64) (*models.TriviaQuestion, bool)

	// Leaderboard returns the trivia leaderboard for a guild
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.TriviaScore, error)
}

// InfractionService defines the interface for moderation warnings
type InfractionService interface {
	// Warn records an infraction and returns the user's new total
	Warn(ctx context.Context, guildID, userID, issuerID int64, reason string) (int, error)

	// List returns a user's infractions, newest first
	List(ctx context.Context, guildID, userID int64) ([]*models.Infraction, error)

	// Clear removes a user's infractions and returns how many were removed
	Clear(ctx context.Context, guildID, userID int64) (int, error)
}

// GuildSettingsService defines the interface for guild settings operations
type GuildSettingsService interface {
	// GetOrCreateSettings retrieves guild settings or creates default ones if not found
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)

	// Update applies a mutation to a guild's settings inside one transaction
	Update(ctx context.Context, guildID int64, mutate func(*models.GuildSettings)) (*models.GuildSettings, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	KeyRepository() KeyRepository
	PrizeRepository() PrizeRepository
	RateRecordRepository() RateRecordRepository
	TicketRepository() TicketRepository
	GiveawayRepository() GiveawayRepository
	BugReportRepository() BugReportRepository
	GuildSettingsRepository() GuildSettingsRepository
	WalletRepository() WalletRepository
	LevelRepository() LevelRepository
	TriviaScoreRepository() TriviaScoreRepository
	InfractionRepository() InfractionRepository
	AntipingRepository() AntipingRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
