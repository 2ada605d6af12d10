package service

import (
	"context"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	"github.com/stretchr/testify/mock"
)

// MockKeyRepository is a mock implementation of KeyRepository
type MockKeyRepository struct {
	mock.Mock
}

func (m *MockKeyRepository) Create(ctx context.Context, key *models.Key) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockKeyRepository) GetByCode(ctx context.Context, code string) (*models.Key, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Key), args.Error(1)
}

func (m *MockKeyRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeyRepository) Consume(ctx context.Context, code string, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, code, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockKeyRepository) CountByGuild(ctx context.Context, guildID int64) (int, int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Int(1), args.Error(2)
}

// MockPrizeRepository is a mock implementation of PrizeRepository
type MockPrizeRepository struct {
	mock.Mock
}

func (m *MockPrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	args := m.Called(ctx, prize)
	return args.Error(0)
}

func (m *MockPrizeRepository) GetByID(ctx context.Context, id int64) (*models.Prize, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Prize, error) {
	args := m.Called(ctx, guildID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) List(ctx context.Context, guildID int64) ([]*models.Prize, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *MockPrizeRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	args := m.Called(ctx, guildID, name)
	return args.Bool(0), args.Error(1)
}

// MockRateRecordRepository is a mock implementation of RateRecordRepository
type MockRateRecordRepository struct {
	mock.Mock
}

func (m *MockRateRecordRepository) Touch(ctx context.Context, scope models.RateScope, guildID, userID int64, firstHitCount int, cutoff, now time.Time) (int, bool, error) {
	args := m.Called(ctx, scope, guildID, userID, firstHitCount, cutoff, now)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockRateRecordRepository) Get(ctx context.Context, scope models.RateScope, guildID, userID int64) (*models.RateRecord, error) {
	args := m.Called(ctx, scope, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateRecord), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByChannel(ctx context.Context, channelID int64) (*models.Ticket, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Close(ctx context.Context, channelID int64, closedBy int64, reason string, now time.Time) (*models.Ticket, error) {
	args := m.Called(ctx, channelID, closedBy, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) Reopen(ctx context.Context, ticketID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, ticketID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepository) SetClaimant(ctx context.Context, ticketID int64, claimant *int64) error {
	args := m.Called(ctx, ticketID, claimant)
	return args.Error(0)
}

func (m *MockTicketRepository) SetPurchaseDetails(ctx context.Context, ticketID int64, plan, method string) error {
	args := m.Called(ctx, ticketID, plan, method)
	return args.Error(0)
}

func (m *MockTicketRepository) TouchActivity(ctx context.Context, channelID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, channelID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepository) SetWarningFlags(ctx context.Context, ticketID int64, warned30, warned10 bool) error {
	args := m.Called(ctx, ticketID, warned30, warned10)
	return args.Error(0)
}

func (m *MockTicketRepository) AddMessage(ctx context.Context, msg *models.TicketMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockTicketRepository) GetMessages(ctx context.Context, ticketID int64) ([]*models.TicketMessage, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketMessage), args.Error(1)
}

func (m *MockTicketRepository) ListOpen(ctx context.Context) ([]*models.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CountByGuild(ctx context.Context, guildID int64) (int, int, error) {
	args := m.Called(ctx, guildID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockTicketRepository) CreatePanel(ctx context.Context, panel *models.TicketPanel) error {
	args := m.Called(ctx, panel)
	return args.Error(0)
}

func (m *MockTicketRepository) ListPanels(ctx context.Context, guildID int64) ([]*models.TicketPanel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TicketPanel), args.Error(1)
}

// MockGiveawayRepository is a mock implementation of GiveawayRepository
type MockGiveawayRepository struct {
	mock.Mock
}

func (m *MockGiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	args := m.Called(ctx, giveaway)
	return args.Error(0)
}

func (m *MockGiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) SetMessageID(ctx context.Context, giveawayID, messageID int64) error {
	args := m.Called(ctx, giveawayID, messageID)
	return args.Error(0)
}

func (m *MockGiveawayRepository) AddEntry(ctx context.Context, giveawayID, userID int64, now time.Time) (bool, error) {
	args := m.Called(ctx, giveawayID, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) GetEntries(ctx context.Context, giveawayID int64) ([]int64, error) {
	args := m.Called(ctx, giveawayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockGiveawayRepository) CountEntries(ctx context.Context, giveawayID int64) (int, error) {
	args := m.Called(ctx, giveawayID)
	return args.Int(0), args.Error(1)
}

func (m *MockGiveawayRepository) MarkEnded(ctx context.Context, giveawayID int64) (bool, error) {
	args := m.Called(ctx, giveawayID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) MarkCancelled(ctx context.Context, giveawayID int64) (bool, error) {
	args := m.Called(ctx, giveawayID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGiveawayRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

func (m *MockGiveawayRepository) ListRunning(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Giveaway), args.Error(1)
}

// MockBugReportRepository is a mock implementation of BugReportRepository
type MockBugReportRepository struct {
	mock.Mock
}

func (m *MockBugReportRepository) Create(ctx context.Context, report *models.BugReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockBugReportRepository) GetByID(ctx context.Context, id int64) (*models.BugReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BugReport), args.Error(1)
}

func (m *MockBugReportRepository) SetRegistryMessage(ctx context.Context, reportID, messageID int64) error {
	args := m.Called(ctx, reportID, messageID)
	return args.Error(0)
}

func (m *MockBugReportRepository) Resolve(ctx context.Context, reportID, resolvedBy int64, reason string, now time.Time) (bool, error) {
	args := m.Called(ctx, reportID, resolvedBy, reason, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockBugReportRepository) ListOpen(ctx context.Context, guildID int64) ([]*models.BugReport, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BugReport), args.Error(1)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, guildID, userID int64, amount int64) error {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, guildID, userID int64, amount int64) (bool, error) {
	args := m.Called(ctx, guildID, userID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) ClaimDaily(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error) {
	args := m.Called(ctx, guildID, userID, amount, cutoff, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) ClaimWork(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error) {
	args := m.Called(ctx, guildID, userID, amount, cutoff, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wallet), args.Error(1)
}

// MockLevelRepository is a mock implementation of LevelRepository
type MockLevelRepository struct {
	mock.Mock
}

func (m *MockLevelRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LevelProfile, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LevelProfile), args.Error(1)
}

func (m *MockLevelRepository) Update(ctx context.Context, profile *models.LevelProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockLevelRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.LevelProfile, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LevelProfile), args.Error(1)
}

func (m *MockLevelRepository) Rank(ctx context.Context, guildID, userID int64) (int, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Int(0), args.Error(1)
}

// MockTriviaScoreRepository is a mock implementation of TriviaScoreRepository
type MockTriviaScoreRepository struct {
	mock.Mock
}

func (m *MockTriviaScoreRepository) AddPoints(ctx context.Context, guildID, userID int64, points int64, correct int, now time.Time) error {
	args := m.Called(ctx, guildID, userID, points, correct, now)
	return args.Error(0)
}

func (m *MockTriviaScoreRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.TriviaScore, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TriviaScore), args.Error(1)
}

// MockInfractionRepository is a mock implementation of InfractionRepository
type MockInfractionRepository struct {
	mock.Mock
}

func (m *MockInfractionRepository) Create(ctx context.Context, infraction *models.Infraction) error {
	args := m.Called(ctx, infraction)
	return args.Error(0)
}

func (m *MockInfractionRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Infraction, error) {
	args := m.Called(ctx, guildID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Infraction), args.Error(1)
}

func (m *MockInfractionRepository) ClearByUser(ctx context.Context, guildID, userID int64) (int, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Int(0), args.Error(1)
}

// MockAntipingRepository is a mock implementation of AntipingRepository
type MockAntipingRepository struct {
	mock.Mock
}

func (m *MockAntipingRepository) Add(ctx context.Context, target *models.AntipingTarget) (bool, error) {
	args := m.Called(ctx, target)
	return args.Bool(0), args.Error(1)
}

func (m *MockAntipingRepository) Remove(ctx context.Context, guildID, userID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAntipingRepository) List(ctx context.Context, guildID int64) ([]*models.AntipingTarget, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AntipingTarget), args.Error(1)
}

func (m *MockAntipingRepository) IsTarget(ctx context.Context, guildID, userID int64) (bool, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Bool(0), args.Error(1)
}

// MockRateTracker is a mock implementation of RateTracker
type MockRateTracker struct {
	mock.Mock
}

func (m *MockRateTracker) Record(ctx context.Context, policy RatePolicy, guildID, userID int64) (models.Verdict, error) {
	args := m.Called(ctx, policy, guildID, userID)
	return args.Get(0).(models.Verdict), args.Error(1)
}

// CapturingEventPublisher records published events for assertions
type CapturingEventPublisher struct {
	Events []events.Event
}

func (p *CapturingEventPublisher) Publish(e events.Event) {
	p.Events = append(p.Events, e)
}

// MockUnitOfWork is a mock implementation of UnitOfWork backed by settable repositories
type MockUnitOfWork struct {
	mock.Mock

	keyRepo           KeyRepository
	prizeRepo         PrizeRepository
	rateRecordRepo    RateRecordRepository
	ticketRepo        TicketRepository
	giveawayRepo      GiveawayRepository
	bugReportRepo     BugReportRepository
	guildSettingsRepo GuildSettingsRepository
	walletRepo        WalletRepository
	levelRepo         LevelRepository
	triviaScoreRepo   TriviaScoreRepository
	infractionRepo    InfractionRepository
	antipingRepo      AntipingRepository
	eventBus          *CapturingEventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) SetKeyRepository(r KeyRepository)                     { m.keyRepo = r }
func (m *MockUnitOfWork) SetPrizeRepository(r PrizeRepository)                 { m.prizeRepo = r }
func (m *MockUnitOfWork) SetRateRecordRepository(r RateRecordRepository)       { m.rateRecordRepo = r }
func (m *MockUnitOfWork) SetTicketRepository(r TicketRepository)               { m.ticketRepo = r }
func (m *MockUnitOfWork) SetGiveawayRepository(r GiveawayRepository)           { m.giveawayRepo = r }
func (m *MockUnitOfWork) SetBugReportRepository(r BugReportRepository)         { m.bugReportRepo = r }
func (m *MockUnitOfWork) SetGuildSettingsRepository(r GuildSettingsRepository) { m.guildSettingsRepo = r }
func (m *MockUnitOfWork) SetWalletRepository(r WalletRepository)               { m.walletRepo = r }
func (m *MockUnitOfWork) SetLevelRepository(r LevelRepository)                 { m.levelRepo = r }
func (m *MockUnitOfWork) SetTriviaScoreRepository(r TriviaScoreRepository)     { m.triviaScoreRepo = r }
func (m *MockUnitOfWork) SetInfractionRepository(r InfractionRepository)       { m.infractionRepo = r }
func (m *MockUnitOfWork) SetAntipingRepository(r AntipingRepository)           { m.antipingRepo = r }

func (m *MockUnitOfWork) KeyRepository() KeyRepository                     { return m.keyRepo }
func (m *MockUnitOfWork) PrizeRepository() PrizeRepository                 { return m.prizeRepo }
func (m *MockUnitOfWork) RateRecordRepository() RateRecordRepository       { return m.rateRecordRepo }
func (m *MockUnitOfWork) TicketRepository() TicketRepository               { return m.ticketRepo }
func (m *MockUnitOfWork) GiveawayRepository() GiveawayRepository           { return m.giveawayRepo }
func (m *MockUnitOfWork) BugReportRepository() BugReportRepository         { return m.bugReportRepo }
func (m *MockUnitOfWork) GuildSettingsRepository() GuildSettingsRepository { return m.guildSettingsRepo }
func (m *MockUnitOfWork) WalletRepository() WalletRepository               { return m.walletRepo }
func (m *MockUnitOfWork) LevelRepository() LevelRepository                 { return m.levelRepo }
func (m *MockUnitOfWork) TriviaScoreRepository() TriviaScoreRepository     { return m.triviaScoreRepo }
func (m *MockUnitOfWork) InfractionRepository() InfractionRepository       { return m.infractionRepo }
func (m *MockUnitOfWork) AntipingRepository() AntipingRepository           { return m.antipingRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &CapturingEventPublisher{}
	}
	return m.eventBus
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.Events
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
