package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/events"
	"guildkeeper/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                *database.DB
	tx                pgx.Tx
	ctx               context.Context
	transactionalBus  *events.TransactionalBus
	keyRepo           service.KeyRepository
	prizeRepo         service.PrizeRepository
	rateRecordRepo    service.RateRecordRepository
	ticketRepo        service.TicketRepository
	giveawayRepo      service.GiveawayRepository
	bugReportRepo     service.BugReportRepository
	guildSettingsRepo service.GuildSettingsRepository
	walletRepo        service.WalletRepository
	levelRepo         service.LevelRepository
	triviaScoreRepo   service.TriviaScoreRepository
	infractionRepo    service.InfractionRepository
	antipingRepo      service.AntipingRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.keyRepo = newKeyRepositoryWithTx(tx)
	u.prizeRepo = newPrizeRepositoryWithTx(tx)
	u.rateRecordRepo = newRateRecordRepositoryWithTx(tx)
	u.ticketRepo = newTicketRepositoryWithTx(tx)
	u.giveawayRepo = newGiveawayRepositoryWithTx(tx)
	u.bugReportRepo = newBugReportRepositoryWithTx(tx)
	u.guildSettingsRepo = newGuildSettingsRepositoryWithTx(tx)
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.levelRepo = newLevelRepositoryWithTx(tx)
	u.triviaScoreRepo = newTriviaScoreRepositoryWithTx(tx)
	u.infractionRepo = newInfractionRepositoryWithTx(tx)
	u.antipingRepo = newAntipingRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// KeyRepository returns the key repository for this unit of work
func (u *unitOfWork) KeyRepository() service.KeyRepository {
	if u.keyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.keyRepo
}

// PrizeRepository returns the prize repository for this unit of work
func (u *unitOfWork) PrizeRepository() service.PrizeRepository {
	if u.prizeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.prizeRepo
}

// RateRecordRepository returns the rate record repository for this unit of work
func (u *unitOfWork) RateRecordRepository() service.RateRecordRepository {
	if u.rateRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rateRecordRepo
}

// TicketRepository returns the ticket repository for this unit of work
func (u *unitOfWork) TicketRepository() service.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

// GiveawayRepository returns the giveaway repository for this unit of work
func (u *unitOfWork) GiveawayRepository() service.GiveawayRepository {
	if u.giveawayRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.giveawayRepo
}

// BugReportRepository returns the bug report repository for this unit of work
func (u *unitOfWork) BugReportRepository() service.BugReportRepository {
	if u.bugReportRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bugReportRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() service.GuildSettingsRepository {
	if u.guildSettingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildSettingsRepo
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() service.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

// LevelRepository returns the level repository for this unit of work
func (u *unitOfWork) LevelRepository() service.LevelRepository {
	if u.levelRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.levelRepo
}

// TriviaScoreRepository returns the trivia score repository for this unit of work
func (u *unitOfWork) TriviaScoreRepository() service.TriviaScoreRepository {
	if u.triviaScoreRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.triviaScoreRepo
}

// InfractionRepository returns the infraction repository for this unit of work
func (u *unitOfWork) InfractionRepository() service.InfractionRepository {
	if u.infractionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.infractionRepo
}

// AntipingRepository returns the antiping repository for this unit of work
func (u *unitOfWork) AntipingRepository() service.AntipingRepository {
	if u.antipingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.antipingRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
