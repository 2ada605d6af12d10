package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetOrCreate retrieves a wallet, creating an empty one if absent
func (r *WalletRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, user_id, balance, last_daily, last_work, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&wallet.GuildID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.LastDaily,
		&wallet.LastWork,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return &wallet, nil
}

// Credit adds to a wallet balance, creating the wallet if absent
func (r *WalletRepository) Credit(ctx context.Context, guildID, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO wallets (guild_id, user_id, balance, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET balance = wallets.balance + $3, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, guildID, userID, amount); err != nil {
		return fmt.Errorf("failed to credit wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return nil
}

// Debit subtracts from a wallet balance. The balance check is part of the
// match so a concurrent debit cannot overdraw; returns false on insufficient funds.
func (r *WalletRepository) Debit(ctx context.Context, guildID, userID int64, amount int64) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $3, updated_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND balance >= $3
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, amount)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet for user %d in guild %d: %w", userID, guildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// ClaimDaily credits the daily reward if the cooldown has lapsed. The cooldown
// check and the credit are one statement, so two concurrent claims cannot both
// pay out; returns false when still on cooldown.
func (r *WalletRepository) ClaimDaily(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error) {
	query := `
		INSERT INTO wallets (guild_id, user_id, balance, last_daily, updated_at)
		VALUES ($1, $2, $3, $5, $5)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET balance = wallets.balance + $3, last_daily = $5, updated_at = $5
		WHERE wallets.last_daily IS NULL OR wallets.last_daily <= $4
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, amount, cutoff, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily for user %d in guild %d: %w", userID, guildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// ClaimWork credits the work reward if the cooldown has lapsed; returns false
// when still on cooldown
func (r *WalletRepository) ClaimWork(ctx context.Context, guildID, userID int64, amount int64, cutoff, now time.Time) (bool, error) {
	query := `
		INSERT INTO wallets (guild_id, user_id, balance, last_work, updated_at)
		VALUES ($1, $2, $3, $5, $5)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET balance = wallets.balance + $3, last_work = $5, updated_at = $5
		WHERE wallets.last_work IS NULL OR wallets.last_work <= $4
	`

	result, err := r.q.Exec(ctx, query, guildID, userID, amount, cutoff, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim work for user %d in guild %d: %w", userID, guildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// Top returns the richest wallets for a guild
func (r *WalletRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.Wallet, error) {
	query := `
		SELECT guild_id, user_id, balance, last_daily, last_work, updated_at
		FROM wallets
		WHERE guild_id = $1
		ORDER BY balance DESC, user_id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		var wallet models.Wallet
		err := rows.Scan(
			&wallet.GuildID,
			&wallet.UserID,
			&wallet.Balance,
			&wallet.LastDaily,
			&wallet.LastWork,
			&wallet.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, &wallet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	return wallets, nil
}
