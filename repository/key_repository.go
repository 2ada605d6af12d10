package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// KeyRepository implements the KeyRepository interface
type KeyRepository struct {
	q queryable
}

// NewKeyRepository creates a new key repository
func NewKeyRepository(db *database.DB) *KeyRepository {
	return &KeyRepository{q: db.Pool}
}

// newKeyRepositoryWithTx creates a new key repository with a transaction
func newKeyRepositoryWithTx(tx queryable) *KeyRepository {
	return &KeyRepository{q: tx}
}

// Create persists a new key
func (r *KeyRepository) Create(ctx context.Context, key *models.Key) error {
	query := `
		INSERT INTO keys (guild_id, code, mode, prize_id, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		key.GuildID,
		key.Code,
		key.Mode,
		key.PrizeID,
		key.ExpiresAt,
		key.CreatedBy,
	).Scan(&key.ID, &key.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create key %s: %w", key.Code, err)
	}

	return nil
}

// GetByCode retrieves a key by its code, or nil when absent
func (r *KeyRepository) GetByCode(ctx context.Context, code string) (*models.Key, error) {
	query := `
		SELECT id, guild_id, code, mode, prize_id, expires_at, used, used_by, used_at, created_by, created_at
		FROM keys
		WHERE code = $1
	`

	var key models.Key
	err := r.q.QueryRow(ctx, query, code).Scan(
		&key.ID,
		&key.GuildID,
		&key.Code,
		&key.Mode,
		&key.PrizeID,
		&key.ExpiresAt,
		&key.Used,
		&key.UsedBy,
		&key.UsedAt,
		&key.CreatedBy,
		&key.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", code, err)
	}

	return &key, nil
}

// CodeExists reports whether a code is already taken
func (r *KeyRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM keys WHERE code = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code %s: %w", code, err)
	}

	return exists, nil
}

// Consume marks an unused key as used. The used flag is part of the match so
// concurrent redeemers cannot both succeed.
func (r *KeyRepository) Consume(ctx context.Context, code string, userID int64, now time.Time) (bool, error) {
	query := `
		UPDATE keys
		SET used = TRUE, used_by = $2, used_at = $3
		WHERE code = $1 AND used = FALSE
	`

	result, err := r.q.Exec(ctx, query, code, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume key %s: %w", code, err)
	}

	return result.RowsAffected() == 1, nil
}

// CountByGuild returns total and unused key counts for a guild
func (r *KeyRepository) CountByGuild(ctx context.Context, guildID int64) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT used)
		FROM keys
		WHERE guild_id = $1
	`

	var total, unused int
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&total, &unused); err != nil {
		return 0, 0, fmt.Errorf("failed to count keys for guild %d: %w", guildID, err)
	}

	return total, unused, nil
}
