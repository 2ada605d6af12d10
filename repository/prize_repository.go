package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// PrizeRepository implements the PrizeRepository interface
type PrizeRepository struct {
	q queryable
}

// NewPrizeRepository creates a new prize repository
func NewPrizeRepository(db *database.DB) *PrizeRepository {
	return &PrizeRepository{q: db.Pool}
}

// newPrizeRepositoryWithTx creates a new prize repository with a transaction
func newPrizeRepositoryWithTx(tx queryable) *PrizeRepository {
	return &PrizeRepository{q: tx}
}

// Create persists a new prize
func (r *PrizeRepository) Create(ctx context.Context, prize *models.Prize) error {
	query := `
		INSERT INTO prizes (guild_id, name, description, weight)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		prize.GuildID,
		prize.Name,
		prize.Description,
		prize.Weight,
	).Scan(&prize.ID, &prize.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create prize %s: %w", prize.Name, err)
	}

	return nil
}

// GetByID retrieves a prize by id, or nil when absent
func (r *PrizeRepository) GetByID(ctx context.Context, id int64) (*models.Prize, error) {
	query := `
		SELECT id, guild_id, name, description, weight, created_at
		FROM prizes
		WHERE id = $1
	`

	var prize models.Prize
	err := r.q.QueryRow(ctx, query, id).Scan(
		&prize.ID,
		&prize.GuildID,
		&prize.Name,
		&prize.Description,
		&prize.Weight,
		&prize.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize %d: %w", id, err)
	}

	return &prize, nil
}

// GetByName retrieves a prize by (guild, name), or nil when absent
func (r *PrizeRepository) GetByName(ctx context.Context, guildID int64, name string) (*models.Prize, error) {
	query := `
		SELECT id, guild_id, name, description, weight, created_at
		FROM prizes
		WHERE guild_id = $1 AND name = $2
	`

	var prize models.Prize
	err := r.q.QueryRow(ctx, query, guildID, name).Scan(
		&prize.ID,
		&prize.GuildID,
		&prize.Name,
		&prize.Description,
		&prize.Weight,
		&prize.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize %s for guild %d: %w", name, guildID, err)
	}

	return &prize, nil
}

// List returns all prizes for a guild
func (r *PrizeRepository) List(ctx context.Context, guildID int64) ([]*models.Prize, error) {
	query := `
		SELECT id, guild_id, name, description, weight, created_at
		FROM prizes
		WHERE guild_id = $1
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var prizes []*models.Prize
	for rows.Next() {
		var prize models.Prize
		err := rows.Scan(
			&prize.ID,
			&prize.GuildID,
			&prize.Name,
			&prize.Description,
			&prize.Weight,
			&prize.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, &prize)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prizes: %w", err)
	}

	return prizes, nil
}

// Delete removes a prize by (guild, name); returns false when absent
func (r *PrizeRepository) Delete(ctx context.Context, guildID int64, name string) (bool, error) {
	query := `DELETE FROM prizes WHERE guild_id = $1 AND name = $2`

	result, err := r.q.Exec(ctx, query, guildID, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete prize %s for guild %d: %w", name, guildID, err)
	}

	return result.RowsAffected() == 1, nil
}
