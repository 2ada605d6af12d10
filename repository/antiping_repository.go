package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// AntipingRepository implements the AntipingRepository interface
type AntipingRepository struct {
	q queryable
}

// NewAntipingRepository creates a new antiping repository
func NewAntipingRepository(db *database.DB) *AntipingRepository {
	return &AntipingRepository{q: db.Pool}
}

// newAntipingRepositoryWithTx creates a new antiping repository with a transaction
func newAntipingRepositoryWithTx(tx queryable) *AntipingRepository {
	return &AntipingRepository{q: tx}
}

// Add marks a user as protected; returns false when already protected
func (r *AntipingRepository) Add(ctx context.Context, target *models.AntipingTarget) (bool, error) {
	query := `
		INSERT INTO antiping_targets (guild_id, user_id, added_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, user_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, target.GuildID, target.UserID, target.AddedBy)
	if err != nil {
		return false, fmt.Errorf("failed to add protected target %d in guild %d: %w", target.UserID, target.GuildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// Remove unmarks a protected user; returns false when not protected
func (r *AntipingRepository) Remove(ctx context.Context, guildID, userID int64) (bool, error) {
	query := `DELETE FROM antiping_targets WHERE guild_id = $1 AND user_id = $2`

	result, err := r.q.Exec(ctx, query, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove protected target %d in guild %d: %w", userID, guildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// List returns the protected targets for a guild
func (r *AntipingRepository) List(ctx context.Context, guildID int64) ([]*models.AntipingTarget, error) {
	query := `
		SELECT guild_id, user_id, added_by, added_at
		FROM antiping_targets
		WHERE guild_id = $1
		ORDER BY added_at, user_id
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list protected targets for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var targets []*models.AntipingTarget
	for rows.Next() {
		var target models.AntipingTarget
		err := rows.Scan(
			&target.GuildID,
			&target.UserID,
			&target.AddedBy,
			&target.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan protected target: %w", err)
		}
		targets = append(targets, &target)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate protected targets: %w", err)
	}

	return targets, nil
}

// IsTarget reports whether a user is protected in a guild
func (r *AntipingRepository) IsTarget(ctx context.Context, guildID, userID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM antiping_targets WHERE guild_id = $1 AND user_id = $2)`

	var protected bool
	if err := r.q.QueryRow(ctx, query, guildID, userID).Scan(&protected); err != nil {
		return false, fmt.Errorf("failed to check protected target %d in guild %d: %w", userID, guildID, err)
	}

	return protected, nil
}
