package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// InfractionRepository implements the InfractionRepository interface
type InfractionRepository struct {
	q queryable
}

// NewInfractionRepository creates a new infraction repository
func NewInfractionRepository(db *database.DB) *InfractionRepository {
	return &InfractionRepository{q: db.Pool}
}

// newInfractionRepositoryWithTx creates a new infraction repository with a transaction
func newInfractionRepositoryWithTx(tx queryable) *InfractionRepository {
	return &InfractionRepository{q: tx}
}

// Create persists a new infraction
func (r *InfractionRepository) Create(ctx context.Context, infraction *models.Infraction) error {
	query := `
		INSERT INTO infractions (guild_id, user_id, issuer_id, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		infraction.GuildID,
		infraction.UserID,
		infraction.IssuerID,
		infraction.Reason,
	).Scan(&infraction.ID, &infraction.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create infraction for user %d in guild %d: %w", infraction.UserID, infraction.GuildID, err)
	}

	return nil
}

// ListByUser returns a user's infractions, newest first
func (r *InfractionRepository) ListByUser(ctx context.Context, guildID, userID int64) ([]*models.Infraction, error) {
	query := `
		SELECT id, guild_id, user_id, issuer_id, reason, created_at
		FROM infractions
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list infractions for user %d in guild %d: %w", userID, guildID, err)
	}
	defer rows.Close()

	var infractions []*models.Infraction
	for rows.Next() {
		var infraction models.Infraction
		err := rows.Scan(
			&infraction.ID,
			&infraction.GuildID,
			&infraction.UserID,
			&infraction.IssuerID,
			&infraction.Reason,
			&infraction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan infraction: %w", err)
		}
		infractions = append(infractions, &infraction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate infractions: %w", err)
	}

	return infractions, nil
}

// ClearByUser deletes a user's infractions and returns how many were removed
func (r *InfractionRepository) ClearByUser(ctx context.Context, guildID, userID int64) (int, error) {
	query := `DELETE FROM infractions WHERE guild_id = $1 AND user_id = $2`

	result, err := r.q.Exec(ctx, query, guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear infractions for user %d in guild %d: %w", userID, guildID, err)
	}

	return int(result.RowsAffected()), nil
}
