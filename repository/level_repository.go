package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// LevelRepository implements the LevelRepository interface
type LevelRepository struct {
	q queryable
}

// NewLevelRepository creates a new level repository
func NewLevelRepository(db *database.DB) *LevelRepository {
	return &LevelRepository{q: db.Pool}
}

// newLevelRepositoryWithTx creates a new level repository with a transaction
func newLevelRepositoryWithTx(tx queryable) *LevelRepository {
	return &LevelRepository{q: tx}
}

// GetOrCreate retrieves a level profile, creating a fresh one if absent
func (r *LevelRepository) GetOrCreate(ctx context.Context, guildID, userID int64) (*models.LevelProfile, error) {
	query := `
		INSERT INTO level_profiles (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, user_id, xp, level, last_xp_at
	`

	var profile models.LevelProfile
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(
		&profile.GuildID,
		&profile.UserID,
		&profile.XP,
		&profile.Level,
		&profile.LastXPAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create level profile for user %d in guild %d: %w", userID, guildID, err)
	}

	return &profile, nil
}

// Update persists an advanced profile
func (r *LevelRepository) Update(ctx context.Context, profile *models.LevelProfile) error {
	query := `
		UPDATE level_profiles
		SET xp = $3, level = $4, last_xp_at = $5
		WHERE guild_id = $1 AND user_id = $2
	`

	result, err := r.q.Exec(ctx, query,
		profile.GuildID,
		profile.UserID,
		profile.XP,
		profile.Level,
		profile.LastXPAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update level profile for user %d in guild %d: %w", profile.UserID, profile.GuildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("level profile for user %d in guild %d not found", profile.UserID, profile.GuildID)
	}

	return nil
}

// Top returns the highest-XP profiles for a guild. Level outranks XP so a
// fresh level's low remainder does not sort below a maxed-out lower level.
func (r *LevelRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.LevelProfile, error) {
	query := `
		SELECT guild_id, user_id, xp, level, last_xp_at
		FROM level_profiles
		WHERE guild_id = $1
		ORDER BY level DESC, xp DESC, user_id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load level leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var profiles []*models.LevelProfile
	for rows.Next() {
		var profile models.LevelProfile
		err := rows.Scan(
			&profile.GuildID,
			&profile.UserID,
			&profile.XP,
			&profile.Level,
			&profile.LastXPAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate level profiles: %w", err)
	}

	return profiles, nil
}

// Rank returns the 1-based rank of a user within a guild
func (r *LevelRepository) Rank(ctx context.Context, guildID, userID int64) (int, error) {
	query := `
		SELECT rank
		FROM (
			SELECT user_id, RANK() OVER (ORDER BY level DESC, xp DESC) AS rank
			FROM level_profiles
			WHERE guild_id = $1
		) ranked
		WHERE user_id = $2
	`

	var rank int
	err := r.q.QueryRow(ctx, query, guildID, userID).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("failed to get rank for user %d in guild %d: %w", userID, guildID, err)
	}

	return rank, nil
}
