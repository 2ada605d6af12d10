package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `
		INSERT INTO guild_settings (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET guild_id = EXCLUDED.guild_id
		RETURNING guild_id, ticket_category_id, closed_category_id, ticket_log_channel_id,
			staff_role_id, bug_input_channel_id, bug_registry_channel_id, bug_ping_mode,
			antiping_window_min, antiping_threshold, antiping_timeout_min
	`

	var settings models.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.TicketCategoryID,
		&settings.ClosedCategoryID,
		&settings.TicketLogChannelID,
		&settings.StaffRoleID,
		&settings.BugInputChannelID,
		&settings.BugRegistryChannelID,
		&settings.BugPingMode,
		&settings.AntipingWindowMin,
		&settings.AntipingThreshold,
		&settings.AntipingTimeoutMin,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET ticket_category_id = $2,
			closed_category_id = $3,
			ticket_log_channel_id = $4,
			staff_role_id = $5,
			bug_input_channel_id = $6,
			bug_registry_channel_id = $7,
			bug_ping_mode = $8,
			antiping_window_min = $9,
			antiping_threshold = $10,
			antiping_timeout_min = $11
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.TicketCategoryID,
		settings.ClosedCategoryID,
		settings.TicketLogChannelID,
		settings.StaffRoleID,
		settings.BugInputChannelID,
		settings.BugRegistryChannelID,
		settings.BugPingMode,
		settings.AntipingWindowMin,
		settings.AntipingThreshold,
		settings.AntipingTimeoutMin,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings for guild %d: %w", settings.GuildID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("settings for guild %d not found", settings.GuildID)
	}

	return nil
}
