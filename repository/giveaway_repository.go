package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// GiveawayRepository implements the GiveawayRepository interface
type GiveawayRepository struct {
	q queryable
}

// NewGiveawayRepository creates a new giveaway repository
func NewGiveawayRepository(db *database.DB) *GiveawayRepository {
	return &GiveawayRepository{q: db.Pool}
}

// newGiveawayRepositoryWithTx creates a new giveaway repository with a transaction
func newGiveawayRepositoryWithTx(tx queryable) *GiveawayRepository {
	return &GiveawayRepository{q: tx}
}

const giveawayColumns = `id, guild_id, channel_id, message_id, prize, winner_count,
	ends_at, ping_role_id, created_by, status, created_at`

func scanGiveaway(row pgx.Row) (*models.Giveaway, error) {
	var giveaway models.Giveaway
	err := row.Scan(
		&giveaway.ID,
		&giveaway.GuildID,
		&giveaway.ChannelID,
		&giveaway.MessageID,
		&giveaway.Prize,
		&giveaway.WinnerCount,
		&giveaway.EndsAt,
		&giveaway.PingRoleID,
		&giveaway.CreatedBy,
		&giveaway.Status,
		&giveaway.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &giveaway, nil
}

// Create persists a new running giveaway
func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	query := `
		INSERT INTO giveaways (guild_id, channel_id, prize, winner_count, ends_at, ping_role_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, status, created_at
	`

	err := r.q.QueryRow(ctx, query,
		giveaway.GuildID,
		giveaway.ChannelID,
		giveaway.Prize,
		giveaway.WinnerCount,
		giveaway.EndsAt,
		giveaway.PingRoleID,
		giveaway.CreatedBy,
	).Scan(&giveaway.ID, &giveaway.Status, &giveaway.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create giveaway in channel %d: %w", giveaway.ChannelID, err)
	}

	return nil
}

// GetByID retrieves a giveaway by id, or nil when absent
func (r *GiveawayRepository) GetByID(ctx context.Context, id int64) (*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE id = $1`

	giveaway, err := scanGiveaway(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get giveaway %d: %w", id, err)
	}

	return giveaway, nil
}

// SetMessageID records the announcement message for a giveaway
func (r *GiveawayRepository) SetMessageID(ctx context.Context, giveawayID, messageID int64) error {
	query := `UPDATE giveaways SET message_id = $2 WHERE id = $1`

	result, err := r.q.Exec(ctx, query, giveawayID, messageID)
	if err != nil {
		return fmt.Errorf("failed to set message id on giveaway %d: %w", giveawayID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("giveaway %d not found", giveawayID)
	}

	return nil
}

// AddEntry inserts an entry; returns false when the participant already entered
func (r *GiveawayRepository) AddEntry(ctx context.Context, giveawayID, userID int64, now time.Time) (bool, error) {
	query := `
		INSERT INTO giveaway_entries (giveaway_id, user_id, entered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (giveaway_id, user_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, giveawayID, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to add entry to giveaway %d: %w", giveawayID, err)
	}

	return result.RowsAffected() == 1, nil
}

// GetEntries returns participant ids in entry order
func (r *GiveawayRepository) GetEntries(ctx context.Context, giveawayID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM giveaway_entries
		WHERE giveaway_id = $1
		ORDER BY entered_at, user_id
	`

	rows, err := r.q.Query(ctx, query, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entries for giveaway %d: %w", giveawayID, err)
	}
	defer rows.Close()

	var entries []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// CountEntries returns the number of entries for a giveaway
func (r *GiveawayRepository) CountEntries(ctx context.Context, giveawayID int64) (int, error) {
	query := `SELECT COUNT(*) FROM giveaway_entries WHERE giveaway_id = $1`

	var count int
	if err := r.q.QueryRow(ctx, query, giveawayID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entries for giveaway %d: %w", giveawayID, err)
	}

	return count, nil
}

// MarkEnded transitions a running giveaway to ended. The status is part of
// the match so concurrent enders cannot both succeed.
func (r *GiveawayRepository) MarkEnded(ctx context.Context, giveawayID int64) (bool, error) {
	query := `UPDATE giveaways SET status = 'ended' WHERE id = $1 AND status = 'running'`

	result, err := r.q.Exec(ctx, query, giveawayID)
	if err != nil {
		return false, fmt.Errorf("failed to end giveaway %d: %w", giveawayID, err)
	}

	return result.RowsAffected() == 1, nil
}

// MarkCancelled transitions a running giveaway to cancelled; returns false
// when it was not running
func (r *GiveawayRepository) MarkCancelled(ctx context.Context, giveawayID int64) (bool, error) {
	query := `UPDATE giveaways SET status = 'cancelled' WHERE id = $1 AND status = 'running'`

	result, err := r.q.Exec(ctx, query, giveawayID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel giveaway %d: %w", giveawayID, err)
	}

	return result.RowsAffected() == 1, nil
}

// ListDue returns running giveaways whose end time has passed
func (r *GiveawayRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE status = 'running' AND ends_at <= $1 ORDER BY ends_at`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due giveaways: %w", err)
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		giveaway, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, giveaway)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaways: %w", err)
	}

	return giveaways, nil
}

// ListRunning returns running giveaways for a guild
func (r *GiveawayRepository) ListRunning(ctx context.Context, guildID int64) ([]*models.Giveaway, error) {
	query := `SELECT ` + giveawayColumns + ` FROM giveaways WHERE guild_id = $1 AND status = 'running' ORDER BY ends_at`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list running giveaways for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var giveaways []*models.Giveaway
	for rows.Next() {
		giveaway, err := scanGiveaway(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan giveaway: %w", err)
		}
		giveaways = append(giveaways, giveaway)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate giveaways: %w", err)
	}

	return giveaways, nil
}
