package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// RateRecordRepository implements the RateRecordRepository interface
type RateRecordRepository struct {
	q queryable
}

// NewRateRecordRepository creates a new rate record repository
func NewRateRecordRepository(db *database.DB) *RateRecordRepository {
	return &RateRecordRepository{q: db.Pool}
}

// newRateRecordRepositoryWithTx creates a new rate record repository with a transaction
func newRateRecordRepositoryWithTx(tx queryable) *RateRecordRepository {
	return &RateRecordRepository{q: tx}
}

// Touch atomically inserts or advances the record for (scope, guild, user).
// The window reset and the increment live in one statement so concurrent
// events for the same actor serialize on the row and each one observes a
// distinct violation count.
func (r *RateRecordRepository) Touch(ctx context.Context, scope models.RateScope, guildID, userID int64, firstHitCount int, cutoff, now time.Time) (int, bool, error) {
	query := `
		INSERT INTO rate_records (scope, guild_id, user_id, violations, last_event_at)
		VALUES ($1, $2, $3, $4, $6)
		ON CONFLICT (scope, guild_id, user_id) DO UPDATE
		SET violations = CASE
				WHEN rate_records.last_event_at <= $5 THEN $4
				ELSE rate_records.violations + 1
			END,
			last_event_at = $6
		RETURNING violations, (xmax = 0) AS inserted
	`

	var violations int
	var inserted bool
	err := r.q.QueryRow(ctx, query, scope, guildID, userID, firstHitCount, cutoff, now).Scan(&violations, &inserted)
	if err != nil {
		return 0, false, fmt.Errorf("failed to touch rate record for %s/%d/%d: %w", scope, guildID, userID, err)
	}

	return violations, inserted, nil
}

// Get retrieves the record for (scope, guild, user), or nil when absent
func (r *RateRecordRepository) Get(ctx context.Context, scope models.RateScope, guildID, userID int64) (*models.RateRecord, error) {
	query := `
		SELECT scope, guild_id, user_id, violations, last_event_at
		FROM rate_records
		WHERE scope = $1 AND guild_id = $2 AND user_id = $3
	`

	var record models.RateRecord
	err := r.q.QueryRow(ctx, query, scope, guildID, userID).Scan(
		&record.Scope,
		&record.GuildID,
		&record.UserID,
		&record.Violations,
		&record.LastEventAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate record for %s/%d/%d: %w", scope, guildID, userID, err)
	}

	return &record, nil
}
