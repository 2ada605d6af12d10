package repository

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/database"
	"guildkeeper/models"
)

// TriviaScoreRepository implements the TriviaScoreRepository interface
type TriviaScoreRepository struct {
	q queryable
}

// NewTriviaScoreRepository creates a new trivia score repository
func NewTriviaScoreRepository(db *database.DB) *TriviaScoreRepository {
	return &TriviaScoreRepository{q: db.Pool}
}

// newTriviaScoreRepositoryWithTx creates a new trivia score repository with a transaction
func newTriviaScoreRepositoryWithTx(tx queryable) *TriviaScoreRepository {
	return &TriviaScoreRepository{q: tx}
}

// AddPoints upserts points and correct-answer counts for a user
func (r *TriviaScoreRepository) AddPoints(ctx context.Context, guildID, userID int64, points int64, correct int, now time.Time) error {
	query := `
		INSERT INTO trivia_scores (guild_id, user_id, points, correct, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id) DO UPDATE
		SET points = trivia_scores.points + $3,
			correct = trivia_scores.correct + $4,
			updated_at = $5
	`

	if _, err := r.q.Exec(ctx, query, guildID, userID, points, correct, now); err != nil {
		return fmt.Errorf("failed to add trivia points for user %d in guild %d: %w", userID, guildID, err)
	}

	return nil
}

// Top returns the trivia leaderboard for a guild
func (r *TriviaScoreRepository) Top(ctx context.Context, guildID int64, limit int) ([]*models.TriviaScore, error) {
	query := `
		SELECT guild_id, user_id, points, correct, updated_at
		FROM trivia_scores
		WHERE guild_id = $1
		ORDER BY points DESC, user_id
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trivia leaderboard for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var scores []*models.TriviaScore
	for rows.Next() {
		var score models.TriviaScore
		err := rows.Scan(
			&score.GuildID,
			&score.UserID,
			&score.Points,
			&score.Correct,
			&score.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trivia score: %w", err)
		}
		scores = append(scores, &score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trivia scores: %w", err)
	}

	return scores, nil
}
