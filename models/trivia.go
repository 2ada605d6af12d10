package models

import (
	"time"
)

// TriviaScore tracks a user's accumulated trivia points within one guild
type TriviaScore struct {
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	Points    int64     `db:"points"`
	Correct   int       `db:"correct"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TriviaQuestion is one fetched question. It lives only in memory while the
// round is open; nothing about the question itself is persisted.
type TriviaQuestion struct {
	Question      string
	CorrectAnswer string
	Options       []string
	Category      string
	Difficulty    string
}
