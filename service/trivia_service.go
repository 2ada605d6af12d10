package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"guildkeeper/models"
)

const (
	triviaBasePoints   = 10
	triviaFirstBonus   = 2
	triviaSecondBonus  = 1
	triviaFetchTimeout = 12 * time.Second
)

// triviaRound is the in-memory state of one open question in a channel
type triviaRound struct {
	guildID  int64
	question *models.TriviaQuestion
	answered map[int64]bool
	correct  int
}

type triviaService struct {
	uowFactory UnitOfWorkFactory
	provider   QuestionProvider

	mu     sync.Mutex
	rounds map[int64]*triviaRound // keyed by channel id
}

// NewTriviaService creates a new trivia service backed by the given provider
func NewTriviaService(uowFactory UnitOfWorkFactory, provider QuestionProvider) TriviaService {
	return &triviaService{
		uowFactory: uowFactory,
		provider:   provider,
		rounds:     make(map[int64]*triviaRound),
	}
}

func (s *triviaService) StartRound(ctx context.Context, guildID, channelID int64) (*models.TriviaQuestion, models.FailureReason, error) {
	s.mu.Lock()
	if _, open := s.rounds[channelID]; open {
		s.mu.Unlock()
		return nil, models.ReasonDuplicate, nil
	}
	s.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, triviaFetchTimeout)
	defer cancel()

	question, err := s.provider.Fetch(fetchCtx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch question: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock; a concurrent start may have won while fetching
	if _, open := s.rounds[channelID]; open {
		return nil, models.ReasonDuplicate, nil
	}
	s.rounds[channelID] = &triviaRound{
		guildID:  guildID,
		question: question,
		answered: make(map[int64]bool),
	}

	return question, models.ReasonNone, nil
}

// SubmitAnswer scores one attempt. Each user gets a single attempt per round;
// the first and second correct answers earn a speed bonus.
func (s *triviaService) SubmitAnswer(ctx context.Context, guildID, channelID, userID int64, answer string) (*models.TriviaAnswerResult, error) {
	s.mu.Lock()
	round, open := s.rounds[channelID]
	if !open || round.guildID != guildID {
		s.mu.Unlock()
		return &models.TriviaAnswerResult{Reason: models.ReasonNotFound}, nil
	}
	if round.answered[userID] {
		s.mu.Unlock()
		return &models.TriviaAnswerResult{Reason: models.ReasonDuplicate}, nil
	}
	round.answered[userID] = true

	correct := strings.EqualFold(strings.TrimSpace(answer), round.question.CorrectAnswer)
	var place int
	var points int64
	if correct {
		round.correct++
		place = round.correct
		points = triviaBasePoints
		switch place {
		case 1:
			points += triviaFirstBonus
		case 2:
			points += triviaSecondBonus
		}
	}
	s.mu.Unlock()

	if !correct {
		return &models.TriviaAnswerResult{}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.TriviaScoreRepository().AddPoints(ctx, guildID, userID, points, 1, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to record points: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.TriviaAnswerResult{Correct: true, Points: points, Place: place}, nil
}

func (s *triviaService) EndRound(channelID int64) (*models.TriviaQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, open := s.rounds[channelID]
	if !open {
		return nil, false
	}
	delete(s.rounds, channelID)
	return round.question, true
}

func (s *triviaService) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*models.TriviaScore, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	scores, err := uow.TriviaScoreRepository().Top(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	return scores, nil
}
