package service

import (
	"context"
	"errors"
	"testing"

	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubProvider returns a fixed question or a fixed error
type stubProvider struct {
	question *models.TriviaQuestion
	err      error
	calls    int
}

func (p *stubProvider) Fetch(ctx context.Context) (*models.TriviaQuestion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.question, nil
}

func capitalQuestion() *models.TriviaQuestion {
	return &models.TriviaQuestion{
		Question:      "What is the capital of France?",
		CorrectAnswer: "Paris",
		Options:       []string{"Paris", "Lyon", "Marseille", "Nice"},
		Category:      "Geography",
		Difficulty:    "easy",
	}
}

func newTriviaForTest(t *testing.T) (TriviaService, *MockTriviaScoreRepository) {
	uow, factory := setupUoW()

	scoreRepo := &MockTriviaScoreRepository{}
	scoreRepo.On("AddPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	uow.SetTriviaScoreRepository(scoreRepo)

	provider := &stubProvider{question: capitalQuestion()}
	return NewTriviaService(factory, provider), scoreRepo
}

func TestTriviaService_StartRound_RejectsSecondRound(t *testing.T) {
	svc, _ := newTriviaForTest(t)

	question, reason, err := svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
	assert.Equal(t, "Paris", question.CorrectAnswer)

	_, reason, err = svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonDuplicate, reason)

	// A different channel is free to start its own round
	_, reason, err = svc.StartRound(context.Background(), 100, 556)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
}

func TestTriviaService_SubmitAnswer_NoOpenRound(t *testing.T) {
	svc, _ := newTriviaForTest(t)

	result, err := svc.SubmitAnswer(context.Background(), 100, 555, 42, "Paris")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonNotFound, result.Reason)
}

func TestTriviaService_SubmitAnswer_SpeedBonuses(t *testing.T) {
	svc, scoreRepo := newTriviaForTest(t)

	_, _, err := svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)

	first, err := svc.SubmitAnswer(context.Background(), 100, 555, 1, "Paris")
	require.NoError(t, err)
	assert.True(t, first.Correct)
	assert.Equal(t, int64(triviaBasePoints+triviaFirstBonus), first.Points)
	assert.Equal(t, 1, first.Place)

	second, err := svc.SubmitAnswer(context.Background(), 100, 555, 2, "paris")
	require.NoError(t, err)
	assert.True(t, second.Correct, "answers are matched case-insensitively")
	assert.Equal(t, int64(triviaBasePoints+triviaSecondBonus), second.Points)

	third, err := svc.SubmitAnswer(context.Background(), 100, 555, 3, " Paris ")
	require.NoError(t, err)
	assert.Equal(t, int64(triviaBasePoints), third.Points)

	scoreRepo.AssertNumberOfCalls(t, "AddPoints", 3)
}

func TestTriviaService_SubmitAnswer_SingleAttemptPerUser(t *testing.T) {
	svc, scoreRepo := newTriviaForTest(t)

	_, _, err := svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)

	wrong, err := svc.SubmitAnswer(context.Background(), 100, 555, 42, "Lyon")
	require.NoError(t, err)
	assert.False(t, wrong.Correct)
	assert.Equal(t, models.ReasonNone, wrong.Reason)

	// A wrong answer still burns the attempt
	retry, err := svc.SubmitAnswer(context.Background(), 100, 555, 42, "Paris")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonDuplicate, retry.Reason)

	scoreRepo.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTriviaService_EndRound(t *testing.T) {
	svc, _ := newTriviaForTest(t)

	_, _, err := svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)

	question, ok := svc.EndRound(555)
	require.True(t, ok)
	assert.Equal(t, "Paris", question.CorrectAnswer)

	_, ok = svc.EndRound(555)
	assert.False(t, ok)

	// The channel is open for a fresh round again
	_, reason, err := svc.StartRound(context.Background(), 100, 555)
	require.NoError(t, err)
	assert.Equal(t, models.ReasonNone, reason)
}

func TestFallbackProvider_TriesNextOnFailure(t *testing.T) {
	broken := &stubProvider{err: errors.New("connection refused")}
	working := &stubProvider{question: capitalQuestion()}

	provider := NewFallbackProvider(broken, working)
	question, err := provider.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Paris", question.CorrectAnswer)
	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, 1, working.calls)
}

func TestFallbackProvider_AllFail(t *testing.T) {
	first := &stubProvider{err: errors.New("connection refused")}
	second := &stubProvider{err: errors.New("timeout")}

	provider := NewFallbackProvider(first, second)
	_, err := provider.Fetch(context.Background())

	require.Error(t, err)
}

func TestLocalQuestionProvider_AlwaysDelivers(t *testing.T) {
	provider := NewLocalQuestionProvider()

	for i := 0; i < 20; i++ {
		question, err := provider.Fetch(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, question.Question)
		assert.Contains(t, question.Options, question.CorrectAnswer)
	}
}
