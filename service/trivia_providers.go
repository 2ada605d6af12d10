package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"

	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// QuestionProvider fetches one trivia question from some source
type QuestionProvider interface {
	Fetch(ctx context.Context) (*models.TriviaQuestion, error)
}

// TriviaAPIProvider pulls questions from the-trivia-api.com
type TriviaAPIProvider struct {
	client *http.Client
}

func NewTriviaAPIProvider(client *http.Client) *TriviaAPIProvider {
	return &TriviaAPIProvider{client: client}
}

type triviaAPIQuestion struct {
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
	Difficulty       string   `json:"difficulty"`
}

func (p *TriviaAPIProvider) Fetch(ctx context.Context) (*models.TriviaQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://the-trivia-api.com/api/questions?limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia api returned status %d", resp.StatusCode)
	}

	var questions []triviaAPIQuestion
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("trivia api returned no questions")
	}

	q := questions[0]
	return &models.TriviaQuestion{
		Question:      q.Question,
		CorrectAnswer: q.CorrectAnswer,
		Options:       shuffleOptions(q.CorrectAnswer, q.IncorrectAnswers),
		Category:      q.Category,
		Difficulty:    q.Difficulty,
	}, nil
}

// OpenTDBProvider pulls questions from opentdb.com
type OpenTDBProvider struct {
	client *http.Client
}

func NewOpenTDBProvider(client *http.Client) *OpenTDBProvider {
	return &OpenTDBProvider{client: client}
}

type openTDBResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
		Difficulty       string   `json:"difficulty"`
	} `json:"results"`
}

func (p *OpenTDBProvider) Fetch(ctx context.Context) (*models.TriviaQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://opentdb.com/api.php?amount=1&type=multiple", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}

	var body openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.ResponseCode != 0 || len(body.Results) == 0 {
		return nil, fmt.Errorf("opentdb returned response code %d", body.ResponseCode)
	}

	// OpenTDB ships HTML entities in question and answer text
	q := body.Results[0]
	incorrect := make([]string, len(q.IncorrectAnswers))
	for i, a := range q.IncorrectAnswers {
		incorrect[i] = html.UnescapeString(a)
	}
	correct := html.UnescapeString(q.CorrectAnswer)

	return &models.TriviaQuestion{
		Question:      html.UnescapeString(q.Question),
		CorrectAnswer: correct,
		Options:       shuffleOptions(correct, incorrect),
		Category:      html.UnescapeString(q.Category),
		Difficulty:    q.Difficulty,
	}, nil
}

// LocalQuestionProvider serves from a small built-in bank so trivia keeps
// working when both remote sources are down
type LocalQuestionProvider struct{}

func NewLocalQuestionProvider() *LocalQuestionProvider {
	return &LocalQuestionProvider{}
}

var localQuestionBank = []models.TriviaQuestion{
	{
		Question:      "What is the largest planet in the Solar System?",
		CorrectAnswer: "Jupiter",
		Options:       []string{"Jupiter", "Saturn", "Neptune", "Earth"},
		Category:      "Science",
		Difficulty:    "easy",
	},
	{
		Question:      "Which element has the chemical symbol Au?",
		CorrectAnswer: "Gold",
		Options:       []string{"Silver", "Gold", "Copper", "Aluminium"},
		Category:      "Science",
		Difficulty:    "easy",
	},
	{
		Question:      "In what year did the Berlin Wall fall?",
		CorrectAnswer: "1989",
		Options:       []string{"1987", "1989", "1991", "1993"},
		Category:      "History",
		Difficulty:    "medium",
	},
	{
		Question:      "Which country hosted the 2016 Summer Olympics?",
		CorrectAnswer: "Brazil",
		Options:       []string{"China", "United Kingdom", "Brazil", "Japan"},
		Category:      "Sport",
		Difficulty:    "easy",
	},
	{
		Question:      "What is the capital of Canada?",
		CorrectAnswer: "Ottawa",
		Options:       []string{"Toronto", "Vancouver", "Montreal", "Ottawa"},
		Category:      "Geography",
		Difficulty:    "medium",
	},
	{
		Question:      "Who painted the Mona Lisa?",
		CorrectAnswer: "Leonardo da Vinci",
		Options:       []string{"Michelangelo", "Leonardo da Vinci", "Raphael", "Donatello"},
		Category:      "Art",
		Difficulty:    "easy",
	},
	{
		Question:      "How many bits are in one byte?",
		CorrectAnswer: "8",
		Options:       []string{"4", "8", "16", "32"},
		Category:      "Technology",
		Difficulty:    "easy",
	},
	{
		Question:      "Which ocean is the deepest?",
		CorrectAnswer: "Pacific",
		Options:       []string{"Atlantic", "Indian", "Pacific", "Arctic"},
		Category:      "Geography",
		Difficulty:    "easy",
	},
}

func (p *LocalQuestionProvider) Fetch(ctx context.Context) (*models.TriviaQuestion, error) {
	q := localQuestionBank[rand.Intn(len(localQuestionBank))]
	// Copy options so callers cannot mutate the bank
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	q.Options = options
	return &q, nil
}

// FallbackProvider tries each provider in order until one delivers
type FallbackProvider struct {
	providers []QuestionProvider
}

func NewFallbackProvider(providers ...QuestionProvider) *FallbackProvider {
	return &FallbackProvider{providers: providers}
}

func (p *FallbackProvider) Fetch(ctx context.Context) (*models.TriviaQuestion, error) {
	var lastErr error
	for _, provider := range p.providers {
		question, err := provider.Fetch(ctx)
		if err == nil {
			return question, nil
		}
		log.WithFields(log.Fields{
			"provider": fmt.Sprintf("%T", provider),
			"error":    err,
		}).Warn("Trivia provider failed, trying next")
		lastErr = err
	}
	return nil, fmt.Errorf("all trivia providers failed: %w", lastErr)
}

func shuffleOptions(correct string, incorrect []string) []string {
	options := make([]string, 0, len(incorrect)+1)
	options = append(options, correct)
	options = append(options, incorrect...)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}
