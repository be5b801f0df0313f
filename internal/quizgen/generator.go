package quizgen

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizbot/internal/llm"
)

// Generator produces Ruby quiz records using an LLM provider. It remembers
// the last accepted question and rejects an immediate repeat of it.
// A Generator is safe for concurrent use.
type Generator struct {
	provider llm.Provider
	config   Config

	mu           sync.Mutex
	lastQuestion string
}

// New creates a Generator with the given provider and config.
// Non-positive MaxAttempts and MaxTokens fall back to the defaults.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg.withDefaults()}
}

// LastQuestion returns the question of the last accepted record.
func (g *Generator) LastQuestion() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastQuestion
}

// SetLastQuestion seeds the duplicate check.
func (g *Generator) SetLastQuestion(q string) {
	g.mu.Lock()
	g.lastQuestion = q
	g.mu.Unlock()
}

// Generate returns a valid quiz record. It never fails: once the attempts
// are used up it returns the static fallback.
func (g *Generator) Generate(ctx context.Context) Record {
	return g.Produce(ctx).Record
}

// Produce runs the retry loop and reports where the record came from.
func (g *Generator) Produce(ctx context.Context) Result {
	log := g.config.Logger

	var lastErr error
	attempts := 0
	for i := 0; i < g.config.MaxAttempts; i++ {
		attempts++
		rec, err := g.Attempt(ctx)
		if err == nil {
			return Result{Record: rec, Source: SourceGenerated, Attempts: attempts}
		}
		lastErr = &AttemptError{Attempt: i + 1, Err: err}

		backoff := g.config.BackoffUnit << i
		log.WithFields(logrus.Fields{
			"attempt": i + 1,
			"kind":    kind(err),
			"backoff": backoff.String(),
		}).WithError(err).Warn("quiz generation attempt failed")

		if serr := g.config.Sleep(ctx, backoff); serr != nil {
			log.WithError(serr).Warn("quiz generation interrupted")
			break
		}
	}

	log.WithFields(logrus.Fields{
		"attempts": attempts,
	}).WithError(lastErr).Error("quiz generation exhausted, using fallback")

	return Result{
		Record:   Fallback(),
		Source:   SourceFallback,
		Attempts: attempts,
		Err:      fmt.Errorf("%w: %w", ErrExhausted, lastErr),
	}
}

// Attempt makes exactly one generation attempt with no retry or wait.
// On success the returned question becomes the last question.
func (g *Generator) Attempt(ctx context.Context) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = Record{}
			err = fmt.Errorf("%w: panic: %v", ErrUnexpected, r)
		}
	}()

	ctx = llm.WithDefaultPurpose(ctx, llm.PurposeQuizGen)
	last := g.LastQuestion()

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(last)},
		},
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	switch {
	case err != nil && llm.IsInvalidContent(err):
		return Record{}, fmt.Errorf("%w: %w", ErrMalformedContent, err)
	case err != nil:
		return Record{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	case resp == nil:
		return Record{}, fmt.Errorf("%w: no response", ErrUpstreamUnavailable)
	}

	rec, err = DecodeRecord(resp.Content)
	if err != nil {
		return Record{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if rec.Question == g.lastQuestion {
		return Record{}, fmt.Errorf("%w: %q", ErrDuplicateContent, rec.Question)
	}
	g.lastQuestion = rec.Question
	return rec, nil
}
