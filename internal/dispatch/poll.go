// Package dispatch turns generated quiz records into published polls on a
// fixed schedule.
package dispatch

import (
	"context"

	"github.com/abhisek/quizbot/internal/quizgen"
)

// Poll is what gets posted to the destination channel.
type Poll struct {
	Question        string
	Options         []string
	CorrectOptionID int
	Explanation     string

	// Quiz marks the poll as a quiz with one correct answer.
	Quiz bool

	// Anonymous hides who voted.
	Anonymous bool
}

// PollFromRecord maps a quiz record 1:1 onto a non-anonymous quiz poll.
func PollFromRecord(rec quizgen.Record) Poll {
	return Poll{
		Question:        rec.Question,
		Options:         append([]string(nil), rec.Options...),
		CorrectOptionID: rec.CorrectOptionID,
		Explanation:     rec.Explanation,
		Quiz:            true,
		Anonymous:       false,
	}
}

// Publisher posts a poll to the destination channel.
type Publisher interface {
	PublishQuiz(ctx context.Context, poll Poll) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, poll Poll) error

func (f PublisherFunc) PublishQuiz(ctx context.Context, poll Poll) error {
	return f(ctx, poll)
}
