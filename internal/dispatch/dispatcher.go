package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizbot/internal/quizgen"
	"github.com/abhisek/quizbot/internal/store"
)

// Producer yields one tagged quiz result per call. *quizgen.Generator
// implements it.
type Producer interface {
	Produce(ctx context.Context) quizgen.Result
}

// Recorder persists the outcome of a tick. store.QuizRepo implements it.
type Recorder interface {
	RecordPost(ctx context.Context, post *store.QuizPost) error
}

// Dispatcher runs one generate-then-publish step.
type Dispatcher struct {
	producer  Producer
	publisher Publisher
	recorder  Recorder
	log       logrus.FieldLogger
	now       func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder stores every tick's outcome.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(producer Producer, publisher Publisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		producer:  producer,
		publisher: publisher,
		log:       logrus.StandardLogger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tick generates one quiz and publishes it exactly once. A publish error is
// logged and returned. It does not affect the generator.
func (d *Dispatcher) Tick(ctx context.Context) error {
	res := d.producer.Produce(ctx)
	poll := PollFromRecord(res.Record)

	fields := logrus.Fields{
		"question": res.Record.Question,
		"source":   string(res.Source),
		"attempts": res.Attempts,
	}

	pubErr := d.publish(ctx, poll)
	if pubErr != nil {
		d.log.WithFields(fields).WithError(pubErr).Error("failed to send quiz")
	} else {
		fields["sent_at"] = d.now().Format(time.RFC3339)
		d.log.WithFields(fields).Info("quiz sent")
	}

	d.record(ctx, res, pubErr)

	if pubErr != nil {
		return fmt.Errorf("publish quiz: %w", pubErr)
	}
	return nil
}

// publish shields the tick from a panicking publisher.
func (d *Dispatcher) publish(ctx context.Context, poll Poll) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("publisher panic: %v", r)
		}
	}()
	return d.publisher.PublishQuiz(ctx, poll)
}

func (d *Dispatcher) record(ctx context.Context, res quizgen.Result, pubErr error) {
	if d.recorder == nil {
		return
	}
	post := &store.QuizPost{
		Question:        res.Record.Question,
		Options:         res.Record.Options,
		CorrectOptionID: res.Record.CorrectOptionID,
		Explanation:     res.Record.Explanation,
		Source:          string(res.Source),
		Attempts:        res.Attempts,
		Published:       pubErr == nil,
	}
	if pubErr != nil {
		post.PublishError = pubErr.Error()
	}
	if err := d.recorder.RecordPost(context.WithoutCancel(ctx), post); err != nil {
		d.log.WithError(err).Warn("failed to record quiz post")
	}
}
