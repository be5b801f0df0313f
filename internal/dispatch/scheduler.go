package dispatch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizbot/internal/logging"
)

// Ticker is one unit of scheduled work. *Dispatcher implements it.
type Ticker interface {
	Tick(ctx context.Context) error
}

// Scheduler runs a Ticker after InitialDelay and then every Interval.
// The next wait starts only after the previous tick returns, so ticks
// never overlap.
type Scheduler struct {
	Ticker Ticker

	// InitialDelay is the wait before the first tick. Zero runs it at
	// once; a negative value means DefaultInitialDelay.
	InitialDelay time.Duration

	// Interval is the wait between ticks. Non-positive means DefaultInterval.
	Interval time.Duration

	// Logger defaults to the logger carried by the Run context.
	Logger logrus.FieldLogger
}

const (
	DefaultInitialDelay = 10 * time.Second
	DefaultInterval     = 2 * time.Hour
)

// Run blocks until ctx is done. Tick errors are logged and never stop the
// schedule. Run returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	log := s.Logger
	if log == nil {
		log = logging.FromContext(ctx)
	}
	delay := s.InitialDelay
	if delay < 0 {
		delay = DefaultInitialDelay
	}
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	log.WithFields(logrus.Fields{
		"first_run_in": delay.String(),
		"interval":     interval.String(),
	}).Info("quiz job scheduled")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		s.runTick(ctx, log)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		log.WithField("next_run_in", interval.String()).Debug("next quiz scheduled")
		timer.Reset(interval)
	}
}

func (s *Scheduler) runTick(ctx context.Context, log logrus.FieldLogger) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("quiz tick panicked")
		}
	}()
	if err := s.Ticker.Tick(ctx); err != nil {
		log.WithError(err).Warn("quiz tick failed")
	}
}
