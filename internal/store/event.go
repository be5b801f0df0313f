package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// sequenceCounter numbers LLM events and quiz posts from one shared
// sequence, so a post can be lined up with the requests that produced it.
type sequenceCounter struct {
	mu sync.Mutex
	db *sqlx.DB
}

func newSequenceCounter(db *sqlx.DB) *sequenceCounter {
	return &sequenceCounter{db: db}
}

// Next claims a sequence number. The increment happens inside SQLite so
// two processes sharing the file never hand out the same value.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	if err := sc.db.GetContext(ctx, &seq,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	); err != nil {
		return 0, fmt.Errorf("claim sequence: %w", err)
	}
	return seq, nil
}
