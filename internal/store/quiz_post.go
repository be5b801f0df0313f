package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type quizRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

type quizPostRow struct {
	ID              string `db:"id"`
	Sequence        int64  `db:"sequence"`
	TimestampMs     int64  `db:"timestamp_ms"`
	Question        string `db:"question"`
	Options         string `db:"options"`
	CorrectOptionID int    `db:"correct_option_id"`
	Explanation     string `db:"explanation"`
	Source          string `db:"source"`
	Attempts        int    `db:"attempts"`
	Published       bool   `db:"published"`
	PublishError    string `db:"publish_error"`
}

func (r *quizRepo) RecordPost(ctx context.Context, post *QuizPost) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	options, err := json.Marshal(post.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Timestamp.IsZero() {
		post.Timestamp = time.Now().UTC()
	}
	post.Sequence = seqNum

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO quiz_posts (
			id, sequence, timestamp_ms, question, options, correct_option_id,
			explanation, source, attempts, published, publish_error
		) VALUES (
			:id, :sequence, :timestamp_ms, :question, :options, :correct_option_id,
			:explanation, :source, :attempts, :published, :publish_error
		)`, quizPostRow{
		ID:              post.ID,
		Sequence:        post.Sequence,
		TimestampMs:     post.Timestamp.UnixMilli(),
		Question:        post.Question,
		Options:         string(options),
		CorrectOptionID: post.CorrectOptionID,
		Explanation:     post.Explanation,
		Source:          post.Source,
		Attempts:        post.Attempts,
		Published:       post.Published,
		PublishError:    post.PublishError,
	})
	if err != nil {
		return fmt.Errorf("save quiz post: %w", err)
	}
	return nil
}

func (r *quizRepo) RecentPosts(ctx context.Context, limit int) ([]QuizPost, error) {
	query := `SELECT * FROM quiz_posts ORDER BY sequence DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []quizPostRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query quiz posts: %w", err)
	}

	posts := make([]QuizPost, 0, len(rows))
	for _, row := range rows {
		var options []string
		if err := json.Unmarshal([]byte(row.Options), &options); err != nil {
			return nil, fmt.Errorf("decode options of post %s: %w", row.ID, err)
		}
		posts = append(posts, QuizPost{
			ID:              row.ID,
			Sequence:        row.Sequence,
			Timestamp:       time.UnixMilli(row.TimestampMs).UTC(),
			Question:        row.Question,
			Options:         options,
			CorrectOptionID: row.CorrectOptionID,
			Explanation:     row.Explanation,
			Source:          row.Source,
			Attempts:        row.Attempts,
			Published:       row.Published,
			PublishError:    row.PublishError,
		})
	}
	return posts, nil
}
