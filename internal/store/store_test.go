package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizbot.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizbot.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.QuizRepo().RecordPost(ctx, &QuizPost{Question: "Q1", Options: []string{"a", "b", "c", "d"}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	posts, err := s.QuizRepo().RecentPosts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Q1", posts[0].Question)

	// The sequence resumes instead of restarting at 1.
	next := &QuizPost{Question: "Q2", Options: []string{"a", "b", "c", "d"}}
	require.NoError(t, s.QuizRepo().RecordPost(ctx, next))
	assert.Greater(t, next.Sequence, posts[0].Sequence)
}

func TestLLMEvents_AppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4", Purpose: "quiz-gen",
		InputTokens: 300, OutputTokens: 120, LatencyMs: 900, Success: true,
		RequestBody: "[user]\nprompt", ResponseBody: `{"question":"Q"}`,
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4", Purpose: "quiz-gen",
		LatencyMs: 100, Success: false, ErrorMessage: "boom",
	}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "openai", Model: "gpt-4o-mini", Purpose: "preview",
		InputTokens: 10, OutputTokens: 5, LatencyMs: 50, Success: true,
	}))

	events, err := repo.QueryLLMEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "preview", events[0].Purpose, "newest first")
	assert.Equal(t, "boom", events[1].ErrorMessage)
	assert.False(t, events[1].Success)
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Minute)

	first, err := repo.GetLLMEvent(ctx, events[1].ID-1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Success)
	assert.Equal(t, `{"question":"Q"}`, first.ResponseBody)

	missing, err := repo.GetLLMEvent(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, ModelUsage{Model: "gpt-4", Calls: 2, InputTokens: 300, OutputTokens: 120}, byModel[0])
	assert.Equal(t, ModelUsage{Model: "gpt-4o-mini", Calls: 1, InputTokens: 10, OutputTokens: 5}, byModel[1])

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "preview", byPurpose[0].Purpose)
	assert.Equal(t, "quiz-gen", byPurpose[1].Purpose)
	assert.Equal(t, 2, byPurpose[1].Calls)
	assert.Equal(t, 1, byPurpose[1].Failures)
	assert.Zero(t, byPurpose[0].Failures)
	assert.Equal(t, int64(500), byPurpose[1].AvgLatencyMs)
}

func TestQuizPosts_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuizRepo()
	ctx := context.Background()

	generated := &QuizPost{
		Question:        "What does `freeze` do?",
		Options:         []string{"Prevents modification", "Copies", "Deletes", "Nothing"},
		CorrectOptionID: 0,
		Explanation:     "Frozen objects raise FrozenError on mutation.",
		Source:          "generated",
		Attempts:        1,
		Published:       true,
	}
	require.NoError(t, repo.RecordPost(ctx, generated))
	assert.NotEmpty(t, generated.ID)
	assert.NotZero(t, generated.Sequence)

	failed := &QuizPost{
		Question:     "What is the difference between 'include' and 'extend' in Ruby?",
		Options:      []string{"a", "b", "c", "d"},
		Source:       "fallback",
		Attempts:     3,
		Published:    false,
		PublishError: "Forbidden: bot is not a member of the channel chat",
	}
	require.NoError(t, repo.RecordPost(ctx, failed))

	posts, err := repo.RecentPosts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, failed.ID, posts[0].ID)
	assert.False(t, posts[0].Published)
	assert.Equal(t, "fallback", posts[0].Source)
	assert.Contains(t, posts[0].PublishError, "Forbidden")

	assert.Equal(t, generated.Options, posts[1].Options)
	assert.True(t, posts[1].Published)
	assert.Equal(t, 1, posts[1].Attempts)

	limited, err := repo.RecentPosts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSequenceSharedAcrossTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "quiz-gen", Success: true}))
	post := &QuizPost{Question: "Q", Options: []string{"a", "b", "c", "d"}}
	require.NoError(t, s.QuizRepo().RecordPost(ctx, post))

	events, err := s.EventRepo().QueryLLMEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Less(t, events[0].Sequence, post.Sequence)
}
