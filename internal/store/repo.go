package store

import (
	"context"
	"time"
)

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// ModelUsage aggregates token usage per model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// PurposeUsage aggregates token usage and latency per request purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns the most recent events first. limit <= 0 means all.
	QueryLLMEvents(ctx context.Context, limit int) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// QuizPost is one tick's outcome: the quiz that was produced and whether
// it reached the channel.
type QuizPost struct {
	ID              string
	Sequence        int64
	Timestamp       time.Time
	Question        string
	Options         []string
	CorrectOptionID int
	Explanation     string
	Source          string
	Attempts        int
	Published       bool
	PublishError    string
}

// QuizRepo stores the posted-quiz log.
type QuizRepo interface {
	// RecordPost appends a post. ID, Sequence and Timestamp are assigned
	// when empty and written back into post.
	RecordPost(ctx context.Context, post *QuizPost) error

	// RecentPosts returns the most recent posts first. limit <= 0 means all.
	RecentPosts(ctx context.Context, limit int) ([]QuizPost, error)
}
