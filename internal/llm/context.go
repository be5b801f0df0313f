package llm

import "context"

// Request purposes recorded with each LLM event.
const (
	PurposeQuizGen = "quiz-gen"
	PurposePreview = "preview"
)

type purposeKey struct{}

// WithPurpose labels the requests made with ctx. The label ends up in the
// request log and in `llm stats`.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// WithDefaultPurpose labels ctx with purpose unless a caller already did.
func WithDefaultPurpose(ctx context.Context, purpose string) context.Context {
	if v, _ := ctx.Value(purposeKey{}).(string); v != "" {
		return ctx
	}
	return WithPurpose(ctx, purpose)
}

// PurposeFrom returns the purpose label of ctx, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
