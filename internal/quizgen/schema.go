package quizgen

import "github.com/abhisek/quizbot/internal/llm"

// QuizSchema is the JSON schema for a quiz record. Character limits are left
// to struct validation. Providers that reject the count and range keywords
// receive a reduced copy, and the full schema is checked on every response.
var QuizSchema = &llm.Schema{
	Name:        "ruby-quiz",
	Description: "One multiple-choice Ruby or Rails quiz question with four options",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The Ruby/Rails question",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly 4 distinct answers, each at most 100 characters",
			},
			"correct_option_id": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     3,
				"description": "0-based index of the correct answer",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the answer is correct, at most 200 characters",
			},
		},
		"required":             []any{"question", "options", "correct_option_id", "explanation"},
		"additionalProperties": false,
	},
}
