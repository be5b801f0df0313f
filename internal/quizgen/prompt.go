package quizgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert in Ruby programming and the Ruby on Rails framework.

Generate a challenging multiple-choice quiz question for advanced Ruby developers.

Instructions:
- The question should focus on advanced Ruby or Rails topics.
- Provide 4 distinct options, each not exceeding 100 characters.
- Specify the correct answer by its index (0-based).
- Include a brief explanation (up to 200 characters) of the correct answer.
- Vary topics across different areas of Ruby and Rails, avoiding repetition of subjects like Lambda and Proc.

Output a single JSON object (no extra text) with:
- "question": The Ruby/Rails question.
- "options": A list of 4 possible answers.
- "correct_option_id": Index (0-based) of the correct answer.
- "explanation": A brief explanation of the correct answer.

Example:
{
  "question": "What is the purpose of the ` + "`before_action`" + ` callback in Rails?",
  "options": ["Execute code before action", "Handle routing", "Manage background jobs", "Define middleware"],
  "correct_option_id": 0,
  "explanation": "` + "`before_action`" + ` runs specified methods before controller actions, often for setup tasks."
}`

// buildUserMessage asks for one question and names the previous one so the
// model steers away from it.
func buildUserMessage(lastQuestion string) string {
	var b strings.Builder
	b.WriteString("Generate one new quiz question now.")
	if q := strings.TrimSpace(lastQuestion); q != "" {
		fmt.Fprintf(&b, "\n\nThe previous question was:\n%s\nDo not repeat it or its subject.", q)
	}
	return b.String()
}
