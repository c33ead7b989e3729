package analysis

import (
	"fmt"
	"strings"

	"philomind/internal/questions"
)

// systemInstruction keeps the model terse and in persona.
const systemInstruction = "You are a master philosopher analyzing a user's answers to deep life questions. Be extremely concise."

// noAnswer is the placeholder for questions the user left unanswered.
// The prompt always covers the full bank so insights can reference any
// question id.
const noAnswer = "No answer provided."

// BuildPrompt renders the analysis prompt: every bank question in
// canonical order with the user's answer or the no-answer placeholder.
func BuildPrompt(bank questions.Bank, answers map[int]string) string {
	var b strings.Builder
	b.WriteString("Analyze the user's philosophical maturity based on these answers:\n\n")
	for _, q := range bank {
		answer := strings.TrimSpace(answers[q.ID])
		if answer == "" {
			answer = noAnswer
		}
		fmt.Fprintf(&b, "Q%d: %s\nUser Answer: %s\n---\n", q.ID, q.Text, answer)
	}
	return b.String()
}
