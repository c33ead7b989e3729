// Package analysis defines the philosophical analysis result types and the
// Gemini-backed client that produces them from a completed answer set.
package analysis

import (
	"fmt"
	"strings"

	"philomind/internal/questions"
)

// Insight ties one answered question to a philosophical reading of it.
type Insight struct {
	QuestionID               int    `json:"questionId"`
	UserAnswerSummary        string `json:"userAnswerSummary"`
	PhilosophicalPerspective string `json:"philosophicalPerspective"`
	RelevantQuote            string `json:"relevantQuote"`
	Philosopher              string `json:"philosopher"`
}

// Result is the structured analysis of a completed questionnaire.
type Result struct {
	MaturityScore        int       `json:"maturityScore"` // 0 - 100
	PhilosophicalPersona string    `json:"philosophicalPersona"`
	GeneralAnalysis      string    `json:"generalAnalysis"`
	Insights             []Insight `json:"insights"`
	HasAward             bool      `json:"hasAward"`
	AwardTitle           string    `json:"awardTitle,omitempty"`
}

// ClampedScore returns the maturity score clamped to [0,100] for rendering.
// Validation rejects out-of-range scores at the client boundary; the clamp
// protects rendering of results restored from older snapshots.
func (r *Result) ClampedScore() int {
	if r.MaturityScore < 0 {
		return 0
	}
	if r.MaturityScore > 100 {
		return 100
	}
	return r.MaturityScore
}

// Award returns the award title and whether an award should be shown.
// The flag alone is not trusted: a blank title suppresses the award.
func (r *Result) Award() (string, bool) {
	title := strings.TrimSpace(r.AwardTitle)
	if !r.HasAward || title == "" {
		return "", false
	}
	return title, true
}

// Validate checks a decoded result against the question bank. Any failure
// means the model response is unusable as a whole; no partial results.
func (r *Result) Validate(bank questions.Bank) error {
	if r.MaturityScore < 0 || r.MaturityScore > 100 {
		return fmt.Errorf("maturity score %d out of range [0,100]", r.MaturityScore)
	}
	if strings.TrimSpace(r.PhilosophicalPersona) == "" {
		return fmt.Errorf("persona is empty")
	}
	for i, ins := range r.Insights {
		if _, ok := bank.ByID(ins.QuestionID); !ok {
			return fmt.Errorf("insight %d references unknown question id %d", i, ins.QuestionID)
		}
	}
	return nil
}

// MockResult returns a canned analysis for offline demos and UI work.
func MockResult() *Result {
	return &Result{
		MaturityScore:        85,
		PhilosophicalPersona: "The Resilient Stoic",
		GeneralAnalysis:      "You demonstrate a profound ability to separate external events from internal peace.",
		Insights:             []Insight{},
		HasAward:             true,
		AwardTitle:           "Order of the Calm Mind",
	}
}
