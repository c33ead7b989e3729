// Package questionnaire implements the linear answer-collection flow: a
// shuffled question order fixed at creation, a draft buffer per question,
// and exactly-once delivery of the completed answer set.
package questionnaire

import (
	"errors"
	"math/rand"
	"strings"

	"philomind/internal/logging"
	"philomind/internal/questions"
)

var (
	// ErrEmptyAnswer is returned when Advance is called with a blank draft.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrCompleted is returned when the flow has already delivered its answers.
	ErrCompleted = errors.New("questionnaire already completed")
)

// Flow walks a shuffled question bank one question at a time. Answers are
// keyed by question id so consumers can re-map them to prompts regardless
// of presentation order.
type Flow struct {
	bank    questions.Bank // canonical order, for prompt lookups
	order   questions.Bank // shuffled presentation order
	index   int
	draft   string
	answers map[int]string
	done    bool
}

// New creates a flow over the bank. The permutation is computed once here
// and never changes for the lifetime of the flow.
func New(bank questions.Bank, r *rand.Rand) *Flow {
	return &Flow{
		bank:    bank,
		order:   bank.Shuffle(r),
		answers: make(map[int]string),
	}
}

// Bank returns the canonical (unshuffled) bank.
func (f *Flow) Bank() questions.Bank { return f.bank }

// Current returns the question being asked. Stable across repeated calls.
func (f *Flow) Current() questions.Question {
	if f.index >= len(f.order) {
		return f.order[len(f.order)-1]
	}
	return f.order[f.index]
}

// Index returns the zero-based position in the presentation order.
func (f *Flow) Index() int { return f.index }

// Total returns the number of questions in the flow.
func (f *Flow) Total() int { return len(f.order) }

// Done reports whether the completed answer set has been delivered.
func (f *Flow) Done() bool { return f.done }

// Draft returns the in-progress answer text for the current question.
func (f *Flow) Draft() string { return f.draft }

// SetDraft replaces the in-progress answer text. Selecting a quick-pick
// option goes through here too; it seeds the draft, nothing more.
func (f *Flow) SetDraft(text string) { f.draft = text }

// Progress returns answered/total in [0,1]. Answering the final question
// reports 1.0.
func (f *Flow) Progress() float64 {
	if len(f.order) == 0 {
		return 0
	}
	return float64(len(f.answers)) / float64(len(f.order))
}

// Answers returns a copy of the answers recorded so far, keyed by question id.
func (f *Flow) Answers() map[int]string {
	out := make(map[int]string, len(f.answers))
	for id, a := range f.answers {
		out[id] = a
	}
	return out
}

// Advance records the trimmed draft for the current question and moves to
// the next one. A blank draft is rejected with ErrEmptyAnswer and nothing
// changes. On the final question the completed answer map is returned
// exactly once; any further Advance returns ErrCompleted.
func (f *Flow) Advance() (map[int]string, error) {
	if f.done {
		return nil, ErrCompleted
	}

	answer := strings.TrimSpace(f.draft)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	q := f.order[f.index]
	f.answers[q.ID] = answer
	logging.JourneyDebug("recorded answer for question %d (%d/%d)", q.ID, len(f.answers), len(f.order))

	if f.index == len(f.order)-1 {
		f.done = true
		f.draft = ""
		return f.Answers(), nil
	}

	f.index++
	f.draft = f.answers[f.order[f.index].ID] // repopulate if already answered
	return nil, nil
}

// Back moves to the previous question and repopulates its stored answer as
// the draft. A no-op on the first question or after completion.
func (f *Flow) Back() {
	if f.done || f.index == 0 {
		return
	}
	f.index--
	f.draft = f.answers[f.order[f.index].ID]
}

// Reopen puts a completed flow back on its final question so the answers
// can be revised and resubmitted, e.g. after a failed analysis. The
// presentation order and recorded answers are untouched.
func (f *Flow) Reopen() {
	if !f.done {
		return
	}
	f.done = false
	f.index = len(f.order) - 1
	f.draft = f.answers[f.order[f.index].ID]
}

// Resume seeds previously stored answers (e.g. after an analysis failure)
// and repopulates the draft for the current question.
func (f *Flow) Resume(answers map[int]string) {
	for id, a := range answers {
		if _, ok := f.bank.ByID(id); ok {
			f.answers[id] = a
		}
	}
	f.draft = f.answers[f.order[f.index].ID]
}
