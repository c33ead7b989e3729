// Package questions holds the PhiloMind question bank: the embedded default
// questions, optional YAML overrides, and the per-journey shuffle.
package questions

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is a single reflective prompt. Options are quick-pick seeds for
// the free-text answer, not an exhaustive choice set.
type Question struct {
	ID          int      `yaml:"id" json:"id"`
	Text        string   `yaml:"text" json:"text"`
	Placeholder string   `yaml:"placeholder" json:"placeholder"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// Bank is an ordered set of questions with unique ids.
type Bank []Question

// Validate checks bank invariants: non-empty, positive unique ids, non-blank text.
func (b Bank) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("question bank is empty")
	}
	seen := make(map[int]bool, len(b))
	for i, q := range b {
		if q.ID <= 0 {
			return fmt.Errorf("question %d: id must be positive, got %d", i, q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if q.Text == "" {
			return fmt.Errorf("question %d: text is empty", q.ID)
		}
	}
	return nil
}

// ByID returns the question with the given id.
func (b Bank) ByID(id int) (Question, bool) {
	for _, q := range b {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Shuffle returns a random permutation of the bank. The receiver is not
// modified; callers fix the permutation once per journey.
func (b Bank) Shuffle(r *rand.Rand) Bank {
	shuffled := make(Bank, len(b))
	copy(shuffled, b)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// LoadBank returns the question bank, preferring a YAML override file when
// it exists. An unreadable or invalid override is an error rather than a
// silent fallback, so a typo never quietly swaps the questions.
func LoadBank(overridePath string) (Bank, error) {
	data, err := os.ReadFile(overridePath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultBank(), nil
		}
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var file struct {
		Questions Bank `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := file.Questions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid question bank %s: %w", overridePath, err)
	}
	return file.Questions, nil
}
