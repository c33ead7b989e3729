package questions

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDefaultBank_Valid(t *testing.T) {
	bank := DefaultBank()
	if err := bank.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
	if len(bank) != 7 {
		t.Errorf("Expected 7 questions, got %d", len(bank))
	}
	for _, q := range bank {
		if len(q.Options) == 0 {
			t.Errorf("question %d has no quick-pick options", q.ID)
		}
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name string
		bank Bank
	}{
		{"empty", Bank{}},
		{"zero id", Bank{{ID: 0, Text: "x"}}},
		{"duplicate id", Bank{{ID: 1, Text: "a"}, {ID: 1, Text: "b"}}},
		{"blank text", Bank{{ID: 1, Text: ""}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.bank.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	bank := DefaultBank()
	shuffled := bank.Shuffle(rand.New(rand.NewSource(42)))

	if len(shuffled) != len(bank) {
		t.Fatalf("Expected %d questions after shuffle, got %d", len(bank), len(shuffled))
	}

	ids := make([]int, len(shuffled))
	for i, q := range shuffled {
		ids[i] = q.ID
	}
	sort.Ints(ids)
	for i, id := range ids {
		if id != i+1 {
			t.Fatalf("shuffle is not a permutation: sorted ids %v", ids)
		}
	}

	// The receiver must stay in canonical order.
	for i, q := range bank {
		if q.ID != i+1 {
			t.Errorf("Shuffle mutated the receiver at index %d", i)
		}
	}
}

func TestByID(t *testing.T) {
	bank := DefaultBank()
	q, ok := bank.ByID(3)
	if !ok || q.ID != 3 {
		t.Errorf("Expected to find question 3, got %+v ok=%v", q, ok)
	}
	if _, ok := bank.ByID(99); ok {
		t.Error("Expected lookup miss for id 99")
	}
}

func TestLoadBank_NoOverrideUsesDefault(t *testing.T) {
	bank, err := LoadBank(filepath.Join(t.TempDir(), "questions.yaml"))
	if err != nil {
		t.Fatalf("LoadBank failed: %v", err)
	}
	if len(bank) != 7 {
		t.Errorf("Expected default bank, got %d questions", len(bank))
	}
}

func TestLoadBank_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	raw := []byte("questions:\n  - id: 1\n    text: \"What is virtue?\"\n    placeholder: \"...\"\n")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	bank, err := LoadBank(path)
	if err != nil {
		t.Fatalf("LoadBank failed: %v", err)
	}
	if len(bank) != 1 || bank[0].Text != "What is virtue?" {
		t.Errorf("Override not applied: %+v", bank)
	}
}

func TestLoadBank_InvalidOverrideErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	raw := []byte("questions:\n  - id: 1\n    text: \"a\"\n  - id: 1\n    text: \"b\"\n")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBank(path); err == nil {
		t.Error("Expected error for duplicate ids in override")
	}
}
