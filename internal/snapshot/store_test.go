package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"philomind/internal/analysis"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "philomind.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)
	if _, ok := store.Load(); ok {
		t.Error("Expected no snapshot in a fresh store")
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	store := newTestStore(t)

	snap := Snapshot{
		State: "RESULTS",
		Result: &analysis.Result{
			MaturityScore:        64,
			PhilosophicalPersona: "The Quiet Empiricist",
			GeneralAnalysis:      "You trust what you can verify.",
			Insights: []analysis.Insight{
				{QuestionID: 2, UserAnswerSummary: "Keeps regrets", PhilosophicalPerspective: "Amor fati", RelevantQuote: "Love your fate", Philosopher: "Nietzsche"},
			},
			HasAward:   true,
			AwardTitle: "Seal of Honest Doubt",
		},
		Answers: map[int]string{1: "forgive", 2: "no regrets"},
	}

	if err := store.Save(snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Expected snapshot after Save")
	}
	if diff := cmp.Diff(snap, loaded); diff != "" {
		t.Errorf("Snapshot roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Snapshot{State: "QUESTIONNAIRE"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(Snapshot{State: "INTRO"}); err != nil {
		t.Fatal(err)
	}

	loaded, ok := store.Load()
	if !ok || loaded.State != "INTRO" {
		t.Errorf("Expected latest snapshot, got %+v ok=%v", loaded, ok)
	}
}

func TestStore_CorruptPayloadDiscardedSilently(t *testing.T) {
	store := newTestStore(t)

	_, err := store.db.Exec(
		"INSERT INTO journey_snapshot (key, payload) VALUES (?, ?)",
		snapshotKey, "{not json at all")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Load(); ok {
		t.Fatal("Expected corrupt snapshot to read as absent")
	}

	// The corrupt row is gone; a save afterwards works normally.
	if err := store.Save(Snapshot{State: "INTRO"}); err != nil {
		t.Fatalf("Save after corrupt load failed: %v", err)
	}
	if loaded, ok := store.Load(); !ok || loaded.State != "INTRO" {
		t.Errorf("Expected clean snapshot after recovery, got %+v ok=%v", loaded, ok)
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(Snapshot{State: "RESULTS"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := store.Load(); ok {
		t.Error("Expected no snapshot after Clear")
	}
}
