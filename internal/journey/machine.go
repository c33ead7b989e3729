// Package journey owns the app's view-state machine: Intro, Questionnaire,
// Analyzing, Results. All transitions are guarded, and every transition is
// persisted so the journey survives a restart.
package journey

import (
	"errors"
	"fmt"
	"sync"

	"philomind/internal/analysis"
	"philomind/internal/logging"
	"philomind/internal/snapshot"
)

// State is a journey phase.
type State string

const (
	StateIntro         State = "INTRO"
	StateQuestionnaire State = "QUESTIONNAIRE"
	StateAnalyzing     State = "ANALYZING"
	StateResults       State = "RESULTS"
)

// ErrInvalidTransition is returned when an operation is called from a state
// it is not legal in.
var ErrInvalidTransition = errors.New("invalid journey transition")

// SnapshotStore is the persistence boundary the machine writes through.
type SnapshotStore interface {
	Load() (snapshot.Snapshot, bool)
	Save(snapshot.Snapshot) error
	Clear() error
}

// Machine is the single owner of journey state. Persistence failures are
// logged, never surfaced; losing a snapshot must not break the session.
type Machine struct {
	mu        sync.Mutex
	state     State
	answers   map[int]string
	result    *analysis.Result
	lastError string
	store     SnapshotStore
}

// NewMachine restores the journey from the store. An absent or corrupt
// snapshot means a fresh Intro; a snapshot taken mid-analysis reloads as
// Intro because the in-flight request did not survive the process.
func NewMachine(store SnapshotStore) *Machine {
	m := &Machine{
		state:   StateIntro,
		answers: make(map[int]string),
		store:   store,
	}
	if store == nil {
		return m
	}

	snap, ok := store.Load()
	if !ok {
		logging.Journey("no snapshot, starting fresh at %s", m.state)
		return m
	}

	switch State(snap.State) {
	case StateIntro, StateQuestionnaire:
		m.state = State(snap.State)
	case StateResults:
		if snap.Result == nil {
			// Results without a result is not a renderable state.
			m.state = StateIntro
		} else {
			m.state = StateResults
		}
	case StateAnalyzing:
		m.state = StateIntro
	default:
		logging.Journey("unknown persisted state %q, starting fresh", snap.State)
		return m
	}
	if snap.Answers != nil {
		m.answers = snap.Answers
	}
	m.result = snap.Result
	logging.Journey("restored journey at %s (answers=%d, result=%v)",
		m.state, len(m.answers), m.result != nil)
	return m
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Result returns the analysis result, non-nil only in Results.
func (m *Machine) Result() *analysis.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Answers returns a copy of the retained answer set.
func (m *Machine) Answers() map[int]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]string, len(m.answers))
	for id, a := range m.answers {
		out[id] = a
	}
	return out
}

// LastError returns the user-facing message from the most recent failed
// analysis, empty otherwise.
func (m *Machine) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// Start begins the questionnaire. Legal only from Intro.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIntro {
		return fmt.Errorf("%w: Start from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateQuestionnaire
	m.lastError = ""
	m.persistLocked()
	logging.Journey("Intro -> Questionnaire")
	return nil
}

// BeginAnalysis enters Analyzing with the completed answer set. Legal only
// from Questionnaire, so a second submission while a request is in flight
// is rejected.
func (m *Machine) BeginAnalysis(answers map[int]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateQuestionnaire {
		return fmt.Errorf("%w: BeginAnalysis from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateAnalyzing
	m.answers = answers
	m.lastError = ""
	m.persistLocked()
	logging.Journey("Questionnaire -> Analyzing (%d answers)", len(answers))
	return nil
}

// CompleteAnalysis lands the result and enters Results.
func (m *Machine) CompleteAnalysis(result *analysis.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAnalyzing {
		return fmt.Errorf("%w: CompleteAnalysis from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateResults
	m.result = result
	m.persistLocked()
	logging.Journey("Analyzing -> Results")
	return nil
}

// FailAnalysis returns to the questionnaire with the answers intact and a
// user-facing message, so a transient failure costs a retry, not the
// session.
func (m *Machine) FailAnalysis(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAnalyzing {
		return fmt.Errorf("%w: FailAnalysis from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateQuestionnaire
	m.lastError = message
	m.persistLocked()
	logging.Journey("Analyzing -> Questionnaire (failed: %s)", message)
	return nil
}

// Restart clears the result, answers and the persisted snapshot, returning
// to Intro. Legal from any state.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIntro
	m.result = nil
	m.answers = make(map[int]string)
	m.lastError = ""
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			logging.Get(logging.CategoryJourney).Warn("snapshot clear failed: %v", err)
		}
	}
	logging.Journey("Restart -> Intro")
}

// persistLocked writes the snapshot for the current state. Analyzing is
// written as Intro: a pending request is meaningless after a restart.
func (m *Machine) persistLocked() {
	if m.store == nil {
		return
	}
	persisted := m.state
	if persisted == StateAnalyzing {
		persisted = StateIntro
	}
	snap := snapshot.Snapshot{
		State:   string(persisted),
		Result:  m.result,
		Answers: m.answers,
	}
	if err := m.store.Save(snap); err != nil {
		logging.Get(logging.CategoryJourney).Warn("snapshot save failed: %v", err)
	}
}
