package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"philomind/internal/analysis"
	"philomind/internal/config"
	"philomind/internal/journey"
	"philomind/internal/logging"
	"philomind/internal/questionnaire"
	"philomind/internal/questions"
	"philomind/internal/sharecard"
)

// ViewMode selects which page is rendered.
type ViewMode int

const (
	ViewIntro ViewMode = iota
	ViewQuestion
	ViewAnalyzing
	ViewResults
)

// =============================================================================
// MESSAGES
// =============================================================================

// transitionMsg fires after the intro transition delay.
type transitionMsg struct{}

// analysisDoneMsg carries a successful analysis.
type analysisDoneMsg struct {
	result *analysis.Result
}

// analysisFailedMsg carries the user-facing failure message.
type analysisFailedMsg struct {
	message string
}

// shareDoneMsg reports the outcome of a share dispatch.
type shareDoneMsg struct {
	target   sharecard.Target
	delivery sharecard.Delivery
	err      error
}

// copyRevertMsg clears the transient clipboard confirmation; seq guards
// against a stale revert from an earlier copy.
type copyRevertMsg struct {
	seq int
}

// resizeSettledMsg fires after resize events stop arriving; seq guards
// against stale ticks from earlier resizes.
type resizeSettledMsg struct {
	seq int
}

// resizeSettleDelay batches rapid terminal resizes before the markdown
// viewport is re-rendered.
const resizeSettleDelay = 300 * time.Millisecond

// Model is the single bubbletea model for the whole journey.
type Model struct {
	cfg      *config.Config
	machine  *journey.Machine
	client   analysis.Client
	pipeline *sharecard.Pipeline
	bank     questions.Bank
	flow     *questionnaire.Flow

	mode   ViewMode
	theme  Theme
	styles Styles
	width  int
	height int

	textarea     textarea.Model
	spinner      spinner.Model
	progress     progress.Model
	viewport     viewport.Model
	optionCursor int

	resizeSeq     int
	copySeq       int
	transitioning bool
	sharing       bool
	errMsg        string
	shareNotice   string
	copied        bool
	resultsMD     string
	quitting      bool
}

// NewModel builds the TUI over an already-restored journey machine. A
// machine restored mid-questionnaire gets its answers reseeded into a
// fresh flow.
func NewModel(cfg *config.Config, machine *journey.Machine, client analysis.Client, pipeline *sharecard.Pipeline, bank questions.Bank) Model {
	theme := ResolveTheme(cfg.UI.Theme)
	styles := NewStyles(theme)

	ta := textarea.New()
	ta.Placeholder = "Share your thoughts..."
	ta.SetHeight(5)
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Score

	pr := progress.New(progress.WithGradient(string(theme.Accent), string(theme.Primary)))

	m := Model{
		cfg:      cfg,
		machine:  machine,
		client:   client,
		pipeline: pipeline,
		bank:     bank,
		theme:    theme,
		styles:   styles,
		textarea: ta,
		spinner:  sp,
		progress: pr,
		viewport: viewport.New(80, 20),
	}

	switch machine.State() {
	case journey.StateQuestionnaire:
		m.mode = ViewQuestion
		m.flow = m.newFlow()
		m.flow.Resume(machine.Answers())
		m.textarea.SetValue(m.flow.Draft())
		m.textarea.Placeholder = m.flow.Current().Placeholder
		m.errMsg = machine.LastError()
	case journey.StateResults:
		m.mode = ViewResults
		m.resultsMD = resultsMarkdown(machine.Result(), bank)
	default:
		m.mode = ViewIntro
	}
	return m
}

func (m Model) newFlow() *questionnaire.Flow {
	return questionnaire.New(m.bank, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Init starts the spinner ticking.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(min(msg.Width-4, 100))
		m.progress.Width = min(msg.Width-8, 60)
		m.viewport.Width = min(msg.Width-4, 100)
		m.viewport.Height = max(msg.Height-14, 5)
		// Re-rendering the markdown is expensive; wait for the resize
		// storm to settle first.
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(resizeSettleDelay, func(time.Time) tea.Msg {
			return resizeSettledMsg{seq: seq}
		})

	case resizeSettledMsg:
		if msg.seq != m.resizeSeq {
			return m, nil // superseded by a newer resize
		}
		if m.mode == ViewResults {
			m.refreshResultsViewport()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case transitionMsg:
		return m.beginQuestionnaire()

	case analysisDoneMsg:
		if err := m.machine.CompleteAnalysis(msg.result); err != nil {
			logging.UIDebug("stale analysis result dropped: %v", err)
			return m, nil
		}
		m.mode = ViewResults
		m.errMsg = ""
		m.resultsMD = resultsMarkdown(msg.result, m.bank)
		m.refreshResultsViewport()
		return m, nil

	case analysisFailedMsg:
		if err := m.machine.FailAnalysis(msg.message); err != nil {
			logging.UIDebug("stale analysis failure dropped: %v", err)
			return m, nil
		}
		m.flow.Reopen()
		m.mode = ViewQuestion
		m.errMsg = msg.message
		m.textarea.SetValue(m.flow.Draft())
		m.textarea.Placeholder = m.flow.Current().Placeholder
		return m, nil

	case shareDoneMsg:
		m.sharing = false
		return m.handleShareDone(msg)

	case copyRevertMsg:
		if msg.seq != m.copySeq {
			return m, nil // superseded by a newer copy
		}
		m.copied = false
		m.shareNotice = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// updateFocused routes non-key messages to the focused component.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case ViewQuestion:
		m.textarea, cmd = m.textarea.Update(msg)
	case ViewResults:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ViewIntro:
		return m.handleIntroKey(msg)
	case ViewQuestion:
		return m.handleQuestionKey(msg)
	case ViewAnalyzing:
		return m, nil // nothing interactive while the oracle thinks
	case ViewResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m Model) handleIntroKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "enter", " ":
		// Re-entrant start is ignored while the transition is pending.
		if m.transitioning {
			return m, nil
		}
		m.transitioning = true
		return m, tea.Tick(m.cfg.UI.TransitionDelay(), func(time.Time) tea.Msg {
			return transitionMsg{}
		})
	}
	return m, nil
}

func (m Model) beginQuestionnaire() (tea.Model, tea.Cmd) {
	m.transitioning = false
	if err := m.machine.Start(); err != nil {
		logging.UIDebug("start rejected: %v", err)
		return m, nil
	}
	m.flow = m.newFlow()
	m.mode = ViewQuestion
	m.errMsg = ""
	m.optionCursor = 0
	m.textarea.Reset()
	m.textarea.Placeholder = m.flow.Current().Placeholder
	return m, textarea.Blink
}

func (m Model) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		// Cycle a quick-pick option into the draft.
		opts := m.flow.Current().Options
		if len(opts) == 0 {
			return m, nil
		}
		m.textarea.SetValue(opts[m.optionCursor])
		m.optionCursor = (m.optionCursor + 1) % len(opts)
		return m, nil

	case "ctrl+b":
		m.flow.SetDraft(m.textarea.Value())
		m.flow.Back()
		m.textarea.SetValue(m.flow.Draft())
		m.textarea.Placeholder = m.flow.Current().Placeholder
		m.optionCursor = 0
		m.errMsg = ""
		return m, nil

	case "enter":
		return m.submitAnswer()
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) submitAnswer() (tea.Model, tea.Cmd) {
	m.flow.SetDraft(m.textarea.Value())
	answers, err := m.flow.Advance()
	if err != nil {
		if errors.Is(err, questionnaire.ErrEmptyAnswer) {
			m.errMsg = "Please share your thoughts before continuing."
		}
		return m, nil
	}
	m.errMsg = ""
	m.optionCursor = 0

	if answers == nil {
		// Next question.
		m.textarea.SetValue(m.flow.Draft())
		m.textarea.Placeholder = m.flow.Current().Placeholder
		return m, nil
	}

	if err := m.machine.BeginAnalysis(answers); err != nil {
		logging.UIDebug("begin analysis rejected: %v", err)
		return m, nil
	}
	m.mode = ViewAnalyzing
	return m, tea.Batch(m.spinner.Tick, m.analyzeCmd(answers))
}

// analyzeCmd runs the Gemini call off the update loop and classifies the
// failure into the message the questionnaire banner shows.
func (m Model) analyzeCmd(answers map[int]string) tea.Cmd {
	client, bank := m.client, m.bank
	return func() tea.Msg {
		result, err := client.Analyze(context.Background(), bank, answers)
		if err != nil {
			logging.AnalysisError("analysis failed: %v", err)
			return analysisFailedMsg{message: analysisFailureMessage(err)}
		}
		return analysisDoneMsg{result: result}
	}
}

func analysisFailureMessage(err error) string {
	switch {
	case errors.Is(err, analysis.ErrMissingCredentials):
		return "No Gemini API key configured. Set GEMINI_API_KEY and submit again."
	case errors.Is(err, analysis.ErrMalformedResponse):
		return "The oracle spoke in riddles. Your answers are safe; try again."
	default:
		return "The oracle could not be reached. Your answers are safe; try again."
	}
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "r":
		m.machine.Restart()
		m.pipeline.Invalidate()
		m.mode = ViewIntro
		m.flow = nil
		m.errMsg = ""
		m.shareNotice = ""
		m.copied = false
		m.resultsMD = ""
		return m, nil

	case "s":
		return m.shareCmdFor(sharecard.TargetNative)
	case "d":
		return m.shareCmdFor(sharecard.TargetDownload)
	case "t":
		return m.shareCmdFor(sharecard.TargetTwitter)
	case "w":
		return m.shareCmdFor(sharecard.TargetWhatsApp)
	case "i":
		return m.shareCmdFor(sharecard.TargetInstagram)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) shareCmdFor(target sharecard.Target) (tea.Model, tea.Cmd) {
	// The pipeline also guards per-target, but skipping the dispatch keeps
	// the UI label honest.
	if m.sharing || m.pipeline.GeneratingFor(target) {
		return m, nil
	}
	m.sharing = true
	m.shareNotice = ""
	result := m.machine.Result()
	pipeline := m.pipeline
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		delivery, err := pipeline.Share(context.Background(), result, target)
		return shareDoneMsg{target: target, delivery: delivery, err: err}
	})
}

func (m Model) handleShareDone(msg shareDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		logging.ShareWarn("share %s failed: %v", msg.target, msg.err)
		m.shareNotice = "Sharing failed. Try again."
		return m, nil
	}
	d := msg.delivery
	switch {
	case d.Cancelled:
		// User changed their mind; nothing to say.
		return m, nil
	case d.Copied:
		m.copied = true
		m.copySeq++
		seq := m.copySeq
		m.shareNotice = "Caption copied! Paste it into your post."
		return m, tea.Tick(m.cfg.UI.CopyNotice(), func(time.Time) tea.Msg {
			return copyRevertMsg{seq: seq}
		})
	case d.Tier == sharecard.TierDownload && d.Path != "":
		m.shareNotice = "Saved to " + d.Path
	case d.Tier == sharecard.TierDeepLink && d.Path != "":
		m.shareNotice = "Card saved to " + d.Path + ". Browser opened to share."
	case d.Tier == sharecard.TierDeepLink:
		m.shareNotice = "Opened your browser to share."
	default:
		m.shareNotice = "Shared."
	}
	return m, nil
}

func (m *Model) refreshResultsViewport() {
	rendered, err := renderMarkdown(m.resultsMD, m.theme, m.viewport.Width)
	if err != nil {
		rendered = m.resultsMD
	}
	m.viewport.SetContent(rendered)
	m.viewport.GotoTop()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool { return m.quitting }

// Run starts the bubbletea program.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}
