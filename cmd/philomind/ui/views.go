package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"philomind/internal/analysis"
	"philomind/internal/questions"
	"philomind/internal/sharecard"
)

// View renders the page for the current mode.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case ViewIntro:
		return m.viewIntro()
	case ViewQuestion:
		return m.viewQuestion()
	case ViewAnalyzing:
		return m.viewAnalyzing()
	case ViewResults:
		return m.viewResults()
	}
	return ""
}

func (m Model) viewIntro() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("PhiloMind"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("A mirror for the examined life."))
	b.WriteString("\n\n")
	b.WriteString("Seven questions. No right answers.\n")
	b.WriteString("Answer honestly and receive a reading of your philosophical maturity.\n\n")

	if m.transitioning {
		b.WriteString(m.styles.Muted.Render("Preparing your questions..."))
	} else {
		b.WriteString(m.styles.Help.Render("press enter to begin · q to quit"))
	}
	return m.frame(b.String())
}

func (m Model) viewQuestion() string {
	q := m.flow.Current()

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("PhiloMind"))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.flow.Progress()))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %d of %d", m.flow.Index()+1, m.flow.Total())))
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(m.styles.ErrorBanner.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Question.Render(q.Text))
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n")

	if len(q.Options) > 0 {
		b.WriteString(m.styles.Muted.Render("Need a starting point? (tab cycles)"))
		b.WriteString("\n")
		for i, opt := range q.Options {
			style := m.styles.Option
			if i == m.optionCursor {
				style = m.styles.OptionFocus
			}
			b.WriteString(style.Render("• " + opt))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.styles.Help.Render("enter submit · ctrl+j newline · tab quick-pick · ctrl+b back · esc quit"))
	return m.frame(b.String())
}

func (m Model) viewAnalyzing() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("PhiloMind"))
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View())
	b.WriteString(" Consulting the great minds...\n")
	b.WriteString(m.styles.Muted.Render("Your answers are being weighed against two millennia of thought."))
	return m.frame(b.String())
}

func (m Model) viewResults() string {
	result := m.machine.Result()
	if result == nil {
		return m.frame(m.styles.ErrorBanner.Render("No results to show."))
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Your Philosophical Reading"))
	b.WriteString("\n")

	score := m.styles.Score.Render(fmt.Sprintf("%d", result.ClampedScore()))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom,
		score,
		m.styles.Muted.Render("/100  "),
		m.styles.Persona.Render(result.PhilosophicalPersona)))
	b.WriteString("\n")

	if title, ok := result.Award(); ok {
		b.WriteString(m.styles.Award.Render("🏆 " + title))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.shareNotice != "" {
		style := m.styles.Notice
		if strings.HasPrefix(m.shareNotice, "Sharing failed") {
			style = m.styles.ErrorBanner
		}
		b.WriteString(style.Render(m.shareNotice))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.shareHelp()))
	return m.frame(b.String())
}

func (m Model) shareHelp() string {
	if m.sharing || m.pipeline.Stage() == sharecard.StageGenerating {
		return m.spinner.View() + " generating share card..."
	}
	return "s share · d download card · t post to X · w whatsapp · i instagram · r start over · q quit"
}

// frame pads the page and clamps it to the terminal.
func (m Model) frame(content string) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// resultsMarkdown builds the scrollable insight document. Insights are
// re-mapped to the canonical questions so the reading follows bank order,
// not presentation order.
func resultsMarkdown(result *analysis.Result, bank questions.Bank) string {
	if result == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("## The Reading\n\n")
	b.WriteString(result.GeneralAnalysis)
	b.WriteString("\n")

	for _, ins := range result.Insights {
		q, ok := bank.ByID(ins.QuestionID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", q.Text)
		if ins.UserAnswerSummary != "" {
			fmt.Fprintf(&b, "*You said:* %s\n\n", ins.UserAnswerSummary)
		}
		b.WriteString(ins.PhilosophicalPerspective)
		b.WriteString("\n")
		if ins.RelevantQuote != "" {
			fmt.Fprintf(&b, "\n> “%s”\n>\n> — %s\n", ins.RelevantQuote, ins.Philosopher)
		}
	}
	return b.String()
}

// renderMarkdown renders the insight document with glamour.
func renderMarkdown(md string, theme Theme, width int) (string, error) {
	styleName := "light"
	if theme.IsDark {
		styleName = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styleName),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
