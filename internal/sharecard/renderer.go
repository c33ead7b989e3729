// Package sharecard renders the results share card and delivers it through
// a tiered pipeline: native file share, native text share, direct download,
// then platform deep links.
package sharecard

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"philomind/internal/analysis"
)

// DownloadFileName is the canonical file name for saved share cards.
const DownloadFileName = "philosophical-maturity.png"

// cardTemplate is a self-contained page: inline styles only, sized to the
// exact card dimensions so a viewport screenshot is the card.
const cardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    width: {{.Width}}px;
    height: {{.Height}}px;
    background: {{.Background}};
    color: #f1f5f9;
    font-family: Georgia, 'Times New Roman', serif;
    display: flex;
    flex-direction: column;
    justify-content: center;
    padding: 64px 80px;
    overflow: hidden;
  }
  .brand { font-size: 28px; letter-spacing: 4px; color: #94a3b8; text-transform: uppercase; }
  .score { font-size: 120px; font-weight: bold; color: #fbbf24; margin: 18px 0 6px; }
  .score small { font-size: 42px; color: #cbd5e1; }
  .persona { font-size: 52px; font-style: italic; margin-bottom: 22px; }
  .analysis { font-size: 26px; line-height: 1.5; color: #cbd5e1; max-width: 900px; }
  .award {
    display: inline-block;
    margin-top: 26px;
    padding: 10px 26px;
    border: 2px solid #fbbf24;
    border-radius: 999px;
    font-size: 24px;
    color: #fbbf24;
    align-self: flex-start;
  }
  .footer { position: absolute; bottom: 40px; right: 80px; font-size: 22px; color: #64748b; }
</style>
</head>
<body>
  <div class="brand">PhiloMind</div>
  <div class="score">{{.Score}}<small>/100</small></div>
  <div class="persona">{{.Persona}}</div>
  <div class="analysis">{{.Analysis}}</div>
  {{if .AwardTitle}}<div class="award">&#127942; {{.AwardTitle}}</div>{{end}}
  <div class="footer">philomind.app</div>
</body>
</html>`

// Renderer writes share card pages to a temp directory.
type Renderer struct {
	width      int
	height     int
	background string
	tmpl       *template.Template
}

// NewRenderer creates a renderer for the given card dimensions.
func NewRenderer(width, height int, background string) *Renderer {
	if background == "" {
		background = "#1e293b"
	}
	return &Renderer{
		width:      width,
		height:     height,
		background: background,
		tmpl:       template.Must(template.New("card").Parse(cardTemplate)),
	}
}

// Render writes the card page for a result and returns its file:// URL.
// The caller owns cleanup of the returned path.
func (r *Renderer) Render(result *analysis.Result) (pageURL string, path string, err error) {
	award, _ := result.Award()
	data := struct {
		Width      int
		Height     int
		Background string
		Score      int
		Persona    string
		Analysis   string
		AwardTitle string
	}{
		Width:      r.width,
		Height:     r.height,
		Background: r.background,
		Score:      result.ClampedScore(),
		Persona:    result.PhilosophicalPersona,
		Analysis:   result.GeneralAnalysis,
		AwardTitle: award,
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("failed to render card template: %w", err)
	}

	f, err := os.CreateTemp("", "philomind-card-*.html")
	if err != nil {
		return "", "", fmt.Errorf("failed to create card file: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", "", fmt.Errorf("failed to write card file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", "", fmt.Errorf("failed to close card file: %w", err)
	}

	abs, err := filepath.Abs(f.Name())
	if err != nil {
		abs = f.Name()
	}
	return "file://" + filepath.ToSlash(abs), f.Name(), nil
}
