package sharecard

import (
	"context"
	"fmt"
	"os"
	"sync"

	"philomind/internal/analysis"
	"philomind/internal/logging"
)

// Target is a logical share destination the UI can trigger.
type Target string

const (
	TargetNative    Target = "native"
	TargetDownload  Target = "download"
	TargetTwitter   Target = "twitter"
	TargetWhatsApp  Target = "whatsapp"
	TargetInstagram Target = "instagram"
)

// Stage is the pipeline's generation state.
type Stage int

const (
	StageIdle Stage = iota
	StageGenerating
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageGenerating:
		return "generating"
	case StageReady:
		return "ready"
	default:
		return "unknown"
	}
}

// CaptureEngine produces a PNG artifact from a rendered card page.
type CaptureEngine interface {
	Capture(ctx context.Context, pageURL string) (*Artifact, error)
}

// Pipeline owns share card generation and delivery. The artifact lives in
// memory only and is invalidated on restart. Triggering a target that is
// already generating is a no-op, including programmatic re-invocation.
type Pipeline struct {
	renderer *Renderer
	capturer CaptureEngine
	platform Platform
	appURL   string

	mu         sync.Mutex
	stage      Stage
	artifact   *Artifact
	generating map[Target]bool
}

// NewPipeline wires the renderer, capture engine and platform together.
func NewPipeline(renderer *Renderer, capturer CaptureEngine, platform Platform, appURL string) *Pipeline {
	return &Pipeline{
		renderer:   renderer,
		capturer:   capturer,
		platform:   platform,
		appURL:     appURL,
		generating: make(map[Target]bool),
	}
}

// Stage returns the current generation stage.
func (p *Pipeline) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// GeneratingFor reports whether a generation is in flight for the target.
func (p *Pipeline) GeneratingFor(target Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generating[target]
}

// Invalidate drops the cached artifact, e.g. when the journey restarts.
func (p *Pipeline) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifact = nil
	p.stage = StageIdle
}

// Generate renders and captures the share card for a target. Returns
// (nil, nil) when that target is already generating. A cached artifact is
// reused; a failed capture returns the pipeline to idle with no artifact.
func (p *Pipeline) Generate(ctx context.Context, result *analysis.Result, target Target) (*Artifact, error) {
	p.mu.Lock()
	if p.generating[target] {
		p.mu.Unlock()
		logging.ShareDebug("generation for %s already in flight, ignoring", target)
		return nil, nil
	}
	if p.artifact != nil {
		a := p.artifact
		p.mu.Unlock()
		return a, nil
	}
	p.generating[target] = true
	p.stage = StageGenerating
	p.mu.Unlock()

	artifact, err := p.capture(ctx, result)

	p.mu.Lock()
	delete(p.generating, target)
	if err != nil {
		p.stage = StageIdle
		p.mu.Unlock()
		return nil, err
	}
	p.artifact = artifact
	p.stage = StageReady
	p.mu.Unlock()

	logging.Share("artifact %s ready (%d bytes, %dx%d)", artifact.ID, len(artifact.PNG), artifact.Width, artifact.Height)
	return artifact, nil
}

func (p *Pipeline) capture(ctx context.Context, result *analysis.Result) (*Artifact, error) {
	pageURL, path, err := p.renderer.Render(result)
	if err != nil {
		return nil, fmt.Errorf("render card: %w", err)
	}
	defer os.Remove(path)

	return p.capturer.Capture(ctx, pageURL)
}

// Share is the full operation for a target: ensure an artifact where the
// tier needs one, then dispatch. Intent-URL targets also save the card so
// the user has the image to attach; the clipboard target is text-driven.
func (p *Pipeline) Share(ctx context.Context, result *analysis.Result, target Target) (Delivery, error) {
	text := ShareText(result, p.appURL)

	switch target {
	case TargetTwitter:
		return p.shareIntent(ctx, result, target, TwitterIntentURL(text))

	case TargetWhatsApp:
		return p.shareIntent(ctx, result, target, WhatsAppURL(text))

	case TargetInstagram:
		// No text intent; the caption rides the clipboard.
		if err := p.platform.CopyToClipboard(text); err != nil {
			return Delivery{}, fmt.Errorf("copy caption: %w", err)
		}
		if err := p.platform.OpenURL(instagramURL); err != nil {
			return Delivery{}, fmt.Errorf("open instagram: %w", err)
		}
		return Delivery{Tier: TierDeepLink, Copied: true}, nil
	}

	artifact, err := p.Generate(ctx, result, target)
	if err != nil {
		return Delivery{}, err
	}
	if artifact == nil {
		// Duplicate trigger while generating; nothing to do.
		return Delivery{}, nil
	}

	switch target {
	case TargetDownload:
		path, err := p.platform.Download(artifact, DownloadFileName)
		if err != nil {
			return Delivery{}, fmt.Errorf("download: %w", err)
		}
		return Delivery{Tier: TierDownload, Path: path}, nil
	default:
		return deliverNative(p.platform, artifact, text)
	}
}

// shareIntent serves intent-URL targets: the card is saved locally so the
// user has the image to attach, then the prefilled intent opens. A failed
// capture or save degrades to opening the intent text-only.
func (p *Pipeline) shareIntent(ctx context.Context, result *analysis.Result, target Target, intentURL string) (Delivery, error) {
	d := Delivery{Tier: TierDeepLink}

	artifact, err := p.Generate(ctx, result, target)
	switch {
	case err != nil:
		logging.ShareWarn("card capture failed for %s, opening intent text-only: %v", target, err)
	case artifact == nil:
		// Duplicate trigger while generating; nothing to do.
		return Delivery{}, nil
	default:
		path, err := p.platform.Download(artifact, DownloadFileName)
		if err != nil {
			logging.ShareWarn("card save failed for %s: %v", target, err)
		} else {
			d.Path = path
		}
	}

	if err := p.platform.OpenURL(intentURL); err != nil {
		return Delivery{}, fmt.Errorf("open %s intent: %w", target, err)
	}
	return d, nil
}
