package sharecard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"philomind/internal/analysis"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Started once at package init by the opencensus library (a
		// transitive dependency); it never exits and is not ours to stop.
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

// fakeCapturer is a controllable CaptureEngine.
type fakeCapturer struct {
	mu       sync.Mutex
	calls    int
	err      error
	block    chan struct{} // when set, Capture blocks until closed
	artifact *Artifact
}

func (f *fakeCapturer) Capture(ctx context.Context, pageURL string) (*Artifact, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.artifact != nil {
		return f.artifact, nil
	}
	return &Artifact{ID: "fake", PNG: []byte("png"), Width: 1200, Height: 630}, nil
}

func (f *fakeCapturer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePlatform records deliveries and simulates capability combinations.
type fakePlatform struct {
	canFiles bool
	canText  bool

	fileErr error
	textErr error

	shared    []string // record of delivery methods invoked
	clipboard string
	opened    []string
	downloads string
}

func (p *fakePlatform) CanShareFiles(a *Artifact) bool { return p.canFiles }
func (p *fakePlatform) CanShareText() bool             { return p.canText }

func (p *fakePlatform) ShareFile(a *Artifact, text string) error {
	p.shared = append(p.shared, "file")
	return p.fileErr
}

func (p *fakePlatform) ShareText(text string) error {
	p.shared = append(p.shared, "text")
	return p.textErr
}

func (p *fakePlatform) Download(a *Artifact, filename string) (string, error) {
	p.shared = append(p.shared, "download")
	path := filepath.Join(p.downloads, filename)
	if err := os.WriteFile(path, a.PNG, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (p *fakePlatform) CopyToClipboard(text string) error {
	p.clipboard = text
	return nil
}

func (p *fakePlatform) OpenURL(url string) error {
	p.opened = append(p.opened, url)
	return nil
}

func pipelineResult() *analysis.Result {
	return &analysis.Result{
		MaturityScore:        88,
		PhilosophicalPersona: "The Resilient Stoic",
		GeneralAnalysis:      "Calm under pressure.",
	}
}

func newTestPipeline(t *testing.T, cap *fakeCapturer, plat *fakePlatform) *Pipeline {
	t.Helper()
	if plat.downloads == "" {
		plat.downloads = t.TempDir()
	}
	renderer := NewRenderer(1200, 630, "#1e293b")
	return NewPipeline(renderer, cap, plat, "https://philomind.app")
}

func TestPipeline_GenerateReady(t *testing.T) {
	cap := &fakeCapturer{}
	p := newTestPipeline(t, cap, &fakePlatform{})

	if p.Stage() != StageIdle {
		t.Fatalf("Expected idle stage, got %s", p.Stage())
	}

	a, err := p.Generate(context.Background(), pipelineResult(), TargetDownload)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if a == nil || len(a.PNG) == 0 {
		t.Fatal("Expected non-empty artifact")
	}
	if p.Stage() != StageReady {
		t.Errorf("Expected ready stage, got %s", p.Stage())
	}
}

func TestPipeline_GenerateFailureReturnsToIdle(t *testing.T) {
	cap := &fakeCapturer{err: ErrCaptureFailed}
	p := newTestPipeline(t, cap, &fakePlatform{})

	if _, err := p.Generate(context.Background(), pipelineResult(), TargetDownload); !errors.Is(err, ErrCaptureFailed) {
		t.Fatalf("Expected ErrCaptureFailed, got %v", err)
	}
	if p.Stage() != StageIdle {
		t.Errorf("Expected idle stage after failure, got %s", p.Stage())
	}

	// Recovery: next generate works.
	cap.err = nil
	if _, err := p.Generate(context.Background(), pipelineResult(), TargetDownload); err != nil {
		t.Fatalf("Generate after failure: %v", err)
	}
	if p.Stage() != StageReady {
		t.Errorf("Expected ready after recovery, got %s", p.Stage())
	}
}

func TestPipeline_DuplicateTriggerIsNoOp(t *testing.T) {
	block := make(chan struct{})
	cap := &fakeCapturer{block: block}
	p := newTestPipeline(t, cap, &fakePlatform{})

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = p.Generate(context.Background(), pipelineResult(), TargetDownload)
		close(done)
	}()
	<-started
	for p.Stage() != StageGenerating {
		runtime.Gosched() // wait for the first generation to take the slot
	}

	a, err := p.Generate(context.Background(), pipelineResult(), TargetDownload)
	if err != nil || a != nil {
		t.Errorf("Expected no-op for duplicate trigger, got a=%v err=%v", a, err)
	}
	if !p.GeneratingFor(TargetDownload) {
		t.Error("Expected target still marked generating")
	}

	close(block)
	<-done
	if cap.callCount() != 1 {
		t.Errorf("Expected a single capture, got %d", cap.callCount())
	}
}

func TestPipeline_ArtifactCachedAndInvalidated(t *testing.T) {
	cap := &fakeCapturer{}
	p := newTestPipeline(t, cap, &fakePlatform{})

	a1, err := p.Generate(context.Background(), pipelineResult(), TargetDownload)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := p.Generate(context.Background(), pipelineResult(), TargetNative)
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Error("Expected cached artifact reuse")
	}
	if cap.callCount() != 1 {
		t.Errorf("Expected a single capture for cached artifact, got %d", cap.callCount())
	}

	p.Invalidate()
	if p.Stage() != StageIdle {
		t.Errorf("Expected idle after invalidate, got %s", p.Stage())
	}
	if _, err := p.Generate(context.Background(), pipelineResult(), TargetDownload); err != nil {
		t.Fatal(err)
	}
	if cap.callCount() != 2 {
		t.Errorf("Expected recapture after invalidate, got %d calls", cap.callCount())
	}
}

func TestPipeline_ShareDownload(t *testing.T) {
	plat := &fakePlatform{downloads: t.TempDir()}
	p := newTestPipeline(t, &fakeCapturer{}, plat)

	d, err := p.Share(context.Background(), pipelineResult(), TargetDownload)
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if d.Tier != TierDownload {
		t.Errorf("Expected download tier, got %s", d.Tier)
	}
	if filepath.Base(d.Path) != DownloadFileName {
		t.Errorf("Expected canonical file name, got %s", d.Path)
	}
	if _, err := os.Stat(d.Path); err != nil {
		t.Errorf("Expected downloaded file on disk: %v", err)
	}
}

func TestPipeline_ShareNativeFallsBackToDownload(t *testing.T) {
	// Desktop-like platform: no native surfaces at all.
	plat := &fakePlatform{downloads: t.TempDir()}
	p := newTestPipeline(t, &fakeCapturer{}, plat)

	d, err := p.Share(context.Background(), pipelineResult(), TargetNative)
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if d.Tier != TierDownload {
		t.Errorf("Expected degradation to download, got %s", d.Tier)
	}
}

func TestPipeline_ShareTwitterOpensIntent(t *testing.T) {
	plat := &fakePlatform{}
	p := newTestPipeline(t, &fakeCapturer{}, plat)

	d, err := p.Share(context.Background(), pipelineResult(), TargetTwitter)
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if d.Tier != TierDeepLink {
		t.Errorf("Expected deep link tier, got %s", d.Tier)
	}
	if len(plat.opened) != 1 || !strings.HasPrefix(plat.opened[0], "https://twitter.com/intent/tweet?text=") {
		t.Errorf("Expected twitter intent, got %v", plat.opened)
	}
	if !strings.Contains(plat.opened[0], "88%2F100") {
		t.Errorf("Expected encoded score in intent, got %s", plat.opened[0])
	}
}

func TestPipeline_ShareIntentSavesCardBeforeOpening(t *testing.T) {
	for _, target := range []Target{TargetTwitter, TargetWhatsApp} {
		t.Run(string(target), func(t *testing.T) {
			cap := &fakeCapturer{}
			plat := &fakePlatform{downloads: t.TempDir()}
			p := newTestPipeline(t, cap, plat)

			d, err := p.Share(context.Background(), pipelineResult(), target)
			if err != nil {
				t.Fatalf("Share failed: %v", err)
			}
			if d.Tier != TierDeepLink {
				t.Errorf("Expected deep link tier, got %s", d.Tier)
			}
			if cap.callCount() != 1 {
				t.Errorf("Expected the card captured for the intent, got %d captures", cap.callCount())
			}
			if d.Path == "" || filepath.Base(d.Path) != DownloadFileName {
				t.Errorf("Expected saved card path, got %q", d.Path)
			}
			if _, err := os.Stat(d.Path); err != nil {
				t.Errorf("Expected card on disk: %v", err)
			}
			if len(plat.opened) != 1 {
				t.Errorf("Expected intent opened, got %v", plat.opened)
			}
		})
	}
}

func TestPipeline_ShareIntentDegradesTextOnlyOnCaptureFailure(t *testing.T) {
	cap := &fakeCapturer{err: ErrCaptureFailed}
	plat := &fakePlatform{}
	p := newTestPipeline(t, cap, plat)

	d, err := p.Share(context.Background(), pipelineResult(), TargetTwitter)
	if err != nil {
		t.Fatalf("Expected text-only degrade, got error: %v", err)
	}
	if d.Tier != TierDeepLink || d.Path != "" {
		t.Errorf("Expected pathless deep-link delivery, got %+v", d)
	}
	if len(plat.opened) != 1 || !strings.HasPrefix(plat.opened[0], "https://twitter.com/intent/tweet?text=") {
		t.Errorf("Expected intent still opened, got %v", plat.opened)
	}
}

func TestPipeline_ShareInstagramCopiesThenOpens(t *testing.T) {
	plat := &fakePlatform{}
	p := newTestPipeline(t, &fakeCapturer{}, plat)

	d, err := p.Share(context.Background(), pipelineResult(), TargetInstagram)
	if err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if !d.Copied {
		t.Error("Expected caption copied for instagram")
	}
	if !strings.Contains(plat.clipboard, "The Resilient Stoic") {
		t.Errorf("Expected caption on clipboard, got %q", plat.clipboard)
	}
	if len(plat.opened) != 1 || plat.opened[0] != instagramURL {
		t.Errorf("Expected instagram opened, got %v", plat.opened)
	}
}

func TestDeliverNative_CancelIsSuccessAdjacent(t *testing.T) {
	plat := &fakePlatform{canFiles: true, fileErr: ErrShareCancelled}
	a := &Artifact{ID: "a", PNG: []byte("png")}

	d, err := deliverNative(plat, a, "caption")
	if err != nil {
		t.Fatalf("Expected no error for cancelled share, got %v", err)
	}
	if !d.Cancelled || d.Tier != TierNativeFile {
		t.Errorf("Expected cancelled native-file delivery, got %+v", d)
	}
	// No fallback after cancellation.
	if len(plat.shared) != 1 {
		t.Errorf("Expected no fallback after cancel, deliveries: %v", plat.shared)
	}
}

func TestDeliverNative_UnsupportedDegrades(t *testing.T) {
	plat := &fakePlatform{canFiles: true, canText: true, fileErr: ErrShareUnsupported, downloads: t.TempDir()}
	a := &Artifact{ID: "a", PNG: []byte("png")}

	d, err := deliverNative(plat, a, "caption")
	if err != nil {
		t.Fatalf("deliverNative failed: %v", err)
	}
	if d.Tier != TierNativeText {
		t.Errorf("Expected degrade to native text, got %s", d.Tier)
	}
	if len(plat.shared) != 2 || plat.shared[0] != "file" || plat.shared[1] != "text" {
		t.Errorf("Expected file then text, got %v", plat.shared)
	}
}

func TestDeliverNative_TextPreferredWhenNoFiles(t *testing.T) {
	plat := &fakePlatform{canText: true}
	a := &Artifact{ID: "a", PNG: []byte("png")}

	d, err := deliverNative(plat, a, "caption")
	if err != nil {
		t.Fatalf("deliverNative failed: %v", err)
	}
	if d.Tier != TierNativeText {
		t.Errorf("Expected native text tier, got %s", d.Tier)
	}
}

func TestShareText_Format(t *testing.T) {
	got := ShareText(pipelineResult(), "https://philomind.app")
	want := "I explored my mind with PhiloMind. Maturity Score: 88/100. Persona: The Resilient Stoic. https://philomind.app"
	if got != want {
		t.Errorf("ShareText mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestRenderer_CardContents(t *testing.T) {
	r := NewRenderer(1200, 630, "#1e293b")
	result := pipelineResult()
	result.HasAward = true
	result.AwardTitle = "Order of the Calm Mind"

	pageURL, path, err := r.Render(result)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	defer os.Remove(path)

	if !strings.HasPrefix(pageURL, "file://") {
		t.Errorf("Expected file URL, got %s", pageURL)
	}
	html, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	page := string(html)
	for _, want := range []string{"The Resilient Stoic", "88", "width: 1200px", "height: 630px", "Order of the Calm Mind", "#1e293b"} {
		if !strings.Contains(page, want) {
			t.Errorf("Card missing %q", want)
		}
	}
}

func TestRenderer_NoAwardOmitsRibbon(t *testing.T) {
	r := NewRenderer(1200, 630, "")
	_, path, err := r.Render(pipelineResult())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	defer os.Remove(path)

	html, _ := os.ReadFile(path)
	if strings.Contains(string(html), `class="award"`) {
		t.Error("Expected no award ribbon without an award")
	}
}
