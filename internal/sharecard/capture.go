package sharecard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"philomind/internal/logging"
)

// Artifact is a captured share card image, held in memory only.
type Artifact struct {
	ID     string
	PNG    []byte
	Width  int
	Height int
}

// Options configures the two-attempt capture.
type Options struct {
	Width           int
	Height          int
	SettleDelay     time.Duration
	PrimaryTimeout  time.Duration
	FallbackTimeout time.Duration
	PrimaryScale    float64
	FallbackScale   float64
}

// Capturer screenshots share card pages with a headless browser. The first
// attempt runs at high device scale under the primary budget; on failure a
// single degraded retry runs at reduced scale under the fallback budget.
type Capturer struct {
	opts Options

	mu      sync.Mutex
	browser *rod.Browser

	// shoot performs one screenshot attempt. Swapped in tests.
	shoot func(ctx context.Context, pageURL string, scale float64) ([]byte, error)
}

// NewCapturer creates a capturer. The browser is launched lazily on the
// first capture.
func NewCapturer(opts Options) *Capturer {
	c := &Capturer{opts: opts}
	c.shoot = c.screenshot
	return c
}

// Capture renders the page to a PNG artifact. Exactly two attempts at
// most; both failing means no artifact. Timeout failures stay
// distinguishable from engine failures via errors.Is.
func (c *Capturer) Capture(ctx context.Context, pageURL string) (*Artifact, error) {
	timer := logging.StartTimer(logging.CategoryShare, "Capture")
	defer timer.Stop()

	// Give the page a beat to settle fonts and layout.
	if c.opts.SettleDelay > 0 {
		select {
		case <-time.After(c.opts.SettleDelay):
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, fmt.Errorf("capture cancelled: %w", ctx.Err())
			}
			return nil, fmt.Errorf("%w: %v", ErrCaptureTimeout, ctx.Err())
		}
	}

	png, err := c.attempt(ctx, pageURL, c.opts.PrimaryScale, c.opts.PrimaryTimeout)
	if err != nil {
		if ctx.Err() != nil {
			// The caller is gone; a degraded retry serves no one.
			return nil, err
		}
		logging.ShareWarn("primary capture failed (%v), retrying degraded", err)
		png, err = c.attempt(ctx, pageURL, c.opts.FallbackScale, c.opts.FallbackTimeout)
		if err != nil {
			logging.ShareWarn("fallback capture failed: %v", err)
			return nil, err
		}
	}

	return &Artifact{
		ID:     uuid.NewString(),
		PNG:    png,
		Width:  c.opts.Width,
		Height: c.opts.Height,
	}, nil
}

func (c *Capturer) attempt(ctx context.Context, pageURL string, scale float64, budget time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	png, err := c.shoot(attemptCtx, pageURL, scale)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled):
			// Caller cancellation, not a budget overrun.
			return nil, fmt.Errorf("capture cancelled: %w", context.Canceled)
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: budget %v exceeded", ErrCaptureTimeout, budget)
		default:
			return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}
	}
	if len(png) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrCaptureFailed)
	}
	return png, nil
}

// screenshot performs a real headless-Chrome screenshot via rod.
func (c *Capturer) screenshot(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
	browser, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             c.opts.Width,
		Height:            c.opts.Height,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	data, err := page.Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

func (c *Capturer) ensureBrowser() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return c.browser, nil
		}
		logging.ShareDebug("stale browser connection, relaunching")
		_ = c.browser.Close()
		c.browser = nil
	}

	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	c.browser = browser
	logging.Share("headless browser ready")
	return browser, nil
}

// Close shuts down the headless browser if one was launched.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	return err
}
