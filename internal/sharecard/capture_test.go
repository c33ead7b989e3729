package sharecard

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		Width:           1200,
		Height:          630,
		SettleDelay:     time.Millisecond,
		PrimaryTimeout:  50 * time.Millisecond,
		FallbackTimeout: 50 * time.Millisecond,
		PrimaryScale:    2,
		FallbackScale:   1,
	}
}

func TestCapture_FirstAttemptSucceeds(t *testing.T) {
	c := NewCapturer(testOptions())
	var attempts int
	var scales []float64
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		attempts++
		scales = append(scales, scale)
		return []byte("png-bytes"), nil
	}

	a, err := c.Capture(context.Background(), "file:///card.html")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
	if scales[0] != 2 {
		t.Errorf("Expected primary scale 2, got %v", scales[0])
	}
	if len(a.PNG) == 0 || a.Width != 1200 || a.Height != 630 {
		t.Errorf("Unexpected artifact %+v", a)
	}
	if a.ID == "" {
		t.Error("Expected artifact id")
	}
}

func TestCapture_RetriesOnceDegraded(t *testing.T) {
	c := NewCapturer(testOptions())
	var attempts int
	var scales []float64
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		attempts++
		scales = append(scales, scale)
		if attempts == 1 {
			return nil, errors.New("render crashed")
		}
		return []byte("png-bytes"), nil
	}

	a, err := c.Capture(context.Background(), "file:///card.html")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if scales[1] != 1 {
		t.Errorf("Expected degraded scale 1, got %v", scales[1])
	}
	if a == nil {
		t.Fatal("Expected artifact from retry")
	}
}

func TestCapture_TwoFailuresNoArtifact(t *testing.T) {
	c := NewCapturer(testOptions())
	var attempts int
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		attempts++
		return nil, errors.New("render crashed")
	}

	a, err := c.Capture(context.Background(), "file:///card.html")
	if !errors.Is(err, ErrCaptureFailed) {
		t.Errorf("Expected ErrCaptureFailed, got %v", err)
	}
	if a != nil {
		t.Error("Expected no artifact after two failures")
	}
	if attempts != 2 {
		t.Errorf("Expected exactly 2 attempts, got %d", attempts)
	}
}

func TestCapture_TimeoutClassified(t *testing.T) {
	c := NewCapturer(testOptions())
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := c.Capture(context.Background(), "file:///card.html")
	if !errors.Is(err, ErrCaptureTimeout) {
		t.Errorf("Expected ErrCaptureTimeout, got %v", err)
	}
	if errors.Is(err, ErrCaptureFailed) {
		t.Error("Timeout must stay distinguishable from engine failure")
	}
}

func TestCapture_TimeoutThenDegradedSuccess(t *testing.T) {
	c := NewCapturer(testOptions())
	var attempts int
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		attempts++
		if attempts == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []byte("png-bytes"), nil
	}

	a, err := c.Capture(context.Background(), "file:///card.html")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if a == nil || attempts != 2 {
		t.Errorf("Expected retry after timeout, attempts=%d artifact=%v", attempts, a)
	}
}

func TestCapture_EmptyImageIsFailure(t *testing.T) {
	c := NewCapturer(testOptions())
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		return []byte{}, nil
	}

	_, err := c.Capture(context.Background(), "file:///card.html")
	if !errors.Is(err, ErrCaptureFailed) {
		t.Errorf("Expected ErrCaptureFailed for empty image, got %v", err)
	}
}

func TestCapture_CancelledDuringSettle(t *testing.T) {
	opts := testOptions()
	opts.SettleDelay = time.Second
	c := NewCapturer(opts)
	c.shoot = func(ctx context.Context, pageURL string, scale float64) ([]byte, error) {
		t.Error("shoot called despite cancelled context")
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Capture(ctx, "file:///card.html")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrCaptureTimeout) {
		t.Error("Cancellation must not be classified as a budget overrun")
	}
}

func TestCapture_CancelledMidAttemptNoRetry(t *testing.T) {
	c := NewCapturer(testOptions())
	ctx, cancel := context.WithCancel(context.Background())

	var attempts int
	c.shoot = func(shootCtx context.Context, pageURL string, scale float64) ([]byte, error) {
		attempts++
		cancel() // the caller walks away mid-capture
		return nil, shootCtx.Err()
	}

	_, err := c.Capture(ctx, "file:///card.html")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if errors.Is(err, ErrCaptureTimeout) || errors.Is(err, ErrCaptureFailed) {
		t.Error("Cancellation must stay distinguishable from capture failures")
	}
	if attempts != 1 {
		t.Errorf("Expected no degraded retry after cancellation, got %d attempts", attempts)
	}
}
