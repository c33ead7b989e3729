package sharecard

import "errors"

var (
	// ErrCaptureTimeout means a capture attempt exceeded its time budget.
	ErrCaptureTimeout = errors.New("share card capture timed out")

	// ErrCaptureFailed means the render engine failed outright.
	ErrCaptureFailed = errors.New("share card capture failed")

	// ErrShareCancelled means the user dismissed the share surface. This
	// is success-adjacent: no fallback, no error shown.
	ErrShareCancelled = errors.New("share cancelled by user")

	// ErrShareUnsupported means the platform cannot serve the requested
	// delivery; the pipeline degrades to the next tier.
	ErrShareUnsupported = errors.New("share method unsupported")
)
