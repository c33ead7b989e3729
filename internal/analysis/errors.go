package analysis

import "errors"

// Analysis failures collapse to three kinds. Callers classify with
// errors.Is and surface a user-facing message per kind; the wrapped
// detail stays in the logs.
var (
	// ErrMissingCredentials means no API key is configured. Detected
	// before any network activity.
	ErrMissingCredentials = errors.New("gemini api key not configured")

	// ErrTransport covers request construction, network and HTTP failures.
	ErrTransport = errors.New("analysis request failed")

	// ErrMalformedResponse means the model replied but the payload could
	// not be decoded or validated.
	ErrMalformedResponse = errors.New("analysis response malformed")
)
