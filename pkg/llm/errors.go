package llm

import "errors"

var (
	// ErrMissingAPIKey is returned at construction time, never per request.
	ErrMissingAPIKey = errors.New("llm: API key is required")

	// ErrOverloaded marks a transient provider overload (HTTP 529). Callers
	// may retry with backoff.
	ErrOverloaded = errors.New("llm: service overloaded")

	// ErrNoTextContent means the response carried no text block to extract.
	ErrNoTextContent = errors.New("llm: response contains no text content")
)
