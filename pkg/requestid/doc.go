// Package requestid correlates HTTP requests through an X-Request-ID header.
//
// Middleware validates or generates the ID, echoes it on the response, and
// stores it in the request context. FromContext reads it back, and
// LoggerExtractor injects it into slog records. Malformed client IDs are
// silently replaced with a fresh UUID.
package requestid
