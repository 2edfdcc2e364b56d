// Package userid resolves the acting user from an X-User-ID header.
//
// There is no account system yet; clients identify themselves with a stable
// opaque ID and every store scopes its data by it. Middleware rejects
// requests without a usable ID, FromContext reads it back, and
// LoggerExtractor injects it into slog records.
package userid
