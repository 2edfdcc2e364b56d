// Package clientip resolves the originating client address of a request
// arriving through reverse proxies.
//
// FromRequest walks X-Forwarded-For, then X-Real-IP, then the TCP peer
// address, returning the first value that parses as an IP. Middleware stores
// the result in the request context, FromContext reads it back, and
// LoggerExtractor injects it into slog records.
package clientip
