// Package environment propagates the deployment environment (development,
// staging, production) through context.Context, HTTP middleware and
// structured logs.
//
// Parse canonicalizes the APP_ENV spelling, Middleware stamps every request
// context, and LoggerExtractor exposes the value as a slog attribute. Missing
// values yield the zero Environment rather than an error.
package environment
