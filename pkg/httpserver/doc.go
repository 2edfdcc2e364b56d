// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts and probe handlers.
//
// Run blocks until the context is canceled or SIGINT/SIGTERM arrives, then
// drains in-flight requests within the shutdown timeout:
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil { ... }
package httpserver
