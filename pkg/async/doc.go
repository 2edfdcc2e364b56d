// Package async runs a computation in its own goroutine and hands back a
// Future for its eventual result.
//
// Async starts the work immediately; Await blocks for it, AwaitWithTimeout
// bounds the wait, and WaitAll collects a batch. A context canceled before
// the work starts completes the Future with the context error.
package async
