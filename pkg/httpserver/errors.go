package httpserver

import "errors"

var (
	// ErrStart is returned when the listener cannot come up or dies.
	ErrStart = errors.New("http server failed to start")

	// ErrShutdown is returned when graceful shutdown does not finish in time.
	ErrShutdown = errors.New("http server shutdown did not complete")
)
