package async

import "errors"

// ErrTimeout reports that AwaitWithTimeout gave up before the computation
// finished. The underlying goroutine keeps running.
var ErrTimeout = errors.New("async: timed out awaiting future")
