package binder

import "errors"

var (
	// ErrBinderNotApplicable signals that a binder does not handle this
	// request shape. Stacked binders return it so the wrapper can move on
	// to the next one instead of failing the request.
	ErrBinderNotApplicable = errors.New("binder not applicable")

	// ErrMissingContentType is returned when a body binder runs against a
	// request without a Content-Type header.
	ErrMissingContentType = errors.New("missing content type")

	// ErrUnsupportedMediaType is returned when the Content-Type does not
	// match what the binder parses.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidJSON wraps JSON body parsing failures.
	ErrInvalidJSON = errors.New("invalid JSON request")

	// ErrInvalidForm wraps form parsing failures.
	ErrInvalidForm = errors.New("invalid form data")

	// ErrInvalidQuery wraps query parameter binding failures.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrInvalidPath wraps path parameter binding failures.
	ErrInvalidPath = errors.New("invalid path parameters")
)
