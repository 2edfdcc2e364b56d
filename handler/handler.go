package handler

import (
	"errors"
	"net/http"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
)

// HandlerFunc provides type-safe HTTP request handling with custom context support.
// C must implement the Context interface, R can be any request type.
//
// Example with standard context:
//
//	h := handler.HandlerFunc[handler.Context, CreateTemplateRequest](
//		func(ctx handler.Context, req CreateTemplateRequest) handler.Response {
//			tpl := createTemplate(req.Name, req.Document)
//			return handler.JSON(tpl)
//		},
//	)
//
// Example with custom context:
//
//	h := handler.HandlerFunc[AppContext, CreateTemplateRequest](
//		func(ctx AppContext, req CreateTemplateRequest) handler.Response {
//			userID := ctx.UserID() // Direct access to custom methods
//			return handler.JSON(tpl)
//		},
//	)
type HandlerFunc[C Context, R any] func(ctx C, req R) Response

// Response renders itself to an http.ResponseWriter.
// Implementations should set headers, status code, and write body.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Bind parses HTTP requests into typed values.
type Bind func(r *http.Request, v any) error

// ErrorHandler handles errors from binding or rendering.
type ErrorHandler[C Context] func(ctx C, err error)

// WrapOption configures the Wrap function.
type WrapOption[C Context, R any] func(*wrapConfig[C, R])

// wrapConfig holds configuration for Wrap.
type wrapConfig[C Context, R any] struct {
	binders        []Bind
	errorHandler   ErrorHandler[C]
	contextFactory func(http.ResponseWriter, *http.Request) C
}

// WithBinders sets request binders that are applied in order.
// Each binder processes only its specific struct tags.
//
// Example:
//
//	r.Get("/templates/{id}", handler.Wrap(h,
//		handler.WithBinders[handler.Context, GetTemplateRequest](
//			binder.Path(chi.URLParam), // processes path: tags
//			binder.Query(),            // processes query: tags
//		),
//	))
func WithBinders[C Context, R any](binders ...Bind) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		c.binders = append(c.binders, binders...)
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler[C Context, R any](h ErrorHandler[C]) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithContextFactory sets a custom context factory.
func WithContextFactory[C Context, R any](f func(http.ResponseWriter, *http.Request) C) WrapOption[C, R] {
	return func(c *wrapConfig[C, R]) {
		if f != nil {
			c.contextFactory = f
		}
	}
}

// defaultErrorHandler renders errors as JSON, honoring HTTPError status
// codes and falling back to 500. It does not log; use NewErrorHandler for
// production wiring.
func defaultErrorHandler[C Context](ctx C, err error) {
	if renderErr := respondError(ctx, classifyError(err)); renderErr != nil {
		http.Error(ctx.ResponseWriter(), err.Error(), http.StatusInternalServerError)
	}
}

// Wrap converts a typed HandlerFunc to http.HandlerFunc.
//
// Usage with standard context:
//
//	h := handler.HandlerFunc[handler.Context, CreateTemplateRequest](...)
//	http.HandleFunc("/templates", handler.Wrap(h))
//
// With options:
//
//	http.HandleFunc("/templates", handler.Wrap(h,
//		handler.WithBinders[handler.Context, CreateTemplateRequest](binder.JSON()),
//		handler.WithErrorHandler[handler.Context, CreateTemplateRequest](customErrorHandler),
//	))
func Wrap[C Context, R any](h HandlerFunc[C, R], opts ...WrapOption[C, R]) http.HandlerFunc {
	cfg := &wrapConfig[C, R]{
		errorHandler: defaultErrorHandler[C],
	}

	// Default factory covers the plain Context case; custom context types
	// must provide WithContextFactory.
	cfg.contextFactory = func(w http.ResponseWriter, r *http.Request) C {
		ctx := NewContext(w, r)
		if c, ok := any(ctx).(C); ok {
			return c
		}
		panic("cannot use default context factory with custom context type - provide WithContextFactory")
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := cfg.contextFactory(w, r)

		var req R

		// Apply binders in order; those that don't handle this request
		// shape are skipped.
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				cfg.errorHandler(ctx, err)
				return
			}
		}

		response := h(ctx, req)
		if response == nil {
			cfg.errorHandler(ctx, ErrNilResponse)
			return
		}
		if err := response.Render(w, r); err != nil {
			cfg.errorHandler(ctx, err)
		}
	}
}
