package handler

import "net/http"

// errorResponse defers the error to the wrapper's error handler.
type errorResponse struct {
	err error
}

// Render writes nothing and returns the error so Wrap routes it through
// the configured error handler
func (e errorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.err
}

// Error creates a response that hands err to the error handler configured
// on Wrap, which classifies, logs, and renders it. Handlers use it for any
// failure they do not want to translate themselves.
//
// Example:
//
//	tpl, err := svc.GetTemplate(ctx.Request().Context(), req.UserID, req.ID)
//	if err != nil {
//		return handler.Error(handler.ErrNotFound.Wrap(err))
//	}
//	return handler.JSON(tpl)
func Error(err error) Response {
	return errorResponse{err: err}
}
