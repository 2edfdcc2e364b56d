package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/logger"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/requestid"
)

// ErrorInfo contains classified error information.
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

// determineLogLevel maps HTTP status codes to log levels: client mistakes
// are warnings, server faults are errors.
func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// classifyError analyzes the error and returns structured error information.
func classifyError(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    err.Error(),
	}

	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		info.StatusCode = http.StatusUnsupportedMediaType
		info.Code = "unsupported_media_type"
	case errors.Is(err, binder.ErrInvalidJSON),
		errors.Is(err, binder.ErrInvalidForm),
		errors.Is(err, binder.ErrInvalidQuery),
		errors.Is(err, binder.ErrInvalidPath):
		info.StatusCode = http.StatusBadRequest
		info.Code = "bad_request"
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
		info.Code = httpErr.Key
		info.Message = httpErr.Message
		if info.Message == "" {
			info.Message = http.StatusText(httpErr.Code)
		}
	}

	// Validation errors win over everything else; they carry field detail.
	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		info.StatusCode = http.StatusUnprocessableEntity
		info.Code = "validation_error"
		info.Message = validationErr.Error()
		if len(validationErr) > 0 {
			info.Details = make(map[string][]string, len(validationErr))
			for field, messages := range validationErr {
				info.Details[field] = append([]string(nil), messages...)
			}
		}
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

// respondError writes the classified error as a JSON body.
func respondError(ctx Context, info ErrorInfo) error {
	resp := JSON(JSONResponse{
		Error: &ErrorDetail{
			Code:    info.Code,
			Message: info.Message,
			Details: info.Details,
		},
	}, WithJSONStatus(info.StatusCode))

	return resp.Render(ctx.ResponseWriter(), ctx.Request())
}

// NewErrorHandler creates the default error handler for JSON APIs: it logs
// the failure with request scope and renders a structured error body.
// Configure this once in main.go and pass it to every module router.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		info := classifyError(err)
		reqID := requestid.FromContext(ctx.Request().Context())

		log.LogAttrs(ctx.Request().Context(), info.LogLevel, "request error",
			logger.RequestID(reqID),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", ctx.Request().Method),
			slog.String("path", ctx.Request().URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := respondError(ctx, info); renderErr != nil {
			log.Error("failed to render error response",
				logger.RequestID(reqID),
				logger.Error(renderErr),
			)
			http.Error(ctx.ResponseWriter(), "Internal Server Error", http.StatusInternalServerError)
		}
	}
}
