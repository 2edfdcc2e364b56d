package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/binder"
)

// Mock response for testing
type mockResponse struct {
	statusCode int
	body       string
	renderErr  error
}

func (m mockResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if m.renderErr != nil {
		return m.renderErr
	}
	w.WriteHeader(m.statusCode)
	w.Write([]byte(m.body))
	return nil
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("basic handler without options", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			assert.NotNil(t, ctx)
			assert.Equal(t, "", req) // zero value
			return mockResponse{statusCode: http.StatusOK, body: "success"}
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "success", rec.Body.String())
	})

	t.Run("handler with render error", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return mockResponse{renderErr: errors.New("render failed")}
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "render failed")
	})

	t.Run("handler returns nil response", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return nil
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "handler returned nil response")
	})

	t.Run("with JSON binder", func(t *testing.T) {
		t.Parallel()
		type testRequest struct {
			Name string `json:"name"`
		}

		h := handler.HandlerFunc[handler.Context, testRequest](func(ctx handler.Context, req testRequest) handler.Response {
			return mockResponse{statusCode: http.StatusOK, body: req.Name}
		})

		wrapped := handler.Wrap(h,
			handler.WithBinders[handler.Context, testRequest](binder.JSON()),
		)

		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":"bound value"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "bound value", rec.Body.String())
	})

	t.Run("stacked binders fill separate fields", func(t *testing.T) {
		t.Parallel()
		type testRequest struct {
			ID    string `path:"id"`
			Limit int    `query:"limit"`
		}

		pathValues := map[string]string{"id": "tpl-42"}
		extractor := func(r *http.Request, name string) string {
			return pathValues[name]
		}

		h := handler.HandlerFunc[handler.Context, testRequest](func(ctx handler.Context, req testRequest) handler.Response {
			return mockResponse{statusCode: http.StatusOK, body: fmt.Sprintf("%s:%d", req.ID, req.Limit)}
		})

		wrapped := handler.Wrap(h,
			handler.WithBinders[handler.Context, testRequest](
				binder.Path(extractor),
				binder.Query(),
			),
		)

		req := httptest.NewRequest(http.MethodGet, "/test?limit=5", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tpl-42:5", rec.Body.String())
	})

	t.Run("not applicable binder is skipped", func(t *testing.T) {
		t.Parallel()
		type testRequest struct {
			Name string
		}

		skipped := func(r *http.Request, v any) error {
			return binder.ErrBinderNotApplicable
		}
		fills := func(r *http.Request, v any) error {
			if req, ok := v.(*testRequest); ok {
				req.Name = "second binder"
			}
			return nil
		}

		h := handler.HandlerFunc[handler.Context, testRequest](func(ctx handler.Context, req testRequest) handler.Response {
			return mockResponse{statusCode: http.StatusOK, body: req.Name}
		})

		wrapped := handler.Wrap(h,
			handler.WithBinders[handler.Context, testRequest](skipped, fills),
		)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "second binder", rec.Body.String())
	})

	t.Run("binder error reaches error handler", func(t *testing.T) {
		t.Parallel()
		binderErr := errors.New("binding failed")
		errorHandlerCalled := false

		failing := func(r *http.Request, v any) error {
			return binderErr
		}

		customErrorHandler := func(ctx handler.Context, err error) {
			errorHandlerCalled = true
			assert.Equal(t, binderErr, err)
			ctx.ResponseWriter().WriteHeader(http.StatusBadRequest)
			ctx.ResponseWriter().Write([]byte("custom error: " + err.Error()))
		}

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			t.Error("handler should not be called on bind error")
			return nil
		})

		wrapped := handler.Wrap(h,
			handler.WithBinders[handler.Context, string](failing),
			handler.WithErrorHandler[handler.Context, string](customErrorHandler),
		)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.True(t, errorHandlerCalled)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "custom error: binding failed", rec.Body.String())
	})

	t.Run("invalid JSON body yields bad request", func(t *testing.T) {
		t.Parallel()
		type testRequest struct {
			Name string `json:"name"`
		}

		h := handler.HandlerFunc[handler.Context, testRequest](func(ctx handler.Context, req testRequest) handler.Response {
			t.Error("handler should not be called on bind error")
			return nil
		})

		wrapped := handler.Wrap(h,
			handler.WithBinders[handler.Context, testRequest](binder.JSON()),
		)

		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "bad_request")
	})

	t.Run("error response defers to error handler", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return handler.Error(handler.ErrNotFound)
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found")
	})

	t.Run("handler returns wrapped HTTPError", func(t *testing.T) {
		t.Parallel()
		wrappedErr := fmt.Errorf("validation failed: %w", handler.ErrUnprocessableEntity)

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return mockResponse{renderErr: wrappedErr}
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "unprocessable_entity")
	})
}

// Custom context for testing
type customContext interface {
	handler.Context
	UserID() string
}

type testCustomContext struct {
	handler.Context
	userID string
}

func (c *testCustomContext) UserID() string {
	return c.userID
}

func newTestCustomContext(w http.ResponseWriter, r *http.Request) customContext {
	return &testCustomContext{
		Context: handler.NewContext(w, r),
		userID:  "test-user-123",
	}
}

func TestWrapWithCustomContext(t *testing.T) {
	t.Parallel()

	t.Run("handler with custom context", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[customContext, string](func(ctx customContext, req string) handler.Response {
			userID := ctx.UserID()
			assert.Equal(t, "test-user-123", userID)
			return mockResponse{statusCode: http.StatusOK, body: userID}
		})

		wrapped := handler.Wrap(h,
			handler.WithContextFactory[customContext, string](newTestCustomContext),
		)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "test-user-123", rec.Body.String())
	})

	t.Run("custom context without factory panics", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[customContext, string](func(ctx customContext, req string) handler.Response {
			t.Error("handler should not be called")
			return nil
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		require.Panics(t, func() {
			wrapped(rec, req)
		}, "should panic when custom context is used without factory")
	})
}

func TestDefaultContextFactory(t *testing.T) {
	t.Parallel()

	t.Run("standard context uses default factory", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			assert.NotNil(t, ctx)
			assert.NotNil(t, ctx.Request())
			assert.NotNil(t, ctx.ResponseWriter())
			return mockResponse{statusCode: http.StatusOK, body: "ok"}
		})

		wrapped := handler.Wrap(h)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("overriding default factory works", func(t *testing.T) {
		t.Parallel()
		customFactoryCalled := false
		customFactory := func(w http.ResponseWriter, r *http.Request) handler.Context {
			customFactoryCalled = true
			return handler.NewContext(w, r)
		}

		h := handler.HandlerFunc[handler.Context, string](func(ctx handler.Context, req string) handler.Response {
			return mockResponse{statusCode: http.StatusOK, body: "ok"}
		})

		wrapped := handler.Wrap(h,
			handler.WithContextFactory[handler.Context, string](customFactory),
		)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()

		wrapped(rec, req)

		assert.True(t, customFactoryCalled, "custom factory should be called")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
