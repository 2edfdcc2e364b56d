package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
)

func TestHTML(t *testing.T) {
	t.Parallel()

	t.Run("serves markup with html content type", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/preview", nil)

		resp := handler.HTML("<!doctype html><html><body>hi</body></html>")
		err := resp.Render(w, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "<!doctype html><html><body>hi</body></html>", w.Body.String())
	})

	t.Run("custom status", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/preview", nil)

		resp := handler.HTMLWithStatus("<p>created</p>", http.StatusCreated)
		err := resp.Render(w, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "<p>created</p>", w.Body.String())
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/preview", nil)

		resp := handler.HTML("")
		err := resp.Render(w, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestBlob(t *testing.T) {
	t.Parallel()

	t.Run("serves bytes with content type and length", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/qr", nil)

		payload := []byte{0x89, 'P', 'N', 'G'}
		resp := handler.Blob("image/png", payload)
		err := resp.Render(w, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "4", w.Header().Get("Content-Length"))
		assert.Equal(t, payload, w.Body.Bytes())
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/qr", nil)

		resp := handler.Blob("application/octet-stream", nil)
		err := resp.Render(w, r)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", w.Header().Get("Content-Length"))
		assert.Empty(t, w.Body.Bytes())
	})
}
