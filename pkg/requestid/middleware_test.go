package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/requestid"
)

func serve(t *testing.T, headerID string) (ctxID string, respID string) {
	t.Helper()

	handler := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if headerID != "" {
		req.Header.Set(requestid.Header, headerID)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	return ctxID, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates an ID when none is sent", func(t *testing.T) {
		t.Parallel()
		ctxID, respID := serve(t, "")
		assert.NotEmpty(t, ctxID)
		assert.Equal(t, ctxID, respID)
	})

	t.Run("keeps a well-formed inbound ID", func(t *testing.T) {
		t.Parallel()
		for _, id := range []string{
			"abc123",
			"trace-42_A",
			"550e8400-e29b-41d4-a716-446655440000",
		} {
			ctxID, respID := serve(t, id)
			assert.Equal(t, id, ctxID)
			assert.Equal(t, id, respID)
		}
	})

	t.Run("replaces malformed IDs", func(t *testing.T) {
		t.Parallel()
		for _, id := range []string{
			"has space",
			"slash/id",
			"<script>alert(1)</script>",
			"x-really-long-id-that-goes-far-past-the-accepted-maximum-length-for-a-request-identifier-and-keeps-going-and-going-and-going-on-and-on",
		} {
			ctxID, respID := serve(t, id)
			assert.NotEqual(t, id, ctxID)
			assert.NotEmpty(t, respID)
		}
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := requestid.WithContext(context.Background(), "req-7")
	assert.Equal(t, "req-7", requestid.FromContext(ctx))
	assert.Empty(t, requestid.FromContext(context.Background()))
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()

	attr, ok := extract(requestid.WithContext(context.Background(), "req-9"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-9", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
