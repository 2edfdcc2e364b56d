package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/clientip"
)

func resolve(t *testing.T, remoteAddr string, headers map[string]string) string {
	t.Helper()

	var got string
	handler := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("first valid forwarded hop wins", func(t *testing.T) {
		t.Parallel()
		ip := resolve(t, "10.0.0.1:1234", map[string]string{
			"X-Forwarded-For": "203.0.113.7, 10.0.0.2",
			"X-Real-IP":       "198.51.100.1",
		})
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("skips malformed hops", func(t *testing.T) {
		t.Parallel()
		ip := resolve(t, "10.0.0.1:1234", map[string]string{
			"X-Forwarded-For": "not-an-ip, 203.0.113.7",
		})
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		t.Parallel()
		ip := resolve(t, "10.0.0.1:1234", map[string]string{
			"X-Forwarded-For": "garbage",
			"X-Real-IP":       "198.51.100.1",
		})
		assert.Equal(t, "198.51.100.1", ip)
	})

	t.Run("falls back to the TCP peer", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "192.0.2.10", resolve(t, "192.0.2.10:5555", nil))
	})

	t.Run("normalizes IPv6", func(t *testing.T) {
		t.Parallel()
		ip := resolve(t, "10.0.0.1:1234", map[string]string{
			"X-Forwarded-For": "2001:0DB8:0000:0000:0000:0000:0000:0001",
		})
		assert.Equal(t, "2001:db8::1", ip)
	})

	t.Run("empty when nothing parses", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, resolve(t, "garbage", nil))
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := clientip.LoggerExtractor()

	attr, ok := extract(clientip.WithContext(context.Background(), "203.0.113.7"))
	require.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "203.0.113.7", attr.Value.String())

	_, ok = extract(context.Background())
	assert.False(t, ok)
}
