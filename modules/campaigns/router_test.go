package campaigns_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/handler"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/campaigns"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/userid"
)

// newRouterServer mounts the module router under /campaigns behind the user
// identity middleware, the same chain cmd/api builds.
func newRouterServer(f *fixture, opts campaigns.RouterOptions) http.Handler {
	opts.Service = f.svc
	root := chi.NewRouter()
	root.Mount("/campaigns", campaigns.Router(opts))
	return userid.Middleware(root)
}

type jsonEnvelope struct {
	Data  json.RawMessage      `json:"data"`
	Meta  map[string]any       `json:"meta"`
	Error *handler.ErrorDetail `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, jsonEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(userid.Header, testUser)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env jsonEnvelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env jsonEnvelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestRouter_CreateAndRead(t *testing.T) {
	t.Parallel()

	t.Run("creates a draft and reads it back", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedTemplate(t, "tpl-1")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns", map[string]any{
			"templateId": "tpl-1",
			"name":       "spring launch",
			"subject":    "Big news",
			"recipients": []string{"ada@example.com", "ada@example.com"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		created := decodeData[campaigns.Campaign](t, env)
		assert.Equal(t, campaigns.StatusDraft, created.Status)
		assert.Equal(t, []string{"ada@example.com"}, created.Recipients)

		rec, env = do(t, srv, http.MethodGet, "/campaigns", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		items := decodeData[[]campaigns.Campaign](t, env)
		require.Len(t, items, 1)
		assert.EqualValues(t, 1, env.Meta["count"])

		rec, env = do(t, srv, http.MethodGet, "/campaigns/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[campaigns.Campaign](t, env)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("missing subject is a validation error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedTemplate(t, "tpl-1")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns", map[string]any{
			"templateId": "tpl-1",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "validation_error", env.Error.Code)
		assert.NotEmpty(t, env.Error.Details["subject"])
	})

	t.Run("unknown template is a validation error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns", map[string]any{
			"templateId": "missing",
			"subject":    "Big news",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.NotEmpty(t, env.Error.Details["templateId"])
	})

	t.Run("malformed recipient is a validation error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.seedTemplate(t, "tpl-1")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns", map[string]any{
			"templateId": "tpl-1",
			"subject":    "Big news",
			"recipients": []string{"nope"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.NotEmpty(t, env.Error.Details["recipients"])
	})

	t.Run("unknown campaign is not found", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodGet, "/campaigns/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "not_found", env.Error.Code)
	})

	t.Run("requires an identity header", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		srv := newRouterServer(f, campaigns.RouterOptions{})

		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_Submit(t *testing.T) {
	t.Parallel()

	t.Run("queues the campaign", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.createCampaign(t, "ada@example.com")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/submit", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		submitted := decodeData[campaigns.Campaign](t, env)
		assert.Equal(t, campaigns.StatusQueued, submitted.Status)
		assert.Len(t, f.enqueuer.enqueued(), 1)
	})

	t.Run("second submit conflicts", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.createCampaign(t, "ada@example.com")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, _ := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/submit", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, env := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/submit", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "conflict", env.Error.Code)
		assert.Contains(t, env.Error.Message, "cannot submit")
	})

	t.Run("empty recipient list is a validation error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.createCampaign(t)
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/submit", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.NotEmpty(t, env.Error.Details["recipients"])
	})
}

func TestRouter_TestSend(t *testing.T) {
	t.Parallel()

	t.Run("sends one email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.createCampaign(t, "list@example.com")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, _ := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/test-send", map[string]any{
			"recipient": "me@example.com",
		})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		deliveries := f.mailer.deliveries()
		require.Len(t, deliveries, 1)
		assert.Equal(t, "me@example.com", deliveries[0].SendTo)
	})

	t.Run("malformed recipient names the request field", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		c := f.createCampaign(t, "list@example.com")
		srv := newRouterServer(f, campaigns.RouterOptions{})

		rec, env := do(t, srv, http.MethodPost, "/campaigns/"+c.ID+"/test-send", map[string]any{
			"recipient": "nope",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		require.NotNil(t, env.Error)
		assert.NotEmpty(t, env.Error.Details["recipient"])
	})
}

// TestRouter_FullLifecycle drives a campaign from creation through worker
// delivery using only the public surfaces: HTTP for the user actions, the
// queue handler for the worker side.
func TestRouter_FullLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedTemplate(t, "tpl-1")
	srv := newRouterServer(f, campaigns.RouterOptions{})

	rec, env := do(t, srv, http.MethodPost, "/campaigns", map[string]any{
		"templateId": "tpl-1",
		"subject":    "Big news",
		"recipients": []string{"ada@example.com", "grace@example.com"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[campaigns.Campaign](t, env)

	rec, _ = do(t, srv, http.MethodPost, "/campaigns/"+created.ID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payloads := f.enqueuer.enqueued()
	require.Len(t, payloads, 1)
	raw, err := json.Marshal(payloads[0])
	require.NoError(t, err)
	require.NoError(t, f.sender.Handler().Handle(context.Background(), raw))

	rec, env = do(t, srv, http.MethodGet, "/campaigns/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	final := decodeData[campaigns.Campaign](t, env)
	assert.Equal(t, campaigns.StatusSent, final.Status)
	assert.Equal(t, 2, final.SentCount)
	assert.Len(t, f.mailer.deliveries(), 2)
}
