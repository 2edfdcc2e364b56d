package audiences_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/modules/audiences"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/secrets"
)

const testUser = "u1"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider is an in-memory remote audience. Upsert and Remove mutate it,
// so a reconcile after an apply observes the pushed state.
type fakeProvider struct {
	mu      sync.Mutex
	lists   map[string][]audiences.Member
	seenKey string
	err     error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{lists: make(map[string][]audiences.Member)}
}

func (p *fakeProvider) seed(listID string, members ...audiences.Member) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[listID] = members
}

func (p *fakeProvider) Members(ctx context.Context, apiKey, listID string) ([]audiences.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.seenKey = apiKey
	return slices.Clone(p.lists[listID]), nil
}

func (p *fakeProvider) Upsert(ctx context.Context, apiKey, listID string, members []audiences.Member) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	for _, m := range members {
		idx := slices.IndexFunc(p.lists[listID], func(existing audiences.Member) bool {
			return strings.EqualFold(existing.Email, m.Email)
		})
		if idx >= 0 {
			p.lists[listID][idx] = m
			continue
		}
		p.lists[listID] = append(p.lists[listID], m)
	}
	return nil
}

func (p *fakeProvider) Remove(ctx context.Context, apiKey, listID string, emails []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.lists[listID] = slices.DeleteFunc(p.lists[listID], func(m audiences.Member) bool {
		return slices.ContainsFunc(emails, func(e string) bool {
			return strings.EqualFold(e, m.Email)
		})
	})
	return nil
}

type fixture struct {
	lists       *audiences.MemoryListStore
	subscribers *audiences.MemorySubscriberStore
	credentials *audiences.MemoryCredentialStore
	provider    *fakeProvider
	svc         *audiences.Service
}

func newFixture(t *testing.T, opts ...audiences.ServiceOption) *fixture {
	t.Helper()

	f := &fixture{
		lists:       audiences.NewMemoryListStore(),
		subscribers: audiences.NewMemorySubscriberStore(),
		credentials: audiences.NewMemoryCredentialStore(),
		provider:    newFakeProvider(),
	}
	appKey := bytes.Repeat([]byte{0x2a}, secrets.KeySize)
	opts = append([]audiences.ServiceOption{audiences.WithServiceLogger(quietLogger())}, opts...)

	svc, err := audiences.NewService(f.lists, f.subscribers, f.credentials, appKey, opts...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// newProviderFixture wires the fake provider, links a list to remote id
// "mc-1" and stores an API key, the full precondition set for reconcile.
func newProviderFixture(t *testing.T) (*fixture, *audiences.List) {
	t.Helper()

	f := &fixture{
		lists:       audiences.NewMemoryListStore(),
		subscribers: audiences.NewMemorySubscriberStore(),
		credentials: audiences.NewMemoryCredentialStore(),
		provider:    newFakeProvider(),
	}
	appKey := bytes.Repeat([]byte{0x2a}, secrets.KeySize)
	svc, err := audiences.NewService(f.lists, f.subscribers, f.credentials, appKey,
		audiences.WithProvider(f.provider),
		audiences.WithServiceLogger(quietLogger()))
	require.NoError(t, err)
	f.svc = svc

	l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
	require.NoError(t, err)
	l, err = f.svc.UpdateList(context.Background(), audiences.UpdateListParams{
		UserID:         testUser,
		ID:             l.ID,
		ProviderListID: "mc-1",
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetCredential(context.Background(), testUser, "mc-key-123"))
	return f, l
}

func (f *fixture) addSubscriber(t *testing.T, listID, email, name string) *audiences.Subscriber {
	t.Helper()
	sub, err := f.svc.AddSubscriber(context.Background(), audiences.AddSubscriberParams{
		UserID: testUser,
		ListID: listID,
		Email:  email,
		Name:   name,
	})
	require.NoError(t, err)
	return sub
}

func TestService_Lists(t *testing.T) {
	t.Parallel()

	t.Run("creates and reads back", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "  newsletter  ")
		require.NoError(t, err)
		assert.Equal(t, "newsletter", l.Name)
		assert.Empty(t, l.ProviderListID)

		got, err := f.svc.GetList(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.Equal(t, l.ID, got.ID)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.CreateList(context.Background(), testUser, "   ")
		assert.ErrorIs(t, err, audiences.ErrEmptyName)
	})

	t.Run("links to a remote audience", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		updated, err := f.svc.UpdateList(context.Background(), audiences.UpdateListParams{
			UserID:         testUser,
			ID:             l.ID,
			ProviderListID: "mc-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "mc-1", updated.ProviderListID)
		assert.Equal(t, "newsletter", updated.Name)
	})

	t.Run("delete removes the subscribers too", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)
		f.addSubscriber(t, l.ID, "ada@example.com", "Ada")

		require.NoError(t, f.svc.DeleteList(context.Background(), testUser, l.ID))

		_, err = f.svc.GetList(context.Background(), testUser, l.ID)
		assert.ErrorIs(t, err, audiences.ErrListNotFound)
		subs, err := f.subscribers.ListByList(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestService_Subscribers(t *testing.T) {
	t.Parallel()

	t.Run("normalizes the email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		sub := f.addSubscriber(t, l.ID, "  Ada@Example.COM ", " Ada Lovelace ")
		assert.Equal(t, "ada@example.com", sub.Email)
		assert.Equal(t, "Ada Lovelace", sub.Name)
	})

	t.Run("rejects a duplicate in any spelling", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)
		f.addSubscriber(t, l.ID, "ada@example.com", "Ada")

		_, err = f.svc.AddSubscriber(context.Background(), audiences.AddSubscriberParams{
			UserID: testUser,
			ListID: l.ID,
			Email:  "ADA@example.com",
		})
		assert.ErrorIs(t, err, audiences.ErrDuplicateSubscriber)
	})

	t.Run("rejects a malformed email", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		_, err = f.svc.AddSubscriber(context.Background(), audiences.AddSubscriberParams{
			UserID: testUser,
			ListID: l.ID,
			Email:  "nope",
		})
		assert.ErrorIs(t, err, audiences.ErrInvalidEmail)
	})

	t.Run("unknown list", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.Subscribers(context.Background(), testUser, "missing")
		assert.ErrorIs(t, err, audiences.ErrListNotFound)
	})

	t.Run("removes a subscriber", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)
		sub := f.addSubscriber(t, l.ID, "ada@example.com", "Ada")

		require.NoError(t, f.svc.RemoveSubscriber(context.Background(), testUser, l.ID, sub.ID))
		subs, err := f.svc.Subscribers(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)
	})
}

func TestService_Import(t *testing.T) {
	t.Parallel()

	t.Run("applies a mixed batch", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)
		f.addSubscriber(t, l.ID, "ada@example.com", "Ada")
		f.addSubscriber(t, l.ID, "grace@example.com", "Grace")

		report, err := f.svc.Import(context.Background(), audiences.ImportParams{
			UserID: testUser,
			ListID: l.ID,
			Entries: []audiences.ImportEntry{
				{Email: "new@example.com", Name: "New"},              // added
				{Email: "Ada@Example.com", Name: "Ada Lovelace"},     // name update
				{Email: "grace@example.com", Name: "Grace"},          // unchanged
				{Email: "broken"},                                    // invalid
				{Email: "new@example.com", Name: "New Again"},        // dup in batch
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, report.Added)
		assert.Equal(t, 1, report.Updated)
		require.Len(t, report.Skipped, 3)

		subs, err := f.svc.Subscribers(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		require.Len(t, subs, 3)
		// Sorted by email: ada, grace, new.
		assert.Equal(t, "Ada Lovelace", subs[0].Name)
	})

	t.Run("reports skip reasons", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		report, err := f.svc.Import(context.Background(), audiences.ImportParams{
			UserID: testUser,
			ListID: l.ID,
			Entries: []audiences.ImportEntry{
				{Email: "broken"},
				{Email: "ok@example.com"},
				{Email: "OK@example.com"},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 1, report.Added)
		require.Len(t, report.Skipped, 2)
		assert.Equal(t, "invalid email", report.Skipped[0].Reason)
		assert.Equal(t, "duplicate in batch", report.Skipped[1].Reason)
	})
}

func TestService_Credentials(t *testing.T) {
	t.Parallel()

	t.Run("stores the key encrypted", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.svc.SetCredential(context.Background(), testUser, "mc-key-123"))

		cred, err := f.credentials.Get(context.Background(), testUser)
		require.NoError(t, err)
		assert.NotEqual(t, "mc-key-123", cred.APIKey)
		assert.NotContains(t, cred.APIKey, "mc-key")
	})

	t.Run("rejects a blank key", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		err := f.svc.SetCredential(context.Background(), testUser, "   ")
		assert.ErrorIs(t, err, audiences.ErrEmptyAPIKey)
	})

	t.Run("clear removes the key", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.svc.SetCredential(context.Background(), testUser, "mc-key-123"))
		require.NoError(t, f.svc.ClearCredential(context.Background(), testUser))

		_, err := f.credentials.Get(context.Background(), testUser)
		assert.ErrorIs(t, err, audiences.ErrNoCredentials)
	})

	t.Run("decrypted key reaches the provider", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		_, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "mc-key-123", f.provider.seenKey)
	})
}

func TestService_Reconcile(t *testing.T) {
	t.Parallel()

	t.Run("partitions add, update and remove", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.addSubscriber(t, l.ID, "new@example.com", "New")
		f.addSubscriber(t, l.ID, "renamed@example.com", "After")
		f.addSubscriber(t, l.ID, "same@example.com", "Same")
		f.provider.seed("mc-1",
			audiences.Member{Email: "renamed@example.com", Name: "Before"},
			audiences.Member{Email: "same@example.com", Name: "Same"},
			audiences.Member{Email: "gone@example.com", Name: "Gone"},
		)

		report, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)

		require.Len(t, report.Add, 1)
		assert.Equal(t, "new@example.com", report.Add[0].Email)
		require.Len(t, report.Update, 1)
		assert.Equal(t, audiences.Member{Email: "renamed@example.com", Name: "After"}, report.Update[0])
		assert.Equal(t, []string{"gone@example.com"}, report.Remove)
		assert.False(t, report.InSync())
	})

	t.Run("matches remote emails case-insensitively", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.addSubscriber(t, l.ID, "ada@example.com", "Ada")
		f.provider.seed("mc-1", audiences.Member{Email: "ADA@EXAMPLE.COM", Name: "Ada"})

		report, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.True(t, report.InSync())
	})

	t.Run("no provider means service unavailable", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		_, err = f.svc.Reconcile(context.Background(), testUser, l.ID)
		assert.ErrorIs(t, err, audiences.ErrProviderNotConfigured)
	})

	t.Run("unlinked list", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, audiences.WithProvider(newFakeProvider()))
		l, err := f.svc.CreateList(context.Background(), testUser, "newsletter")
		require.NoError(t, err)

		_, err = f.svc.Reconcile(context.Background(), testUser, l.ID)
		assert.ErrorIs(t, err, audiences.ErrListNotLinked)
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		require.NoError(t, f.svc.ClearCredential(context.Background(), testUser))

		_, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		assert.ErrorIs(t, err, audiences.ErrNoCredentials)
	})

	t.Run("provider failure is wrapped", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.provider.err = errors.New("mailchimp 500")

		_, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch remote members")
	})
}

func TestService_ApplyReconcile(t *testing.T) {
	t.Parallel()

	t.Run("pushes the plan and converges", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.addSubscriber(t, l.ID, "new@example.com", "New")
		f.addSubscriber(t, l.ID, "renamed@example.com", "After")
		f.provider.seed("mc-1",
			audiences.Member{Email: "renamed@example.com", Name: "Before"},
			audiences.Member{Email: "gone@example.com", Name: "Gone"},
		)

		report, err := f.svc.ApplyReconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.False(t, report.InSync())

		// The remote now mirrors the local list.
		after, err := f.svc.Reconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.True(t, after.InSync())
	})

	t.Run("in-sync apply touches nothing", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.addSubscriber(t, l.ID, "ada@example.com", "Ada")
		f.provider.seed("mc-1", audiences.Member{Email: "ada@example.com", Name: "Ada"})

		report, err := f.svc.ApplyReconcile(context.Background(), testUser, l.ID)
		require.NoError(t, err)
		assert.True(t, report.InSync())
	})
}

func TestService_DriftCheck(t *testing.T) {
	t.Parallel()

	t.Run("logs drifted lists", func(t *testing.T) {
		t.Parallel()

		f, l := newProviderFixture(t)
		f.addSubscriber(t, l.ID, "new@example.com", "New")

		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, nil))
		appKey := bytes.Repeat([]byte{0x2a}, secrets.KeySize)
		svc, err := audiences.NewService(f.lists, f.subscribers, f.credentials, appKey,
			audiences.WithProvider(f.provider),
			audiences.WithServiceLogger(log))
		require.NoError(t, err)

		require.NoError(t, svc.DriftCheck(context.Background()))
		assert.Contains(t, buf.String(), "audience drift detected")
		assert.Contains(t, buf.String(), "add=1")
	})

	t.Run("no provider is a no-op", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		assert.NoError(t, f.svc.DriftCheck(context.Background()))
	})
}
