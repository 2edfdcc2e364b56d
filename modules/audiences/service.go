package audiences

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/email"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/sanitizer"
	"github.com/RabbaniMohammad/Emailify-MVP-sub002/pkg/secrets"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	// DriftCheckTaskName is the periodic task that logs how far linked
	// lists have drifted from their remote audiences. The scheduler and
	// the worker registration must agree on it.
	DriftCheckTaskName = "audiences.drift_check"
)

// Service owns audience lists, their subscribers, and the reconcile flow
// against the optional remote provider.
type Service struct {
	lists       ListStore
	subscribers SubscriberStore
	credentials CredentialStore
	provider    AudienceProvider
	appKey      []byte
	log         *slog.Logger
}

type ServiceOption func(*Service)

// WithProvider wires the remote audience service. Without it every
// reconcile operation reports the provider as not configured.
func WithProvider(p AudienceProvider) ServiceOption {
	return func(s *Service) { s.provider = p }
}

func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

func NewService(
	lists ListStore,
	subscribers SubscriberStore,
	credentials CredentialStore,
	appKey []byte,
	opts ...ServiceOption,
) (*Service, error) {
	if len(appKey) != secrets.KeySize {
		return nil, fmt.Errorf("app key must be %d bytes, got %d", secrets.KeySize, len(appKey))
	}

	s := &Service{
		lists:       lists,
		subscribers: subscribers,
		credentials: credentials,
		appKey:      appKey,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// orgKey derives the per-user half of the compound encryption key. User ids
// are public; secrecy comes from the app key, the derivation binds each
// ciphertext to its owner.
func orgKey(userID string) []byte {
	sum := sha256.Sum256([]byte("audiences:" + userID))
	return sum[:]
}

func (s *Service) CreateList(ctx context.Context, userID, name string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	l := &List{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.lists.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) GetList(ctx context.Context, userID, id string) (*List, error) {
	return s.lists.Get(ctx, userID, id)
}

func (s *Service) Lists(ctx context.Context, userID string, limit, offset int) ([]List, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.lists.List(ctx, userID, limit, offset)
}

// UpdateListParams holds the mutable fields of a list. Empty fields keep
// their current value; linking to a remote audience happens by setting
// ProviderListID.
type UpdateListParams struct {
	UserID         string
	ID             string
	Name           string
	ProviderListID string
}

func (s *Service) UpdateList(ctx context.Context, params UpdateListParams) (*List, error) {
	l, err := s.lists.Get(ctx, params.UserID, params.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(params.Name); name != "" {
		l.Name = name
	}
	if params.ProviderListID != "" {
		l.ProviderListID = params.ProviderListID
	}
	l.UpdatedAt = time.Now()

	if err := s.lists.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteList removes the list and every subscriber on it.
func (s *Service) DeleteList(ctx context.Context, userID, id string) error {
	if err := s.lists.Delete(ctx, userID, id); err != nil {
		return err
	}
	if err := s.subscribers.DeleteByList(ctx, userID, id); err != nil {
		s.log.Warn("delete list subscribers failed",
			slog.String("list_id", id),
			slog.String("error", err.Error()))
	}
	return nil
}

// AddSubscriberParams carries one new list membership.
type AddSubscriberParams struct {
	UserID string
	ListID string
	Email  string
	Name   string
}

func (s *Service) AddSubscriber(ctx context.Context, params AddSubscriberParams) (*Subscriber, error) {
	if _, err := s.lists.Get(ctx, params.UserID, params.ListID); err != nil {
		return nil, err
	}
	addr, err := normalizeEmail(params.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sub := &Subscriber{
		ID:        uuid.NewString(),
		ListID:    params.ListID,
		UserID:    params.UserID,
		Email:     addr,
		Name:      strings.TrimSpace(params.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.subscribers.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) Subscribers(ctx context.Context, userID, listID string) ([]Subscriber, error) {
	if _, err := s.lists.Get(ctx, userID, listID); err != nil {
		return nil, err
	}
	return s.subscribers.ListByList(ctx, userID, listID)
}

func (s *Service) RemoveSubscriber(ctx context.Context, userID, listID, subscriberID string) error {
	return s.subscribers.Delete(ctx, userID, listID, subscriberID)
}

// ImportParams carries one batch of subscribers.
type ImportParams struct {
	UserID  string
	ListID  string
	Entries []ImportEntry
}

// Import applies a batch of entries to the list. Malformed or duplicate
// entries are skipped and reported instead of failing the batch; an entry
// matching an existing subscriber updates the name when it changed.
func (s *Service) Import(ctx context.Context, params ImportParams) (*ImportReport, error) {
	if _, err := s.lists.Get(ctx, params.UserID, params.ListID); err != nil {
		return nil, err
	}

	report := &ImportReport{}
	seen := make(map[string]struct{}, len(params.Entries))
	for _, entry := range params.Entries {
		addr, err := normalizeEmail(entry.Email)
		if err != nil {
			report.Skipped = append(report.Skipped, SkippedEntry{Email: entry.Email, Reason: "invalid email"})
			continue
		}
		if _, dup := seen[addr]; dup {
			report.Skipped = append(report.Skipped, SkippedEntry{Email: addr, Reason: "duplicate in batch"})
			continue
		}
		seen[addr] = struct{}{}

		name := strings.TrimSpace(entry.Name)
		existing, err := s.subscribers.GetByEmail(ctx, params.UserID, params.ListID, addr)
		switch {
		case err == nil:
			if name == "" || existing.Name == name {
				report.Skipped = append(report.Skipped, SkippedEntry{Email: addr, Reason: "already subscribed"})
				continue
			}
			existing.Name = name
			existing.UpdatedAt = time.Now()
			if err := s.subscribers.Update(ctx, existing); err != nil {
				return nil, err
			}
			report.Updated++

		case errors.Is(err, ErrSubscriberNotFound):
			now := time.Now()
			sub := &Subscriber{
				ID:        uuid.NewString(),
				ListID:    params.ListID,
				UserID:    params.UserID,
				Email:     addr,
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.subscribers.Create(ctx, sub); err != nil {
				return nil, err
			}
			report.Added++

		default:
			return nil, err
		}
	}
	return report, nil
}

// SetCredential encrypts and stores the user's provider API key.
func (s *Service) SetCredential(ctx context.Context, userID, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyAPIKey
	}

	sealed, err := secrets.EncryptString(s.appKey, orgKey(userID), apiKey)
	if err != nil {
		return fmt.Errorf("encrypt provider key: %w", err)
	}
	return s.credentials.Put(ctx, &Credential{
		UserID:    userID,
		APIKey:    sealed,
		UpdatedAt: time.Now(),
	})
}

func (s *Service) ClearCredential(ctx context.Context, userID string) error {
	return s.credentials.Delete(ctx, userID)
}

// credentialKey loads and decrypts the user's provider API key.
func (s *Service) credentialKey(ctx context.Context, userID string) (string, error) {
	cred, err := s.credentials.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	apiKey, err := secrets.DecryptString(s.appKey, orgKey(userID), cred.APIKey)
	if err != nil {
		return "", fmt.Errorf("decrypt provider key: %w", err)
	}
	return apiKey, nil
}

// Reconcile computes the plan that would bring the list's remote audience in
// line with the local subscribers. It never mutates anything; Apply pushes
// the plan.
func (s *Service) Reconcile(ctx context.Context, userID, listID string) (*ReconcileReport, error) {
	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}
	l, err := s.lists.Get(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if l.ProviderListID == "" {
		return nil, ErrListNotLinked
	}
	apiKey, err := s.credentialKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	remote, err := s.provider.Members(ctx, apiKey, l.ProviderListID)
	if err != nil {
		return nil, fmt.Errorf("fetch remote members: %w", err)
	}
	local, err := s.subscribers.ListByList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	add, update, remove := diffMembers(local, remote)
	return &ReconcileReport{
		ListID:         l.ID,
		ProviderListID: l.ProviderListID,
		Add:            add,
		Update:         update,
		Remove:         remove,
		CheckedAt:      time.Now(),
	}, nil
}

// ApplyReconcile recomputes the plan and pushes it through the provider. The
// recompute keeps a stale plan from re-adding members removed in between.
func (s *Service) ApplyReconcile(ctx context.Context, userID, listID string) (*ReconcileReport, error) {
	report, err := s.Reconcile(ctx, userID, listID)
	if err != nil {
		return nil, err
	}
	if report.InSync() {
		return report, nil
	}

	apiKey, err := s.credentialKey(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upserts := append(append([]Member{}, report.Add...), report.Update...); len(upserts) > 0 {
		if err := s.provider.Upsert(ctx, apiKey, report.ProviderListID, upserts); err != nil {
			return nil, fmt.Errorf("push members: %w", err)
		}
	}
	if len(report.Remove) > 0 {
		if err := s.provider.Remove(ctx, apiKey, report.ProviderListID, report.Remove); err != nil {
			return nil, fmt.Errorf("remove members: %w", err)
		}
	}

	s.log.Info("reconcile plan applied",
		slog.String("list_id", report.ListID),
		slog.Int("added", len(report.Add)),
		slog.Int("updated", len(report.Update)),
		slog.Int("removed", len(report.Remove)))
	return report, nil
}

// DriftCheck logs how far each linked list has drifted from its remote
// audience. Report-only; applying a plan stays an explicit user action. It
// is registered as a periodic queue task under DriftCheckTaskName.
func (s *Service) DriftCheck(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	users, err := s.credentials.Users(ctx)
	if err != nil {
		return fmt.Errorf("list credential users: %w", err)
	}

	for _, userID := range users {
		for offset := 0; ; offset += maxListLimit {
			lists, err := s.lists.List(ctx, userID, maxListLimit, offset)
			if err != nil {
				return fmt.Errorf("list audiences for %s: %w", userID, err)
			}
			if len(lists) == 0 {
				break
			}
			for _, l := range lists {
				if l.ProviderListID == "" {
					continue
				}
				report, err := s.Reconcile(ctx, userID, l.ID)
				if err != nil {
					s.log.Warn("drift check failed",
						slog.String("list_id", l.ID),
						slog.String("error", err.Error()))
					continue
				}
				if report.InSync() {
					continue
				}
				s.log.Info("audience drift detected",
					slog.String("list_id", l.ID),
					slog.Int("add", len(report.Add)),
					slog.Int("update", len(report.Update)),
					slog.Int("remove", len(report.Remove)))
			}
			if len(lists) < maxListLimit {
				break
			}
		}
	}
	return nil
}

// normalizeEmail sanitizes and lowercases addr, rejecting anything that does
// not look like an email address.
func normalizeEmail(addr string) (string, error) {
	cleaned := strings.ToLower(sanitizer.SanitizeEmail(addr))
	if !email.ValidAddress(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, addr)
	}
	return cleaned, nil
}
