package audiences

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryListStore keeps lists in process memory. Meant for tests and local
// development; production uses MongoListStore.
type MemoryListStore struct {
	mu    sync.Mutex
	lists map[string]*List
}

func NewMemoryListStore() *MemoryListStore {
	return &MemoryListStore{lists: make(map[string]*List)}
}

func (s *MemoryListStore) Create(ctx context.Context, l *List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lists[l.ID]; exists {
		return fmt.Errorf("list %s already exists", l.ID)
	}
	lCopy := *l
	s.lists[l.ID] = &lCopy
	return nil
}

func (s *MemoryListStore) Get(ctx context.Context, userID, id string) (*List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.lists[id]
	if !exists || l.UserID != userID {
		return nil, ErrListNotFound
	}
	lCopy := *l
	return &lCopy, nil
}

func (s *MemoryListStore) List(ctx context.Context, userID string, limit, offset int) ([]List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]List, 0)
	for _, l := range s.lists {
		if l.UserID == userID {
			owned = append(owned, *l)
		}
	}
	// Newest first, matching the Mongo sort.
	slices.SortFunc(owned, func(a, b List) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if offset >= len(owned) {
		return []List{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *MemoryListStore) Update(ctx context.Context, l *List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.lists[l.ID]
	if !exists || existing.UserID != l.UserID {
		return ErrListNotFound
	}
	lCopy := *l
	s.lists[l.ID] = &lCopy
	return nil
}

func (s *MemoryListStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, exists := s.lists[id]
	if !exists || l.UserID != userID {
		return ErrListNotFound
	}
	delete(s.lists, id)
	return nil
}

// MemorySubscriberStore keeps subscribers in process memory. Meant for tests
// and local development; production uses MongoSubscriberStore.
type MemorySubscriberStore struct {
	mu   sync.Mutex
	subs map[string]*Subscriber
}

func NewMemorySubscriberStore() *MemorySubscriberStore {
	return &MemorySubscriberStore{subs: make(map[string]*Subscriber)}
}

func (s *MemorySubscriberStore) Create(ctx context.Context, sub *Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subs {
		if existing.ListID == sub.ListID && existing.Email == sub.Email {
			return ErrDuplicateSubscriber
		}
	}
	subCopy := *sub
	s.subs[sub.ID] = &subCopy
	return nil
}

func (s *MemorySubscriberStore) Update(ctx context.Context, sub *Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.subs[sub.ID]
	if !exists || existing.UserID != sub.UserID {
		return ErrSubscriberNotFound
	}
	subCopy := *sub
	s.subs[sub.ID] = &subCopy
	return nil
}

func (s *MemorySubscriberStore) GetByEmail(ctx context.Context, userID, listID, email string) (*Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs {
		if sub.UserID == userID && sub.ListID == listID && sub.Email == email {
			subCopy := *sub
			return &subCopy, nil
		}
	}
	return nil, ErrSubscriberNotFound
}

func (s *MemorySubscriberStore) ListByList(ctx context.Context, userID, listID string) ([]Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]Subscriber, 0)
	for _, sub := range s.subs {
		if sub.UserID == userID && sub.ListID == listID {
			members = append(members, *sub)
		}
	}
	// Alphabetical, matching the Mongo sort.
	slices.SortFunc(members, func(a, b Subscriber) int {
		return strings.Compare(a.Email, b.Email)
	})
	return members, nil
}

func (s *MemorySubscriberStore) Delete(ctx context.Context, userID, listID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subs[id]
	if !exists || sub.UserID != userID || sub.ListID != listID {
		return ErrSubscriberNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *MemorySubscriberStore) DeleteByList(ctx context.Context, userID, listID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.subs {
		if sub.UserID == userID && sub.ListID == listID {
			delete(s.subs, id)
		}
	}
	return nil
}

// MemoryCredentialStore keeps encrypted credentials in process memory. Meant
// for tests and local development; production uses MongoCredentialStore.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds map[string]*Credential
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: make(map[string]*Credential)}
}

func (s *MemoryCredentialStore) Put(ctx context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	credCopy := *cred
	s.creds[cred.UserID] = &credCopy
	return nil
}

func (s *MemoryCredentialStore) Get(ctx context.Context, userID string) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, exists := s.creds[userID]
	if !exists {
		return nil, ErrNoCredentials
	}
	credCopy := *cred
	return &credCopy, nil
}

func (s *MemoryCredentialStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creds[userID]; !exists {
		return ErrNoCredentials
	}
	delete(s.creds, userID)
	return nil
}

func (s *MemoryCredentialStore) Users(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]string, 0, len(s.creds))
	for userID := range s.creds {
		users = append(users, userID)
	}
	slices.Sort(users)
	return users, nil
}
