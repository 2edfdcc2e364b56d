package templates

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryTemplateStore keeps templates in process memory. Meant for tests and
// local development; production uses MongoTemplateStore.
type MemoryTemplateStore struct {
	mu        sync.Mutex
	templates map[string]*Template
}

func NewMemoryTemplateStore() *MemoryTemplateStore {
	return &MemoryTemplateStore{templates: make(map[string]*Template)}
}

func (s *MemoryTemplateStore) Create(ctx context.Context, tpl *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[tpl.ID]; exists {
		return fmt.Errorf("template %s already exists", tpl.ID)
	}
	tplCopy := *tpl
	s.templates[tpl.ID] = &tplCopy
	return nil
}

func (s *MemoryTemplateStore) Get(ctx context.Context, userID, id string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, exists := s.templates[id]
	if !exists || tpl.UserID != userID {
		return nil, ErrTemplateNotFound
	}
	tplCopy := *tpl
	return &tplCopy, nil
}

func (s *MemoryTemplateStore) List(ctx context.Context, userID string, limit, offset int) ([]Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]Template, 0)
	for _, tpl := range s.templates {
		if tpl.UserID == userID {
			owned = append(owned, *tpl)
		}
	}
	// Newest first, matching the Mongo sort.
	slices.SortFunc(owned, func(a, b Template) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if offset >= len(owned) {
		return []Template{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *MemoryTemplateStore) Update(ctx context.Context, tpl *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.templates[tpl.ID]
	if !exists || existing.UserID != tpl.UserID {
		return ErrTemplateNotFound
	}
	tplCopy := *tpl
	s.templates[tpl.ID] = &tplCopy
	return nil
}

func (s *MemoryTemplateStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tpl, exists := s.templates[id]
	if !exists || tpl.UserID != userID {
		return ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

// MemoryConversationStore keeps transcripts in process memory. Meant for
// tests and local development; production uses MongoConversationStore.
type MemoryConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{conversations: make(map[string]*Conversation)}
}

func (s *MemoryConversationStore) Get(ctx context.Context, userID, id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[id]
	if !exists || conv.UserID != userID {
		return nil, ErrConversationNotFound
	}
	convCopy := *conv
	convCopy.Turns = slices.Clone(conv.Turns)
	return &convCopy, nil
}

func (s *MemoryConversationStore) Put(ctx context.Context, conv *Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	convCopy := *conv
	convCopy.Turns = slices.Clone(conv.Turns)
	s.conversations[conv.ID] = &convCopy
	return nil
}

func (s *MemoryConversationStore) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, exists := s.conversations[id]
	if !exists || conv.UserID != userID {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	return nil
}
