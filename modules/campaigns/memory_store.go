package campaigns

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryCampaignStore keeps campaigns in process memory. Meant for tests and
// local development; production uses MongoCampaignStore.
type MemoryCampaignStore struct {
	mu        sync.Mutex
	campaigns map[string]*Campaign
}

func NewMemoryCampaignStore() *MemoryCampaignStore {
	return &MemoryCampaignStore{campaigns: make(map[string]*Campaign)}
}

func (s *MemoryCampaignStore) Create(ctx context.Context, c *Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.campaigns[c.ID]; exists {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	s.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func (s *MemoryCampaignStore) Get(ctx context.Context, userID, id string) (*Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.campaigns[id]
	if !exists || c.UserID != userID {
		return nil, ErrCampaignNotFound
	}
	return copyCampaign(c), nil
}

func (s *MemoryCampaignStore) List(ctx context.Context, userID string, limit, offset int) ([]Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]Campaign, 0)
	for _, c := range s.campaigns {
		if c.UserID == userID {
			owned = append(owned, *copyCampaign(c))
		}
	}
	// Newest first, matching the Mongo sort.
	slices.SortFunc(owned, func(a, b Campaign) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	if offset >= len(owned) {
		return []Campaign{}, nil
	}
	owned = owned[offset:]
	if limit > 0 && limit < len(owned) {
		owned = owned[:limit]
	}
	return owned, nil
}

func (s *MemoryCampaignStore) Update(ctx context.Context, c *Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.campaigns[c.ID]
	if !exists || existing.UserID != c.UserID {
		return ErrCampaignNotFound
	}
	s.campaigns[c.ID] = copyCampaign(c)
	return nil
}

func copyCampaign(c *Campaign) *Campaign {
	cc := *c
	cc.Recipients = slices.Clone(c.Recipients)
	cc.Failures = slices.Clone(c.Failures)
	return &cc
}
