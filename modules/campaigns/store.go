package campaigns

import "context"

// CampaignStore persists campaigns. Every method scoped by userID so one
// user can never read or mutate another user's campaigns. There is no
// Delete; campaigns are an audit trail of what was sent.
type CampaignStore interface {
	Create(ctx context.Context, c *Campaign) error
	Get(ctx context.Context, userID, id string) (*Campaign, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Campaign, error)
	Update(ctx context.Context, c *Campaign) error
}
