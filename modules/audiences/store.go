package audiences

import "context"

// ListStore persists audience lists. Every method scoped by userID so one
// user can never read or mutate another user's lists.
type ListStore interface {
	Create(ctx context.Context, l *List) error
	Get(ctx context.Context, userID, id string) (*List, error)
	List(ctx context.Context, userID string, limit, offset int) ([]List, error)
	Update(ctx context.Context, l *List) error
	Delete(ctx context.Context, userID, id string) error
}

// SubscriberStore persists list memberships. Emails arrive lowercased from
// the service, so GetByEmail is an exact match.
type SubscriberStore interface {
	Create(ctx context.Context, sub *Subscriber) error
	Update(ctx context.Context, sub *Subscriber) error
	GetByEmail(ctx context.Context, userID, listID, email string) (*Subscriber, error)
	ListByList(ctx context.Context, userID, listID string) ([]Subscriber, error)
	Delete(ctx context.Context, userID, listID, id string) error

	// DeleteByList removes every subscriber of a list; used when the list
	// itself is deleted.
	DeleteByList(ctx context.Context, userID, listID string) error
}

// CredentialStore persists encrypted provider API keys, one per user.
type CredentialStore interface {
	Put(ctx context.Context, cred *Credential) error
	Get(ctx context.Context, userID string) (*Credential, error)
	Delete(ctx context.Context, userID string) error

	// Users returns every user with a stored credential; the periodic
	// drift check iterates them.
	Users(ctx context.Context) ([]string, error)
}
